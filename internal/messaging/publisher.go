// Package messaging carries the analytics events between the API binary and
// the consumer binary over watermill streams, with JSON payloads typed end
// to end so a topic and its event struct can never drift apart.
package messaging

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publish sends one event to the topic it was bound to at construction.
// Handlers hold a Publish per event type instead of a raw message.Publisher,
// so a handler can never write the wrong payload shape to a topic.
type Publish[T any] func(event *T) error

// NewPublishFunc binds a topic to an event type. The event is marshaled as
// JSON; consumers decode into the same type on the other side.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)

		return publisher.Publish(topic, msg)
	}
}

// PublisherGroup holds the one shared publisher behind every typed Publish
// func. Closing happens here, once, instead of in each handler.
type PublisherGroup struct {
	publisher message.Publisher
}

func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher exposes the shared publisher for binding topics via NewPublishFunc.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
