package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/linkcut/linkcut/internal/analytics"
	"github.com/linkcut/linkcut/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func newVisitedConsumer(sub message.Subscriber, handler messaging.Handler[analytics.LinkVisitedEvent]) *messaging.Consumer[analytics.LinkVisitedEvent] {
	return messaging.NewConsumer(sub, analytics.TopicLinkVisited, handler, zap.NewNop())
}

func TestConsumer_Start(t *testing.T) {
	t.Run("starts successfully", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newVisitedConsumer(sub, func(_ context.Context, _ *analytics.LinkVisitedEvent) error {
			return nil
		})

		err := consumer.Start(context.Background())

		require.NoError(t, err)
		assert.Equal(t, analytics.TopicLinkVisited, consumer.Topic())

		_ = consumer.Shutdown()
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := newVisitedConsumer(sub, func(_ context.Context, _ *analytics.LinkVisitedEvent) error {
			return nil
		})

		err := consumer.Start(context.Background())

		assert.Error(t, err)
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks on successful handling", func(t *testing.T) {
		sub := newMockSubscriber()

		var receivedEvent *analytics.LinkVisitedEvent

		consumer := newVisitedConsumer(sub, func(_ context.Context, event *analytics.LinkVisitedEvent) error {
			receivedEvent = event

			return nil
		})

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		event := &analytics.LinkVisitedEvent{Code: "abc123", VisitorIP: "1.2.3.4"}
		payload, _ := json.Marshal(event)
		msg := message.NewMessage(uuid.NewString(), payload)

		sub.msgChan <- msg

		select {
		case <-msg.Acked():
			assert.Equal(t, "abc123", receivedEvent.Code)
			assert.Equal(t, "1.2.3.4", receivedEvent.VisitorIP)
		case <-msg.Nacked():
			t.Fatal("message was nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks on unmarshal error", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newVisitedConsumer(sub, func(_ context.Context, _ *analytics.LinkVisitedEvent) error {
			return nil
		})

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))

		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
			// Expected
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks on handler error", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newVisitedConsumer(sub, func(_ context.Context, _ *analytics.LinkVisitedEvent) error {
			return errors.New("handler error")
		})

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		payload, _ := json.Marshal(&analytics.LinkVisitedEvent{Code: "abc123"})
		msg := message.NewMessage(uuid.NewString(), payload)

		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
			// Expected
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("shuts down gracefully", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newVisitedConsumer(sub, func(_ context.Context, _ *analytics.LinkVisitedEvent) error {
			return nil
		})

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		require.NoError(t, consumer.Shutdown())
	})
}
