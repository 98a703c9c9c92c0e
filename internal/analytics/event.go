// Package analytics defines the telemetry events emitted by the link
// service and the store that persists them. Events are supplementary: the
// click ledger on each record is the source of truth and is written
// synchronously on the redirect path, while these events feed offline
// reporting through the consumer binary.
package analytics

import "time"

// Topic names for the event streams.
const (
	TopicLinkCreated = "link.created"
	TopicLinkVisited = "link.visited"
)

// LinkCreatedEvent is emitted when a short link is created.
type LinkCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CustomSlug  bool      `json:"customSlug"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// LinkVisitedEvent is emitted after a visit is recorded in the ledger.
type LinkVisitedEvent struct {
	Code      string    `json:"code"`
	VisitorIP string    `json:"visitorIp"`
	VisitedAt time.Time `json:"visitedAt"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
}
