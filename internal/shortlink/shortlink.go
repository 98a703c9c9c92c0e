package shortlink

import (
	"context"
	"errors"
	"time"
)

// Code represents a short link code (slug).
type Code string

// LedgerEntry is one (visitor IP, visit count) pair in a link's click history.
// Entries are kept in first-seen order; one entry exists per distinct IP.
type LedgerEntry struct {
	VisitorIP string `json:"ip"`
	Count     int64  `json:"count"`
}

// Record represents a shortened URL together with its click ledger.
// OriginalURL and Code are immutable after creation; only the ledger is
// mutated, and only by the redirect path.
type Record struct {
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
	Ledger      []LedgerEntry
}

var (
	// ErrNotFound indicates the short code does not exist.
	ErrNotFound = errors.New("short link not found")
	// ErrSlugTaken indicates the requested custom slug is already in use.
	ErrSlugTaken = errors.New("custom slug already taken")
	// ErrInvalidURL indicates the submitted URL is missing or malformed.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidSlug indicates the custom slug violates format or reserved-word rules.
	ErrInvalidSlug = errors.New("invalid custom slug")
	// ErrCodeSpaceExhausted indicates random code generation hit the retry bound.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
)

// Repository defines the storage contract for short link records.
type Repository interface {
	// GetByCode returns the full record, ledger included.
	GetByCode(ctx context.Context, code Code) (*Record, error)

	// GetByOriginalURL returns the record whose stored URL matches exactly.
	// Used for dedupe of randomly coded links only.
	GetByOriginalURL(ctx context.Context, originalURL string) (*Record, error)

	// Insert persists a new record with an empty ledger. The store's own
	// uniqueness constraint on the code is the final arbiter: inserting a
	// code that already exists returns ErrSlugTaken.
	Insert(ctx context.Context, record *Record) error

	// RecordVisit increments the ledger entry for visitorIP on the given
	// code, creating it with count 1 on first sight. The update is atomic
	// relative to concurrent visits of the same code; visits to different
	// codes never block each other.
	RecordVisit(ctx context.Context, code Code, visitorIP string) error

	// ResolveURL returns just the original URL for a code. This is the
	// redirect hot path and the only read a cache layer may serve.
	ResolveURL(ctx context.Context, code Code) (string, error)

	// ListRecent returns up to limit records ordered by creation time,
	// newest first.
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}
