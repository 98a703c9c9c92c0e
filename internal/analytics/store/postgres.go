package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkcut/linkcut/internal/analytics"
)

// EventSchema holds the DDL for the analytics event tables.
const EventSchema = `
CREATE TABLE IF NOT EXISTS link_created_events (
	id           BIGSERIAL PRIMARY KEY,
	code         TEXT NOT NULL,
	original_url TEXT NOT NULL,
	custom_slug  BOOLEAN NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	client_ip    TEXT NOT NULL DEFAULT '',
	user_agent   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS link_visited_events (
	id         BIGSERIAL PRIMARY KEY,
	code       TEXT NOT NULL,
	visitor_ip TEXT NOT NULL,
	visited_at TIMESTAMPTZ NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	referrer   TEXT NOT NULL DEFAULT ''
);
`

// Postgres persists analytics events to PostgreSQL. Events are append-only;
// aggregation happens at query time in reporting tools.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the event tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, EventSchema)

	return err
}

func (p *Postgres) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	query := `
		INSERT INTO link_created_events (code, original_url, custom_slug, created_at, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		event.Code,
		event.OriginalURL,
		event.CustomSlug,
		event.CreatedAt,
		event.ClientIP,
		event.UserAgent,
	)

	return err
}

func (p *Postgres) SaveLinkVisited(ctx context.Context, event *analytics.LinkVisitedEvent) error {
	query := `
		INSERT INTO link_visited_events (code, visitor_ip, visited_at, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		event.Code,
		event.VisitorIP,
		event.VisitedAt,
		event.UserAgent,
		event.Referrer,
	)

	return err
}
