package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkcut/linkcut/internal/shortlink"
)

// Schema holds the DDL for the short link tables. EnsureSchema applies it
// at startup; statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS short_links (
	code         TEXT PRIMARY KEY,
	original_url TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS short_links_original_url_idx ON short_links (original_url);
CREATE INDEX IF NOT EXISTS short_links_created_at_idx ON short_links (created_at DESC);

CREATE TABLE IF NOT EXISTS short_link_visits (
	seq        BIGSERIAL,
	code       TEXT NOT NULL REFERENCES short_links (code),
	visitor_ip TEXT NOT NULL,
	count      BIGINT NOT NULL DEFAULT 1,
	PRIMARY KEY (code, visitor_ip)
);
`

const uniqueViolationCode = "23505"

// PostgresStore is a PostgreSQL implementation of shortlink.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed short link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the short link tables if they do not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, Schema)

	return err
}

func (p *PostgresStore) Insert(ctx context.Context, record *shortlink.Record) error {
	query := `
		INSERT INTO short_links (code, original_url, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(record.Code),
		record.OriginalURL,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return shortlink.ErrSlugTaken
		}

		return err
	}

	// The unique index is the final arbiter of the check-then-insert race:
	// a losing concurrent insert lands here with zero rows affected.
	if tag.RowsAffected() == 0 {
		return shortlink.ErrSlugTaken
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortlink.Code) (*shortlink.Record, error) {
	query := `
		SELECT code, original_url, created_at
		FROM short_links
		WHERE code = $1
	`

	var record shortlink.Record

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&record.Code,
		&record.OriginalURL,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	ledger, err := p.loadLedger(ctx, code)
	if err != nil {
		return nil, err
	}

	record.Ledger = ledger

	return &record, nil
}

func (p *PostgresStore) GetByOriginalURL(ctx context.Context, originalURL string) (*shortlink.Record, error) {
	query := `
		SELECT code
		FROM short_links
		WHERE original_url = $1
		ORDER BY created_at
		LIMIT 1
	`

	var code shortlink.Code

	err := p.pool.QueryRow(ctx, query, originalURL).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	return p.GetByCode(ctx, code)
}

func (p *PostgresStore) ResolveURL(ctx context.Context, code shortlink.Code) (string, error) {
	query := `SELECT original_url FROM short_links WHERE code = $1`

	var originalURL string

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(&originalURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shortlink.ErrNotFound
		}

		return "", err
	}

	return originalURL, nil
}

// RecordVisit is a single upsert, so concurrent visits to the same code are
// serialized by the row lock and never lose increments.
func (p *PostgresStore) RecordVisit(ctx context.Context, code shortlink.Code, visitorIP string) error {
	query := `
		INSERT INTO short_link_visits (code, visitor_ip, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (code, visitor_ip)
		DO UPDATE SET count = short_link_visits.count + 1
	`

	_, err := p.pool.Exec(ctx, query, string(code), visitorIP)

	return err
}

func (p *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*shortlink.Record, error) {
	query := `
		SELECT code, original_url, created_at
		FROM short_links
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*shortlink.Record

	byCode := make(map[shortlink.Code]*shortlink.Record)

	for rows.Next() {
		var record shortlink.Record
		if err := rows.Scan(&record.Code, &record.OriginalURL, &record.CreatedAt); err != nil {
			return nil, err
		}

		records = append(records, &record)
		byCode[record.Code] = &record
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return records, nil
	}

	codes := make([]string, 0, len(records))
	for _, record := range records {
		codes = append(codes, string(record.Code))
	}

	ledgerQuery := `
		SELECT code, visitor_ip, count
		FROM short_link_visits
		WHERE code = ANY($1)
		ORDER BY seq
	`

	ledgerRows, err := p.pool.Query(ctx, ledgerQuery, codes)
	if err != nil {
		return nil, err
	}
	defer ledgerRows.Close()

	for ledgerRows.Next() {
		var (
			code  shortlink.Code
			entry shortlink.LedgerEntry
		)

		if err := ledgerRows.Scan(&code, &entry.VisitorIP, &entry.Count); err != nil {
			return nil, err
		}

		if record, ok := byCode[code]; ok {
			record.Ledger = append(record.Ledger, entry)
		}
	}

	return records, ledgerRows.Err()
}

func (p *PostgresStore) loadLedger(ctx context.Context, code shortlink.Code) ([]shortlink.LedgerEntry, error) {
	query := `
		SELECT visitor_ip, count
		FROM short_link_visits
		WHERE code = $1
		ORDER BY seq
	`

	rows, err := p.pool.Query(ctx, query, string(code))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledger []shortlink.LedgerEntry

	for rows.Next() {
		var entry shortlink.LedgerEntry
		if err := rows.Scan(&entry.VisitorIP, &entry.Count); err != nil {
			return nil, err
		}

		ledger = append(ledger, entry)
	}

	return ledger, rows.Err()
}

// Compile-time check.
var _ shortlink.Repository = (*PostgresStore)(nil)
