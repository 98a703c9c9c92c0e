package store

import (
	"context"
	"errors"
	"time"

	"github.com/linkcut/linkcut/internal/shortlink"
	"github.com/redis/go-redis/v9"
)

// RedisCacheRepository wraps a Repository with Redis caching for the redirect
// hot path. Only the immutable code -> original URL mapping is cached; ledger
// reads always go to the underlying store so analytics stay read-correct.
type RedisCacheRepository struct {
	store  shortlink.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortlink.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
	}
}

// Insert persists through the underlying store and warms the resolve cache.
func (r *RedisCacheRepository) Insert(ctx context.Context, record *shortlink.Record) error {
	if err := r.store.Insert(ctx, record); err != nil {
		return err
	}

	// Write-through; links are immutable so the entry can never go stale.
	r.client.Set(ctx, r.prefix+string(record.Code), record.OriginalURL, r.ttl)

	return nil
}

// ResolveURL serves the redirect path from cache when possible.
func (r *RedisCacheRepository) ResolveURL(ctx context.Context, code shortlink.Code) (string, error) {
	cached, err := r.client.Get(ctx, r.prefix+string(code)).Result()
	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, redis.Nil) {
		// Degrade to the store on cache errors rather than failing the redirect.
		return r.store.ResolveURL(ctx, code)
	}

	originalURL, err := r.store.ResolveURL(ctx, code)
	if err != nil {
		return "", err
	}

	r.client.Set(ctx, r.prefix+string(code), originalURL, r.ttl)

	return originalURL, nil
}

func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortlink.Code) (*shortlink.Record, error) {
	return r.store.GetByCode(ctx, code)
}

func (r *RedisCacheRepository) GetByOriginalURL(ctx context.Context, originalURL string) (*shortlink.Record, error) {
	return r.store.GetByOriginalURL(ctx, originalURL)
}

func (r *RedisCacheRepository) RecordVisit(ctx context.Context, code shortlink.Code, visitorIP string) error {
	return r.store.RecordVisit(ctx, code, visitorIP)
}

func (r *RedisCacheRepository) ListRecent(ctx context.Context, limit int) ([]*shortlink.Record, error) {
	return r.store.ListRecent(ctx, limit)
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortlink.Repository = (*RedisCacheRepository)(nil)
