package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/linkcut/linkcut/internal/analytics"
	"github.com/linkcut/linkcut/internal/auth"
	"github.com/linkcut/linkcut/internal/handlers"
	"github.com/linkcut/linkcut/internal/shortlink"
	"github.com/linkcut/linkcut/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errMock = errors.New("mock failure")

// failingStore returns the same error from every repository method.
type failingStore struct {
	err error
}

func (f *failingStore) GetByCode(context.Context, shortlink.Code) (*shortlink.Record, error) {
	return nil, f.err
}

func (f *failingStore) GetByOriginalURL(context.Context, string) (*shortlink.Record, error) {
	return nil, f.err
}

func (f *failingStore) Insert(context.Context, *shortlink.Record) error {
	return f.err
}

func (f *failingStore) RecordVisit(context.Context, shortlink.Code, string) error {
	return f.err
}

func (f *failingStore) ResolveURL(context.Context, shortlink.Code) (string, error) {
	return "", f.err
}

func (f *failingStore) ListRecent(context.Context, int) ([]*shortlink.Record, error) {
	return nil, f.err
}

func noopPublish[T any](*T) error { return nil }

func errorPublish[T any](*T) error { return errMock }

func fixedGenerator(code string) shortlink.CodeGenerator {
	return func() string { return code }
}

func newTestHandler(repo shortlink.Repository, generator shortlink.CodeGenerator) *handlers.LinkHandler {
	return handlers.NewLinkHandler(
		shortlink.NewRegistry(repo, generator),
		repo,
		auth.NewStaticVerifier("secret123"),
		"http://localhost:8888",
		220,
		noopPublish[analytics.LinkCreatedEvent],
		noopPublish[analytics.LinkVisitedEvent],
		zap.NewNop(),
	)
}

func seededStore(t *testing.T, code, url string) *store.MemoryStore {
	t.Helper()

	memStore := store.NewMemoryStore()
	require.NoError(t, memStore.Insert(context.Background(), &shortlink.Record{
		Code:        shortlink.Code(code),
		OriginalURL: url,
	}))

	return memStore
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()

	var statusErr huma.StatusError

	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, status, statusErr.GetStatus())
}
