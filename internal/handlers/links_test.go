package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/linkcut/linkcut/internal/analytics"
	"github.com/linkcut/linkcut/internal/auth"
	"github.com/linkcut/linkcut/internal/handlers"
	"github.com/linkcut/linkcut/internal/shortlink"
	"github.com/linkcut/linkcut/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateShortLink(t *testing.T) {
	ctx := context.Background()

	t.Run("returns 201 with the full payload for a new link", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "example.com"

		resp, err := handler.CreateShortLink(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.Status)
		assert.Equal(t, "Short URL created successfully", resp.Body.Message)
		assert.Equal(t, "https://example.com", resp.Body.Data.OriginalURL)
		assert.Equal(t, "abc123", resp.Body.Data.ShortURL)
		assert.Equal(t, "http://localhost:8888/abc123", resp.Body.FullShortURL)
		assert.Contains(t, resp.Body.QRCodeURL, "api.qrserver.com")
		assert.Contains(t, resp.Body.QRCodeURL, "size=220x220")
	})

	t.Run("returns 200 when the url already has a link", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "https://example.com"

		_, err := handler.CreateShortLink(ctx, req)
		require.NoError(t, err)

		resp, err := handler.CreateShortLink(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "Short URL already exists", resp.Body.Message)
		assert.Equal(t, "abc123", resp.Body.Data.ShortURL)
	})

	t.Run("uses the custom slug", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "https://example.com"
		req.Body.CustomSlug = "my-page"

		resp, err := handler.CreateShortLink(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.Status)
		assert.Equal(t, "my-page", resp.Body.Data.ShortURL)
	})

	t.Run("returns 400 for an invalid url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "   "

		_, err := handler.CreateShortLink(ctx, req)
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("returns 400 for an invalid custom slug", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "https://example.com"
		req.Body.CustomSlug = "admin"

		_, err := handler.CreateShortLink(ctx, req)
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("returns 409 when the custom slug is taken", func(t *testing.T) {
		memStore := seededStore(t, "my-page", "https://first.com")
		handler := newTestHandler(memStore, fixedGenerator("abc123"))

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "https://second.com"
		req.Body.CustomSlug = "my-page"

		_, err := handler.CreateShortLink(ctx, req)
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		handler := newTestHandler(&failingStore{err: errMock}, fixedGenerator("abc123"))

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "https://example.com"

		_, err := handler.CreateShortLink(ctx, req)
		assertStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("succeeds even when event publishing fails", func(t *testing.T) {
		handler := handlers.NewLinkHandler(
			shortlink.NewRegistry(store.NewMemoryStore(), fixedGenerator("abc123")),
			store.NewMemoryStore(),
			auth.NewStaticVerifier("secret123"),
			"http://localhost:8888",
			220,
			errorPublish[analytics.LinkCreatedEvent],
			errorPublish[analytics.LinkVisitedEvent],
			zap.NewNop(),
		)

		req := &handlers.ShortenRequest{}
		req.Body.OriginalURL = "https://example.com"

		resp, err := handler.CreateShortLink(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Status)
	})
}

func TestRedirectToOriginal(t *testing.T) {
	t.Run("returns 302 with the original url and records the visit", func(t *testing.T) {
		memStore := seededStore(t, "abc123", "https://example.com")
		handler := newTestHandler(memStore, fixedGenerator("abc123"))

		ctx := handlers.ContextWithRequestMeta(context.Background(), handlers.RequestMeta{VisitorIP: "1.2.3.4"})

		resp, err := handler.RedirectToOriginal(ctx, &handlers.RedirectRequest{Code: "abc123"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusFound, resp.Status)
		assert.Equal(t, "https://example.com", resp.Headers.Location)

		record, err := memStore.GetByCode(ctx, "abc123")
		require.NoError(t, err)
		require.Len(t, record.Ledger, 1)
		assert.Equal(t, "1.2.3.4", record.Ledger[0].VisitorIP)
	})

	t.Run("returns 404 for an unknown code", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		_, err := handler.RedirectToOriginal(context.Background(), &handlers.RedirectRequest{Code: "missing"})
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		handler := newTestHandler(&failingStore{err: errMock}, fixedGenerator("abc123"))

		_, err := handler.RedirectToOriginal(context.Background(), &handlers.RedirectRequest{Code: "abc123"})
		assertStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("redirect survives a publish failure", func(t *testing.T) {
		memStore := seededStore(t, "abc123", "https://example.com")
		handler := handlers.NewLinkHandler(
			shortlink.NewRegistry(memStore, fixedGenerator("abc123")),
			memStore,
			auth.NewStaticVerifier("secret123"),
			"http://localhost:8888",
			220,
			noopPublish[analytics.LinkCreatedEvent],
			errorPublish[analytics.LinkVisitedEvent],
			zap.NewNop(),
		)

		resp, err := handler.RedirectToOriginal(context.Background(), &handlers.RedirectRequest{Code: "abc123"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
	})
}

func TestGetAnalytics(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the summary and full history", func(t *testing.T) {
		memStore := seededStore(t, "abc123", "https://example.com")
		require.NoError(t, memStore.RecordVisit(ctx, "abc123", "1.1.1.1"))
		require.NoError(t, memStore.RecordVisit(ctx, "abc123", "1.1.1.1"))
		require.NoError(t, memStore.RecordVisit(ctx, "abc123", "2.2.2.2"))

		handler := newTestHandler(memStore, fixedGenerator("abc123"))

		resp, err := handler.GetAnalytics(ctx, &handlers.AnalyticsRequest{Code: "abc123"})
		require.NoError(t, err)

		assert.Equal(t, "https://example.com", resp.Body.OriginalURL)
		assert.Equal(t, "abc123", resp.Body.ShortURL)
		assert.Equal(t, "http://localhost:8888/abc123", resp.Body.FullShortURL)
		assert.Equal(t, int64(3), resp.Body.Analytics.TotalClicks)
		assert.Equal(t, 2, resp.Body.Analytics.UniqueVisitors)
		assert.Len(t, resp.Body.Analytics.RecentClicks, 2)
		assert.Len(t, resp.Body.History, 2)
	})

	t.Run("history is an empty array for an unvisited link", func(t *testing.T) {
		memStore := seededStore(t, "abc123", "https://example.com")
		handler := newTestHandler(memStore, fixedGenerator("abc123"))

		resp, err := handler.GetAnalytics(ctx, &handlers.AnalyticsRequest{Code: "abc123"})
		require.NoError(t, err)

		assert.NotNil(t, resp.Body.History)
		assert.Empty(t, resp.Body.History)
		assert.NotNil(t, resp.Body.Analytics.RecentClicks)
	})

	t.Run("returns 404 for an unknown code", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		_, err := handler.GetAnalytics(ctx, &handlers.AnalyticsRequest{Code: "missing"})
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		handler := newTestHandler(&failingStore{err: errMock}, fixedGenerator("abc123"))

		_, err := handler.GetAnalytics(ctx, &handlers.AnalyticsRequest{Code: "abc123"})
		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestGetAdminStats(t *testing.T) {
	ctx := context.Background()

	t.Run("lists links newest first with grand totals", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		require.NoError(t, memStore.Insert(ctx, &shortlink.Record{Code: "one", OriginalURL: "https://one.com"}))
		require.NoError(t, memStore.Insert(ctx, &shortlink.Record{Code: "two", OriginalURL: "https://two.com"}))
		require.NoError(t, memStore.RecordVisit(ctx, "one", "1.1.1.1"))
		require.NoError(t, memStore.RecordVisit(ctx, "one", "2.2.2.2"))
		require.NoError(t, memStore.RecordVisit(ctx, "two", "1.1.1.1"))

		handler := newTestHandler(memStore, fixedGenerator("abc123"))

		resp, err := handler.GetAdminStats(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, "Stats retrieved successfully", resp.Body.Message)
		assert.Equal(t, 2, resp.Body.Summary.TotalURLs)
		assert.Equal(t, int64(3), resp.Body.Summary.TotalClicks)
		assert.Equal(t, 3, resp.Body.Summary.TotalUniqueVisitors)

		require.Len(t, resp.Body.URLs, 2)
		assert.Equal(t, "two", resp.Body.URLs[0].ShortURL)
		assert.Equal(t, "one", resp.Body.URLs[1].ShortURL)
		assert.Equal(t, int64(2), resp.Body.URLs[1].TotalClicks)
	})

	t.Run("returns an empty listing for an empty store", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		resp, err := handler.GetAdminStats(ctx, nil)
		require.NoError(t, err)

		assert.NotNil(t, resp.Body.URLs)
		assert.Empty(t, resp.Body.URLs)
		assert.Equal(t, 0, resp.Body.Summary.TotalURLs)
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		handler := newTestHandler(&failingStore{err: errMock}, fixedGenerator("abc123"))

		_, err := handler.GetAdminStats(ctx, nil)
		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("returns 400 when the slug is blank", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		_, err := handler.CheckAvailability(ctx, &handlers.AvailabilityRequest{Slug: "  "})
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("classifies invalid, taken, and available slugs", func(t *testing.T) {
		memStore := seededStore(t, "my-page", "https://example.com")
		handler := newTestHandler(memStore, fixedGenerator("abc123"))

		cases := []struct {
			slug    string
			status  string
			message string
		}{
			{"ab", "invalid", "Invalid format or reserved word"},
			{"admin", "invalid", "Invalid format or reserved word"},
			{"my-page", "taken", "Already taken"},
			{"free-slug", "available", "Available"},
		}

		for _, tc := range cases {
			resp, err := handler.CheckAvailability(ctx, &handlers.AvailabilityRequest{Slug: tc.slug})
			require.NoError(t, err, tc.slug)
			assert.Equal(t, tc.status, resp.Body.Status, tc.slug)
			assert.Equal(t, tc.message, resp.Body.Message, tc.slug)
		}
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		handler := newTestHandler(&failingStore{err: errMock}, fixedGenerator("abc123"))

		_, err := handler.CheckAvailability(ctx, &handlers.AvailabilityRequest{Slug: "my-page"})
		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestVerifyAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("grants access for the correct secret", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.VerifyAdminRequest{}
		req.Body.Password = "secret123"

		resp, err := handler.VerifyAdmin(ctx, req)
		require.NoError(t, err)

		assert.True(t, resp.Body.Success)
		assert.Equal(t, "Admin access granted", resp.Body.Message)
	})

	t.Run("returns 401 for a wrong secret", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.VerifyAdminRequest{}
		req.Body.Password = "wrong"

		_, err := handler.VerifyAdmin(ctx, req)
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("returns 400 for a blank secret", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), fixedGenerator("abc123"))

		req := &handlers.VerifyAdminRequest{}
		req.Body.Password = "   "

		_, err := handler.VerifyAdmin(ctx, req)
		assertStatus(t, err, http.StatusBadRequest)
	})
}
