package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/linkcut/linkcut/internal/ratelimit"
)

// RegisterRoutes registers all short link routes with per-endpoint rate
// limit configuration. adminGuard protects the analytics and stats
// operations; the availability and redirect routes stay public.
func RegisterRoutes(api huma.API, h *LinkHandler, adminGuard func(huma.Context, func(huma.Context))) {
	// POST /shorten - stricter limits for write operations
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short link",
		Description: "Shortens a URL, optionally under a caller-chosen custom slug.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, h.CreateShortLink)

	// GET /availability - cheap read, polled on every keystroke
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/availability",
		Summary:     "Check slug availability",
		Description: "Classifies a candidate custom slug as invalid, taken, or available.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 120},
				},
			},
		},
	}, h.CheckAvailability)

	// GET /analytics/{code} - admin-guarded per-link analytics.
	// Registered before the redirect wildcard.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/analytics/{code}",
		Summary:     "Get link analytics",
		Description: "Returns click totals, distinct visitor count, and full visit history.",
		Tags:        []string{"Analytics"},
		Middlewares: huma.Middlewares{adminGuard},
	}, h.GetAnalytics)

	// GET /admin/stats - admin dashboard listing
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/admin/stats",
		Summary:     "Get aggregate stats",
		Description: "Lists the 100 most recent links with ledger summaries and grand totals over the listing.",
		Tags:        []string{"Analytics"},
		Middlewares: huma.Middlewares{adminGuard},
	}, h.GetAdminStats)

	// POST /admin/verify - the credential check itself, so not guarded
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/admin/verify",
		Summary:     "Verify admin secret",
		Tags:        []string{"Analytics"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
				},
			},
		},
	}, h.VerifyAdmin)

	// GET /{code} - relaxed limits for the high-traffic redirect path
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Resolves the short code, records the visit, and redirects.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, h.RedirectToOriginal)
}
