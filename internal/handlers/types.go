package handlers

import (
	"time"

	"github.com/linkcut/linkcut/internal/shortlink"
)

// LinkData is the persisted record as exposed to clients.
type LinkData struct {
	OriginalURL string    `doc:"The original URL"              json:"originalUrl"`
	ShortURL    string    `doc:"The short code"                json:"shortUrl"`
	CreatedAt   time.Time `doc:"When the short link was made"  json:"createdAt"`
}

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		OriginalURL string `doc:"The URL to shorten"                     example:"https://example.com/very/long/path" json:"originalUrl"`
		CustomSlug  string `doc:"Optional caller-chosen short code"      example:"my-page"                            json:"customSlug,omitempty" required:"false"`
	}
}

// ShortenResponse is the response for a create request. Status is 201 for a
// newly created link and 200 when an existing link was reused.
type ShortenResponse struct {
	Status int
	Body   struct {
		Message      string   `json:"message"`
		Data         LinkData `json:"data"`
		FullShortURL string   `doc:"The fully-qualified short URL"   json:"fullShortUrl"`
		QRCodeURL    string   `doc:"QR code render URL for the link" json:"qrCodeUrl"`
	}
}

// RedirectRequest is the request for resolving a short link.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse redirects the visitor to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// AnalyticsRequest is the request for per-link analytics.
type AnalyticsRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// AnalyticsSummary aggregates a link's click ledger.
type AnalyticsSummary struct {
	TotalClicks    int64                  `json:"totalClicks"`
	UniqueVisitors int                    `json:"uniqueVisitors"`
	RecentClicks   []shortlink.LedgerEntry `doc:"Last 5 ledger entries in first-seen order" json:"recentClicks"`
}

// AnalyticsResponse is the per-link analytics payload.
type AnalyticsResponse struct {
	Body struct {
		OriginalURL  string                  `json:"originalUrl"`
		ShortURL     string                  `json:"shortUrl"`
		CreatedAt    time.Time               `json:"createdAt"`
		FullShortURL string                  `json:"fullShortUrl"`
		QRCodeURL    string                  `json:"qrCodeUrl"`
		Analytics    AnalyticsSummary        `json:"analytics"`
		History      []shortlink.LedgerEntry `json:"history"`
	}
}

// LinkStats is one link in the aggregate stats listing.
type LinkStats struct {
	OriginalURL    string                  `json:"originalUrl"`
	ShortURL       string                  `json:"shortUrl"`
	CreatedAt      time.Time               `json:"createdAt"`
	TotalClicks    int64                   `json:"totalClicks"`
	UniqueVisitors int                     `json:"uniqueVisitors"`
	History        []shortlink.LedgerEntry `json:"history"`
	FullShortURL   string                  `json:"fullShortUrl"`
	QRCodeURL      string                  `json:"qrCodeUrl"`
}

// StatsResponse is the aggregate stats payload. Totals cover exactly the
// returned (capped) listing, not the full registry.
type StatsResponse struct {
	Body struct {
		Message string `json:"message"`
		Summary struct {
			TotalURLs           int   `json:"totalUrls"`
			TotalClicks         int64 `json:"totalClicks"`
			TotalUniqueVisitors int   `json:"totalUniqueVisitors"`
		} `json:"summary"`
		URLs []LinkStats `json:"urls"`
	}
}

// AvailabilityRequest is the live slug availability query.
type AvailabilityRequest struct {
	Slug string `doc:"The candidate custom slug" example:"my-page" query:"slug"`
}

// AvailabilityResponse classifies a slug as invalid, taken, or available.
type AvailabilityResponse struct {
	Body struct {
		Status  string `doc:"One of invalid, taken, available" json:"status"`
		Message string `json:"message"`
	}
}

// VerifyAdminRequest carries the admin secret for the verification endpoint.
type VerifyAdminRequest struct {
	Body struct {
		Password string `doc:"The shared admin secret" json:"password"`
	}
}

// VerifyAdminResponse reports a binary verification outcome.
type VerifyAdminResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}
