package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/linkcut/linkcut/internal/analytics"
	"github.com/linkcut/linkcut/internal/auth"
	"github.com/linkcut/linkcut/internal/messaging"
	"github.com/linkcut/linkcut/internal/shortlink"
	"go.uber.org/zap"
)

// statsLimit caps the aggregate listing; totals are computed over this
// sample, not the full registry.
const statsLimit = 100

// LinkHandler handles short link operations.
type LinkHandler struct {
	registry           *shortlink.Registry
	store              shortlink.Repository
	verifier           auth.Verifier
	baseURL            string
	qrSize             int
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent]
	publishLinkVisited messaging.Publish[analytics.LinkVisitedEvent]
	logger             *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	registry *shortlink.Registry,
	store shortlink.Repository,
	verifier auth.Verifier,
	baseURL string,
	qrSize int,
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishLinkVisited messaging.Publish[analytics.LinkVisitedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		registry:           registry,
		store:              store,
		verifier:           verifier,
		baseURL:            baseURL,
		qrSize:             qrSize,
		publishLinkCreated: publishLinkCreated,
		publishLinkVisited: publishLinkVisited,
		logger:             logger,
	}
}

// CreateShortLink shortens a URL, honoring an optional custom slug.
func (h *LinkHandler) CreateShortLink(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	record, created, err := h.registry.Shorten(ctx, req.Body.OriginalURL, req.Body.CustomSlug)
	if err != nil {
		return nil, h.mapShortenError(err)
	}

	if created {
		meta := RequestMetaFromContext(ctx)
		event := &analytics.LinkCreatedEvent{
			Code:        string(record.Code),
			OriginalURL: record.OriginalURL,
			CustomSlug:  strings.TrimSpace(req.Body.CustomSlug) != "",
			CreatedAt:   record.CreatedAt,
			ClientIP:    meta.VisitorIP,
			UserAgent:   meta.UserAgent,
		}

		if err := h.publishLinkCreated(event); err != nil {
			h.logger.Error("failed to publish link created event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	}

	fullShortURL := shortlink.PublicURL(h.baseURL, record.Code)

	resp := &ShortenResponse{Status: http.StatusCreated}
	resp.Body.Message = "Short URL created successfully"

	if !created {
		resp.Status = http.StatusOK
		resp.Body.Message = "Short URL already exists"
	}

	resp.Body.Data = LinkData{
		OriginalURL: record.OriginalURL,
		ShortURL:    string(record.Code),
		CreatedAt:   record.CreatedAt,
	}
	resp.Body.FullShortURL = fullShortURL
	resp.Body.QRCodeURL = shortlink.QRCodeURL(fullShortURL, h.qrSize)

	return resp, nil
}

func (h *LinkHandler) mapShortenError(err error) error {
	switch {
	case errors.Is(err, shortlink.ErrInvalidURL):
		return huma.Error400BadRequest("invalid URL: only absolute http/https URLs are allowed")
	case errors.Is(err, shortlink.ErrInvalidSlug):
		return huma.Error400BadRequest(
			"invalid custom slug: use 3-20 letters, numbers, hyphen or underscore, and avoid reserved words")
	case errors.Is(err, shortlink.ErrSlugTaken):
		return huma.Error409Conflict("custom slug already taken")
	default:
		h.logger.Error("failed to create short link", zap.Error(err))

		return huma.Error500InternalServerError("failed to create short link")
	}
}

// RedirectToOriginal resolves a short code and records the visit before the
// redirect is issued. A client retrying after a lost response may be counted
// twice; losing the write would be worse.
func (h *LinkHandler) RedirectToOriginal(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	originalURL, err := h.registry.ResolveAndRecord(ctx, shortlink.Code(req.Code), meta.VisitorIP)
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("short link not found")
		}

		h.logger.Error("failed to resolve short link",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to resolve short link")
	}

	event := &analytics.LinkVisitedEvent{
		Code:      req.Code,
		VisitorIP: meta.VisitorIP,
		VisitedAt: time.Now(),
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}

	if err := h.publishLinkVisited(event); err != nil {
		h.logger.Error("failed to publish link visited event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = originalURL

	return resp, nil
}

// GetAnalytics returns the ledger summary and full history for one link.
func (h *LinkHandler) GetAnalytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	record, err := h.store.GetByCode(ctx, shortlink.Code(req.Code))
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("short link not found")
		}

		h.logger.Error("failed to load analytics",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to load analytics")
	}

	summary := shortlink.Summarize(record)
	fullShortURL := shortlink.PublicURL(h.baseURL, record.Code)

	resp := &AnalyticsResponse{}
	resp.Body.OriginalURL = record.OriginalURL
	resp.Body.ShortURL = string(record.Code)
	resp.Body.CreatedAt = record.CreatedAt
	resp.Body.FullShortURL = fullShortURL
	resp.Body.QRCodeURL = shortlink.QRCodeURL(fullShortURL, h.qrSize)
	resp.Body.Analytics = AnalyticsSummary{
		TotalClicks:    summary.TotalClicks,
		UniqueVisitors: summary.UniqueVisitors,
		RecentClicks:   emptyIfNil(summary.RecentEntries),
	}
	resp.Body.History = emptyIfNil(record.Ledger)

	return resp, nil
}

// GetAdminStats lists the most recent links with their ledger summaries and
// grand totals over the returned set.
func (h *LinkHandler) GetAdminStats(ctx context.Context, _ *struct{}) (*StatsResponse, error) {
	records, err := h.store.ListRecent(ctx, statsLimit)
	if err != nil {
		h.logger.Error("failed to list recent links", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load stats")
	}

	resp := &StatsResponse{}
	resp.Body.Message = "Stats retrieved successfully"
	resp.Body.URLs = make([]LinkStats, 0, len(records))

	for _, record := range records {
		summary := shortlink.Summarize(record)
		fullShortURL := shortlink.PublicURL(h.baseURL, record.Code)

		resp.Body.URLs = append(resp.Body.URLs, LinkStats{
			OriginalURL:    record.OriginalURL,
			ShortURL:       string(record.Code),
			CreatedAt:      record.CreatedAt,
			TotalClicks:    summary.TotalClicks,
			UniqueVisitors: summary.UniqueVisitors,
			History:        emptyIfNil(record.Ledger),
			FullShortURL:   fullShortURL,
			QRCodeURL:      shortlink.QRCodeURL(fullShortURL, h.qrSize),
		})

		resp.Body.Summary.TotalClicks += summary.TotalClicks
		resp.Body.Summary.TotalUniqueVisitors += summary.UniqueVisitors
	}

	resp.Body.Summary.TotalURLs = len(records)

	return resp, nil
}

// CheckAvailability classifies a candidate slug for live-typing feedback.
// Read-only; no record is touched.
func (h *LinkHandler) CheckAvailability(ctx context.Context, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	if strings.TrimSpace(req.Slug) == "" {
		return nil, huma.Error400BadRequest("slug is required")
	}

	availability, err := h.registry.CheckAvailability(ctx, req.Slug)
	if err != nil {
		h.logger.Error("failed to check slug availability",
			zap.String("slug", req.Slug),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to check availability")
	}

	resp := &AvailabilityResponse{}
	resp.Body.Status = string(availability)

	switch availability {
	case shortlink.AvailabilityInvalid:
		resp.Body.Message = "Invalid format or reserved word"
	case shortlink.AvailabilityTaken:
		resp.Body.Message = "Already taken"
	case shortlink.AvailabilityAvailable:
		resp.Body.Message = "Available"
	}

	return resp, nil
}

// VerifyAdmin checks a submitted admin secret. Binary outcome; no session
// or token is issued.
func (h *LinkHandler) VerifyAdmin(_ context.Context, req *VerifyAdminRequest) (*VerifyAdminResponse, error) {
	if strings.TrimSpace(req.Body.Password) == "" {
		return nil, huma.Error400BadRequest("password is required")
	}

	if !h.verifier.Verify(req.Body.Password) {
		return nil, huma.Error401Unauthorized("incorrect password")
	}

	resp := &VerifyAdminResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Admin access granted"

	return resp, nil
}

func emptyIfNil(entries []shortlink.LedgerEntry) []shortlink.LedgerEntry {
	if entries == nil {
		return []shortlink.LedgerEntry{}
	}

	return entries
}
