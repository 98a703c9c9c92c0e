package shortlink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// maxCodeAttempts bounds the random-code collision retry loop. At a fill
// factor anywhere near sane, a single attempt succeeds; exhausting the bound
// is surfaced as ErrCodeSpaceExhausted rather than looping forever.
const maxCodeAttempts = 5

// CodeGenerator produces random short codes from a URL-safe alphabet.
type CodeGenerator func() string

// Registry owns the mapping between short codes and target URLs. It
// normalizes and validates input, allocates or accepts codes, and enforces
// uniqueness through the repository.
type Registry struct {
	store    Repository
	generate CodeGenerator
}

// NewRegistry creates a registry backed by the given repository and code
// generator.
func NewRegistry(store Repository, generator CodeGenerator) *Registry {
	return &Registry{
		store:    store,
		generate: generator,
	}
}

// NormalizeURL trims the submitted URL, prepends https:// when no scheme
// prefix is present, and validates that the result is an absolute http or
// https URL with a host. The returned string is the canonical stored form.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}

	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: only http and https are allowed", ErrInvalidURL)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return trimmed, nil
}

// Shorten turns a submitted URL, plus an optional custom slug, into a
// persisted record. The returned bool reports whether a new record was
// created; it is false when an existing randomly coded link was reused.
func (r *Registry) Shorten(ctx context.Context, rawURL, customSlug string) (*Record, bool, error) {
	originalURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, false, err
	}

	if slug := strings.TrimSpace(customSlug); slug != "" {
		record, err := r.shortenCustom(ctx, originalURL, slug)

		return record, record != nil, err
	}

	return r.shortenRandom(ctx, originalURL)
}

func (r *Registry) shortenCustom(ctx context.Context, originalURL, slug string) (*Record, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	// Upfront check gives a clean ErrSlugTaken for the common case; the
	// insert below still decides races on the store's uniqueness constraint.
	_, err := r.store.GetByCode(ctx, Code(slug))
	if err == nil {
		return nil, ErrSlugTaken
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	record := &Record{
		Code:        Code(slug),
		OriginalURL: originalURL,
		CreatedAt:   time.Now(),
	}

	if err := r.store.Insert(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *Registry) shortenRandom(ctx context.Context, originalURL string) (*Record, bool, error) {
	// Idempotent by content: the same URL maps to the same random code.
	// Custom slugs never take this path.
	existing, err := r.store.GetByOriginalURL(ctx, originalURL)
	if err == nil {
		return existing, false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		record := &Record{
			Code:        Code(r.generate()),
			OriginalURL: originalURL,
			CreatedAt:   time.Now(),
		}

		err := r.store.Insert(ctx, record)
		if errors.Is(err, ErrSlugTaken) {
			continue
		}

		if err != nil {
			return nil, false, err
		}

		return record, true, nil
	}

	return nil, false, ErrCodeSpaceExhausted
}

// CheckAvailability classifies a slug as invalid, taken, or available using
// the same rules as Shorten. It is read-only and cheap; the live-typing
// availability endpoint calls it on every keystroke.
func (r *Registry) CheckAvailability(ctx context.Context, slug string) (Availability, error) {
	if err := ValidateSlug(slug); err != nil {
		return AvailabilityInvalid, nil
	}

	_, err := r.store.GetByCode(ctx, Code(strings.TrimSpace(slug)))
	if err == nil {
		return AvailabilityTaken, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	return AvailabilityAvailable, nil
}

// ResolveAndRecord maps a short code to its target URL and accounts for the
// visit. The ledger update commits before the URL is returned, so a client
// that retries after losing the response may be counted twice; that
// at-least-once behavior is preferred over losing the write.
func (r *Registry) ResolveAndRecord(ctx context.Context, code Code, visitorIP string) (string, error) {
	originalURL, err := r.store.ResolveURL(ctx, code)
	if err != nil {
		return "", err
	}

	if err := r.store.RecordVisit(ctx, code, visitorIP); err != nil {
		return "", err
	}

	return originalURL, nil
}
