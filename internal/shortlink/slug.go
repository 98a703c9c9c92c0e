package shortlink

import (
	"regexp"
	"strings"
)

// Availability classifies a slug for the live availability check.
type Availability string

const (
	AvailabilityInvalid   Availability = "invalid"
	AvailabilityTaken     Availability = "taken"
	AvailabilityAvailable Availability = "available"
)

const (
	// SlugMinLength and SlugMaxLength bound custom slugs.
	SlugMinLength = 3
	SlugMaxLength = 20
)

// slugPattern matches the full slug alphabet. Loaded once, immutable.
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedSlugs are system and administrative path names that may never be
// claimed as custom slugs. Matched case-insensitively.
var reservedSlugs = map[string]struct{}{
	"admin": {}, "api": {}, "www": {}, "root": {}, "system": {},
	"login": {}, "logout": {}, "signup": {}, "register": {},
	"help": {}, "support": {}, "status": {}, "static": {}, "assets": {},
	"public": {}, "private": {}, "dashboard": {}, "settings": {},
	"user": {}, "users": {}, "auth": {}, "oauth": {}, "security": {},
	"shorten": {}, "analytics": {}, "availability": {}, "health": {},
	"docs": {}, "openapi": {}, "schemas": {},
	"favicon.ico": {},
}

// ValidateSlug checks a custom slug against length, alphabet, and
// reserved-word rules. It returns ErrInvalidSlug on any violation.
func ValidateSlug(slug string) error {
	trimmed := strings.TrimSpace(slug)

	if len(trimmed) < SlugMinLength || len(trimmed) > SlugMaxLength {
		return ErrInvalidSlug
	}

	if !slugPattern.MatchString(trimmed) {
		return ErrInvalidSlug
	}

	if _, reserved := reservedSlugs[strings.ToLower(trimmed)]; reserved {
		return ErrInvalidSlug
	}

	return nil
}
