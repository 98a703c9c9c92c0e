// Package auth provides the admin credential boundary: a single shared
// secret checked by exact equality, behind a pluggable Verifier so the rest
// of the service never depends on how the secret is stored or compared.
package auth

import "crypto/subtle"

// Verifier checks an operator-supplied admin secret.
type Verifier interface {
	Verify(secret string) bool
}

// StaticVerifier verifies against a single shared secret configured at
// startup. Success or failure is binary; no session or token is issued.
type StaticVerifier struct {
	secret []byte
}

// NewStaticVerifier creates a verifier for the given shared secret.
func NewStaticVerifier(secret string) *StaticVerifier {
	return &StaticVerifier{secret: []byte(secret)}
}

// Verify reports whether the submitted secret matches. An empty configured
// secret never matches, so a misconfigured deployment fails closed.
func (v *StaticVerifier) Verify(secret string) bool {
	if len(v.secret) == 0 {
		return false
	}

	return subtle.ConstantTimeCompare(v.secret, []byte(secret)) == 1
}
