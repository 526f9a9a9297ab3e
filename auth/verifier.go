package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/jrsteele09/sales-dashboard/users"
)

// adaptiveHashPrefix marks bcrypt secrets ($2a$, $2b$, $2y$ ...)
const adaptiveHashPrefix = "$2"

// LegacyPlaintextPolicy governs rows whose stored secret is not a bcrypt hash.
// Those rows are compared as plaintext while Allow is set; RehashOnLogin
// replaces the plaintext with a hash after a successful login.
type LegacyPlaintextPolicy struct {
	Allow         bool
	RehashOnLogin bool
}

// DefaultLegacyPolicy keeps plaintext logins working and leaves rows untouched.
var DefaultLegacyPolicy = LegacyPlaintextPolicy{Allow: true}

// IsAdaptiveHash reports whether a stored secret is a bcrypt hash.
func IsAdaptiveHash(secret string) bool {
	return strings.HasPrefix(secret, adaptiveHashPrefix)
}

// Verifier compares supplied passwords with stored secrets.
type Verifier struct {
	Legacy LegacyPlaintextPolicy
}

// Verify returns whether supplied matches stored, and whether the match used
// the legacy plaintext path. An empty stored or supplied secret never matches.
func (v Verifier) Verify(stored, supplied string) (ok bool, legacy bool) {
	if strings.TrimSpace(stored) == "" || supplied == "" {
		return false, false
	}
	if IsAdaptiveHash(stored) {
		return users.CheckPasswordHash(supplied, stored), false
	}
	if !v.Legacy.Allow {
		return false, true
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1, true
}
