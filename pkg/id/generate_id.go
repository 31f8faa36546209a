package id

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a random lowercase UUIDv4 in canonical 36-char form.
func New() string { return uuid.NewString() }

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

// Valid accepts a lowercase canonical UUID (versions 1-5, RFC 4122 variant)
// or 32 lowercase hex characters.
func Valid(s string) bool {
	if s == "" || s != strings.ToLower(s) {
		return false
	}
	switch len(s) {
	case 32, 36:
	default:
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if len(s) == 32 {
		return true
	}
	v := u.Version()
	return v >= 1 && v <= 5 && u.Variant() == uuid.RFC4122
}
