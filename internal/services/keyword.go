package services

import (
	"strings"

	"github.com/tcollier/fieldhunt/internal/models"
)

// NormalizeKeyword lowercases the input and strips every rune that is not
// a-z or 0-9, so "Cr AnI-um!" and "cranium" compare equal.
func NormalizeKeyword(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// KeywordMatches reports whether the submitted text unlocks an item with
// the stored keyword. The wildcard sentinel is checked against the raw
// stored value, since normalization would strip it.
func KeywordMatches(stored, submitted string) bool {
	if stored == models.KeywordWildcard {
		return strings.TrimSpace(submitted) != ""
	}

	normalized := NormalizeKeyword(submitted)
	if normalized == "" {
		return false
	}

	return normalized == NormalizeKeyword(stored)
}
