package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "cranium", "cranium"},
		{"uppercase folded", "CRANIUM", "cranium"},
		{"spaces and punctuation stripped", "Cr AnI-um!", "cranium"},
		{"digits kept", "talons42", "talons42"},
		{"whitespace only", "   \t  ", ""},
		{"punctuation only", "---!!!", ""},
		{"empty", "", ""},
		{"unicode stripped", "crâniùm", "crnim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeKeyword(tt.input))
		})
	}
}

func TestKeywordMatches_ExactAndFuzzy(t *testing.T) {
	assert.True(t, KeywordMatches("cranium", "cranium"))
	assert.True(t, KeywordMatches("cranium", "CRANIUM"))
	assert.True(t, KeywordMatches("cranium", "Cr AnI-um!"))
	assert.True(t, KeywordMatches("Cr-anium", "cranium"))

	assert.False(t, KeywordMatches("cranium", "talons"))
	assert.False(t, KeywordMatches("cranium", "craniums"))
}

func TestKeywordMatches_EmptySubmissionNeverMatches(t *testing.T) {
	// An empty or punctuation-only answer must not unlock anything, even
	// if the stored keyword also normalizes to empty.
	assert.False(t, KeywordMatches("cranium", ""))
	assert.False(t, KeywordMatches("cranium", "   "))
	assert.False(t, KeywordMatches("cranium", "!!!"))
	assert.False(t, KeywordMatches("---", "!!!"))
}

func TestKeywordMatches_Wildcard(t *testing.T) {
	assert.True(t, KeywordMatches("*ANY*", "anything at all"))
	assert.True(t, KeywordMatches("*ANY*", " x "))
	assert.True(t, KeywordMatches("*ANY*", "!!!"))

	assert.False(t, KeywordMatches("*ANY*", ""))
	assert.False(t, KeywordMatches("*ANY*", "   "))
}

func TestKeywordMatches_WildcardIsRawCompareOnly(t *testing.T) {
	// A stored keyword that merely normalizes like the sentinel is not a
	// wildcard.
	assert.False(t, KeywordMatches("any", "something else"))
	assert.True(t, KeywordMatches("any", "ANY"))
}
