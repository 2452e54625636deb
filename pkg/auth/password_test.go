package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("talons-and-claws")

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "talons-and-claws", hash)
	assert.NoError(t, ComparePassword(hash, "talons-and-claws"))
	assert.Error(t, ComparePassword(hash, "wrong-password"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")

	assert.Error(t, err)
}

func TestGenerateToken_UniqueAndURLSafe(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		token, err := GenerateToken()

		assert.NoError(t, err)
		assert.False(t, seen[token], "token collision")
		seen[token] = true

		// 32 bytes base64url without padding
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("longenough"))
}
