// Copyright (c) 2026 TaskForge. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/platform/sec"
)

/*
TestGenerateSecureToken verifies entropy length and uniqueness of generated
opaque tokens.
*/
func TestGenerateSecureToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := sec.GenerateSecureToken(32)
		require.NoError(t, err)

		// 32 raw bytes -> 43 base64url characters without padding.
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "=")

		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}

/*
TestHashToken verifies the storage hash is deterministic and never equals the
plain token.
*/
func TestHashToken(t *testing.T) {
	token, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	first := sec.HashToken(token)
	second := sec.HashToken(token)

	assert.Equal(t, first, second)
	assert.NotEqual(t, token, first)
	// hex-encoded SHA-256
	assert.Len(t, first, 64)

	other, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, sec.HashToken(other))
}

/*
TestPasswordHash_RoundTrip covers bcrypt hashing and verification.
*/
func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("Secr3t!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secr3t!", hash)

	assert.True(t, sec.CheckPasswordHash("Secr3t!", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
	assert.False(t, sec.CheckPasswordHash("Secr3t!", "not-a-bcrypt-hash"))
}
