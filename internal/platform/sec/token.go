// Copyright (c) 2026 TaskForge. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// # Opaque Session Tokens
//
// Refresh, reset, and verification tokens are opaque random values: no
// structure, no embedded claims, nothing derivable from user data. Only a
// hash of the refresh token is ever persisted, so a database leak does not
// leak usable session credentials.

// GenerateSecureToken produces a cryptographically random token of the given
// byte length, encoded as URL-safe base64 without padding.
//
// # Entropy
//
// 32 bytes (256 bits) is the floor used across the platform. The value is
// drawn from crypto/rand and never from timestamps, sequence numbers, or ids.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a token.
//
// The digest is what gets stored and looked up; the plain token exists only
// in transit and in the client's hands.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
