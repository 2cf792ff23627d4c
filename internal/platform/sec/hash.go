// Copyright (c) 2026 TaskForge. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash of an unguessable throwaway value. It is
// compared against when a login targets a nonexistent account so that the
// request burns the same CPU time as a real password check. Without this,
// response timing would reveal whether an email is registered.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// DummyPasswordCheck performs a bcrypt comparison that always fails.
//
// Call sites use it on the user-not-found path of Login to keep the timing
// of "unknown email" indistinguishable from "wrong password".
func DummyPasswordCheck(plainTextPassword string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plainTextPassword))
}
