// Copyright (c) 2026 TaskForge. All rights reserved.

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for authentication,
credential issuance, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/taskforge/taskforge/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the TaskForge platform.
//
// # Session State
//
// The refresh token hash and its expiry live directly on the user record.
// Each user holds at most one valid refresh token at a time; issuing a new
// one overwrites the stored pair in a single UPDATE, so a rotation can never
// leave two usable tokens behind.
type User struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"` // Explicitly omitted from JSON for security.
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	DisplayName   string       `json:"display_name"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	Timezone      string       `json:"timezone,omitempty"`
	Locale        string       `json:"locale,omitempty"`
	Role          sec.UserRole `json:"role"`
	EmailVerified bool         `json:"email_verified"`

	RefreshTokenHash      string     `json:"-"` // Hashed value of the refresh token. Omitted for security.
	RefreshTokenExpiresAt *time.Time `json:"-"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldDisplayName     = "display_name"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldRefreshToken    = "refresh_token"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
	FieldEmailSent       = "verification_email_sent"
)
