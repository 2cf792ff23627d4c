// Copyright (c) 2026 TaskForge. All rights reserved.

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to
session lifecycle management via JWT access tokens and rotating refresh tokens.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Rotation, Recovery).
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Tokens).
  - Security: Leverages bcrypt hashing and HMAC-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/internal/platform/mailer"
	"github.com/taskforge/taskforge/internal/platform/sec"
	"github.com/taskforge/taskforge/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	resetTokenRepository        ResetTokenRepository
	verificationTokenRepository VerificationTokenRepository
	tokenProvider               TokenProvider
	mailer                      mailer.Mailer
	logger                      *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	resetRepo ResetTokenRepository,
	verifyRepo VerificationTokenRepository,
	tokenProv TokenProvider,
	mail mailer.Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:              userRepo,
		resetTokenRepository:        resetRepo,
		verificationTokenRepository: verifyRepo,
		tokenProvider:               tokenProv,
		mailer:                      mail,
		logger:                      logger,
	}
}

// normalizeEmail lowercases and trims an email so that lookups and uniqueness
// checks are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DisplayName string
}

// RegisterResult is the outcome of a successful registration.
//
// VerificationEmailSent is false when the account was created but the
// verification email could not be dispatched (degraded success). The account
// is never rolled back on mail failure.
type RegisterResult struct {
	User                  *User
	VerificationEmailSent bool
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member, handling password hashing,
verification token issuance, and the welcome email dispatch.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Created entity plus email dispatch status
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {
	email := normalizeEmail(input.Email)

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:            uuidv7.New(),
		Email:         email,
		PasswordHash:  hashedPassword,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		DisplayName:   input.DisplayName,
		Role:          sec.RoleMember,
		EmailVerified: false,
	}

	// Persist the user to the database. The unique index on email backstops
	// the earlier lookup against concurrent registrations.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Generate, store, and dispatch the verification token. Failures here do
	// not fail the registration: the account exists, the result just reports
	// that no email went out.
	emailSent := service.dispatchVerification(context, user)

	return &RegisterResult{User: user, VerificationEmailSent: emailSent}, nil
}

// dispatchVerification generates a verification token, stores it in Redis,
// and emails it to the user. Returns false on any step failing.
func (service *Service) dispatchVerification(context context.Context, user *User) bool {
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err != nil {
		service.logger.WarnContext(context, "auth_verification_token_generation_failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return false
	}

	if err := service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL); err != nil {
		service.logger.WarnContext(context, "auth_verification_token_store_failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return false
	}

	body := fmt.Sprintf(
		"Welcome to TaskForge!\n\nVerify your email address with this token:\n\n%s\n\nThe token expires in %d hours.",
		token, int(VerificationTokenTTL.Hours()),
	)
	if err := service.mailer.SendMessage(context, user.Email, "Verify your TaskForge email", body); err != nil {
		service.logger.WarnContext(context, "auth_verification_email_failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return false
	}

	return true
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and establishes the session by overwriting the stored refresh token pair.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(input.Email))

	// If (err != nil) the user does not exist. Burn a bcrypt comparison anyway
	// so the unknown-email path takes as long as a wrong password, then return
	// the same generic message to prevent enumeration.
	if err != nil {
		sec.DummyPasswordCheck(input.Password)
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using bcrypt's constant-time comparison to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	session, err := service.issueSession(context, user)
	if err != nil {
		return nil, err
	}

	// Best-effort login bookkeeping; a failed timestamp never blocks a login.
	if err := service.userRepository.RecordLogin(context, user.ID); err != nil {
		service.logger.WarnContext(context, "auth_record_login_failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}

	return session, nil
}

// issueSession generates a fresh access/refresh token pair and overwrites the
// stored refresh token hash and expiry in a single UPDATE.
//
// Both Login and RefreshSession funnel through here, so rotation and initial
// issuance can never drift apart.
func (service *Service) issueSession(context context.Context, user *User) (*LoginSession, error) {

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Overwrite the stored pair. After this statement the previous refresh
	// token (if any) is dead.
	expiresAt := time.Now().Add(RefreshTokenTTL)
	if err := service.userRepository.UpdateRefreshToken(context, user.ID, sec.HashToken(refreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_store_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Resolves the presented refresh token to its user, checks the
stored expiry lazily, and issues a fresh rotated pair. The presented token is
invalidated by the overwrite, so a replayed token always fails.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*LoginSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	user, err := service.userRepository.FindByRefreshTokenHash(context, tokenHash)

	// If (err != nil) the token was rotated away, cleared by logout, or never existed.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Expiry is enforced here, at use time. There is no background sweeper.
	if user.RefreshTokenExpiresAt == nil || time.Now().After(*user.RefreshTokenExpiresAt) {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	return service.issueSession(context, user)
}

/*
Logout clears the user's stored refresh token.

Description: Ensures the outstanding refresh token can never be used again.
Outstanding access tokens remain valid until their natural expiry (stateless
by design).

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, userID string) error {

	// Clearing an already-empty token column is a no-op, which makes repeated
	// logouts idempotent.
	if err := service.userRepository.ClearRefreshToken(context, userID); err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token, saves it to Redis, and mails it to the
account holder. The operation is silent when the email is unknown so callers
cannot probe for registered addresses.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Generation or storage errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		return nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	// Mail the token. Delivery failure is logged but not surfaced: the handler
	// response is identical either way.
	body := fmt.Sprintf(
		"A password reset was requested for your TaskForge account.\n\nReset token:\n\n%s\n\nThe token expires in %d hour(s). If you did not request this, ignore this message.",
		token, int(ResetTokenTTL.Hours()),
	)
	if err := service.mailer.SendMessage(context, user.Email, "Reset your TaskForge password", body); err != nil {
		service.logger.WarnContext(context, "auth_reset_email_failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}

	return nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
consumes the token, and clears the stored refresh token so every device must
log in again.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: InvalidToken or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Hash the new password securely
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// Update the user's password in persistent storage
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: kill the active session so the new password is required everywhere
	_ = service.userRepository.ClearRefreshToken(context, userID)

	// Delete the used token from Redis (single-use)
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password, applies the new hash, and clears
the stored refresh token for consistency with the reset flow.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security Side Effect: clear the stored refresh token to force a fresh login
	_ = service.userRepository.ClearRefreshToken(context, userID)

	return nil
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: InvalidToken, database, or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Update the user's status to verified in persistent storage
	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis (single-use)
	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}
