// Copyright (c) 2026 TaskForge. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/internal/platform/sec"
	"github.com/taskforge/taskforge/internal/users/auth"
	"github.com/taskforge/taskforge/pkg/uuidv7"
)

// # In-Memory Fakes

type fakeUserRepo struct {
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*auth.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByRefreshTokenHash(_ context.Context, tokenHash string) (*auth.User, error) {
	for _, user := range r.users {
		if user.RefreshTokenHash != "" && user.RefreshTokenHash == tokenHash {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperr.Conflict("User already exists")
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *auth.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (r *fakeUserRepo) UpdateRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.RefreshTokenHash = tokenHash
	user.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearRefreshToken(_ context.Context, userID string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.RefreshTokenHash = ""
	user.RefreshTokenExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, userID string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, userID string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.EmailVerified = true
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(r.users, id)
	return nil
}

// fakeTokenStore backs both the reset and verification token repositories.
type fakeTokenStore struct {
	tokens    map[string]string // token -> userID
	lastToken string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (s *fakeTokenStore) Set(_ context.Context, token, userID string, _ time.Duration) error {
	s.tokens[token] = userID
	s.lastToken = token
	return nil
}

func (s *fakeTokenStore) Get(_ context.Context, token string) (string, error) {
	if userID, ok := s.tokens[token]; ok {
		return userID, nil
	}
	return "", apperr.InvalidToken("Token is invalid or expired")
}

func (s *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

// fakeMailer records deliveries and can be told to fail.
type fakeMailer struct {
	sent    int
	failErr error
}

func (m *fakeMailer) SendMessage(_ context.Context, _, _, _ string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent++
	return nil
}

// # Harness

type serviceHarness struct {
	service      *auth.Service
	users        *fakeUserRepo
	resetTokens  *fakeTokenStore
	verifyTokens *fakeTokenStore
	mailer       *fakeMailer
	tokens       *sec.TokenService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	tokens, err := sec.NewTokenService("test-secret-at-least-32-bytes-long!", "taskforge.test", "taskforge-api")
	require.NoError(t, err)

	h := &serviceHarness{
		users:        newFakeUserRepo(),
		resetTokens:  newFakeTokenStore(),
		verifyTokens: newFakeTokenStore(),
		mailer:       &fakeMailer{},
		tokens:       tokens,
	}
	h.service = auth.NewService(
		h.users,
		h.resetTokens,
		h.verifyTokens,
		tokens,
		h.mailer,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return h
}

func (h *serviceHarness) register(t *testing.T, email, password string) *auth.User {
	t.Helper()
	result, err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return result.User
}

// # Registration

/*
TestRegister_Success verifies the happy path of account creation.
*/
func TestRegister_Success(t *testing.T) {
	h := newServiceHarness(t)

	result, err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:       "Alice@Example.COM",
		Password:    "s3cret-password",
		FirstName:   "Alice",
		LastName:    "Doe",
		DisplayName: "alice",
	})
	require.NoError(t, err)

	// Email is normalized, password never stored in plain text
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEqual(t, "s3cret-password", result.User.PasswordHash)
	assert.False(t, result.User.EmailVerified)
	assert.Equal(t, sec.RoleMember, result.User.Role)

	// Verification email went out and the token landed in the store
	assert.True(t, result.VerificationEmailSent)
	assert.Equal(t, 1, h.mailer.sent)
	assert.NotEmpty(t, h.verifyTokens.lastToken)
}

/*
TestRegister_DuplicateEmail verifies that re-registering an email fails with
a CONFLICT regardless of letter casing.
*/
func TestRegister_DuplicateEmail(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t, "alice@example.com", "s3cret-password")

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:     "ALICE@example.com",
		Password:  "other-password",
		FirstName: "Alice",
		LastName:  "Again",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

/*
TestRegister_MailerFailure verifies degraded success: the account is created
even when the verification email cannot be delivered.
*/
func TestRegister_MailerFailure(t *testing.T) {
	h := newServiceHarness(t)
	h.mailer.failErr = errors.New("smtp connection refused")

	result, err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:     "alice@example.com",
		Password:  "s3cret-password",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	assert.False(t, result.VerificationEmailSent)

	// The account exists and can log in
	_, err = h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	assert.NoError(t, err)
}

// # Login

/*
TestLogin_IssuesValidTokens verifies the access token claims and the stored
refresh token state after a login.
*/
func TestLogin_IssuesValidTokens(t *testing.T) {
	h := newServiceHarness(t)
	user := h.register(t, "alice@example.com", "s3cret-password")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	// Access token verifies and carries the user identity
	claims, err := h.tokens.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.ExpiresAt.After(time.Now()))

	// Only the hash of the refresh token is stored
	stored := h.users.users[user.ID]
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, sec.HashToken(session.RefreshToken), stored.RefreshTokenHash)
	assert.NotEqual(t, session.RefreshToken, stored.RefreshTokenHash)
	require.NotNil(t, stored.RefreshTokenExpiresAt)
	assert.True(t, stored.RefreshTokenExpiresAt.After(time.Now()))

	// Login bookkeeping
	assert.NotNil(t, stored.LastLoginAt)
}

/*
TestLogin_EnumerationResistance verifies that unknown-email and wrong-password
logins are indistinguishable by error code and message.
*/
func TestLogin_EnumerationResistance(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t, "alice@example.com", "s3cret-password")

	_, unknownErr := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	_, wrongErr := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)

	unknownApp := apperr.As(unknownErr)
	wrongApp := apperr.As(wrongErr)
	require.NotNil(t, unknownApp)
	require.NotNil(t, wrongApp)

	assert.Equal(t, "UNAUTHORIZED", unknownApp.Code)
	assert.Equal(t, unknownApp.Code, wrongApp.Code)
	assert.Equal(t, unknownApp.Message, wrongApp.Message)
}

// # Session Rotation

/*
TestRefreshSession_Rotation verifies that refresh issues a new pair and that
the presented token can never be replayed.
*/
func TestRefreshSession_Rotation(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t, "alice@example.com", "s3cret-password")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	// First refresh succeeds and rotates
	rotated, err := h.service.RefreshSession(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
	assert.NotEmpty(t, rotated.AccessToken)

	// Replaying the original token fails
	_, err = h.service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// The rotated token still works
	_, err = h.service.RefreshSession(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

/*
TestRefreshSession_ExpiredToken verifies lazy expiry enforcement: a stored
token past its expiry is rejected at use time.
*/
func TestRefreshSession_ExpiredToken(t *testing.T) {
	h := newServiceHarness(t)
	user := h.register(t, "alice@example.com", "s3cret-password")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	// Backdate the stored expiry
	past := time.Now().Add(-time.Minute)
	h.users.users[user.ID].RefreshTokenExpiresAt = &past

	_, err = h.service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestRefreshSession_UnknownToken verifies that a token nobody holds fails.
*/
func TestRefreshSession_UnknownToken(t *testing.T) {
	h := newServiceHarness(t)

	_, err := h.service.RefreshSession(context.Background(), "completely-made-up-token")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// # Logout

/*
TestLogout_KillsRefreshToken verifies that a pre-logout refresh token is dead
and that logout is idempotent.
*/
func TestLogout_KillsRefreshToken(t *testing.T) {
	h := newServiceHarness(t)
	user := h.register(t, "alice@example.com", "s3cret-password")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	require.NoError(t, h.service.Logout(context.Background(), user.ID))

	_, err = h.service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)

	// Second and third logouts are harmless
	assert.NoError(t, h.service.Logout(context.Background(), user.ID))
	assert.NoError(t, h.service.Logout(context.Background(), user.ID))

	// Logout for a vanished user is also a no-op
	assert.NoError(t, h.service.Logout(context.Background(), uuidv7.New()))
}

// # Password Recovery

/*
TestRequestPasswordReset_UnknownEmail verifies the silent path: no error and
no email for an unregistered address.
*/
func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	h := newServiceHarness(t)

	err := h.service.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Zero(t, h.mailer.sent)
	assert.Empty(t, h.resetTokens.tokens)
}

/*
TestResetPassword_SingleUse verifies the full recovery flow and that a
consumed token cannot be replayed.
*/
func TestResetPassword_SingleUse(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t, "alice@example.com", "s3cret-password")

	require.NoError(t, h.service.RequestPasswordReset(context.Background(), "alice@example.com"))
	token := h.resetTokens.lastToken
	require.NotEmpty(t, token)

	// Reset succeeds and the old password stops working
	require.NoError(t, h.service.ResetPassword(context.Background(), token, "brand-new-password"))

	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.Error(t, err)

	_, err = h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "brand-new-password",
	})
	require.NoError(t, err)

	// The token was consumed
	err = h.service.ResetPassword(context.Background(), token, "yet-another-password")
	require.Error(t, err)
	assert.Equal(t, "INVALID_TOKEN", apperr.As(err).Code)
}

/*
TestResetPassword_ClearsSession verifies that a password reset revokes the
active refresh token.
*/
func TestResetPassword_ClearsSession(t *testing.T) {
	h := newServiceHarness(t)
	h.register(t, "alice@example.com", "s3cret-password")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	require.NoError(t, h.service.RequestPasswordReset(context.Background(), "alice@example.com"))
	require.NoError(t, h.service.ResetPassword(context.Background(), h.resetTokens.lastToken, "brand-new-password"))

	_, err = h.service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
}

/*
TestChangePassword verifies current-password enforcement and session cleanup.
*/
func TestChangePassword(t *testing.T) {
	h := newServiceHarness(t)
	user := h.register(t, "alice@example.com", "s3cret-password")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	// Wrong current password is rejected
	err = h.service.ChangePassword(context.Background(), user.ID, "not-the-password", "brand-new-password")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Correct current password succeeds and kills the session
	require.NoError(t, h.service.ChangePassword(context.Background(), user.ID, "s3cret-password", "brand-new-password"))

	_, err = h.service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)

	_, err = h.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "brand-new-password",
	})
	assert.NoError(t, err)
}

// # Email Verification

/*
TestVerifyEmail verifies token consumption and the verified flag flip.
*/
func TestVerifyEmail(t *testing.T) {
	h := newServiceHarness(t)
	user := h.register(t, "alice@example.com", "s3cret-password")

	token := h.verifyTokens.lastToken
	require.NotEmpty(t, token)

	require.NoError(t, h.service.VerifyEmail(context.Background(), token))
	assert.True(t, h.users.users[user.ID].EmailVerified)

	// Single use
	err := h.service.VerifyEmail(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, "INVALID_TOKEN", apperr.As(err).Code)
}

/*
TestSessionLifecycle walks the whole journey of one account: register, verify,
login, rotate, replay, logout.
*/
func TestSessionLifecycle(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	// Register
	result, err := h.service.Register(ctx, auth.RegisterInput{
		Email:       "alice@example.com",
		Password:    "correct-horse-battery",
		FirstName:   "Alice",
		LastName:    "Doe",
		DisplayName: "alice",
	})
	require.NoError(t, err)
	require.True(t, result.VerificationEmailSent)

	// Verify email
	require.NoError(t, h.service.VerifyEmail(ctx, h.verifyTokens.lastToken))

	// Login
	session, err := h.service.Login(ctx, auth.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	claims, err := h.tokens.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	// Rotate twice
	second, err := h.service.RefreshSession(ctx, session.RefreshToken)
	require.NoError(t, err)
	third, err := h.service.RefreshSession(ctx, second.RefreshToken)
	require.NoError(t, err)

	// Every superseded token is dead
	_, err = h.service.RefreshSession(ctx, session.RefreshToken)
	require.Error(t, err)
	_, err = h.service.RefreshSession(ctx, second.RefreshToken)
	require.Error(t, err)

	// Logout kills the live one too
	require.NoError(t, h.service.Logout(ctx, result.User.ID))
	_, err = h.service.RefreshSession(ctx, third.RefreshToken)
	require.Error(t, err)
}
