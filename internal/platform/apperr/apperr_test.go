// Copyright (c) 2026 TaskForge. All rights reserved.

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/platform/apperr"
)

/*
TestConstructors_Mapping verifies the code and HTTP status produced by each
constructor.
*/
func TestConstructors_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperr.AppError
		wantCode   string
		wantStatus int
	}{
		{"not_found", apperr.NotFound("Task"), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", apperr.Unauthorized("Invalid login credentials"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("Members only"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", apperr.Conflict("Email is already registered"), "CONFLICT", http.StatusConflict},
		{"invalid_token", apperr.InvalidToken("Reset token is invalid or expired"), "INVALID_TOKEN", http.StatusBadRequest},
		{"validation", apperr.ValidationError("Validation failed"), "VALIDATION_ERROR", http.StatusBadRequest},
		{"internal", apperr.Internal(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"unimplemented", apperr.Unimplemented("API keys"), "UNIMPLEMENTED", http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
		})
	}
}

/*
TestUnwrap_Chain verifies that causes survive fmt.Errorf wrapping and can be
recovered with errors.As.
*/
func TestUnwrap_Chain(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("auth_service_register_failed: %w", apperr.Internal(cause))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)
	assert.True(t, errors.Is(wrapped, cause))
	assert.True(t, apperr.IsAppError(wrapped))
}

/*
TestInternal_HidesCause verifies the client-facing message never contains the
underlying cause.
*/
func TestInternal_HidesCause(t *testing.T) {
	ae := apperr.Internal(errors.New("pq: duplicate key value violates unique constraint"))
	assert.Equal(t, "An unexpected error occurred", ae.Error())
	assert.NotContains(t, ae.Message, "duplicate key")
}

/*
TestIsNotFound covers the NOT_FOUND classification helper.
*/
func TestIsNotFound(t *testing.T) {
	assert.True(t, apperr.IsNotFound(apperr.NotFound("Team")))
	assert.False(t, apperr.IsNotFound(apperr.Conflict("dup")))
	assert.False(t, apperr.IsNotFound(errors.New("plain")))
}
