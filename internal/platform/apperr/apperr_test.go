// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
)

/*
TestAppError_StatusMapping verifies every error kind maps to its HTTP status.
*/
func TestAppError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"not_found", apperr.NotFound("User"), apperr.CodeNotFound, http.StatusNotFound},
		{"invalid_credentials", apperr.InvalidCredentials("Password is incorrect!"), apperr.CodeInvalidCredentials, http.StatusUnauthorized},
		{"provider_conflict", apperr.ProviderConflict("google"), apperr.CodeProviderConflict, http.StatusBadRequest},
		{"unauthorized", apperr.Unauthorized("no"), apperr.CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("no"), apperr.CodeForbidden, http.StatusForbidden},
		{"invalid_token", apperr.InvalidToken("bad"), apperr.CodeInvalidToken, http.StatusUnauthorized},
		{"token_expired", apperr.TokenExpired(), apperr.CodeTokenExpired, http.StatusUnauthorized},
		{"missing_token", apperr.MissingToken(), apperr.CodeMissingToken, http.StatusUnauthorized},
		{"duplicate_field", apperr.DuplicateField("email", "taken"), apperr.CodeDuplicateField, http.StatusConflict},
		{"validation", apperr.ValidationError("bad"), apperr.CodeValidation, http.StatusBadRequest},
		{"internal", apperr.Internal(errors.New("boom")), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

/*
TestProviderConflict_NamesProvider verifies the message tells the caller which provider to use.
*/
func TestProviderConflict_NamesProvider(t *testing.T) {
	err := apperr.ProviderConflict("facebook")
	assert.Contains(t, err.Error(), "facebook provider")
}

/*
TestAs_TraversesWrappedErrors verifies kinds survive fmt.Errorf wrapping.
*/
func TestAs_TraversesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("auth_service_login_failed: %w", apperr.NotFound("User"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
	assert.True(t, apperr.Is(wrapped, apperr.CodeNotFound))
	assert.True(t, apperr.IsNotFound(wrapped))
	assert.False(t, apperr.Is(wrapped, apperr.CodeForbidden))

	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestInternal_HidesCause verifies the cause is reachable for logging but not part of the message.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := apperr.Internal(cause)

	assert.NotContains(t, err.Error(), "relation")
	assert.ErrorIs(t, err, cause)
}
