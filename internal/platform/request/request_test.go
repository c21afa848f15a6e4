// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/adminauth/internal/platform/request"
	"github.com/taibuivan/adminauth/internal/platform/sec"
)

/*
TestBearerToken covers header parsing.
*/
func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		invalid bool
	}{
		{"absent", "", "", false},
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lowercase_scheme", "bearer abc", "abc", false},
		{"wrong_scheme", "Basic Zm9vOmJhcg==", "", true},
		{"scheme_only", "Bearer", "", true},
		{"blank_token", "Bearer   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}

			token, err := requestutil.BearerToken(request)
			if tt.invalid {
				assert.True(t, apperr.Is(err, apperr.CodeInvalidToken))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

/*
TestRefreshToken verifies the header takes precedence over the cookie.
*/
func TestRefreshToken(t *testing.T) {
	cookie := &http.Cookie{Name: constants.RefreshTokenCookieName, Value: "from-cookie"}

	both := httptest.NewRequest(http.MethodPost, "/", nil)
	both.Header.Set(constants.HeaderAuthorization, "Bearer from-header")
	both.AddCookie(cookie)
	token, err := requestutil.RefreshToken(both)
	require.NoError(t, err)
	assert.Equal(t, "from-header", token)

	cookieOnly := httptest.NewRequest(http.MethodPost, "/", nil)
	cookieOnly.AddCookie(cookie)
	token, err = requestutil.RefreshToken(cookieOnly)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)

	neither := httptest.NewRequest(http.MethodPost, "/", nil)
	token, err = requestutil.RefreshToken(neither)
	require.NoError(t, err)
	assert.Empty(t, token)
}

/*
TestRequiredClaims verifies anonymous requests are rejected with MISSING_TOKEN.
*/
func TestRequiredClaims(t *testing.T) {
	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := requestutil.RequiredClaims(anonymous)
	assert.True(t, apperr.Is(err, apperr.CodeMissingToken))

	authed := anonymous.WithContext(ctxutil.WithAuthUser(anonymous.Context(), &sec.AccessClaims{UserID: "u1"}))
	claims, err := requestutil.RequiredClaims(authed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

type payload struct {
	Email string `json:"email" validate:"required,email"`
}

/*
TestDecodeAndValidate verifies malformed JSON and tag failures both yield VALIDATION_ERROR.
*/
func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"email":"a@b.co"}`, true},
		{"malformed", `{"email":`, false},
		{"rule_failure", `{"email":"nope"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var target payload

			err := requestutil.DecodeAndValidate(request, &target)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
		})
	}
}
