// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/adminauth/internal/platform/middleware"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/users/role"
)

type fixture struct {
	router  http.Handler
	tokens  *sec.TokenService
	service *role.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh",
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	service := newService(newMemoryStore())
	router := middleware.Authenticate(tokens, nil)(role.NewHandler(service).Routes())
	return &fixture{router: router, tokens: tokens, service: service}
}

func (fixture *fixture) do(t *testing.T, method, path, body string, permissions ...string) (int, map[string]any) {
	t.Helper()

	claims := sec.AccessClaims{UserID: "user-1", Email: "ops@example.com"}
	for _, name := range permissions {
		claims.Permissions = append(claims.Permissions, sec.PermissionClaim{ID: name, Name: name})
	}
	issued, err := fixture.tokens.SignAccess(claims)
	require.NoError(t, err)

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Authorization", "Bearer "+issued.Token)
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)

	payload := map[string]any{}
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	}
	return recorder.Code, payload
}

/*
TestHandler_PermissionGuards verifies every route demands its permission.
*/
func TestHandler_PermissionGuards(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
		need   string
	}{
		{http.MethodGet, "/roles", "", "roles.view"},
		{http.MethodPost, "/roles", `{"name":"editor"}`, "roles.create"},
		{http.MethodGet, "/permission-groups", "", "groups.view"},
		{http.MethodPost, "/permission-groups", `{"name":"brand"}`, "groups.create"},
		{http.MethodGet, "/permissions", "", "permission.view"},
	}

	for _, tt := range tests {
		t.Run(tt.method+tt.path, func(t *testing.T) {
			fixture := newFixture(t)

			status, body := fixture.do(t, tt.method, tt.path, tt.body, "dashboard.view")
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, "FORBIDDEN", body["code"])

			status, _ = fixture.do(t, tt.method, tt.path, tt.body, tt.need)
			assert.Less(t, status, 300)
		})
	}
}

/*
TestHandler_DeleteSuperAdmin verifies the protected role answers 403 over HTTP.
*/
func TestHandler_DeleteSuperAdmin(t *testing.T) {
	fixture := newFixture(t)

	super, err := fixture.service.CreateRole(context.Background(), role.CreateRoleInput{Name: "super_admin"})
	require.NoError(t, err)

	status, body := fixture.do(t, http.MethodDelete, "/roles/"+super.ID, "", "roles.delete")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, _ = fixture.do(t, http.MethodGet, "/roles/"+super.ID, "", "roles.view")
	assert.Equal(t, http.StatusOK, status)

	status, body = fixture.do(t, http.MethodGet, "/roles/not-a-uuid", "", "roles.view")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

/*
TestHandler_CreateGroup verifies the generated permissions are returned.
*/
func TestHandler_CreateGroup(t *testing.T) {
	fixture := newFixture(t)

	status, body := fixture.do(t, http.MethodPost, "/permission-groups", `{"name":"outlet","actions":["view","create"]}`, "groups.create")
	require.Equal(t, http.StatusCreated, status)

	data := body["data"].(map[string]any)
	assert.Equal(t, "outlet", data["name"])
	assert.Len(t, data["permissions"], 2)

	status, body = fixture.do(t, http.MethodPost, "/permission-groups", `{"name":"outlet"}`, "groups.create")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_FIELD", body["code"])
}
