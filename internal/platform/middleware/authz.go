// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/adminauth/internal/platform/request"
	"github.com/taibuivan/adminauth/internal/platform/respond"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/rbac"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// Defining it here decouples the middleware from [sec.TokenService] so tests
// can inject fakes.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*sec.AccessClaims, error)
}

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticate extracts and verifies the access token from the Authorization header.
//
// # Flow
//  1. No 'Authorization' header: the request proceeds as anonymous.
//  2. Malformed header: 401 INVALID_TOKEN.
//  3. Verification failure: 401 TOKEN_EXPIRED or INVALID_TOKEN.
//  4. Revoked token (when a checker is configured): 401 INVALID_TOKEN.
//  5. Verified claims are attached to the request context.
//
// # Parameters
//   - verifier: the access token verifier.
//   - revocations: optional denylist; nil disables the check.
func Authenticate(verifier TokenVerifier, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Header Extraction ──────────────────────────────────────────
			token, err := requestutil.BearerToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Revocation ─────────────────────────────────────────────────
			if revocations != nil {
				revoked, err := revocations.IsRevoked(request.Context(), claims.ID)
				if err != nil {
					respond.Error(writer, request, apperr.Internal(err))
					return
				}
				if revoked {
					respond.Error(writer, request, apperr.InvalidToken("Token has been revoked"))
					return
				}
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			if slot := identitySlotFrom(request.Context()); slot != nil {
				slot.userID = claims.UserID
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.MissingToken())
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequirePermission blocks requests whose effective permission set lacks any
// of the required permissions.
//
// # Usage
//
// Must be registered AFTER [Authenticate]. It implies [RequireAuth].
//
// # Flow
//  1. No claims in context: 401 MISSING_TOKEN.
//  2. Build the permission set carried by the access token.
//  3. [rbac.Check] each requirement; the first denial is a 403 FORBIDDEN.
func RequirePermission(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.MissingToken())
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			set := PermissionSetFromClaims(claims)
			for _, permission := range required {
				if err := rbac.Check(permission, set); err != nil {
					ctxutil.GetLogger(request.Context()).Warn("permission_denied",
						slog.String("user_id", claims.UserID),
						slog.String("required", permission),
					)
					respond.Error(writer, request, err)
					return
				}
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// PermissionSetFromClaims rebuilds the effective permission set embedded in
// an access token.
func PermissionSetFromClaims(claims *sec.AccessClaims) rbac.PermissionSet {
	direct := make([]rbac.Permission, 0, len(claims.Permissions))
	for _, permission := range claims.Permissions {
		direct = append(direct, rbac.Permission{ID: permission.ID, Name: permission.Name})
	}
	return rbac.Resolve(nil, direct)
}

// # Identity Slot

// identitySlot lets the outer logging middleware learn the user ID that an
// inner Authenticate attached to a derived context.
type identitySlot struct {
	userID string
}

type identitySlotKey struct{}

func withIdentitySlot(ctx context.Context, slot *identitySlot) context.Context {
	return context.WithValue(ctx, identitySlotKey{}, slot)
}

func identitySlotFrom(ctx context.Context) *identitySlot {
	slot, _ := ctx.Value(identitySlotKey{}).(*identitySlot)
	return slot
}
