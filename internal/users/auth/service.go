// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/observability"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/platform/validate"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/pkg/normalize"
	"github.com/taibuivan/adminauth/pkg/slice"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer defines the token operations the engine needs.
//
// [sec.TokenService] satisfies it.
type TokenIssuer interface {
	SignAccess(claims sec.AccessClaims) (*sec.IssuedToken, error)
	SignRefresh(claims sec.RefreshClaims) (*sec.IssuedToken, error)
	VerifyRefresh(token string) (*sec.RefreshClaims, error)
	DecodeRefresh(token string) (*sec.RefreshClaims, error)
	AccessTTL() time.Duration
}

// Service implements the authentication flows.
//
// # Review Process
//
// This service is critical for security. Changes to the order of the gates
// in a flow change which error a caller observes and must be reviewed.
type Service struct {
	store       IdentityStore
	hasher      *sec.PasswordHasher
	tokens      TokenIssuer
	revocations RevocationList
	metrics     *observability.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// ServiceOption customizes a [Service].
type ServiceOption func(*Service)

// WithRevocationList enables the token denylist on refresh and logout.
func WithRevocationList(revocations RevocationList) ServiceOption {
	return func(service *Service) { service.revocations = revocations }
}

// WithMetrics records every flow outcome.
func WithMetrics(metrics *observability.Metrics) ServiceOption {
	return func(service *Service) { service.metrics = metrics }
}

// WithLogger sets the logger used for security events.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(service *Service) { service.logger = logger }
}

// WithClock overrides the time source used for password change stamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(service *Service) { service.now = now }
}

// NewService constructs a [Service] with its required collaborators.
func NewService(store IdentityStore, hasher *sec.PasswordHasher, tokens TokenIssuer, options ...ServiceOption) *Service {
	service := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Session Types

// LoginInput holds the credentials of a password login. Either Email or
// MobileNumber identifies the account.
type LoginInput struct {
	Email        string
	MobileNumber string
	Password     string
}

// SocialInput holds an identity already verified by an external provider.
type SocialInput struct {
	Email        string
	FirstName    string
	LastName     string
	MobileNumber string
	Provider     Provider
}

// ChangePasswordInput holds the old and new plaintext passwords.
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// Session is the outcome of a successful sign-in. RefreshToken is nil when
// the account lacks an identity field a refresh needs (no mobile number).
type Session struct {
	AccessToken  *sec.IssuedToken
	RefreshToken *sec.IssuedToken
	User         *User
}

// # Password Login

/*
Login authenticates an account with its password.

Description: Looks the account up by email or mobile number, refuses accounts
bound to an external provider, verifies the password and issues a session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Access and refresh tokens plus the account
  - err: NOT_FOUND, PROVIDER_CONFLICT, INVALID_CREDENTIALS or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (session *Session, err error) {
	defer func() { service.observe(context, FlowLogin, err) }()

	user, err := service.lookup(context, input.Email, input.MobileNumber)
	if err != nil {
		return nil, err
	}

	if err := service.checkCredentials(user, input.Password); err != nil {
		return nil, err
	}

	return service.issueSession(user)
}

/*
AdminLogin authenticates an account that holds an administrative role.

Description: Same gates as [Service.Login], with a role gate right after the
lookup. The role gate runs before the provider and password checks, so a
non-admin learns nothing about the password.

Returns:
  - *Session: Access and refresh tokens plus the account
  - err: NOT_FOUND, UNAUTHORIZED, PROVIDER_CONFLICT, INVALID_CREDENTIALS
*/
func (service *Service) AdminLogin(context context.Context, input LoginInput) (session *Session, err error) {
	defer func() { service.observe(context, FlowAdminLogin, err) }()

	user, err := service.lookup(context, input.Email, input.MobileNumber)
	if err != nil {
		return nil, err
	}

	if !rbac.HasRole(user.Roles, constants.RoleAdmin, constants.RoleSuperAdmin) {
		return nil, apperr.Unauthorized(msgAdminOnly)
	}

	if err := service.checkCredentials(user, input.Password); err != nil {
		return nil, err
	}

	return service.issueSession(user)
}

// checkCredentials applies the provider gate, then the password gate. A
// provider conflict always wins over a wrong password.
func (service *Service) checkCredentials(user *User, password string) error {
	if user.Provider != "" && user.Provider != ProviderCredentials {
		return apperr.ProviderConflict(string(user.Provider))
	}

	if user.HasPassword() && !service.hasher.Verify(password, *user.PasswordHash) {
		return apperr.InvalidCredentials(msgPasswordIncorrect)
	}

	return nil
}

// # Social Sign-in

/*
SocialSignIn signs in, or enrolls, an account verified by an external provider.

Description: An existing account must have been created with the same
provider. Unknown emails are enrolled without a password.

Returns:
  - *Session: Tokens plus the (possibly new) account
  - err: VALIDATION_ERROR, PROVIDER_CONFLICT or internal failures
*/
func (service *Service) SocialSignIn(context context.Context, input SocialInput) (session *Session, err error) {
	defer func() { service.observe(context, FlowSocialSignIn, err) }()

	validator := &validate.Validator{}
	if err := validator.OneOf(FieldProvider, string(input.Provider), SocialProviders...).Err(); err != nil {
		return nil, err
	}

	email := normalize.Email(input.Email)

	// ── 1. Existing Account ───────────────────────────────────────────────
	user, err := service.store.FindByEmailOrMobile(context, email, "")
	switch {
	case err == nil:
		if user.Provider != input.Provider {
			return nil, apperr.ProviderConflict(string(user.Provider))
		}
		return service.issueSession(user)

	case !apperr.IsNotFound(err):
		return nil, fmt.Errorf("auth_service_social_lookup_failed: %w", err)
	}

	// ── 2. Enrollment ─────────────────────────────────────────────────────
	user = &User{
		ID:           uuid.New(),
		Email:        email,
		MobileNumber: normalize.Mobile(input.MobileNumber),
		FirstName:    normalize.Name(input.FirstName),
		LastName:     normalize.Name(input.LastName),
		Provider:     input.Provider,
		Roles:        []rbac.Role{},
		Permissions:  []rbac.Permission{},
	}

	if err := service.store.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_social_enroll_failed: %w", err)
	}

	service.logger.Info("auth_social_account_created",
		slog.String("user_id", user.ID),
		slog.String("provider", string(user.Provider)),
	)

	return service.issueSession(user)
}

// # Token Refresh

/*
Refresh exchanges a refresh token for a new access token.

Description: The claim shape is checked on the decoded token before anything
else, so incomplete tokens never reach the store. Permissions are resolved
again from current store state.

Parameters:
  - context: context.Context
  - token: string (raw refresh token)

Returns:
  - *sec.IssuedToken: The new access token
  - err: MISSING_TOKEN, INVALID_TOKEN, TOKEN_EXPIRED, NOT_FOUND
*/
func (service *Service) Refresh(context context.Context, token string) (access *sec.IssuedToken, err error) {
	defer func() { service.observe(context, FlowRefresh, err) }()

	if token == "" {
		return nil, apperr.MissingToken()
	}

	// ── 1. Claim Shape ────────────────────────────────────────────────────
	decoded, err := service.tokens.DecodeRefresh(token)
	if err != nil {
		return nil, err
	}
	if !decoded.IsComplete() {
		return nil, apperr.InvalidToken(msgInvalidRefresh)
	}

	// ── 2. Signature & Expiry ─────────────────────────────────────────────
	claims, err := service.tokens.VerifyRefresh(token)
	if err != nil {
		return nil, err
	}

	if err := service.ensureNotRevoked(context, claims.ID); err != nil {
		return nil, err
	}

	// ── 3. Account Still Exists ───────────────────────────────────────────
	user, err := service.store.FindByEmailOrMobile(context, claims.Email, claims.MobileNumber)
	if err != nil {
		return nil, err
	}

	return service.signAccess(user)
}

// # Password Change

/*
ChangePassword replaces the password of the authenticated account.

Description: The old password must match when a digest is stored. The
existing tokens stay valid until they expire.

Parameters:
  - context: context.Context
  - email: string (from the verified access token)
  - input: ChangePasswordInput

Returns:
  - err: NOT_FOUND, INVALID_CREDENTIALS or internal failures
*/
func (service *Service) ChangePassword(context context.Context, email string, input ChangePasswordInput) (err error) {
	defer func() { service.observe(context, FlowChangePassword, err) }()

	user, err := service.store.FindByEmailOrMobile(context, email, "")
	if err != nil {
		return err
	}

	if user.HasPassword() && !service.hasher.Verify(input.OldPassword, *user.PasswordHash) {
		return apperr.InvalidCredentials(msgOldPasswordWrong)
	}

	digest, err := service.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.store.UpdatePassword(context, user.ID, digest, service.now().UTC()); err != nil {
		return fmt.Errorf("auth_service_password_update_failed: %w", err)
	}

	return nil
}

// # Current User

// CurrentUser returns the sanitized profile of the account behind a verified
// access token. A stale token for a deleted account yields NOT_FOUND.
func (service *Service) CurrentUser(context context.Context, email string) (*Profile, error) {
	user, err := service.store.FindByEmailOrMobile(context, email, "")
	if err != nil {
		return nil, err
	}
	return NewProfile(user), nil
}

// # Logout

/*
Logout verifies the refresh token and confirms the account still exists.

Description: Without a revocation list this is advisory: the caller clears
the client cookie, and the token stays cryptographically valid until expiry.
With a revocation list, the refresh token and the current access token (when
given and issued to the same account) are denied until they expire.

Parameters:
  - context: context.Context
  - refreshToken: string
  - access: *sec.AccessClaims (optional, the caller's verified access token)

Returns:
  - *sec.RefreshClaims: The verified refresh claims
  - err: MISSING_TOKEN, INVALID_TOKEN, TOKEN_EXPIRED, NOT_FOUND
*/
func (service *Service) Logout(context context.Context, refreshToken string, access *sec.AccessClaims) (claims *sec.RefreshClaims, err error) {
	defer func() { service.observe(context, FlowLogout, err) }()

	if refreshToken == "" {
		return nil, apperr.MissingToken()
	}

	claims, err = service.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := service.store.FindByEmailOrMobile(context, claims.Email, ""); err != nil {
		return nil, err
	}

	if service.revocations == nil {
		return claims, nil
	}

	if err := service.revocations.Revoke(context, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, apperr.Internal(err)
	}
	if access != nil && access.ExpiresAt != nil && access.UserID == claims.UserID {
		if err := service.revocations.Revoke(context, access.ID, access.ExpiresAt.Time); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	return claims, nil
}

// # Internal Helpers

// lookup normalizes the identifiers before asking the store.
func (service *Service) lookup(context context.Context, email, mobile string) (*User, error) {
	return service.store.FindByEmailOrMobile(context, normalize.Email(email), normalize.Mobile(mobile))
}

func (service *Service) ensureNotRevoked(context context.Context, tokenID string) error {
	if service.revocations == nil {
		return nil
	}

	revoked, err := service.revocations.IsRevoked(context, tokenID)
	if err != nil {
		return apperr.Internal(err)
	}
	if revoked {
		return apperr.InvalidToken(msgRevoked)
	}
	return nil
}

// issueSession signs both token classes for user. A refresh token Refresh
// would reject is never issued; the session then carries the access token only.
func (service *Service) issueSession(user *User) (*Session, error) {
	access, err := service.signAccess(user)
	if err != nil {
		return nil, err
	}

	session := &Session{AccessToken: access, User: user}

	claims := sec.RefreshClaims{
		UserID:       user.ID,
		Email:        user.Email,
		MobileNumber: user.MobileNumber,
		Name:         user.FullName(),
		Roles:        rbac.RoleNames(user.Roles),
	}
	if !claims.IsComplete() {
		return session, nil
	}

	if session.RefreshToken, err = service.tokens.SignRefresh(claims); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}
	return session, nil
}

// signAccess embeds the effective permission set of user in an access token.
func (service *Service) signAccess(user *User) (*sec.IssuedToken, error) {
	permissions := slice.Map(user.EffectivePermissions(), func(permission rbac.Permission) sec.PermissionClaim {
		return sec.PermissionClaim{ID: permission.ID, Name: permission.Name}
	})

	access, err := service.tokens.SignAccess(sec.AccessClaims{
		UserID:       user.ID,
		Email:        user.Email,
		MobileNumber: user.MobileNumber,
		Permissions:  permissions,
		Roles:        rbac.RoleNames(user.Roles),
	})
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}
	return access, nil
}

// observe records the outcome of a flow and logs rejected attempts.
func (service *Service) observe(context context.Context, flow string, err error) {
	service.metrics.ObserveAuth(flow, err)

	if err == nil {
		return
	}

	if appError := apperr.As(err); appError != nil && appError.HTTPStatus < 500 {
		service.logger.WarnContext(context, "auth_flow_rejected",
			slog.String("flow", flow),
			slog.String("code", appError.Code),
		)
	}
}
