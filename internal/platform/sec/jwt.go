// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing) from
// the domain logic. Services receive a [*TokenService] and a [*PasswordHasher]
// through their constructors.
//
// Two token classes exist. Access tokens carry the effective permission set
// and are short-lived. Refresh tokens carry enough identity to re-issue an
// access token and are signed with a separate secret.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

// # Claims

// PermissionClaim is a single permission embedded in an access token.
type PermissionClaim struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccessClaims is the payload of an access token.
//
// The middleware reconstructs the caller and their permission set from these
// claims without a database round trip.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID       string            `json:"id"`
	Email        string            `json:"email"`
	MobileNumber string            `json:"mobile_number,omitempty"`
	Permissions  []PermissionClaim `json:"permissions"`
	Roles        []string          `json:"roles,omitempty"`
}

// PermissionNames returns the names of the embedded permissions.
func (claims *AccessClaims) PermissionNames() []string {
	names := make([]string, 0, len(claims.Permissions))
	for _, permission := range claims.Permissions {
		names = append(names, permission.Name)
	}
	return names
}

// RefreshClaims is the payload of a refresh token.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID       string   `json:"id"`
	Email        string   `json:"email"`
	MobileNumber string   `json:"mobile_number"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
}

// IsComplete reports whether every identity field a refresh needs is present.
// An empty roles list is present; a missing one is not.
func (claims *RefreshClaims) IsComplete() bool {
	return claims.UserID != "" &&
		claims.Email != "" &&
		claims.Name != "" &&
		claims.MobileNumber != "" &&
		claims.Roles != nil
}

// IssuedToken is a freshly signed token with its identifiers.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// # Token Service

// TokenConfig holds the secrets and lifetimes for both token classes.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService signs and verifies HS256 tokens.
type TokenService struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// Option customizes a [TokenService].
type Option func(*TokenService)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(service *TokenService) {
		service.now = now
	}
}

// NewTokenService validates cfg and creates a [TokenService].
func NewTokenService(cfg TokenConfig, options ...Option) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	service := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		accessTTL:     cfg.AccessTTL,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}

	for _, option := range options {
		option(service)
	}

	return service, nil
}

// AccessTTL returns the lifetime of access tokens.
func (service *TokenService) AccessTTL() time.Duration {
	return service.accessTTL
}

// # Signing

// SignAccess signs an access token. Registered claims are stamped here and
// any values the caller set on them are replaced.
func (service *TokenService) SignAccess(claims AccessClaims) (*IssuedToken, error) {
	claims.RegisteredClaims = service.registered(claims.UserID, service.accessTTL)
	return service.sign(&claims, claims.RegisteredClaims, service.accessSecret)
}

// SignRefresh signs a refresh token with the refresh secret.
func (service *TokenService) SignRefresh(claims RefreshClaims) (*IssuedToken, error) {
	claims.RegisteredClaims = service.registered(claims.UserID, service.refreshTTL)
	return service.sign(&claims, claims.RegisteredClaims, service.refreshSecret)
}

func (service *TokenService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	issuedAt := service.now()
	return jwt.RegisteredClaims{
		ID:        uuid.New(),
		Subject:   subject,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
}

func (service *TokenService) sign(claims jwt.Claims, registered jwt.RegisteredClaims, secret []byte) (*IssuedToken, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signed,
		ID:        registered.ID,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// # Verification

// VerifyAccess checks signature and expiry of an access token.
//
// # Returns
//   - TOKEN_EXPIRED when the token is well-formed but past its expiry.
//   - INVALID_TOKEN for any other failure.
func (service *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.verify(tokenString, claims, service.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry of a refresh token.
func (service *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := service.verify(tokenString, claims, service.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeRefresh reads refresh claims without checking the signature or expiry.
// It is only used to inspect the claim shape before verification.
func (service *TokenService) DecodeRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, apperr.InvalidToken("Invalid token")
	}
	return claims, nil
}

func (service *TokenService) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(service.now),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return apperr.TokenExpired()
		}
		return apperr.InvalidToken("Invalid token")
	}

	if !token.Valid {
		return apperr.InvalidToken("Invalid token")
	}

	return nil
}
