// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the authentication engine of the admin platform.

It covers credential login, the role-gated admin login, social sign-in,
token refresh, password change, current-user lookup and logout.

# Architecture

  - Service: Orchestrates each flow as a fail-fast sequence of gates.
  - IdentityStore: Persistence contract for accounts, hydrated with roles
    and direct permissions (PostgreSQL implementation in store_postgres.go).
  - RevocationList: Optional Redis denylist of token IDs (store_redis.go).

Every effective permission set is computed by [rbac.Resolve]; no flow
flattens permissions on its own.
*/
package auth

import (
	"time"

	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/pkg/normalize"
)

// # Domain Entities

// Provider is the identity source an account was registered with.
type Provider string

const (
	ProviderCredentials Provider = "credentials"
	ProviderGoogle      Provider = "google"
	ProviderFacebook    Provider = "facebook"
	ProviderGithub      Provider = "github"
	ProviderApple       Provider = "apple"
)

// SocialProviders lists the external providers accepted by social sign-in.
var SocialProviders = []string{
	string(ProviderGoogle),
	string(ProviderFacebook),
	string(ProviderGithub),
	string(ProviderApple),
}

// User is an account of the admin platform.
//
// Roles carry their permissions; Permissions holds the grants attached to the
// account directly. Neither is an effective set until passed through
// [rbac.Resolve].
type User struct {
	ID                  string            `json:"id"`
	Email               string            `json:"email"`
	MobileNumber        string            `json:"mobile_number"`
	FirstName           string            `json:"first_name"`
	LastName            string            `json:"last_name"`
	PasswordHash        *string           `json:"-"` // nil for social-only accounts
	Provider            Provider          `json:"provider"`
	IsAdmin             bool              `json:"is_admin"`
	NeedsPasswordChange bool              `json:"needs_password_change"`
	PasswordChangedAt   *time.Time        `json:"password_changed_at,omitempty"`
	Roles               []rbac.Role       `json:"roles"`
	Permissions         []rbac.Permission `json:"permissions"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// FullName returns the display name used in refresh claims, falling back to
// the email when the account has no name.
func (user *User) FullName() string {
	if name := normalize.FullName(user.FirstName, user.LastName); name != "" {
		return name
	}
	return user.Email
}

// EffectivePermissions resolves the permission set the account holds.
func (user *User) EffectivePermissions() rbac.PermissionSet {
	return rbac.Resolve(user.Roles, user.Permissions)
}

// HasPassword reports whether a password digest is stored.
func (user *User) HasPassword() bool {
	return user.PasswordHash != nil && *user.PasswordHash != ""
}

// Profile is the sanitized projection returned to the account owner.
type Profile struct {
	*User
	EffectivePermissions rbac.PermissionSet `json:"effective_permissions"`
}

// NewProfile wraps user with its resolved permission set.
func NewProfile(user *User) *Profile {
	return &Profile{User: user, EffectivePermissions: user.EffectivePermissions()}
}
