// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account implements administrative user management.

Administrators create, update, list and delete accounts and assign their
roles and direct permissions. Email and mobile number stay unique across
accounts. A super_admin holder cannot be deleted or lose the role, and only
a super_admin can grant it.
*/
package account

import (
	"context"

	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/internal/users/auth"
	"github.com/taibuivan/adminauth/pkg/pagination"
)

// # Contracts

// AccountRepository persists accounts, hydrated like [auth.IdentityStore].
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmailOrMobile(ctx context.Context, email, mobile string) (*auth.User, error)
	Create(ctx context.Context, user *auth.User) error

	// Save persists the profile fields. With replaceGrants it also replaces
	// the role and direct permission assignments, in the same transaction.
	Save(ctx context.Context, user *auth.User, replaceGrants bool) error

	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter, params pagination.Params) ([]*auth.User, int, error)
}

// Catalog resolves role and permission IDs into entities. Unknown IDs are
// skipped.
type Catalog interface {
	FindRoles(ctx context.Context, ids []string) ([]rbac.Role, error)
	FindPermissions(ctx context.Context, ids []string) ([]rbac.Permission, error)
}

// # Caller

// Caller identifies the account performing a change.
type Caller struct {
	UserID string
	system bool
}

// System is the installation itself. It may grant any role.
var System = Caller{system: true}

// CallerOf returns the caller for the signed-in account userID.
func CallerOf(userID string) Caller {
	return Caller{UserID: userID}
}

// # Inputs

// CreateUserInput holds a new credentials account.
type CreateUserInput struct {
	FirstName     string
	LastName      string
	Email         string
	MobileNumber  string
	Password      string
	IsAdmin       bool
	RoleIDs       []string
	PermissionIDs []string
}

// UpdateUserInput is a partial update. Nil fields are left unchanged; a
// non-nil ID list replaces the whole assignment.
type UpdateUserInput struct {
	FirstName     *string
	LastName      *string
	Email         *string
	MobileNumber  *string
	Password      *string
	IsAdmin       *bool
	RoleIDs       *[]string
	PermissionIDs *[]string
}

// UserFilter narrows a user listing. Search matches email, mobile number and
// names case-insensitively.
type UserFilter struct {
	Search string
	RoleID string
}

// Sort keys accepted by the user listing. The default is newest first.
const (
	SortCreatedAt = "created_at"
	SortEmail     = "email"
	SortFirstName = "first_name"
	SortLastName  = "last_name"
)

// SortKeys lists every accepted sort key.
var SortKeys = []string{SortCreatedAt, SortEmail, SortFirstName, SortLastName}

const (
	fieldSortBy        = "sortBy"
	fieldFirstName     = "first_name"
	fieldEmail         = "email"
	fieldMobileNumber  = "mobile_number"
	fieldPassword      = "password"
	fieldRoles         = "roles"
	fieldPermissionIDs = "permission_ids"

	msgUserNotFound = "User"
)
