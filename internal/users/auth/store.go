// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Identity Data Access

// IdentityStore defines the account persistence contract the engine consumes.
//
// Every returned [User] is hydrated with its roles (including their
// permissions) and its direct permission grants.
type IdentityStore interface {

	/*
		FindByEmailOrMobile returns the account matching either identifier.

		Parameters:
		  - context: context.Context
		  - email: string (ignored when empty)
		  - mobile: string (ignored when empty)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when neither identifier matches
	*/
	FindByEmailOrMobile(context context.Context, email, mobile string) (*User, error)

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or storage errors
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		Create persists a new account. Roles and direct permissions listed on
		the user are attached in the same transaction.

		Returns:
		  - error: apperr.DuplicateField on unique violations
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists the mutable profile fields of an account.

		Returns:
		  - error: apperr.NotFound, apperr.DuplicateField or storage errors
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePassword replaces the password digest, clears the
		needs-password-change flag and stamps the change time.
	*/
	UpdatePassword(context context.Context, userID, passwordHash string, changedAt time.Time) error
}

// # Token Revocation

// RevocationList records token IDs that must no longer be honoured.
//
// Entries only need to live until the token would have expired anyway.
type RevocationList interface {
	Revoke(context context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(context context.Context, tokenID string) (bool, error)
}
