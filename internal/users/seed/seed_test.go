// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package seed_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/internal/users/account"
	"github.com/taibuivan/adminauth/internal/users/auth"
	"github.com/taibuivan/adminauth/internal/users/seed"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

// # Test Doubles

type memoryCatalog struct {
	groups map[string]*rbac.PermissionGroup
	roles  map[string]*rbac.Role
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{groups: map[string]*rbac.PermissionGroup{}, roles: map[string]*rbac.Role{}}
}

func (catalog *memoryCatalog) EnsureGroup(_ context.Context, name string, actions []string) (*rbac.PermissionGroup, bool, error) {
	if group, ok := catalog.groups[name]; ok {
		return group, false, nil
	}
	group := &rbac.PermissionGroup{ID: uuid.New(), Name: name}
	for _, action := range actions {
		group.Permissions = append(group.Permissions, rbac.Permission{ID: uuid.New(), Name: rbac.PermissionName(name, action), GroupID: group.ID})
	}
	catalog.groups[name] = group
	return group, true, nil
}

func (catalog *memoryCatalog) EnsureRole(_ context.Context, name string, permissionIDs []string) (*rbac.Role, bool, error) {
	if role, ok := catalog.roles[name]; ok {
		return role, false, nil
	}
	role := &rbac.Role{ID: uuid.New(), Name: name}
	for _, id := range permissionIDs {
		role.Permissions = append(role.Permissions, rbac.Permission{ID: id})
	}
	catalog.roles[name] = role
	return role, true, nil
}

type memoryAccounts struct {
	users  map[string]*auth.User
	caller account.Caller
	input  account.CreateUserInput
}

func (accounts *memoryAccounts) GetUserByEmail(_ context.Context, email string) (*auth.Profile, error) {
	if user, ok := accounts.users[email]; ok {
		return auth.NewProfile(user), nil
	}
	return nil, apperr.NotFound("User")
}

func (accounts *memoryAccounts) CreateUser(_ context.Context, caller account.Caller, input account.CreateUserInput) (*auth.User, error) {
	accounts.caller = caller
	accounts.input = input
	user := &auth.User{ID: uuid.New(), Email: input.Email, IsAdmin: input.IsAdmin}
	accounts.users[input.Email] = user
	return user, nil
}

/*
TestRun verifies the first run provisions everything and a second run is a
no-op.
*/
func TestRun(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	catalog := newMemoryCatalog()
	accounts := &memoryAccounts{users: map[string]*auth.User{}}
	admin := seed.DefaultAdministrator("admin@123")

	report, err := seed.Run(ctx, catalog, accounts, admin, logger)
	require.NoError(t, err)

	assert.Equal(t, seed.Report{GroupsCreated: 13, RoleCreated: true, AccountCreated: true}, report)
	assert.Len(t, catalog.roles["super_admin"].Permissions, 52)
	assert.Equal(t, account.System, accounts.caller)
	assert.True(t, accounts.input.IsAdmin)
	assert.Equal(t, "0123456789", accounts.input.MobileNumber)
	assert.Equal(t, []string{catalog.roles["super_admin"].ID}, accounts.input.RoleIDs)

	report, err = seed.Run(ctx, catalog, accounts, admin, logger)
	require.NoError(t, err)
	assert.Equal(t, seed.Report{}, report)
	assert.Len(t, accounts.users, 1)
}

/*
TestRun_RequiresPassword verifies nothing is written without a password.
*/
func TestRun_RequiresPassword(t *testing.T) {
	catalog := newMemoryCatalog()

	_, err := seed.Run(context.Background(), catalog, &memoryAccounts{}, seed.DefaultAdministrator(""), slog.New(slog.DiscardHandler))

	assert.ErrorIs(t, err, seed.ErrMissingPassword)
	assert.Empty(t, catalog.groups)
}
