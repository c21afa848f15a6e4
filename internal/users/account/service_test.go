// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/internal/users/account"
	"github.com/taibuivan/adminauth/internal/users/auth"
	"github.com/taibuivan/adminauth/pkg/pagination"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

// # Test Doubles

type memoryRepository struct {
	users  map[string]*auth.User
	saves  int
	params pagination.Params
}

func newMemoryRepository(users ...*auth.User) *memoryRepository {
	repository := &memoryRepository{users: map[string]*auth.User{}}
	for _, user := range users {
		repository.users[user.ID] = user
	}
	return repository
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := repository.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryRepository) FindByEmailOrMobile(_ context.Context, email, mobile string) (*auth.User, error) {
	for _, user := range repository.users {
		if (email != "" && user.Email == email) || (mobile != "" && user.MobileNumber == mobile) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryRepository) Create(_ context.Context, user *auth.User) error {
	copied := *user
	repository.users[user.ID] = &copied
	return nil
}

func (repository *memoryRepository) Save(_ context.Context, user *auth.User, _ bool) error {
	repository.saves++
	copied := *user
	repository.users[user.ID] = &copied
	return nil
}

func (repository *memoryRepository) Delete(_ context.Context, id string) error {
	delete(repository.users, id)
	return nil
}

func (repository *memoryRepository) List(_ context.Context, filter account.UserFilter, params pagination.Params) ([]*auth.User, int, error) {
	repository.params = params
	matches := []*auth.User{}
	for _, user := range repository.users {
		if filter.Search != "" && !strings.Contains(user.Email, filter.Search) {
			continue
		}
		if filter.RoleID != "" && !hasRoleID(user, filter.RoleID) {
			continue
		}
		matches = append(matches, user)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		left, right := matches[i], matches[j]
		if params.Ascending() {
			left, right = right, left
		}
		if params.Sort == account.SortEmail {
			return left.Email > right.Email
		}
		return left.CreatedAt.After(right.CreatedAt)
	})

	start := min(params.Offset(), len(matches))
	end := min(start+params.Limit, len(matches))
	return matches[start:end], len(matches), nil
}

func hasRoleID(user *auth.User, id string) bool {
	for _, role := range user.Roles {
		if role.ID == id {
			return true
		}
	}
	return false
}

type memoryCatalog struct {
	roles       map[string]rbac.Role
	permissions map[string]rbac.Permission
}

func (catalog memoryCatalog) FindRoles(_ context.Context, ids []string) ([]rbac.Role, error) {
	roles := []rbac.Role{}
	for _, id := range ids {
		if role, ok := catalog.roles[id]; ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (catalog memoryCatalog) FindPermissions(_ context.Context, ids []string) ([]rbac.Permission, error) {
	permissions := []rbac.Permission{}
	for _, id := range ids {
		if permission, ok := catalog.permissions[id]; ok {
			permissions = append(permissions, permission)
		}
	}
	return permissions, nil
}

// # Fixtures

var (
	usersView  = rbac.Permission{ID: uuid.New(), Name: "users.view"}
	brandView  = rbac.Permission{ID: uuid.New(), Name: "brand.view"}
	staffRole  = rbac.Role{ID: uuid.New(), Name: "staff", Permissions: []rbac.Permission{usersView}}
	superAdmin = rbac.Role{ID: uuid.New(), Name: "super_admin", Permissions: []rbac.Permission{usersView, brandView}}

	catalog = memoryCatalog{
		roles:       map[string]rbac.Role{staffRole.ID: staffRole, superAdmin.ID: superAdmin},
		permissions: map[string]rbac.Permission{usersView.ID: usersView, brandView.ID: brandView},
	}

	hasher = sec.NewPasswordHasher(bcrypt.MinCost)
)

func newService(repository *memoryRepository) *account.Service {
	return account.NewService(repository, catalog, hasher, slog.New(slog.DiscardHandler))
}

func validInput() account.CreateUserInput {
	return account.CreateUserInput{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "Ada@X.com",
		MobileNumber: "0170000001",
		Password:     "secret1",
		RoleIDs:      []string{staffRole.ID},
	}
}

// # Create

/*
TestCreateUser covers required fields, uniqueness and grant resolution.
*/
func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repository := newMemoryRepository()
		user, err := newService(repository).CreateUser(ctx, account.System, validInput())
		require.NoError(t, err)

		assert.Equal(t, "ada@x.com", user.Email)
		assert.Equal(t, auth.ProviderCredentials, user.Provider)
		assert.True(t, hasher.Verify("secret1", *user.PasswordHash))
		assert.Equal(t, []string{"staff"}, rbac.RoleNames(user.Roles))
		assert.Contains(t, repository.users, user.ID)
	})

	t.Run("lists_every_missing_field", func(t *testing.T) {
		_, err := newService(newMemoryRepository()).CreateUser(ctx, account.System, account.CreateUserInput{LastName: "x"})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, apperr.CodeValidation, appError.Code)

		fields := []string{}
		for _, detail := range appError.Details {
			fields = append(fields, detail.Field)
		}
		assert.ElementsMatch(t, []string{"first_name", "email", "password", "roles", "mobile_number"}, fields)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		existing := &auth.User{ID: uuid.New(), Email: "ada@x.com", Provider: auth.ProviderCredentials}
		_, err := newService(newMemoryRepository(existing)).CreateUser(ctx, account.System, validInput())
		assert.True(t, apperr.Is(err, apperr.CodeDuplicateField))
	})

	t.Run("email_held_by_social_account", func(t *testing.T) {
		existing := &auth.User{ID: uuid.New(), Email: "ada@x.com", Provider: auth.ProviderFacebook}
		_, err := newService(newMemoryRepository(existing)).CreateUser(ctx, account.System, validInput())

		require.True(t, apperr.Is(err, apperr.CodeProviderConflict))
		assert.Contains(t, err.Error(), "facebook")
	})

	t.Run("duplicate_mobile", func(t *testing.T) {
		existing := &auth.User{ID: uuid.New(), Email: "other@x.com", MobileNumber: "0170000001"}
		_, err := newService(newMemoryRepository(existing)).CreateUser(ctx, account.System, validInput())

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, apperr.CodeDuplicateField, appError.Code)
		assert.Contains(t, appError.Message, "Mobile")
	})

	t.Run("unknown_role", func(t *testing.T) {
		input := validInput()
		input.RoleIDs = []string{uuid.New()}

		_, err := newService(newMemoryRepository()).CreateUser(ctx, account.System, input)
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})
}

// # Update

/*
TestUpdateUser covers partial updates and uniqueness excluding self.
*/
func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	digest, err := hasher.Hash("secret1")
	require.NoError(t, err)

	ada := &auth.User{ID: uuid.New(), Email: "ada@x.com", MobileNumber: "01", FirstName: "Ada", PasswordHash: &digest, Roles: []rbac.Role{staffRole}}
	bob := &auth.User{ID: uuid.New(), Email: "bob@x.com", MobileNumber: "02"}
	root := &auth.User{ID: uuid.New(), Email: "root@x.com", MobileNumber: "03", Roles: []rbac.Role{superAdmin}}
	repository := newMemoryRepository(ada, bob, root)
	service := newService(repository)
	caller := account.CallerOf(bob.ID)

	text := func(value string) *string { return &value }

	t.Run("same_email_is_not_a_conflict", func(t *testing.T) {
		user, err := service.UpdateUser(ctx, caller, ada.ID, account.UpdateUserInput{Email: text("ADA@x.com"), FirstName: text("Augusta")})
		require.NoError(t, err)
		assert.Equal(t, "Augusta", user.FirstName)
	})

	t.Run("email_of_another_account", func(t *testing.T) {
		_, err := service.UpdateUser(ctx, caller, ada.ID, account.UpdateUserInput{Email: text("bob@x.com")})
		assert.True(t, apperr.Is(err, apperr.CodeDuplicateField))
	})

	t.Run("mobile_of_another_account", func(t *testing.T) {
		_, err := service.UpdateUser(ctx, caller, ada.ID, account.UpdateUserInput{MobileNumber: text("02")})
		assert.True(t, apperr.Is(err, apperr.CodeDuplicateField))
	})

	t.Run("replaces_roles_and_rehashes_password", func(t *testing.T) {
		roles := []string{superAdmin.ID}
		user, err := service.UpdateUser(ctx, account.CallerOf(root.ID), ada.ID, account.UpdateUserInput{RoleIDs: &roles, Password: text("secret2")})
		require.NoError(t, err)

		assert.Equal(t, []string{"super_admin"}, rbac.RoleNames(user.Roles))
		stored := repository.users[ada.ID]
		assert.True(t, hasher.Verify("secret2", *stored.PasswordHash))
	})

	t.Run("missing_account", func(t *testing.T) {
		_, err := service.UpdateUser(ctx, caller, uuid.New(), account.UpdateUserInput{})
		assert.True(t, apperr.IsNotFound(err))
	})
}

/*
TestUpdateUser_SuperAdminRole verifies the super_admin role is never taken
from its holder and is only granted by another super_admin.
*/
func TestUpdateUser_SuperAdminRole(t *testing.T) {
	ctx := context.Background()
	staffOnly := []string{staffRole.ID}
	superOnly := []string{superAdmin.ID}

	newAccounts := func() (root, staff *auth.User, repository *memoryRepository) {
		root = &auth.User{ID: uuid.New(), Email: "super_admin@kids.com", IsAdmin: true, Roles: []rbac.Role{superAdmin}}
		staff = &auth.User{ID: uuid.New(), Email: "staff@x.com", Roles: []rbac.Role{staffRole}}
		return root, staff, newMemoryRepository(root, staff)
	}

	tests := []struct {
		name    string
		caller  func(root, staff *auth.User) account.Caller
		target  func(root, staff *auth.User) string
		roleIDs []string
		allowed bool
	}{
		{
			name:    "holder_cannot_be_stripped_by_another_account",
			caller:  func(_, staff *auth.User) account.Caller { return account.CallerOf(staff.ID) },
			target:  func(root, _ *auth.User) string { return root.ID },
			roleIDs: staffOnly,
		},
		{
			name:    "holder_cannot_strip_itself",
			caller:  func(root, _ *auth.User) account.Caller { return account.CallerOf(root.ID) },
			target:  func(root, _ *auth.User) string { return root.ID },
			roleIDs: staffOnly,
		},
		{
			name:    "non_holder_cannot_grant",
			caller:  func(_, staff *auth.User) account.Caller { return account.CallerOf(staff.ID) },
			target:  func(_, staff *auth.User) string { return staff.ID },
			roleIDs: superOnly,
		},
		{
			name:    "unknown_caller_cannot_grant",
			caller:  func(_, _ *auth.User) account.Caller { return account.CallerOf(uuid.New()) },
			target:  func(_, staff *auth.User) string { return staff.ID },
			roleIDs: superOnly,
		},
		{
			name:    "holder_can_grant",
			caller:  func(root, _ *auth.User) account.Caller { return account.CallerOf(root.ID) },
			target:  func(_, staff *auth.User) string { return staff.ID },
			roleIDs: superOnly,
			allowed: true,
		},
		{
			name:    "holder_keeps_role_alongside_others",
			caller:  func(_, staff *auth.User) account.Caller { return account.CallerOf(staff.ID) },
			target:  func(root, _ *auth.User) string { return root.ID },
			roleIDs: []string{superAdmin.ID, staffRole.ID},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, staff, repository := newAccounts()
			id := tt.target(root, staff)
			before := *repository.users[id]
			roleIDs := tt.roleIDs

			user, err := newService(repository).UpdateUser(ctx, tt.caller(root, staff), id, account.UpdateUserInput{RoleIDs: &roleIDs})

			if tt.allowed {
				require.NoError(t, err)
				assert.True(t, rbac.HasRole(user.Roles, "super_admin"))
				return
			}
			assert.True(t, apperr.Is(err, apperr.CodeForbidden))
			assert.Zero(t, repository.saves)
			assert.Equal(t, before, *repository.users[id])
		})
	}
}

/*
TestDeleteUser_AfterStripAttempt verifies the root account survives a strip
followed by a delete.
*/
func TestDeleteUser_AfterStripAttempt(t *testing.T) {
	ctx := context.Background()
	root := &auth.User{ID: uuid.New(), Email: "super_admin@kids.com", IsAdmin: true, Roles: []rbac.Role{superAdmin}}
	admin := &auth.User{ID: uuid.New(), Email: "admin@x.com", Roles: []rbac.Role{staffRole}}
	repository := newMemoryRepository(root, admin)
	service := newService(repository)
	empty := []string{}

	_, err := service.UpdateUser(ctx, account.CallerOf(admin.ID), root.ID, account.UpdateUserInput{RoleIDs: &empty})
	require.Error(t, err)

	err = service.DeleteUser(ctx, root.ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	assert.Contains(t, repository.users, root.ID)
}

/*
TestCreateUser_SuperAdminGrant verifies only a super_admin or the
installation itself may create a super_admin.
*/
func TestCreateUser_SuperAdminGrant(t *testing.T) {
	ctx := context.Background()
	root := &auth.User{ID: uuid.New(), Email: "super_admin@kids.com", MobileNumber: "0100000000", Roles: []rbac.Role{superAdmin}}
	staff := &auth.User{ID: uuid.New(), Email: "staff@x.com", MobileNumber: "0100000001", Roles: []rbac.Role{staffRole}}

	tests := []struct {
		name    string
		caller  account.Caller
		allowed bool
	}{
		{name: "staff", caller: account.CallerOf(staff.ID)},
		{name: "super_admin", caller: account.CallerOf(root.ID), allowed: true},
		{name: "system", caller: account.System, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repository := newMemoryRepository(root, staff)
			input := validInput()
			input.RoleIDs = []string{superAdmin.ID}

			user, err := newService(repository).CreateUser(ctx, tt.caller, input)

			if tt.allowed {
				require.NoError(t, err)
				assert.Contains(t, repository.users, user.ID)
				return
			}
			assert.True(t, apperr.Is(err, apperr.CodeForbidden))
			assert.Len(t, repository.users, 2)
		})
	}
}

// # Read

/*
TestGetUser verifies profiles carry the resolved permission set.
*/
func TestGetUser(t *testing.T) {
	ctx := context.Background()
	user := &auth.User{
		ID:          uuid.New(),
		Email:       "ada@x.com",
		Roles:       []rbac.Role{staffRole},
		Permissions: []rbac.Permission{usersView, brandView},
	}
	service := newService(newMemoryRepository(user))

	profile, err := service.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.view", "brand.view"}, profile.EffectivePermissions.Names())

	profile, err = service.GetUserByEmail(ctx, " ADA@x.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)

	_, err = service.GetUserByEmail(ctx, "")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestListUsers verifies filtering and pagination metadata.
*/
func TestListUsers(t *testing.T) {
	ctx := context.Background()
	repository := newMemoryRepository(
		&auth.User{ID: uuid.New(), Email: "a@x.com", Roles: []rbac.Role{staffRole}},
		&auth.User{ID: uuid.New(), Email: "b@x.com"},
		&auth.User{ID: uuid.New(), Email: "c@y.com", Roles: []rbac.Role{staffRole}},
	)
	service := newService(repository)

	page, err := service.ListUsers(ctx, account.UserFilter{}, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, page.Meta)

	page, err = service.ListUsers(ctx, account.UserFilter{RoleID: staffRole.ID}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)

	page, err = service.ListUsers(ctx, account.UserFilter{}, pagination.Params{Search: "@y.com"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c@y.com", page.Items[0].Email)
}

/*
TestListUsers_Sort verifies allow-listed sort keys and the newest-first
fallback.
*/
func TestListUsers_Sort(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repository := newMemoryRepository(
		&auth.User{ID: uuid.New(), Email: "b@x.com", CreatedAt: now.Add(-2 * time.Hour)},
		&auth.User{ID: uuid.New(), Email: "c@x.com", CreatedAt: now.Add(-time.Hour)},
		&auth.User{ID: uuid.New(), Email: "a@x.com", CreatedAt: now},
	)
	service := newService(repository)

	tests := []struct {
		name   string
		params pagination.Params
		sort   string
		emails []string
	}{
		{"default_newest_first", pagination.Params{}, "created_at", []string{"a@x.com", "c@x.com", "b@x.com"}},
		{"email_ascending", pagination.Params{Sort: "email", Order: "asc"}, "email", []string{"a@x.com", "b@x.com", "c@x.com"}},
		{"email_descending", pagination.Params{Sort: "email", Order: "desc"}, "email", []string{"c@x.com", "b@x.com", "a@x.com"}},
		{"unknown_key_falls_back", pagination.Params{Sort: "password_hash", Order: "asc"}, "created_at", []string{"b@x.com", "c@x.com", "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := service.ListUsers(ctx, account.UserFilter{}, tt.params)
			require.NoError(t, err)

			emails := []string{}
			for _, user := range page.Items {
				emails = append(emails, user.Email)
			}
			assert.Equal(t, tt.emails, emails)
			assert.Equal(t, tt.sort, repository.params.Sort)
		})
	}
}

// # Delete

/*
TestDeleteUser_SuperAdminForbidden verifies a super_admin holder survives a
delete with the record unchanged.
*/
func TestDeleteUser_SuperAdminForbidden(t *testing.T) {
	ctx := context.Background()
	root := &auth.User{ID: uuid.New(), Email: "super_admin@kids.com", IsAdmin: true, Roles: []rbac.Role{superAdmin}}
	repository := newMemoryRepository(root)
	before := *repository.users[root.ID]

	err := newService(repository).DeleteUser(ctx, root.ID)

	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	require.Contains(t, repository.users, root.ID)
	assert.Equal(t, before, *repository.users[root.ID])
}

/*
TestDeleteUser covers the regular and missing cases.
*/
func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	user := &auth.User{ID: uuid.New(), Email: "a@x.com", Roles: []rbac.Role{staffRole}}
	repository := newMemoryRepository(user)
	service := newService(repository)

	require.NoError(t, service.DeleteUser(ctx, user.ID))
	assert.NotContains(t, repository.users, user.ID)

	err := service.DeleteUser(ctx, user.ID)
	assert.True(t, apperr.IsNotFound(err))
}
