// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/postgres/pgtest"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/internal/users/auth"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

const (
	groupUsers   = "018f0000-0000-7000-8000-000000000001"
	permView     = "018f0000-0000-7000-8000-000000000011"
	permCreate   = "018f0000-0000-7000-8000-000000000012"
	permRolesAdd = "018f0000-0000-7000-8000-000000000013"
	roleAdmin    = "018f0000-0000-7000-8000-000000000021"
)

func seedGrants(t *testing.T, store *auth.PostgresStore) {
	pgtest.Exec(t, store.Pool(),
		`INSERT INTO iam.permissiongroup (id, name) VALUES ('`+groupUsers+`', 'users')`,
		`INSERT INTO iam.permission (id, name, groupid) VALUES
			('`+permView+`', 'users.view', '`+groupUsers+`'),
			('`+permCreate+`', 'users.create', '`+groupUsers+`'),
			('`+permRolesAdd+`', 'roles.create', NULL)`,
		`INSERT INTO iam.role (id, name) VALUES ('`+roleAdmin+`', 'admin')`,
		`INSERT INTO iam.rolepermission (roleid, permissionid) VALUES
			('`+roleAdmin+`', '`+permView+`'),
			('`+roleAdmin+`', '`+permCreate+`')`,
	)
}

/*
TestPostgresStore covers account persistence and hydration against a real database.
*/
func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	store := auth.NewPostgresStore(pgtest.Start(t))
	seedGrants(t, store)

	hash := "$2a$04$abcdefghijklmnopqrstuu"
	user := &auth.User{
		ID:           uuid.New(),
		Email:        "a@x.com",
		MobileNumber: "0170000001",
		FirstName:    "Ada",
		PasswordHash: &hash,
		Roles:        []rbac.Role{{ID: roleAdmin}},
		Permissions:  []rbac.Permission{{ID: permView}, {ID: permRolesAdd}},
	}
	require.NoError(t, store.Create(ctx, user))

	t.Run("find_by_email_hydrates", func(t *testing.T) {
		found, err := store.FindByEmailOrMobile(ctx, "a@x.com", "")
		require.NoError(t, err)

		assert.Equal(t, auth.ProviderCredentials, found.Provider)
		require.Len(t, found.Roles, 1)
		assert.Equal(t, "admin", found.Roles[0].Name)
		assert.Len(t, found.Roles[0].Permissions, 2)
		assert.Len(t, found.Permissions, 2)

		// users.view arrives twice but counts once.
		assert.ElementsMatch(t,
			[]string{"users.view", "users.create", "roles.create"},
			found.EffectivePermissions().Names())
	})

	t.Run("find_by_mobile", func(t *testing.T) {
		found, err := store.FindByEmailOrMobile(ctx, "", "0170000001")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("empty_identifiers_never_match", func(t *testing.T) {
		_, err := store.FindByEmailOrMobile(ctx, "", "")
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("duplicate_email", func(t *testing.T) {
		err := store.Create(ctx, &auth.User{ID: uuid.New(), Email: "a@x.com"})
		assert.True(t, apperr.Is(err, apperr.CodeDuplicateField), "got %v", err)
	})

	t.Run("social_accounts_store_null_mobile", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, &auth.User{ID: uuid.New(), Email: "g1@x.com", Provider: auth.ProviderGoogle}))
		require.NoError(t, store.Create(ctx, &auth.User{ID: uuid.New(), Email: "g2@x.com", Provider: auth.ProviderGoogle}))

		found, err := store.FindByEmailOrMobile(ctx, "g1@x.com", "")
		require.NoError(t, err)
		assert.Empty(t, found.MobileNumber)
		assert.Nil(t, found.PasswordHash)
		assert.Empty(t, found.Roles)
	})

	t.Run("update_password", func(t *testing.T) {
		changedAt := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.UpdatePassword(ctx, user.ID, "new-digest", changedAt))

		found, err := store.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-digest", *found.PasswordHash)
		require.NotNil(t, found.PasswordChangedAt)
		assert.True(t, changedAt.Equal(*found.PasswordChangedAt))

		err = store.UpdatePassword(ctx, uuid.New(), "x", changedAt)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("update_keeps_digest_when_nil", func(t *testing.T) {
		found, err := store.FindByID(ctx, user.ID)
		require.NoError(t, err)

		found.FirstName = "Augusta"
		found.PasswordHash = nil
		require.NoError(t, store.Update(ctx, found))

		reloaded, err := store.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Augusta", reloaded.FirstName)
		require.NotNil(t, reloaded.PasswordHash)
		assert.Equal(t, "new-digest", *reloaded.PasswordHash)
	})
}
