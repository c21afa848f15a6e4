// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/rbac"
)

var (
	usersView   = rbac.Permission{ID: "p-1", Name: "users.view"}
	usersCreate = rbac.Permission{ID: "p-2", Name: "users.create"}
	usersDelete = rbac.Permission{ID: "p-3", Name: "users.delete"}
	rolesView   = rbac.Permission{ID: "p-4", Name: "roles.view"}
)

/*
TestResolve covers ordering, deduplication and empty inputs.
*/
func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		roles  []rbac.Role
		direct []rbac.Permission
		want   []string
	}{
		{
			name: "empty",
			want: []string{},
		},
		{
			name:  "roles_then_direct",
			roles: []rbac.Role{{Name: "editor", Permissions: []rbac.Permission{usersView}}},
			direct: []rbac.Permission{
				usersCreate,
			},
			want: []string{"users.view", "users.create"},
		},
		{
			name: "overlapping_roles",
			roles: []rbac.Role{
				{Name: "a", Permissions: []rbac.Permission{usersView, usersCreate}},
				{Name: "b", Permissions: []rbac.Permission{usersCreate, usersDelete}},
			},
			want: []string{"users.view", "users.create", "users.delete"},
		},
		{
			name:   "direct_duplicates_role",
			roles:  []rbac.Role{{Name: "a", Permissions: []rbac.Permission{rolesView}}},
			direct: []rbac.Permission{rolesView, rolesView},
			want:   []string{"roles.view"},
		},
		{
			name:   "direct_only",
			direct: []rbac.Permission{usersDelete},
			want:   []string{"users.delete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := rbac.Resolve(tt.roles, tt.direct)

			require.NotNil(t, set)
			assert.Equal(t, tt.want, set.Names())
		})
	}
}

/*
TestResolve_Properties checks uniqueness and the size bound over generated inputs.
*/
func TestResolve_Properties(t *testing.T) {
	catalogue := make([]rbac.Permission, 12)
	for i := range catalogue {
		catalogue[i] = rbac.Permission{ID: fmt.Sprintf("p-%d", i), Name: fmt.Sprintf("group%d.view", i)}
	}

	for seed := 0; seed < 50; seed++ {
		roles := make([]rbac.Role, seed%4)
		bound := 0
		for r := range roles {
			for k := 0; k < (seed+r)%6; k++ {
				roles[r].Permissions = append(roles[r].Permissions, catalogue[(seed*7+r*3+k)%len(catalogue)])
			}
			bound += len(roles[r].Permissions)
		}

		var direct []rbac.Permission
		for k := 0; k < seed%5; k++ {
			direct = append(direct, catalogue[(seed+k*5)%len(catalogue)])
		}
		bound += len(direct)

		set := rbac.Resolve(roles, direct)

		seen := map[string]bool{}
		for _, permission := range set {
			assert.False(t, seen[permission.ID], "duplicate %s for seed %d", permission.ID, seed)
			seen[permission.ID] = true
		}
		assert.LessOrEqual(t, len(set), bound)
	}
}

/*
TestResolve_KeysByNameWithoutID verifies permissions lacking IDs still dedupe.
*/
func TestResolve_KeysByNameWithoutID(t *testing.T) {
	set := rbac.Resolve(nil, []rbac.Permission{{Name: "users.view"}, {Name: "users.view"}})
	assert.Len(t, set, 1)
}

/*
TestCheck verifies allow and deny decisions.
*/
func TestCheck(t *testing.T) {
	set := rbac.Resolve(nil, []rbac.Permission{usersView})

	assert.NoError(t, rbac.Check("users.view", set))
	assert.NoError(t, rbac.Check("", set))
	assert.NoError(t, rbac.Check("", nil))

	err := rbac.Check("users.delete", set)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	err = rbac.Check("users.view", rbac.PermissionSet{})
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

/*
TestHasRole verifies name matching across several candidates.
*/
func TestHasRole(t *testing.T) {
	roles := []rbac.Role{{Name: "editor"}, {Name: "admin"}}

	assert.True(t, rbac.HasRole(roles, "admin", "super_admin"))
	assert.False(t, rbac.HasRole(roles, "super_admin"))
	assert.False(t, rbac.HasRole(nil, "admin"))
	assert.Equal(t, []string{"editor", "admin"}, rbac.RoleNames(roles))
}
