// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package role administers the RBAC catalogue: roles, permission groups and
the permissions they contain.

The super_admin role is protected: it can be neither renamed nor deleted.
Permission groups are created together with one "<group>.<action>"
permission per action.
*/
package role

import (
	"context"

	"github.com/taibuivan/adminauth/internal/rbac"
)

// Store persists the RBAC catalogue.
//
// Roles are always returned with their permissions, groups with theirs.
type Store interface {
	ListRoles(ctx context.Context) ([]rbac.Role, error)
	FindRole(ctx context.Context, id string) (*rbac.Role, error)
	FindRoleByName(ctx context.Context, name string) (*rbac.Role, error)
	FindRoles(ctx context.Context, ids []string) ([]rbac.Role, error)
	CreateRole(ctx context.Context, role *rbac.Role) error
	UpdateRole(ctx context.Context, role *rbac.Role) error
	DeleteRole(ctx context.Context, id string) error

	FindPermissions(ctx context.Context, ids []string) ([]rbac.Permission, error)
	ListPermissions(ctx context.Context) ([]rbac.Permission, error)

	ListGroups(ctx context.Context) ([]rbac.PermissionGroup, error)
	FindGroupByName(ctx context.Context, name string) (*rbac.PermissionGroup, error)
	CreateGroup(ctx context.Context, group *rbac.PermissionGroup) error
}

// CreateRoleInput names a new role and the permissions it bundles.
type CreateRoleInput struct {
	Name          string
	PermissionIDs []string
}

// UpdateRoleInput is a partial role update. Nil fields are left unchanged;
// a non-nil PermissionIDs replaces the whole permission list.
type UpdateRoleInput struct {
	Name          *string
	PermissionIDs *[]string
}

// CreateGroupInput names a permission group and its actions. Empty Actions
// means [rbac.Actions].
type CreateGroupInput struct {
	Name    string
	Actions []string
}

const (
	fieldName          = "name"
	fieldPermissionIDs = "permission_ids"
	fieldActions       = "actions"

	msgRoleNotFound       = "Role"
	msgGroupNotFound      = "Permission group"
	msgPermissionNotFound = "Permission"
)
