// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

import (
	"fmt"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
)

// PermissionSet is an ordered collection of permissions with no duplicate IDs.
type PermissionSet []Permission

// Has reports whether the set contains a permission with the given name.
func (set PermissionSet) Has(name string) bool {
	for _, permission := range set {
		if permission.Name == name {
			return true
		}
	}
	return false
}

// Names returns the permission names in set order.
func (set PermissionSet) Names() []string {
	names := make([]string, 0, len(set))
	for _, permission := range set {
		names = append(names, permission.Name)
	}
	return names
}

// # Resolution

/*
Resolve computes the effective permission set of an identity.

Description: Walks role permissions in role order, then direct grants, and
keeps the first occurrence of each permission. Identity is the permission ID;
permissions without an ID are keyed by name.

Parameters:
  - roles: []Role (each with its permissions loaded)
  - direct: []Permission

Returns:
  - PermissionSet: never nil, at most the sum of all input sizes
*/
func Resolve(roles []Role, direct []Permission) PermissionSet {
	capacity := len(direct)
	for _, role := range roles {
		capacity += len(role.Permissions)
	}

	set := make(PermissionSet, 0, capacity)
	seen := make(map[string]struct{}, capacity)

	add := func(permission Permission) {
		key := permission.ID
		if key == "" {
			key = "name:" + permission.Name
		}
		if _, duplicate := seen[key]; duplicate {
			return
		}
		seen[key] = struct{}{}
		set = append(set, permission)
	}

	for _, role := range roles {
		for _, permission := range role.Permissions {
			add(permission)
		}
	}

	for _, permission := range direct {
		add(permission)
	}

	return set
}

// # Authorization

// Check allows the request when set holds the required permission. An empty
// requirement always allows. Denial is a FORBIDDEN [apperr.AppError].
func Check(required string, set PermissionSet) error {
	if required == "" || set.Has(required) {
		return nil
	}
	return apperr.Forbidden(fmt.Sprintf("Missing required permission: %s", required))
}

// # Role Helpers

// RoleNames returns the names of the given roles in order.
func RoleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names
}

// HasRole reports whether any role matches one of names.
func HasRole(roles []Role, names ...string) bool {
	for _, role := range roles {
		for _, name := range names {
			if role.Name == name {
				return true
			}
		}
	}
	return false
}
