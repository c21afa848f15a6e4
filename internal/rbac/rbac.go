// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rbac holds the role-based access control model and the two pure
operations every authorization decision goes through.

  - [Resolve] flattens role-inherited and directly granted permissions into
    one deduplicated [PermissionSet].
  - [Check] decides whether a set satisfies a required permission.

The package has no storage or transport dependencies. Stores hydrate the
types defined here; middleware and services call Resolve and Check.
*/
package rbac

import "time"

// # Domain Entities

// Permission is an atomic named capability, conventionally "<group>.<action>".
type Permission struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GroupID string `json:"group_id,omitempty"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PermissionGroup organizes permissions for presentation. It carries no
// authorization meaning of its own.
type PermissionGroup struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
}

// # Well-known Names

// Actions are the CRUD verbs every permission group is seeded with.
var Actions = []string{"view", "create", "update", "delete"}

// PermissionName composes a "<group>.<action>" permission name.
func PermissionName(group, action string) string {
	return group + "." + action
}
