// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/database/schema"
	"github.com/taibuivan/adminauth/internal/platform/dberr"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/pkg/pointer"
)

// PostgresStore implements [Store] on the iam schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// # Roles

// roleQuery selects roles joined with their permissions. where is appended
// verbatim and may reference the aliases r and p.
func roleQuery(where string) string {
	role, rolePermission, permission := schema.IAMRole, schema.IAMRolePermission, schema.IAMPermission

	return fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s, p.%s, p.%s, p.%s
		FROM %s r
		LEFT JOIN %s rp ON rp.%s = r.%s
		LEFT JOIN %s p ON p.%s = rp.%s
		%s
		ORDER BY r.%s, p.%s`,
		role.ID, role.Name, role.CreatedAt, role.UpdatedAt,
		permission.ID, permission.Name, permission.GroupID,
		role.Table,
		rolePermission.Table, rolePermission.RoleID, role.ID,
		permission.Table, permission.ID, rolePermission.PermissionID,
		where,
		role.Name, permission.Name,
	)
}

// queryRoles runs a [roleQuery] and folds the joined rows into roles.
func (store *PostgresStore) queryRoles(ctx context.Context, action, where string, arguments ...any) ([]rbac.Role, error) {
	rows, err := store.pool.Query(ctx, roleQuery(where), arguments...)
	if err != nil {
		return nil, dberr.Wrap(err, msgRoleNotFound, action)
	}
	defer rows.Close()

	roles := []rbac.Role{}
	positions := make(map[string]int)

	for rows.Next() {
		var (
			role                                rbac.Role
			permissionID, permissionName, group *string
		)
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt, &permissionID, &permissionName, &group); err != nil {
			return nil, dberr.Wrap(err, msgRoleNotFound, action)
		}

		position, seen := positions[role.ID]
		if !seen {
			role.Permissions = []rbac.Permission{}
			roles = append(roles, role)
			position = len(roles) - 1
			positions[role.ID] = position
		}

		if permissionID != nil {
			roles[position].Permissions = append(roles[position].Permissions, rbac.Permission{
				ID:      *permissionID,
				Name:    pointer.Val(permissionName),
				GroupID: pointer.Val(group),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, msgRoleNotFound, action)
	}
	return roles, nil
}

func (store *PostgresStore) findOneRole(ctx context.Context, action, where string, argument string) (*rbac.Role, error) {
	roles, err := store.queryRoles(ctx, action, where, argument)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, apperr.NotFound(msgRoleNotFound)
	}
	return &roles[0], nil
}

func (store *PostgresStore) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	return store.queryRoles(ctx, "list_roles", "")
}

func (store *PostgresStore) FindRole(ctx context.Context, id string) (*rbac.Role, error) {
	return store.findOneRole(ctx, "find_role", fmt.Sprintf("WHERE r.%s = $1", schema.IAMRole.ID), id)
}

func (store *PostgresStore) FindRoleByName(ctx context.Context, name string) (*rbac.Role, error) {
	return store.findOneRole(ctx, "find_role_by_name", fmt.Sprintf("WHERE r.%s = $1", schema.IAMRole.Name), name)
}

// FindRoles loads the roles behind ids. Unknown IDs are skipped.
func (store *PostgresStore) FindRoles(ctx context.Context, ids []string) ([]rbac.Role, error) {
	if len(ids) == 0 {
		return []rbac.Role{}, nil
	}
	return store.queryRoles(ctx, "find_roles", fmt.Sprintf("WHERE r.%s = ANY($1::uuid[])", schema.IAMRole.ID), ids)
}

/*
CreateRole inserts the role and its permission links in one transaction.

Returns:
  - error: apperr.DuplicateField when the name is taken, or database errors
*/
func (store *PostgresStore) CreateRole(ctx context.Context, role *rbac.Role) error {
	transaction, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s, %s`,
		schema.IAMRole.Table, schema.IAMRole.ID, schema.IAMRole.Name,
		schema.IAMRole.CreatedAt, schema.IAMRole.UpdatedAt,
	)
	if err := transaction.QueryRow(ctx, query, role.ID, role.Name).Scan(&role.CreatedAt, &role.UpdatedAt); err != nil {
		return dberr.Wrap(err, msgRoleNotFound, "insert_role")
	}

	if err := linkPermissions(ctx, transaction, role); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit role: %w", err)
	}
	return nil
}

// UpdateRole persists the name and replaces the permission links.
func (store *PostgresStore) UpdateRole(ctx context.Context, role *rbac.Role) error {
	transaction, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
		schema.IAMRole.Table, schema.IAMRole.Name, schema.IAMRole.UpdatedAt,
		schema.IAMRole.ID, schema.IAMRole.UpdatedAt,
	)
	if err := transaction.QueryRow(ctx, query, role.ID, role.Name).Scan(&role.UpdatedAt); err != nil {
		return dberr.Wrap(err, msgRoleNotFound, "update_role")
	}

	clearQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.IAMRolePermission.Table, schema.IAMRolePermission.RoleID)
	if _, err := transaction.Exec(ctx, clearQuery, role.ID); err != nil {
		return dberr.Wrap(err, msgRoleNotFound, "clear_role_permissions")
	}

	if err := linkPermissions(ctx, transaction, role); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit role: %w", err)
	}
	return nil
}

func linkPermissions(ctx context.Context, transaction pgx.Tx, role *rbac.Role) error {
	if len(role.Permissions) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		schema.IAMRolePermission.Table, schema.IAMRolePermission.RoleID, schema.IAMRolePermission.PermissionID,
	)

	batch := &pgx.Batch{}
	for _, permission := range role.Permissions {
		batch.Queue(insert, role.ID, permission.ID)
	}

	if err := transaction.SendBatch(ctx, batch).Close(); err != nil {
		return dberr.Wrap(err, msgPermissionNotFound, "link_role_permissions")
	}
	return nil
}

// DeleteRole removes the role. Assignments cascade.
func (store *PostgresStore) DeleteRole(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.IAMRole.Table, schema.IAMRole.ID)

	tag, err := store.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, msgRoleNotFound, "delete_role")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgRoleNotFound)
	}
	return nil
}

// # Permissions

func (store *PostgresStore) queryPermissions(ctx context.Context, action, where string, arguments ...any) ([]rbac.Permission, error) {
	permission := schema.IAMPermission
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s %s ORDER BY %s`,
		permission.ID, permission.Name, permission.GroupID, permission.Table, where, permission.Name,
	)

	rows, err := store.pool.Query(ctx, query, arguments...)
	if err != nil {
		return nil, dberr.Wrap(err, msgPermissionNotFound, action)
	}

	permissions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rbac.Permission, error) {
		var item rbac.Permission
		var group *string
		err := row.Scan(&item.ID, &item.Name, &group)
		item.GroupID = pointer.Val(group)
		return item, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, msgPermissionNotFound, action)
	}
	return permissions, nil
}

// FindPermissions loads the permissions behind ids. Unknown IDs are skipped.
func (store *PostgresStore) FindPermissions(ctx context.Context, ids []string) ([]rbac.Permission, error) {
	if len(ids) == 0 {
		return []rbac.Permission{}, nil
	}
	return store.queryPermissions(ctx, "find_permissions", fmt.Sprintf("WHERE %s = ANY($1::uuid[])", schema.IAMPermission.ID), ids)
}

func (store *PostgresStore) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	return store.queryPermissions(ctx, "list_permissions", "")
}

// # Permission Groups

func (store *PostgresStore) queryGroups(ctx context.Context, action, where string, arguments ...any) ([]rbac.PermissionGroup, error) {
	group, permission := schema.IAMPermissionGroup, schema.IAMPermission
	query := fmt.Sprintf(`
		SELECT g.%s, g.%s, g.%s, p.%s, p.%s
		FROM %s g
		LEFT JOIN %s p ON p.%s = g.%s
		%s
		ORDER BY g.%s, p.%s`,
		group.ID, group.Name, group.CreatedAt, permission.ID, permission.Name,
		group.Table,
		permission.Table, permission.GroupID, group.ID,
		where,
		group.Name, permission.Name,
	)

	rows, err := store.pool.Query(ctx, query, arguments...)
	if err != nil {
		return nil, dberr.Wrap(err, msgGroupNotFound, action)
	}
	defer rows.Close()

	groups := []rbac.PermissionGroup{}
	positions := make(map[string]int)

	for rows.Next() {
		var (
			id, name                     string
			createdAt                    time.Time
			permissionID, permissionName *string
		)
		if err := rows.Scan(&id, &name, &createdAt, &permissionID, &permissionName); err != nil {
			return nil, dberr.Wrap(err, msgGroupNotFound, action)
		}

		position, seen := positions[id]
		if !seen {
			groups = append(groups, rbac.PermissionGroup{ID: id, Name: name, CreatedAt: createdAt, Permissions: []rbac.Permission{}})
			position = len(groups) - 1
			positions[id] = position
		}

		if permissionID != nil {
			groups[position].Permissions = append(groups[position].Permissions, rbac.Permission{
				ID:      *permissionID,
				Name:    pointer.Val(permissionName),
				GroupID: id,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, msgGroupNotFound, action)
	}
	return groups, nil
}

func (store *PostgresStore) ListGroups(ctx context.Context) ([]rbac.PermissionGroup, error) {
	return store.queryGroups(ctx, "list_groups", "")
}

func (store *PostgresStore) FindGroupByName(ctx context.Context, name string) (*rbac.PermissionGroup, error) {
	groups, err := store.queryGroups(ctx, "find_group_by_name", fmt.Sprintf("WHERE g.%s = $1", schema.IAMPermissionGroup.Name), name)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperr.NotFound(msgGroupNotFound)
	}
	return &groups[0], nil
}

/*
CreateGroup inserts the group and all of its permissions in one transaction.

Returns:
  - error: apperr.DuplicateField when the group or a permission name is taken
*/
func (store *PostgresStore) CreateGroup(ctx context.Context, group *rbac.PermissionGroup) error {
	transaction, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	groupTable, permission := schema.IAMPermissionGroup, schema.IAMPermission

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s`,
		groupTable.Table, groupTable.ID, groupTable.Name, groupTable.CreatedAt,
	)
	if err := transaction.QueryRow(ctx, query, group.ID, group.Name).Scan(&group.CreatedAt); err != nil {
		return dberr.Wrap(err, msgGroupNotFound, "insert_group")
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		permission.Table, permission.ID, permission.Name, permission.GroupID,
	)

	batch := &pgx.Batch{}
	for _, item := range group.Permissions {
		batch.Queue(insert, item.ID, item.Name, group.ID)
	}
	if err := transaction.SendBatch(ctx, batch).Close(); err != nil {
		return dberr.Wrap(err, msgPermissionNotFound, "insert_group_permissions")
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit group: %w", err)
	}
	return nil
}
