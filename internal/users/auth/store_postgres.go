// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/database/schema"
	"github.com/taibuivan/adminauth/internal/platform/dberr"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/pkg/pointer"
	"github.com/taibuivan/adminauth/pkg/slice"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the account
// helpers below run inside or outside a transaction.
type Querier interface {
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(context context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, arguments ...any) pgx.Row
	SendBatch(context context.Context, batch *pgx.Batch) pgx.BatchResults
}

// PostgresStore implements [IdentityStore] on the iam schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed [IdentityStore].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool exposes the connection pool to stores that compose this one.
func (store *PostgresStore) Pool() *pgxpool.Pool {
	return store.pool
}

// # Lookups

var accountColumns = strings.Join(schema.IAMAccount.Columns(), ", ")

/*
FindByEmailOrMobile retrieves the account matching the email or the mobile number.

Description: Empty identifiers never match. When both identifiers match
different accounts, the email match wins.

Parameters:
  - context: context.Context
  - email: string
  - mobile: string

Returns:
  - *User: Hydrated account
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByEmailOrMobile(context context.Context, email, mobile string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE ($1::text <> '' AND %s = $1::text) OR ($2::text <> '' AND %s = $2::text)
		ORDER BY (%s = $1::text) DESC
		LIMIT 1`,
		accountColumns, schema.IAMAccount.Table,
		schema.IAMAccount.Email, schema.IAMAccount.MobileNumber,
		schema.IAMAccount.Email,
	)

	user, err := scanUser(store.pool.QueryRow(context, query, email, mobile))
	if err != nil {
		return nil, dberr.Wrap(err, msgUserNotFound, "find_account_by_identifier")
	}

	if err := Hydrate(context, store.pool, []*User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID retrieves a hydrated account by its ID.
func (store *PostgresStore) FindByID(context context.Context, id string) (*User, error) {
	users, err := FindByIDs(context, store.pool, []string{id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return users[0], nil
}

/*
FindByIDs loads hydrated accounts in the order of ids. Unknown IDs are skipped.

Parameters:
  - context: context.Context
  - querier: Querier
  - ids: []string

Returns:
  - []*User: Accounts ordered like ids
  - error: Database errors
*/
func FindByIDs(context context.Context, querier Querier, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::uuid[])`,
		accountColumns, schema.IAMAccount.Table, schema.IAMAccount.ID,
	)

	rows, err := querier.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, msgUserNotFound, "find_accounts_by_id")
	}
	defer rows.Close()

	byID := make(map[string]*User, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, dberr.Wrap(err, msgUserNotFound, "scan_account")
		}
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, msgUserNotFound, "iterate_accounts")
	}

	users := make([]*User, 0, len(byID))
	for _, id := range ids {
		if user, ok := byID[id]; ok {
			users = append(users, user)
		}
	}

	if err := Hydrate(context, querier, users); err != nil {
		return nil, err
	}
	return users, nil
}

// scanUser reads one row laid out as [schema.IAMAccountTable.Columns].
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var mobile *string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&mobile,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Provider,
		&user.IsAdmin,
		&user.NeedsPasswordChange,
		&user.PasswordChangedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.MobileNumber = pointer.Val(mobile)
	return user, nil
}

// # Hydration

/*
Hydrate loads the roles (with their permissions) and the direct permission
grants of every user in two batched queries.

Description: Users end up with non-nil Roles and Permissions slices even when
nothing is assigned.
*/
func Hydrate(context context.Context, querier Querier, users []*User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]string, len(users))
	byID := make(map[string]*User, len(users))
	for i, user := range users {
		ids[i] = user.ID
		byID[user.ID] = user
		user.Roles = []rbac.Role{}
		user.Permissions = []rbac.Permission{}
	}

	if err := hydrateRoles(context, querier, ids, byID); err != nil {
		return err
	}
	return hydrateDirectPermissions(context, querier, ids, byID)
}

func hydrateRoles(context context.Context, querier Querier, ids []string, byID map[string]*User) error {
	accountRole, role := schema.IAMAccountRole, schema.IAMRole
	rolePermission, permission := schema.IAMRolePermission, schema.IAMPermission

	query := fmt.Sprintf(`
		SELECT ar.%s, r.%s, r.%s, r.%s, r.%s, p.%s, p.%s, p.%s
		FROM %s ar
		JOIN %s r ON r.%s = ar.%s
		LEFT JOIN %s rp ON rp.%s = r.%s
		LEFT JOIN %s p ON p.%s = rp.%s
		WHERE ar.%s = ANY($1::uuid[])
		ORDER BY ar.%s, r.%s, p.%s`,
		accountRole.AccountID, role.ID, role.Name, role.CreatedAt, role.UpdatedAt,
		permission.ID, permission.Name, permission.GroupID,
		accountRole.Table,
		role.Table, role.ID, accountRole.RoleID,
		rolePermission.Table, rolePermission.RoleID, role.ID,
		permission.Table, permission.ID, rolePermission.PermissionID,
		accountRole.AccountID,
		accountRole.AccountID, role.Name, permission.Name,
	)

	rows, err := querier.Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, "Role", "load_account_roles")
	}
	defer rows.Close()

	positions := make(map[string]int)
	for rows.Next() {
		var (
			accountID, roleID, roleName          string
			createdAt, updatedAt                 time.Time
			permissionID, permissionName, group *string
		)
		if err := rows.Scan(&accountID, &roleID, &roleName, &createdAt, &updatedAt, &permissionID, &permissionName, &group); err != nil {
			return dberr.Wrap(err, "Role", "scan_account_role")
		}

		user := byID[accountID]
		key := accountID + "/" + roleID
		position, seen := positions[key]
		if !seen {
			user.Roles = append(user.Roles, rbac.Role{
				ID:          roleID,
				Name:        roleName,
				Permissions: []rbac.Permission{},
				CreatedAt:   createdAt,
				UpdatedAt:   updatedAt,
			})
			position = len(user.Roles) - 1
			positions[key] = position
		}

		if permissionID != nil {
			user.Roles[position].Permissions = append(user.Roles[position].Permissions, rbac.Permission{
				ID:      *permissionID,
				Name:    pointer.Val(permissionName),
				GroupID: pointer.Val(group),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "Role", "iterate_account_roles")
	}
	return nil
}

func hydrateDirectPermissions(context context.Context, querier Querier, ids []string, byID map[string]*User) error {
	accountPermission, permission := schema.IAMAccountPermission, schema.IAMPermission

	query := fmt.Sprintf(`
		SELECT ap.%s, p.%s, p.%s, p.%s
		FROM %s ap
		JOIN %s p ON p.%s = ap.%s
		WHERE ap.%s = ANY($1::uuid[])
		ORDER BY ap.%s, p.%s`,
		accountPermission.AccountID, permission.ID, permission.Name, permission.GroupID,
		accountPermission.Table,
		permission.Table, permission.ID, accountPermission.PermissionID,
		accountPermission.AccountID,
		accountPermission.AccountID, permission.Name,
	)

	rows, err := querier.Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, "Permission", "load_account_permissions")
	}
	defer rows.Close()

	for rows.Next() {
		var accountID string
		var granted rbac.Permission
		var group *string
		if err := rows.Scan(&accountID, &granted.ID, &granted.Name, &group); err != nil {
			return dberr.Wrap(err, "Permission", "scan_account_permission")
		}
		granted.GroupID = pointer.Val(group)

		user := byID[accountID]
		user.Permissions = append(user.Permissions, granted)
	}

	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "Permission", "iterate_account_permissions")
	}
	return nil
}

// # Mutations

/*
Create inserts the account and attaches the roles and direct permissions
listed on it, all in one transaction.

Returns:
  - error: apperr.DuplicateField on unique violations, or database errors
*/
func (store *PostgresStore) Create(context context.Context, user *User) error {
	transaction, err := store.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if err := InsertAccount(context, transaction, user); err != nil {
		return err
	}

	if err := ReplaceRoles(context, transaction, user.ID, roleIDs(user.Roles)); err != nil {
		return err
	}
	if err := ReplacePermissions(context, transaction, user.ID, permissionIDs(user.Permissions)); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit account: %w", err)
	}
	return nil
}

// InsertAccount writes the account row. Empty mobile numbers are stored as NULL.
func InsertAccount(context context.Context, querier Querier, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		schema.IAMAccount.Table, accountColumns,
	)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if user.Provider == "" {
		user.Provider = ProviderCredentials
	}

	_, err := querier.Exec(context, query,
		user.ID,
		user.Email,
		pointer.NilIfZero(user.MobileNumber),
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Provider,
		user.IsAdmin,
		user.NeedsPasswordChange,
		user.PasswordChangedAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, msgUserNotFound, "insert_account")
	}
	return nil
}

// Update persists profile fields. A nil PasswordHash leaves the stored digest untouched.
func (store *PostgresStore) Update(context context.Context, user *User) error {
	return UpdateAccount(context, store.pool, user)
}

// UpdateAccount is [PostgresStore.Update] for an arbitrary [Querier].
func UpdateAccount(context context.Context, querier Querier, user *User) error {
	account := schema.IAMAccount
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5,
			%s = COALESCE($6, %s), %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		account.Table,
		account.Email, account.MobileNumber, account.FirstName, account.LastName,
		account.Password, account.Password, account.Provider, account.IsAdmin, account.UpdatedAt,
		account.ID,
		account.UpdatedAt,
	)

	err := querier.QueryRow(context, query,
		user.ID,
		user.Email,
		pointer.NilIfZero(user.MobileNumber),
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Provider,
		user.IsAdmin,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, msgUserNotFound, "update_account")
	}
	return nil
}

// UpdatePassword stores a new digest and records when it changed.
func (store *PostgresStore) UpdatePassword(context context.Context, userID, passwordHash string, changedAt time.Time) error {
	account := schema.IAMAccount
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = FALSE, %s = $3, %s = NOW()
		WHERE %s = $1`,
		account.Table,
		account.Password, account.NeedsPasswordChange, account.PasswordChangedAt, account.UpdatedAt,
		account.ID,
	)

	tag, err := store.pool.Exec(context, query, userID, passwordHash, changedAt)
	if err != nil {
		return dberr.Wrap(err, msgUserNotFound, "update_account_password")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgUserNotFound)
	}
	return nil
}

// # Grants

// ReplaceRoles clears and re-inserts the role assignments of an account.
func ReplaceRoles(context context.Context, querier Querier, userID string, roleIDs []string) error {
	return replaceJunction(context, querier, schema.IAMAccountRole.Table,
		schema.IAMAccountRole.AccountID, schema.IAMAccountRole.RoleID, userID, roleIDs)
}

// ReplacePermissions clears and re-inserts the direct grants of an account.
func ReplacePermissions(context context.Context, querier Querier, userID string, permissionIDs []string) error {
	return replaceJunction(context, querier, schema.IAMAccountPermission.Table,
		schema.IAMAccountPermission.AccountID, schema.IAMAccountPermission.PermissionID, userID, permissionIDs)
}

// replaceJunction runs a clear-and-insert of one many-to-many table, queuing
// the inserts as a single pgx batch.
func replaceJunction(context context.Context, querier Querier, table, ownerColumn, valueColumn, ownerID string, values []string) error {
	clearQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, ownerColumn)
	if _, err := querier.Exec(context, clearQuery, ownerID); err != nil {
		return fmt.Errorf("postgres: failed to clear %s: %w", table, err)
	}

	if len(values) == 0 {
		return nil
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING", table, ownerColumn, valueColumn)
	batch := &pgx.Batch{}
	for _, value := range values {
		batch.Queue(insert, ownerID, value)
	}

	if err := querier.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "Grant", "insert_"+table)
	}
	return nil
}

func roleIDs(roles []rbac.Role) []string {
	return slice.Map(roles, func(role rbac.Role) string { return role.ID })
}

func permissionIDs(permissions []rbac.Permission) []string {
	return slice.Map(permissions, func(permission rbac.Permission) string { return permission.ID })
}
