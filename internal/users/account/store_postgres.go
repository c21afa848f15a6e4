// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/database/schema"
	"github.com/taibuivan/adminauth/internal/platform/dberr"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/internal/users/auth"
	"github.com/taibuivan/adminauth/pkg/pagination"
	"github.com/taibuivan/adminauth/pkg/slice"
)

// PostgresAccountRepository implements [AccountRepository] on top of the
// identity store, adding the administrative writes and the listing.
type PostgresAccountRepository struct {
	*auth.PostgresStore
}

var (
	_ AccountRepository  = (*PostgresAccountRepository)(nil)
	_ auth.IdentityStore = (*PostgresAccountRepository)(nil)
)

// NewAccountRepository creates a PostgreSQL-backed [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{PostgresStore: auth.NewPostgresStore(pool)}
}

/*
Save persists the profile fields and optionally replaces the grants.

Description: The account row and both assignment tables change in one
transaction, so a failure leaves the previous grants in place.
*/
func (repository *PostgresAccountRepository) Save(context context.Context, user *auth.User, replaceGrants bool) error {
	if !replaceGrants {
		return auth.UpdateAccount(context, repository.Pool(), user)
	}

	transaction, err := repository.Pool().Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if err := auth.UpdateAccount(context, transaction, user); err != nil {
		return err
	}

	roleIDs := slice.Map(user.Roles, func(role rbac.Role) string { return role.ID })
	if err := auth.ReplaceRoles(context, transaction, user.ID, roleIDs); err != nil {
		return err
	}

	permissionIDs := slice.Map(user.Permissions, func(permission rbac.Permission) string { return permission.ID })
	if err := auth.ReplacePermissions(context, transaction, user.ID, permissionIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit account: %w", err)
	}
	return nil
}

// Delete removes the account. Role and permission assignments cascade.
func (repository *PostgresAccountRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.IAMAccount.Table, schema.IAMAccount.ID)

	tag, err := repository.Pool().Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, msgUserNotFound, "delete_account")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgUserNotFound)
	}
	return nil
}

/*
List returns one page of hydrated accounts and the total match count.

Description: The page of IDs is selected with a window count, then the
accounts are loaded in that order through [auth.FindByIDs].

Parameters:
  - context: context.Context
  - filter: UserFilter
  - params: pagination.Params

Returns:
  - []*auth.User: The page in the requested order, newest first by default
  - int: Total number of matching accounts
  - error: Database errors
*/
func (repository *PostgresAccountRepository) List(context context.Context, filter UserFilter, params pagination.Params) ([]*auth.User, int, error) {
	account, accountRole := schema.IAMAccount, schema.IAMAccountRole

	conditions := []string{"TRUE"}
	arguments := []any{}

	if filter.Search != "" {
		arguments = append(arguments, "%"+escapeLike(filter.Search)+"%")
		placeholder := fmt.Sprintf("$%d", len(arguments))
		matches := slice.Map(
			[]string{account.Email, account.MobileNumber, account.FirstName, account.LastName},
			func(column string) string { return fmt.Sprintf("a.%s ILIKE %s", column, placeholder) },
		)
		conditions = append(conditions, "("+strings.Join(matches, " OR ")+")")
	}

	if filter.RoleID != "" {
		arguments = append(arguments, filter.RoleID)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s ar WHERE ar.%s = a.%s AND ar.%s = $%d)",
			accountRole.Table, accountRole.AccountID, account.ID, accountRole.RoleID, len(arguments),
		))
	}

	direction := "DESC"
	if params.Ascending() {
		direction = "ASC"
	}

	arguments = append(arguments, params.Limit, params.Offset())
	query := fmt.Sprintf(`
		SELECT a.%s, COUNT(*) OVER()
		FROM %s a
		WHERE %s
		ORDER BY a.%s %s, a.%s
		LIMIT $%d OFFSET $%d`,
		account.ID,
		account.Table,
		strings.Join(conditions, " AND "),
		sortColumn(params.Sort), direction, account.ID,
		len(arguments)-1, len(arguments),
	)

	rows, err := repository.Pool().Query(context, query, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, msgUserNotFound, "list_accounts")
	}
	defer rows.Close()

	ids := []string{}
	total := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id, &total); err != nil {
			return nil, 0, dberr.Wrap(err, msgUserNotFound, "scan_account_page")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, msgUserNotFound, "iterate_account_page")
	}
	rows.Close()

	users, err := auth.FindByIDs(context, repository.Pool(), ids)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// sortColumn maps a listing sort key to its column. Unknown keys sort by
// creation time.
func sortColumn(key string) string {
	account := schema.IAMAccount
	switch key {
	case SortEmail:
		return account.Email
	case SortFirstName:
		return account.FirstName
	case SortLastName:
		return account.LastName
	default:
		return account.CreatedAt
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
