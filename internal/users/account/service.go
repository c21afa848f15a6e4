// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/platform/validate"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/internal/users/auth"
	"github.com/taibuivan/adminauth/pkg/normalize"
	"github.com/taibuivan/adminauth/pkg/pagination"
	"github.com/taibuivan/adminauth/pkg/slice"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

// # Service Layer

// Service orchestrates administrative user management.
type Service struct {
	accountRepository AccountRepository
	catalog           Catalog
	hasher            *sec.PasswordHasher
	logger            *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository AccountRepository, catalog Catalog, hasher *sec.PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: repository,
		catalog:           catalog,
		hasher:            hasher,
		logger:            logger,
	}
}

// # Create

/*
CreateUser registers a credentials account on behalf of an administrator.

Description: Required fields are checked first and reported together. The
email and mobile number must be free; an email held by a social account is
a provider conflict. Role and permission IDs must all exist. Only a caller
holding super_admin may grant it.

Parameters:
  - context: context.Context
  - caller: Caller (the acting account)
  - input: CreateUserInput

Returns:
  - *auth.User: The created account with its roles and permissions
  - error: VALIDATION_ERROR, PROVIDER_CONFLICT, DUPLICATE_FIELD, FORBIDDEN or internal failures
*/
func (service *Service) CreateUser(context context.Context, caller Caller, input CreateUserInput) (*auth.User, error) {

	// ── 1. Required Fields ────────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.Required(fieldFirstName, input.FirstName).
		Required(fieldEmail, input.Email).
		Required(fieldPassword, input.Password).
		RequiredList(fieldRoles, len(input.RoleIDs)).
		Required(fieldMobileNumber, input.MobileNumber)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	email := normalize.Email(input.Email)
	mobile := normalize.Mobile(input.MobileNumber)

	// ── 2. Uniqueness ─────────────────────────────────────────────────────
	existing, err := service.accountRepository.FindByEmailOrMobile(context, email, "")
	switch {
	case err == nil:
		if existing.Provider != auth.ProviderCredentials {
			return nil, apperr.ProviderConflict(string(existing.Provider))
		}
		return nil, apperr.DuplicateField(fieldEmail, "Email is already exist!")
	case !apperr.IsNotFound(err):
		return nil, fmt.Errorf("account_service_email_lookup_failed: %w", err)
	}

	if err := service.ensureMobileFree(context, mobile, ""); err != nil {
		return nil, err
	}

	// ── 3. Grants ─────────────────────────────────────────────────────────
	roles, err := service.roles(context, input.RoleIDs)
	if err != nil {
		return nil, err
	}
	if err := service.authorizeRoleChange(context, caller, nil, roles); err != nil {
		return nil, err
	}
	permissions, err := service.permissions(context, input.PermissionIDs)
	if err != nil {
		return nil, err
	}

	// ── 4. Persist ────────────────────────────────────────────────────────
	digest, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	user := &auth.User{
		ID:           uuid.New(),
		Email:        email,
		MobileNumber: mobile,
		FirstName:    normalize.Name(input.FirstName),
		LastName:     normalize.Name(input.LastName),
		PasswordHash: &digest,
		Provider:     auth.ProviderCredentials,
		IsAdmin:      input.IsAdmin,
		Roles:        roles,
		Permissions:  permissions,
	}

	if err := service.accountRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_created",
		slog.String("user_id", user.ID),
		slog.Any("roles", rbac.RoleNames(roles)),
	)

	return user, nil
}

// # Update

/*
UpdateUser applies a partial update to an account.

Description: Email and mobile number uniqueness is checked against other
accounts only. A new password is hashed. Role or permission lists, when
given, replace the current assignments. The super_admin role is never
removed from its holder, and only a caller holding it may grant it.

Returns:
  - *auth.User: The updated account
  - error: NOT_FOUND, DUPLICATE_FIELD, VALIDATION_ERROR, FORBIDDEN or internal failures
*/
func (service *Service) UpdateUser(context context.Context, caller Caller, id string, input UpdateUserInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := normalize.Email(*input.Email)
		if email == "" {
			return nil, validate.RequiredError(fieldEmail, "email is required!")
		}
		if email != user.Email {
			if err := service.ensureEmailFree(context, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}

	if input.MobileNumber != nil {
		mobile := normalize.Mobile(*input.MobileNumber)
		if mobile != user.MobileNumber {
			if err := service.ensureMobileFree(context, mobile, user.ID); err != nil {
				return nil, err
			}
			user.MobileNumber = mobile
		}
	}

	if input.FirstName != nil {
		user.FirstName = normalize.Name(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = normalize.Name(*input.LastName)
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}

	if input.Password != nil {
		digest, err := service.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("account_service_hash_failed: %w", err)
		}
		user.PasswordHash = &digest
	}

	replaceGrants := false
	if input.RoleIDs != nil {
		roles, err := service.roles(context, *input.RoleIDs)
		if err != nil {
			return nil, err
		}
		if err := service.authorizeRoleChange(context, caller, user.Roles, roles); err != nil {
			return nil, err
		}
		user.Roles = roles
		replaceGrants = true
	}
	if input.PermissionIDs != nil {
		if user.Permissions, err = service.permissions(context, *input.PermissionIDs); err != nil {
			return nil, err
		}
		replaceGrants = true
	}

	if err := service.accountRepository.Save(context, user, replaceGrants); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_updated",
		slog.String("user_id", user.ID),
		slog.Bool("grants_replaced", replaceGrants),
	)

	return user, nil
}

// # Read

// GetUser returns an account with its resolved permission set.
func (service *Service) GetUser(context context.Context, id string) (*auth.Profile, error) {
	user, err := service.accountRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	return auth.NewProfile(user), nil
}

// GetUserByEmail returns an account, looked up by email, with its resolved
// permission set.
func (service *Service) GetUserByEmail(context context.Context, email string) (*auth.Profile, error) {
	email = normalize.Email(email)
	if email == "" {
		return nil, apperr.NotFound(msgUserNotFound)
	}

	user, err := service.accountRepository.FindByEmailOrMobile(context, email, "")
	if err != nil {
		return nil, err
	}
	return auth.NewProfile(user), nil
}

// ListUsers returns one page of accounts. Unknown sort keys fall back to
// newest first.
func (service *Service) ListUsers(context context.Context, filter UserFilter, params pagination.Params) (*pagination.Page[*auth.User], error) {
	params = params.Normalize().SortedBy(SortCreatedAt, SortKeys...)
	if filter.Search == "" {
		filter.Search = params.Search
	}

	users, total, err := service.accountRepository.List(context, filter, params)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return pagination.NewPage(users, params, total), nil
}

// # Delete

/*
DeleteUser removes an account.

Description: Holders of the super_admin role are never deleted; the record
is left untouched.

Returns:
  - error: NOT_FOUND, FORBIDDEN or internal failures
*/
func (service *Service) DeleteUser(context context.Context, id string) error {
	user, err := service.accountRepository.FindByID(context, id)
	if err != nil {
		return err
	}

	if rbac.HasRole(user.Roles, constants.RoleSuperAdmin) {
		return apperr.Forbidden("super admin cannot be deleted")
	}

	if err := service.accountRepository.Delete(context, id); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.WarnContext(context, "user_deleted",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return nil
}

// # Internal Helpers

func (service *Service) ensureEmailFree(context context.Context, email, selfID string) error {
	existing, err := service.accountRepository.FindByEmailOrMobile(context, email, "")
	switch {
	case err == nil && existing.ID != selfID:
		return apperr.DuplicateField(fieldEmail, "Email is already exist!")
	case err != nil && !apperr.IsNotFound(err):
		return fmt.Errorf("account_service_email_lookup_failed: %w", err)
	}
	return nil
}

// authorizeRoleChange guards the super_admin role when an account moves from
// the before roles to the after roles.
func (service *Service) authorizeRoleChange(context context.Context, caller Caller, before, after []rbac.Role) error {
	held := rbac.HasRole(before, constants.RoleSuperAdmin)
	granted := rbac.HasRole(after, constants.RoleSuperAdmin)

	switch {
	case held && !granted:
		return apperr.Forbidden("super admin role cannot be removed")
	case granted && !held:
		if caller.system {
			return nil
		}
		actor, err := service.accountRepository.FindByID(context, caller.UserID)
		switch {
		case apperr.IsNotFound(err):
			return apperr.Forbidden("only a super admin can grant the super admin role")
		case err != nil:
			return fmt.Errorf("account_service_caller_lookup_failed: %w", err)
		case !rbac.HasRole(actor.Roles, constants.RoleSuperAdmin):
			return apperr.Forbidden("only a super admin can grant the super admin role")
		}
	}
	return nil
}

// ensureMobileFree accepts the empty mobile number, which is stored as NULL.
func (service *Service) ensureMobileFree(context context.Context, mobile, selfID string) error {
	if mobile == "" {
		return nil
	}

	existing, err := service.accountRepository.FindByEmailOrMobile(context, "", mobile)
	switch {
	case err == nil && existing.ID != selfID:
		return apperr.DuplicateField(fieldMobileNumber, "Mobile number is already exist!")
	case err != nil && !apperr.IsNotFound(err):
		return fmt.Errorf("account_service_mobile_lookup_failed: %w", err)
	}
	return nil
}

func (service *Service) roles(context context.Context, ids []string) ([]rbac.Role, error) {
	ids = slice.Unique(ids)
	if err := validIDs(fieldRoles, ids); err != nil {
		return nil, err
	}

	roles, err := service.catalog.FindRoles(context, ids)
	if err != nil {
		return nil, fmt.Errorf("account_service_role_lookup_failed: %w", err)
	}
	if len(roles) != len(ids) {
		return nil, apperr.ValidationError("Unknown role", apperr.FieldError{Field: fieldRoles, Message: "contains unknown roles"})
	}
	return roles, nil
}

func (service *Service) permissions(context context.Context, ids []string) ([]rbac.Permission, error) {
	ids = slice.Unique(ids)
	if err := validIDs(fieldPermissionIDs, ids); err != nil {
		return nil, err
	}

	permissions, err := service.catalog.FindPermissions(context, ids)
	if err != nil {
		return nil, fmt.Errorf("account_service_permission_lookup_failed: %w", err)
	}
	if len(permissions) != len(ids) {
		return nil, apperr.ValidationError("Unknown permission", apperr.FieldError{Field: fieldPermissionIDs, Message: "contains unknown permissions"})
	}
	return permissions, nil
}

func validIDs(field string, ids []string) error {
	validator := &validate.Validator{}
	for _, id := range ids {
		validator.UUID(field, id)
	}
	return validator.Err()
}
