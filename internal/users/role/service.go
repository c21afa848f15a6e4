// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/rbac"
	"github.com/taibuivan/adminauth/pkg/slice"
	"github.com/taibuivan/adminauth/pkg/uuid"
)

// Service implements role and permission group administration.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// # Roles

/*
CreateRole creates a role bundling the given permissions.

Returns:
  - *rbac.Role: The created role with its permissions
  - error: VALIDATION_ERROR, DUPLICATE_FIELD or internal failures
*/
func (service *Service) CreateRole(ctx context.Context, input CreateRoleInput) (*rbac.Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.ValidationError("Role name is required", apperr.FieldError{Field: fieldName, Message: "is required"})
	}

	if err := service.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	permissions, err := service.permissions(ctx, input.PermissionIDs)
	if err != nil {
		return nil, err
	}

	role := &rbac.Role{ID: uuid.New(), Name: name, Permissions: permissions}
	if err := service.store.CreateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("role_service_create_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "role_created",
		slog.String("role_id", role.ID),
		slog.String("name", role.Name),
		slog.Int("permissions", len(permissions)),
	)
	return role, nil
}

// ListRoles returns every role with its permissions, ordered by name.
func (service *Service) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	roles, err := service.store.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("role_service_list_failed: %w", err)
	}
	return roles, nil
}

// GetRole returns one role with its permissions.
func (service *Service) GetRole(ctx context.Context, id string) (*rbac.Role, error) {
	return service.store.FindRole(ctx, id)
}

/*
UpdateRole renames a role and/or replaces its permissions.

Description: The super_admin role keeps its name; only its permissions may
change.

Returns:
  - *rbac.Role: The updated role
  - error: NOT_FOUND, FORBIDDEN, DUPLICATE_FIELD, VALIDATION_ERROR
*/
func (service *Service) UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*rbac.Role, error) {
	role, err := service.store.FindRole(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.ValidationError("Role name is required", apperr.FieldError{Field: fieldName, Message: "is required"})
		}

		if name != role.Name {
			if role.Name == constants.RoleSuperAdmin {
				return nil, apperr.Forbidden("super admin role cannot be renamed")
			}
			if err := service.ensureNameFree(ctx, name, role.ID); err != nil {
				return nil, err
			}
			role.Name = name
		}
	}

	if input.PermissionIDs != nil {
		permissions, err := service.permissions(ctx, *input.PermissionIDs)
		if err != nil {
			return nil, err
		}
		role.Permissions = permissions
	}

	if err := service.store.UpdateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("role_service_update_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "role_updated", slog.String("role_id", role.ID))
	return role, nil
}

/*
DeleteRole removes a role and its assignments.

Returns:
  - error: NOT_FOUND, or FORBIDDEN for the super_admin role
*/
func (service *Service) DeleteRole(ctx context.Context, id string) error {
	role, err := service.store.FindRole(ctx, id)
	if err != nil {
		return err
	}

	if role.Name == constants.RoleSuperAdmin {
		return apperr.Forbidden("super admin role cannot be deleted")
	}

	if err := service.store.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("role_service_delete_failed: %w", err)
	}

	service.logger.WarnContext(ctx, "role_deleted",
		slog.String("role_id", role.ID),
		slog.String("name", role.Name),
	)
	return nil
}

// EnsureRole returns the role named name, creating it with permissionIDs when
// it does not exist yet. created reports which happened.
func (service *Service) EnsureRole(ctx context.Context, name string, permissionIDs []string) (role *rbac.Role, created bool, err error) {
	role, err = service.store.FindRoleByName(ctx, name)
	if err == nil {
		return role, false, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	role, err = service.CreateRole(ctx, CreateRoleInput{Name: name, PermissionIDs: permissionIDs})
	if err != nil {
		return nil, false, err
	}
	return role, true, nil
}

func (service *Service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := service.store.FindRoleByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return apperr.DuplicateField(fieldName, "Role name is already exist!")
	case err != nil && !apperr.IsNotFound(err):
		return fmt.Errorf("role_service_name_lookup_failed: %w", err)
	}
	return nil
}

// permissions loads the permissions behind ids and rejects unknown ones.
func (service *Service) permissions(ctx context.Context, ids []string) ([]rbac.Permission, error) {
	ids = slice.Unique(ids)
	if len(ids) == 0 {
		return []rbac.Permission{}, nil
	}

	for _, id := range ids {
		if !uuid.Valid(id) {
			return nil, apperr.ValidationError("Invalid permission id", apperr.FieldError{Field: fieldPermissionIDs, Message: id + " is not a valid id"})
		}
	}

	permissions, err := service.store.FindPermissions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("role_service_permission_lookup_failed: %w", err)
	}
	if len(permissions) != len(ids) {
		return nil, apperr.ValidationError("Unknown permission", apperr.FieldError{Field: fieldPermissionIDs, Message: "contains unknown permissions"})
	}
	return permissions, nil
}

// # Permission Groups

/*
CreateGroup creates a permission group and one permission per action.

Description: Permission names are "<group>.<action>". Duplicate actions are
collapsed.

Returns:
  - *rbac.PermissionGroup: The group with its new permissions
  - error: VALIDATION_ERROR, DUPLICATE_FIELD or internal failures
*/
func (service *Service) CreateGroup(ctx context.Context, input CreateGroupInput) (*rbac.PermissionGroup, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.ValidationError("Group name is required", apperr.FieldError{Field: fieldName, Message: "is required"})
	}

	actions := input.Actions
	if len(actions) == 0 {
		actions = rbac.Actions
	}
	actions = slice.Unique(slice.Map(actions, strings.TrimSpace))
	for _, action := range actions {
		if action == "" || strings.Contains(action, ".") {
			return nil, apperr.ValidationError("Invalid action", apperr.FieldError{Field: fieldActions, Message: "actions must be non-empty and contain no dots"})
		}
	}

	_, err := service.store.FindGroupByName(ctx, name)
	switch {
	case err == nil:
		return nil, apperr.DuplicateField(fieldName, "Group name is already exist!")
	case !apperr.IsNotFound(err):
		return nil, fmt.Errorf("role_service_group_lookup_failed: %w", err)
	}

	group := &rbac.PermissionGroup{ID: uuid.New(), Name: name}
	group.Permissions = slice.Map(actions, func(action string) rbac.Permission {
		return rbac.Permission{ID: uuid.New(), Name: rbac.PermissionName(name, action), GroupID: group.ID}
	})

	if err := service.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("role_service_group_create_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "permission_group_created",
		slog.String("group_id", group.ID),
		slog.String("name", group.Name),
	)
	return group, nil
}

// EnsureGroup returns the group named name, creating it with actions when it
// does not exist yet.
func (service *Service) EnsureGroup(ctx context.Context, name string, actions []string) (*rbac.PermissionGroup, bool, error) {
	group, err := service.store.FindGroupByName(ctx, name)
	if err == nil {
		return group, false, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	group, err = service.CreateGroup(ctx, CreateGroupInput{Name: name, Actions: actions})
	if err != nil {
		return nil, false, err
	}
	return group, true, nil
}

// ListGroups returns every group with its permissions.
func (service *Service) ListGroups(ctx context.Context) ([]rbac.PermissionGroup, error) {
	groups, err := service.store.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("role_service_group_list_failed: %w", err)
	}
	return groups, nil
}

// ListPermissions returns every permission ordered by name.
func (service *Service) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	permissions, err := service.store.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("role_service_permission_list_failed: %w", err)
	}
	return permissions, nil
}
