// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/adminauth/internal/platform/middleware"
	requestutil "github.com/taibuivan/adminauth/internal/platform/request"
	"github.com/taibuivan/adminauth/internal/platform/respond"
	"github.com/taibuivan/adminauth/internal/platform/validate"
)

// Handler implements the RBAC administration endpoints.
type Handler struct {
	roleService *Service
}

// NewHandler constructs a role [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{roleService: service}
}

// Routes returns a [chi.Router] with the catalogue endpoints. It expects the
// caller to be authenticated upstream.
//
// # Endpoints
//   - GET|POST         /roles             : roles.view | roles.create
//   - GET|PATCH|DELETE /roles/{id}        : roles.view | roles.update | roles.delete
//   - GET|POST         /permission-groups : groups.view | groups.create
//   - GET              /permissions       : permission.view
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/roles", func(r chi.Router) {
		r.With(middleware.RequirePermission("roles.view")).Get("/", handler.listRoles)
		r.With(middleware.RequirePermission("roles.create")).Post("/", handler.createRole)
		r.With(middleware.RequirePermission("roles.view")).Get("/{id}", handler.getRole)
		r.With(middleware.RequirePermission("roles.update")).Patch("/{id}", handler.updateRole)
		r.With(middleware.RequirePermission("roles.delete")).Delete("/{id}", handler.deleteRole)
	})

	router.Route("/permission-groups", func(r chi.Router) {
		r.With(middleware.RequirePermission("groups.view")).Get("/", handler.listGroups)
		r.With(middleware.RequirePermission("groups.create")).Post("/", handler.createGroup)
	})

	router.With(middleware.RequirePermission("permission.view")).Get("/permissions", handler.listPermissions)

	return router
}

// # Roles

type createRoleRequest struct {
	Name          string   `json:"name"           validate:"required,max=100"`
	PermissionIDs []string `json:"permission_ids" validate:"dive,uuid"`
}

type updateRoleRequest struct {
	Name          *string   `json:"name"           validate:"omitempty,max=100"`
	PermissionIDs *[]string `json:"permission_ids" validate:"omitempty,dive,uuid"`
}

func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.roleService.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, roles)
}

/*
POST /api/v1/roles.

Response:
  - 201: rbac.Role
  - 400: VALIDATION_ERROR (unknown permission IDs included)
  - 409: DUPLICATE_FIELD
*/
func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var input createRoleRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.roleService.CreateRole(request.Context(), CreateRoleInput{
		Name:          input.Name,
		PermissionIDs: input.PermissionIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, role)
}

func (handler *Handler) getRole(writer http.ResponseWriter, request *http.Request) {
	id, err := roleID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.roleService.GetRole(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

/*
PATCH /api/v1/roles/{id}.

Response:
  - 200: rbac.Role
  - 403: FORBIDDEN when renaming super_admin
  - 404: NOT_FOUND
*/
func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	id, err := roleID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRoleRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.roleService.UpdateRole(request.Context(), id, UpdateRoleInput{
		Name:          input.Name,
		PermissionIDs: input.PermissionIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

/*
DELETE /api/v1/roles/{id}.

Response:
  - 204: Deleted
  - 403: FORBIDDEN for super_admin
  - 404: NOT_FOUND
*/
func (handler *Handler) deleteRole(writer http.ResponseWriter, request *http.Request) {
	id, err := roleID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.roleService.DeleteRole(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func roleID(request *http.Request) (string, error) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", id)
	return id, validator.Err()
}

// # Groups & Permissions

type createGroupRequest struct {
	Name    string   `json:"name"    validate:"required,max=100"`
	Actions []string `json:"actions" validate:"dive,required,max=40"`
}

func (handler *Handler) listGroups(writer http.ResponseWriter, request *http.Request) {
	groups, err := handler.roleService.ListGroups(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, groups)
}

/*
POST /api/v1/permission-groups.

Description: Creates the group plus "<name>.<action>" for every action
(view, create, update and delete when omitted).

Response:
  - 201: rbac.PermissionGroup
  - 409: DUPLICATE_FIELD
*/
func (handler *Handler) createGroup(writer http.ResponseWriter, request *http.Request) {
	var input createGroupRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	group, err := handler.roleService.CreateGroup(request.Context(), CreateGroupInput{
		Name:    input.Name,
		Actions: input.Actions,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, group)
}

func (handler *Handler) listPermissions(writer http.ResponseWriter, request *http.Request) {
	permissions, err := handler.roleService.ListPermissions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, permissions)
}
