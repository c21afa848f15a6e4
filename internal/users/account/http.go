// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/adminauth/internal/platform/middleware"
	requestutil "github.com/taibuivan/adminauth/internal/platform/request"
	"github.com/taibuivan/adminauth/internal/platform/respond"
	"github.com/taibuivan/adminauth/internal/platform/validate"
	"github.com/taibuivan/adminauth/pkg/pagination"
)

// Handler implements the HTTP layer for user management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the user management endpoints. Callers
// must be authenticated upstream; each route checks its own permission.
//
// # Endpoints
//   - POST   /              : users.create
//   - GET    /              : users.view (page, limit, search, role_id)
//   - GET    /{id}          : users.view
//   - GET    /email/{email} : users.view
//   - PATCH  /{id}          : users.update
//   - DELETE /{id}          : users.delete
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequirePermission("users.create")).Post("/", handler.createUser)
	router.With(middleware.RequirePermission("users.view")).Get("/", handler.listUsers)
	router.With(middleware.RequirePermission("users.view")).Get("/email/{email}", handler.getUserByEmail)
	router.With(middleware.RequirePermission("users.view")).Get("/{id}", handler.getUser)
	router.With(middleware.RequirePermission("users.update")).Patch("/{id}", handler.updateUser)
	router.With(middleware.RequirePermission("users.delete")).Delete("/{id}", handler.deleteUser)

	return router
}

// # Payloads

// createUserRequest leaves required-field checks to the service, which
// reports every missing field at once.
type createUserRequest struct {
	FirstName     string   `json:"first_name"     validate:"max=100"`
	LastName      string   `json:"last_name"      validate:"max=100"`
	Email         string   `json:"email"          validate:"omitempty,email,max=320"`
	MobileNumber  string   `json:"mobile_number"  validate:"max=32"`
	Password      string   `json:"password"       validate:"omitempty,min=6,max=72"`
	IsAdmin       bool     `json:"is_admin"`
	Roles         []string `json:"roles"`
	PermissionIDs []string `json:"permission_ids"`
}

type updateUserRequest struct {
	FirstName     *string   `json:"first_name"     validate:"omitempty,max=100"`
	LastName      *string   `json:"last_name"      validate:"omitempty,max=100"`
	Email         *string   `json:"email"          validate:"omitempty,email,max=320"`
	MobileNumber  *string   `json:"mobile_number"  validate:"omitempty,max=32"`
	Password      *string   `json:"password"       validate:"omitempty,min=6,max=72"`
	IsAdmin       *bool     `json:"is_admin"`
	Roles         *[]string `json:"roles"`
	PermissionIDs *[]string `json:"permission_ids"`
}

// # Endpoints

/*
POST /api/v1/users.

Response:
  - 201: auth.User (password digest never included)
  - 400: VALIDATION_ERROR or PROVIDER_CONFLICT
  - 403: FORBIDDEN when granting super_admin without holding it
  - 409: DUPLICATE_FIELD
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createUserRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.CreateUser(request.Context(), CallerOf(claims.UserID), CreateUserInput{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		MobileNumber:  input.MobileNumber,
		Password:      input.Password,
		IsAdmin:       input.IsAdmin,
		RoleIDs:       input.Roles,
		PermissionIDs: input.PermissionIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /api/v1/users.

Request:
  - Query: page, limit, search, role_id, sortBy, sortOrder

Response:
  - 200: []auth.User with pagination meta
  - 400: VALIDATION_ERROR for a malformed role_id or an unknown sortBy
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := UserFilter{Search: params.Search, RoleID: request.URL.Query().Get("role_id")}

	validator := &validate.Validator{}
	if filter.RoleID != "" {
		validator.UUID("role_id", filter.RoleID)
	}
	if params.Sort != "" {
		validator.OneOf(fieldSortBy, params.Sort, SortKeys...)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.accountService.ListUsers(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, page.Meta)
}

func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, err := userID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetUser(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

func (handler *Handler) getUserByEmail(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.accountService.GetUserByEmail(request.Context(), requestutil.Param(request, "email"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
PATCH /api/v1/users/{id}.

Description: Partial update; "roles" and "permission_ids", when present,
replace the current assignments.

Response:
  - 200: auth.User
  - 403: FORBIDDEN when removing super_admin or granting it without holding it
  - 404: NOT_FOUND
  - 409: DUPLICATE_FIELD
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	id, err := userID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateUserRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateUser(request.Context(), CallerOf(claims.UserID), id, UpdateUserInput{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		MobileNumber:  input.MobileNumber,
		Password:      input.Password,
		IsAdmin:       input.IsAdmin,
		RoleIDs:       input.Roles,
		PermissionIDs: input.PermissionIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{id}.

Response:
  - 204: Deleted
  - 403: FORBIDDEN for holders of super_admin
  - 404: NOT_FOUND
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id, err := userID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteUser(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func userID(request *http.Request) (string, error) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	return id, validator.UUID("id", id).Err()
}
