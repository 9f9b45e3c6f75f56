package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"
)

// SetUserRolesRequest is the request body for PUT /admin/users/{id}/roles.
// primary_role_id defaults to the first role and must be one of role_ids.
type SetUserRolesRequest struct {
	RoleIDs       []string `json:"role_ids" validate:"required,min=1,dive,uuid"`
	PrimaryRoleID string   `json:"primary_role_id" validate:"omitempty,uuid"`
}

// SetUserStatusRequest is the request body for PUT /admin/users/{id}/status.
type SetUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CreateRoleRequest is the request body for POST /admin/roles.
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

// UpdateRoleRequest is the request body for PUT /admin/roles/{id}.
// A null or omitted permissions list leaves permissions unchanged.
type UpdateRoleRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
	IsActive    *bool    `json:"is_active"`
}

// AdminController serves the user and role administration endpoints.
type AdminController struct {
	Logger *slog.Logger
	Users  domain.UserService
	Roles  domain.RoleService
}

func NewAdminController(logger *slog.Logger, users domain.UserService, roles domain.RoleService) *AdminController {
	return &AdminController{
		Logger: logger,
		Users:  users,
		Roles:  roles,
	}
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search in name and email"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := domain.UserFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Page:   helpers.ParsePagination(r),
	}
	users, total, err := c.Users.ListUsers(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewPaginatedList(users, filter.Page, total))
}

// GetUser godoc
// @Summary Get user with roles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains user, roles, primary_role, permissions"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{id} [get]
func (c *AdminController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	user, err := c.Users.GetUser(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// SetUserRoles godoc
// @Summary Replace a user's roles
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Param body body SetUserRolesRequest true "Role assignment"
// @Success 200 {object} helpers.APIResponse "data contains user, roles, primary_role, permissions"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (user or role)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{id}/roles [put]
func (c *AdminController) SetUserRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req SetUserRolesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Users.SetUserRoles(r.Context(), id, req.RoleIDs, req.PrimaryRoleID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// SetUserStatus godoc
// @Summary Activate or deactivate a user
// @Description Inactive users cannot log in and hold no permissions.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Param body body SetUserStatusRequest true "Status"
// @Success 200 {object} helpers.APIResponse "data is the user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{id}/status [put]
func (c *AdminController) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req SetUserStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Users.SetUserActive(r.Context(), id, *req.IsActive)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ListRoles godoc
// @Summary List roles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of roles"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/roles [get]
func (c *AdminController) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := c.Roles.ListRoles(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if roles == nil {
		roles = []*domain.Role{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, roles)
}

// GetRole godoc
// @Summary Get role
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is the role"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/roles/{id} [get]
func (c *AdminController) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	role, err := c.Roles.GetRole(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, role)
}

// CreateRole godoc
// @Summary Create role
// @Description Permissions must be known tokens such as events.create.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRoleRequest true "Role data"
// @Success 201 {object} helpers.APIResponse "data is the created role"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown permission)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/roles [post]
func (c *AdminController) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	role, err := c.Roles.CreateRole(r.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, role)
}

// UpdateRole godoc
// @Summary Update role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID (UUID)"
// @Param body body UpdateRoleRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data is the updated role"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/roles/{id} [put]
func (c *AdminController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	role, err := c.Roles.UpdateRole(r.Context(), id, req.Name, req.Description, req.Permissions, req.IsActive)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, role)
}

// DeleteRole godoc
// @Summary Delete role
// @Description Built-in roles cannot be deleted.
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Role ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (built-in role)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/roles/{id} [delete]
func (c *AdminController) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Roles.DeleteRole(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
