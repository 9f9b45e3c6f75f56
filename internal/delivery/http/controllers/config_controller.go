package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"
)

// SetConfigRequest is the request body for PUT /admin/config/{key}.
// value may be omitted when only updating description or visibility of an existing entry.
type SetConfigRequest struct {
	Value       json.RawMessage `json:"value" swaggertype:"object"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	IsPublic    *bool           `json:"is_public"`
}

type ConfigController struct {
	Logger  *slog.Logger
	Service domain.ConfigService
}

func NewConfigController(logger *slog.Logger, svc domain.ConfigService) *ConfigController {
	return &ConfigController{
		Logger:  logger,
		Service: svc,
	}
}

// ListPublic godoc
// @Summary List public configuration
// @Tags config
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of configuration entries"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /config/public [get]
func (c *ConfigController) ListPublic(w http.ResponseWriter, r *http.Request) {
	c.writeList(w, r, c.Service.ListPublic)
}

// ListAll godoc
// @Summary List all configuration
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of configuration entries"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/config [get]
func (c *ConfigController) ListAll(w http.ResponseWriter, r *http.Request) {
	c.writeList(w, r, c.Service.ListAll)
}

func (c *ConfigController) writeList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]*domain.Configuration, error)) {
	entries, err := list(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if entries == nil {
		entries = []*domain.Configuration{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// Get godoc
// @Summary Get configuration entry
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param key path string true "Configuration key" Enums(site_settings, signup_policy, default_slot_duration, announcement)
// @Success 200 {object} helpers.APIResponse "data is the configuration entry"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/config/{key} [get]
func (c *ConfigController) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := c.Service.Get(r.Context(), domain.ConfigKey(r.PathValue("key")))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entry)
}

// Set godoc
// @Summary Create or update configuration entry
// @Description The value is validated against the schema of its key.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Configuration key" Enums(site_settings, signup_policy, default_slot_duration, announcement)
// @Param body body SetConfigRequest true "Value and metadata"
// @Success 200 {object} helpers.APIResponse "data is the stored configuration entry"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown key or invalid value)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/config/{key} [put]
func (c *ConfigController) Set(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req SetConfigRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	entry, err := c.Service.Set(r.Context(), domain.ConfigUpdate{
		Key:         domain.ConfigKey(r.PathValue("key")),
		Value:       req.Value,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		UpdatedBy:   userID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete configuration entry
// @Description Consumers fall back to built-in defaults.
// @Tags admin
// @Security BearerAuth
// @Param key path string true "Configuration key"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/config/{key} [delete]
func (c *ConfigController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Delete(r.Context(), domain.ConfigKey(r.PathValue("key"))); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
