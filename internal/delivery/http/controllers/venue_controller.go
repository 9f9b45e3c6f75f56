package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"
)

// CreateVenueRequest is the request body for POST /venues
type CreateVenueRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Address     string `json:"address" validate:"required,max=500"`
	City        string `json:"city" validate:"max=100"`
	State       string `json:"state" validate:"max=100"`
	ZipCode     string `json:"zip_code" validate:"max=20"`
	Phone       string `json:"phone" validate:"max=30"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	Website     string `json:"website" validate:"omitempty,url,max=500"`
	Capacity    *int   `json:"capacity" validate:"omitempty,min=1"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateVenueRequest is the request body for PUT /venues/{id}. Omitted fields are unchanged.
type UpdateVenueRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address     *string `json:"address" validate:"omitempty,min=1,max=500"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	State       *string `json:"state" validate:"omitempty,max=100"`
	ZipCode     *string `json:"zip_code" validate:"omitempty,max=20"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
	Website     *string `json:"website" validate:"omitempty,url,max=500"`
	Capacity    *int    `json:"capacity" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (u UpdateVenueRequest) patch() domain.VenuePatch {
	return domain.VenuePatch{
		Name:        u.Name,
		Address:     u.Address,
		City:        u.City,
		State:       u.State,
		ZipCode:     u.ZipCode,
		Phone:       u.Phone,
		Email:       u.Email,
		Website:     u.Website,
		Capacity:    u.Capacity,
		Description: u.Description,
	}
}

type VenueController struct {
	Logger  *slog.Logger
	Service domain.VenueService
}

func NewVenueController(logger *slog.Logger, svc domain.VenueService) *VenueController {
	return &VenueController{
		Logger:  logger,
		Service: svc,
	}
}

// List godoc
// @Summary List venues
// @Description Lists active venues. Supports a name/address search and a city filter.
// @Tags venues
// @Produce json
// @Param search query string false "Search in name and address"
// @Param city query string false "Exact city (case-insensitive)"
// @Success 200 {object} helpers.APIResponse "data is an array of venues"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues [get]
func (c *VenueController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.VenueFilter{
		Search: strings.TrimSpace(q.Get("search")),
		City:   strings.TrimSpace(q.Get("city")),
	}
	venues, err := c.Service.ListVenues(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if venues == nil {
		venues = []*domain.Venue{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venues)
}

// Get godoc
// @Summary Get venue by ID
// @Tags venues
// @Produce json
// @Param id path string true "Venue ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is the venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{id} [get]
func (c *VenueController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	venue, err := c.Service.GetVenue(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// Create godoc
// @Summary Create venue
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateVenueRequest true "Venue data"
// @Success 201 {object} helpers.APIResponse "data is the created venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues [post]
func (c *VenueController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateVenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	venue := &domain.Venue{
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		Capacity:    req.Capacity,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := c.Service.CreateVenue(r.Context(), venue); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, venue)
}

// Update godoc
// @Summary Update venue
// @Description Partial update. Omitted fields are unchanged.
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Venue ID (UUID)"
// @Param body body UpdateVenueRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data is the updated venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{id} [put]
func (c *VenueController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateVenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	venue, err := c.Service.UpdateVenue(r.Context(), id, req.patch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// Delete godoc
// @Summary Delete venue
// @Description Soft delete: the venue is marked inactive.
// @Tags venues
// @Security BearerAuth
// @Param id path string true "Venue ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /venues/{id} [delete]
func (c *VenueController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteVenue(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
