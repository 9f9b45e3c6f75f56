package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"
)

// PerformerSignupRequest is the request body for POST /performer-signup
type PerformerSignupRequest struct {
	EventID         string `json:"event_id" validate:"required,uuid"`
	TimeslotID      string `json:"timeslot_id" validate:"required,uuid"`
	PerformerName   string `json:"performer_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Phone           string `json:"phone" validate:"max=30"`
	PerformanceType string `json:"performance_type" validate:"max=50"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type SignupController struct {
	Logger  *slog.Logger
	Service domain.SignupService
}

func NewSignupController(logger *slog.Logger, svc domain.SignupService) *SignupController {
	return &SignupController{
		Logger:  logger,
		Service: svc,
	}
}

// Signup godoc
// @Summary Sign up for a timeslot
// @Description Public performer signup. Capacity is checked atomically against the event cap and the timeslot; an email can sign up once per event.
// @Tags signups
// @Accept json
// @Produce json
// @Param body body PerformerSignupRequest true "Signup data"
// @Success 201 {object} helpers.APIResponse "data is the created signup"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or timeslot)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full, taken, duplicate, closed)"
// @Failure 410 {object} helpers.APIResponse "error.code: event_expired"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /performer-signup [post]
func (c *SignupController) Signup(w http.ResponseWriter, r *http.Request) {
	var req PerformerSignupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	signup, err := c.Service.Signup(r.Context(), domain.SignupRequest{
		EventID:         req.EventID,
		TimeslotID:      req.TimeslotID,
		PerformerName:   req.PerformerName,
		Email:           req.Email,
		Phone:           req.Phone,
		PerformanceType: req.PerformanceType,
		Notes:           req.Notes,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, signup)
}

// GetSheet godoc
// @Summary Get signup sheet by event code
// @Description Public view used by the QR code landing page: event, venue, timeslots with availability, and capacity.
// @Tags signups
// @Produce json
// @Param code path string true "6-digit event code"
// @Success 200 {object} helpers.APIResponse "data contains event, venue, timeslots, capacity, expired"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /performer-signup/event/{code} [get]
func (c *SignupController) GetSheet(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("code"))
	if !domain.ValidEventCode(code) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event code must be 6 digits")
		return
	}
	sheet, err := c.Service.GetSignupSheet(r.Context(), code)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sheet)
}

// ListByEvent godoc
// @Summary List signups of an event
// @Tags signups
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is an array of signups"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /performer-signup/event-id/{eventID} [get]
func (c *SignupController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	signups, err := c.Service.ListEventSignups(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if signups == nil {
		signups = []*domain.PerformerSignup{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, signups)
}

// Delete godoc
// @Summary Delete signup
// @Description Removes a signup, freeing its timeslot.
// @Tags signups
// @Security BearerAuth
// @Param id path string true "Signup ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /performer-signup/{id} [delete]
func (c *SignupController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteSignup(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
