package controllers

import (
	"log/slog"
	"net/http"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"
)

// CreateTimeslotRequest is the request body for POST /timeslots
type CreateTimeslotRequest struct {
	EventID     string            `json:"event_id" validate:"required,uuid"`
	Name        string            `json:"name" validate:"max=100"`
	StartTime   *domain.ClockTime `json:"start_time" validate:"required" swaggertype:"string" example:"18:00"`
	EndTime     *domain.ClockTime `json:"end_time" validate:"required" swaggertype:"string" example:"18:10"`
	SortOrder   *int              `json:"sort_order" validate:"omitempty,min=0"`
	IsAvailable *bool             `json:"is_available"`
}

// GenerateTimeslotsRequest is the request body for POST /timeslots/generate and /timeslots/regenerate.
// A zero duration uses the configured default slot duration.
type GenerateTimeslotsRequest struct {
	EventID         string   `json:"event_id" validate:"required,uuid"`
	DurationMinutes int      `json:"duration_minutes" validate:"min=0"`
	NamePrefix      string   `json:"name_prefix" validate:"max=80"`
	Names           []string `json:"names" validate:"omitempty,dive,max=100"`
}

func (g GenerateTimeslotsRequest) toDomain() domain.GenerateTimeslotsRequest {
	return domain.GenerateTimeslotsRequest{
		EventID:         g.EventID,
		DurationMinutes: g.DurationMinutes,
		NamePrefix:      g.NamePrefix,
		Names:           g.Names,
	}
}

// UpdateTimeslotRequest is the request body for PUT /timeslots/{id}. Omitted fields are unchanged.
type UpdateTimeslotRequest struct {
	Name        *string           `json:"name" validate:"omitempty,max=100"`
	StartTime   *domain.ClockTime `json:"start_time" swaggertype:"string" example:"18:00"`
	EndTime     *domain.ClockTime `json:"end_time" swaggertype:"string" example:"18:10"`
	SortOrder   *int              `json:"sort_order" validate:"omitempty,min=0"`
	IsAvailable *bool             `json:"is_available"`
}

type TimeslotController struct {
	Logger  *slog.Logger
	Service domain.TimeslotService
}

func NewTimeslotController(logger *slog.Logger, svc domain.TimeslotService) *TimeslotController {
	return &TimeslotController{
		Logger:  logger,
		Service: svc,
	}
}

// ListByEvent godoc
// @Summary List timeslots of an event
// @Description Timeslots in start order, each with current_signups and spots_remaining.
// @Tags timeslots
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is an array of timeslots with availability"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /timeslots/event/{eventID} [get]
func (c *TimeslotController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	slots, err := c.Service.ListTimeslots(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if slots == nil {
		slots = []*domain.TimeslotAvailability{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// Create godoc
// @Summary Create timeslot
// @Description Adds a single timeslot. It must fall within the event's time range.
// @Tags timeslots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTimeslotRequest true "Timeslot data"
// @Success 201 {object} helpers.APIResponse "data is the created timeslot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /timeslots [post]
func (c *TimeslotController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeslotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot := &domain.Timeslot{
		EventID:     req.EventID,
		Name:        req.Name,
		StartTime:   *req.StartTime,
		EndTime:     *req.EndTime,
		SortOrder:   domain.AppendSortOrder,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if req.SortOrder != nil {
		slot.SortOrder = *req.SortOrder
	}
	if err := c.Service.CreateTimeslot(r.Context(), slot); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, slot)
}

// Generate godoc
// @Summary Generate timeslots
// @Description Tiles the event window into consecutive slots of duration_minutes. The final slot is truncated at the event end. Fails if the event already has timeslots.
// @Tags timeslots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateTimeslotsRequest true "Generation parameters"
// @Success 201 {object} helpers.APIResponse "data is the generated timeslots"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (duration too long)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (timeslots already exist)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /timeslots/generate [post]
func (c *TimeslotController) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateTimeslotsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slots, err := c.Service.GenerateTimeslots(r.Context(), req.toDomain())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, slots)
}

// Regenerate godoc
// @Summary Regenerate timeslots
// @Description Replaces every timeslot of the event (and their signups) with a freshly generated set.
// @Tags timeslots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateTimeslotsRequest true "Generation parameters"
// @Success 200 {object} helpers.APIResponse "data is the generated timeslots"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (duration too long)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /timeslots/regenerate [post]
func (c *TimeslotController) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateTimeslotsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slots, err := c.Service.RegenerateTimeslots(r.Context(), req.toDomain())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// Update godoc
// @Summary Update timeslot
// @Tags timeslots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timeslot ID (UUID)"
// @Param body body UpdateTimeslotRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data is the updated timeslot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /timeslots/{id} [put]
func (c *TimeslotController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateTimeslotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot, err := c.Service.UpdateTimeslot(r.Context(), id, domain.TimeslotPatch{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SortOrder:   req.SortOrder,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slot)
}

// Delete godoc
// @Summary Delete timeslot
// @Description Removes the timeslot and its signups.
// @Tags timeslots
// @Security BearerAuth
// @Param id path string true "Timeslot ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /timeslots/{id} [delete]
func (c *TimeslotController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteTimeslot(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
