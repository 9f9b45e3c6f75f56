package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"

	"github.com/google/uuid"
)

// CreateEventRequest is the request body for POST /events
type CreateEventRequest struct {
	Title        string            `json:"title" validate:"required,max=200"`
	Description  string            `json:"description" validate:"max=5000"`
	VenueID      string            `json:"venue_id" validate:"required,uuid"`
	Date         domain.Date       `json:"date" swaggertype:"string" example:"2025-06-01"`
	StartTime    *domain.ClockTime `json:"start_time" validate:"required" swaggertype:"string" example:"18:00"`
	EndTime      *domain.ClockTime `json:"end_time" validate:"required" swaggertype:"string" example:"20:00"`
	IsSpotlight  bool              `json:"is_spotlight"`
	MaxAttendees *int              `json:"max_attendees" validate:"omitempty,min=1"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	if c.Date.IsZero() {
		return []string{"date is required"}
	}
	return nil
}

// UpdateEventRequest is the request body for PUT /events/{id}. Omitted fields are unchanged;
// max_attendees of 0 clears the cap.
type UpdateEventRequest struct {
	Title        *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string           `json:"description" validate:"omitempty,max=5000"`
	VenueID      *string           `json:"venue_id" validate:"omitempty,uuid"`
	Date         *domain.Date      `json:"date" swaggertype:"string" example:"2025-06-01"`
	StartTime    *domain.ClockTime `json:"start_time" swaggertype:"string" example:"18:00"`
	EndTime      *domain.ClockTime `json:"end_time" swaggertype:"string" example:"20:00"`
	IsSpotlight  *bool             `json:"is_spotlight"`
	MaxAttendees *int              `json:"max_attendees" validate:"omitempty,min=0"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	if u.Date != nil && u.Date.IsZero() {
		return []string{"date cannot be null"}
	}
	return nil
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		Title:        u.Title,
		Description:  u.Description,
		VenueID:      u.VenueID,
		Date:         u.Date,
		StartTime:    u.StartTime,
		EndTime:      u.EndTime,
		IsSpotlight:  u.IsSpotlight,
		MaxAttendees: u.MaxAttendees,
	}
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// List godoc
// @Summary List events
// @Description Paginated list of active events ordered by date and start time.
// @Tags events
// @Produce json
// @Param venue_id query string false "Filter by venue (UUID)"
// @Param from query string false "Only events on or after this date (YYYY-MM-DD)"
// @Param spotlight query bool false "Filter by spotlight flag"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{Page: helpers.ParsePagination(r)}
	if v := q.Get("venue_id"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "venue_id must be a UUID")
			return
		}
		filter.VenueID = v
	}
	if v := q.Get("from"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "from must be YYYY-MM-DD")
			return
		}
		filter.FromDate = &d
	}
	if v := q.Get("spotlight"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "spotlight must be true or false")
			return
		}
		filter.Spotlight = &b
	}
	events, total, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewPaginatedList(events, filter.Page, total))
}

// Get godoc
// @Summary Get event by ID
// @Description Returns the event with its venue and current capacity.
// @Tags events
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains event, venue, capacity"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// Create godoc
// @Summary Create event
// @Description Creates an event at an active venue. A unique 6-digit event code and signup QR code are generated.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data is the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (venue)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := &domain.Event{
		Title:        req.Title,
		Description:  req.Description,
		VenueID:      req.VenueID,
		CreatedBy:    userID,
		Date:         req.Date,
		StartTime:    *req.StartTime,
		EndTime:      *req.EndTime,
		IsSpotlight:  req.IsSpotlight,
		MaxAttendees: req.MaxAttendees,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// Update godoc
// @Summary Update event
// @Description Partial update. The event window must still contain every existing timeslot.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data is the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), id, req.patch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete event
// @Description Soft delete: the event is marked inactive and disappears from public listings.
// @Tags events
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateQR godoc
// @Summary Regenerate event QR code
// @Description Re-renders the signup QR code for the event's current code.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is the event including qr_code_data"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/qr [post]
func (c *EventController) RegenerateQR(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	event, err := c.Service.RegenerateQRCode(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
