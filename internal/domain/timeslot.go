package domain

import (
	"context"
	"time"
)

// Slot duration bounds for generation, in minutes.
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480
	// DefaultMaxPerformers is the fixed per-slot performer cap.
	DefaultMaxPerformers = 1
	// AppendSortOrder places a new slot after the event's existing slots.
	AppendSortOrder = -1
)

// Timeslot is a bookable performance slot inside an event.
// swagger:model Timeslot
type Timeslot struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	Name            string    `json:"name"`
	StartTime       ClockTime `json:"start_time" swaggertype:"string" example:"18:00"`
	EndTime         ClockTime `json:"end_time" swaggertype:"string" example:"18:30"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxPerformers   int       `json:"max_performers"`
	SortOrder       int       `json:"sort_order"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TimeslotPatch carries optional timeslot updates; nil means unchanged.
type TimeslotPatch struct {
	Name        *string
	StartTime   *ClockTime
	EndTime     *ClockTime
	SortOrder   *int
	IsAvailable *bool
}

// GenerateTimeslotsRequest describes a bulk generation.
// Names[i], when non-empty, overrides the default name of slot i.
type GenerateTimeslotsRequest struct {
	EventID         string
	DurationMinutes int
	NamePrefix      string
	Names           []string
}

// TimeslotRepository defines storage for timeslots.
type TimeslotRepository interface {
	Create(ctx context.Context, slot *Timeslot) error
	GetByID(ctx context.Context, id string) (*Timeslot, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Timeslot, error)
	Update(ctx context.Context, slot *Timeslot) error
	Delete(ctx context.Context, id string) error
	// InsertBatch writes slots for an event in a single transaction. When replace is
	// true existing slots are deleted first; otherwise ErrTimeslotsExist is returned
	// if the event already has any slot.
	InsertBatch(ctx context.Context, eventID string, slots []*Timeslot, replace bool) error
}

// TimeslotService defines timeslot business logic.
type TimeslotService interface {
	CreateTimeslot(ctx context.Context, slot *Timeslot) error
	ListTimeslots(ctx context.Context, eventID string) ([]*TimeslotAvailability, error)
	UpdateTimeslot(ctx context.Context, id string, patch TimeslotPatch) (*Timeslot, error)
	DeleteTimeslot(ctx context.Context, id string) error
	GenerateTimeslots(ctx context.Context, req GenerateTimeslotsRequest) ([]*Timeslot, error)
	RegenerateTimeslots(ctx context.Context, req GenerateTimeslotsRequest) ([]*Timeslot, error)
}
