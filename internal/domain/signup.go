package domain

import (
	"context"
	"time"
)

// PerformerSignup is a performer's claim on a timeslot.
// swagger:model PerformerSignup
type PerformerSignup struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	TimeslotID      string    `json:"timeslot_id"`
	PerformerName   string    `json:"performer_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PerformanceType string    `json:"performance_type"`
	Notes           string    `json:"notes"`
	SignupDate      time.Time `json:"signup_date"`
}

// TimeslotAvailability is a timeslot with its current occupancy.
type TimeslotAvailability struct {
	*Timeslot
	CurrentSignups int `json:"current_signups"`
	SpotsRemaining int `json:"spots_remaining"`
}

// EventCapacity summarises event-level occupancy. SpotsRemaining is nil when
// the event has no max_attendees cap.
type EventCapacity struct {
	CurrentSignups int  `json:"current_signups"`
	MaxAttendees   *int `json:"max_attendees"`
	SpotsRemaining *int `json:"spots_remaining"`
	Unlimited      bool `json:"unlimited"`
}

// Full reports whether the event-level cap is reached.
func (c *EventCapacity) Full() bool {
	return c.SpotsRemaining != nil && *c.SpotsRemaining <= 0
}

// SignupSnapshot is the state a signup is checked against. Repositories build it
// while holding a lock on the event so the check and the insert are atomic.
type SignupSnapshot struct {
	Event                *Event
	Timeslot             *Timeslot
	EventSignupCount     int
	TimeslotSignupCount  int
	EmailAlreadySignedUp bool
}

// SignupCheck validates a snapshot; a non-nil error aborts the reservation.
type SignupCheck func(snap *SignupSnapshot) error

// SignupRequest is the public signup input.
type SignupRequest struct {
	EventID         string
	TimeslotID      string
	PerformerName   string
	Email           string
	Phone           string
	PerformanceType string
	Notes           string
}

// EventSignupSheet is what a performer sees after scanning an event code.
type EventSignupSheet struct {
	Event     *Event                  `json:"event"`
	Venue     *Venue                  `json:"venue"`
	Timeslots []*TimeslotAvailability `json:"timeslots"`
	Capacity  *EventCapacity          `json:"capacity"`
	Expired   bool                    `json:"expired"`
}

// SignupRepository defines storage for performer signups.
type SignupRepository interface {
	// Reserve inserts the signup after check accepts the snapshot, all in one transaction.
	Reserve(ctx context.Context, signup *PerformerSignup, check SignupCheck) error
	GetByID(ctx context.Context, id string) (*PerformerSignup, error)
	ListByEventID(ctx context.Context, eventID string) ([]*PerformerSignup, error)
	CountByTimeslot(ctx context.Context, eventID string) (map[string]int, error)
	Delete(ctx context.Context, id string) error
}

// SignupService defines signup business logic.
type SignupService interface {
	Signup(ctx context.Context, req SignupRequest) (*PerformerSignup, error)
	GetSignupSheet(ctx context.Context, eventCode string) (*EventSignupSheet, error)
	ListEventSignups(ctx context.Context, eventID string) ([]*PerformerSignup, error)
	DeleteSignup(ctx context.Context, id string) error
}
