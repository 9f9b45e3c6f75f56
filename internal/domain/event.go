package domain

import (
	"context"
	"time"
)

// EventCodeLength is the number of ASCII digits in an event code.
const EventCodeLength = 6

// ValidEventCode reports whether code has the shape of an event code.
func ValidEventCode(code string) bool {
	if len(code) != EventCodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Event represents a single open-mic night.
// swagger:model Event
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VenueID      string    `json:"venue_id"`
	CreatedBy    string    `json:"created_by"`
	Date         Date      `json:"date" swaggertype:"string" example:"2025-06-01"`
	StartTime    ClockTime `json:"start_time" swaggertype:"string" example:"18:00"`
	EndTime      ClockTime `json:"end_time" swaggertype:"string" example:"20:00"`
	IsSpotlight  bool      `json:"is_spotlight"`
	MaxAttendees *int      `json:"max_attendees"`
	EventCode    string    `json:"event_code"`
	QRCodeData   string    `json:"qr_code_data,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DurationMinutes returns the length of the event window.
func (e *Event) DurationMinutes() int {
	return e.StartTime.MinutesUntil(e.EndTime)
}

// ValidWindow reports whether start_time < end_time and both are valid clock times.
func (e *Event) ValidWindow() bool {
	return e.StartTime.Valid() && e.EndTime.Valid() && e.StartTime < e.EndTime
}

// Contains reports whether [start, end) lies within the event window.
func (e *Event) Contains(start, end ClockTime) bool {
	return start >= e.StartTime && end <= e.EndTime && start < end
}

// ExpiredAt reports whether the event date is before the calendar date of now.
func (e *Event) ExpiredAt(now time.Time) bool {
	return e.Date.Before(DateOf(now))
}

// EventFilter narrows event listings.
type EventFilter struct {
	VenueID         string
	CreatedBy       string
	FromDate        *Date
	Spotlight       *bool
	IncludeInactive bool
	Page            PaginationParams
}

// EventPatch carries optional event field updates; nil means unchanged.
// A MaxAttendees value of zero or less clears the cap.
type EventPatch struct {
	Title        *string
	Description  *string
	VenueID      *string
	Date         *Date
	StartTime    *ClockTime
	EndTime      *ClockTime
	IsSpotlight  *bool
	MaxAttendees *int
}

// Apply copies the set fields onto e.
func (p EventPatch) Apply(e *Event) {
	setString(&e.Title, p.Title)
	setString(&e.Description, p.Description)
	setString(&e.VenueID, p.VenueID)
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.IsSpotlight != nil {
		e.IsSpotlight = *p.IsSpotlight
	}
	if p.MaxAttendees != nil {
		if *p.MaxAttendees <= 0 {
			e.MaxAttendees = nil
		} else {
			m := *p.MaxAttendees
			e.MaxAttendees = &m
		}
	}
}

// EventDetails is an event with its venue and capacity summary.
type EventDetails struct {
	Event    *Event         `json:"event"`
	Venue    *Venue         `json:"venue"`
	Capacity *EventCapacity `json:"capacity"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByEventCode(ctx context.Context, code string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	Update(ctx context.Context, event *Event) error
	SetQRCode(ctx context.Context, id, qrCodeData string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// QRCodeGenerator renders content as an image data URL.
type QRCodeGenerator interface {
	DataURL(content string) (string, error)
}

// EventService defines event business logic.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*EventDetails, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	RegenerateQRCode(ctx context.Context, id string) (*Event, error)
}
