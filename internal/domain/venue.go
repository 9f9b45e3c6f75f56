package domain

import (
	"context"
	"time"
)

// Venue is a place where events happen.
// swagger:model Venue
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Website     string    `json:"website"`
	Capacity    *int      `json:"capacity"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VenueFilter narrows venue listings.
type VenueFilter struct {
	Search          string
	City            string
	IncludeInactive bool
}

// VenueRepository defines storage for venues.
type VenueRepository interface {
	Create(ctx context.Context, v *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, filter VenueFilter) ([]*Venue, error)
	Update(ctx context.Context, v *Venue) error
	SetActive(ctx context.Context, id string, active bool) error
}

// VenueService defines venue business logic.
type VenueService interface {
	CreateVenue(ctx context.Context, v *Venue) error
	GetVenue(ctx context.Context, id string) (*Venue, error)
	ListVenues(ctx context.Context, filter VenueFilter) ([]*Venue, error)
	UpdateVenue(ctx context.Context, id string, patch VenuePatch) (*Venue, error)
	DeleteVenue(ctx context.Context, id string) error
}

// VenuePatch carries optional venue field updates; nil means unchanged.
type VenuePatch struct {
	Name        *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Phone       *string
	Email       *string
	Website     *string
	Capacity    *int
	Description *string
}

// Apply copies the set fields onto v.
func (p VenuePatch) Apply(v *Venue) {
	setString(&v.Name, p.Name)
	setString(&v.Address, p.Address)
	setString(&v.City, p.City)
	setString(&v.State, p.State)
	setString(&v.ZipCode, p.ZipCode)
	setString(&v.Phone, p.Phone)
	setString(&v.Email, p.Email)
	setString(&v.Website, p.Website)
	setString(&v.Description, p.Description)
	if p.Capacity != nil {
		c := *p.Capacity
		v.Capacity = &c
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
