package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"openmic/internal/domain"
)

type venueService struct {
	venueRepo      domain.VenueRepository
	contextTimeout time.Duration
}

func NewVenueService(venueRepo domain.VenueRepository, timeout time.Duration) domain.VenueService {
	return &venueService{venueRepo: venueRepo, contextTimeout: timeout}
}

func validateVenue(v *domain.Venue) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return fmt.Errorf("%w: venue name is required", domain.ErrInvalidInput)
	}
	if v.Capacity != nil && *v.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}
	if v.Email != "" {
		v.Email = normalizeEmail(v.Email)
		if err := validateEmail(v.Email); err != nil {
			return err
		}
	}
	return nil
}

func (s *venueService) CreateVenue(ctx context.Context, v *domain.Venue) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateVenue(v); err != nil {
		return err
	}
	now := time.Now()
	v.IsActive = true
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.venueRepo.Create(ctx, v); err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

// GetVenue hides soft-deleted venues.
func (s *venueService) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *venueService) ListVenues(ctx context.Context, filter domain.VenueFilter) ([]*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.Search = strings.TrimSpace(filter.Search)
	filter.City = strings.TrimSpace(filter.City)
	return s.venueRepo.List(ctx, filter)
}

func (s *venueService) UpdateVenue(ctx context.Context, id string, patch domain.VenuePatch) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(v)
	if err := validateVenue(v); err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now()
	if err := s.venueRepo.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return v, nil
}

func (s *venueService) DeleteVenue(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.venueRepo.SetActive(ctx, id, false)
}
