package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"openmic/internal/domain"
)

const maxEventCodeAttempts = 20

var eventCodeSpace = big.NewInt(1_000_000)

type eventService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	signupRepo     domain.SignupRepository
	qr             domain.QRCodeGenerator
	baseURL        string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService. baseURL is the public frontend origin
// encoded into event QR codes.
func NewEventService(
	eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	signupRepo domain.SignupRepository,
	qr domain.QRCodeGenerator,
	baseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		signupRepo:     signupRepo,
		qr:             qr,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		logger:         logger,
		contextTimeout: timeout,
	}
}

// SignupURL is the public sign-up sheet address for an event code.
func SignupURL(baseURL, eventCode string) string {
	return strings.TrimSuffix(baseURL, "/") + "/signup/" + eventCode
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.validate(ctx, event); err != nil {
		return err
	}
	now := time.Now()
	event.IsActive = true
	event.CreatedAt = now
	event.UpdatedAt = now

	for attempt := 0; attempt < maxEventCodeAttempts; attempt++ {
		code, err := s.allocateEventCode(ctx)
		if err != nil {
			return err
		}
		event.EventCode = code
		event.QRCodeData, err = s.qr.DataURL(SignupURL(s.baseURL, code))
		if err != nil {
			return fmt.Errorf("generate qr code: %w", err)
		}
		err = s.eventRepo.Create(ctx, event)
		if errors.Is(err, domain.ErrConflict) {
			// code taken between lookup and insert
			continue
		}
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	}
	return domain.ErrEventCodeExhausted
}

// allocateEventCode draws random 6-digit codes until one is unused.
func (s *eventService) allocateEventCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxEventCodeAttempts; attempt++ {
		code, err := randomEventCode()
		if err != nil {
			return "", fmt.Errorf("generate event code: %w", err)
		}
		_, err = s.eventRepo.GetByEventCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check event code: %w", err)
		}
	}
	return "", domain.ErrEventCodeExhausted
}

func randomEventCode() (string, error) {
	n, err := rand.Int(rand.Reader, eventCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", domain.EventCodeLength, n.Int64()), nil
}

func (s *eventService) validate(ctx context.Context, event *domain.Event) error {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if event.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if !event.ValidWindow() {
		return domain.ErrInvalidTimeRange
	}
	if event.MaxAttendees != nil && *event.MaxAttendees <= 0 {
		return fmt.Errorf("%w: max_attendees must be positive", domain.ErrInvalidInput)
	}
	venue, err := s.venueRepo.GetByID(ctx, event.VenueID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: venue %q does not exist", domain.ErrInvalidInput, event.VenueID)
		}
		return fmt.Errorf("get venue: %w", err)
	}
	if !venue.IsActive {
		return fmt.Errorf("%w: venue %q is inactive", domain.ErrInvalidInput, event.VenueID)
	}
	return nil
}

func (s *eventService) getActive(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &domain.EventDetails{Event: event}

	venue, err := s.venueRepo.GetByID(ctx, event.VenueID)
	switch {
	case err == nil:
		details.Venue = venue
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get venue: %w", err)
	}

	counts, err := s.signupRepo.CountByTimeslot(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count signups: %w", err)
	}
	details.Capacity = eventCapacity(event, counts)
	return details, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	// QR payloads are large and only needed on the detail view.
	for _, e := range events {
		e.QRCodeData = ""
	}
	return events, total, nil
}

// UpdateEvent edits event fields. Existing timeslots are left untouched even
// when the window changes.
func (s *eventService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(event)
	if err := s.validate(ctx, event); err != nil {
		return nil, err
	}
	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getActive(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.SetActive(ctx, id, false)
}

func (s *eventService) RegenerateQRCode(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.qr.DataURL(SignupURL(s.baseURL, event.EventCode))
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	if err := s.eventRepo.SetQRCode(ctx, id, data); err != nil {
		return nil, err
	}
	event.QRCodeData = data
	s.logger.InfoContext(ctx, "qr code regenerated", "event_id", id)
	return event, nil
}
