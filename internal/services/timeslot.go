package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"openmic/internal/domain"
	"openmic/internal/metrics"
)

const defaultSlotNamePrefix = "Slot"

type timeslotService struct {
	timeslotRepo   domain.TimeslotRepository
	eventRepo      domain.EventRepository
	signupRepo     domain.SignupRepository
	configService  domain.ConfigService
	metrics        *metrics.Metrics
	contextTimeout time.Duration
}

// NewTimeslotService creates a TimeslotService. configService supplies the
// default slot duration when a generate request leaves it at zero.
func NewTimeslotService(
	timeslotRepo domain.TimeslotRepository,
	eventRepo domain.EventRepository,
	signupRepo domain.SignupRepository,
	configService domain.ConfigService,
	m *metrics.Metrics,
	timeout time.Duration,
) domain.TimeslotService {
	return &timeslotService{
		timeslotRepo:   timeslotRepo,
		eventRepo:      eventRepo,
		signupRepo:     signupRepo,
		configService:  configService,
		metrics:        m,
		contextTimeout: timeout,
	}
}

// planTimeslots splits [start, end) into back-to-back slots of duration minutes.
// A trailing gap shorter than duration is left unfilled.
func planTimeslots(start, end domain.ClockTime, duration int, prefix string, names []string) ([]*domain.Timeslot, error) {
	if duration < domain.MinSlotDurationMinutes || duration > domain.MaxSlotDurationMinutes {
		return nil, fmt.Errorf("%w: duration_minutes must be between %d and %d",
			domain.ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}
	total := start.MinutesUntil(end)
	count := total / duration
	if count <= 0 {
		return nil, domain.ErrDurationTooLong
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultSlotNamePrefix
	}

	now := time.Now()
	slots := make([]*domain.Timeslot, 0, count)
	for i := 0; i < count; i++ {
		slotStart := start.AddMinutes(i * duration)
		slotEnd := slotStart.AddMinutes(duration)
		if slotEnd > end {
			break
		}
		name := fmt.Sprintf("%s %d", prefix, i+1)
		if i < len(names) && strings.TrimSpace(names[i]) != "" {
			name = strings.TrimSpace(names[i])
		}
		slots = append(slots, &domain.Timeslot{
			Name:            name,
			StartTime:       slotStart,
			EndTime:         slotEnd,
			DurationMinutes: duration,
			MaxPerformers:   domain.DefaultMaxPerformers,
			SortOrder:       i,
			IsAvailable:     true,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return slots, nil
}

func (s *timeslotService) GenerateTimeslots(ctx context.Context, req domain.GenerateTimeslotsRequest) ([]*domain.Timeslot, error) {
	return s.generate(ctx, req, false)
}

func (s *timeslotService) RegenerateTimeslots(ctx context.Context, req domain.GenerateTimeslotsRequest) ([]*domain.Timeslot, error) {
	return s.generate(ctx, req, true)
}

func (s *timeslotService) generate(ctx context.Context, req domain.GenerateTimeslotsRequest, replace bool) ([]*domain.Timeslot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.activeEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	duration := req.DurationMinutes
	if duration == 0 && s.configService != nil {
		if duration, err = s.configService.DefaultSlotDuration(ctx); err != nil {
			return nil, err
		}
	}
	slots, err := planTimeslots(event.StartTime, event.EndTime, duration, req.NamePrefix, req.Names)
	if err != nil {
		return nil, err
	}
	if err := s.timeslotRepo.InsertBatch(ctx, event.ID, slots, replace); err != nil {
		return nil, fmt.Errorf("insert timeslots: %w", err)
	}
	s.metrics.TimeslotsGenerated(len(slots))
	return slots, nil
}

func (s *timeslotService) activeEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func validateSlotWindow(event *domain.Event, slot *domain.Timeslot) error {
	if !slot.StartTime.Valid() || !slot.EndTime.Valid() || slot.StartTime >= slot.EndTime {
		return domain.ErrInvalidTimeRange
	}
	if !event.Contains(slot.StartTime, slot.EndTime) {
		return domain.ErrTimeslotOutsideEvent
	}
	slot.DurationMinutes = slot.StartTime.MinutesUntil(slot.EndTime)
	return nil
}

func (s *timeslotService) CreateTimeslot(ctx context.Context, slot *domain.Timeslot) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.activeEvent(ctx, slot.EventID)
	if err != nil {
		return err
	}
	if err := validateSlotWindow(event, slot); err != nil {
		return err
	}
	slot.Name = strings.TrimSpace(slot.Name)
	if slot.Name == "" || slot.SortOrder < 0 {
		existing, err := s.timeslotRepo.ListByEventID(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("list timeslots: %w", err)
		}
		if slot.Name == "" {
			slot.Name = fmt.Sprintf("%s %d", defaultSlotNamePrefix, len(existing)+1)
		}
		if slot.SortOrder < 0 {
			slot.SortOrder = len(existing)
		}
	}
	slot.MaxPerformers = domain.DefaultMaxPerformers
	now := time.Now()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	if err := s.timeslotRepo.Create(ctx, slot); err != nil {
		return fmt.Errorf("create timeslot: %w", err)
	}
	return nil
}

func (s *timeslotService) ListTimeslots(ctx context.Context, eventID string) ([]*domain.TimeslotAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.activeEvent(ctx, eventID); err != nil {
		return nil, err
	}
	slots, err := s.timeslotRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	counts, err := s.signupRepo.CountByTimeslot(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count signups: %w", err)
	}
	return computeAvailability(slots, counts), nil
}

func (s *timeslotService) UpdateTimeslot(ctx context.Context, id string, patch domain.TimeslotPatch) (*domain.Timeslot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	slot, err := s.timeslotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := s.activeEvent(ctx, slot.EventID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		slot.Name = name
	}
	if patch.StartTime != nil {
		slot.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		slot.EndTime = *patch.EndTime
	}
	if patch.SortOrder != nil {
		slot.SortOrder = *patch.SortOrder
	}
	if patch.IsAvailable != nil {
		slot.IsAvailable = *patch.IsAvailable
	}
	if err := validateSlotWindow(event, slot); err != nil {
		return nil, err
	}
	slot.UpdatedAt = time.Now()
	if err := s.timeslotRepo.Update(ctx, slot); err != nil {
		return nil, fmt.Errorf("update timeslot: %w", err)
	}
	return slot, nil
}

func (s *timeslotService) DeleteTimeslot(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.timeslotRepo.Delete(ctx, id)
}
