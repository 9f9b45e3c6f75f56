package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"openmic/internal/domain"
	"openmic/internal/metrics"
)

type signupService struct {
	signupRepo     domain.SignupRepository
	eventRepo      domain.EventRepository
	timeslotRepo   domain.TimeslotRepository
	venueRepo      domain.VenueRepository
	configService  domain.ConfigService
	emailService   domain.EmailService
	baseURL        string
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// SignupDeps groups the collaborators of the signup service.
type SignupDeps struct {
	Signups   domain.SignupRepository
	Events    domain.EventRepository
	Timeslots domain.TimeslotRepository
	Venues    domain.VenueRepository
	Config    domain.ConfigService
	Email     domain.EmailService
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewSignupService creates a SignupService. Email and Metrics may be nil.
func NewSignupService(deps SignupDeps, baseURL string, timeout time.Duration) domain.SignupService {
	return &signupService{
		signupRepo:     deps.Signups,
		eventRepo:      deps.Events,
		timeslotRepo:   deps.Timeslots,
		venueRepo:      deps.Venues,
		configService:  deps.Config,
		emailService:   deps.Email,
		baseURL:        baseURL,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

// checkSignup applies the acceptance rules in order; the first failing rule wins.
func checkSignup(snap *domain.SignupSnapshot, now time.Time) error {
	event := snap.Event
	if event == nil || !event.IsActive {
		return domain.ErrNotFound
	}
	if event.ExpiredAt(now) {
		return domain.ErrEventExpired
	}
	if snap.Timeslot == nil || snap.Timeslot.EventID != event.ID {
		return fmt.Errorf("%w: timeslot does not belong to event", domain.ErrNotFound)
	}
	if !snap.Timeslot.IsAvailable {
		return domain.ErrTimeslotUnavailable
	}
	if event.MaxAttendees != nil && snap.EventSignupCount >= *event.MaxAttendees {
		return domain.ErrEventFull
	}
	if snap.EmailAlreadySignedUp {
		return domain.ErrDuplicateSignup
	}
	if snap.TimeslotSignupCount >= slotCap(snap.Timeslot) {
		return domain.ErrTimeslotFull
	}
	return nil
}

func (s *signupService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.PerformerSignup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	policy, err := s.configService.SignupPolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("load signup policy: %w", err)
	}
	if !policy.SignupsOpen {
		s.metrics.Signup(metrics.OutcomeRejected, rejectReason(domain.ErrSignupsClosed))
		return nil, domain.ErrSignupsClosed
	}

	signup := &domain.PerformerSignup{
		EventID:         strings.TrimSpace(req.EventID),
		TimeslotID:      strings.TrimSpace(req.TimeslotID),
		PerformerName:   strings.TrimSpace(req.PerformerName),
		Email:           normalizeEmail(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		PerformanceType: strings.TrimSpace(req.PerformanceType),
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := validateSignup(signup, policy); err != nil {
		return nil, err
	}

	now := s.now()
	signup.SignupDate = now
	var snap *domain.SignupSnapshot
	err = s.signupRepo.Reserve(ctx, signup, func(sn *domain.SignupSnapshot) error {
		snap = sn
		return checkSignup(sn, now)
	})
	if err != nil {
		if reason := rejectReason(err); reason != "" {
			s.metrics.Signup(metrics.OutcomeRejected, reason)
			return nil, err
		}
		s.metrics.Signup(metrics.OutcomeError, "")
		return nil, fmt.Errorf("reserve signup: %w", err)
	}
	s.metrics.Signup(metrics.OutcomeAccepted, "")
	s.sendConfirmation(ctx, signup, snap)
	return signup, nil
}

func validateSignup(s *domain.PerformerSignup, policy domain.SignupPolicy) error {
	var problems []string
	if s.EventID == "" {
		problems = append(problems, "event_id is required")
	}
	if s.TimeslotID == "" {
		problems = append(problems, "timeslot_id is required")
	}
	if s.PerformerName == "" {
		problems = append(problems, "performer_name is required")
	}
	if !emailRegexp.MatchString(s.Email) {
		problems = append(problems, "email is invalid")
	}
	if policy.RequirePhone && s.Phone == "" {
		problems = append(problems, "phone is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// rejectReason labels policy rejections; other errors return "".
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSignupsClosed):
		return "signups_closed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEventExpired):
		return "event_expired"
	case errors.Is(err, domain.ErrTimeslotUnavailable):
		return "timeslot_unavailable"
	case errors.Is(err, domain.ErrEventFull):
		return "event_full"
	case errors.Is(err, domain.ErrDuplicateSignup):
		return "duplicate_signup"
	case errors.Is(err, domain.ErrTimeslotFull):
		return "timeslot_full"
	}
	return ""
}

// sendConfirmation mails the performer. Failures are logged, never returned.
func (s *signupService) sendConfirmation(ctx context.Context, signup *domain.PerformerSignup, snap *domain.SignupSnapshot) {
	if s.emailService == nil || snap == nil || snap.Event == nil || snap.Timeslot == nil {
		return
	}
	data := &domain.SignupConfirmationEmailData{
		Email:         signup.Email,
		PerformerName: signup.PerformerName,
		EventTitle:    snap.Event.Title,
		EventDate:     snap.Event.Date.String(),
		SlotName:      snap.Timeslot.Name,
		SlotStart:     snap.Timeslot.StartTime.String(),
		SlotEnd:       snap.Timeslot.EndTime.String(),
		SignupURL:     SignupURL(s.baseURL, snap.Event.EventCode),
	}
	if venue, err := s.venueRepo.GetByID(ctx, snap.Event.VenueID); err == nil {
		data.VenueName = venue.Name
	}
	if err := s.emailService.SendSignupConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "signup confirmation email failed", "signup_id", signup.ID, "err", err)
	}
}

func (s *signupService) GetSignupSheet(ctx context.Context, eventCode string) (*domain.EventSignupSheet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code := strings.TrimSpace(eventCode)
	if !domain.ValidEventCode(code) {
		return nil, domain.ErrNotFound
	}
	event, err := s.eventRepo.GetByEventCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}

	sheet := &domain.EventSignupSheet{Event: event, Expired: event.ExpiredAt(s.now())}
	venue, err := s.venueRepo.GetByID(ctx, event.VenueID)
	switch {
	case err == nil:
		sheet.Venue = venue
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get venue: %w", err)
	}

	slots, err := s.timeslotRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	counts, err := s.signupRepo.CountByTimeslot(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count signups: %w", err)
	}
	sheet.Timeslots = computeAvailability(slots, counts)
	sheet.Capacity = eventCapacity(event, counts)
	return sheet, nil
}

func (s *signupService) ListEventSignups(ctx context.Context, eventID string) ([]*domain.PerformerSignup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	signups, err := s.signupRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	return signups, nil
}

func (s *signupService) DeleteSignup(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.signupRepo.Delete(ctx, id)
}
