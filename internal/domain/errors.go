package domain

import "errors"

// Generic sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Event and timeslot errors.
var (
	// ErrDurationTooLong is the configuration error returned when the requested
	// slot duration does not fit even once in the event window.
	ErrDurationTooLong      = errors.New("duration too long for event")
	ErrTimeslotsExist       = errors.New("timeslots already exist for event")
	ErrTimeslotOutsideEvent = errors.New("timeslot must fall within the event time range")
	ErrInvalidTimeRange     = errors.New("start_time must be before end_time")
	ErrEventCodeExhausted   = errors.New("could not allocate a unique event code")
)

// Signup errors.
var (
	ErrEventFull           = errors.New("event is full")
	ErrDuplicateSignup     = errors.New("this email is already signed up for the event")
	ErrEventExpired        = errors.New("event has already taken place")
	ErrTimeslotFull        = errors.New("timeslot is already taken")
	ErrTimeslotUnavailable = errors.New("timeslot is not available")
	ErrSignupsClosed       = errors.New("signups are currently closed")
)

// Auth and user errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is disabled")
	ErrUnknownPermission  = errors.New("unknown permission")
	ErrDuplicateRoleName  = errors.New("role name already in use")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
)
