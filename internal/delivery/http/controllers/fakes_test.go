package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/delivery/http/middleware"
	"openmic/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testUserID  = "6f1c2b7a-8d1e-4c3b-9f0a-1b2c3d4e5f60"
	testEventID = "0b8e4a52-1f7c-4d8e-a3b2-9c0d1e2f3a4b"
	testVenueID = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	testSlotID  = "11111111-2222-4333-8444-555555555555"
)

// newRequest builds a request with a JSON body, path values and, when userID is set, an authenticated context.
func newRequest(method, target, body, userID string, pathValues map[string]string) *http.Request {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

// decodeEnvelope decodes the response envelope and, when dest is non-nil, its data payload.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, dest))
	}
	return envelope
}

func mustClock(t *testing.T, s string) domain.ClockTime {
	t.Helper()
	c, err := domain.ParseClockTime(s)
	require.NoError(t, err)
	return c
}

type fakeAuthService struct {
	registerErr error
	loginErr    error
	lastEmail   string
	lastName    string
}

func (f *fakeAuthService) Register(_ context.Context, email, _, name, phone string) (*domain.User, error) {
	f.lastEmail, f.lastName = email, name
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.User{ID: testUserID, Email: email, Name: name, Phone: phone, IsActive: true}, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "signed-token", &domain.User{ID: testUserID, Email: email, IsActive: true}, nil
}

type fakeUserService struct {
	err           error
	users         []*domain.User
	total         int
	lastFilter    domain.UserFilter
	lastName      *string
	lastRoleIDs   []string
	lastPrimary   string
	lastActive    *bool
	lastCurrentPw string
	lastNewPw     string
}

func (f *fakeUserService) GetProfile(_ context.Context, userID string) (*domain.UserWithRoles, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UserWithRoles{User: &domain.User{ID: userID}}, nil
}

func (f *fakeUserService) UpdateProfile(_ context.Context, userID string, name, _, _ *string) (*domain.User, error) {
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	u := &domain.User{ID: userID}
	if name != nil {
		u.Name = *name
	}
	return u, nil
}

func (f *fakeUserService) ChangePassword(_ context.Context, _ string, current, next string) error {
	f.lastCurrentPw, f.lastNewPw = current, next
	return f.err
}

func (f *fakeUserService) ListUsers(_ context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.users, f.total, nil
}

func (f *fakeUserService) GetUser(_ context.Context, userID string) (*domain.UserWithRoles, error) {
	return f.GetProfile(context.Background(), userID)
}

func (f *fakeUserService) SetUserRoles(_ context.Context, userID string, roleIDs []string, primary string) (*domain.UserWithRoles, error) {
	f.lastRoleIDs, f.lastPrimary = roleIDs, primary
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UserWithRoles{User: &domain.User{ID: userID}}, nil
}

func (f *fakeUserService) SetUserActive(_ context.Context, userID string, active bool) (*domain.User, error) {
	f.lastActive = &active
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: userID, IsActive: active}, nil
}

type fakeRoleService struct {
	err         error
	perms       domain.PermissionSet
	roles       []*domain.Role
	lastName    string
	lastPerms   []string
	lastActive  *bool
	lastDeleted string
}

func (f *fakeRoleService) EffectivePermissions(_ context.Context, _ string) (domain.PermissionSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.perms, nil
}

func (f *fakeRoleService) HasPermission(ctx context.Context, userID string, perm domain.Permission) (bool, error) {
	set, err := f.EffectivePermissions(ctx, userID)
	return set.Has(perm), err
}

func (f *fakeRoleService) ListRoles(_ context.Context) ([]*domain.Role, error) {
	return f.roles, f.err
}

func (f *fakeRoleService) GetRole(_ context.Context, id string) (*domain.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Role{ID: id}, nil
}

func (f *fakeRoleService) CreateRole(_ context.Context, name, _ string, perms []string) (*domain.Role, error) {
	f.lastName, f.lastPerms = name, perms
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Role{ID: "role-new", Name: name, IsActive: true}, nil
}

func (f *fakeRoleService) UpdateRole(_ context.Context, id string, _, _ *string, perms []string, active *bool) (*domain.Role, error) {
	f.lastPerms, f.lastActive = perms, active
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Role{ID: id}, nil
}

func (f *fakeRoleService) DeleteRole(_ context.Context, id string) error {
	f.lastDeleted = id
	return f.err
}

type fakeVenueService struct {
	err        error
	venues     []*domain.Venue
	lastFilter domain.VenueFilter
	lastCreate *domain.Venue
	lastPatch  domain.VenuePatch
}

func (f *fakeVenueService) CreateVenue(_ context.Context, v *domain.Venue) error {
	f.lastCreate = v
	if f.err != nil {
		return f.err
	}
	v.ID = testVenueID
	v.IsActive = true
	return nil
}

func (f *fakeVenueService) GetVenue(_ context.Context, id string) (*domain.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Venue{ID: id, Name: "The Basement"}, nil
}

func (f *fakeVenueService) ListVenues(_ context.Context, filter domain.VenueFilter) ([]*domain.Venue, error) {
	f.lastFilter = filter
	return f.venues, f.err
}

func (f *fakeVenueService) UpdateVenue(_ context.Context, id string, patch domain.VenuePatch) (*domain.Venue, error) {
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	v := &domain.Venue{ID: id}
	patch.Apply(v)
	return v, nil
}

func (f *fakeVenueService) DeleteVenue(_ context.Context, _ string) error {
	return f.err
}

type fakeEventService struct {
	err        error
	events     []*domain.Event
	total      int
	lastFilter domain.EventFilter
	lastCreate *domain.Event
	lastPatch  domain.EventPatch
	lastID     string
}

func (f *fakeEventService) CreateEvent(_ context.Context, e *domain.Event) error {
	f.lastCreate = e
	if f.err != nil {
		return f.err
	}
	e.ID = testEventID
	e.EventCode = "482913"
	return nil
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.EventDetails, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EventDetails{Event: &domain.Event{ID: id}, Capacity: &domain.EventCapacity{Unlimited: true}}, nil
}

func (f *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastID, f.lastPatch = id, patch
	if f.err != nil {
		return nil, f.err
	}
	e := &domain.Event{ID: id}
	patch.Apply(e)
	return e, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeEventService) RegenerateQRCode(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: id, QRCodeData: "data:image/png;base64,AAAA"}, nil
}

type fakeTimeslotService struct {
	err          error
	slots        []*domain.TimeslotAvailability
	generated    []*domain.Timeslot
	lastCreate   *domain.Timeslot
	lastGenerate domain.GenerateTimeslotsRequest
	regenerated  bool
	lastPatch    domain.TimeslotPatch
	lastDeleted  string
}

func (f *fakeTimeslotService) CreateTimeslot(_ context.Context, slot *domain.Timeslot) error {
	f.lastCreate = slot
	if f.err != nil {
		return f.err
	}
	slot.ID = testSlotID
	return nil
}

func (f *fakeTimeslotService) ListTimeslots(_ context.Context, _ string) ([]*domain.TimeslotAvailability, error) {
	return f.slots, f.err
}

func (f *fakeTimeslotService) UpdateTimeslot(_ context.Context, id string, patch domain.TimeslotPatch) (*domain.Timeslot, error) {
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Timeslot{ID: id}, nil
}

func (f *fakeTimeslotService) DeleteTimeslot(_ context.Context, id string) error {
	f.lastDeleted = id
	return f.err
}

func (f *fakeTimeslotService) GenerateTimeslots(_ context.Context, req domain.GenerateTimeslotsRequest) ([]*domain.Timeslot, error) {
	f.lastGenerate = req
	return f.generated, f.err
}

func (f *fakeTimeslotService) RegenerateTimeslots(_ context.Context, req domain.GenerateTimeslotsRequest) ([]*domain.Timeslot, error) {
	f.lastGenerate = req
	f.regenerated = true
	return f.generated, f.err
}

type fakeSignupService struct {
	err         error
	sheet       *domain.EventSignupSheet
	signups     []*domain.PerformerSignup
	lastRequest domain.SignupRequest
	lastCode    string
	lastDeleted string
}

func (f *fakeSignupService) Signup(_ context.Context, req domain.SignupRequest) (*domain.PerformerSignup, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PerformerSignup{ID: "signup-1", EventID: req.EventID, TimeslotID: req.TimeslotID, PerformerName: req.PerformerName, Email: req.Email}, nil
}

func (f *fakeSignupService) GetSignupSheet(_ context.Context, code string) (*domain.EventSignupSheet, error) {
	f.lastCode = code
	if f.err != nil {
		return nil, f.err
	}
	return f.sheet, nil
}

func (f *fakeSignupService) ListEventSignups(_ context.Context, _ string) ([]*domain.PerformerSignup, error) {
	return f.signups, f.err
}

func (f *fakeSignupService) DeleteSignup(_ context.Context, id string) error {
	f.lastDeleted = id
	return f.err
}

type fakeConfigService struct {
	err        error
	entries    []*domain.Configuration
	publicOnly bool
	lastUpdate domain.ConfigUpdate
	lastKey    domain.ConfigKey
}

func (f *fakeConfigService) ListPublic(_ context.Context) ([]*domain.Configuration, error) {
	f.publicOnly = true
	return f.entries, f.err
}

func (f *fakeConfigService) ListAll(_ context.Context) ([]*domain.Configuration, error) {
	return f.entries, f.err
}

func (f *fakeConfigService) Get(_ context.Context, key domain.ConfigKey) (*domain.Configuration, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Configuration{Key: key, Value: domain.SignupPolicy{SignupsOpen: true}}, nil
}

func (f *fakeConfigService) Set(_ context.Context, update domain.ConfigUpdate) (*domain.Configuration, error) {
	f.lastUpdate = update
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Configuration{Key: update.Key}, nil
}

func (f *fakeConfigService) Delete(_ context.Context, key domain.ConfigKey) error {
	f.lastKey = key
	return f.err
}

func (f *fakeConfigService) SignupPolicy(_ context.Context) (domain.SignupPolicy, error) {
	return domain.DefaultSignupPolicy(), nil
}

func (f *fakeConfigService) DefaultSlotDuration(_ context.Context) (int, error) {
	return 10, nil
}
