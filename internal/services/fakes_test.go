package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"openmic/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error // if set, Create returns this error
	conflicts int   // Create returns ErrConflict this many times first
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		return fmt.Errorf("%w: event code %s", domain.ErrConflict, e.EventCode)
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByEventCode(ctx context.Context, code string) (*domain.Event, error) {
	code = strings.TrimSpace(code)
	for _, e := range f.byID {
		if e.EventCode == code {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if !filter.IncludeInactive && !e.IsActive {
			continue
		}
		if filter.VenueID != "" && e.VenueID != filter.VenueID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) SetQRCode(ctx context.Context, id, data string) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.QRCodeData = data
	return nil
}

func (f *fakeEventRepo) SetActive(ctx context.Context, id string, active bool) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.IsActive = active
	return nil
}

// fakeVenueRepo is an in-memory VenueRepository for tests.
type fakeVenueRepo struct {
	byID   map[string]*domain.Venue
	nextID int
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{byID: make(map[string]*domain.Venue), nextID: 1}
}

func (f *fakeVenueRepo) add(name string, active bool) *domain.Venue {
	v := &domain.Venue{ID: fmt.Sprintf("venue-%d", f.nextID), Name: name, IsActive: active}
	f.nextID++
	f.byID[v.ID] = v
	return v
}

func (f *fakeVenueRepo) Create(ctx context.Context, v *domain.Venue) error {
	v.ID = fmt.Sprintf("venue-%d", f.nextID)
	f.nextID++
	f.byID[v.ID] = v
	return nil
}

func (f *fakeVenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	if v, ok := f.byID[id]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVenueRepo) List(ctx context.Context, filter domain.VenueFilter) ([]*domain.Venue, error) {
	var out []*domain.Venue
	for _, v := range f.byID {
		if !filter.IncludeInactive && !v.IsActive {
			continue
		}
		if filter.City != "" && !strings.EqualFold(v.City, filter.City) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeVenueRepo) Update(ctx context.Context, v *domain.Venue) error {
	if _, ok := f.byID[v.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[v.ID] = v
	return nil
}

func (f *fakeVenueRepo) SetActive(ctx context.Context, id string, active bool) error {
	v, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.IsActive = active
	return nil
}

// fakeTimeslotRepo is an in-memory TimeslotRepository for tests. Deleting a
// slot also drops its signups when signups is set.
type fakeTimeslotRepo struct {
	byID    map[string]*domain.Timeslot
	nextID  int
	signups *fakeSignupRepo
}

func newFakeTimeslotRepo() *fakeTimeslotRepo {
	return &fakeTimeslotRepo{byID: make(map[string]*domain.Timeslot), nextID: 1}
}

func (f *fakeTimeslotRepo) Create(ctx context.Context, s *domain.Timeslot) error {
	s.ID = fmt.Sprintf("slot-%d", f.nextID)
	f.nextID++
	f.byID[s.ID] = s
	return nil
}

func (f *fakeTimeslotRepo) GetByID(ctx context.Context, id string) (*domain.Timeslot, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTimeslotRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Timeslot, error) {
	var out []*domain.Timeslot
	for _, s := range f.byID {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (f *fakeTimeslotRepo) Update(ctx context.Context, s *domain.Timeslot) error {
	if _, ok := f.byID[s.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[s.ID] = s
	return nil
}

func (f *fakeTimeslotRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	if f.signups != nil {
		f.signups.dropTimeslot(id)
	}
	return nil
}

func (f *fakeTimeslotRepo) InsertBatch(ctx context.Context, eventID string, slots []*domain.Timeslot, replace bool) error {
	existing, _ := f.ListByEventID(ctx, eventID)
	if len(existing) > 0 && !replace {
		return domain.ErrTimeslotsExist
	}
	for _, s := range existing {
		_ = f.Delete(ctx, s.ID)
	}
	for _, s := range slots {
		s.EventID = eventID
		if err := f.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// fakeSignupRepo is an in-memory SignupRepository. Reserve builds the snapshot
// from the event and timeslot fakes the same way the database query does.
type fakeSignupRepo struct {
	byID      map[string]*domain.PerformerSignup
	nextID    int
	events    *fakeEventRepo
	timeslots *fakeTimeslotRepo
	err       error // if set, Reserve returns this error before checking
}

func newFakeSignupRepo(events *fakeEventRepo, timeslots *fakeTimeslotRepo) *fakeSignupRepo {
	f := &fakeSignupRepo{
		byID:      make(map[string]*domain.PerformerSignup),
		nextID:    1,
		events:    events,
		timeslots: timeslots,
	}
	timeslots.signups = f
	return f
}

func (f *fakeSignupRepo) Reserve(ctx context.Context, s *domain.PerformerSignup, check domain.SignupCheck) error {
	if f.err != nil {
		return f.err
	}
	event, err := f.events.GetByID(ctx, s.EventID)
	if err != nil {
		return err
	}
	snap := &domain.SignupSnapshot{Event: event}
	if slot, ok := f.timeslots.byID[s.TimeslotID]; ok && slot.EventID == event.ID {
		snap.Timeslot = slot
	}
	for _, existing := range f.byID {
		if existing.EventID != event.ID {
			continue
		}
		snap.EventSignupCount++
		if existing.TimeslotID == s.TimeslotID {
			snap.TimeslotSignupCount++
		}
		if strings.EqualFold(existing.Email, s.Email) {
			snap.EmailAlreadySignedUp = true
		}
	}
	if err := check(snap); err != nil {
		return err
	}
	s.ID = fmt.Sprintf("signup-%d", f.nextID)
	f.nextID++
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSignupRepo) GetByID(ctx context.Context, id string) (*domain.PerformerSignup, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSignupRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.PerformerSignup, error) {
	var out []*domain.PerformerSignup
	for _, s := range f.byID {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignupDate.Before(out[j].SignupDate) })
	return out, nil
}

func (f *fakeSignupRepo) CountByTimeslot(ctx context.Context, eventID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, s := range f.byID {
		if s.EventID == eventID {
			counts[s.TimeslotID]++
		}
	}
	return counts, nil
}

func (f *fakeSignupRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSignupRepo) dropTimeslot(slotID string) {
	for id, s := range f.byID {
		if s.TimeslotID == slotID {
			delete(f.byID, id)
		}
	}
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID    map[string]*domain.User
	roleIDs map[string][]string
	roles   *fakeRoleRepo
	nextID  int
}

func newFakeUserRepo(roles *fakeRoleRepo) *fakeUserRepo {
	f := &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		roleIDs: make(map[string][]string),
		roles:   roles,
		nextID:  1,
	}
	roles.users = f
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	var out []*domain.User
	for _, u := range f.byID {
		if filter.Search == "" || strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(filter.Search)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID, hash, salt string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.Salt = salt
	return nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, userID string, active bool) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUserRepo) SetRoles(ctx context.Context, userID string, roleIDs []string, primaryRoleID string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	f.roleIDs[userID] = append([]string(nil), roleIDs...)
	u.PrimaryRoleID = &primaryRoleID
	return nil
}

// fakeRoleRepo is an in-memory RoleRepository for tests.
type fakeRoleRepo struct {
	byID   map[string]*domain.Role
	users  *fakeUserRepo
	nextID int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{byID: make(map[string]*domain.Role), nextID: 1}
}

// seed adds the built-in roles and returns them by name.
func (f *fakeRoleRepo) seed() map[string]*domain.Role {
	perms := map[string][]domain.Permission{
		domain.RoleAdmin:     domain.AllPermissions(),
		domain.RoleOrganizer: {domain.PermEventsView, domain.PermEventsCreate, domain.PermEventsEdit, domain.PermTimeslotsManage, domain.PermSignupsView},
		domain.RolePerformer: {domain.PermEventsView, domain.PermVenuesView},
	}
	out := make(map[string]*domain.Role, len(perms))
	for _, name := range []string{domain.RoleAdmin, domain.RoleOrganizer, domain.RolePerformer} {
		r := &domain.Role{Name: name, Permissions: perms[name], IsActive: true}
		_ = f.Create(context.Background(), r)
		out[name] = r
	}
	return out
}

func (f *fakeRoleRepo) Create(ctx context.Context, r *domain.Role) error {
	for _, existing := range f.byID {
		if existing.Name == r.Name {
			return domain.ErrDuplicateRoleName
		}
	}
	r.ID = fmt.Sprintf("role-%d", f.nextID)
	f.nextID++
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRoleRepo) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	for _, r := range f.byID {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]*domain.Role, error) {
	out := make([]*domain.Role, 0, len(f.byID))
	for _, r := range f.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRoleRepo) Update(ctx context.Context, r *domain.Role) error {
	if _, ok := f.byID[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRoleRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRoleRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	var out []*domain.Role
	if f.users == nil {
		return out, nil
	}
	for _, id := range f.users.roleIDs[userID] {
		if r, ok := f.byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeConfigRepo is an in-memory ConfigRepository for tests.
type fakeConfigRepo struct {
	byKey map[domain.ConfigKey]*domain.Configuration
	err   error // if set, Get returns this error
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{byKey: make(map[domain.ConfigKey]*domain.Configuration)}
}

func (f *fakeConfigRepo) List(ctx context.Context, publicOnly bool) ([]*domain.Configuration, error) {
	var out []*domain.Configuration
	for _, c := range f.byKey {
		if publicOnly && !c.IsPublic {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeConfigRepo) Get(ctx context.Context, key domain.ConfigKey) (*domain.Configuration, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byKey[key]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConfigRepo) Upsert(ctx context.Context, c *domain.Configuration) error {
	if existing, ok := f.byKey[c.Key]; ok {
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = c.UpdatedAt
	}
	cp := *c
	f.byKey[c.Key] = &cp
	return nil
}

func (f *fakeConfigRepo) Delete(ctx context.Context, key domain.ConfigKey) error {
	if _, ok := f.byKey[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byKey, key)
	return nil
}

// fakeHasher stores "hash:"+salt+password so tests can compare without bcrypt cost.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeIssuer records the last issued claims.
type fakeIssuer struct {
	userID string
	roles  []string
	err    error
}

func (f *fakeIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.userID = userID
	f.roles = roles
	return "token-" + userID, nil
}

// fakeQR encodes content verbatim so tests can inspect the signup URL.
type fakeQR struct {
	err error
}

func (f fakeQR) DataURL(content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "qr:" + content, nil
}

// fakeEmailService records sent mail.
type fakeEmailService struct {
	welcome       []*domain.WelcomeEmailData
	confirmations []*domain.SignupConfirmationEmailData
	err           error
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.welcome = append(f.welcome, data)
	return f.err
}

func (f *fakeEmailService) SendSignupConfirmation(ctx context.Context, data *domain.SignupConfirmationEmailData) error {
	f.confirmations = append(f.confirmations, data)
	return f.err
}

var errBoom = errors.New("boom")

func mustClock(s string) domain.ClockTime {
	c, err := domain.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// fixture wires the event-side fakes together.
type fixture struct {
	events    *fakeEventRepo
	venues    *fakeVenueRepo
	timeslots *fakeTimeslotRepo
	signups   *fakeSignupRepo
	configs   *fakeConfigRepo
	config    domain.ConfigService
	venue     *domain.Venue
}

func newFixture() *fixture {
	f := &fixture{
		events:    newFakeEventRepo(),
		venues:    newFakeVenueRepo(),
		timeslots: newFakeTimeslotRepo(),
		configs:   newFakeConfigRepo(),
	}
	f.signups = newFakeSignupRepo(f.events, f.timeslots)
	f.config = NewConfigService(f.configs, time.Second)
	f.venue = f.venues.add("The Basement", true)
	return f
}

func (f *fixture) addEvent(date, start, end string, maxAttendees *int) *domain.Event {
	e := &domain.Event{
		Title:        "Open Mic",
		VenueID:      f.venue.ID,
		Date:         mustDate(date),
		StartTime:    mustClock(start),
		EndTime:      mustClock(end),
		MaxAttendees: maxAttendees,
		EventCode:    fmt.Sprintf("%06d", f.events.nextID),
		IsActive:     true,
	}
	_ = f.events.Create(context.Background(), e)
	return e
}

func (f *fixture) addSlot(eventID, start, end string) *domain.Timeslot {
	s := &domain.Timeslot{
		EventID:       eventID,
		Name:          "Slot " + start,
		StartTime:     mustClock(start),
		EndTime:       mustClock(end),
		MaxPerformers: domain.DefaultMaxPerformers,
		IsAvailable:   true,
	}
	_ = f.timeslots.Create(context.Background(), s)
	return s
}
