package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"openmic/internal/adapters/ratelimit"
	"openmic/internal/delivery/http/controllers"
	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"
	"openmic/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*domain.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &domain.TokenClaims{UserID: "user-1"}, nil
}

type stubChecker struct {
	perms domain.PermissionSet
}

func (s stubChecker) EffectivePermissions(_ context.Context, _ string) (domain.PermissionSet, error) {
	return s.perms, nil
}

func (s stubChecker) HasPermission(_ context.Context, _ string, perm domain.Permission) (bool, error) {
	return s.perms.Has(perm), nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(_ context.Context, _ string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: false, RetryAfter: 30 * time.Second}, nil
}

// newTestRouter mounts controllers without services; every request exercised
// here must be answered before a service is reached.
func newTestRouter(deps RouterDeps) *http.ServeMux {
	deps.Logger = testLogger
	deps.Verifier = stubVerifier{}
	if deps.Permissions == nil {
		deps.Permissions = stubChecker{perms: domain.NewPermissionSet(domain.PermEventsView)}
	}
	return NewRouter(Controllers{
		Auth:     controllers.NewAuthController(testLogger, nil),
		User:     controllers.NewUserController(testLogger, nil, nil),
		Venue:    controllers.NewVenueController(testLogger, nil),
		Event:    controllers.NewEventController(testLogger, nil),
		Timeslot: controllers.NewTimeslotController(testLogger, nil),
		Signup:   controllers.NewSignupController(testLogger, nil),
		Admin:    controllers.NewAdminController(testLogger, nil, nil),
		Config:   controllers.NewConfigController(testLogger, nil),
	}, deps)
}

func TestNewRouter_AccessControl(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{name: "protected route without token", method: http.MethodPost, path: "/api/events", wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "protected route with bad token", method: http.MethodPost, path: "/api/venues", token: "bad", wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "missing permission", method: http.MethodPost, path: "/api/events", token: "good", wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "admin roles require roles.manage", method: http.MethodGet, path: "/api/admin/roles", token: "good", wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "signup list requires signups.view", method: http.MethodGet, path: "/api/performer-signup/event-id/x", token: "good", wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "profile requires auth only", method: http.MethodGet, path: "/api/users/profile", wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "public venue route reaches handler", method: http.MethodGet, path: "/api/venues/not-a-uuid", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "public sheet route reaches handler", method: http.MethodGet, path: "/api/performer-signup/event/AB", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "wrong method", method: http.MethodPatch, path: "/api/events", wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound},
	}
	mux := newTestRouter(RouterDeps{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}
}

func TestNewRouter_PermittedRouteReachesHandler(t *testing.T) {
	mux := newTestRouter(RouterDeps{Permissions: stubChecker{perms: domain.NewPermissionSet(domain.PermEventsEdit)}})
	req := httptest.NewRequest(http.MethodPut, "/api/events/not-a-uuid", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()

	mux.ServeHTTP(rr, req)

	// the handler rejects the malformed id, so auth and permission passed
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNewRouter_SignupRateLimited(t *testing.T) {
	reg := prometheus.NewRegistry()
	mux := newTestRouter(RouterDeps{SignupLimiter: denyLimiter{}, Metrics: metrics.New(reg)})
	rr := httptest.NewRecorder()

	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/performer-signup", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))
}

func TestNewRouter_Health(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mux := newTestRouter(RouterDeps{Ping: func(context.Context) error { return nil }})
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	})

	t.Run("database down", func(t *testing.T) {
		mux := newTestRouter(RouterDeps{Ping: func(context.Context) error { return errors.New("dial tcp: refused") }})
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.NotContains(t, rr.Body.String(), "refused")
	})
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RateLimited()
	mux := newTestRouter(RouterDeps{Metrics: m, Gatherer: reg})
	rr := httptest.NewRecorder()

	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "openmic_")
}
