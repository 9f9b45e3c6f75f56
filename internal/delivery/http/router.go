package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"openmic/internal/delivery/http/controllers"
	"openmic/internal/delivery/http/helpers"
	"openmic/internal/delivery/http/middleware"
	"openmic/internal/domain"
	"openmic/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the request handlers mounted by NewRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Venue    *controllers.VenueController
	Event    *controllers.EventController
	Timeslot *controllers.TimeslotController
	Signup   *controllers.SignupController
	Admin    *controllers.AdminController
	Config   *controllers.ConfigController
}

// RouterDeps holds everything NewRouter needs besides the controllers.
type RouterDeps struct {
	Logger      *slog.Logger
	Verifier    domain.TokenVerifier
	Permissions domain.PermissionChecker
	// SignupLimiter may be nil, in which case signups are not rate limited.
	SignupLimiter middleware.Limiter
	// ClientIPs keys the signup limit. Nil trusts no proxy headers.
	ClientIPs *middleware.ClientIPResolver
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	// Ping reports storage health for /healthz. Optional.
	Ping func(ctx context.Context) error
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(deps.Verifier, deps.Logger)
	can := func(perm domain.Permission, h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequirePermission(deps.Permissions, perm, deps.Logger)(h))
	}

	// Auth
	mux.HandleFunc("POST /api/auth/register", c.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", c.Auth.Login)

	// Profile
	mux.HandleFunc("GET /api/users/profile", auth(c.User.GetProfile))
	mux.HandleFunc("PUT /api/users/profile", auth(c.User.UpdateProfile))
	mux.HandleFunc("PUT /api/users/profile/password", auth(c.User.ChangePassword))
	mux.HandleFunc("GET /api/me/permissions", auth(c.User.MyPermissions))

	// Venues
	mux.HandleFunc("GET /api/venues", c.Venue.List)
	mux.HandleFunc("GET /api/venues/{id}", c.Venue.Get)
	mux.HandleFunc("POST /api/venues", can(domain.PermVenuesCreate, c.Venue.Create))
	mux.HandleFunc("PUT /api/venues/{id}", can(domain.PermVenuesEdit, c.Venue.Update))
	mux.HandleFunc("DELETE /api/venues/{id}", can(domain.PermVenuesDelete, c.Venue.Delete))

	// Events
	mux.HandleFunc("GET /api/events", c.Event.List)
	mux.HandleFunc("GET /api/events/{id}", c.Event.Get)
	mux.HandleFunc("POST /api/events", can(domain.PermEventsCreate, c.Event.Create))
	mux.HandleFunc("PUT /api/events/{id}", can(domain.PermEventsEdit, c.Event.Update))
	mux.HandleFunc("DELETE /api/events/{id}", can(domain.PermEventsDelete, c.Event.Delete))
	mux.HandleFunc("POST /api/events/{id}/qr", can(domain.PermEventsEdit, c.Event.RegenerateQR))

	// Timeslots
	mux.HandleFunc("GET /api/timeslots/event/{eventID}", c.Timeslot.ListByEvent)
	mux.HandleFunc("POST /api/timeslots", can(domain.PermTimeslotsManage, c.Timeslot.Create))
	mux.HandleFunc("POST /api/timeslots/generate", can(domain.PermTimeslotsManage, c.Timeslot.Generate))
	mux.HandleFunc("POST /api/timeslots/regenerate", can(domain.PermTimeslotsManage, c.Timeslot.Regenerate))
	mux.HandleFunc("PUT /api/timeslots/{id}", can(domain.PermTimeslotsManage, c.Timeslot.Update))
	mux.HandleFunc("DELETE /api/timeslots/{id}", can(domain.PermTimeslotsManage, c.Timeslot.Delete))

	// Performer signups
	limit := middleware.RateLimit(deps.SignupLimiter, deps.ClientIPs, "signup", deps.Metrics, deps.Logger)
	mux.HandleFunc("POST /api/performer-signup", limit(c.Signup.Signup))
	mux.HandleFunc("GET /api/performer-signup/event/{code}", c.Signup.GetSheet)
	mux.HandleFunc("GET /api/performer-signup/event-id/{eventID}", can(domain.PermSignupsView, c.Signup.ListByEvent))
	mux.HandleFunc("DELETE /api/performer-signup/{id}", can(domain.PermSignupsManage, c.Signup.Delete))

	// Configuration
	mux.HandleFunc("GET /api/config/public", c.Config.ListPublic)
	mux.HandleFunc("GET /api/admin/config", can(domain.PermConfigManage, c.Config.ListAll))
	mux.HandleFunc("GET /api/admin/config/{key}", can(domain.PermConfigManage, c.Config.Get))
	mux.HandleFunc("PUT /api/admin/config/{key}", can(domain.PermConfigManage, c.Config.Set))
	mux.HandleFunc("DELETE /api/admin/config/{key}", can(domain.PermConfigManage, c.Config.Delete))

	// Roles and users
	mux.HandleFunc("GET /api/admin/roles", can(domain.PermRolesManage, c.Admin.ListRoles))
	mux.HandleFunc("GET /api/admin/roles/{id}", can(domain.PermRolesManage, c.Admin.GetRole))
	mux.HandleFunc("POST /api/admin/roles", can(domain.PermRolesManage, c.Admin.CreateRole))
	mux.HandleFunc("PUT /api/admin/roles/{id}", can(domain.PermRolesManage, c.Admin.UpdateRole))
	mux.HandleFunc("DELETE /api/admin/roles/{id}", can(domain.PermRolesManage, c.Admin.DeleteRole))
	mux.HandleFunc("GET /api/admin/users", can(domain.PermUsersView, c.Admin.ListUsers))
	mux.HandleFunc("GET /api/admin/users/{id}", can(domain.PermUsersView, c.Admin.GetUser))
	mux.HandleFunc("PUT /api/admin/users/{id}/roles", can(domain.PermUsersManage, c.Admin.SetUserRoles))
	mux.HandleFunc("PUT /api/admin/users/{id}/status", can(domain.PermUsersManage, c.Admin.SetUserStatus))

	// Operations
	mux.HandleFunc("GET /healthz", healthHandler(deps))
	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

func healthHandler(deps RouterDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				deps.Logger.ErrorContext(r.Context(), "health check failed", "err", err)
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "database unavailable")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
