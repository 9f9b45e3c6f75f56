package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openmic/config"
	_ "openmic/docs"
	"openmic/internal/adapters/auth"
	"openmic/internal/adapters/email"
	"openmic/internal/adapters/qrcode"
	"openmic/internal/adapters/ratelimit"
	httpdelivery "openmic/internal/delivery/http"
	"openmic/internal/delivery/http/controllers"
	"openmic/internal/delivery/http/middleware"
	"openmic/internal/metrics"
	"openmic/internal/repository/postgres"
	"openmic/internal/services"
	"openmic/migrations"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	qrCodeSize      = 256
	shutdownTimeout = 10 * time.Second
)

// @title Open Mic API
// @version 1.0
// @description Venues, open mic events, performer timeslots and signups.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "err", err)
		}
	}()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.PingContext(startCtx); err != nil {
		cancel()
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.RunMigrations {
		if err := migrations.Up(startCtx, db, logger); err != nil {
			cancel()
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}
	cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clientIPs, err := middleware.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	// Signups are only rate limited when Redis is configured.
	var signupLimiter middleware.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		signupLimiter = ratelimit.NewRedisLimiter(redisClient, cfg.SignupRateLimit, cfg.SignupRateWindow)
		logger.Info("signup rate limiting enabled", "limit", cfg.SignupRateLimit, "window", cfg.SignupRateWindow)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	venueRepo := postgres.NewVenueRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	timeslotRepo := postgres.NewTimeslotRepository(db)
	signupRepo := postgres.NewSignupRepository(db)
	configRepo := postgres.NewConfigRepository(db)

	// Adapters
	tokens := auth.NewJWT(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AccessKeyID,
			SecretAccessKey: cfg.Email.SecretAccessKey,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	// Services
	timeout := cfg.ContextTimeout
	configService := services.NewConfigService(configRepo, timeout)
	roleService := services.NewRoleService(roleRepo, userRepo, timeout)
	authService := services.NewAuthService(userRepo, roleRepo, hasher, tokens, cfg.JWTExpiry, emailService, logger, timeout)
	userService := services.NewUserService(userRepo, roleRepo, hasher, timeout)
	venueService := services.NewVenueService(venueRepo, timeout)
	eventService := services.NewEventService(eventRepo, venueRepo, signupRepo, qrcode.NewPNGGenerator(qrCodeSize), cfg.BaseURL, logger, timeout)
	timeslotService := services.NewTimeslotService(timeslotRepo, eventRepo, signupRepo, configService, m, timeout)
	signupService := services.NewSignupService(services.SignupDeps{
		Signups:   signupRepo,
		Events:    eventRepo,
		Timeslots: timeslotRepo,
		Venues:    venueRepo,
		Config:    configService,
		Email:     emailService,
		Metrics:   m,
		Logger:    logger,
	}, cfg.BaseURL, timeout)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:     controllers.NewAuthController(logger, authService),
		User:     controllers.NewUserController(logger, userService, roleService),
		Venue:    controllers.NewVenueController(logger, venueService),
		Event:    controllers.NewEventController(logger, eventService),
		Timeslot: controllers.NewTimeslotController(logger, timeslotService),
		Signup:   controllers.NewSignupController(logger, signupService),
		Admin:    controllers.NewAdminController(logger, userService, roleService),
		Config:   controllers.NewConfigController(logger, configService),
	}, httpdelivery.RouterDeps{
		Logger:        logger,
		Verifier:      tokens,
		Permissions:   roleService,
		SignupLimiter: signupLimiter,
		ClientIPs:     clientIPs,
		Metrics:       m,
		Gatherer:      reg,
		Ping:          db.PingContext,
	})

	// metrics must wrap the mux directly so the matched pattern is visible
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, middleware.Metrics(m, mux)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}
	logger.Info("server exited")
}
