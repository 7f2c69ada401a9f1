// Package main provides the entrypoint for the EcoRoute API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/airquality"
	"github.com/ecoroute/ecoroute/internal/airquality/openmeteo"
	"github.com/ecoroute/ecoroute/internal/api"
	"github.com/ecoroute/ecoroute/internal/api/handler"
	"github.com/ecoroute/ecoroute/internal/api/middleware"
	"github.com/ecoroute/ecoroute/internal/config"
	"github.com/ecoroute/ecoroute/internal/database"
	"github.com/ecoroute/ecoroute/internal/featureflags"
	"github.com/ecoroute/ecoroute/internal/notify"
	"github.com/ecoroute/ecoroute/internal/provider/resilience"
	"github.com/ecoroute/ecoroute/internal/review"
	"github.com/ecoroute/ecoroute/internal/session"
	"github.com/ecoroute/ecoroute/internal/store"
	"github.com/ecoroute/ecoroute/internal/telemetry"
	"github.com/ecoroute/ecoroute/internal/trip"
	"github.com/ecoroute/ecoroute/internal/trip/gemini"
	"github.com/ecoroute/ecoroute/internal/usage"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ecoroute-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, parseErr := zerolog.ParseLevel(cfg.LogLevel); parseErr == nil {
		log = log.Level(level)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting EcoRoute API")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	domainMetrics, err := middleware.NewDomainMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize domain metrics")
		os.Exit(1)
	}

	// Storage
	var (
		kv      store.KV
		ffRepo  featureflags.Repository
		readies = map[string]handler.ReadinessCheck{}
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool := connectDatabase(ctx, cfg, log)
		defer pool.Close()

		kv = store.NewPostgresKV(pool)
		ffRepo = featureflags.NewPostgresRepository(pool)
		readies["database"] = pool.Ping
	default:
		kv = store.NewInMemoryKV()
		ffRepo = featureflags.NewInMemoryRepository()
		log.Warn().Msg("using in-memory storage - session state is lost on restart")
	}

	// Initialize feature flags service
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   cfg.FeatureFlagCacheTTL,
	})
	log.Info().Msg("feature flags service initialized")

	// Outbound providers report into a shared registry.
	registry := resilience.NewRegistry()

	var planner trip.Planner
	if cfg.GeminiAPIKey != "" {
		client, clientErr := gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			BaseURL:  cfg.GeminiBaseURL,
			Timeout:  cfg.GeminiTimeout,
			Registry: registry,
			Logger:   log,
		})
		if clientErr != nil {
			log.Fatal().Err(clientErr).Msg("failed to create gemini client")
		}
		planner = client
		log.Info().Str("model", cfg.GeminiModel).Msg("trip planner initialized")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - trip planning will report a configuration error")
	}

	aqProvider := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:  cfg.OpenMeteoBaseURL,
		Timeout:  cfg.OpenMeteoTimeout,
		Registry: registry,
	})
	aqService := airquality.NewService(airquality.ServiceConfig{
		Provider:        aqProvider,
		Flags:           ffService,
		Logger:          log,
		CacheTTL:        cfg.AirQualityTTL,
		StaleIfErrorTTL: cfg.AirQualityStale,
	})
	log.Info().Msg("air quality service initialized")

	usageService := usage.NewService(usage.ServiceConfig{
		Store:  kv,
		Logger: log,
	})

	notifier, closeNotifier := newNotifier(ctx, cfg, log)
	defer closeNotifier()

	reviewService := review.NewService(review.ServiceConfig{
		Store:    kv,
		Names:    usageService,
		Notifier: notifier,
		Logger:   log,
	})

	// A trip cannot outlive the session token that reaches it.
	tripService := trip.NewService(trip.ServiceConfig{
		Planner:        planner,
		Gate:           usageService,
		Flags:          ffService,
		Logger:         log,
		SessionIdleTTL: cfg.SessionTTL,
	})

	signingKey, isDefault := cfg.SigningKey()
	if isDefault {
		log.Warn().Msg("using default session signing key - not secure for production")
	}
	sessionService, err := session.NewService(session.Config{
		SigningKey: signingKey,
		Issuer:     cfg.SessionIssuer,
		Audience:   cfg.SessionAudience,
		TTL:        cfg.SessionTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session service")
	}

	if cfg.AdminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY not set - admin endpoints are disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:                Version,
		BuildTime:              BuildTime,
		Logger:                 log,
		ServiceName:            serviceName,
		Metrics:                metrics,
		DomainMetrics:          domainMetrics,
		SessionService:         sessionService,
		UsageService:           usageService,
		TripService:            tripService,
		AirQualityService:      aqService,
		ReviewService:          reviewService,
		FeatureFlagService:     ffService,
		ProviderRegistry:       registry,
		ReadinessChecks:        readies,
		AdminAPIKey:            cfg.AdminAPIKey,
		RequireTLS:             cfg.RequireTLS,
		RateLimitPerMinute:     cfg.RateLimitRPM,
		PlanRateLimitPerMinute: cfg.PlanRateLimitRPM,
	})

	// Create HTTP server. Planning calls can take most of a minute.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GeminiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

func connectDatabase(ctx context.Context, cfg *config.Config, log zerolog.Logger) *pgxpool.Pool {
	dbConfig := cfg.Database()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("failed to prepare database schema")
	}
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")
	return pool
}

// newNotifier publishes review notifications to Pub/Sub when a topic is
// configured and logs them otherwise.
func newNotifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (review.Notifier, func()) {
	if !cfg.PubSubEnabled() {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set - review notifications are only logged")
		return notify.LogNotifier{Logger: log}, func() {}
	}

	publisher, err := notify.NewPublisher(ctx, notify.PublisherConfig{
		ProjectID: cfg.PubSubProjectID,
		TopicName: cfg.PubSubTopic,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create review notification publisher")
	}
	log.Info().
		Str("project", cfg.PubSubProjectID).
		Str("topic", cfg.PubSubTopic).
		Msg("review notifications published to pubsub")

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close publisher")
		}
	}
}
