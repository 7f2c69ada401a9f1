// Package api provides the HTTP API for EcoRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/airquality"
	"github.com/ecoroute/ecoroute/internal/api/handler"
	"github.com/ecoroute/ecoroute/internal/api/middleware"
	"github.com/ecoroute/ecoroute/internal/featureflags"
	"github.com/ecoroute/ecoroute/internal/provider/resilience"
	"github.com/ecoroute/ecoroute/internal/review"
	"github.com/ecoroute/ecoroute/internal/session"
	"github.com/ecoroute/ecoroute/internal/trip"
	"github.com/ecoroute/ecoroute/internal/usage"
)

// Default per-minute request budgets.
const (
	DefaultRateLimitPerMinute     = 100
	DefaultPlanRateLimitPerMinute = 10
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	// DomainMetrics is optional.
	DomainMetrics *middleware.DomainMetrics

	SessionService     *session.Service
	UsageService       *usage.Service
	TripService        *trip.Service
	AirQualityService  *airquality.Service
	ReviewService      *review.Service
	FeatureFlagService *featureflags.Service
	ProviderRegistry   *resilience.Registry
	ReadinessChecks    map[string]handler.ReadinessCheck

	// AdminAPIKey guards /v1/admin and /v1/ops/status. Empty disables them.
	AdminAPIKey string
	RequireTLS  bool

	// RateLimitPerMinute applies per IP to public and per session to session routes.
	RateLimitPerMinute int
	// PlanRateLimitPerMinute applies per session to planning calls.
	PlanRateLimitPerMinute int
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ecoroute-api"
	}
	standardLimit := cfg.RateLimitPerMinute
	if standardLimit <= 0 {
		standardLimit = DefaultRateLimitPerMinute
	}
	planLimit := cfg.PlanRateLimitPerMinute
	if planLimit <= 0 {
		planLimit = DefaultPlanRateLimitPerMinute
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type
	r.Use(middleware.RequireJSON)                // Reject non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.ProviderRegistry,
		Flags:     cfg.FeatureFlagService,
		Checks:    cfg.ReadinessChecks,
	})
	metadataHandler := handler.NewMetadataHandler(cfg.TripService, cfg.FeatureFlagService)
	sessionHandler := handler.NewSessionHandler(cfg.SessionService, cfg.Logger)
	usageHandler := handler.NewUsageHandler(cfg.UsageService, cfg.Logger)
	tripHandler := handler.NewTripHandler(cfg.TripService, cfg.DomainMetrics, cfg.Logger)
	airQualityHandler := handler.NewAirQualityHandler(cfg.AirQualityService, cfg.DomainMetrics)
	reviewHandler := handler.NewReviewHandler(cfg.ReviewService, cfg.Logger)
	var readings handler.ReadingCache
	if cfg.AirQualityService != nil {
		readings = cfg.AirQualityService
	}
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService, readings, cfg.Logger)

	sessionAuth := middleware.Session(cfg.SessionService)
	adminAuth := middleware.AdminKey(cfg.AdminAPIKey)

	standardRateLimit := middleware.RateLimitByIP(middleware.PerMinute(standardLimit))
	sessionRateLimit := middleware.RateLimitBySession(middleware.PerMinute(standardLimit))
	planRateLimit := middleware.RateLimitBySession(middleware.PerMinute(planLimit))

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(adminAuth).Get("/status", opsHandler.SystemStatus)
		})

		// Metadata endpoints (public) - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/enums", metadataHandler.GetEnums)
			r.Get("/config", metadataHandler.GetConfig)
		})

		// Session issuance (public) - strict rate limiting
		r.With(middleware.RateLimitByIP(middleware.SessionIssueRateLimit)).Post("/sessions", sessionHandler.Create)

		// Air quality (public)
		r.With(standardRateLimit).Get("/air-quality", airQualityHandler.GetAirQuality)

		// Public review list
		r.With(standardRateLimit).Get("/reviews", reviewHandler.ListApproved)

		// Session endpoints - session-based rate limiting
		r.Group(func(r chi.Router) {
			r.Use(sessionAuth)
			r.Use(sessionRateLimit)

			r.Get("/usage", usageHandler.GetUsage)
			r.Post("/usage/registration", usageHandler.Register)

			r.Post("/reviews", reviewHandler.Submit)

			r.Route("/trips", func(r chi.Router) {
				// Planning calls the model - strict rate limiting
				r.With(planRateLimit).Post("/", tripHandler.Plan)
				r.Route("/current", func(r chi.Router) {
					r.Get("/", tripHandler.GetCurrent)
					r.Delete("/", tripHandler.Clear)
					r.Put("/view", tripHandler.UpdateView)
					r.With(planRateLimit).Post("/language", tripHandler.Replan)
				})
			})
		})

		// Admin endpoints - operator key
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(standardRateLimit)

			r.Get("/reviews/moderation", reviewHandler.ListForModeration)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
