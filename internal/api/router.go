// Package api provides the HTTP API for the Kango journey planner.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/handler"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/middleware"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/journal"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/provider/resilience"
)

// Planner is the journey planning surface exposed over HTTP.
type Planner interface {
	handler.JourneyPlanner
	handler.StopService
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Planner Planner
	Journal journal.Publisher

	// Dependencies are checked by /v1/ops/ready and /v1/ops/status.
	Dependencies []handler.Dependency
	Providers    *resilience.Registry

	// Zero values select middleware.PlanRateLimit and middleware.StandardRateLimit.
	PlanRateLimit     middleware.RateLimitConfig
	StandardRateLimit middleware.RateLimitConfig

	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "kango-api"
	}
	planLimit := cfg.PlanRateLimit
	if planLimit.RequestLimit <= 0 {
		planLimit = middleware.PlanRateLimit
	}
	standardLimit := cfg.StandardRateLimit
	if standardLimit.RequestLimit <= 0 {
		standardLimit = middleware.StandardRateLimit
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Dependencies, cfg.Providers)
	journeyHandler := handler.NewJourneyHandler(cfg.Planner, cfg.Journal)
	stopHandler := handler.NewStopHandler(cfg.Planner)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/journeys", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(planLimit))
			r.With(middleware.RequireJSON).Post("/plan", journeyHandler.PlanJourney)
		})

		r.Route("/stops", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(standardLimit))
			r.Get("/nearby", stopHandler.NearbyStops)
			r.Get("/{stopId}/next-bus", stopHandler.NextBus)
		})
	})

	return r
}
