// Package main provides the entrypoint for the Kango journey planner API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // PLANNER_TIMEZONE must resolve on images without zoneinfo

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/handler"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/middleware"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/config"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/database"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/journal"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/provider/resilience"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing/openrouteservice"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/telemetry"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	const serviceName = "kango-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Kango API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
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

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	plannerMetrics, err := planner.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize planner metrics")
		os.Exit(1)
	}

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("database connected")

	store := transit.NewPostgresStore(pool)
	deps := []handler.Dependency{{Name: "database", Pinger: store}}

	// Walking directions are optional; without a provider every leg is a
	// straight-line estimate.
	providers := resilience.NewRegistry()
	var directions planner.DirectionsProvider
	if cfg.ORSAPIKey != "" {
		var cache routing.Cache = routing.NewMemoryCache(0)
		if cfg.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			defer func() { _ = rdb.Close() }()

			cache = routing.NewRedisCache(rdb, "")
			deps = append(deps, handler.Dependency{Name: "redis", Pinger: redisPinger{client: rdb}, Optional: true})
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis walking-route cache enabled")
		}

		directions = routing.NewService(routing.ServiceConfig{
			Provider: openrouteservice.NewClient(openrouteservice.ClientConfig{
				APIKey:   cfg.ORSAPIKey,
				BaseURL:  cfg.ORSBaseURL,
				Timeout:  cfg.DirectionsTimeout,
				Registry: providers,
				Logger:   log,
			}),
			Cache:    cache,
			Logger:   log,
			CacheTTL: cfg.DirectionsCacheTTL,
		})
		log.Info().Msg("walking directions enabled")
	} else {
		log.Warn().Msg("ORS_API_KEY not set - walking legs use straight-line estimates")
	}

	journeyPlanner := planner.NewPlanner(planner.Config{
		Store:               store,
		Directions:          directions,
		Location:            cfg.Planner.Location,
		Logger:              log,
		Metrics:             plannerMetrics,
		WalkingSpeedMPS:     cfg.Planner.WalkingSpeedMPS,
		NearestStopLimit:    cfg.Planner.NearestStopLimit,
		SearchRadiusKm:      cfg.Planner.SearchRadiusKm,
		SafetyBufferMinutes: &cfg.Planner.SafetyBufferMinutes,
		MaxETACandidates:    cfg.Planner.MaxETACandidates,
		DirectionsTimeout:   cfg.DirectionsTimeout,
		StoreTimeout:        cfg.Planner.StoreTimeout,
	})

	var publisher journal.Publisher = journal.NopPublisher{}
	if cfg.PubSubProjectID != "" {
		pub, err := journal.NewPubSubPublisher(ctx, journal.PubSubPublisherConfig{
			ProjectID: cfg.PubSubProjectID,
			Topic:     cfg.PubSubTopic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create journal publisher")
		}
		defer func() { _ = pub.Close() }()
		publisher = pub
		log.Info().Str("topic", cfg.PubSubTopic).Msg("journey journal enabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           httpMetrics,
		Planner:           journeyPlanner,
		Journal:           publisher,
		Dependencies:      deps,
		Providers:         providers,
		StandardRateLimit: middleware.PerMinute(cfg.RateLimitPerMinute),
		RequireTLS:        cfg.IsProduction(),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
