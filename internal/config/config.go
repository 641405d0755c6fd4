// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/database"
)

// Config is the configuration shared by the API server and the worker.
type Config struct {
	Port        string
	Environment string

	TelemetryEnabled bool
	OTLPEndpoint     string

	Database database.Config

	// RedisAddr enables the shared walking-route cache when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ORSAPIKey enables walking directions when set.
	ORSAPIKey          string
	ORSBaseURL         string
	DirectionsTimeout  time.Duration
	DirectionsCacheTTL time.Duration

	// PubSubProjectID enables the journey journal when set.
	PubSubProjectID    string
	PubSubTopic        string
	PubSubSubscription string

	Planner PlannerConfig

	// RateLimitPerMinute is the per-client request budget of the API.
	RateLimitPerMinute int
}

// PlannerConfig holds the journey-planning policy.
type PlannerConfig struct {
	WalkingSpeedMPS     float64
	NearestStopLimit    int
	SearchRadiusKm      float64
	SafetyBufferMinutes float64
	MaxETACandidates    int
	StoreTimeout        time.Duration
	Location            *time.Location
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenvDefault("APP_PORT", "8080"),
		Environment:        getenvDefault("APP_ENV", "development"),
		TelemetryEnabled:   parseBool(os.Getenv("OTEL_ENABLED")),
		OTLPEndpoint:       getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Database:           database.ConfigFromEnv(),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		ORSAPIKey:          os.Getenv("ORS_API_KEY"),
		ORSBaseURL:         os.Getenv("ORS_BASE_URL"),
		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubTopic:        getenvDefault("PUBSUB_TOPIC", "journey-plans"),
		PubSubSubscription: getenvDefault("PUBSUB_SUBSCRIPTION", "journey-plans-worker"),
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0, 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 120, 1); err != nil {
		return nil, err
	}
	if cfg.DirectionsTimeout, err = durationEnv("DIRECTIONS_TIMEOUT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.DirectionsCacheTTL, err = durationEnv("DIRECTIONS_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	p := &cfg.Planner
	if p.WalkingSpeedMPS, err = floatEnv("PLANNER_WALKING_SPEED_MPS", 1.4); err != nil {
		return nil, err
	}
	if p.NearestStopLimit, err = intEnv("PLANNER_NEAREST_STOP_LIMIT", 3, 1); err != nil {
		return nil, err
	}
	if p.SearchRadiusKm, err = floatEnv("PLANNER_SEARCH_RADIUS_KM", 20); err != nil {
		return nil, err
	}
	if p.SafetyBufferMinutes, err = nonNegativeFloatEnv("PLANNER_SAFETY_BUFFER_MINUTES", 2); err != nil {
		return nil, err
	}
	if p.MaxETACandidates, err = intEnv("PLANNER_MAX_ETA_CANDIDATES", 3, 1); err != nil {
		return nil, err
	}
	if p.StoreTimeout, err = durationEnv("PLANNER_STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	tz := getenvDefault("PLANNER_TIMEZONE", "Asia/Colombo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid PLANNER_TIMEZONE %q: %w", tz, err)
	}
	p.Location = loc

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func intEnv(k string, def, min int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return n, nil
}

func floatEnv(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func nonNegativeFloatEnv(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return d, nil
}
