package routing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the walking directions provider.
	Provider Provider

	// Cache stores fetched routes (default: in-memory).
	Cache Cache

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a cached route is served without refetching (default: 30 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.001 ~ 110m).
	// Requests whose endpoints fall in the same cells share cached data.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 6 hours).
	StaleIfErrorTTL time.Duration
}

// Service provides walking directions with caching.
type Service struct {
	provider        Provider
	cache           Cache
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	now             func() time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.001 // ~110m
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 6 * time.Hour
	}
	if staleIfErrorTTL < cacheTTL {
		staleIfErrorTTL = cacheTTL
	}

	cache := cfg.Cache
	if cache == nil {
		cache = NewMemoryCache(0)
	}

	return &Service{
		provider:        cfg.Provider,
		cache:           cache,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		now:             time.Now,
	}
}

// Walk returns the walking route between two points.
// Uses cached data if available and fresh, and falls back to stale data when
// the provider fails.
func (s *Service) Walk(ctx context.Context, req WalkRequest) (*Walk, error) {
	if err := ValidateCoordinate(req.Origin); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      err,
		}
	}
	if err := ValidateCoordinate(req.Destination); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      err,
		}
	}

	key := s.cacheKey(req)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("walk cache read failed")
		cached = nil
	}
	if cached != nil && s.now().Before(cached.FetchedAt.Add(s.cacheTTL)) {
		s.logger.Debug().Str("cache_key", key).Msg("cache hit for walk")
		return cached.Walk, nil
	}

	s.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Str("provider", s.provider.Name()).
		Msg("fetching walk from provider")

	walk, err := s.provider.Walk(ctx, req)
	if err != nil {
		if cached != nil && s.now().Before(cached.FetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Err(err).
				Time("fetched_at", cached.FetchedAt).
				Str("cache_key", key).
				Msg("serving stale walk due to provider error")
			return cached.Walk, nil
		}
		return nil, err
	}

	entry := &CachedWalk{Walk: walk, FetchedAt: s.now()}
	if err := s.cache.Set(ctx, key, entry, s.staleIfErrorTTL); err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("walk cache write failed")
	}

	return walk, nil
}

// Name returns the name of the underlying provider.
func (s *Service) Name() string {
	return s.provider.Name()
}

// cacheKey quantizes both endpoints to the cache grid.
// Format: {gridOriginLat},{gridOriginLon}:{gridDestLat},{gridDestLon}.
func (s *Service) cacheKey(req WalkRequest) string {
	q := func(v float64) float64 {
		return math.Floor(v/s.cacheGridSize) * s.cacheGridSize
	}
	return fmt.Sprintf("%.4f,%.4f:%.4f,%.4f",
		q(req.Origin.Lat), q(req.Origin.Lon),
		q(req.Destination.Lat), q(req.Destination.Lon),
	)
}

var _ Provider = (*Service)(nil)
