// Package routing provides pedestrian directions for the walking legs of a
// journey, backed by an external provider and a grid-quantized cache.
package routing

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no walkable route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider is a source of walking directions.
type Provider interface {
	// Walk returns the walking route between two points.
	Walk(ctx context.Context, req WalkRequest) (*Walk, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WalkRequest asks for a walking route.
type WalkRequest struct {
	Origin      Coordinate
	Destination Coordinate
}

// Walk is a pedestrian route.
type Walk struct {
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
	Coordinates     []Coordinate `json:"coordinates"`
	Steps           []Step       `json:"steps,omitempty"`
	Provider        string       `json:"provider"`
	FetchedAt       time.Time    `json:"fetched_at"`
}

// Step is a turn-by-turn instruction.
type Step struct {
	Text           string  `json:"text"`
	Name           string  `json:"name,omitempty"`
	DistanceMeters float64 `json:"distance_meters"`
	DurationSecs   float64 `json:"duration_secs"`
	Type           int     `json:"type"` // ORS instruction type code
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}

// ValidateCoordinate checks that a coordinate is within valid ranges.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 || c.Lat != c.Lat {
		return ErrInvalidCoordinates
	}
	if c.Lon < -180 || c.Lon > 180 || c.Lon != c.Lon {
		return ErrInvalidCoordinates
	}
	return nil
}
