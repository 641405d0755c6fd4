package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/geo"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
)

// DirectionsProvider supplies walking routes. routing.Service satisfies it.
type DirectionsProvider interface {
	Walk(ctx context.Context, req routing.WalkRequest) (*routing.Walk, error)
}

// StraightLineWalk estimates a walking leg from great-circle distance.
func StraightLineWalk(from, to routing.Coordinate, speedMPS float64) *WalkingLeg {
	meters := geo.DistanceKm(from.Lat, from.Lon, to.Lat, to.Lon) * 1000
	return &WalkingLeg{
		From:            from,
		To:              to,
		DistanceMeters:  meters,
		DurationSeconds: meters / speedMPS,
		Coordinates:     []routing.Coordinate{from, to},
		Source:          WalkSourceStraightLine,
	}
}

// walkingLeg asks the directions provider for a route and degrades to a
// straight line when there is no provider, it fails, or it exceeds the timeout.
func (p *Planner) walkingLeg(ctx context.Context, leg string, from, to routing.Coordinate) *WalkingLeg {
	if p.directions == nil {
		return StraightLineWalk(from, to, p.walkingSpeedMPS)
	}

	dctx, cancel := context.WithTimeout(ctx, p.directionsTimeout)
	defer cancel()

	walk, err := p.directions.Walk(dctx, routing.WalkRequest{Origin: from, Destination: to})
	if err == nil && walk == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		p.logger.Warn().
			Err(fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)).
			Str("leg", leg).
			Msg("Falling back to straight-line walking estimate")
		p.metrics.RecordDirectionsFallback(leg)
		return StraightLineWalk(from, to, p.walkingSpeedMPS)
	}

	coords := walk.Coordinates
	if len(coords) == 0 {
		coords = []routing.Coordinate{from, to}
	}
	return &WalkingLeg{
		From:            from,
		To:              to,
		DistanceMeters:  walk.DistanceMeters,
		DurationSeconds: walk.DurationSeconds,
		Coordinates:     coords,
		Steps:           walk.Steps,
		Source:          WalkSourceProvider,
	}
}

// DefaultDirectionsTimeout bounds each walking directions call.
const DefaultDirectionsTimeout = 3 * time.Second
