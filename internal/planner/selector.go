package planner

import (
	"context"
	"errors"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// DefaultWalkingSpeedMPS is the pedestrian speed used for walking estimates.
const DefaultWalkingSpeedMPS = 1.4

// SelectOptions holds the stop-pair search policy.
type SelectOptions struct {
	NearestStopLimit int
	SearchRadiusKm   float64
	WalkingSpeedMPS  float64
}

func (o SelectOptions) withDefaults() SelectOptions {
	if o.NearestStopLimit <= 0 {
		o.NearestStopLimit = DefaultNearestStopLimit
	}
	if o.SearchRadiusKm <= 0 {
		o.SearchRadiusKm = DefaultSearchRadiusKm
	}
	if o.WalkingSpeedMPS <= 0 {
		o.WalkingSpeedMPS = DefaultWalkingSpeedMPS
	}
	return o
}

// Selection is the winning stop pair and its timing breakdown.
type Selection struct {
	Boarding  NearbyStop
	Alighting NearbyStop
	Path      Path

	WalkToStopMinutes   float64
	BusMinutes          float64
	WalkFromStopMinutes float64
	TotalMinutes        float64

	Stats SearchStats

	// FirstCause is the first pair failure, kept even when a winner was found.
	FirstCause error
}

// WalkingMinutes converts a straight-line distance to walking minutes.
func WalkingMinutes(distanceKm, speedMPS float64) float64 {
	return distanceKm * 1000 / speedMPS / 60
}

// SelectBestRoute evaluates every origin/destination stop pair and returns the
// one with the lowest walk + ride + walk time.
//
// Pairs are evaluated origin-major with both candidate lists nearest-first; a
// later pair replaces the current best only when strictly faster. Pairs without
// a boardable path count as disconnected. Pairs whose search fails count as
// errored and do not stop the search unless the context is done.
func SelectBestRoute(ctx context.Context, g *Graph, stops []transit.Stop, origin, destination routing.Coordinate, opts SelectOptions) (*Selection, error) {
	opts = opts.withDefaults()

	originStops := NearestStops(stops, origin.Lat, origin.Lon, opts.NearestStopLimit, opts.SearchRadiusKm)
	if len(originStops) == 0 {
		return nil, ErrNoServiceNearOrigin
	}
	destStops := NearestStops(stops, destination.Lat, destination.Lon, opts.NearestStopLimit, opts.SearchRadiusKm)
	if len(destStops) == 0 {
		return nil, ErrNoServiceNearDestination
	}

	stats := SearchStats{
		OriginCandidates:      len(originStops),
		DestinationCandidates: len(destStops),
	}

	var best *Selection
	var firstCause error

	for _, from := range originStops {
		walkTo := WalkingMinutes(from.DistanceKm, opts.WalkingSpeedMPS)

		for _, to := range destStops {
			stats.Combinations++

			path, err := g.ShortestPath(ctx, from.ID, to.ID)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				stats.Errored++
				if firstCause == nil {
					firstCause = err
				}
				continue
			}
			if !path.Boardable() {
				stats.Disconnected++
				continue
			}

			walkFrom := WalkingMinutes(to.DistanceKm, opts.WalkingSpeedMPS)
			total := walkTo + path.TotalMinutes + walkFrom

			if best == nil || total < best.TotalMinutes {
				best = &Selection{
					Boarding:            from,
					Alighting:           to,
					Path:                path,
					WalkToStopMinutes:   walkTo,
					BusMinutes:          path.TotalMinutes,
					WalkFromStopMinutes: walkFrom,
					TotalMinutes:        total,
				}
			}
		}
	}

	if best == nil {
		searchErr := &SearchError{
			Combinations: stats.Combinations,
			Disconnected: stats.Disconnected,
			Errored:      stats.Errored,
			FirstCause:   firstCause,
			Err:          ErrNoConnectedRoute,
		}
		if stats.Errored > 0 {
			searchErr.Err = ErrPartialSearchFailure
		}
		return nil, searchErr
	}

	best.Stats = stats
	best.FirstCause = firstCause
	return best, nil
}
