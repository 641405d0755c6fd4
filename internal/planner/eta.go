package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// DefaultMaxETACandidates caps the vehicles considered per estimate.
const DefaultMaxETACandidates = 3

// ETAEstimator estimates when the next active bus reaches a stop.
//
// Each route is assumed to run in one direction of travel. Round-trip services
// are modelled as separate forward and return routes; vehicle heading is never
// used to infer direction.
type ETAEstimator struct {
	store         transit.Store
	maxCandidates int
	logger        zerolog.Logger
}

// NewETAEstimator creates an estimator reading route sequences and vehicles from store.
func NewETAEstimator(store transit.Store, maxCandidates int, logger zerolog.Logger) *ETAEstimator {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxETACandidates
	}
	return &ETAEstimator{
		store:         store,
		maxCandidates: maxCandidates,
		logger:        logger,
	}
}

type etaCandidate struct {
	vehicle   transit.Vehicle
	sequence  []transit.RouteStop
	fromIndex int
	toIndex   int
}

func (c etaCandidate) stopsAway() int {
	return c.toIndex - c.fromIndex
}

type segmentKey struct {
	routeID, from, to int64
}

// indexSegments maps (route, from, to) to a segment. When a route has several
// segments for the same stop pair, the lowest ID wins.
func indexSegments(segments []transit.Segment) map[segmentKey]transit.Segment {
	idx := make(map[segmentKey]transit.Segment, len(segments))
	for _, seg := range segments {
		key := segmentKey{routeID: seg.RouteID, from: seg.FromStopID, to: seg.ToStopID}
		if existing, ok := idx[key]; ok && existing.ID <= seg.ID {
			continue
		}
		idx[key] = seg
	}
	return idx
}

// NextBus returns the earliest arrival at stopID among active vehicles that have
// not yet passed it. A non-nil routeID restricts the search to that route.
// A nil ETA with a nil error means no upcoming bus.
func (e *ETAEstimator) NextBus(ctx context.Context, stopID int64, routeID *int64, segments []transit.Segment, multiplier float64) (*ETA, error) {
	serving, err := e.store.RoutesForStop(ctx, stopID)
	if err != nil {
		return nil, fmt.Errorf("routes for stop %d: %w", stopID, err)
	}

	var candidates []etaCandidate
	for _, rs := range serving {
		if routeID != nil && rs.RouteID != *routeID {
			continue
		}

		found, err := e.candidatesOnRoute(ctx, rs)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].stopsAway() != candidates[j].stopsAway() {
			return candidates[i].stopsAway() < candidates[j].stopsAway()
		}
		return candidates[i].vehicle.ID < candidates[j].vehicle.ID
	})
	if len(candidates) > e.maxCandidates {
		candidates = candidates[:e.maxCandidates]
	}

	idx := indexSegments(segments)

	var best *ETA
	for _, c := range candidates {
		minutes, err := remainingMinutes(c, idx, multiplier)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Int64("vehicle_id", c.vehicle.ID).
				Int64("route_id", c.vehicle.RouteID).
				Int64("stop_id", stopID).
				Msg("Skipping ETA candidate")
			continue
		}

		if best == nil || minutes < best.Minutes {
			best = &ETA{
				StopID:    stopID,
				RouteID:   c.vehicle.RouteID,
				VehicleID: c.vehicle.ID,
				StopsAway: c.stopsAway(),
				Minutes:   minutes,
			}
		}
	}

	if best == nil {
		return nil, nil
	}

	route, err := e.store.GetRoute(ctx, best.RouteID)
	switch {
	case err == nil:
		best.RouteNumber = route.Number
		best.RouteName = route.Name
	case errors.Is(err, transit.ErrRouteNotFound):
		e.logger.Warn().Int64("route_id", best.RouteID).Msg("ETA route has no route record")
	default:
		return nil, fmt.Errorf("get route %d: %w", best.RouteID, err)
	}

	return best, nil
}

func (e *ETAEstimator) candidatesOnRoute(ctx context.Context, target transit.RouteStop) ([]etaCandidate, error) {
	sequence, err := e.store.RouteStops(ctx, target.RouteID)
	if err != nil {
		return nil, fmt.Errorf("route stops for route %d: %w", target.RouteID, err)
	}

	position := make(map[int64]int, len(sequence))
	for i, rs := range sequence {
		if _, seen := position[rs.StopID]; !seen {
			position[rs.StopID] = i
		}
	}
	toIndex, ok := position[target.StopID]
	if !ok {
		return nil, nil
	}

	vehicles, err := e.store.ActiveVehicles(ctx, target.RouteID)
	if err != nil {
		return nil, fmt.Errorf("active vehicles for route %d: %w", target.RouteID, err)
	}

	var out []etaCandidate
	for _, v := range vehicles {
		if !v.IsActive() {
			continue
		}
		fromIndex, ok := position[v.CurrentStopID]
		if !ok || sequence[fromIndex].StopOrder >= sequence[toIndex].StopOrder {
			continue
		}
		out = append(out, etaCandidate{
			vehicle:   v,
			sequence:  sequence,
			fromIndex: fromIndex,
			toIndex:   toIndex,
		})
	}
	return out, nil
}

// remainingMinutes sums the segments from the vehicle's stop (inclusive) to the
// target stop (exclusive) along the route sequence.
func remainingMinutes(c etaCandidate, idx map[segmentKey]transit.Segment, multiplier float64) (float64, error) {
	var total float64
	for i := c.fromIndex; i < c.toIndex; i++ {
		from := c.sequence[i].StopID
		to := c.sequence[i+1].StopID

		seg, ok := idx[segmentKey{routeID: c.vehicle.RouteID, from: from, to: to}]
		if !ok {
			return 0, fmt.Errorf("no segment %d->%d on route %d", from, to, c.vehicle.RouteID)
		}

		minutes, err := SegmentMinutes(seg, multiplier)
		if err != nil {
			return 0, err
		}
		total += minutes
	}
	return total, nil
}
