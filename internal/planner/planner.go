package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/geo"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// Defaults for Config.
const (
	DefaultStoreTimeout  = 5 * time.Second
	MaxNearbyStopsLimit  = 50
	DefaultNearbyListing = 10
)

// Config holds configuration for the Planner.
type Config struct {
	// Store is the network data source (required).
	Store transit.Store

	// Directions supplies walking routes (optional).
	// Without it every walking leg is a straight-line estimate.
	Directions DirectionsProvider

	// Clock picks the traffic multiplier (default: system clock).
	Clock geo.Clock

	// Location is the service area's local time zone (default: time.Local).
	Location *time.Location

	Logger zerolog.Logger

	// Metrics is optional.
	Metrics *Metrics

	WalkingSpeedMPS     float64       // default 1.4
	NearestStopLimit    int           // default 3
	SearchRadiusKm      float64       // default 20
	SafetyBufferMinutes *float64      // default 2; zero is a valid buffer
	MaxETACandidates    int           // default 3
	DirectionsTimeout   time.Duration // default 3s
	StoreTimeout        time.Duration // default 5s
}

// Planner is the journey-planning engine. It holds no per-request state and
// is safe for concurrent use.
type Planner struct {
	store      transit.Store
	directions DirectionsProvider
	clock      geo.Clock
	location   *time.Location
	logger     zerolog.Logger
	metrics    *Metrics
	eta        *ETAEstimator
	tracer     trace.Tracer

	walkingSpeedMPS   float64
	selectOpts        SelectOptions
	safetyBuffer      float64
	directionsTimeout time.Duration
	storeTimeout      time.Duration
}

// NewPlanner creates a Planner, applying defaults to unset fields.
func NewPlanner(cfg Config) *Planner {
	clock := cfg.Clock
	if clock == nil {
		clock = geo.SystemClock{}
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	opts := SelectOptions{
		NearestStopLimit: cfg.NearestStopLimit,
		SearchRadiusKm:   cfg.SearchRadiusKm,
		WalkingSpeedMPS:  cfg.WalkingSpeedMPS,
	}.withDefaults()

	safetyBuffer := DefaultSafetyBufferMinutes
	if cfg.SafetyBufferMinutes != nil {
		safetyBuffer = *cfg.SafetyBufferMinutes
	}

	directionsTimeout := cfg.DirectionsTimeout
	if directionsTimeout == 0 {
		directionsTimeout = DefaultDirectionsTimeout
	}

	storeTimeout := cfg.StoreTimeout
	if storeTimeout == 0 {
		storeTimeout = DefaultStoreTimeout
	}

	return &Planner{
		store:             cfg.Store,
		directions:        cfg.Directions,
		clock:             clock,
		location:          loc,
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
		eta:               NewETAEstimator(cfg.Store, cfg.MaxETACandidates, cfg.Logger),
		tracer:            otel.Tracer(instrumentationName),
		walkingSpeedMPS:   opts.WalkingSpeedMPS,
		selectOpts:        opts,
		safetyBuffer:      safetyBuffer,
		directionsTimeout: directionsTimeout,
		storeTimeout:      storeTimeout,
	}
}

// PlanJourney computes the fastest walk/bus/walk itinerary between two points.
//
// Expected failures are returned as values: ErrInvalidCoordinates,
// ErrNoServiceNearOrigin, ErrNoServiceNearDestination, and a *SearchError
// wrapping ErrNoConnectedRoute or ErrPartialSearchFailure. Store failures are
// returned wrapped.
func (p *Planner) PlanJourney(ctx context.Context, originLat, originLon, destLat, destLon float64) (*Itinerary, error) {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "planner.PlanJourney", trace.WithAttributes(
		attribute.Float64("origin.lat", originLat),
		attribute.Float64("origin.lon", originLon),
		attribute.Float64("destination.lat", destLat),
		attribute.Float64("destination.lon", destLon),
	))
	defer span.End()

	it, err := p.planJourney(ctx, originLat, originLon, destLat, destLon)

	outcome := planOutcome(err)
	p.metrics.RecordPlan(outcome, time.Since(start))
	span.SetAttributes(attribute.String("plan.outcome", outcome))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return it, err
}

func (p *Planner) planJourney(ctx context.Context, originLat, originLon, destLat, destLon float64) (*Itinerary, error) {
	origin := routing.Coordinate{Lat: originLat, Lon: originLon}
	destination := routing.Coordinate{Lat: destLat, Lon: destLon}

	if routing.ValidateCoordinate(origin) != nil {
		return nil, fmt.Errorf("%w: origin (%f, %f)", ErrInvalidCoordinates, originLat, originLon)
	}
	if routing.ValidateCoordinate(destination) != nil {
		return nil, fmt.Errorf("%w: destination (%f, %f)", ErrInvalidCoordinates, destLat, destLon)
	}

	stops, segments, err := p.loadNetwork(ctx)
	if err != nil {
		return nil, err
	}

	now := p.clock.Now().In(p.location)
	multiplier := geo.TrafficMultiplier(now)

	g := BuildGraph(segments, multiplier)
	if n := g.MalformedCount(); n > 0 {
		p.logger.Warn().Int("malformed_segments", n).Msg("Network contains segments that cannot be traversed")
	}

	sel, err := SelectBestRoute(ctx, g, stops, origin, destination, p.selectOpts)
	if err != nil {
		var searchErr *SearchError
		if errors.As(err, &searchErr) {
			p.metrics.RecordPairFailures(searchErr.Errored)
			if errors.Is(err, ErrPartialSearchFailure) {
				p.logger.Error().
					Err(err).
					Int("combinations", searchErr.Combinations).
					Int("errored", searchErr.Errored).
					Msg("Route search failed on malformed network data")
			}
		}
		return nil, err
	}

	if sel.Stats.Errored > 0 {
		p.metrics.RecordPairFailures(sel.Stats.Errored)
		p.logger.Warn().
			Err(sel.FirstCause).
			Int("errored", sel.Stats.Errored).
			Int("combinations", sel.Stats.Combinations).
			Msg("Some stop pairs failed during route search")
	}

	boardingAt := routing.Coordinate{Lat: sel.Boarding.Lat, Lon: sel.Boarding.Lon}
	alightingAt := routing.Coordinate{Lat: sel.Alighting.Lat, Lon: sel.Alighting.Lon}

	walkTo := p.walkingLeg(ctx, "to_stop", origin, boardingAt)
	walkFrom := p.walkingLeg(ctx, "from_stop", alightingAt, destination)

	it := &Itinerary{
		BoardingStop:        sel.Boarding,
		AlightingStop:       sel.Alighting,
		Path:                sel.Path.Stops,
		WalkToStopMinutes:   sel.WalkToStopMinutes,
		BusMinutes:          sel.BusMinutes,
		WalkFromStopMinutes: sel.WalkFromStopMinutes,
		TotalMinutes:        sel.TotalMinutes,
		WalkToStop:          walkTo,
		WalkFromStop:        walkFrom,
		BearingToStop:       geo.Bearing(originLat, originLon, sel.Boarding.Lat, sel.Boarding.Lon),
		TrafficMultiplier:   multiplier,
		Search:              sel.Stats,
		PlannedAt:           now,
	}
	for _, e := range sel.Path.Edges {
		it.SegmentIDs = append(it.SegmentIDs, e.SegmentID)
		it.RouteIDs = append(it.RouteIDs, e.RouteID)
	}

	if routeID, ok := it.BoardingRouteID(); ok {
		sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
		defer cancel()

		eta, err := p.eta.NextBus(sctx, sel.Boarding.ID, &routeID, segments, multiplier)
		if err != nil {
			return nil, fmt.Errorf("estimating next bus: %w", err)
		}
		it.NextBus = eta
	}

	var etaMinutes *float64
	if it.NextBus != nil {
		etaMinutes = &it.NextBus.Minutes
	}
	it.CanCatch = CanCatch(walkTo.Minutes(), etaMinutes, p.safetyBuffer)

	p.logger.Debug().
		Int64("boarding_stop", sel.Boarding.ID).
		Int64("alighting_stop", sel.Alighting.ID).
		Int("path_len", len(it.Path)).
		Float64("total_minutes", it.TotalMinutes).
		Bool("can_catch", it.CanCatch).
		Msg("Journey planned")

	return it, nil
}

// NextBusETA estimates when the next bus reaches stopID, optionally on one route.
// Returns transit.ErrStopNotFound for an unknown stop, and (nil, nil) when no
// active vehicle is upstream of the stop.
func (p *Planner) NextBusETA(ctx context.Context, stopID int64, routeID *int64) (*ETA, error) {
	ctx, span := p.tracer.Start(ctx, "planner.NextBusETA", trace.WithAttributes(
		attribute.Int64("stop.id", stopID),
	))
	defer span.End()

	sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	if _, err := p.store.GetStop(sctx, stopID); err != nil {
		return nil, fmt.Errorf("get stop %d: %w", stopID, err)
	}

	segments, err := p.store.ListSegments(sctx)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	multiplier := geo.TrafficMultiplier(p.clock.Now().In(p.location))
	return p.eta.NextBus(sctx, stopID, routeID, segments, multiplier)
}

// NearbyStops lists up to limit stops within the search radius of a point.
func (p *Planner) NearbyStops(ctx context.Context, lat, lon float64, limit int) ([]NearbyStop, error) {
	if routing.ValidateCoordinate(routing.Coordinate{Lat: lat, Lon: lon}) != nil {
		return nil, fmt.Errorf("%w: (%f, %f)", ErrInvalidCoordinates, lat, lon)
	}
	if limit <= 0 {
		limit = DefaultNearbyListing
	}
	if limit > MaxNearbyStopsLimit {
		limit = MaxNearbyStopsLimit
	}

	sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	stops, err := p.store.ListStops(sctx)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	return NearestStops(stops, lat, lon, limit, p.selectOpts.SearchRadiusKm), nil
}

func (p *Planner) loadNetwork(ctx context.Context) ([]transit.Stop, []transit.Segment, error) {
	sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	stops, err := p.store.ListStops(sctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list stops: %w", err)
	}
	segments, err := p.store.ListSegments(sctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list segments: %w", err)
	}
	return stops, segments, nil
}

func planOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCoordinates):
		return "invalid_coordinates"
	case errors.Is(err, ErrNoServiceNearOrigin):
		return "no_service_origin"
	case errors.Is(err, ErrNoServiceNearDestination):
		return "no_service_destination"
	case errors.Is(err, ErrNoConnectedRoute):
		return "no_connected_route"
	case errors.Is(err, ErrPartialSearchFailure):
		return "partial_search_failure"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
