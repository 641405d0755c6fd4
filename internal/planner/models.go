// Package planner implements the transit journey-planning engine: stop graph
// construction, shortest-path search, stop-pair selection, next-bus estimation
// and catchability.
//
// The engine is stateless and request-scoped. Every PlanJourney call reads the
// network from the store and rebuilds the graph, because edge weights depend on
// the time-of-day traffic multiplier.
package planner

import (
	"time"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// NearbyStop is a stop annotated with its straight-line distance from a query point.
type NearbyStop struct {
	transit.Stop
	DistanceKm float64
}

// WalkSource records where a walking leg came from.
type WalkSource string

const (
	WalkSourceProvider     WalkSource = "provider"
	WalkSourceStraightLine WalkSource = "straight_line"
)

// WalkingLeg is the pedestrian part of an itinerary.
type WalkingLeg struct {
	From            routing.Coordinate
	To              routing.Coordinate
	DistanceMeters  float64
	DurationSeconds float64
	Coordinates     []routing.Coordinate
	Steps           []routing.Step
	Source          WalkSource
}

// Minutes returns the leg duration in minutes.
func (l *WalkingLeg) Minutes() float64 {
	return l.DurationSeconds / 60
}

// ETA is the estimated arrival of the next bus at a stop.
type ETA struct {
	StopID      int64
	RouteID     int64
	RouteNumber string
	RouteName   string
	VehicleID   int64

	// StopsAway is how many stops the vehicle still has to pass.
	StopsAway int

	// Minutes is kept at full precision; round only for presentation.
	Minutes float64
}

// SearchStats summarises the stop-pair search.
type SearchStats struct {
	OriginCandidates      int
	DestinationCandidates int
	Combinations          int
	Disconnected          int
	Errored               int
}

// Itinerary is the computed walk/bus/walk plan.
type Itinerary struct {
	BoardingStop  NearbyStop
	AlightingStop NearbyStop

	// Path is the ordered list of stop IDs ridden, boarding and alighting stops included.
	Path []int64

	// SegmentIDs and RouteIDs describe the edges taken, in order.
	SegmentIDs []int64
	RouteIDs   []int64

	WalkToStopMinutes   float64
	BusMinutes          float64
	WalkFromStopMinutes float64
	TotalMinutes        float64

	// NextBus is nil when no upcoming bus was found.
	NextBus  *ETA
	CanCatch bool

	WalkToStop   *WalkingLeg
	WalkFromStop *WalkingLeg

	// BearingToStop is the heading from the origin to the boarding stop, in radians.
	BearingToStop float64

	TrafficMultiplier float64
	Search            SearchStats
	PlannedAt         time.Time
}

// BoardingRouteID returns the route of the first ridden segment.
func (it *Itinerary) BoardingRouteID() (int64, bool) {
	if len(it.RouteIDs) == 0 {
		return 0, false
	}
	return it.RouteIDs[0], true
}
