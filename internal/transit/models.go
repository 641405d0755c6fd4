// Package transit holds the bus network reference data the journey planner
// reads: stops, directed route segments, per-route stop sequences and vehicle
// position snapshots.
package transit

import (
	"errors"
	"time"
)

// Store errors.
var (
	ErrStopNotFound  = errors.New("stop not found")
	ErrRouteNotFound = errors.New("route not found")
)

// Stop is a named physical boarding/alighting location.
type Stop struct {
	ID      int64
	Name    string
	Lat     float64
	Lon     float64
	Address string
	Code    string
}

// Segment is a directed, route-specific edge between two stops.
// Round-trip routes supply the reverse segments explicitly.
type Segment struct {
	ID              int64
	FromStopID      int64
	ToStopID        int64
	RouteID         int64
	DistanceKm      float64
	DefaultSpeedKmh float64

	// SequenceOrder is the segment's position along the route's direction of travel.
	SequenceOrder int
}

// RouteStop places a stop within one route's ordered stop sequence.
type RouteStop struct {
	RouteID   int64
	StopID    int64
	StopOrder int
}

// Route identifies a bus service.
type Route struct {
	ID     int64
	Number string // Public route number, e.g. "138"
	Name   string // e.g. "Pettah - Homagama"
}

// VehicleStatus is the operational status reported by the fleet tracker.
type VehicleStatus string

const (
	VehicleActive   VehicleStatus = "active"
	VehicleInactive VehicleStatus = "inactive"
)

// Vehicle is a point-in-time position snapshot of one bus.
type Vehicle struct {
	ID      int64
	RouteID int64

	// CurrentStopID is the last confirmed stop, not a continuous GPS fix.
	CurrentStopID int64

	Status    VehicleStatus
	UpdatedAt time.Time
}

// IsActive reports whether the vehicle is in service.
func (v *Vehicle) IsActive() bool {
	return v.Status == VehicleActive
}
