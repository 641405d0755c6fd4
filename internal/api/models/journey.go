package models

import "math"

// JourneyPlanRequest is the body of POST /v1/journeys/plan.
type JourneyPlanRequest struct {
	Origin      *Point `json:"origin"`
	Destination *Point `json:"destination"`
}

// JourneyPlanResponse is a walk/bus/walk itinerary.
type JourneyPlanResponse struct {
	BoardingStop  Stop `json:"boardingStop"`
	AlightingStop Stop `json:"alightingStop"`

	// StopIDs are the ridden stops, boarding and alighting included.
	StopIDs  []int64 `json:"stopIds"`
	RouteIDs []int64 `json:"routeIds"`

	// The walk and total minutes are the straight-line estimates the stop pair
	// was chosen by. WalkToStop.Minutes and WalkFromStop.Minutes carry the
	// durations of the legs actually returned.
	WalkToStopMinutes   float64 `json:"walkToStopMinutes"`
	BusMinutes          float64 `json:"busMinutes"`
	WalkFromStopMinutes float64 `json:"walkFromStopMinutes"`
	TotalMinutes        float64 `json:"totalMinutes"`

	NextBus *NextBus `json:"nextBus"`
	// CanCatch is judged against WalkToStop.Minutes.
	CanCatch bool `json:"canCatch"`

	WalkToStop   *WalkingLeg `json:"walkToStop"`
	WalkFromStop *WalkingLeg `json:"walkFromStop"`

	BearingToStopDegrees float64   `json:"bearingToStopDegrees"`
	TrafficMultiplier    float64   `json:"trafficMultiplier"`
	PlannedAt            Timestamp `json:"plannedAt"`
}

// WalkingLeg is a pedestrian leg of an itinerary.
type WalkingLeg struct {
	DistanceMeters  float64    `json:"distanceMeters"`
	DurationSeconds float64    `json:"durationSeconds"`
	Minutes         float64    `json:"minutes"`
	Source          string     `json:"source"`
	Geometry        []Point    `json:"geometry,omitempty"`
	Steps           []WalkStep `json:"steps,omitempty"`
}

// WalkStep is one turn-by-turn instruction.
type WalkStep struct {
	Instruction    string  `json:"instruction"`
	StreetName     string  `json:"streetName,omitempty"`
	DistanceMeters float64 `json:"distanceMeters"`
	DurationSecs   float64 `json:"durationSeconds"`
}

// NextBus is the estimated arrival of the next bus at a stop.
type NextBus struct {
	StopID      int64   `json:"stopId"`
	RouteID     int64   `json:"routeId"`
	RouteNumber string  `json:"routeNumber,omitempty"`
	RouteName   string  `json:"routeName,omitempty"`
	VehicleID   int64   `json:"vehicleId"`
	StopsAway   int     `json:"stopsAway"`
	ETAMinutes  float64 `json:"etaMinutes"`
}

// NextBusResponse is the body of GET /v1/stops/{stopId}/next-bus.
type NextBusResponse struct {
	Upcoming bool     `json:"upcoming"`
	NextBus  *NextBus `json:"nextBus,omitempty"`
}

// RoundMinutes rounds a duration in minutes to one decimal place for display.
func RoundMinutes(m float64) float64 {
	return math.Round(m*10) / 10
}
