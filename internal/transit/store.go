package transit

import "context"

// StopStore returns the service area's stops and directed segments.
type StopStore interface {
	// ListStops returns every known stop.
	ListStops(ctx context.Context) ([]Stop, error)

	// GetStop retrieves a stop by ID.
	// Returns ErrStopNotFound if the stop doesn't exist.
	GetStop(ctx context.Context, stopID int64) (*Stop, error)

	// ListSegments returns every directed segment of every route.
	ListSegments(ctx context.Context) ([]Segment, error)
}

// RouteStore returns route identities and their ordered stop sequences.
type RouteStore interface {
	// GetRoute retrieves a route by ID.
	// Returns ErrRouteNotFound if the route doesn't exist.
	GetRoute(ctx context.Context, routeID int64) (*Route, error)

	// RouteStops returns the ordered stop sequence of a route, ascending by StopOrder.
	RouteStops(ctx context.Context, routeID int64) ([]RouteStop, error)

	// RoutesForStop returns one RouteStop per route that serves the stop.
	RoutesForStop(ctx context.Context, stopID int64) ([]RouteStop, error)
}

// VehicleStore returns vehicle position snapshots.
type VehicleStore interface {
	// ActiveVehicles returns the active vehicles currently assigned to a route.
	ActiveVehicles(ctx context.Context, routeID int64) ([]Vehicle, error)
}

// Store is the full read contract the planner consumes.
type Store interface {
	StopStore
	RouteStore
	VehicleStore
}
