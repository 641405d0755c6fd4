package transit

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of Store.
// It only reads; the tables are owned by the data-management service.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL transit store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ListStops returns every known stop.
func (s *PostgresStore) ListStops(ctx context.Context) ([]Stop, error) {
	query := `
		SELECT id, name, latitude, longitude,
			COALESCE(address, ''), COALESCE(stop_code, '')
		FROM stops
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	defer rows.Close()

	var stops []Stop
	for rows.Next() {
		var st Stop
		if err := rows.Scan(&st.ID, &st.Name, &st.Lat, &st.Lon, &st.Address, &st.Code); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, st)
	}

	return stops, rows.Err()
}

// GetStop retrieves a stop by ID.
func (s *PostgresStore) GetStop(ctx context.Context, stopID int64) (*Stop, error) {
	query := `
		SELECT id, name, latitude, longitude,
			COALESCE(address, ''), COALESCE(stop_code, '')
		FROM stops
		WHERE id = $1
	`

	var st Stop
	err := s.pool.QueryRow(ctx, query, stopID).Scan(&st.ID, &st.Name, &st.Lat, &st.Lon, &st.Address, &st.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStopNotFound
		}
		return nil, fmt.Errorf("query stop: %w", err)
	}

	return &st, nil
}

// ListSegments returns every directed segment.
func (s *PostgresStore) ListSegments(ctx context.Context) ([]Segment, error) {
	query := `
		SELECT id, from_stop_id, to_stop_id, route_id,
			distance_km, default_speed_kmh, sequence_order
		FROM route_segments
		ORDER BY route_id, sequence_order, id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		err := rows.Scan(
			&seg.ID,
			&seg.FromStopID,
			&seg.ToStopID,
			&seg.RouteID,
			&seg.DistanceKm,
			&seg.DefaultSpeedKmh,
			&seg.SequenceOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}

	return segments, rows.Err()
}

// GetRoute retrieves a route by ID.
func (s *PostgresStore) GetRoute(ctx context.Context, routeID int64) (*Route, error) {
	query := `
		SELECT id, route_number, name
		FROM routes
		WHERE id = $1
	`

	var r Route
	err := s.pool.QueryRow(ctx, query, routeID).Scan(&r.ID, &r.Number, &r.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("query route: %w", err)
	}

	return &r, nil
}

// RouteStops returns the ordered stop sequence of a route.
func (s *PostgresStore) RouteStops(ctx context.Context, routeID int64) ([]RouteStop, error) {
	query := `
		SELECT route_id, stop_id, stop_order
		FROM route_stops
		WHERE route_id = $1
		ORDER BY stop_order
	`

	return s.queryRouteStops(ctx, query, routeID)
}

// RoutesForStop returns the position of the stop on every route serving it.
func (s *PostgresStore) RoutesForStop(ctx context.Context, stopID int64) ([]RouteStop, error) {
	query := `
		SELECT DISTINCT ON (route_id) route_id, stop_id, stop_order
		FROM route_stops
		WHERE stop_id = $1
		ORDER BY route_id, stop_order
	`

	return s.queryRouteStops(ctx, query, stopID)
}

func (s *PostgresStore) queryRouteStops(ctx context.Context, query string, arg int64) ([]RouteStop, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query route stops: %w", err)
	}
	defer rows.Close()

	var result []RouteStop
	for rows.Next() {
		var rs RouteStop
		if err := rows.Scan(&rs.RouteID, &rs.StopID, &rs.StopOrder); err != nil {
			return nil, fmt.Errorf("scan route stop: %w", err)
		}
		result = append(result, rs)
	}

	return result, rows.Err()
}

// ActiveVehicles returns the active vehicles assigned to a route.
func (s *PostgresStore) ActiveVehicles(ctx context.Context, routeID int64) ([]Vehicle, error) {
	query := `
		SELECT id, route_id, current_stop_id, status, updated_at
		FROM buses
		WHERE route_id = $1 AND status = $2 AND current_stop_id IS NOT NULL
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, routeID, string(VehicleActive))
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		var status string
		if err := rows.Scan(&v.ID, &v.RouteID, &v.CurrentStopID, &status, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		v.Status = VehicleStatus(status)
		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}

// Ping verifies database connectivity for readiness checks.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Ensure PostgresStore implements Store interface.
var _ Store = (*PostgresStore)(nil)
