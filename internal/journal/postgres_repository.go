package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the journey_log table.
const Schema = `
CREATE TABLE IF NOT EXISTS journey_log (
	id                     TEXT PRIMARY KEY,
	request_id             TEXT,
	origin_lat             DOUBLE PRECISION NOT NULL,
	origin_lon             DOUBLE PRECISION NOT NULL,
	destination_lat        DOUBLE PRECISION NOT NULL,
	destination_lon        DOUBLE PRECISION NOT NULL,
	boarding_stop_id       BIGINT NOT NULL,
	alighting_stop_id      BIGINT NOT NULL,
	route_ids              BIGINT[] NOT NULL DEFAULT '{}',
	walk_to_stop_minutes   DOUBLE PRECISION NOT NULL,
	bus_minutes            DOUBLE PRECISION NOT NULL,
	walk_from_stop_minutes DOUBLE PRECISION NOT NULL,
	total_minutes          DOUBLE PRECISION NOT NULL,
	next_bus_minutes       DOUBLE PRECISION,
	can_catch              BOOLEAN NOT NULL,
	traffic_multiplier     DOUBLE PRECISION NOT NULL,
	planned_at             TIMESTAMPTZ NOT NULL,
	recorded_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS journey_log_planned_at_idx ON journey_log (planned_at);
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL journal repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the journey_log table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create journey_log: %w", err)
	}
	return nil
}

// Save stores an entry, ignoring duplicates.
func (r *PostgresRepository) Save(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO journey_log (
			id, request_id,
			origin_lat, origin_lon, destination_lat, destination_lon,
			boarding_stop_id, alighting_stop_id, route_ids,
			walk_to_stop_minutes, bus_minutes, walk_from_stop_minutes, total_minutes,
			next_bus_minutes, can_catch, traffic_multiplier, planned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.RequestID,
		e.Origin.Lat, e.Origin.Lon, e.Destination.Lat, e.Destination.Lon,
		e.BoardingStopID, e.AlightingStopID, e.RouteIDs,
		e.WalkToStopMinutes, e.BusMinutes, e.WalkFromStopMinutes, e.TotalMinutes,
		e.NextBusMinutes, e.CanCatch, e.TrafficMultiplier, e.PlannedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journey_log: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Entry, error) {
	query := `
		SELECT
			id, COALESCE(request_id, ''),
			origin_lat, origin_lon, destination_lat, destination_lon,
			boarding_stop_id, alighting_stop_id, route_ids,
			walk_to_stop_minutes, bus_minutes, walk_from_stop_minutes, total_minutes,
			next_bus_minutes, can_catch, traffic_multiplier, planned_at
		FROM journey_log
		WHERE id = $1
	`

	var e Entry
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.RequestID,
		&e.Origin.Lat, &e.Origin.Lon, &e.Destination.Lat, &e.Destination.Lon,
		&e.BoardingStopID, &e.AlightingStopID, &e.RouteIDs,
		&e.WalkToStopMinutes, &e.BusMinutes, &e.WalkFromStopMinutes, &e.TotalMinutes,
		&e.NextBusMinutes, &e.CanCatch, &e.TrafficMultiplier, &e.PlannedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("query journey_log: %w", err)
	}

	return &e, nil
}

var _ Repository = (*PostgresRepository)(nil)
