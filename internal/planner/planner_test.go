package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/geo"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// noon is off-peak, so the multiplier is 1.0.
var noon = geo.FixedClock(time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC))

type stubDirections struct {
	walk  *routing.Walk
	err   error
	block bool
	calls int
}

func (s *stubDirections) Walk(ctx context.Context, req routing.WalkRequest) (*routing.Walk, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.walk, nil
}

type failingStore struct {
	*transit.InMemoryStore
}

func (failingStore) ListSegments(context.Context) ([]transit.Segment, error) {
	return nil, errors.New("connection reset")
}

// scenarioStore is the six-segment corridor on stops 1..7 plus a feeder stop 0
// five kilometres before stop 1 on the same route.
func scenarioStore() (*transit.InMemoryStore, corridor) {
	c := newCorridor(1, 1, 20, scenarioLengths...)

	feeder := transit.Stop{ID: 100, Name: "Depot", Lat: baseLat - 5/kmPerDegree, Lon: baseLon}
	feederSeg := transit.Segment{ID: 1, FromStopID: 100, ToStopID: 1, RouteID: 1, DistanceKm: 5, DefaultSpeedKmh: 20}

	store := transit.NewInMemoryStore()
	store.AddStops(feeder)
	store.AddStops(c.stops...)
	store.AddSegments(feederSeg)
	store.AddSegments(c.segments...)
	store.AddRoute(transit.Route{ID: 1, Number: "138", Name: "Pettah - Homagama"}, append([]int64{100}, c.stopIDs()...)...)

	return store, c
}

func newTestPlanner(store transit.Store, clock geo.Clock, directions planner.DirectionsProvider) *planner.Planner {
	cfg := planner.Config{
		Store:    store,
		Clock:    clock,
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	}
	if directions != nil {
		cfg.Directions = directions
		cfg.DirectionsTimeout = 50 * time.Millisecond
	}
	return planner.NewPlanner(cfg)
}

func TestPlanJourney_Scenario(t *testing.T) {
	store, c := scenarioStore()
	p := newTestPlanner(store, noon, nil)

	from, to := c.stop(1), c.stop(7)
	it, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
	require.NoError(t, err)

	assert.Equal(t, int64(1), it.BoardingStop.ID)
	assert.Equal(t, int64(7), it.AlightingStop.ID)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, it.Path)
	assert.Len(t, it.SegmentIDs, 6)
	assert.Equal(t, []int64{1, 1, 1, 1, 1, 1}, it.RouteIDs)
	assert.InDelta(t, 35.4, it.BusMinutes, 1e-9)
	assert.InDelta(t, 35.4, it.TotalMinutes, 1e-9)
	assert.Equal(t, 1.0, it.TrafficMultiplier)
	assert.Equal(t, time.Time(noon), it.PlannedAt)

	// No directions provider configured.
	require.NotNil(t, it.WalkToStop)
	assert.Equal(t, planner.WalkSourceStraightLine, it.WalkToStop.Source)
	assert.Equal(t, planner.WalkSourceStraightLine, it.WalkFromStop.Source)

	// No bus upstream of stop 1 yet.
	assert.Nil(t, it.NextBus)
	assert.False(t, it.CanCatch)
}

func TestPlanJourney_NextBusAndCatchability(t *testing.T) {
	store, c := scenarioStore()
	store.PutVehicle(transit.Vehicle{ID: 7, RouteID: 1, CurrentStopID: 100, Status: transit.VehicleActive})
	p := newTestPlanner(store, noon, nil)

	from, to := c.stop(1), c.stop(7)
	it, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
	require.NoError(t, err)

	require.NotNil(t, it.NextBus)
	assert.InDelta(t, 15.0, it.NextBus.Minutes, 1e-9)
	assert.Equal(t, "138", it.NextBus.RouteNumber)
	assert.True(t, it.CanCatch)
}

func TestPlanJourney_PeakTraffic(t *testing.T) {
	store, c := scenarioStore()
	peak := geo.FixedClock(time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC))
	p := newTestPlanner(store, peak, nil)

	from, to := c.stop(1), c.stop(7)
	it, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
	require.NoError(t, err)

	assert.Equal(t, 0.7, it.TrafficMultiplier)
	assert.InDelta(t, 35.4*0.7, it.BusMinutes, 1e-9)
}

func TestPlanJourney_UsesServiceAreaTimeZone(t *testing.T) {
	store, c := scenarioStore()
	colombo := time.FixedZone("+0530", 5*3600+30*60)

	// 02:30 UTC is 08:00 in Colombo.
	p := planner.NewPlanner(planner.Config{
		Store:    store,
		Clock:    geo.FixedClock(time.Date(2024, 3, 12, 2, 30, 0, 0, time.UTC)),
		Location: colombo,
		Logger:   zerolog.Nop(),
	})

	from, to := c.stop(1), c.stop(7)
	it, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
	require.NoError(t, err)
	assert.Equal(t, 0.7, it.TrafficMultiplier)
}

func TestPlanJourney_Idempotent(t *testing.T) {
	store, c := scenarioStore()
	store.PutVehicle(transit.Vehicle{ID: 7, RouteID: 1, CurrentStopID: 100, Status: transit.VehicleActive})
	p := newTestPlanner(store, noon, nil)

	origin := routing.Coordinate{Lat: c.stop(2).Lat - 0.2/kmPerDegree, Lon: baseLon + 0.001}
	dest := routing.Coordinate{Lat: c.stop(6).Lat + 0.1/kmPerDegree, Lon: baseLon - 0.001}

	first, err := p.PlanJourney(context.Background(), origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	require.NoError(t, err)
	second, err := p.PlanJourney(context.Background(), origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPlanJourney_DirectionsProviderUsed(t *testing.T) {
	store, c := scenarioStore()
	store.PutVehicle(transit.Vehicle{ID: 7, RouteID: 1, CurrentStopID: 100, Status: transit.VehicleActive})

	directions := &stubDirections{walk: &routing.Walk{
		DistanceMeters:  1400,
		DurationSeconds: 14 * 60,
		Coordinates:     []routing.Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 5, Lon: 6}},
		Steps:           []routing.Step{{Text: "Head north"}},
	}}
	p := newTestPlanner(store, noon, directions)

	from, to := c.stop(1), c.stop(7)
	it, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
	require.NoError(t, err)

	assert.Equal(t, 2, directions.calls)
	assert.Equal(t, planner.WalkSourceProvider, it.WalkToStop.Source)
	assert.Len(t, it.WalkToStop.Coordinates, 3)
	assert.Len(t, it.WalkToStop.Steps, 1)

	// The provider says the walk takes 14 minutes against a 15 minute ETA.
	require.NotNil(t, it.NextBus)
	assert.False(t, it.CanCatch)
}

func TestPlanJourney_SafetyBuffer(t *testing.T) {
	zero, three := 0.0, 3.0

	tests := []struct {
		name   string
		buffer *float64
		want   bool
	}{
		// 14 minute walk against a 15 minute ETA.
		{"default buffer", nil, false},
		{"zero buffer", &zero, true},
		{"three minute buffer", &three, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, c := scenarioStore()
			store.PutVehicle(transit.Vehicle{ID: 7, RouteID: 1, CurrentStopID: 100, Status: transit.VehicleActive})

			p := planner.NewPlanner(planner.Config{
				Store: store,
				Directions: &stubDirections{walk: &routing.Walk{
					DistanceMeters:  1400,
					DurationSeconds: 14 * 60,
				}},
				DirectionsTimeout:   50 * time.Millisecond,
				Clock:               noon,
				Location:            time.UTC,
				Logger:              zerolog.Nop(),
				SafetyBufferMinutes: tt.buffer,
			})

			from, to := c.stop(1), c.stop(7)
			it, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
			require.NoError(t, err)

			require.NotNil(t, it.NextBus)
			assert.InDelta(t, 15.0, it.NextBus.Minutes, 1e-9)
			assert.Equal(t, tt.want, it.CanCatch)
		})
	}
}

func TestPlanJourney_DirectionsFailureFallsBack(t *testing.T) {
	tests := []struct {
		name       string
		directions *stubDirections
	}{
		{"provider error", &stubDirections{err: &routing.Error{Message: "down", Err: routing.ErrProviderUnavailable}}},
		{"provider timeout", &stubDirections{block: true}},
		{"empty response", &stubDirections{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, c := scenarioStore()
			p := newTestPlanner(store, noon, tt.directions)

			from, to := c.stop(1), c.stop(7)
			it, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
			require.NoError(t, err)

			assert.Equal(t, planner.WalkSourceStraightLine, it.WalkToStop.Source)
			assert.Equal(t, planner.WalkSourceStraightLine, it.WalkFromStop.Source)
			assert.Len(t, it.WalkToStop.Coordinates, 2)
			assert.InDelta(t, 35.4, it.TotalMinutes, 1e-9)
		})
	}
}

func TestPlanJourney_InvalidCoordinates(t *testing.T) {
	store, _ := scenarioStore()
	p := newTestPlanner(store, noon, nil)

	_, err := p.PlanJourney(context.Background(), 95, 79.8, 6.9, 79.8)
	assert.ErrorIs(t, err, planner.ErrInvalidCoordinates)

	_, err = p.PlanJourney(context.Background(), 6.9, 79.8, 6.9, -200)
	assert.ErrorIs(t, err, planner.ErrInvalidCoordinates)
}

func TestPlanJourney_NoService(t *testing.T) {
	store, c := scenarioStore()
	p := newTestPlanner(store, noon, nil)
	to := c.stop(7)

	farSouth := baseLat - 40/kmPerDegree
	_, err := p.PlanJourney(context.Background(), farSouth, baseLon, to.Lat, to.Lon)
	assert.ErrorIs(t, err, planner.ErrNoServiceNearOrigin)

	_, err = p.PlanJourney(context.Background(), to.Lat, to.Lon, farSouth, baseLon)
	assert.ErrorIs(t, err, planner.ErrNoServiceNearDestination)
}

func TestPlanJourney_StoreFailure(t *testing.T) {
	store, c := scenarioStore()
	p := newTestPlanner(failingStore{store}, noon, nil)

	from, to := c.stop(1), c.stop(7)
	_, err := p.PlanJourney(context.Background(), from.Lat, from.Lon, to.Lat, to.Lon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotErrorIs(t, err, planner.ErrNoConnectedRoute)
}

func TestNextBusETA(t *testing.T) {
	store, _ := scenarioStore()
	store.PutVehicle(transit.Vehicle{ID: 7, RouteID: 1, CurrentStopID: 100, Status: transit.VehicleActive})
	p := newTestPlanner(store, noon, nil)

	eta, err := p.NextBusETA(context.Background(), 2, nil)
	require.NoError(t, err)
	require.NotNil(t, eta)
	// 5 km + 1 km at 20 km/h
	assert.InDelta(t, 18.0, eta.Minutes, 1e-9)
	assert.Equal(t, 2, eta.StopsAway)

	_, err = p.NextBusETA(context.Background(), 4242, nil)
	assert.ErrorIs(t, err, transit.ErrStopNotFound)

	eta, err = p.NextBusETA(context.Background(), 100, nil)
	require.NoError(t, err)
	assert.Nil(t, eta)
}

func TestNearbyStops(t *testing.T) {
	store, c := scenarioStore()
	p := newTestPlanner(store, noon, nil)

	from := c.stop(3)
	got, err := p.NearbyStops(context.Background(), from.Lat, from.Lon, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)

	_, err = p.NearbyStops(context.Background(), 100, 0, 2)
	assert.ErrorIs(t, err, planner.ErrInvalidCoordinates)
}
