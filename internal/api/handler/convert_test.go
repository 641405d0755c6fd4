package handler

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

func TestToJourneyResponse_ProviderWalkReportedOnLeg(t *testing.T) {
	eta := 15.0
	it := &planner.Itinerary{
		BoardingStop:        planner.NearbyStop{Stop: transit.Stop{ID: 1}, DistanceKm: 0.7},
		AlightingStop:       planner.NearbyStop{Stop: transit.Stop{ID: 4}},
		Path:                []int64{1, 2, 3, 4},
		RouteIDs:            []int64{1, 1, 1},
		WalkToStopMinutes:   8.33,
		BusMinutes:          9,
		WalkFromStopMinutes: 0,
		TotalMinutes:        17.33,
		NextBus:             &planner.ETA{StopID: 1, RouteID: 1, VehicleID: 7, StopsAway: 5, Minutes: eta},
		CanCatch:            false,
		WalkToStop: &planner.WalkingLeg{
			DistanceMeters:  1100,
			DurationSeconds: 14 * 60,
			Source:          planner.WalkSourceProvider,
		},
		WalkFromStop: planner.StraightLineWalk(
			routing.Coordinate{Lat: 6.9, Lon: 79.86}, routing.Coordinate{Lat: 6.9, Lon: 79.86}, 1.4),
		BearingToStop:     -math.Pi / 2,
		TrafficMultiplier: 1,
		PlannedAt:         time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC),
	}

	resp := toJourneyResponse(it)

	// Selection figures stay as chosen; the leg carries the provider duration.
	assert.Equal(t, 8.3, resp.WalkToStopMinutes)
	assert.Equal(t, 17.3, resp.TotalMinutes)
	require.NotNil(t, resp.WalkToStop)
	assert.Equal(t, 14.0, resp.WalkToStop.Minutes)
	assert.Equal(t, 840.0, resp.WalkToStop.DurationSeconds)
	assert.Equal(t, "provider", resp.WalkToStop.Source)
	assert.Zero(t, resp.WalkFromStop.Minutes)

	assert.False(t, resp.CanCatch)
	require.NotNil(t, resp.NextBus)
	assert.Equal(t, 15.0, resp.NextBus.ETAMinutes)
	assert.Equal(t, 270.0, resp.BearingToStopDegrees)
	require.NotNil(t, resp.BoardingStop.DistanceKm)
	assert.Equal(t, 0.7, *resp.BoardingStop.DistanceKm)
}
