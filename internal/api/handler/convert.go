package handler

import (
	"math"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/models"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
)

func toStop(s planner.NearbyStop) models.Stop {
	d := math.Round(s.DistanceKm*1000) / 1000
	return models.Stop{
		ID:         s.ID,
		Name:       s.Name,
		Code:       s.Code,
		Address:    s.Address,
		Location:   models.Point{Lat: s.Lat, Lon: s.Lon},
		DistanceKm: &d,
	}
}

func toNextBus(eta *planner.ETA) *models.NextBus {
	if eta == nil {
		return nil
	}
	return &models.NextBus{
		StopID:      eta.StopID,
		RouteID:     eta.RouteID,
		RouteNumber: eta.RouteNumber,
		RouteName:   eta.RouteName,
		VehicleID:   eta.VehicleID,
		StopsAway:   eta.StopsAway,
		ETAMinutes:  models.RoundMinutes(eta.Minutes),
	}
}

func toWalkingLeg(leg *planner.WalkingLeg) *models.WalkingLeg {
	if leg == nil {
		return nil
	}
	out := &models.WalkingLeg{
		DistanceMeters:  math.Round(leg.DistanceMeters),
		DurationSeconds: math.Round(leg.DurationSeconds),
		Minutes:         models.RoundMinutes(leg.Minutes()),
		Source:          string(leg.Source),
	}
	for _, c := range leg.Coordinates {
		out.Geometry = append(out.Geometry, models.Point{Lat: c.Lat, Lon: c.Lon})
	}
	for _, s := range leg.Steps {
		out.Steps = append(out.Steps, models.WalkStep{
			Instruction:    s.Text,
			StreetName:     s.Name,
			DistanceMeters: s.DistanceMeters,
			DurationSecs:   s.DurationSecs,
		})
	}
	return out
}

func toJourneyResponse(it *planner.Itinerary) models.JourneyPlanResponse {
	bearing := math.Mod(it.BearingToStop*180/math.Pi+360, 360)

	return models.JourneyPlanResponse{
		BoardingStop:         toStop(it.BoardingStop),
		AlightingStop:        toStop(it.AlightingStop),
		StopIDs:              it.Path,
		RouteIDs:             it.RouteIDs,
		WalkToStopMinutes:    models.RoundMinutes(it.WalkToStopMinutes),
		BusMinutes:           models.RoundMinutes(it.BusMinutes),
		WalkFromStopMinutes:  models.RoundMinutes(it.WalkFromStopMinutes),
		TotalMinutes:         models.RoundMinutes(it.TotalMinutes),
		NextBus:              toNextBus(it.NextBus),
		CanCatch:             it.CanCatch,
		WalkToStop:           toWalkingLeg(it.WalkToStop),
		WalkFromStop:         toWalkingLeg(it.WalkFromStop),
		BearingToStopDegrees: math.Round(bearing*10) / 10,
		TrafficMultiplier:    it.TrafficMultiplier,
		PlannedAt:            models.Timestamp(it.PlannedAt),
	}
}
