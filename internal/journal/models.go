// Package journal records planned journeys. The API publishes an Entry for
// every successful plan and the worker persists it.
package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
)

// Repository errors.
var (
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrInvalidEntry  = errors.New("invalid journal entry")
)

// Entry is one planned journey.
type Entry struct {
	ID          string             `json:"id"`
	RequestID   string             `json:"request_id,omitempty"`
	Origin      routing.Coordinate `json:"origin"`
	Destination routing.Coordinate `json:"destination"`

	BoardingStopID  int64   `json:"boarding_stop_id"`
	AlightingStopID int64   `json:"alighting_stop_id"`
	RouteIDs        []int64 `json:"route_ids"`

	WalkToStopMinutes   float64 `json:"walk_to_stop_minutes"`
	BusMinutes          float64 `json:"bus_minutes"`
	WalkFromStopMinutes float64 `json:"walk_from_stop_minutes"`
	TotalMinutes        float64 `json:"total_minutes"`

	// NextBusMinutes is nil when no upcoming bus was found.
	NextBusMinutes *float64 `json:"next_bus_minutes,omitempty"`
	CanCatch       bool     `json:"can_catch"`

	TrafficMultiplier float64   `json:"traffic_multiplier"`
	PlannedAt         time.Time `json:"planned_at"`
}

// NewEntry builds a journal entry from a computed itinerary.
func NewEntry(requestID string, origin, destination routing.Coordinate, it *planner.Itinerary) *Entry {
	e := &Entry{
		ID:                  "jrn_" + uuid.New().String()[:22],
		RequestID:           requestID,
		Origin:              origin,
		Destination:         destination,
		BoardingStopID:      it.BoardingStop.ID,
		AlightingStopID:     it.AlightingStop.ID,
		RouteIDs:            append([]int64(nil), it.RouteIDs...),
		WalkToStopMinutes:   it.WalkToStopMinutes,
		BusMinutes:          it.BusMinutes,
		WalkFromStopMinutes: it.WalkFromStopMinutes,
		TotalMinutes:        it.TotalMinutes,
		CanCatch:            it.CanCatch,
		TrafficMultiplier:   it.TrafficMultiplier,
		PlannedAt:           it.PlannedAt,
	}
	if it.NextBus != nil {
		m := it.NextBus.Minutes
		e.NextBusMinutes = &m
	}
	return e
}

// Validate checks that an entry decoded from a message can be stored.
func (e *Entry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	case e.BoardingStopID == 0 || e.AlightingStopID == 0:
		return fmt.Errorf("%w: missing stops", ErrInvalidEntry)
	case e.PlannedAt.IsZero():
		return fmt.Errorf("%w: missing planned_at", ErrInvalidEntry)
	}
	return nil
}
