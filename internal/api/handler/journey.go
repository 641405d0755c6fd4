package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/middleware"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/models"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/response"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/journal"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/routing"
)

const (
	maxPlanBodyBytes      = 16 << 10
	defaultPublishTimeout = 2 * time.Second
)

// JourneyPlanner plans walk/bus/walk journeys.
type JourneyPlanner interface {
	PlanJourney(ctx context.Context, originLat, originLon, destLat, destLon float64) (*planner.Itinerary, error)
}

// JourneyHandler handles journey planning endpoints.
type JourneyHandler struct {
	planner        JourneyPlanner
	journal        journal.Publisher
	publishTimeout time.Duration
}

// NewJourneyHandler creates a new JourneyHandler. A nil publisher disables journaling.
func NewJourneyHandler(p JourneyPlanner, publisher journal.Publisher) *JourneyHandler {
	if publisher == nil {
		publisher = journal.NopPublisher{}
	}
	return &JourneyHandler{
		planner:        p,
		journal:        publisher,
		publishTimeout: defaultPublishTimeout,
	}
}

// PlanJourney handles POST /v1/journeys/plan.
func (h *JourneyHandler) PlanJourney(w http.ResponseWriter, r *http.Request) {
	var input models.JourneyPlanRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPlanBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, r, "request body is required", nil)
			return
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrors []models.FieldError
	if input.Origin == nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "origin", Message: "is required", Code: "REQUIRED"})
	}
	if input.Destination == nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "destination", Message: "is required", Code: "REQUIRED"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "origin and destination are required", fieldErrors)
		return
	}

	it, err := h.planner.PlanJourney(r.Context(),
		input.Origin.Lat, input.Origin.Lon,
		input.Destination.Lat, input.Destination.Lon,
	)
	if err != nil {
		writePlannerError(w, r, err)
		return
	}

	h.record(r,
		routing.Coordinate{Lat: input.Origin.Lat, Lon: input.Origin.Lon},
		routing.Coordinate{Lat: input.Destination.Lat, Lon: input.Destination.Lon},
		it,
	)

	w.Header().Set("Cache-Control", "no-store")
	response.JSON(w, r, http.StatusOK, toJourneyResponse(it))
}

// record publishes a journal entry. Journaling never fails the request.
func (h *JourneyHandler) record(r *http.Request, origin, destination routing.Coordinate, it *planner.Itinerary) {
	entry := journal.NewEntry(middleware.GetRequestID(r.Context()), origin, destination, it)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.publishTimeout)
	defer cancel()

	if err := h.journal.Publish(ctx, entry); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("entry_id", entry.ID).Msg("failed to journal planned journey")
	}
}
