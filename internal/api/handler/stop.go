package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/models"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/response"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
)

// StopService answers stop-level queries.
type StopService interface {
	NearbyStops(ctx context.Context, lat, lon float64, limit int) ([]planner.NearbyStop, error)
	NextBusETA(ctx context.Context, stopID int64, routeID *int64) (*planner.ETA, error)
}

// StopHandler handles stop endpoints.
type StopHandler struct {
	stops StopService
}

// NewStopHandler creates a new StopHandler.
func NewStopHandler(stops StopService) *StopHandler {
	return &StopHandler{stops: stops}
}

// NearbyStops handles GET /v1/stops/nearby?lat=&lon=&limit=.
func (h *StopHandler) NearbyStops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var fieldErrors []models.FieldError
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "must be a number", Code: "INVALID"})
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "must be a number", Code: "INVALID"})
	}
	limit := planner.DefaultNearbyListing
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > planner.MaxNearbyStopsLimit {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   "limit",
				Message: "must be between 1 and " + strconv.Itoa(planner.MaxNearbyStopsLimit),
				Code:    "OUT_OF_RANGE",
			})
		}
		limit = n
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	stops, err := h.stops.NearbyStops(r.Context(), lat, lon, limit)
	if err != nil {
		writePlannerError(w, r, err)
		return
	}

	items := make([]models.Stop, 0, len(stops))
	for _, s := range stops {
		items = append(items, toStop(s))
	}

	response.JSON(w, r, http.StatusOK, models.NearbyStopsResponse{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: limit},
	})
}

// NextBus handles GET /v1/stops/{stopId}/next-bus[?routeId=].
func (h *StopHandler) NextBus(w http.ResponseWriter, r *http.Request) {
	stopID, err := strconv.ParseInt(chi.URLParam(r, "stopId"), 10, 64)
	if err != nil || stopID <= 0 {
		response.BadRequest(w, r, "stopId must be a positive integer", []models.FieldError{
			{Field: "stopId", Message: "must be a positive integer", Code: "INVALID"},
		})
		return
	}

	var routeID *int64
	if v := r.URL.Query().Get("routeId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(w, r, "routeId must be a positive integer", []models.FieldError{
				{Field: "routeId", Message: "must be a positive integer", Code: "INVALID"},
			})
			return
		}
		routeID = &id
	}

	eta, err := h.stops.NextBusETA(r.Context(), stopID, routeID)
	if err != nil {
		writePlannerError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	response.JSON(w, r, http.StatusOK, models.NextBusResponse{
		Upcoming: eta != nil,
		NextBus:  toNextBus(eta),
	})
}
