package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/models"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/response"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// StatusClientClosedRequest is recorded when the caller cancels before a response is written.
const StatusClientClosedRequest = 499

// writePlannerError maps planner and store errors to problem responses.
func writePlannerError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	switch {
	case errors.Is(err, planner.ErrInvalidCoordinates):
		response.BadRequest(w, r, err.Error(), nil)

	case errors.Is(err, planner.ErrNoServiceNearOrigin):
		response.Unprocessable(w, r, models.ProblemTypeNoServiceOrigin,
			"No bus service near origin", err.Error())

	case errors.Is(err, planner.ErrNoServiceNearDestination):
		response.Unprocessable(w, r, models.ProblemTypeNoServiceDestination,
			"No bus service near destination", err.Error())

	case errors.Is(err, planner.ErrNoConnectedRoute):
		response.Unprocessable(w, r, models.ProblemTypeNoConnectedRoute,
			"No connected route", err.Error())

	case errors.Is(err, planner.ErrPartialSearchFailure):
		logger.Error().Err(err).Msg("route search failed on network data")
		response.Unprocessable(w, r, models.ProblemTypeRouteSearchFailed,
			"Route search failed", "the route search could not be completed for some stop pairs")

	case errors.Is(err, transit.ErrStopNotFound):
		response.NotFound(w, r, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		logger.Error().Err(err).Msg("planner timed out")
		response.ServiceUnavailable(w, r, "the transit network could not be read in time")

	case errors.Is(err, context.Canceled):
		// Client went away; the status only reaches logs and metrics.
		logger.Debug().Err(err).Msg("request canceled")
		w.WriteHeader(StatusClientClosedRequest)

	default:
		logger.Error().Err(err).Msg("planner request failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
