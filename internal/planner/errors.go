package planner

import (
	"errors"
	"fmt"
)

// Sentinel errors for planning operations.
var (
	// ErrInvalidCoordinates indicates a latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrNoServiceNearOrigin indicates no stop lies within the search radius of the origin.
	ErrNoServiceNearOrigin = errors.New("no bus service near origin")
	// ErrNoServiceNearDestination indicates no stop lies within the search radius of the destination.
	ErrNoServiceNearDestination = errors.New("no bus service near destination")
	// ErrNoConnectedRoute indicates stops exist near both endpoints but no stop pair is connected.
	ErrNoConnectedRoute = errors.New("no connected route between origin and destination")
	// ErrPartialSearchFailure indicates stop pairs failed for reasons other than disconnection,
	// typically malformed segment data.
	ErrPartialSearchFailure = errors.New("route search failed for some stop pairs")
	// ErrUpstreamUnavailable indicates the walking directions provider failed.
	// It is recovered with a straight-line estimate and never returned by the Planner.
	ErrUpstreamUnavailable = errors.New("walking directions provider unavailable")
	// ErrMalformedSegment indicates a segment whose travel time is not a finite, non-negative number.
	ErrMalformedSegment = errors.New("malformed segment")
)

// SearchError describes why the stop-pair search produced no itinerary.
type SearchError struct {
	Combinations int   // Stop pairs evaluated
	Disconnected int   // Pairs with no boardable path
	Errored      int   // Pairs whose search failed
	FirstCause   error // First search failure, if any
	Err          error // ErrNoConnectedRoute or ErrPartialSearchFailure
}

func (e *SearchError) Error() string {
	msg := fmt.Sprintf("%s (%d combinations, %d disconnected, %d errored)",
		e.Err.Error(), e.Combinations, e.Disconnected, e.Errored)
	if e.FirstCause != nil {
		msg += ": " + e.FirstCause.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// SegmentError identifies the segment that made a search fail.
type SegmentError struct {
	SegmentID  int64
	RouteID    int64
	FromStopID int64
	ToStopID   int64
	Reason     string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d (route %d, %d->%d): %s",
		e.SegmentID, e.RouteID, e.FromStopID, e.ToStopID, e.Reason)
}

func (e *SegmentError) Unwrap() error {
	return ErrMalformedSegment
}
