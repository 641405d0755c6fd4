package transit

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store.
// This is intended for tests and local demos. Production should use PostgresStore.
type InMemoryStore struct {
	mu         sync.RWMutex
	stops      map[int64]Stop
	segments   []Segment
	routes     map[int64]Route
	routeStops map[int64][]RouteStop
	vehicles   map[int64]Vehicle
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		stops:      make(map[int64]Stop),
		routes:     make(map[int64]Route),
		routeStops: make(map[int64][]RouteStop),
		vehicles:   make(map[int64]Vehicle),
	}
}

// AddStops inserts or replaces stops.
func (s *InMemoryStore) AddStops(stops ...Stop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range stops {
		s.stops[st.ID] = st
	}
}

// AddSegments appends segments.
func (s *InMemoryStore) AddSegments(segments ...Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, segments...)
}

// AddRoute inserts or replaces a route together with its stop sequence.
// The sequence is given in travel order; StopOrder is assigned 1..n.
func (s *InMemoryStore) AddRoute(route Route, stopIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes[route.ID] = route
	seq := make([]RouteStop, 0, len(stopIDs))
	for i, id := range stopIDs {
		seq = append(seq, RouteStop{RouteID: route.ID, StopID: id, StopOrder: i + 1})
	}
	s.routeStops[route.ID] = seq
}

// PutVehicle inserts or replaces a vehicle snapshot.
func (s *InMemoryStore) PutVehicle(v Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
}

// ListStops returns all stops ordered by ID.
func (s *InMemoryStore) ListStops(_ context.Context) ([]Stop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stops := make([]Stop, 0, len(s.stops))
	for _, st := range s.stops {
		stops = append(stops, st)
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].ID < stops[j].ID })
	return stops, nil
}

// GetStop retrieves a stop by ID.
func (s *InMemoryStore) GetStop(_ context.Context, stopID int64) (*Stop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stops[stopID]
	if !ok {
		return nil, ErrStopNotFound
	}
	return &st, nil
}

// ListSegments returns a copy of all segments in insertion order.
func (s *InMemoryStore) ListSegments(_ context.Context) ([]Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segments := make([]Segment, len(s.segments))
	copy(segments, s.segments)
	return segments, nil
}

// GetRoute retrieves a route by ID.
func (s *InMemoryStore) GetRoute(_ context.Context, routeID int64) (*Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.routes[routeID]
	if !ok {
		return nil, ErrRouteNotFound
	}
	return &r, nil
}

// RouteStops returns the ordered stop sequence of a route.
func (s *InMemoryStore) RouteStops(_ context.Context, routeID int64) ([]RouteStop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := make([]RouteStop, len(s.routeStops[routeID]))
	copy(seq, s.routeStops[routeID])
	return seq, nil
}

// RoutesForStop returns the position of the stop on every route serving it.
func (s *InMemoryStore) RoutesForStop(_ context.Context, stopID int64) ([]RouteStop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []RouteStop
	for _, seq := range s.routeStops {
		for _, rs := range seq {
			if rs.StopID == stopID {
				result = append(result, rs)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RouteID < result[j].RouteID })
	return result, nil
}

// ActiveVehicles returns active vehicles on a route ordered by ID.
func (s *InMemoryStore) ActiveVehicles(_ context.Context, routeID int64) ([]Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Vehicle
	for _, v := range s.vehicles {
		if v.RouteID == routeID && v.IsActive() {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Ensure InMemoryStore implements Store interface.
var _ Store = (*InMemoryStore)(nil)
