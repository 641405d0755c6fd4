package planner_test

import (
	"math"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/geo"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// kmPerDegree is the length of one degree of latitude on the haversine sphere.
var kmPerDegree = geo.EarthRadiusKm * math.Pi / 180

const (
	baseLat = 6.90
	baseLon = 79.86
)

// corridor lays stops out due north of (baseLat, baseLon) so that the
// straight-line distance between consecutive stops equals the segment length.
type corridor struct {
	stops    []transit.Stop
	segments []transit.Segment
}

// newCorridor builds stops firstID, firstID+1, ... joined by forward segments
// of the given lengths on routeID.
func newCorridor(routeID, firstID int64, speedKmh float64, lengths ...float64) corridor {
	var c corridor
	cum := 0.0
	id := firstID
	c.stops = append(c.stops, transit.Stop{ID: id, Name: "stop", Lat: baseLat, Lon: baseLon})
	for i, km := range lengths {
		cum += km
		next := id + 1
		c.stops = append(c.stops, transit.Stop{ID: next, Name: "stop", Lat: baseLat + cum/kmPerDegree, Lon: baseLon})
		c.segments = append(c.segments, transit.Segment{
			ID:              routeID*1000 + int64(i) + 1,
			FromStopID:      id,
			ToStopID:        next,
			RouteID:         routeID,
			DistanceKm:      km,
			DefaultSpeedKmh: speedKmh,
			SequenceOrder:   i + 1,
		})
		id = next
	}
	return c
}

func (c corridor) stopIDs() []int64 {
	ids := make([]int64, len(c.stops))
	for i, s := range c.stops {
		ids[i] = s.ID
	}
	return ids
}

func (c corridor) stop(id int64) transit.Stop {
	for _, s := range c.stops {
		if s.ID == id {
			return s
		}
	}
	panic("unknown stop")
}

// scenarioLengths is a six-segment corridor totalling 11.8 km.
var scenarioLengths = []float64{1.0, 1.8, 2.5, 2.1, 2.0, 2.4}
