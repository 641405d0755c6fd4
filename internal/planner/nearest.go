package planner

import (
	"sort"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/geo"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// Default stop search policy.
const (
	DefaultNearestStopLimit = 3
	DefaultSearchRadiusKm   = 20.0
)

// NearestStops returns up to limit stops within radiusKm of the point, nearest first.
// Equal distances are ordered by stop ID. An empty result means no service near
// the point; it is not an error.
func NearestStops(stops []transit.Stop, lat, lon float64, limit int, radiusKm float64) []NearbyStop {
	if limit <= 0 {
		return nil
	}

	var nearby []NearbyStop
	for _, st := range stops {
		d := geo.DistanceKm(lat, lon, st.Lat, st.Lon)
		if d > radiusKm {
			continue
		}
		nearby = append(nearby, NearbyStop{Stop: st, DistanceKm: d})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})

	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby
}
