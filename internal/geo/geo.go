// Package geo provides the geographic and time-of-day primitives used by the
// journey planner.
//
// All distance calculations use the haversine formula on WGS-84 coordinates.
package geo

import (
	"math"
	"time"
)

// EarthRadiusKm is the mean radius of Earth in kilometers.
const EarthRadiusKm = 6371.0

// Traffic multipliers applied to scheduled segment travel time.
const (
	PeakMultiplier    = 0.7
	NightMultiplier   = 1.2
	OffPeakMultiplier = 1.0
)

// DistanceKm returns the great-circle distance between two points in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Bearing returns the initial forward azimuth from the first point to the
// second, in radians in the range (-π, π]. Zero is due north.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dLon := degToRad(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	return math.Atan2(y, x)
}

// TrafficMultiplier returns the scalar applied to segment travel time for the
// hour of day of t, evaluated in t's location.
//
// Peak windows are 07:00-09:00 and 17:00-19:00, late night is 23:00-06:00.
// All windows are end-exclusive.
func TrafficMultiplier(t time.Time) float64 {
	h := t.Hour()
	switch {
	case (h >= 7 && h < 9) || (h >= 17 && h < 19):
		return PeakMultiplier
	case h >= 23 || h < 6:
		return NightMultiplier
	default:
		return OffPeakMultiplier
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
