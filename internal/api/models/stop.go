package models

// Stop is a bus stop, optionally annotated with its distance from a query point.
type Stop struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Code       string   `json:"code,omitempty"`
	Address    string   `json:"address,omitempty"`
	Location   Point    `json:"location"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// NearbyStopsResponse is the body of GET /v1/stops/nearby.
type NearbyStopsResponse struct {
	Items []Stop            `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// PagedResponseMeta contains listing metadata.
type PagedResponseMeta struct {
	Limit int `json:"limit"`
}
