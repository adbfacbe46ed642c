package domain

import "time"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// MatchParams are the matchmaking inputs: the requesting user plus
// optional hard filters. Absent filters impose no constraint.
type MatchParams struct {
	UserID        string     `json:"user_id"`
	CategoryID    *string    `json:"category_id"`
	Origin        *GeoPoint  `json:"origin"`
	MaxDistanceKm *float64   `json:"max_distance_km" validate:"omitempty,gt=0"`
	PriceMin      *float64   `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax      *float64   `json:"price_max" validate:"omitempty,gte=0"`
	QuantityMin   *float64   `json:"quantity_min" validate:"omitempty,gte=0"`
	QuantityMax   *float64   `json:"quantity_max" validate:"omitempty,gte=0"`
	BusinessType  *string    `json:"business_type" validate:"omitempty,oneof=business financial"`
	CreatedAfter  *time.Time `json:"created_after"`
	CreatedBefore *time.Time `json:"created_before"`
}

// MatchResult is a scored candidate. Derived per call, never persisted.
// DistanceKm is set only when both the origin and the listing carry
// coordinates. TimeRelevance is the 0..1 recency fraction.
type MatchResult struct {
	Listing       Listing  `json:"listing"`
	Score         float64  `json:"score"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
	TimeRelevance *float64 `json:"time_relevance,omitempty"`
}
