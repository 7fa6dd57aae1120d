package repository

import (
	"context"

	"charter-concierge/internal/domain/entity"
)

// LatLng is a maps coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceGeometry wraps the candidate location the way the maps API reports it
type PlaceGeometry struct {
	Location LatLng `json:"location"`
}

// PlaceCandidate is a place found by a free text query
type PlaceCandidate struct {
	Name             string        `json:"name"`
	Geometry         PlaceGeometry `json:"geometry"`
	FormattedAddress string        `json:"formatted_address"`
	Types            []string      `json:"types"`
}

// GeocodeResult is an address found for a point
type GeocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
}

// PlacesRepository resolves free text and coordinates to places
type PlacesRepository interface {
	FindPlaces(ctx context.Context, input string) ([]PlaceCandidate, error)
	ReverseGeocode(ctx context.Context, location entity.Location, resultTypes []string) ([]GeocodeResult, error)
}
