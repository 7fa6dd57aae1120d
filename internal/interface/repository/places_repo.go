package repository

import (
	"context"
	"fmt"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/pkg/logger"

	"googlemaps.github.io/maps"
)

// MapsPlacesRepository resolves places with the Google Maps web services
type MapsPlacesRepository struct {
	client *maps.Client
	logger logger.Logger
}

// NewMapsPlacesRepository creates a places repository.
// baseURL overrides the maps endpoint and may be empty.
func NewMapsPlacesRepository(apiKey, baseURL string, logger logger.Logger) (repository.PlacesRepository, error) {
	options := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		options = append(options, maps.WithBaseURL(baseURL))
	}

	client, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &MapsPlacesRepository{
		client: client,
		logger: logger,
	}, nil
}

// FindPlaces finds places matching free text
func (r *MapsPlacesRepository) FindPlaces(ctx context.Context, input string) ([]repository.PlaceCandidate, error) {
	r.logger.Debug("Validating place", "input", input)

	response, err := r.client.FindPlaceFromText(ctx, &maps.FindPlaceFromTextRequest{
		Input:     input,
		InputType: maps.FindPlaceFromTextInputTypeTextQuery,
		Fields: []maps.PlaceSearchFieldMask{
			maps.PlaceSearchFieldMaskName,
			maps.PlaceSearchFieldMaskGeometry,
			maps.PlaceSearchFieldMaskFormattedAddress,
			maps.PlaceSearchFieldMaskTypes,
		},
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]repository.PlaceCandidate, 0, len(response.Candidates))
	for _, c := range response.Candidates {
		candidates = append(candidates, repository.PlaceCandidate{
			Name: c.Name,
			Geometry: repository.PlaceGeometry{
				Location: repository.LatLng{
					Lat: c.Geometry.Location.Lat,
					Lng: c.Geometry.Location.Lng,
				},
			},
			FormattedAddress: c.FormattedAddress,
			Types:            c.Types,
		})
	}
	return candidates, nil
}

// ReverseGeocode finds approximate addresses of the given types for a point
func (r *MapsPlacesRepository) ReverseGeocode(ctx context.Context, location entity.Location, resultTypes []string) ([]repository.GeocodeResult, error) {
	r.logger.Debug("Reverse geocoding", "latitude", location.Latitude, "longitude", location.Longitude)

	results, err := r.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:       &maps.LatLng{Lat: location.Latitude, Lng: location.Longitude},
		ResultType:   resultTypes,
		LocationType: []maps.GeocodeAccuracy{maps.GeocodeAccuracyApproximate},
	})
	if err != nil {
		return nil, err
	}

	geocoded := make([]repository.GeocodeResult, 0, len(results))
	for _, it := range results {
		geocoded = append(geocoded, repository.GeocodeResult{
			FormattedAddress: it.FormattedAddress,
			Types:            it.Types,
		})
	}
	return geocoded, nil
}
