package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/pkg/logger"
)

// Backend endpoints
const (
	SUGGEST_AIRPORT_ENDPOINT  = "/www/suggestAirport"
	AVAILABLE_PLANES_ENDPOINT = "/getAvailablePlanes"
	CHARTER_INFO_ENDPOINT     = "/getCharterInfo"
	AIRPORT_DATA_ENDPOINT     = "/www/getData"
)

// HTTPCharterBackendRepository calls the charter backend over JSON POST
type HTTPCharterBackendRepository struct {
	logger  logger.Logger
	baseURL string
	client  *http.Client
}

// NewHTTPCharterBackendRepository creates a backend client.
// client carries authentication, e.g. an oauth2 client-credentials client; nil means a plain client.
func NewHTTPCharterBackendRepository(baseURL string, client *http.Client, logger logger.Logger) repository.CharterBackendRepository {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPCharterBackendRepository{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type areaPair struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// SuggestMetropolitanAreas finds the flight areas around a point
func (r *HTTPCharterBackendRepository) SuggestMetropolitanAreas(ctx context.Context, location entity.Location) ([]entity.MetropolitanArea, error) {
	request := struct {
		Geo geoPoint `json:"geo"`
	}{
		Geo: geoPoint{Lat: location.Latitude, Lon: location.Longitude},
	}

	var response struct {
		Ma []struct {
			MetropolitanAreaID int64  `json:"metropolitan_area_id"`
			Name               string `json:"name"`
			Region             string `json:"region"`
		} `json:"ma"`
	}
	if err := r.post(ctx, SUGGEST_AIRPORT_ENDPOINT, request, &response); err != nil {
		return nil, err
	}

	areas := make([]entity.MetropolitanArea, 0, len(response.Ma))
	for _, ma := range response.Ma {
		areas = append(areas, entity.MetropolitanArea{
			ID:     ma.MetropolitanAreaID,
			Name:   ma.Name,
			Region: ma.Region,
		})
	}
	return areas, nil
}

// GetAvailablePlanes returns the fleet for a pair of areas
func (r *HTTPCharterBackendRepository) GetAvailablePlanes(ctx context.Context, fromMa, toMa int64) (*entity.AvailablePlanes, error) {
	request := struct {
		Areas []areaPair `json:"areas"`
	}{
		Areas: []areaPair{{From: fromMa, To: toMa}},
	}

	var response entity.AvailablePlanes
	if err := r.post(ctx, AVAILABLE_PLANES_ENDPOINT, request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetCharterInfo returns the charter for a plane, a pair of areas and a date.
// A nil charter means the backend had nothing to offer.
func (r *HTTPCharterBackendRepository) GetCharterInfo(ctx context.Context, planeID, fromMa, toMa int64, date string) (*entity.Charter, error) {
	request := struct {
		PlaneIDs      []int64    `json:"planeIds"`
		Areas         []areaPair `json:"areas"`
		SelectedDates []string   `json:"selectedDates"`
	}{
		PlaneIDs:      []int64{planeID},
		Areas:         []areaPair{{From: fromMa, To: toMa}},
		SelectedDates: []string{date},
	}

	var response struct {
		Charter *entity.Charter `json:"charter"`
	}
	if err := r.post(ctx, CHARTER_INFO_ENDPOINT, request, &response); err != nil {
		return nil, err
	}
	return response.Charter, nil
}

// GetAirportData returns master data for airport codes
func (r *HTTPCharterBackendRepository) GetAirportData(ctx context.Context, codes []string) ([]entity.AirportData, error) {
	request := struct {
		Data []string `json:"data"`
	}{
		Data: codes,
	}

	var response struct {
		Ap []entity.AirportData `json:"ap"`
	}
	if err := r.post(ctx, AIRPORT_DATA_ENDPOINT, request, &response); err != nil {
		return nil, err
	}
	return response.Ap, nil
}

func (r *HTTPCharterBackendRepository) post(ctx context.Context, endpoint string, request, response interface{}) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	r.logger.Debug("Calling backend", "endpoint", endpoint, "request", string(jsonData))

	url := r.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("backend %s returned status %d: %v", endpoint, resp.StatusCode, errorBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// UnimplementedCharterBackend stands in when no backend is configured.
// Every call fails with a permanent unimplemented fault.
type UnimplementedCharterBackend struct {
	logger logger.Logger
}

// NewUnimplementedCharterBackend creates the placeholder backend
func NewUnimplementedCharterBackend(logger logger.Logger) repository.CharterBackendRepository {
	return &UnimplementedCharterBackend{logger: logger}
}

func (u *UnimplementedCharterBackend) fail(endpoint string) error {
	u.logger.Debug("Calling backend", "endpoint", endpoint)
	return entity.NewChatError(entity.ErrCodeUnimplemented, true, "Proprietary backend service not implemented")
}

func (u *UnimplementedCharterBackend) SuggestMetropolitanAreas(_ context.Context, _ entity.Location) ([]entity.MetropolitanArea, error) {
	return nil, u.fail(SUGGEST_AIRPORT_ENDPOINT)
}

func (u *UnimplementedCharterBackend) GetAvailablePlanes(_ context.Context, _, _ int64) (*entity.AvailablePlanes, error) {
	return nil, u.fail(AVAILABLE_PLANES_ENDPOINT)
}

func (u *UnimplementedCharterBackend) GetCharterInfo(_ context.Context, _, _, _ int64, _ string) (*entity.Charter, error) {
	return nil, u.fail(CHARTER_INFO_ENDPOINT)
}

func (u *UnimplementedCharterBackend) GetAirportData(_ context.Context, _ []string) ([]entity.AirportData, error) {
	return nil, u.fail(AIRPORT_DATA_ENDPOINT)
}
