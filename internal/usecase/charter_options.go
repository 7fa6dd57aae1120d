package usecase

import (
	"context"
	"errors"
	"fmt"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Fleet names by backend plane id
var planesDictionary = map[int64]string{
	36:   "CITATION XLS",
	10:   "CHALLENGER 350",
	5:    "CHALLENGER 605",
	6:    "CHALLENGER_850",
	16:   "GLOBAL_5000_6000",
	7:    "GLOBAL_6000",
	1718: "GLOBAL_7500",
}

const UNKNOWN_PLANE = "Unknown plane"

// PlaneName returns the fleet name of a backend plane id
func PlaneName(id int64) string {
	if name, ok := planesDictionary[id]; ok {
		return name
	}
	return UNKNOWN_PLANE
}

// CharterOptionsService turns backend charter data into options a specialist can offer
type CharterOptionsService struct {
	backend   repository.CharterBackendRepository
	timezones repository.TimezoneRepository
	logger    logger.Logger
}

// NewCharterOptionsService creates a new charter options service.
// timezones may be nil when no airport master data is available.
func NewCharterOptionsService(backend repository.CharterBackendRepository, timezones repository.TimezoneRepository, log logger.Logger) *CharterOptionsService {
	return &CharterOptionsService{
		backend:   backend,
		timezones: timezones,
		logger:    log.With("component", "charter"),
	}
}

// GetMetropolitanArea returns the first flight area around a waypoint
func (s *CharterOptionsService) GetMetropolitanArea(ctx context.Context, waypoint entity.Waypoint) (entity.MetropolitanArea, error) {
	s.logger.Debug("Getting MA", "waypoint", waypoint.Value)

	areas, err := s.backend.SuggestMetropolitanAreas(ctx, waypoint.Location)
	if err != nil {
		return entity.MetropolitanArea{}, err
	}
	if len(areas) == 0 {
		return entity.MetropolitanArea{}, fmt.Errorf("Departure area was not found for %s", waypoint.Value)
	}

	s.logger.Debug("Taking first MA", "id", areas[0].ID, "name", areas[0].Name)
	return areas[0], nil
}

// GetBaseFlightOptions returns the planes that are not blocked between two areas
func (s *CharterOptionsService) GetBaseFlightOptions(ctx context.Context, from, to entity.MetropolitanArea) (*entity.BaseFlightOptions, error) {
	s.logger.Debug("Getting base flight options", "from", from.ID, "to", to.ID)

	response, err := s.backend.GetAvailablePlanes(ctx, from.ID, to.ID)
	if err != nil {
		return nil, err
	}

	planes := make([]entity.Plane, 0, len(response.Planes))
	for _, p := range response.Planes {
		if p.Blocked {
			continue
		}
		planes = append(planes, entity.Plane{
			ID:                       p.ID,
			Name:                     PlaneName(p.ID),
			MaximumPassengersOnBoard: p.Pax,
			Default:                  response.SelectedID != nil && *response.SelectedID == p.ID,
		})
	}
	if len(planes) == 0 {
		return nil, errors.New("No planes available for this route. Please try to adjust from, to, or departure date")
	}

	return &entity.BaseFlightOptions{AvailablePlanes: planes}, nil
}

// GetMetropolitanAreas looks both waypoints up concurrently
func (s *CharterOptionsService) GetMetropolitanAreas(ctx context.Context, from, to entity.Waypoint) (fromMa, toMa entity.MetropolitanArea, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromMa, err = s.GetMetropolitanArea(gctx, from)
		return err
	})
	g.Go(func() error {
		var err error
		toMa, err = s.GetMetropolitanArea(gctx, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return entity.MetropolitanArea{}, entity.MetropolitanArea{}, err
	}
	return fromMa, toMa, nil
}

// GetCharterOptions collects every route the plane can fly between the waypoints on a date
func (s *CharterOptionsService) GetCharterOptions(ctx context.Context, from, to entity.Waypoint, departureDate string, plane entity.Plane) (*entity.CharterOptions, error) {
	date, err := entity.ParseLocalDate(departureDate)
	if err != nil {
		return nil, err
	}

	fromMa, toMa, err := s.GetMetropolitanAreas(ctx, from, to)
	if err != nil {
		return nil, err
	}

	charter, err := s.backend.GetCharterInfo(ctx, plane.ID, fromMa.ID, toMa.ID, departureDate)
	if err != nil {
		return nil, err
	}
	if charter == nil {
		return nil, errors.New("Didn't get any charter data")
	}
	if len(charter.SegmentOptions) == 0 {
		return nil, errors.New("Charter didn't return any itinerary")
	}
	itinerary := charter.SegmentOptions[0]

	codes := make([]string, 0, len(itinerary.Airports.From)+len(itinerary.Airports.To))
	for _, a := range itinerary.Airports.From {
		codes = append(codes, a.Code)
	}
	for _, a := range itinerary.Airports.To {
		codes = append(codes, a.Code)
	}

	airportData, err := s.backend.GetAirportData(ctx, codes)
	if err != nil {
		return nil, err
	}
	airports := make(map[string]entity.AirportData, len(airportData))
	for _, a := range airportData {
		airports[a.Code] = a
	}
	s.fillTimezones(ctx, airports)

	routes := make([]entity.Route, 0, len(itinerary.Airports.From))
	for _, origin := range itinerary.Airports.From {
		route, err := BuildRoute(origin.Code, date, itinerary, airports, s.logger)
		if err != nil {
			return nil, err
		}
		if route != nil {
			routes = append(routes, *route)
		}
	}

	return &entity.CharterOptions{
		FromMa:            fromMa,
		ToMa:              toMa,
		DepartureDate:     departureDate,
		Plane:             plane,
		FlightID:          charter.ID,
		PossibleRoutes:    routes,
		MaximumPassengers: itinerary.Pax.MaxPax,
	}, nil
}

// fillTimezones takes zones from the airport master table where the backend sent none
func (s *CharterOptionsService) fillTimezones(ctx context.Context, airports map[string]entity.AirportData) {
	if s.timezones == nil {
		return
	}

	missing := make([]string, 0)
	for code, a := range airports {
		if a.Timezone == "" {
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return
	}

	zones, err := s.timezones.ListByAirportCodes(ctx, missing)
	if err != nil {
		s.logger.Warn("Failed to load airport timezones", "codes", missing, "error", err)
		return
	}
	for _, code := range missing {
		if tz, ok := zones[code]; ok && tz.TzName != "" {
			a := airports[code]
			a.Timezone = tz.TzName
			airports[code] = a
		}
	}
}
