package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/pkg/logger"
)

// DateWindow bounds bookable departures in departure-local wall clock
type DateWindow struct {
	Min entity.LocalDateTime
	Max entity.LocalDateTime
}

// NewDateWindow parses the charter date wrapper
func NewDateWindow(wrapper entity.CharterDateWrapper) (DateWindow, error) {
	minDate, err := entity.ParseLocalDateTime(wrapper.DateMin)
	if err != nil {
		return DateWindow{}, fmt.Errorf("failed to parse dateMin: %w", err)
	}
	maxDate, err := entity.ParseLocalDateTime(wrapper.DateMax)
	if err != nil {
		return DateWindow{}, fmt.Errorf("failed to parse dateMax: %w", err)
	}
	return DateWindow{Min: minDate, Max: maxDate}, nil
}

// HoursToInterval turns an airport working window into an interval in the airport zone
func HoursToInterval(hours entity.OpeningHours, zone *time.Location) (entity.Interval, error) {
	open, err := entity.ParseLocalDateTime(hours.Open)
	if err != nil {
		return entity.Interval{}, err
	}
	closing, err := entity.ParseLocalDateTime(hours.Close)
	if err != nil {
		return entity.Interval{}, err
	}
	return entity.NewInterval(open, closing, zone), nil
}

func hoursToIntervals(hours []entity.OpeningHours, zone *time.Location) ([]entity.Interval, error) {
	result := make([]entity.Interval, 0, len(hours))
	for _, h := range hours {
		interval, err := HoursToInterval(h, zone)
		if err != nil {
			return nil, err
		}
		result = append(result, interval)
	}
	return result, nil
}

// Reconcile returns the departure windows from which a flight of flightTimeMinutes lands while the
// arrival airport is open. Results are in the departure zone, ordered by start.
func Reconcile(
	departureDate entity.LocalDate,
	departureHours []entity.OpeningHours,
	arrivalHours []entity.OpeningHours,
	flightTimeMinutes int,
	departureZone *time.Location,
	arrivalZone *time.Location,
) ([]entity.Interval, error) {
	departures, err := hoursToIntervals(departureHours, departureZone)
	if err != nil {
		return nil, fmt.Errorf("invalid departure hours: %w", err)
	}
	arrivals, err := hoursToIntervals(arrivalHours, arrivalZone)
	if err != nil {
		return nil, fmt.Errorf("invalid arrival hours: %w", err)
	}

	for _, arrival := range arrivals {
		if arrival.IsFullDay() {
			return departures, nil
		}
	}

	result := make([]entity.Interval, 0)
	for _, departure := range departures {
		if !departure.Start.Date().Equal(departureDate) || !departure.End.Date().Equal(departureDate) {
			continue
		}
		for _, arrival := range arrivals {
			result = append(result, CalculateAirportDeparture(departure, arrival, flightTimeMinutes)...)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})
	return result, nil
}

// CalculateAirportDeparture narrows one departure window to the part that lands inside one arrival window.
// The departure window itself is returned when nothing narrower fits.
func CalculateAirportDeparture(departure, arrival entity.Interval, flightTimeMinutes int) []entity.Interval {
	if arrival.IsFullDay() {
		return []entity.Interval{departure}
	}

	expected := departure.PlusMinutes(flightTimeMinutes).ToZone(arrival.Zone)
	openAtArrival := expected.Start
	closeAtArrival := expected.End

	maxOpen := arrival.Start
	if openAtArrival.After(arrival.Start) {
		maxOpen = openAtArrival
	}
	minClose := arrival.End
	if closeAtArrival.Before(arrival.End) {
		minClose = closeAtArrival
	}

	result := make([]entity.Interval, 0, 2)

	if openAtArrival.Date().Equal(closeAtArrival.Date()) {
		closedBeforeOpened := !closeAtArrival.After(arrival.Start)
		openedAfterClosed := !openAtArrival.Before(arrival.End)
		if !closedBeforeOpened && !openedAfterClosed {
			overlap := entity.NewInterval(maxOpen, minClose, arrival.Zone)
			result = append(result, overlap.MinusMinutes(flightTimeMinutes).ToZone(departure.Zone))
		}
	} else {
		// Expected arrival crosses midnight: try the overlap itself and the overlap re-anchored
		// to the arrival opening time on the landing date.
		i1 := entity.NewInterval(maxOpen, minClose, arrival.Zone).
			MinusMinutes(flightTimeMinutes).
			ToZone(departure.Zone)
		i2 := entity.NewInterval(arrival.Start.WithDate(closeAtArrival.Date()), minClose, arrival.Zone).
			MinusMinutes(flightTimeMinutes).
			ToZone(departure.Zone)

		if i1.IsValid() {
			result = append(result, i1)
		}
		if i2.IsValid() && !i1.Equals(i2) {
			result = append(result, i2)
		}
	}

	if len(result) == 0 {
		return []entity.Interval{departure}
	}
	return result
}

// CoerceIntervals clamps intervals to the bookable window and drops those left empty
func CoerceIntervals(intervals []entity.Interval, window DateWindow) []entity.Interval {
	result := make([]entity.Interval, 0, len(intervals))
	for _, it := range intervals {
		start := window.Min
		if it.Start.After(window.Min) {
			start = it.Start
		}
		end := window.Max
		if it.End.Before(window.Max) {
			end = it.End
		}
		coerced := entity.NewInterval(start, end, it.Zone)
		if coerced.IsValid() {
			result = append(result, coerced)
		}
	}
	return result
}

// BuildRoute collects every destination reachable from fromCode on departureDate.
// A nil route means no destination survived reconciliation.
func BuildRoute(
	fromCode string,
	departureDate entity.LocalDate,
	itinerary entity.CharterItinerary,
	airports map[string]entity.AirportData,
	log logger.Logger,
) (*entity.Route, error) {
	fromData, hasData := airports[fromCode]
	fromAirport, hasItinerary := findItineraryAirport(itinerary.Airports.From, fromCode)
	if !hasData || !hasItinerary {
		return nil, fmt.Errorf("Airport %s was not found in airport data", fromCode)
	}

	window, err := NewDateWindow(itinerary.DateWrapper)
	if err != nil {
		return nil, err
	}

	destinations := make([]entity.RouteDestination, 0, len(itinerary.Airports.To))
	for _, to := range itinerary.Airports.To {
		toData, ok := airports[to.Code]
		if !ok {
			log.Warn("No airport data for:", "code", to.Code)
			continue
		}
		eft, ok := itinerary.Airports.FlightTimes[fromCode+"-"+to.Code]
		if !ok {
			log.Warn(fmt.Sprintf("No EFT for %s-%s", fromCode, to.Code))
			continue
		}
		eftMinutes := int(math.Round(eft * 60.0))
		departureZone := entity.LoadZone(fromData.Timezone)
		arrivalZone := entity.LoadZone(toData.Timezone)

		departures, err := Reconcile(departureDate, fromAirport.Hours2, to.Hours2, eftMinutes, departureZone, arrivalZone)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile %s-%s: %w", fromCode, to.Code, err)
		}
		departures = CoerceIntervals(departures, window)
		if len(departures) == 0 {
			log.Debug(fmt.Sprintf("No routes for %s-%s", fromCode, to.Code))
			continue
		}

		schedules := make([]entity.Schedule, 0, len(departures))
		for _, it := range departures {
			schedules = append(schedules, intervalToSchedule(it, eftMinutes, arrivalZone))
		}
		destinations = append(destinations, entity.RouteDestination{
			To:                entity.NewAirport(toData),
			FlightTimeMinutes: eftMinutes,
			ScheduleOptions:   schedules,
		})
	}

	if len(destinations) == 0 {
		return nil, nil
	}

	return &entity.Route{
		From:         entity.NewAirport(fromData),
		Destinations: destinations,
	}, nil
}

func findItineraryAirport(airports []entity.ItineraryAirport, code string) (entity.ItineraryAirport, bool) {
	for _, a := range airports {
		if a.Code == code {
			return a, true
		}
	}
	return entity.ItineraryAirport{}, false
}

func intervalToSchedule(departure entity.Interval, flightTimeMinutes int, arrivalZone *time.Location) entity.Schedule {
	arrival := departure.PlusMinutes(flightTimeMinutes).ToZone(arrivalZone)
	return entity.Schedule{
		Departure: entity.TimeInterval{
			FromLocalTime: departure.Start.String(),
			ToLocalTime:   departure.End.String(),
		},
		Arrival: entity.TimeInterval{
			FromLocalTime: arrival.Start.String(),
			ToLocalTime:   arrival.End.String(),
		},
	}
}
