package usecase

import (
	"fmt"
	"testing"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"
)

var (
	london = entity.LoadZone("Europe/London")
	moscow = entity.LoadZone("Europe/Moscow")
)

func hours(day, openH, openM, closeH, closeM int) entity.OpeningHours {
	return entity.OpeningHours{
		Open:  fmt.Sprintf("2022-06-%02dT%02d:%02d", day, openH, openM),
		Close: fmt.Sprintf("2022-06-%02dT%02d:%02d", day, closeH, closeM),
	}
}

func mustInterval(t *testing.T, h entity.OpeningHours, zone *time.Location) entity.Interval {
	t.Helper()
	interval, err := HoursToInterval(h, zone)
	require.NoError(t, err)
	return interval
}

func assertTimes(t *testing.T, expected [][2]string, actual []entity.Interval) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i, e := range expected {
		assert.Equal(t, e[0], actual[i].Start.TimeString(), "start of #%d", i)
		assert.Equal(t, e[1], actual[i].End.TimeString(), "end of #%d", i)
	}
}

func TestCalculateAirportDeparture_ReturnsDepartureWindow(t *testing.T) {
	tests := []struct {
		name    string
		dep     entity.OpeningHours
		depZone *time.Location
		arr     entity.OpeningHours
		arrZone *time.Location
	}{
		{name: "arrival airport works 24h", dep: hours(6, 8, 0, 18, 0), depZone: london, arr: hours(6, 0, 0, 23, 59), arrZone: moscow},
		{name: "arrives after close east", dep: hours(6, 8, 0, 10, 0), depZone: london, arr: hours(6, 8, 0, 10, 0), arrZone: moscow},
		{name: "arrives before open east", dep: hours(6, 3, 0, 5, 0), depZone: london, arr: hours(6, 10, 0, 12, 0), arrZone: moscow},
		{name: "arrives after close west", dep: hours(6, 8, 0, 10, 0), depZone: moscow, arr: hours(6, 6, 0, 8, 0), arrZone: london},
		{name: "arrives before open west", dep: hours(6, 3, 0, 5, 0), depZone: moscow, arr: hours(6, 9, 0, 11, 0), arrZone: london},
		{name: "between working hours east", dep: hours(6, 18, 0, 20, 0), depZone: london, arr: hours(6, 2, 0, 4, 0), arrZone: moscow},
		{name: "between working hours west", dep: hours(6, 22, 0, 23, 0), depZone: moscow, arr: hours(6, 2, 0, 4, 0), arrZone: london},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep := mustInterval(t, tt.dep, tt.depZone)
			arr := mustInterval(t, tt.arr, tt.arrZone)

			result := CalculateAirportDeparture(dep, arr, 180)

			require.Len(t, result, 1)
			assert.True(t, dep.Equals(result[0]), "expected %s, got %s", dep, result[0])
		})
	}
}

func TestCalculateAirportDeparture_ReturnsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		dep      entity.OpeningHours
		depZone  *time.Location
		arr      entity.OpeningHours
		arrZone  *time.Location
		expected [2]string
	}{
		{name: "arrives after east", dep: hours(6, 8, 0, 10, 0), depZone: london, arr: hours(6, 12, 0, 14, 0), arrZone: moscow, expected: [2]string{"08:00", "09:00"}},
		{name: "arrives before east", dep: hours(6, 3, 0, 5, 0), depZone: london, arr: hours(6, 9, 0, 11, 0), arrZone: moscow, expected: [2]string{"04:00", "05:00"}},
		{name: "arrives after west", dep: hours(6, 8, 0, 10, 0), depZone: moscow, arr: hours(6, 8, 0, 10, 0), arrZone: london, expected: [2]string{"08:00", "09:00"}},
		{name: "arrives before west", dep: hours(6, 3, 0, 5, 0), depZone: moscow, arr: hours(6, 5, 0, 7, 0), arrZone: london, expected: [2]string{"04:00", "05:00"}},
		{name: "arrival wider east", dep: hours(6, 8, 0, 10, 0), depZone: london, arr: hours(6, 13, 30, 14, 30), arrZone: moscow, expected: [2]string{"08:30", "09:30"}},
		{name: "arrival wider west", dep: hours(6, 8, 0, 10, 0), depZone: moscow, arr: hours(6, 9, 30, 10, 30), arrZone: london, expected: [2]string{"08:30", "09:30"}},
		{name: "overlaps close east", dep: hours(6, 18, 0, 20, 0), depZone: london, arr: hours(6, 12, 0, 23, 30), arrZone: moscow, expected: [2]string{"18:00", "18:30"}},
		{name: "overlaps close west", dep: hours(6, 22, 30, 23, 30), depZone: moscow, arr: hours(6, 23, 40, 23, 50), arrZone: london, expected: [2]string{"22:40", "22:50"}},
		{name: "overlaps open west", dep: hours(6, 18, 0, 20, 0), depZone: moscow, arr: hours(6, 12, 0, 19, 30), arrZone: london, expected: [2]string{"18:00", "18:30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep := mustInterval(t, tt.dep, tt.depZone)
			arr := mustInterval(t, tt.arr, tt.arrZone)

			result := CalculateAirportDeparture(dep, arr, 180)

			assertTimes(t, [][2]string{tt.expected}, result)
			assert.Equal(t, dep.ZoneID(), result[0].ZoneID())
		})
	}
}

func TestReconcile(t *testing.T) {
	date := entity.NewLocalDate(2022, time.June, 6)

	tests := []struct {
		name     string
		dep      []entity.OpeningHours
		depZone  *time.Location
		arr      []entity.OpeningHours
		arrZone  *time.Location
		expected [][2]string
	}{
		{
			name:     "next day opening east",
			dep:      []entity.OpeningHours{hours(6, 18, 0, 20, 0)},
			depZone:  london,
			arr:      []entity.OpeningHours{hours(7, 0, 30, 12, 0)},
			arrZone:  moscow,
			expected: [][2]string{{"19:30", "20:00"}},
		},
		{
			name:     "before and after close east",
			dep:      []entity.OpeningHours{hours(6, 17, 0, 21, 0)},
			depZone:  london,
			arr:      []entity.OpeningHours{hours(6, 1, 0, 23, 0), hours(7, 1, 0, 23, 0)},
			arrZone:  moscow,
			expected: [][2]string{{"17:00", "18:00"}, {"20:00", "21:00"}},
		},
		{
			name:     "before and after close west",
			dep:      []entity.OpeningHours{hours(6, 20, 0, 23, 30)},
			depZone:  moscow,
			arr:      []entity.OpeningHours{hours(6, 0, 0, 23, 0), hours(7, 0, 0, 23, 0)},
			arrZone:  london,
			expected: [][2]string{{"20:00", "22:00"}, {"23:00", "23:30"}},
		},
		{
			name:     "overlap before east",
			dep:      []entity.OpeningHours{hours(6, 3, 0, 5, 0)},
			depZone:  london,
			arr:      []entity.OpeningHours{hours(6, 9, 0, 11, 0)},
			arrZone:  moscow,
			expected: [][2]string{{"04:00", "05:00"}},
		},
		{
			name:     "overlap after west",
			dep:      []entity.OpeningHours{hours(6, 8, 0, 10, 0)},
			depZone:  moscow,
			arr:      []entity.OpeningHours{hours(6, 8, 0, 10, 0)},
			arrZone:  london,
			expected: [][2]string{{"08:00", "09:00"}},
		},
		{
			name:     "two departure windows east",
			dep:      []entity.OpeningHours{hours(6, 8, 0, 8, 55), hours(6, 9, 5, 10, 0)},
			depZone:  london,
			arr:      []entity.OpeningHours{hours(6, 13, 30, 14, 30)},
			arrZone:  moscow,
			expected: [][2]string{{"08:30", "08:55"}, {"09:05", "09:30"}},
		},
		{
			name:     "two departure windows west",
			dep:      []entity.OpeningHours{hours(6, 8, 0, 8, 55), hours(6, 9, 5, 10, 0)},
			depZone:  moscow,
			arr:      []entity.OpeningHours{hours(6, 9, 30, 10, 30)},
			arrZone:  london,
			expected: [][2]string{{"08:30", "08:55"}, {"09:05", "09:30"}},
		},
		{
			name:     "two arrival windows east",
			dep:      []entity.OpeningHours{hours(6, 8, 0, 10, 0)},
			depZone:  london,
			arr:      []entity.OpeningHours{hours(6, 13, 30, 13, 55), hours(6, 14, 5, 14, 30)},
			arrZone:  moscow,
			expected: [][2]string{{"08:30", "08:55"}, {"09:05", "09:30"}},
		},
		{
			name:     "two arrival windows west",
			dep:      []entity.OpeningHours{hours(6, 8, 0, 10, 0)},
			depZone:  moscow,
			arr:      []entity.OpeningHours{hours(6, 9, 30, 9, 55), hours(6, 10, 5, 10, 30)},
			arrZone:  london,
			expected: [][2]string{{"08:30", "08:55"}, {"09:05", "09:30"}},
		},
		{
			name:     "departure window on another date is ignored",
			dep:      []entity.OpeningHours{hours(5, 8, 0, 10, 0), hours(6, 8, 0, 10, 0)},
			depZone:  london,
			arr:      []entity.OpeningHours{hours(6, 12, 0, 14, 0)},
			arrZone:  moscow,
			expected: [][2]string{{"08:00", "09:00"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Reconcile(date, tt.dep, tt.arr, 180, tt.depZone, tt.arrZone)
			require.NoError(t, err)
			assertTimes(t, tt.expected, result)
		})
	}
}

func TestReconcile_SameZoneSameDay(t *testing.T) {
	date := entity.NewLocalDate(2022, time.June, 6)

	// Departure shifted by 3h lands 11:00-13:00, overlap with 12:00-14:00 is 12:00-13:00, back to 09:00-10:00
	result, err := Reconcile(date, []entity.OpeningHours{hours(6, 8, 0, 10, 0)}, []entity.OpeningHours{hours(6, 12, 0, 14, 0)}, 180, london, london)
	require.NoError(t, err)
	assertTimes(t, [][2]string{{"09:00", "10:00"}}, result)

	// 08:30-09:30 needs an arrival window of 11:30-12:30
	result, err = Reconcile(date, []entity.OpeningHours{hours(6, 8, 0, 10, 0)}, []entity.OpeningHours{hours(6, 11, 30, 12, 30)}, 180, london, london)
	require.NoError(t, err)
	assertTimes(t, [][2]string{{"08:30", "09:30"}}, result)
}

func TestReconcile_FullDayArrivalShortCircuits(t *testing.T) {
	date := entity.NewLocalDate(2022, time.June, 6)
	rapid.Check(t, func(t *rapid.T) {
		openH := rapid.IntRange(0, 22).Draw(t, "openH")
		closeH := rapid.IntRange(openH+1, 23).Draw(t, "closeH")
		eft := rapid.IntRange(0, 12*60).Draw(t, "eft")
		// Windows on other dates are returned too: the short-circuit skips the date filter
		day := rapid.IntRange(5, 7).Draw(t, "day")
		dep := []entity.OpeningHours{hours(day, openH, 0, closeH, 0)}
		arr := []entity.OpeningHours{hours(6, 10, 0, 12, 0), hours(6, 0, 0, 23, 59)}

		result, err := Reconcile(date, dep, arr, eft, london, moscow)
		if err != nil {
			t.Fatal(err)
		}
		if len(result) != 1 {
			t.Fatalf("expected the departure window, got %v", result)
		}
		if result[0].Start.TimeString() != fmt.Sprintf("%02d:00", openH) || result[0].End.TimeString() != fmt.Sprintf("%02d:00", closeH) {
			t.Fatalf("departure window changed: %s", result[0])
		}
	})
}

func TestReconcile_NeverDropsSameDayDepartureWindow(t *testing.T) {
	date := entity.NewLocalDate(2022, time.June, 6)
	rapid.Check(t, func(t *rapid.T) {
		openH := rapid.IntRange(0, 20).Draw(t, "openH")
		closeH := rapid.IntRange(openH+1, 22).Draw(t, "closeH")
		arrOpenH := rapid.IntRange(1, 20).Draw(t, "arrOpenH")
		arrCloseH := rapid.IntRange(arrOpenH+1, 22).Draw(t, "arrCloseH")
		eft := rapid.IntRange(30, 10*60).Draw(t, "eft")

		result, err := Reconcile(date,
			[]entity.OpeningHours{hours(6, openH, 0, closeH, 0)},
			[]entity.OpeningHours{hours(6, arrOpenH, 0, arrCloseH, 0)},
			eft, london, moscow)
		if err != nil {
			t.Fatal(err)
		}
		if len(result) == 0 {
			t.Fatalf("departure window dropped")
		}
		for i := 1; i < len(result); i++ {
			if result[i].Start.Before(result[i-1].Start) {
				t.Fatalf("results out of order: %v", result)
			}
		}
	})
}

func TestReconcile_InvalidHours(t *testing.T) {
	_, err := Reconcile(entity.NewLocalDate(2022, time.June, 6),
		[]entity.OpeningHours{{Open: "tomorrow", Close: "2022-06-06T10:00"}},
		[]entity.OpeningHours{hours(6, 12, 0, 14, 0)}, 180, london, moscow)
	assert.Error(t, err)
}

func TestCoerceIntervals(t *testing.T) {
	window, err := NewDateWindow(entity.CharterDateWrapper{
		DateMin:   "2024-06-16T11:00",
		DateMax:   "2024-06-16T12:00",
		DateLocal: "2024-06-16T12:30",
	})
	require.NoError(t, err)

	at := func(h, m int) entity.LocalDateTime {
		return entity.NewLocalDateTime(2024, time.June, 16, h, m)
	}

	tests := []struct {
		name     string
		input    entity.Interval
		expected *entity.Interval
	}{
		{name: "fits", input: entity.NewInterval(at(11, 15), at(11, 45), moscow), expected: &entity.Interval{Start: at(11, 15), End: at(11, 45)}},
		{name: "start before limit", input: entity.NewInterval(at(10, 15), at(11, 45), moscow), expected: &entity.Interval{Start: at(11, 0), End: at(11, 45)}},
		{name: "end after limit", input: entity.NewInterval(at(11, 15), at(12, 45), moscow), expected: &entity.Interval{Start: at(11, 15), End: at(12, 0)}},
		{name: "before limit", input: entity.NewInterval(at(9, 15), at(10, 45), moscow)},
		{name: "after limit", input: entity.NewInterval(at(13, 15), at(14, 45), moscow)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coerced := CoerceIntervals([]entity.Interval{tt.input}, window)
			if tt.expected == nil {
				assert.Empty(t, coerced)
				return
			}
			require.Len(t, coerced, 1)
			assert.True(t, tt.expected.Start.Equal(coerced[0].Start))
			assert.True(t, tt.expected.End.Equal(coerced[0].End))
			assert.Equal(t, "Europe/Moscow", coerced[0].ZoneID())
		})
	}
}

var routeAirports = map[string]entity.AirportData{
	"UUWW": {Code: "UUWW", Name: "Vnukovo Intl", City: "Moscow", Lat: 55.599167, Lon: 37.273056, Timezone: "Europe/Moscow"},
	"EGLL": {Code: "EGLL", Name: "Heathrow", City: "London", Lat: 51.4710888888889, Lon: -0.461913888888889, Timezone: "Europe/London"},
	"EGKK": {Code: "EGKK", Name: "London Gatwick", City: "London", Lat: 51.148056, Lon: 0.190278, Timezone: "Europe/London"},
}

func routeItinerary() entity.CharterItinerary {
	workday := []entity.OpeningHours{{Open: "2024-06-16T09:00", Close: "2024-06-16T23:00"}}
	return entity.CharterItinerary{
		Airports: entity.CharterAirports{
			From: []entity.ItineraryAirport{{Code: "UUWW", Hours2: workday}},
			To: []entity.ItineraryAirport{
				{Code: "EGLL", Hours2: workday},
				{Code: "EGKK", Hours2: workday},
			},
			FlightTimes: map[string]float64{
				"UUWW-EGLL": 3,
				"UUWW-EGKK": 3.5,
			},
		},
		DateWrapper: entity.CharterDateWrapper{
			DateMin:   "2024-06-16T11:00",
			DateMax:   "2024-06-16T13:00",
			DateLocal: "2024-06-16T12:00",
		},
		Pax: entity.CharterPax{DefaultPax: 1, MaxPax: 10},
	}
}

func TestBuildRoute(t *testing.T) {
	log := logger.NewFromZap(zaptest.NewLogger(t))

	route, err := BuildRoute("UUWW", entity.NewLocalDate(2024, time.June, 16), routeItinerary(), routeAirports, log)
	require.NoError(t, err)
	require.NotNil(t, route)

	expected := &entity.Route{
		From: entity.Airport{
			ID: "UUWW",
			Waypoint: entity.Waypoint{
				Value:    "Vnukovo Intl (Moscow)",
				Location: entity.Location{Latitude: 55.599167, Longitude: 37.273056},
				Types:    []string{"airport"},
			},
		},
		Destinations: []entity.RouteDestination{
			{
				To: entity.Airport{
					ID: "EGLL",
					Waypoint: entity.Waypoint{
						Value:    "Heathrow (London)",
						Location: entity.Location{Latitude: 51.4710888888889, Longitude: -0.461913888888889},
						Types:    []string{"airport"},
					},
				},
				FlightTimeMinutes: 180,
				ScheduleOptions: []entity.Schedule{{
					Departure: entity.TimeInterval{FromLocalTime: "2024-06-16T11:00", ToLocalTime: "2024-06-16T13:00"},
					Arrival:   entity.TimeInterval{FromLocalTime: "2024-06-16T12:00", ToLocalTime: "2024-06-16T14:00"},
				}},
			},
			{
				To: entity.Airport{
					ID: "EGKK",
					Waypoint: entity.Waypoint{
						Value:    "London Gatwick (London)",
						Location: entity.Location{Latitude: 51.148056, Longitude: 0.190278},
						Types:    []string{"airport"},
					},
				},
				FlightTimeMinutes: 210,
				ScheduleOptions: []entity.Schedule{{
					Departure: entity.TimeInterval{FromLocalTime: "2024-06-16T11:00", ToLocalTime: "2024-06-16T13:00"},
					Arrival:   entity.TimeInterval{FromLocalTime: "2024-06-16T12:30", ToLocalTime: "2024-06-16T14:30"},
				}},
			},
		},
	}
	assert.Equal(t, expected, route)
}

func TestBuildRoute_SkipsDestinationsWithoutDataOrFlightTime(t *testing.T) {
	log := logger.NewFromZap(zaptest.NewLogger(t))
	itinerary := routeItinerary()
	delete(itinerary.Airports.FlightTimes, "UUWW-EGKK")
	airports := map[string]entity.AirportData{
		"UUWW": routeAirports["UUWW"],
		"EGKK": routeAirports["EGKK"],
	}

	route, err := BuildRoute("UUWW", entity.NewLocalDate(2024, time.June, 16), itinerary, airports, log)
	require.NoError(t, err)
	assert.Nil(t, route)
}

func TestBuildRoute_DropsDestinationOutsideDateWindow(t *testing.T) {
	log := logger.NewFromZap(zaptest.NewLogger(t))
	itinerary := routeItinerary()
	// Gatwick opens late: landing there means leaving 18:30-21:30 Moscow time, past the bookable window
	itinerary.Airports.To[1].Hours2 = []entity.OpeningHours{{Open: "2024-06-16T20:00", Close: "2024-06-16T23:00"}}

	route, err := BuildRoute("UUWW", entity.NewLocalDate(2024, time.June, 16), itinerary, routeAirports, log)
	require.NoError(t, err)
	require.NotNil(t, route)
	require.Len(t, route.Destinations, 1)
	assert.Equal(t, "EGLL", route.Destinations[0].To.ID)
	assert.Equal(t, 180, route.Destinations[0].FlightTimeMinutes)
}

func TestBuildRoute_UnknownOrigin(t *testing.T) {
	log := logger.NewFromZap(zaptest.NewLogger(t))

	_, err := BuildRoute("LFPB", entity.NewLocalDate(2024, time.June, 16), routeItinerary(), routeAirports, log)
	require.Error(t, err)
	assert.Equal(t, "Airport LFPB was not found in airport data", err.Error())
}
