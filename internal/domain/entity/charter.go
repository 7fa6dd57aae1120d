package entity

// Plane is an aircraft offered for a route
type Plane struct {
	ID                       int64  `json:"id" bson:"id"`
	Name                     string `json:"name" bson:"name"`
	MaximumPassengersOnBoard int    `json:"maximumPassengersOnBoard" bson:"maximumPassengersOnBoard"`
	Default                  bool   `json:"default" bson:"default"`
}

// BaseFlightOptions is the list of planes a flight specialist offers
type BaseFlightOptions struct {
	AvailablePlanes []Plane `json:"availablePlanes"`
}

// MetropolitanArea is the backend's departure/arrival flight area
type MetropolitanArea struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// OpeningHours is an airport working window in airport-local date-time strings
type OpeningHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// ItineraryAirport is a candidate airport with its working windows
type ItineraryAirport struct {
	Code   string         `json:"code"`
	Hours2 []OpeningHours `json:"hours2"`
}

// CharterAirports holds candidate origins, destinations and estimated flight times keyed "FROM-TO" in hours
type CharterAirports struct {
	From        []ItineraryAirport `json:"from"`
	To          []ItineraryAirport `json:"to"`
	FlightTimes map[string]float64 `json:"flightTimes"`
}

// CharterDateWrapper bounds bookable departures
type CharterDateWrapper struct {
	DateMin   string `json:"dateMin"`
	DateMax   string `json:"dateMax"`
	DateLocal string `json:"dateLocal"`
}

// CharterPax is the passenger range of a charter
type CharterPax struct {
	DefaultPax int `json:"defaultPax"`
	MaxPax     int `json:"maxPax"`
}

// CharterItinerary is one segment option of a charter
type CharterItinerary struct {
	Airports    CharterAirports    `json:"airports"`
	DateWrapper CharterDateWrapper `json:"dateWrapper"`
	Pax         CharterPax         `json:"pax"`
}

// Charter is the backend charter answer
type Charter struct {
	ID             int64              `json:"id"`
	SegmentOptions []CharterItinerary `json:"segmentOptions"`
}

// AirportData is backend airport master data
type AirportData struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone,omitempty"`
}

// AvailablePlane is a backend fleet entry
type AvailablePlane struct {
	ID      int64 `json:"id"`
	Blocked bool  `json:"blocked"`
	Pax     int   `json:"pax"`
}

// AvailablePlanes is the backend fleet answer for a route
type AvailablePlanes struct {
	Planes     []AvailablePlane `json:"planes"`
	SelectedID *int64           `json:"selectedId,omitempty"`
}

// TimeInterval is a local date-time window presented to the oracle
type TimeInterval struct {
	FromLocalTime string `json:"fromLocalTime"`
	ToLocalTime   string `json:"toLocalTime"`
}

// Schedule pairs a departure window with the matching arrival window
type Schedule struct {
	Departure TimeInterval `json:"departure"`
	Arrival   TimeInterval `json:"arrival"`
}

// RouteDestination is a reachable destination from a route origin
type RouteDestination struct {
	To                Airport    `json:"to"`
	FlightTimeMinutes int        `json:"flightTimeMinutes"`
	ScheduleOptions   []Schedule `json:"scheduleOptions"`
}

// Route is an origin with at least one reachable destination
type Route struct {
	From         Airport            `json:"from"`
	Destinations []RouteDestination `json:"destinations"`
}

// CharterOptions is everything the flight options specialist can offer for a flight order
type CharterOptions struct {
	FromMa            MetropolitanArea `json:"fromMa"`
	ToMa              MetropolitanArea `json:"toMa"`
	DepartureDate     string           `json:"departureDate"`
	Plane             Plane            `json:"plane"`
	FlightID          int64            `json:"flightId"`
	PossibleRoutes    []Route          `json:"possibleRoutes"`
	MaximumPassengers int              `json:"maximumPassengers"`
}
