package entity

// Location is a point on a map
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Waypoint is a resolved place: city, airport, street address or any point on a map
type Waypoint struct {
	Value    string   `json:"value" bson:"value"`
	Location Location `json:"location" bson:"location"`
	Types    []string `json:"types,omitempty" bson:"types,omitempty"`
}

// Airport is a waypoint with a stable airport code
type Airport struct {
	ID       string `json:"id" bson:"id"`
	Waypoint `bson:",inline"`
}

// NewAirport builds the airport waypoint the way routes present it: "Name (City)"
func NewAirport(data AirportData) Airport {
	return Airport{
		ID: data.Code,
		Waypoint: Waypoint{
			Value: data.Name + " (" + data.City + ")",
			Location: Location{
				Latitude:  data.Lat,
				Longitude: data.Lon,
			},
			Types: []string{"airport"},
		},
	}
}
