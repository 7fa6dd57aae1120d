package entity

// FlightDetails is the route and schedule picked for a flight order.
// Every field is required for the details to count as set.
type FlightDetails struct {
	FlightID          *int64   `json:"flightId" bson:"flightId"`
	FromAirport       *Airport `json:"fromAirport" bson:"fromAirport"`
	ToAirport         *Airport `json:"toAirport" bson:"toAirport"`
	DepartureTime     *string  `json:"departureTime" bson:"departureTime"`
	PaxNumber         *int     `json:"paxNumber" bson:"paxNumber"`
	FlightTimeMinutes *int     `json:"flightTimeMinutes" bson:"flightTimeMinutes"`
}

// FlightOrder holds the basic flight options and, once those are set, the flight details
type FlightOrder struct {
	From          *Waypoint      `json:"from" bson:"from"`
	To            *Waypoint      `json:"to" bson:"to"`
	DepartureDate *string        `json:"departureDate" bson:"departureDate"`
	Plane         *Plane         `json:"plane" bson:"plane"`
	Details       *FlightDetails `json:"details" bson:"details"`
}

// CateringItem is a single dish
type CateringItem struct {
	Name     string `json:"name" bson:"name"`
	Quantity int    `json:"quantity" bson:"quantity"`
	Comment  string `json:"comment,omitempty" bson:"comment,omitempty"`
}

// CateringDetails is the in-flight catering request
type CateringDetails struct {
	Items []CateringItem `json:"items" bson:"items"`
}

// TransferOrder is one limousine leg
type TransferOrder struct {
	DepartureWaypoint   Waypoint `json:"departureWaypoint" bson:"departureWaypoint"`
	DestinationWaypoint Waypoint `json:"destinationWaypoint" bson:"destinationWaypoint"`
	PickupDateTime      string   `json:"pickupDateTime" bson:"pickupDateTime"`
}

// TransferDetails holds the airport transfers on both ends of the flight
type TransferDetails struct {
	DepartureTransfer *TransferOrder `json:"departureTransfer" bson:"departureTransfer"`
	ArrivalTransfer   *TransferOrder `json:"arrivalTransfer" bson:"arrivalTransfer"`
}

// OrderState is the order document shared by all specialists of a chat.
// Specialists never patch it: they return a new snapshot with the sub-tree they own replaced.
type OrderState struct {
	FlightOrder     *FlightOrder     `json:"flightOrder" bson:"flightOrder"`
	CateringDetails *CateringDetails `json:"cateringDetails" bson:"cateringDetails"`
	TransferDetails *TransferDetails `json:"transferDetails" bson:"transferDetails"`
}

// EmptyOrder is the state a new chat starts with
func EmptyOrder() OrderState {
	return OrderState{}
}

// WithFlightOrder returns a snapshot with the flight order replaced
func (o OrderState) WithFlightOrder(order *FlightOrder) OrderState {
	o.FlightOrder = order
	return o
}

// WithCatering returns a snapshot with catering replaced
func (o OrderState) WithCatering(details *CateringDetails) OrderState {
	o.CateringDetails = details
	return o
}

// WithTransfer returns a snapshot with transfer replaced
func (o OrderState) WithTransfer(details *TransferDetails) OrderState {
	o.TransferDetails = details
	return o
}

// AreBasicFlightOptionsSet reports from, to, departure date and plane are all present
func AreBasicFlightOptionsSet(order *FlightOrder) bool {
	return order != nil && order.From != nil && order.To != nil && order.DepartureDate != nil && order.Plane != nil
}

// AreFlightDetailsSet reports all six detail fields are present
func AreFlightDetailsSet(details *FlightDetails) bool {
	return details != nil &&
		details.FlightID != nil &&
		details.FromAirport != nil &&
		details.ToAirport != nil &&
		details.DepartureTime != nil &&
		details.PaxNumber != nil &&
		details.FlightTimeMinutes != nil
}

// HasBasicFlightOptions is AreBasicFlightOptionsSet for the state's flight order
func (o OrderState) HasBasicFlightOptions() bool {
	return AreBasicFlightOptionsSet(o.FlightOrder)
}

// HasFlightDetails reports basic options and details are both set
func (o OrderState) HasFlightDetails() bool {
	return o.HasBasicFlightOptions() && AreFlightDetailsSet(o.FlightOrder.Details)
}
