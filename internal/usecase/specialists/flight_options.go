package specialists

import (
	"context"
	"fmt"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
	"charter-concierge/pkg/utils"
)

const (
	REQUIRED_FIELD_FORMAT = "Required field %s was not found in arguments. Please provide %s"
	INVALID_FIELD_FORMAT  = "Field %s has invalid value: %v"
	NO_LOCATION_PAIRS     = "Provide a list of from/to location pairs in 'input'"
)

// FlightOptions fills the flight details: airports, departure time and passengers
type FlightOptions struct {
	crewTools
}

// newFlightOptions creates the flight details dispatch table
func newFlightOptions(handOver *usecase.HandOverService, contexts *switchContexts, log logger.Logger) *FlightOptions {
	return &FlightOptions{crewTools: newCrewTools(entity.AssistantFlightOptions, handOver, contexts, log)}
}

// Tools returns the tools the flight options specialist exposes to the oracle
func (f *FlightOptions) Tools() []usecase.ToolDefinition {
	pair := usecase.ArrayOf("A pair of from/to location objects to calculate the distance between them", locationSchema)
	return []usecase.ToolDefinition{
		f.getCrewTool(),
		f.canSwitchToTool(),
		f.switchToTool(),
		f.returnResultTool(),
		{
			Name:        usecase.OpGetDistance.String(),
			Description: "Calculates the distance between locations",
			Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
				"input": usecase.ArrayOf("A list of from/to location pairs to calculate the distance between", pair),
			}, "input"),
		},
		{
			Name:        usecase.OpSetFlightDetails.String(),
			Description: "Sets flight details",
			Parameters: usecase.ObjectOf("Flight details", map[string]*usecase.Property{
				"flightId":          usecase.IntegerProp("Flight ID taken from the flight options"),
				"fromAirport":       airportSchema.Described("Departure airport"),
				"toAirport":         airportSchema.Described("Arrival airport"),
				"departureTime":     usecase.StringProp("Departure time in format HH:mm, airport local time"),
				"paxNumber":         usecase.IntegerProp("Number of passengers"),
				"flightTimeMinutes": usecase.IntegerProp("Flight time in minutes"),
			}, "flightId", "fromAirport", "toAirport", "departureTime", "paxNumber", "flightTimeMinutes"),
		},
	}
}

// Dispatch runs one tool call
func (f *FlightOptions) Dispatch(ctx context.Context, dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	switch call.Operation() {
	case usecase.OpGetCrew:
		return f.getCrew()
	case usecase.OpSwitchTo:
		return f.switchTo(ctx, dc, call)
	case usecase.OpCanSwitchTo:
		return f.canSwitchTo(dc, call)
	case usecase.OpReturnResult:
		return f.returnData(dc, call)
	case usecase.OpGetDistance:
		f.logger.Debug("Getting distance", "args", call.ArgsJSON())
		return getDistance(call)
	case usecase.OpSetFlightDetails:
		f.logger.Debug("Setting flight details", "args", call.ArgsJSON())
		return setFlightDetails(dc.Order, call)
	}
	return f.unknown(call)
}

func getDistance(call usecase.ToolCall) usecase.ToolResponse {
	var pairs [][]entity.Location
	if err := call.Decode("input", &pairs); err != nil {
		return usecase.ErrorResponse(NO_LOCATION_PAIRS)
	}

	distances := make([]float64, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 {
			return usecase.ErrorResponse(NO_LOCATION_PAIRS)
		}
		distances = append(distances, utils.Distance(pair[0], pair[1]))
	}
	return usecase.ResultResponse(map[string]interface{}{"distance": distances})
}

func setFlightDetails(order entity.OrderState, call usecase.ToolCall) usecase.ToolResponse {
	if !entity.AreBasicFlightOptionsSet(order.FlightOrder) {
		return usecase.ErrorResponse(fmt.Sprintf(
			"Unexpected order state. No basic flight order. Return to %s",
			entity.AssistantFlight.Name(),
		))
	}

	var (
		flightID          int64
		fromAirport       entity.Airport
		toAirport         entity.Airport
		departureTime     string
		paxNumber         int
		flightTimeMinutes int
	)
	fields := []struct {
		name string
		into interface{}
	}{
		{"flightId", &flightID},
		{"fromAirport", &fromAirport},
		{"toAirport", &toAirport},
		{"departureTime", &departureTime},
		{"paxNumber", &paxNumber},
		{"flightTimeMinutes", &flightTimeMinutes},
	}
	for _, field := range fields {
		if !call.Has(field.name) {
			return usecase.ErrorResponse(fmt.Sprintf(REQUIRED_FIELD_FORMAT, field.name, field.name))
		}
		if err := call.Decode(field.name, field.into); err != nil {
			return usecase.ErrorResponse(fmt.Sprintf(INVALID_FIELD_FORMAT, field.name, call.Args[field.name]))
		}
	}

	flightOrder := *order.FlightOrder
	flightOrder.Details = &entity.FlightDetails{
		FlightID:          &flightID,
		FromAirport:       &fromAirport,
		ToAirport:         &toAirport,
		DepartureTime:     &departureTime,
		PaxNumber:         &paxNumber,
		FlightTimeMinutes: &flightTimeMinutes,
	}
	return usecase.DataResponse(order.WithFlightOrder(&flightOrder))
}
