package specialists

import (
	"context"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

const (
	NO_FROM_WAYPOINT    = "No waypoint passed for 'from'"
	NO_TO_WAYPOINT      = "No waypoint passed for 'to'"
	NO_DEPARTURE_DATE   = "Departure date was not supplied. Provide departure date!"
	DEPARTURE_TOO_EARLY = "Departure is set too early. Please select departure date after the one returned by 'getMinimumDate'"
	NO_AIRPLANE         = "Airplane was not supplied. Provide selected airplane!"
)

// Flight configures the basic flight order: waypoints, departure date and plane
type Flight struct {
	crewTools
	charter *usecase.CharterOptionsService
	now     func() time.Time
}

// newFlight creates the basic flight dispatch table
func newFlight(handOver *usecase.HandOverService, contexts *switchContexts, charter *usecase.CharterOptionsService, log logger.Logger) *Flight {
	return &Flight{
		crewTools: newCrewTools(entity.AssistantFlight, handOver, contexts, log),
		charter:   charter,
		now:       time.Now,
	}
}

// Tools returns the tools the flight specialist exposes to the oracle
func (f *Flight) Tools() []usecase.ToolDefinition {
	routeProperties := func() map[string]*usecase.Property {
		return map[string]*usecase.Property{
			"from":          waypointSchema.Described("Departure waypoint you get from Lady Hatt"),
			"to":            waypointSchema.Described("Arrival waypoint you get from Lady Hatt"),
			"departureDate": usecase.StringProp("Departure date converted to format YYYY-MM-DD"),
		}
	}
	flightData := routeProperties()
	flightData["plane"] = planeSchema

	return []usecase.ToolDefinition{
		f.getCrewTool(),
		f.canSwitchToTool(),
		f.switchToTool(),
		f.returnResultTool(),
		{
			Name:        usecase.OpGetMinimumDate.String(),
			Description: "Returns the minimum departure date available",
		},
		{
			Name: usecase.OpGetAvailablePlanes.String(),
			Description: "Returns the list of the airplanes available for the route. " +
				"Each plane has 'id', 'name', 'maximumPassengersOnBoard' and 'default' fields.",
			Parameters: usecase.ObjectOf("", routeProperties(), "from", "to", "departureDate"),
		},
		{
			Name:        usecase.OpSetFlightData.String(),
			Description: "Updates flight details",
			Parameters:  usecase.ObjectOf("", flightData, "from", "to", "departureDate", "plane"),
		},
	}
}

// Dispatch runs one tool call
func (f *Flight) Dispatch(ctx context.Context, dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	switch call.Operation() {
	case usecase.OpGetCrew:
		return f.getCrew()
	case usecase.OpSwitchTo:
		return f.switchTo(ctx, dc, call)
	case usecase.OpCanSwitchTo:
		return f.canSwitchTo(dc, call)
	case usecase.OpReturnResult:
		return f.returnData(dc, call)
	case usecase.OpGetMinimumDate:
		return usecase.ResultResponse(map[string]string{"minimumDate": f.minimumDate().String()})
	case usecase.OpGetAvailablePlanes:
		f.logger.Debug("getAvailablePlanes", "args", call.ArgsJSON())
		return f.getAvailablePlanes(ctx, call)
	case usecase.OpSetFlightData:
		f.logger.Debug("setFlightData", "args", call.ArgsJSON())
		return f.setFlightData(dc, call)
	}
	return f.unknown(call)
}

func (f *Flight) minimumDate() entity.LocalDate {
	return entity.LocalDateOf(f.now().UTC()).PlusDays(1)
}

// routeArgs reads and checks from, to and departureDate
func (f *Flight) routeArgs(call usecase.ToolCall) (from, to entity.Waypoint, date entity.LocalDate, errMsg string) {
	if !call.Has("from") || call.Decode("from", &from) != nil {
		return from, to, date, NO_FROM_WAYPOINT
	}
	if !call.Has("to") || call.Decode("to", &to) != nil {
		return from, to, date, NO_TO_WAYPOINT
	}
	raw, ok := call.String("departureDate")
	if !ok || raw == "" {
		return from, to, date, NO_DEPARTURE_DATE
	}
	date, err := entity.ParseLocalDate(raw)
	if err != nil {
		return from, to, date, NO_DEPARTURE_DATE
	}
	if date.Before(f.minimumDate()) {
		return from, to, date, DEPARTURE_TOO_EARLY
	}
	return from, to, date, ""
}

func (f *Flight) getAvailablePlanes(ctx context.Context, call usecase.ToolCall) usecase.ToolResponse {
	from, to, _, errMsg := f.routeArgs(call)
	if errMsg != "" {
		return usecase.ErrorResponse(errMsg)
	}

	fromMa, toMa, err := f.charter.GetMetropolitanAreas(ctx, from, to)
	if err != nil {
		return usecase.ErrorResponse(err.Error())
	}
	options, err := f.charter.GetBaseFlightOptions(ctx, fromMa, toMa)
	if err != nil {
		return usecase.ErrorResponse(err.Error())
	}
	return usecase.ResultResponse(options.AvailablePlanes)
}

func (f *Flight) setFlightData(dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	from, to, date, errMsg := f.routeArgs(call)
	if errMsg != "" {
		return usecase.ErrorResponse(errMsg)
	}
	var plane entity.Plane
	if !call.Has("plane") || call.Decode("plane", &plane) != nil {
		return usecase.ErrorResponse(NO_AIRPLANE)
	}

	departureDate := date.String()
	return usecase.DataResponse(dc.Order.WithFlightOrder(&entity.FlightOrder{
		From:          &from,
		To:            &to,
		DepartureDate: &departureDate,
		Plane:         &plane,
		Details:       nil,
	}))
}
