package specialists

import (
	"context"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

const MYSTERIOUS_PLACE = "Some mysterious place in the middle of nowhere"

// reverseGeocodeTypes are the address types asked for, most specific first
var reverseGeocodeTypes = []string{
	"street_address",
	"airport",
	"point_of_interest",
	"park",
	"intersection",
	"route",
	"sublocality",
	"locality",
	"political",
}

var waypointResultSchema = usecase.ArrayOf("Obtained waypoints", usecase.ObjectOf("", map[string]*usecase.Property{
	"description": usecase.StringProp("Waypoint description"),
	"waypoint":    waypointSchema,
}, "description", "waypoint"))

// Waypoints resolves and validates addresses, cities and airports
type Waypoints struct {
	crewTools
	places repository.PlacesRepository
}

// newWaypoints creates the waypoints dispatch table
func newWaypoints(handOver *usecase.HandOverService, contexts *switchContexts, places repository.PlacesRepository, log logger.Logger) *Waypoints {
	return &Waypoints{
		crewTools: newCrewTools(entity.AssistantWaypoints, handOver, contexts, log),
		places:    places,
	}
}

// Tools returns the tools the waypoints specialist exposes to the oracle
func (w *Waypoints) Tools() []usecase.ToolDefinition {
	return []usecase.ToolDefinition{
		w.getCrewTool(),
		w.canSwitchToTool(),
		w.switchToTool(),
		{
			Name:        usecase.OpCheckPlaces.String(),
			Description: "Checks if user input is a valid place",
			Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
				"input": usecase.StringProp("Place to check"),
			}, "input"),
		},
		{
			Name:        usecase.OpReverseGeocode.String(),
			Description: "Returns a waypoint for given latitude/longitude",
			Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
				"input": locationSchema.Described("Location given by client"),
			}, "input"),
		},
		{
			Name:        usecase.OpReturnResult.String(),
			Description: "Returns obtained waypoints to the teammate",
			Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
				"result":  waypointResultSchema,
				"comment": usecase.StringProp("Optional comment for the teammate"),
			}, "result"),
		},
	}
}

// Dispatch runs one tool call
func (w *Waypoints) Dispatch(ctx context.Context, dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	switch call.Operation() {
	case usecase.OpGetCrew:
		return w.getCrew()
	case usecase.OpSwitchTo:
		return w.switchTo(ctx, dc, call)
	case usecase.OpCanSwitchTo:
		return w.canSwitchTo(dc, call)
	case usecase.OpCheckPlaces:
		input, _ := call.String("input")
		return w.checkPlaces(ctx, input)
	case usecase.OpReverseGeocode:
		return w.reverseGeocode(ctx, call)
	case usecase.OpReturnResult:
		w.logger.Debug("Returning to teammate", "args", call.ArgsJSON())
		comment, _ := call.String("comment")
		return w.handOver.HandBackResult(dc, call.Args["result"], comment)
	}
	return w.unknown(call)
}

func (w *Waypoints) checkPlaces(ctx context.Context, input string) usecase.ToolResponse {
	w.logger.Debug("Validating place", "input", input)
	candidates, err := w.places.FindPlaces(ctx, input)
	if err != nil {
		w.logger.Warn("Maps error", "error", err)
		return usecase.ErrorResponse(err.Error())
	}
	return usecase.ResultResponse(candidates)
}

func (w *Waypoints) reverseGeocode(ctx context.Context, call usecase.ToolCall) usecase.ToolResponse {
	var input entity.Location
	if err := call.Decode("input", &input); err != nil {
		return usecase.ErrorResponse(err.Error())
	}
	w.logger.Debug("Reverse geocoding", "input", input)

	results, err := w.places.ReverseGeocode(ctx, input, reverseGeocodeTypes)
	if err != nil {
		w.logger.Warn("Maps error", "error", err)
		return usecase.ErrorResponse(err.Error())
	}
	return usecase.ResultResponse(pickWaypoint(input, results))
}

// pickWaypoint takes the first result of the most specific type, the first result otherwise
func pickWaypoint(input entity.Location, results []repository.GeocodeResult) entity.Waypoint {
	if len(results) == 0 {
		return entity.Waypoint{Location: input, Value: MYSTERIOUS_PLACE}
	}

	result := results[0]
	found := false
	for _, t := range reverseGeocodeTypes {
		for _, r := range results {
			if containsType(r.Types, t) {
				result = r
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	return entity.Waypoint{
		Location: input,
		Value:    result.FormattedAddress,
		Types:    result.Types,
	}
}

func containsType(types []string, t string) bool {
	for _, it := range types {
		if it == t {
			return true
		}
	}
	return false
}
