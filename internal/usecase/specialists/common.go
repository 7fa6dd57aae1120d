package specialists

import (
	"context"
	"encoding/json"
	"fmt"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

const (
	NO_SUCH_FUNCTION_FORMAT = "There is no such function: %s. Check tools definition"
	NO_ASSISTANT_ID         = "You should provide 'assistantId'"
)

// Argument schemas shared by the dispatch tables
var (
	locationSchema = usecase.ObjectOf("Place location", map[string]*usecase.Property{
		"latitude":  usecase.NumberProp("Place latitude"),
		"longitude": usecase.NumberProp("Place longitude"),
	}, "latitude", "longitude")

	waypointSchema = usecase.ObjectOf("Waypoint", map[string]*usecase.Property{
		"value":    usecase.StringProp("Formatted address of the place"),
		"location": locationSchema,
		"types":    usecase.ArrayOf("A list of Google Maps Places API 'AddressType' values describing the place", usecase.StringProp("Address type")),
	}, "value", "location")

	airportSchema = usecase.ObjectOf("Airport", map[string]*usecase.Property{
		"id":       usecase.StringProp("Airport code"),
		"value":    usecase.StringProp("Airport name"),
		"location": locationSchema,
		"types":    usecase.ArrayOf("Place types", usecase.StringProp("Address type")),
	}, "id", "value", "location")

	planeSchema = usecase.ObjectOf("Plane model selected by user", map[string]*usecase.Property{
		"id":                       usecase.IntegerProp("Plane ID"),
		"name":                     usecase.StringProp("Plane name"),
		"maximumPassengersOnBoard": usecase.IntegerProp("Maximum number of passengers"),
		"default":                  usecase.BooleanProp("Plane is selected by default"),
	}, "id", "name")
)

// crewTools implements the tools every specialist who works with teammates shares
type crewTools struct {
	id       entity.AssistantID
	handOver *usecase.HandOverService
	contexts *switchContexts
	logger   logger.Logger
}

func newCrewTools(id entity.AssistantID, handOver *usecase.HandOverService, contexts *switchContexts, log logger.Logger) crewTools {
	return crewTools{
		id:       id,
		handOver: handOver,
		contexts: contexts,
		logger:   log.With("assistant", id),
	}
}

// CanHandle determines if this handler runs the given specialist
func (t crewTools) CanHandle(id entity.AssistantID) bool {
	return id == t.id
}

func (t crewTools) String() string {
	return fmt.Sprintf("%s (%s)", t.id, t.id.Name())
}

func (t crewTools) getCrewTool() usecase.ToolDefinition {
	return usecase.ToolDefinition{
		Name: usecase.OpGetCrew.String(),
		Description: "Returns a list of your crew members to delegate the client's request. " +
			"If you find a crew member that is especially effective in some kind of tasks, always delegate a request to him. " +
			"Each member has 'assistantId', 'name', 'helpsWith', 'preRequisites' and 'nextSteps' fields.",
	}
}

func (t crewTools) canSwitchToTool() usecase.ToolDefinition {
	return usecase.ToolDefinition{
		Name:        usecase.OpCanSwitchTo.String(),
		Description: "Checks if the current order status is good enough to pass it to assistant identified by 'assistantId'",
		Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
			"assistantId": t.assistantIDSchema("Assistant ID to check"),
		}, "assistantId"),
	}
}

func (t crewTools) switchToTool() usecase.ToolDefinition {
	return usecase.ToolDefinition{
		Name:        usecase.OpSwitchTo.String(),
		Description: "Calls a crew member for assistance and delegates a 'request' to him",
		Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
			"assistantId": t.assistantIDSchema("Assistant ID to call"),
			"request":     usecase.StringProp("A request to your team member to help you to arrange something for the client"),
		}, "assistantId", "request"),
	}
}

func (t crewTools) returnResultTool() usecase.ToolDefinition {
	return usecase.ToolDefinition{
		Name:        usecase.OpReturnResult.String(),
		Description: "Returns the result to calling assistant",
		Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
			"comment": usecase.StringProp("The summary the actions you have done"),
		}, "comment"),
	}
}

func (t crewTools) assistantIDSchema(description string) *usecase.Property {
	targets := t.handOver.Crew().SwitchTargets(t.id)
	enum := make([]string, 0, len(targets))
	for _, id := range targets {
		enum = append(enum, string(id))
	}
	schema := usecase.StringProp(description)
	schema.Enum = enum
	return schema
}

func (t crewTools) getCrew() usecase.ToolResponse {
	return usecase.ResultResponse(t.handOver.Crew().GetCrew(t.id))
}

func (t crewTools) canSwitchTo(dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	target, response, ok := t.target(call)
	if !ok {
		return response
	}
	return usecase.ResultResponse(t.handOver.CanSwitchTo(dc, target))
}

func (t crewTools) switchTo(ctx context.Context, dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	target, response, ok := t.target(call)
	if !ok {
		return response
	}
	request, hasRequest := call.String("request")
	return t.contexts.SwitchTo(ctx, dc, target, request, hasRequest)
}

func (t crewTools) returnData(dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	comment, _ := call.String("comment")
	return t.handOver.HandBackData(dc, comment)
}

func (t crewTools) target(call usecase.ToolCall) (entity.AssistantID, usecase.ToolResponse, bool) {
	raw, ok := call.String("assistantId")
	if !ok {
		return "", usecase.ErrorResponse(NO_ASSISTANT_ID), false
	}
	target, ok := entity.ParseAssistantID(raw)
	if !ok {
		return "", usecase.ErrorResponse(fmt.Sprintf(usecase.UNKNOWN_TARGET_FORMAT, raw)), false
	}
	return target, usecase.ToolResponse{}, true
}

func (t crewTools) unknown(call usecase.ToolCall) usecase.ToolResponse {
	t.logger.Warn("Unimplemented function call", "name", call.Name, "args", call.ArgsJSON())
	return usecase.ErrorResponse(fmt.Sprintf(NO_SUCH_FUNCTION_FORMAT, call.Name))
}

func toJSON(value interface{}) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return "null"
	}
	return string(raw)
}
