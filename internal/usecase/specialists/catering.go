package specialists

import (
	"context"
	"fmt"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

var cateringItemSchema = usecase.ObjectOf("In-flight catering item description", map[string]*usecase.Property{
	"name":     usecase.StringProp("Dish name"),
	"quantity": usecase.IntegerProp("Number of items required"),
	"comment":  usecase.StringProp("Optional comment"),
}, "name", "quantity")

// Catering arranges the in-flight catering order
type Catering struct {
	crewTools
}

// newCatering creates the catering dispatch table
func newCatering(handOver *usecase.HandOverService, contexts *switchContexts, log logger.Logger) *Catering {
	return &Catering{crewTools: newCrewTools(entity.AssistantCatering, handOver, contexts, log)}
}

// Tools returns the tools the catering specialist exposes to the oracle
func (c *Catering) Tools() []usecase.ToolDefinition {
	return []usecase.ToolDefinition{
		c.getCrewTool(),
		c.canSwitchToTool(),
		c.switchToTool(),
		c.returnResultTool(),
		{
			Name:        usecase.OpSetCateringDetails.String(),
			Description: "Sets catering details obtained from the client",
			Parameters: usecase.ObjectOf("", map[string]*usecase.Property{
				"items": usecase.ArrayOf("An array of items to order", cateringItemSchema),
			}, "items"),
		},
	}
}

// Dispatch runs one tool call
func (c *Catering) Dispatch(ctx context.Context, dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	switch call.Operation() {
	case usecase.OpGetCrew:
		return c.getCrew()
	case usecase.OpSwitchTo:
		return c.switchTo(ctx, dc, call)
	case usecase.OpCanSwitchTo:
		return c.canSwitchTo(dc, call)
	case usecase.OpReturnResult:
		return c.returnData(dc, call)
	case usecase.OpSetCateringDetails:
		c.logger.Debug("Setting catering details", "args", call.ArgsJSON())
		var items []entity.CateringItem
		if !call.Has("items") {
			return usecase.ErrorResponse(fmt.Sprintf(REQUIRED_FIELD_FORMAT, "items", "items"))
		}
		if err := call.Decode("items", &items); err != nil {
			return usecase.ErrorResponse(fmt.Sprintf(INVALID_FIELD_FORMAT, "items", call.Args["items"]))
		}
		return usecase.DataResponse(dc.Order.WithCatering(&entity.CateringDetails{Items: items}))
	}
	return c.unknown(call)
}
