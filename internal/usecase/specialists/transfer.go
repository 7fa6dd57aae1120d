package specialists

import (
	"context"
	"fmt"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

var transferOrderSchema = usecase.ObjectOf("Transfer order", map[string]*usecase.Property{
	"departureWaypoint":   waypointSchema.Described("The address to pick-up the client"),
	"destinationWaypoint": waypointSchema.Described("The address to drop the client"),
	"pickupDateTime":      usecase.StringProp("Pickup local date-time in ISO 8601 format"),
}, "departureWaypoint", "destinationWaypoint", "pickupDateTime")

// Transfer arranges limousine transfers to and from the airports
type Transfer struct {
	crewTools
}

// newTransfer creates the transfer dispatch table
func newTransfer(handOver *usecase.HandOverService, contexts *switchContexts, log logger.Logger) *Transfer {
	return &Transfer{crewTools: newCrewTools(entity.AssistantTransfer, handOver, contexts, log)}
}

// Tools returns the tools the transfer specialist exposes to the oracle
func (t *Transfer) Tools() []usecase.ToolDefinition {
	return []usecase.ToolDefinition{
		t.getCrewTool(),
		t.canSwitchToTool(),
		t.switchToTool(),
		t.returnResultTool(),
		{
			Name:        usecase.OpSetTransferDetails.String(),
			Description: "Sets transfer details obtained from the client",
			Parameters: usecase.ObjectOf("Airport transfer details", map[string]*usecase.Property{
				"departureTransfer": transferOrderSchema.Described("Departure transfer if required"),
				"arrivalTransfer":   transferOrderSchema.Described("Arrival transfer if required"),
			}),
		},
	}
}

// Dispatch runs one tool call
func (t *Transfer) Dispatch(ctx context.Context, dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	switch call.Operation() {
	case usecase.OpGetCrew:
		return t.getCrew()
	case usecase.OpSwitchTo:
		return t.switchTo(ctx, dc, call)
	case usecase.OpCanSwitchTo:
		return t.canSwitchTo(dc, call)
	case usecase.OpReturnResult:
		return t.returnData(dc, call)
	case usecase.OpSetTransferDetails:
		t.logger.Debug("Setting transfer details", "args", call.ArgsJSON())
		return setTransferDetails(dc.Order, call)
	}
	return t.unknown(call)
}

// setTransferDetails overrides only the legs present in the call
func setTransferDetails(order entity.OrderState, call usecase.ToolCall) usecase.ToolResponse {
	transfer := entity.TransferDetails{}
	if order.TransferDetails != nil {
		transfer = *order.TransferDetails
	}

	legs := []struct {
		name string
		into **entity.TransferOrder
	}{
		{"departureTransfer", &transfer.DepartureTransfer},
		{"arrivalTransfer", &transfer.ArrivalTransfer},
	}
	for _, leg := range legs {
		if !call.Has(leg.name) {
			continue
		}
		var value entity.TransferOrder
		if err := call.Decode(leg.name, &value); err != nil {
			return usecase.ErrorResponse(fmt.Sprintf(INVALID_FIELD_FORMAT, leg.name, call.Args[leg.name]))
		}
		*leg.into = &value
	}

	return usecase.DataResponse(order.WithTransfer(&transfer))
}
