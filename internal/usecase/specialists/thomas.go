package specialists

import (
	"context"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

// Thomas is the front desk. It reads the order and delegates everything else.
type Thomas struct {
	crewTools
}

// newThomas creates the front desk dispatch table
func newThomas(handOver *usecase.HandOverService, contexts *switchContexts, log logger.Logger) *Thomas {
	return &Thomas{crewTools: newCrewTools(entity.AssistantThomas, handOver, contexts, log)}
}

// Tools returns the tools the front desk exposes to the oracle
func (t *Thomas) Tools() []usecase.ToolDefinition {
	return []usecase.ToolDefinition{
		{
			Name:        usecase.OpGetOrder.String(),
			Description: "Returns current order state",
		},
		t.switchToTool(),
		t.canSwitchToTool(),
	}
}

// Dispatch runs one tool call
func (t *Thomas) Dispatch(ctx context.Context, dc usecase.DispatchContext, call usecase.ToolCall) usecase.ToolResponse {
	switch call.Operation() {
	case usecase.OpGetOrder:
		return usecase.ResultResponse(dc.Order)
	case usecase.OpSwitchTo:
		return t.switchTo(ctx, dc, call)
	case usecase.OpCanSwitchTo:
		return t.canSwitchTo(dc, call)
	}
	return t.unknown(call)
}
