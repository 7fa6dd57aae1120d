package usecase

import (
	"context"

	"charter-concierge/internal/domain/entity"
)

// SpecialistHandler is the dispatch table of one crew member
type SpecialistHandler interface {
	// CanHandle determines if this handler runs the given specialist
	CanHandle(id entity.AssistantID) bool

	// Tools returns the tools the specialist exposes to the oracle
	Tools() []ToolDefinition

	// Dispatch runs one tool call against the order
	Dispatch(ctx context.Context, dc DispatchContext, call ToolCall) ToolResponse
}

// CrewRouter routes tool calls to the dispatch table of the active specialist
type CrewRouter interface {
	// Register registers a specialist dispatch table
	Register(handler SpecialistHandler)

	// GetHandler returns the handler for a specialist, nil when none is registered
	GetHandler(id entity.AssistantID) SpecialistHandler
}
