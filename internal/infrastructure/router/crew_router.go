package router

import (
	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

// CrewRouter routes tool calls to the dispatch table of a specialist
type CrewRouter struct {
	handlers []usecase.SpecialistHandler
	logger   logger.Logger
}

// NewCrewRouter creates a new crew router
func NewCrewRouter(logger logger.Logger) *CrewRouter {
	return &CrewRouter{
		handlers: make([]usecase.SpecialistHandler, 0),
		logger:   logger,
	}
}

// Register registers a specialist dispatch table
func (r *CrewRouter) Register(handler usecase.SpecialistHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered handler", "handler", handler, "tools", len(handler.Tools()))
}

// GetHandler returns the dispatch table of a specialist
func (r *CrewRouter) GetHandler(id entity.AssistantID) usecase.SpecialistHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(id) {
			return handler
		}
	}
	return nil
}

// Missing lists the crew members without a registered dispatch table
func (r *CrewRouter) Missing() []entity.AssistantID {
	missing := make([]entity.AssistantID, 0)
	for _, id := range entity.AllAssistants {
		if r.GetHandler(id) == nil {
			missing = append(missing, id)
		}
	}
	return missing
}
