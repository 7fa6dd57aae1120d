package router

import (
	"context"
	"testing"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	id entity.AssistantID
}

func (h stubHandler) CanHandle(id entity.AssistantID) bool { return id == h.id }
func (h stubHandler) Tools() []usecase.ToolDefinition      { return nil }
func (h stubHandler) Dispatch(context.Context, usecase.DispatchContext, usecase.ToolCall) usecase.ToolResponse {
	return usecase.ResultResponse(string(h.id))
}

func TestCrewRouter_GetHandler(t *testing.T) {
	r := NewCrewRouter(logger.NewNop())
	r.Register(stubHandler{id: entity.AssistantThomas})
	r.Register(stubHandler{id: entity.AssistantFlight})

	handler := r.GetHandler(entity.AssistantFlight)
	require.NotNil(t, handler)
	assert.Equal(t, "flight", handler.Dispatch(context.Background(), usecase.DispatchContext{}, usecase.ToolCall{}).Result)

	assert.Nil(t, r.GetHandler(entity.AssistantCatering))
}

func TestCrewRouter_Missing(t *testing.T) {
	r := NewCrewRouter(logger.NewNop())
	for _, id := range entity.AllAssistants {
		if id != entity.AssistantWaypoints {
			r.Register(stubHandler{id: id})
		}
	}

	assert.Equal(t, []entity.AssistantID{entity.AssistantWaypoints}, r.Missing())
}
