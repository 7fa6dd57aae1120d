package usecase

import (
	"context"

	"charter-concierge/internal/domain/entity"
)

// OracleMessage is one thread message as the oracle sees it
type OracleMessage struct {
	Role entity.MessageRole
	Text string
}

// IsFromAssistant reports messages the oracle wrote itself. Hand-over and hand-back lines read as user input.
func (m OracleMessage) IsFromAssistant() bool {
	return m.Role == entity.RoleAI
}

// ToolExchange is a tool call of the current turn with its output
type ToolExchange struct {
	Call   ToolCall
	Output string
}

// OracleRequest is one completion round of a turn
type OracleRequest struct {
	Config       entity.AssistantConfig
	Instructions string
	History      []OracleMessage
	Exchanges    []ToolExchange
	Tools        []ToolDefinition
}

// OracleReply is either text for the client or tool calls to run
type OracleReply struct {
	Text      string
	ToolCalls []ToolCall
}

// Oracle is the reasoning engine that runs a specialist
type Oracle interface {
	Complete(ctx context.Context, request OracleRequest) (OracleReply, error)
}
