package entity

import "time"

// ChatStatus is the lifecycle state of an order chat
type ChatStatus string

const (
	ChatStatusAwaitingInput ChatStatus = "awaitingUserInput"
	ChatStatusProcessing    ChatStatus = "processing"
	ChatStatusComplete      ChatStatus = "complete"
	ChatStatusFailed        ChatStatus = "failed"
)

// DelegationFrame is a suspended caller waiting for a hand-back
type DelegationFrame struct {
	AssistantID AssistantID     `json:"assistantId" bson:"assistantId"`
	Config      AssistantConfig `json:"config" bson:"config"`
	MessageMeta MessageMeta     `json:"messageMeta" bson:"messageMeta"`
	ThreadID    string          `json:"threadId" bson:"threadId"`
}

// ChatMeta is the persisted routing state of a chat
type ChatMeta struct {
	AIMessageMeta  MessageMeta       `json:"aiMessageMeta" bson:"aiMessageMeta"`
	Stack          []DelegationFrame `json:"stack" bson:"stack"`
	LastEnvelopeID string            `json:"lastEnvelopeId,omitempty" bson:"lastEnvelopeId,omitempty"`
}

// Active is the specialist currently talking to the client
func (m ChatMeta) Active() AssistantID {
	return m.AIMessageMeta.AssistantID
}

// Depth is the number of suspended callers
func (m ChatMeta) Depth() int {
	return len(m.Stack)
}

// Top returns the caller a hand-back would resume
func (m ChatMeta) Top() (DelegationFrame, bool) {
	if len(m.Stack) == 0 {
		return DelegationFrame{}, false
	}
	return m.Stack[len(m.Stack)-1], true
}

// OrderChat is the conversation document
type OrderChat struct {
	ID               string          `json:"id" bson:"_id"`
	UserID           string          `json:"userId" bson:"userId"`
	Status           ChatStatus      `json:"status" bson:"status"`
	Data             OrderState      `json:"data" bson:"data"`
	Config           AssistantConfig `json:"config" bson:"config"`
	Meta             ChatMeta        `json:"meta" bson:"meta"`
	ThreadID         string          `json:"threadId" bson:"threadId"`
	Revision         int64           `json:"revision" bson:"revision"`
	ProcessStartedAt time.Time       `json:"processStartedAt,omitempty" bson:"processStartedAt,omitempty"`
	LastError        string          `json:"lastError,omitempty" bson:"lastError,omitempty"`
	CreatedAt        time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// MessageRole tells who wrote a message and how the oracle sees it
type MessageRole string

const (
	RoleUser     MessageRole = "user"
	RoleAI       MessageRole = "ai"
	RoleHandOver MessageRole = "handOver"
	RoleHandBack MessageRole = "handBack"
)

// ChatMessage is one message of a chat thread
type ChatMessage struct {
	ID        string                 `json:"id" bson:"_id"`
	ChatID    string                 `json:"chatId" bson:"chatId"`
	ThreadID  string                 `json:"threadId" bson:"threadId"`
	Index     int64                  `json:"index" bson:"index"`
	Role      MessageRole            `json:"role" bson:"role"`
	Text      string                 `json:"text" bson:"text"`
	Data      *MessageDirective      `json:"data,omitempty" bson:"data,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty" bson:"meta,omitempty"`
	Author    *MessageMeta           `json:"author,omitempty" bson:"author,omitempty"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}
