package entity

// Directive operations carried in AI message markers
const (
	OperationHandOver = "handOver"
	OperationHandBack = "handBack"
)

// MessageDirective is the structured control part of a message
type MessageDirective struct {
	Operation string `json:"operation" bson:"operation"`
	SwitchTo  string `json:"switchTo,omitempty" bson:"switchTo,omitempty"`
}

// ParsedMessage is an AI reply split into client text and control data.
// A plain reply has nil Data and Meta.
type ParsedMessage struct {
	Text string
	Data *MessageDirective
	Meta map[string]interface{}
}

// IsStructured reports whether any marker was found
func (m ParsedMessage) IsStructured() bool {
	return m.Data != nil || m.Meta != nil
}
