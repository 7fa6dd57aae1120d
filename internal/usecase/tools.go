package usecase

import (
	"encoding/json"
	"fmt"

	"charter-concierge/internal/domain/entity"
)

// Operation is a tool a specialist may expose to the oracle
type Operation int

const (
	OpUnrecognized Operation = iota
	OpGetOrder
	OpGetCrew
	OpCanSwitchTo
	OpSwitchTo
	OpReturnResult
	OpGetMinimumDate
	OpGetAvailablePlanes
	OpSetFlightData
	OpGetDistance
	OpSetFlightDetails
	OpSetCateringDetails
	OpSetTransferDetails
	OpCheckPlaces
	OpReverseGeocode
)

var operationNames = map[Operation]string{
	OpGetOrder:           "getOrder",
	OpGetCrew:            "getCrew",
	OpCanSwitchTo:        "canSwitchTo",
	OpSwitchTo:           "switchTo",
	OpReturnResult:       "returnResult",
	OpGetMinimumDate:     "getMinimumDate",
	OpGetAvailablePlanes: "getAvailablePlanes",
	OpSetFlightData:      "setFlightData",
	OpGetDistance:        "getDistance",
	OpSetFlightDetails:   "setFlightDetails",
	OpSetCateringDetails: "setCateringDetails",
	OpSetTransferDetails: "setTransferDetails",
	OpCheckPlaces:        "checkPlaces",
	OpReverseGeocode:     "reverseGeocode",
}

var operationsByName = func() map[string]Operation {
	result := make(map[string]Operation, len(operationNames))
	for op, name := range operationNames {
		result[name] = op
	}
	return result
}()

// ParseOperation maps a tool name to its operation, OpUnrecognized when unknown
func ParseOperation(name string) Operation {
	if op, ok := operationsByName[name]; ok {
		return op
	}
	return OpUnrecognized
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "unrecognized"
}

// ToolCall is a function call requested by the oracle
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// Operation resolves the call name
func (c ToolCall) Operation() Operation {
	return ParseOperation(c.Name)
}

// String returns a string argument. ok is false when absent or not a string.
func (c ToolCall) String(key string) (string, bool) {
	value, ok := c.Args[key]
	if !ok || value == nil {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// Has reports a non-null argument
func (c ToolCall) Has(key string) bool {
	value, ok := c.Args[key]
	return ok && value != nil
}

// Decode converts an argument into a typed value through its JSON form
func (c ToolCall) Decode(key string, into interface{}) error {
	value, ok := c.Args[key]
	if !ok || value == nil {
		return fmt.Errorf("argument %s is missing", key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

// ArgsJSON renders the arguments for logs and oracle transcripts
func (c ToolCall) ArgsJSON() string {
	raw, err := json.Marshal(c.Args)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ToolResponse is the outcome of one tool call: exactly one of data, result or error.
// A transition is set when the call handed the chat over or back.
type ToolResponse struct {
	Data       *entity.OrderState
	Result     interface{}
	Error      string
	Transition *HandOverEnvelope
}

// DataResponse reports a new order snapshot
func DataResponse(state entity.OrderState) ToolResponse {
	return ToolResponse{Data: &state}
}

// ResultResponse reports a value for the oracle. A nil value is sent as null.
func ResultResponse(result interface{}) ToolResponse {
	if result == nil {
		result = json.RawMessage("null")
	}
	return ToolResponse{Result: result}
}

// ErrorResponse reports a recoverable function error
func ErrorResponse(message string) ToolResponse {
	return ToolResponse{Error: message}
}

// IsError reports a function error
func (r ToolResponse) IsError() bool {
	return r.Data == nil && r.Result == nil
}

// Output renders the response the way the oracle reads it: {"data":...}, {"result":...} or {"error":...}
func (r ToolResponse) Output() string {
	var payload map[string]interface{}
	switch {
	case r.Data != nil:
		payload = map[string]interface{}{"data": r.Data}
	case r.Result != nil:
		payload = map[string]interface{}{"result": r.Result}
	default:
		payload = map[string]interface{}{"error": r.Error}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(raw)
}

// Property is a JSON schema node of a tool argument
type Property struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Required    []string             `json:"required,omitempty"`
	Enum        []string             `json:"enum,omitempty"`
}

// ToolDefinition describes a tool to the oracle
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *Property
}

// ObjectOf builds an object schema
func ObjectOf(description string, properties map[string]*Property, required ...string) *Property {
	return &Property{Type: "object", Description: description, Properties: properties, Required: required}
}

// ArrayOf builds an array schema
func ArrayOf(description string, items *Property) *Property {
	return &Property{Type: "array", Description: description, Items: items}
}

// StringProp builds a string schema
func StringProp(description string) *Property {
	return &Property{Type: "string", Description: description}
}

// NumberProp builds a number schema
func NumberProp(description string) *Property {
	return &Property{Type: "number", Description: description}
}

// IntegerProp builds an integer schema
func IntegerProp(description string) *Property {
	return &Property{Type: "integer", Description: description}
}

// BooleanProp builds a boolean schema
func BooleanProp(description string) *Property {
	return &Property{Type: "boolean", Description: description}
}

// Described copies a schema with another description
func (p *Property) Described(description string) *Property {
	copied := *p
	copied.Description = description
	return &copied
}
