package entity

import "strings"

// AssistantID identifies a specialist of the crew
type AssistantID string

const (
	AssistantThomas        AssistantID = "thomas"
	AssistantFlight        AssistantID = "flight"
	AssistantFlightOptions AssistantID = "flightOptions"
	AssistantCatering      AssistantID = "catering"
	AssistantTransfer      AssistantID = "transfer"
	AssistantWaypoints     AssistantID = "waypoints"
)

// AllAssistants lists the crew, front desk first
var AllAssistants = []AssistantID{
	AssistantThomas,
	AssistantFlight,
	AssistantFlightOptions,
	AssistantCatering,
	AssistantTransfer,
	AssistantWaypoints,
}

var assistantNames = map[AssistantID]string{
	AssistantThomas:        "Thomas The Engine",
	AssistantFlight:        "Emerson",
	AssistantFlightOptions: "Harold",
	AssistantCatering:      "Topham Hatt",
	AssistantTransfer:      "Ace",
	AssistantWaypoints:     "Lady Hatt",
}

var assistantRoles = map[AssistantID]string{
	AssistantThomas:        "front desk",
	AssistantFlight:        "flight",
	AssistantFlightOptions: "flight options",
	AssistantCatering:      "catering",
	AssistantTransfer:      "transfer",
	AssistantWaypoints:     "waypoints",
}

// ParseAssistantID matches case-insensitively, so lowercased ids from message markers resolve too
func ParseAssistantID(value string) (AssistantID, bool) {
	for _, id := range AllAssistants {
		if strings.EqualFold(string(id), strings.TrimSpace(value)) {
			return id, true
		}
	}
	return "", false
}

// Name is the display name of the specialist
func (a AssistantID) Name() string {
	if name, ok := assistantNames[a]; ok {
		return name
	}
	return string(a)
}

// Role is the short job title used in eligibility comments
func (a AssistantID) Role() string {
	if role, ok := assistantRoles[a]; ok {
		return role
	}
	return string(a)
}

// Engine is the reasoning backend that runs the specialists
type Engine string

const (
	EngineOpenAI   Engine = "openai"
	EngineVertexAI Engine = "vertexai"
)

// Label is the engine name written to message metadata
func (e Engine) Label() string {
	if e == EngineOpenAI {
		return "OpenAI"
	}
	return "VertexAI"
}

// AssistantConfig binds a specialist to an engine.
// OpenAI configs carry the remote assistant id and the dispatcher; Vertex AI configs carry the instructions id.
type AssistantConfig struct {
	Engine         Engine      `json:"engine" bson:"engine"`
	AssistantID    string      `json:"assistantId,omitempty" bson:"assistantId,omitempty"`
	DispatcherID   AssistantID `json:"dispatcherId,omitempty" bson:"dispatcherId,omitempty"`
	InstructionsID AssistantID `json:"instructionsId,omitempty" bson:"instructionsId,omitempty"`
}

// Specialist returns the crew member this config runs
func (c AssistantConfig) Specialist() AssistantID {
	if c.DispatcherID != "" {
		return c.DispatcherID
	}
	return c.InstructionsID
}

// MessageMeta tags AI messages with their author
type MessageMeta struct {
	AssistantID   AssistantID `json:"assistantId" bson:"assistantId"`
	AssistantName string      `json:"assistantName" bson:"assistantName"`
	Engine        string      `json:"engine" bson:"engine"`
}

// CrewMemberProfile is what a specialist knows about a teammate
type CrewMemberProfile struct {
	AssistantID   AssistantID `json:"assistantId" yaml:"assistantId"`
	Name          string      `json:"name" yaml:"name"`
	HelpsWith     string      `json:"helpsWith" yaml:"helpsWith"`
	PreRequisites string      `json:"preRequisites,omitempty" yaml:"preRequisites,omitempty"`
	NextSteps     string      `json:"nextSteps,omitempty" yaml:"nextSteps,omitempty"`
}

// HandOverPossible is the answer to canSwitchTo
type HandOverPossible struct {
	Possible bool   `json:"possible"`
	Comments string `json:"comments,omitempty"`
}
