package usecase

import (
	_ "embed"
	"fmt"
	"strings"

	"charter-concierge/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed crew.yaml
var crewDocument []byte

type crewFile struct {
	HandOverInstructions string       `yaml:"handOverInstructions"`
	HandBackInstructions string       `yaml:"handBackInstructions"`
	Crew                 []crewMember `yaml:"crew"`
}

type crewMember struct {
	entity.CrewMemberProfile `yaml:",inline"`
	HandOver                 bool   `yaml:"handOver"`
	HandBack                 bool   `yaml:"handBack"`
	Instructions             string `yaml:"instructions"`
}

// CrewDirectory is the read-only registry of specialists
type CrewDirectory struct {
	profiles     map[entity.AssistantID]entity.CrewMemberProfile
	instructions map[entity.AssistantID]string
	order        []entity.AssistantID
}

// LoadCrewDirectory reads the embedded crew document
func LoadCrewDirectory() (*CrewDirectory, error) {
	return ParseCrewDirectory(crewDocument)
}

// ParseCrewDirectory reads a crew document. Every assistant must be described exactly once.
func ParseCrewDirectory(data []byte) (*CrewDirectory, error) {
	var file crewFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse crew: %w", err)
	}

	directory := &CrewDirectory{
		profiles:     make(map[entity.AssistantID]entity.CrewMemberProfile),
		instructions: make(map[entity.AssistantID]string),
	}

	for _, member := range file.Crew {
		id, ok := entity.ParseAssistantID(string(member.AssistantID))
		if !ok {
			return nil, fmt.Errorf("unknown assistant in crew: %s", member.AssistantID)
		}
		if _, exists := directory.instructions[id]; exists {
			return nil, fmt.Errorf("assistant %s is described twice", id)
		}

		parts := []string{strings.TrimSpace(member.Instructions)}
		if member.HandOver {
			parts = append(parts, strings.TrimSpace(file.HandOverInstructions))
		}
		if member.HandBack {
			parts = append(parts, strings.TrimSpace(file.HandBackInstructions))
		}
		directory.instructions[id] = strings.Join(parts, "\n\n")

		if strings.TrimSpace(member.HelpsWith) == "" {
			continue
		}
		profile := member.CrewMemberProfile
		profile.AssistantID = id
		profile.HelpsWith = strings.TrimSpace(profile.HelpsWith)
		profile.PreRequisites = strings.TrimSpace(profile.PreRequisites)
		profile.NextSteps = strings.TrimSpace(profile.NextSteps)
		if profile.Name == "" {
			profile.Name = id.Name()
		}
		directory.profiles[id] = profile
		directory.order = append(directory.order, id)
	}

	for _, id := range entity.AllAssistants {
		if _, ok := directory.instructions[id]; !ok {
			return nil, fmt.Errorf("assistant %s is missing from crew", id)
		}
	}

	return directory, nil
}

// Instructions returns the system instructions of a specialist
func (d *CrewDirectory) Instructions(id entity.AssistantID) string {
	return d.instructions[id]
}

// Profile returns what teammates know about a specialist
func (d *CrewDirectory) Profile(id entity.AssistantID) (entity.CrewMemberProfile, bool) {
	profile, ok := d.profiles[id]
	return profile, ok
}

// GetCrew lists the teammates of self
func (d *CrewDirectory) GetCrew(self entity.AssistantID) []entity.CrewMemberProfile {
	crew := make([]entity.CrewMemberProfile, 0, len(d.order))
	for _, id := range d.order {
		if id != self {
			crew = append(crew, d.profiles[id])
		}
	}
	return crew
}

// SwitchTargets lists the specialists self may hand over to
func (d *CrewDirectory) SwitchTargets(self entity.AssistantID) []entity.AssistantID {
	targets := make([]entity.AssistantID, 0, len(d.order))
	for _, id := range d.order {
		if id != self {
			targets = append(targets, id)
		}
	}
	return targets
}

// IsSwitchTarget reports target is a teammate of self
func (d *CrewDirectory) IsSwitchTarget(self, target entity.AssistantID) bool {
	for _, id := range d.SwitchTargets(self) {
		if id == target {
			return true
		}
	}
	return false
}

// CanSwitchTo tells whether target may take over given the order so far
func (d *CrewDirectory) CanSwitchTo(self, target entity.AssistantID, order entity.OrderState) entity.HandOverPossible {
	if target == self {
		return entity.HandOverPossible{
			Possible: false,
			Comments: fmt.Sprintf("You are a %s assistant yourself", self.Role()),
		}
	}

	switch target {
	case entity.AssistantFlightOptions:
		if !order.HasBasicFlightOptions() {
			return notPossible(basicOptionsNotSet("catering"))
		}
	case entity.AssistantCatering, entity.AssistantTransfer:
		if !order.HasBasicFlightOptions() {
			return notPossible(basicOptionsNotSet(string(target)))
		}
		if !order.HasFlightDetails() {
			return notPossible(fmt.Sprintf(
				"No. Flight details are not set. Ask %s to fill flight details before asking for %s.",
				entity.AssistantFlightOptions.Name(),
				target,
			))
		}
	}

	return entity.HandOverPossible{Possible: true}
}

func basicOptionsNotSet(service string) string {
	return fmt.Sprintf(
		"No. Basic flight options are not set. Ask %s to fill flight details before asking for %s.",
		entity.AssistantFlight.Name(),
		service,
	)
}

func notPossible(comments string) entity.HandOverPossible {
	return entity.HandOverPossible{Possible: false, Comments: comments}
}

// EngineBinding builds the engine-specific config of each specialist
type EngineBinding struct {
	Engine entity.Engine
	// RemoteIDs are the OpenAI assistant ids per specialist
	RemoteIDs map[entity.AssistantID]string
}

// Config returns the chat config running id
func (b EngineBinding) Config(id entity.AssistantID) entity.AssistantConfig {
	if b.Engine == entity.EngineOpenAI {
		return entity.AssistantConfig{
			Engine:       entity.EngineOpenAI,
			AssistantID:  b.RemoteIDs[id],
			DispatcherID: id,
		}
	}
	return entity.AssistantConfig{
		Engine:         entity.EngineVertexAI,
		InstructionsID: id,
	}
}

// MessageMeta returns the authorship tag of messages written by id
func (b EngineBinding) MessageMeta(id entity.AssistantID) entity.MessageMeta {
	return entity.MessageMeta{
		AssistantID:   id,
		AssistantName: id.Name(),
		Engine:        b.Engine.Label(),
	}
}
