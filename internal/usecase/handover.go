package usecase

import (
	"encoding/json"
	"errors"
	"fmt"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/pkg/logger"
	"charter-concierge/pkg/utils"

	"github.com/google/uuid"
)

// Result texts returned to the specialist that switched
const (
	HAND_OVER_RESULT      = "Your teammate takes care of the client. When done he will update you with the latest order state and comments with a special message starting with '" + utils.HAND_BACK_MARKER + "'"
	HAND_BACK_RESULT      = "Your request was passed to your teammate"
	NO_REQUEST_ERROR      = "You should provide a request for the assistant"
	NOTHING_TO_HAND_BACK  = "There is no teammate waiting for your result"
	UNKNOWN_TARGET_FORMAT = "Can't switch. Unknown assistantId: %s"
)

var envelopeNamespace = uuid.MustParse("4f1c7f9e-2d0b-5c3a-9a57-6b1e0d2c8f41")

var (
	ErrNothingToHandBack = errors.New("hand-back without a waiting caller")
	ErrInvalidEnvelope   = errors.New("invalid envelope")
)

// TransitionKind tells which way an envelope moves the chat
type TransitionKind string

const (
	TransitionHandOver TransitionKind = "handOver"
	TransitionHandBack TransitionKind = "handBack"
)

// HandOverEnvelope is a pending switch of the active specialist
type HandOverEnvelope struct {
	ID          string
	Kind        TransitionKind
	From        entity.AssistantID
	Target      entity.AssistantID
	Config      entity.AssistantConfig
	MessageMeta entity.MessageMeta
	Lines       []string
}

// Validate checks the envelope can be applied
func (e HandOverEnvelope) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEnvelope)
	}
	if len(e.Lines) == 0 {
		return fmt.Errorf("%w: lines are required", ErrInvalidEnvelope)
	}
	switch e.Kind {
	case TransitionHandOver:
		if e.Target == "" {
			return fmt.Errorf("%w: target is required", ErrInvalidEnvelope)
		}
		if e.Config.Specialist() != e.Target {
			return fmt.Errorf("%w: config runs %s, not %s", ErrInvalidEnvelope, e.Config.Specialist(), e.Target)
		}
	case TransitionHandBack:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEnvelope, e.Kind)
	}
	return nil
}

// DispatchContext is what a specialist sees while handling one tool call
type DispatchContext struct {
	ChatID   string
	Revision int64
	CallID   string
	Self     entity.AssistantID
	Config   entity.AssistantConfig
	Meta     entity.ChatMeta
	ThreadID string
	Order    entity.OrderState
}

// ChatRouting is the part of a chat that decides who talks to the client
type ChatRouting struct {
	Config   entity.AssistantConfig
	ThreadID string
	Meta     entity.ChatMeta
}

// HandOverService builds and applies specialist switches
type HandOverService struct {
	crew    *CrewDirectory
	binding EngineBinding
	logger  logger.Logger
}

// NewHandOverService creates a new hand-over orchestrator
func NewHandOverService(crew *CrewDirectory, binding EngineBinding, log logger.Logger) *HandOverService {
	return &HandOverService{
		crew:    crew,
		binding: binding,
		logger:  log.With("component", "handover"),
	}
}

// Crew returns the crew directory
func (s *HandOverService) Crew() *CrewDirectory {
	return s.crew
}

// Binding returns the engine binding
func (s *HandOverService) Binding() EngineBinding {
	return s.binding
}

// CanSwitchTo answers the eligibility question for target
func (s *HandOverService) CanSwitchTo(dc DispatchContext, target entity.AssistantID) entity.HandOverPossible {
	return s.crew.CanSwitchTo(dc.Self, target, dc.Order)
}

// ContextLines builds the opening lines for a target that passed the eligibility check.
// A non-empty message is returned to the model as a function error.
type ContextLines func() (lines []string, errMsg string)

// SwitchTo hands the chat over to target with context lines.
// An ineligible target yields a function error carrying the eligibility comment.
func (s *HandOverService) SwitchTo(dc DispatchContext, target entity.AssistantID, lines []string) ToolResponse {
	return s.SwitchToWith(dc, target, func() ([]string, string) { return lines, "" })
}

// SwitchToWith checks target eligibility, then builds the context lines and hands the chat over
func (s *HandOverService) SwitchToWith(dc DispatchContext, target entity.AssistantID, build ContextLines) ToolResponse {
	if !s.crew.IsSwitchTarget(dc.Self, target) {
		return ErrorResponse(fmt.Sprintf(UNKNOWN_TARGET_FORMAT, target))
	}
	if possible := s.CanSwitchTo(dc, target); !possible.Possible {
		return ErrorResponse(possible.Comments)
	}

	lines, errMsg := build()
	if errMsg != "" {
		return ErrorResponse(errMsg)
	}

	envelope := HandOverEnvelope{
		ID:          EnvelopeID(dc, TransitionHandOver),
		Kind:        TransitionHandOver,
		From:        dc.Self,
		Target:      target,
		Config:      s.binding.Config(target),
		MessageMeta: s.binding.MessageMeta(target),
		Lines:       lines,
	}
	if err := envelope.Validate(); err != nil {
		return ErrorResponse(err.Error())
	}

	s.logger.Debug("Switching", "from", dc.Self, "to", target, "chatId", dc.ChatID, "lines", len(lines))

	response := ResultResponse(HAND_OVER_RESULT)
	response.Transition = &envelope
	return response
}

// HandOver switches to target passing the request as the only context
func (s *HandOverService) HandOver(dc DispatchContext, target entity.AssistantID, request string, hasRequest bool) ToolResponse {
	return s.SwitchToWith(dc, target, func() ([]string, string) {
		if !hasRequest {
			return nil, NO_REQUEST_ERROR
		}
		return []string{utils.HAND_OVER_HEADER + "\n" + request}, ""
	})
}

// HandBackData returns to the caller with the current order state
func (s *HandOverService) HandBackData(dc DispatchContext, comment string) ToolResponse {
	return s.handBack(dc, utils.HAND_BACK_DATA_HEADER, map[string]interface{}{"data": dc.Order}, comment)
}

// HandBackResult returns to the caller with a raw result
func (s *HandOverService) HandBackResult(dc DispatchContext, result interface{}, comment string) ToolResponse {
	return s.handBack(dc, utils.HAND_BACK_RESULT_HEADER, map[string]interface{}{"result": result}, comment)
}

func (s *HandOverService) handBack(dc DispatchContext, header string, payload map[string]interface{}, comment string) ToolResponse {
	if dc.Meta.Depth() == 0 {
		return ErrorResponse(NOTHING_TO_HAND_BACK)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("Failed to serialize hand-back: %v", err))
	}

	lines := []string{header, string(body)}
	if comment != "" {
		lines = append(lines, utils.HAND_BACK_COMMENT, comment)
	}

	caller, _ := dc.Meta.Top()
	envelope := HandOverEnvelope{
		ID:          EnvelopeID(dc, TransitionHandBack),
		Kind:        TransitionHandBack,
		From:        dc.Self,
		Target:      caller.AssistantID,
		Config:      caller.Config,
		MessageMeta: caller.MessageMeta,
		Lines:       lines,
	}

	s.logger.Debug("Switching back", "from", dc.Self, "to", caller.AssistantID, "chatId", dc.ChatID)

	response := ResultResponse(HAND_BACK_RESULT)
	response.Transition = &envelope
	return response
}

// Apply moves the chat routing along an envelope.
// applied is false when the envelope was the last one applied.
func (s *HandOverService) Apply(current ChatRouting, envelope HandOverEnvelope, newThreadID string) (next ChatRouting, applied bool, err error) {
	if err := envelope.Validate(); err != nil {
		return current, false, err
	}
	if envelope.ID == current.Meta.LastEnvelopeID {
		s.logger.Info("Envelope already applied", "envelopeId", envelope.ID)
		return current, false, nil
	}

	stack := make([]entity.DelegationFrame, len(current.Meta.Stack), len(current.Meta.Stack)+1)
	copy(stack, current.Meta.Stack)

	switch envelope.Kind {
	case TransitionHandOver:
		stack = append(stack, entity.DelegationFrame{
			AssistantID: current.Config.Specialist(),
			Config:      current.Config,
			MessageMeta: current.Meta.AIMessageMeta,
			ThreadID:    current.ThreadID,
		})
		next = ChatRouting{
			Config:   envelope.Config,
			ThreadID: newThreadID,
			Meta: entity.ChatMeta{
				AIMessageMeta:  envelope.MessageMeta,
				Stack:          stack,
				LastEnvelopeID: envelope.ID,
			},
		}
	case TransitionHandBack:
		if len(stack) == 0 {
			return current, false, ErrNothingToHandBack
		}
		caller := stack[len(stack)-1]
		next = ChatRouting{
			Config:   caller.Config,
			ThreadID: caller.ThreadID,
			Meta: entity.ChatMeta{
				AIMessageMeta:  caller.MessageMeta,
				Stack:          stack[:len(stack)-1],
				LastEnvelopeID: envelope.ID,
			},
		}
	}

	s.logger.Info("Applied transition",
		"kind", envelope.Kind,
		"from", envelope.From,
		"active", next.Config.Specialist(),
		"depth", next.Meta.Depth())

	return next, true, nil
}

// EnvelopeID derives a stable id so a re-run of the same turn yields the same envelope
func EnvelopeID(dc DispatchContext, kind TransitionKind) string {
	name := fmt.Sprintf("%s/%d/%s/%s", dc.ChatID, dc.Revision, dc.CallID, kind)
	return uuid.NewSHA1(envelopeNamespace, []byte(name)).String()
}
