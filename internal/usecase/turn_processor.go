package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/pkg/logger"
	"charter-concierge/pkg/metrics"
	"charter-concierge/pkg/utils"

	"github.com/google/uuid"
)

const (
	// DEFAULT_MAX_ROUNDS bounds oracle round-trips in a single turn
	DEFAULT_MAX_ROUNDS = 8
	// ENVELOPE_CLAIM_TTL is how long a claimed transition blocks other workers
	ENVELOPE_CLAIM_TTL = 15 * time.Minute

	SWITCH_PENDING_ERROR = "You have already switched to a teammate in this turn"
	MARKER_CALL_ID       = "marker"
)

// TurnProcessor runs one specialist turn of a chat
type TurnProcessor struct {
	chats     repository.ChatRepository
	messages  repository.MessageRepository
	router    CrewRouter
	oracles   map[entity.Engine]Oracle
	handOver  *HandOverService
	ledger    repository.TurnLedger
	scheduler TurnScheduler
	metrics   *metrics.Metrics
	maxRounds int
	logger    logger.Logger
}

// NewTurnProcessor creates a new turn processor. ledger may be nil for a single worker.
func NewTurnProcessor(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	router CrewRouter,
	oracles map[entity.Engine]Oracle,
	handOver *HandOverService,
	ledger repository.TurnLedger,
	m *metrics.Metrics,
	log logger.Logger,
) *TurnProcessor {
	return &TurnProcessor{
		chats:     chats,
		messages:  messages,
		router:    router,
		oracles:   oracles,
		handOver:  handOver,
		ledger:    ledger,
		metrics:   m,
		maxRounds: DEFAULT_MAX_ROUNDS,
		logger:    log.With("component", "turn"),
	}
}

// SetScheduler sets where follow-up turns go after a transition
func (p *TurnProcessor) SetScheduler(scheduler TurnScheduler) {
	p.scheduler = scheduler
}

// SetMaxRounds overrides the round limit
func (p *TurnProcessor) SetMaxRounds(rounds int) {
	if rounds > 0 {
		p.maxRounds = rounds
	}
}

// turnOutcome is what a finished oracle loop leaves behind
type turnOutcome struct {
	reply      entity.ParsedMessage
	order      entity.OrderState
	transition *HandOverEnvelope
	toolCalls  int
}

// ProcessTurn runs the active specialist until it replies with text.
// Any fault marks the chat failed; nothing is retried here.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, chatID string) error {
	start := time.Now()

	chat, err := p.chats.FindByID(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		p.logger.Debug("Chat is gone, skipping turn", "chatId", chatID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load chat: %w", err)
	}
	if chat.Status == entity.ChatStatusComplete {
		p.logger.Debug("Chat is complete, skipping turn", "chatId", chatID)
		return nil
	}

	active := chat.Config.Specialist()
	log := p.logger.With("chatId", chat.ID, "assistant", active)

	history, err := p.messages.ListByThread(ctx, chat.ID, chat.ThreadID)
	if err != nil {
		return p.fail(ctx, chat, "history", fmt.Errorf("failed to load thread: %w", err))
	}
	if len(history) == 0 || history[len(history)-1].Role == entity.RoleAI {
		log.Debug("Nothing to answer")
		return p.chats.UpdateStatus(ctx, chat.ID, entity.ChatStatusAwaitingInput, time.Time{})
	}

	outcome, err := p.runOracle(ctx, chat, history, log)
	if err != nil {
		return p.fail(ctx, chat, "oracle", err)
	}

	if outcome.transition == nil && outcome.reply.Data != nil {
		outcome.transition = p.markerTransition(chat, outcome, log)
	}

	if outcome.transition != nil && p.ledger != nil {
		claimed, err := p.ledger.Claim(ctx, outcome.transition.ID, ENVELOPE_CLAIM_TTL)
		if err != nil {
			return p.fail(ctx, chat, "ledger", fmt.Errorf("failed to claim transition: %w", err))
		}
		if !claimed {
			log.Warn("Transition is applied by another worker", "envelopeId", outcome.transition.ID)
			return nil
		}
	}

	author := chat.Meta.AIMessageMeta
	aiMessage := &entity.ChatMessage{
		ID:       uuid.NewString(),
		ChatID:   chat.ID,
		ThreadID: chat.ThreadID,
		Role:     entity.RoleAI,
		Text:     outcome.reply.Text,
		Data:     outcome.reply.Data,
		Meta:     outcome.reply.Meta,
		Author:   &author,
	}
	if err := p.messages.Append(ctx, aiMessage); err != nil {
		return p.fail(ctx, chat, "store", fmt.Errorf("failed to store reply: %w", err))
	}

	chat.Data = outcome.order
	applied := false
	if outcome.transition != nil {
		applied, err = p.applyTransition(ctx, chat, *outcome.transition)
		if err != nil {
			return p.fail(ctx, chat, "transition", err)
		}
	}

	now := time.Now().UTC()
	chat.UpdatedAt = now
	if applied {
		chat.Status = entity.ChatStatusProcessing
		chat.ProcessStartedAt = now
	} else {
		chat.Status = entity.ChatStatusAwaitingInput
	}

	if err := p.chats.Save(ctx, chat); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Warn("Chat changed while the turn was running", "revision", chat.Revision)
			p.metrics.TurnsProcessed.WithLabelValues(string(active), "conflict").Inc()
			return err
		}
		return p.fail(ctx, chat, "save", fmt.Errorf("failed to save chat: %w", err))
	}

	p.metrics.TurnsProcessed.WithLabelValues(string(active), "ok").Inc()
	p.metrics.TurnDuration.Observe(time.Since(start).Seconds())
	log.Info("Turn complete",
		"toolCalls", outcome.toolCalls,
		"status", chat.Status,
		"nextAssistant", chat.Config.Specialist())

	if applied && p.scheduler != nil {
		p.scheduler.Enqueue(chat.ID)
	}
	return nil
}

func (p *TurnProcessor) runOracle(ctx context.Context, chat *entity.OrderChat, history []*entity.ChatMessage, log logger.Logger) (*turnOutcome, error) {
	active := chat.Config.Specialist()
	handler := p.router.GetHandler(active)
	if handler == nil {
		return nil, fmt.Errorf("no dispatch table for %s", active)
	}
	oracle, ok := p.oracles[chat.Config.Engine]
	if !ok {
		return nil, fmt.Errorf("no oracle for engine %s", chat.Config.Engine)
	}

	dc := DispatchContext{
		ChatID:   chat.ID,
		Revision: chat.Revision,
		Self:     active,
		Config:   chat.Config,
		Meta:     chat.Meta,
		ThreadID: chat.ThreadID,
		Order:    chat.Data,
	}

	request := OracleRequest{
		Config:       chat.Config,
		Instructions: p.handOver.Crew().Instructions(active),
		History:      toOracleHistory(history),
		Tools:        handler.Tools(),
	}

	outcome := &turnOutcome{}
	for round := 0; round < p.maxRounds; round++ {
		reply, err := oracle.Complete(ctx, request)
		if err != nil {
			return nil, fmt.Errorf("oracle failed: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			outcome.reply = utils.ParseMessage(reply.Text)
			outcome.order = dc.Order
			return outcome, nil
		}

		for _, call := range reply.ToolCalls {
			dc.CallID = call.ID
			response := handler.Dispatch(ctx, dc, call)
			outcome.toolCalls++

			if response.Transition != nil {
				if outcome.transition != nil {
					response = ErrorResponse(SWITCH_PENDING_ERROR)
				} else {
					outcome.transition = response.Transition
				}
			}
			if response.Data != nil {
				dc.Order = *response.Data
			}

			p.metrics.ToolCalls.WithLabelValues(string(active), call.Operation().String(), toolOutcome(response)).Inc()
			log.Debug("Tool call dispatched", "tool", call.Name, "args", call.ArgsJSON(), "error", response.Error)

			request.Exchanges = append(request.Exchanges, ToolExchange{Call: call, Output: response.Output()})
		}
	}

	return nil, fmt.Errorf("no reply after %d rounds", p.maxRounds)
}

// markerTransition turns a hand-over or hand-back marker of a text reply into an envelope
func (p *TurnProcessor) markerTransition(chat *entity.OrderChat, outcome *turnOutcome, log logger.Logger) *HandOverEnvelope {
	dc := DispatchContext{
		ChatID:   chat.ID,
		Revision: chat.Revision,
		CallID:   MARKER_CALL_ID,
		Self:     chat.Config.Specialist(),
		Config:   chat.Config,
		Meta:     chat.Meta,
		ThreadID: chat.ThreadID,
		Order:    outcome.order,
	}

	var response ToolResponse
	switch outcome.reply.Data.Operation {
	case entity.OperationHandOver:
		target, ok := entity.ParseAssistantID(outcome.reply.Data.SwitchTo)
		if !ok {
			log.Warn("Hand-over marker names an unknown assistant", "switchTo", outcome.reply.Data.SwitchTo)
			return nil
		}
		response = p.handOver.HandOver(dc, target, outcome.reply.Text, true)
	case entity.OperationHandBack:
		response = p.handOver.HandBackData(dc, outcome.reply.Text)
	default:
		return nil
	}

	if response.Transition == nil {
		log.Warn("Marker transition rejected", "operation", outcome.reply.Data.Operation, "error", response.Error)
	}
	return response.Transition
}

// applyTransition moves the chat to the next specialist and opens its thread with the envelope lines
func (p *TurnProcessor) applyTransition(ctx context.Context, chat *entity.OrderChat, envelope HandOverEnvelope) (bool, error) {
	current := ChatRouting{Config: chat.Config, ThreadID: chat.ThreadID, Meta: chat.Meta}
	next, applied, err := p.handOver.Apply(current, envelope, uuid.NewString())
	if err != nil {
		return false, fmt.Errorf("failed to apply %s: %w", envelope.Kind, err)
	}
	if !applied {
		return false, nil
	}

	role := entity.RoleHandOver
	if envelope.Kind == TransitionHandBack {
		role = entity.RoleHandBack
	}
	message := &entity.ChatMessage{
		ID:       uuid.NewString(),
		ChatID:   chat.ID,
		ThreadID: next.ThreadID,
		Role:     role,
		Text:     strings.Join(envelope.Lines, "\n"),
		Meta:     map[string]interface{}{"from": string(envelope.From), "envelopeId": envelope.ID},
	}
	if err := p.messages.Append(ctx, message); err != nil {
		return false, fmt.Errorf("failed to store %s message: %w", envelope.Kind, err)
	}

	chat.Config = next.Config
	chat.ThreadID = next.ThreadID
	chat.Meta = next.Meta

	if envelope.Kind == TransitionHandBack {
		p.metrics.HandBacks.WithLabelValues(string(envelope.From), string(envelope.Target)).Inc()
	} else {
		p.metrics.HandOvers.WithLabelValues(string(envelope.From), string(envelope.Target)).Inc()
	}
	return true, nil
}

func (p *TurnProcessor) fail(ctx context.Context, chat *entity.OrderChat, operation string, cause error) error {
	p.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	p.metrics.TurnsProcessed.WithLabelValues(string(chat.Config.Specialist()), "failed").Inc()
	p.logger.Error("Turn failed",
		"chatId", chat.ID,
		"assistant", chat.Config.Specialist(),
		"operation", operation,
		"error", cause)

	if err := p.chats.MarkFailed(ctx, chat.ID, cause.Error()); err != nil {
		p.logger.Error("Failed to mark chat failed", "chatId", chat.ID, "error", err)
	}
	return cause
}

func toOracleHistory(messages []*entity.ChatMessage) []OracleMessage {
	history := make([]OracleMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, OracleMessage{Role: m.Role, Text: m.Text})
	}
	return history
}

func toolOutcome(response ToolResponse) string {
	switch {
	case response.Transition != nil:
		return "transition"
	case response.Data != nil:
		return "data"
	case response.IsError():
		return "error"
	default:
		return "result"
	}
}
