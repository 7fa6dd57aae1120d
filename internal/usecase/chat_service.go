package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/pkg/logger"

	"github.com/google/uuid"
)

// Boundary fault messages
const (
	UNAUTHENTICATED_MESSAGE  = "Unauthenticated"
	ACCESS_DENIED_MESSAGE    = "Access denied"
	CHAT_NOT_FOUND_MESSAGE   = "Chat not found"
	ORDER_COMPLETE_MESSAGE   = "Order is already complete"
	EMPTY_MESSAGE_MESSAGE    = "Message is required"
	TURN_IN_PROGRESS_MESSAGE = "Previous message is still being processed"
)

// TurnScheduler delivers turns to the turn processor
type TurnScheduler interface {
	Enqueue(chatID string)
}

// OrderResult is returned by the boundary operations that start a turn
type OrderResult struct {
	Chat   *entity.OrderChat `json:"chat"`
	Status entity.ChatStatus `json:"status"`
}

// OrderView is a chat with its whole transcript
type OrderView struct {
	Chat     *entity.OrderChat     `json:"chat"`
	Messages []*entity.ChatMessage `json:"messages"`
}

// ChatService implements the client facing order operations
type ChatService struct {
	chats     repository.ChatRepository
	messages  repository.MessageRepository
	binding   EngineBinding
	scheduler TurnScheduler
	logger    logger.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	binding EngineBinding,
	scheduler TurnScheduler,
	log logger.Logger,
) *ChatService {
	return &ChatService{
		chats:     chats,
		messages:  messages,
		binding:   binding,
		scheduler: scheduler,
		logger:    log.With("component", "chat"),
	}
}

// CreateOrder starts a chat at the front desk with an empty order
func (s *ChatService) CreateOrder(ctx context.Context, uid, message string) (*OrderResult, error) {
	if err := ensureAuth(uid); err != nil {
		return nil, err
	}
	text, err := ensureMessage(message)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chat := &entity.OrderChat{
		ID:     uuid.NewString(),
		UserID: uid,
		Status: entity.ChatStatusProcessing,
		Data:   entity.EmptyOrder(),
		Config: s.binding.Config(entity.AssistantThomas),
		Meta: entity.ChatMeta{
			AIMessageMeta: s.binding.MessageMeta(entity.AssistantThomas),
			Stack:         []entity.DelegationFrame{},
		},
		ThreadID:         uuid.NewString(),
		ProcessStartedAt: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, entity.WrapChatError(entity.ErrCodeInternal, false, "Failed to create order", err)
	}
	if err := s.appendUserMessage(ctx, chat, text); err != nil {
		return nil, err
	}

	s.logger.Info("Order created", "chatId", chat.ID, "userId", uid, "engine", chat.Config.Engine)
	s.scheduler.Enqueue(chat.ID)

	return &OrderResult{Chat: chat, Status: chat.Status}, nil
}

// PostMessage adds a client message to the active thread and starts a turn
func (s *ChatService) PostMessage(ctx context.Context, uid, chatID, message string) (*OrderResult, error) {
	if err := ensureAuth(uid); err != nil {
		return nil, err
	}
	text, err := ensureMessage(message)
	if err != nil {
		return nil, err
	}

	chat, err := s.loadOwned(ctx, uid, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Status == entity.ChatStatusComplete {
		return nil, entity.NewChatError(entity.ErrCodeFailedPrecondition, true, ORDER_COMPLETE_MESSAGE)
	}
	// Messages are accepted only between turns
	if chat.Status != entity.ChatStatusAwaitingInput && chat.Status != entity.ChatStatusFailed {
		return nil, entity.NewChatError(entity.ErrCodeFailedPrecondition, true, TURN_IN_PROGRESS_MESSAGE)
	}

	if err := s.appendUserMessage(ctx, chat, text); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.chats.UpdateStatus(ctx, chat.ID, entity.ChatStatusProcessing, now); err != nil {
		return nil, s.storeFault("Failed to update order status", err)
	}
	chat.Status = entity.ChatStatusProcessing
	chat.ProcessStartedAt = now
	chat.UpdatedAt = now

	s.scheduler.Enqueue(chat.ID)
	return &OrderResult{Chat: chat, Status: chat.Status}, nil
}

// CloseOrder marks the order complete
func (s *ChatService) CloseOrder(ctx context.Context, uid, chatID string) (*OrderResult, error) {
	if err := ensureAuth(uid); err != nil {
		return nil, err
	}
	chat, err := s.loadOwned(ctx, uid, chatID)
	if err != nil {
		return nil, err
	}

	if err := s.chats.UpdateStatus(ctx, chat.ID, entity.ChatStatusComplete, time.Time{}); err != nil {
		return nil, s.storeFault("Failed to close order", err)
	}
	chat.Status = entity.ChatStatusComplete

	s.logger.Info("Order closed", "chatId", chat.ID)
	return &OrderResult{Chat: chat, Status: chat.Status}, nil
}

// DeleteOrder removes the chat and its messages. A missing chat is not an error.
func (s *ChatService) DeleteOrder(ctx context.Context, uid, chatID string) error {
	if err := ensureAuth(uid); err != nil {
		return err
	}

	chat, err := s.chats.FindByID(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return entity.WrapChatError(entity.ErrCodeInternal, false, "Failed to load order", err)
	}
	if chat.UserID != uid {
		return entity.NewChatError(entity.ErrCodePermissionDenied, true, ACCESS_DENIED_MESSAGE)
	}

	deleted, err := s.messages.DeleteByChat(ctx, chat.ID)
	if err != nil {
		return entity.WrapChatError(entity.ErrCodeInternal, false, "Failed to delete messages", err)
	}
	if err := s.chats.Delete(ctx, chat.ID); err != nil {
		return s.storeFault("Failed to delete order", err)
	}

	s.logger.Info("Order deleted", "chatId", chat.ID, "messages", deleted)
	return nil
}

// GetOrder returns the chat and its transcript
func (s *ChatService) GetOrder(ctx context.Context, uid, chatID string) (*OrderView, error) {
	if err := ensureAuth(uid); err != nil {
		return nil, err
	}
	chat, err := s.loadOwned(ctx, uid, chatID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, entity.WrapChatError(entity.ErrCodeInternal, false, "Failed to load messages", err)
	}
	return &OrderView{Chat: chat, Messages: messages}, nil
}

func (s *ChatService) loadOwned(ctx context.Context, uid, chatID string) (*entity.OrderChat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, s.storeFault("Failed to load order", err)
	}
	if chat.UserID != uid {
		return nil, entity.NewChatError(entity.ErrCodePermissionDenied, true, ACCESS_DENIED_MESSAGE)
	}
	return chat, nil
}

func (s *ChatService) appendUserMessage(ctx context.Context, chat *entity.OrderChat, text string) error {
	message := &entity.ChatMessage{
		ID:       uuid.NewString(),
		ChatID:   chat.ID,
		ThreadID: chat.ThreadID,
		Role:     entity.RoleUser,
		Text:     text,
	}
	if err := s.messages.Append(ctx, message); err != nil {
		return entity.WrapChatError(entity.ErrCodeInternal, false, "Failed to store message", err)
	}
	return nil
}

func (s *ChatService) storeFault(message string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return entity.NewChatError(entity.ErrCodeNotFound, true, CHAT_NOT_FOUND_MESSAGE)
	}
	return entity.WrapChatError(entity.ErrCodeInternal, false, message, err)
}

func ensureAuth(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return entity.NewChatError(entity.ErrCodeUnauthenticated, true, UNAUTHENTICATED_MESSAGE)
	}
	return nil
}

func ensureMessage(message string) (string, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return "", entity.NewChatError(entity.ErrCodeInvalidArgument, true, EMPTY_MESSAGE_MESSAGE)
	}
	return text, nil
}
