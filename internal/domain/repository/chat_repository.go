package repository

import (
	"context"
	"errors"
	"time"

	"charter-concierge/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a chat was saved by someone else since it was read
	ErrConflict = errors.New("revision conflict")
)

// ChatRepository defines the interface for order chat operations
type ChatRepository interface {
	Create(ctx context.Context, chat *entity.OrderChat) error
	FindByID(ctx context.Context, id string) (*entity.OrderChat, error)
	// Save replaces the whole document when its revision is unchanged and bumps the revision
	Save(ctx context.Context, chat *entity.OrderChat) error
	UpdateStatus(ctx context.Context, id string, status entity.ChatStatus, startedAt time.Time) error
	MarkFailed(ctx context.Context, id string, detail string) error
	Delete(ctx context.Context, id string) error
	// FailStaleProcessing fails chats stuck in processing since before olderThan
	FailStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error)
}

// MessageRepository defines the interface for chat message operations
type MessageRepository interface {
	Append(ctx context.Context, message *entity.ChatMessage) error
	ListByThread(ctx context.Context, chatID, threadID string) ([]*entity.ChatMessage, error)
	ListByChat(ctx context.Context, chatID string) ([]*entity.ChatMessage, error)
	DeleteByChat(ctx context.Context, chatID string) (int64, error)
}
