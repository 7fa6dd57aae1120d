package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const STALE_PROCESSING_DETAIL = "Turn timed out in processing state"

// MongoChatRepository implements the ChatRepository interface
type MongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new MongoDB order chat repository
func NewMongoChatRepository(db *mongo.Database) repository.ChatRepository {
	collection := db.Collection("order_chats")

	ctx := context.Background()

	// Owner lookups
	userIndex := mongo.IndexModel{
		Keys: bson.M{"userId": 1},
	}

	// Stale processing sweep
	processingIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "processStartedAt", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		userIndex,
		processingIndex,
	})

	return &MongoChatRepository{
		collection: collection,
	}
}

// Create inserts a new chat document
func (r *MongoChatRepository) Create(ctx context.Context, chat *entity.OrderChat) error {
	now := time.Now().UTC()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// FindByID finds a chat by ID
func (r *MongoChatRepository) FindByID(ctx context.Context, id string) (*entity.OrderChat, error) {
	var chat entity.OrderChat
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// Save replaces the chat document if nobody saved it since it was read
func (r *MongoChatRepository) Save(ctx context.Context, chat *entity.OrderChat) error {
	expected := chat.Revision
	next := *chat
	next.Revision = expected + 1
	next.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": chat.ID, "revision": expected},
		&next,
	)
	if err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("chat %s at revision %d: %w", chat.ID, expected, repository.ErrConflict)
	}

	*chat = next
	return nil
}

// UpdateStatus updates just the status and started time
func (r *MongoChatRepository) UpdateStatus(ctx context.Context, id string, status entity.ChatStatus, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	// Only set processStartedAt when moving to processing
	if status == entity.ChatStatusProcessing && !startedAt.IsZero() {
		update["$set"].(bson.M)["processStartedAt"] = startedAt
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no chat found with id %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// MarkFailed moves the chat to failed and keeps the error detail for the client
func (r *MongoChatRepository) MarkFailed(ctx context.Context, id string, detail string) error {
	update := bson.M{
		"$set": bson.M{
			"status":    entity.ChatStatusFailed,
			"lastError": detail,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"revision": 1},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark chat as failed: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no chat found with id %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// Delete removes the chat document
func (r *MongoChatRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// FailStaleProcessing fails chats stuck in processing since before olderThan
func (r *MongoChatRepository) FailStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	filter := bson.M{
		"status": entity.ChatStatusProcessing,
		"$or": []bson.M{
			{"processStartedAt": bson.M{"$lt": olderThan}},
			{"processStartedAt": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"status":    entity.ChatStatusFailed,
			"lastError": STALE_PROCESSING_DETAIL,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"revision": 1},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

// MongoMessageRepository implements the MessageRepository interface
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoDB chat message repository
func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	collection := db.Collection("order_chat_messages")

	ctx := context.Background()
	threadIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "chatId", Value: 1},
			{Key: "threadId", Value: 1},
			{Key: "index", Value: 1},
		},
	}
	collection.Indexes().CreateOne(ctx, threadIndex)

	return &MongoMessageRepository{
		collection: collection,
	}
}

// Append stores a message at the end of its thread
func (r *MongoMessageRepository) Append(ctx context.Context, message *entity.ChatMessage) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	if message.Index == 0 {
		message.Index = message.CreatedAt.UnixNano()
	}

	_, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListByThread returns the messages of one thread, oldest first
func (r *MongoMessageRepository) ListByThread(ctx context.Context, chatID, threadID string) ([]*entity.ChatMessage, error) {
	return r.find(ctx, bson.M{"chatId": chatID, "threadId": threadID})
}

// ListByChat returns every message of a chat, oldest first
func (r *MongoMessageRepository) ListByChat(ctx context.Context, chatID string) ([]*entity.ChatMessage, error) {
	return r.find(ctx, bson.M{"chatId": chatID})
}

func (r *MongoMessageRepository) find(ctx context.Context, filter bson.M) ([]*entity.ChatMessage, error) {
	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Sort: bson.D{{Key: "index", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*entity.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// DeleteByChat removes every message of a chat
func (r *MongoMessageRepository) DeleteByChat(ctx context.Context, chatID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"chatId": chatID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages: %w", err)
	}
	return result.DeletedCount, nil
}
