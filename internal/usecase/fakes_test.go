package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/pkg/logger"
	"charter-concierge/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"
)

func testLogger(t *testing.T) logger.Logger {
	return logger.NewFromZap(zaptest.NewLogger(t))
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetricsWithRegistry("test", prometheus.NewRegistry())
}

// memChats is an in-memory chat store with optimistic revisions
type memChats struct {
	mu      sync.Mutex
	chats   map[string]entity.OrderChat
	saveErr error
	findErr error
	failed  map[string]string
}

func newMemChats() *memChats {
	return &memChats{chats: make(map[string]entity.OrderChat), failed: make(map[string]string)}
}

func (c *memChats) Create(_ context.Context, chat *entity.OrderChat) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chats[chat.ID]; ok {
		return errors.New("duplicate chat")
	}
	c.chats[chat.ID] = *chat
	return nil
}

func (c *memChats) FindByID(_ context.Context, id string) (*entity.OrderChat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	chat, ok := c.chats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &chat, nil
}

func (c *memChats) Save(_ context.Context, chat *entity.OrderChat) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	stored, ok := c.chats[chat.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Revision != chat.Revision {
		return repository.ErrConflict
	}
	chat.Revision++
	c.chats[chat.ID] = *chat
	return nil
}

func (c *memChats) UpdateStatus(_ context.Context, id string, status entity.ChatStatus, startedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	chat, ok := c.chats[id]
	if !ok {
		return repository.ErrNotFound
	}
	chat.Status = status
	if !startedAt.IsZero() {
		chat.ProcessStartedAt = startedAt
	}
	c.chats[id] = chat
	return nil
}

func (c *memChats) MarkFailed(_ context.Context, id string, detail string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	chat, ok := c.chats[id]
	if !ok {
		return repository.ErrNotFound
	}
	chat.Status = entity.ChatStatusFailed
	chat.LastError = detail
	c.chats[id] = chat
	c.failed[id] = detail
	return nil
}

func (c *memChats) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chats[id]; !ok {
		return repository.ErrNotFound
	}
	delete(c.chats, id)
	return nil
}

func (c *memChats) FailStaleProcessing(_ context.Context, olderThan time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var count int64
	for id, chat := range c.chats {
		if chat.Status == entity.ChatStatusProcessing && chat.ProcessStartedAt.Before(olderThan) {
			chat.Status = entity.ChatStatusFailed
			chat.LastError = "stale"
			c.chats[id] = chat
			count++
		}
	}
	return count, nil
}

func (c *memChats) get(id string) entity.OrderChat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chats[id]
}

// memMessages keeps messages in append order
type memMessages struct {
	mu        sync.Mutex
	messages  []*entity.ChatMessage
	appendErr error
}

func (m *memMessages) Append(_ context.Context, message *entity.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	copied := *message
	copied.Index = int64(len(m.messages))
	m.messages = append(m.messages, &copied)
	return nil
}

func (m *memMessages) ListByThread(_ context.Context, chatID, threadID string) ([]*entity.ChatMessage, error) {
	return m.filter(func(msg *entity.ChatMessage) bool {
		return msg.ChatID == chatID && msg.ThreadID == threadID
	}), nil
}

func (m *memMessages) ListByChat(_ context.Context, chatID string) ([]*entity.ChatMessage, error) {
	return m.filter(func(msg *entity.ChatMessage) bool { return msg.ChatID == chatID }), nil
}

func (m *memMessages) DeleteByChat(_ context.Context, chatID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.messages[:0]
	var deleted int64
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return deleted, nil
}

func (m *memMessages) filter(match func(*entity.ChatMessage) bool) []*entity.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*entity.ChatMessage, 0)
	for _, msg := range m.messages {
		if match(msg) {
			result = append(result, msg)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result
}

// memLedger remembers claimed keys forever
type memLedger struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func (l *memLedger) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claimed == nil {
		l.claimed = make(map[string]bool)
	}
	if l.claimed[key] {
		return false, nil
	}
	l.claimed[key] = true
	return true, nil
}

// scriptedOracle answers with prepared replies in order and records every request
type scriptedOracle struct {
	mu       sync.Mutex
	replies  []OracleReply
	err      error
	requests []OracleRequest
}

func (o *scriptedOracle) Complete(_ context.Context, request OracleRequest) (OracleReply, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, request)
	if o.err != nil {
		return OracleReply{}, o.err
	}
	if len(o.replies) == 0 {
		return OracleReply{}, errors.New("script exhausted")
	}
	reply := o.replies[0]
	o.replies = o.replies[1:]
	return reply, nil
}

// funcHandler dispatches every call through a function
type funcHandler struct {
	id       entity.AssistantID
	tools    []ToolDefinition
	dispatch func(dc DispatchContext, call ToolCall) ToolResponse
	calls    []DispatchContext
}

func (h *funcHandler) CanHandle(id entity.AssistantID) bool { return id == h.id }

func (h *funcHandler) Tools() []ToolDefinition { return h.tools }

func (h *funcHandler) Dispatch(_ context.Context, dc DispatchContext, call ToolCall) ToolResponse {
	h.calls = append(h.calls, dc)
	return h.dispatch(dc, call)
}

type mapRouter map[entity.AssistantID]SpecialistHandler

func (r mapRouter) Register(handler SpecialistHandler) {
	for _, id := range entity.AllAssistants {
		if handler.CanHandle(id) {
			r[id] = handler
		}
	}
}

func (r mapRouter) GetHandler(id entity.AssistantID) SpecialistHandler {
	return r[id]
}

// recordingScheduler collects enqueued chat ids
type recordingScheduler struct {
	mu  sync.Mutex
	ids []string
}

func (s *recordingScheduler) Enqueue(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, chatID)
}

func (s *recordingScheduler) enqueued() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func testCrew(t *testing.T) *CrewDirectory {
	t.Helper()
	crew, err := LoadCrewDirectory()
	if err != nil {
		t.Fatalf("failed to load crew: %v", err)
	}
	return crew
}

var vertexBinding = EngineBinding{Engine: entity.EngineVertexAI}
