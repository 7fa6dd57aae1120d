package usecase

import (
	"context"
	"sync"
	"time"

	"charter-concierge/internal/domain/repository"
	"charter-concierge/pkg/logger"
	"charter-concierge/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	DEFAULT_MAX_CONCURRENT = 6
	DEFAULT_STALE_AFTER    = 10 * time.Minute
	DEFAULT_SWEEP_INTERVAL = time.Minute
	requestBuffer          = 256
)

// TurnRunner runs one turn of a chat
type TurnRunner interface {
	ProcessTurn(ctx context.Context, chatID string) error
}

// QueueConfig tunes turn delivery
type QueueConfig struct {
	MaxConcurrent int
	Delay         time.Duration
	StaleAfter    time.Duration
	SweepInterval time.Duration
}

func (c QueueConfig) withDefaults() QueueConfig {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DEFAULT_MAX_CONCURRENT
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = DEFAULT_STALE_AFTER
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DEFAULT_SWEEP_INTERVAL
	}
	return c
}

// TurnQueue delivers turns in process with at most one turn in flight per chat
type TurnQueue struct {
	runner   TurnRunner
	chats    repository.ChatRepository
	config   QueueConfig
	metrics  *metrics.Metrics
	logger   logger.Logger
	requests chan string
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	inFlight map[string]bool
	pending  map[string]bool
}

// NewTurnQueue creates a new turn queue
func NewTurnQueue(runner TurnRunner, chats repository.ChatRepository, config QueueConfig, m *metrics.Metrics, log logger.Logger) *TurnQueue {
	return &TurnQueue{
		runner:   runner,
		chats:    chats,
		config:   config.withDefaults(),
		metrics:  m,
		logger:   log.With("component", "queue"),
		requests: make(chan string, requestBuffer),
		done:     make(chan struct{}),
		inFlight: make(map[string]bool),
		pending:  make(map[string]bool),
	}
}

// Enqueue schedules a turn. A chat with a turn in flight gets one more run after it.
// Turns enqueued after Run has returned are dropped; the stale sweep fails them.
func (q *TurnQueue) Enqueue(chatID string) {
	select {
	case <-q.done:
		q.logger.Warn("Turn queue stopped, turn dropped", "chatId", chatID)
		return
	default:
	}

	q.mu.Lock()
	if q.inFlight[chatID] {
		q.pending[chatID] = true
		q.mu.Unlock()
		return
	}
	q.inFlight[chatID] = true
	q.mu.Unlock()

	select {
	case q.requests <- chatID:
		q.drainIfStopped()
	default:
		go func() {
			select {
			case q.requests <- chatID:
				q.drainIfStopped()
			case <-q.done:
				q.release(chatID)
			}
		}()
	}
}

// drainIfStopped releases a request that landed in the buffer after Run returned
func (q *TurnQueue) drainIfStopped() {
	select {
	case <-q.done:
		q.stop()
	default:
	}
}

// Run delivers turns until ctx is done, then waits for the turns in flight
func (q *TurnQueue) Run(ctx context.Context) {
	var group errgroup.Group
	group.SetLimit(q.config.MaxConcurrent)

	ticker := time.NewTicker(q.config.SweepInterval)
	defer ticker.Stop()

	q.logger.Info("Turn queue started",
		"maxConcurrent", q.config.MaxConcurrent,
		"delay", q.config.Delay,
		"staleAfter", q.config.StaleAfter)

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Turn queue stopping, waiting for turns in flight")
			_ = group.Wait()
			q.stop()
			return
		case chatID := <-q.requests:
			group.Go(func() error {
				q.deliver(ctx, chatID)
				return nil
			})
		case <-ticker.C:
			q.Sweep(ctx)
		}
	}
}

func (q *TurnQueue) deliver(ctx context.Context, chatID string) {
	for {
		if q.config.Delay > 0 {
			select {
			case <-time.After(q.config.Delay):
			case <-ctx.Done():
				q.release(chatID)
				return
			}
		}

		if err := q.runner.ProcessTurn(ctx, chatID); err != nil {
			q.logger.Error("Turn failed", "chatId", chatID, "error", err)
		}

		q.mu.Lock()
		if q.pending[chatID] && ctx.Err() == nil {
			delete(q.pending, chatID)
			q.mu.Unlock()
			continue
		}
		delete(q.inFlight, chatID)
		delete(q.pending, chatID)
		q.mu.Unlock()
		return
	}
}

// stop unblocks pending senders and releases the chats still waiting in the buffer
func (q *TurnQueue) stop() {
	q.stopOnce.Do(func() { close(q.done) })
	for {
		select {
		case chatID := <-q.requests:
			q.release(chatID)
		default:
			return
		}
	}
}

func (q *TurnQueue) release(chatID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, chatID)
	delete(q.pending, chatID)
}

// Sweep fails chats stuck in processing for longer than the stale timeout
func (q *TurnQueue) Sweep(ctx context.Context) {
	count, err := q.chats.FailStaleProcessing(ctx, time.Now().UTC().Add(-q.config.StaleAfter))
	if err != nil {
		q.metrics.ErrorsCount.WithLabelValues("sweep").Inc()
		q.logger.Error("Failed to sweep stale turns", "error", err)
		return
	}
	if count > 0 {
		q.metrics.StaleTurns.Add(float64(count))
		q.logger.Warn("Failed stale turns", "count", count)
	}
}
