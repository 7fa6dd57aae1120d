package repository

import (
	"context"
	"fmt"
	"time"

	"charter-concierge/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const LEDGER_KEY_PREFIX = "charter:envelope:"

// RedisTurnLedger claims transition envelope ids with SETNX
type RedisTurnLedger struct {
	client *redis.Client
}

// NewRedisTurnLedger creates a ledger over an existing redis client
func NewRedisTurnLedger(client *redis.Client) repository.TurnLedger {
	return &RedisTurnLedger{client: client}
}

// Claim returns true for the first caller of key within ttl
func (l *RedisTurnLedger) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	claimed, err := l.client.SetNX(ctx, LEDGER_KEY_PREFIX+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return claimed, nil
}
