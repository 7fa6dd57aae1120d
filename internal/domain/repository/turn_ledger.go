package repository

import (
	"context"
	"time"
)

// TurnLedger records applied transitions so a re-delivered turn does not apply one twice
type TurnLedger interface {
	// Claim returns false when key was already claimed within ttl
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
