// Package cache holds the short-lived key stores behind request
// idempotency.
package cache

import (
	"context"
	"time"
)

// IdempotencyStore records Idempotency-Key values that have already been
// used so a retried request is rejected instead of applied twice.
type IdempotencyStore interface {
	// Claim records key for ttl. It returns false when the key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so a failed request can be retried with it
	Release(ctx context.Context, key string) error
	Close() error
}
