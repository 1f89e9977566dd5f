// Package ratelimit bounds request volume per client identity.
//
// The limiter is optional: it only runs when a shared counter store is
// configured, and its absence changes nothing else in the pipeline. Counters
// are keyed by client IP and use wall-clock windows.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, only set when not allowed
}

// Store is an atomic check-and-increment counter. Implementations must be
// safe for concurrent callers sharing a key.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
