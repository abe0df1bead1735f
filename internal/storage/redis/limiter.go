package redis

import (
	"context"
	"fmt"
	"time"
)

// Counter is the part of the Redis client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Limiter is a fixed-window request counter kept in Redis.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
}

func NewLimiter(counter Counter, limit int64, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

func (l *Limiter) Limit() int64 {
	return l.limit
}

// Allow counts one hit for subject and reports whether it is still within
// the window's limit, with the hits left.
func (l *Limiter) Allow(ctx context.Context, subject string) (bool, int64, error) {
	key := buildLimitKey(subject)

	count, err := l.counter.Incr(ctx, key)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// First hit opens the window.
	if count == 1 {
		if _, err := l.counter.Expire(ctx, key, l.window); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	if count <= l.limit {
		return true, l.limit - count, nil
	}

	// A counter whose window was never set would reject forever.
	ttl, err := l.counter.TTL(ctx, key)
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit window: %w", err)
	}
	if ttl < 0 {
		if _, err := l.counter.Expire(ctx, key, l.window); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return false, 0, nil
}

func buildLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s", subject)
}
