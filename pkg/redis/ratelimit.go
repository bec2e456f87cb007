package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a sliding-window rate limiter backed by a Redis sorted set.
// Unlike an in-process limiter it holds across restarts and instances.
// With Redis disabled every request is allowed.
type Limiter struct {
	client *Client
	key    string
	limit  int
	window time.Duration
}

// NewLimiter creates a sliding-window limiter allowing limit events per window.
func NewLimiter(client *Client, key string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		key:    fmt.Sprintf("ratelimit:%s", key),
		limit:  limit,
		window: window,
	}
}

// Allow records an event and reports whether it fits the window.
func (l *Limiter) Allow(ctx context.Context) (bool, error) {
	if !l.client.Enabled() {
		return true, nil
	}

	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.Redis().TxPipeline()
	pipe.ZRemRangeByScore(ctx, l.key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, l.key)
	pipe.ZAdd(ctx, l.key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, l.key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return countCmd.Val() < int64(l.limit), nil
}

// Wait blocks until an event is allowed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		allowed, err := l.Allow(ctx)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
