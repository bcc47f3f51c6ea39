package adapter

import (
	"context"
	"time"
)

// RateLimiter is a shared fixed-window counter keyed by sender address.
// It lives behind a port (backed by Redis) so the limit holds across every
// deployed instance, unlike a process-local map.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
