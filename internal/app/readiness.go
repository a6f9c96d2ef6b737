package app

import (
	"context"
	"fmt"
)

// Pinger is anything whose backing dependency can be probed.
type Pinger interface{ Ping(ctx context.Context) error }

// BuildReadinessCheck returns the Redis readiness probe, or nil when the
// shared limiter is not configured and there is nothing to wait for.
func BuildReadinessCheck(p Pinger) func(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("op=app.redisCheck: %w", err)
		}
		return nil
	}
}
