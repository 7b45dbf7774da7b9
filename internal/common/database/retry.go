package database

import (
	"context"
	"fmt"
	"time"
)

// Pinger is satisfied by every client in this package.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitReady pings p until it answers, doubling the delay between attempts up
// to maxDelay.
func WaitReady(ctx context.Context, name string, p Pinger, attempts int, baseDelay, maxDelay time.Duration) error {
	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lastErr = p.Ping(pingCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s not ready: %w", name, ctx.Err())
		}
		delay = min(delay*2, maxDelay)
	}
	return fmt.Errorf("%s not ready after %d attempts: %w", name, attempts, lastErr)
}
