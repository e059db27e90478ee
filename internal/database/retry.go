package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// backoff bounds how long startup waits for a backing service.
type backoff struct {
	attempts int
	initial  time.Duration
	max      time.Duration
	timeout  time.Duration
}

// startupBackoff covers a database container that is still booting: ten
// pings, doubling from one second up to thirty.
var startupBackoff = backoff{attempts: 10, initial: time.Second, max: 30 * time.Second, timeout: 5 * time.Second}

// pingUntilReady calls ping until it succeeds, the attempts run out or ctx
// is cancelled. name only labels log lines and errors.
func pingUntilReady(ctx context.Context, name string, b backoff, ping func(context.Context) error) error {
	wait := b.initial
	var err error
	for attempt := 1; attempt <= b.attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, b.timeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == b.attempts {
			break
		}

		slog.Warn(name+" not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", b.attempts),
			slog.Duration("backoff", wait),
			slog.Any("error", err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", name, ctx.Err())
		case <-time.After(wait):
		}
		wait = min(wait*2, b.max)
	}
	return fmt.Errorf("pinging %s after %d attempts: %w", name, b.attempts, err)
}
