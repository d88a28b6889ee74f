package content

import (
	"context"
	"fmt"
	"time"

	"fedilens/internal/metrics"
)

// Backoff is a bounded retry policy wrapping one fallible operation,
// kept apart from the logic that consumes the result.
type Backoff struct {
	MaxAttempts int
	Min         time.Duration
	Max         time.Duration
}

// DefaultBackoff mirrors the model-call policy: exponential from 1s
// capped at 20s, five attempts.
func DefaultBackoff() Backoff {
	return Backoff{MaxAttempts: 5, Min: time.Second, Max: 20 * time.Second}
}

// Do runs op, retrying on error with exponential backoff. Exhausting
// attempts returns the last error wrapped; ctx cancellation stops the
// wait early.
func (b Backoff) Do(ctx context.Context, op func() error) error {
	wait := b.Min
	var lastErr error
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == b.MaxAttempts {
			break
		}
		metrics.LLMRetries.Inc()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
		if wait > b.Max {
			wait = b.Max
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", b.MaxAttempts, lastErr)
}
