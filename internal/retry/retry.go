// Package retry provides a generic retry-with-backoff helper for
// idempotent remote calls. Tool handlers deliberately do not retry: each
// call maps to one remote request and the failure is surfaced to the
// caller, who decides whether to try again.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/lwaldron/wren/internal/logging"
)

// Do calls fn up to attempts times, doubling the delay between attempts
// starting from baseDelay. It returns nil on the first success, the last
// error after the final attempt, or the context error if ctx is canceled
// while waiting.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", attempts)
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		logging.Debug("retry", "attempt %d/%d failed: %v, retrying in %s", attempt, attempts, lastErr, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
