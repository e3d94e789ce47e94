package inference

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy retries an operation with exponential backoff. ShouldRetry
// decides which failures are worth another attempt; a nil predicate retries
// everything. The policy is independent of any specific call so failure
// sequences can be simulated without network I/O.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	ShouldRetry  func(error) bool
}

// Do runs fn up to MaxAttempts times, doubling the delay between attempts.
// Each retry is logged with its ordinal. The last error is returned once
// attempts are exhausted.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, operation string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			logger.Warn("retrying ai service call",
				zap.String("operation", operation),
				zap.Int("retry", attempt-1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
