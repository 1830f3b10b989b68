package notion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/inkwell/internal/metrics"
)

const (
	// DefaultMaxRetries bounds attempts for rate-limited operations.
	DefaultMaxRetries = 3

	// DefaultInitialDelay seeds the exponential backoff.
	DefaultInitialDelay = 1 * time.Second
)

// RetryWithBackoff retries op only when it fails with a classified
// rate-limit error, waiting initialDelay * 2^attempt between attempts.
// Backoff is unjittered and strictly exponential. Any other error kind
// propagates immediately after a single attempt; exhaustion wraps the last
// error in a max_retries_exceeded APIError.
//
// The policy sits outside the rate limiter: op is expected to re-enter the
// shared queue on every attempt.
func RetryWithBackoff[T any](ctx context.Context, op func() (T, error), maxRetries int, initialDelay time.Duration) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRateLimited(err) {
			return zero, err
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := initialDelay * (1 << attempt)
		metrics.RetriesTotal.Inc()
		slog.Warn("Rate limited, backing off",
			"delay", delay,
			"attempt", attempt+1,
			"max_retries", maxRetries)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, &APIError{
		Message: fmt.Sprintf("max retries exceeded (%d): %v", maxRetries, lastErr),
		Code:    CodeMaxRetriesExceeded,
	}
}
