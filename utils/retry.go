package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn up to attempts times, sleeping between failures with
// exponential backoff: base, 2*base, 4*base and so on, never more than max.
// It stops early when fn succeeds or when ctx is cancelled while waiting.
// The returned error wraps the last failure so callers can inspect it.
func Retry(ctx context.Context, attempts int, base, max time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := backoff(base, max, attempt)
		Warn("attempt %d/%d failed: %v (retrying in %v)", attempt, attempts, lastErr, wait)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// backoff returns base doubled per completed attempt, capped at max.
func backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	wait := base
	for i := 1; i < attempt; i++ {
		wait *= 2
		if max > 0 && wait >= max {
			return max
		}
	}
	if max > 0 && wait > max {
		return max
	}
	return wait
}
