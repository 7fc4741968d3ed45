// SPDX-License-Identifier: MPL-2.0

package acquire

import (
	"context"
	"fmt"
	"time"
)

// maxBackoff caps the exponential delay between attempts.
const maxBackoff = 30 * time.Second

// retryWithBackoff retries op up to maxAttempts times with exponential backoff
// starting at baseBackoff. sleep waits between attempts and ends early when
// ctx is cancelled.
//
// op returns (shouldRetry bool, err error). If shouldRetry is false, err is
// returned immediately (nil on success, non-nil on permanent failure).
// On retry exhaustion, the last error is returned.
func retryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	baseBackoff time.Duration,
	sleep func(context.Context, time.Duration) error,
	op func(attempt int) (retry bool, err error),
) error {
	var lastErr error
	for attempt := range max(maxAttempts, 1) {
		if attempt > 0 {
			if err := sleep(ctx, backoff(baseBackoff, attempt)); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
		}

		retry, err := op(attempt)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// backoff returns the delay before the given (1-based retry) attempt.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base << (attempt - 1)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
