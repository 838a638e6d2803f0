package reliability

import (
	"context"
	"time"
)

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}

// Retry calls fn until it succeeds, retries are exhausted or ctx is done.
// onRetry, when set, is told about each failed attempt before the wait.
// The last error from fn is returned.
func Retry(ctx context.Context, retries int, base, cap time.Duration, fn func(context.Context) error, onRetry func(attempt int, wait time.Duration, err error)) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= retries {
			return err
		}
		wait := ExponentialBackoff(attempt, base, cap)
		if onRetry != nil {
			onRetry(attempt+1, wait, err)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
