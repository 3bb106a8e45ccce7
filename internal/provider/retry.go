package provider

import (
	"context"
	"errors"
	"strings"
	"time"
)

// permanentError marks a failure that retrying cannot fix, such as a malformed pool id.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// retryable reports whether another attempt could succeed. Reverts are deterministic at a
// pinned block, so they are not retried either.
func retryable(err error) bool {
	var p permanentError
	if errors.As(err, &p) {
		return false
	}
	return !strings.Contains(err.Error(), "execution reverted")
}

// withRetry runs fn until it succeeds, fails permanently or runs out of attempts, doubling
// the delay between attempts.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !retryable(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
