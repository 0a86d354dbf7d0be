package remote

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RetryPolicy is an explicit retry schedule for one remote call.
type RetryPolicy struct {
	MaxAttempts    int           // total attempts, including the first
	InitialBackoff time.Duration // wait after the first failure
	MaxBackoff     time.Duration
	Multiplier     float64
	AttemptTimeout time.Duration // 0 means no per-attempt timeout
	Retryable      func(error) bool
}

// DefaultRetryPolicy returns three attempts with 1s, 2s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		AttemptTimeout: 60 * time.Second,
		Retryable:      IsRetryable,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := time.Duration(float64(p.InitialBackoff) * math.Pow(mult, float64(attempt-1)))
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the attempt
// ceiling is reached. Exhausted retries are reported as ErrPermanent wrapping the
// last failure.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := max(1, p.MaxAttempts)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		err := fn(attemptCtx, attempt)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("context done after attempt %d: %w", attempt, ctx.Err())
		}
		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(p.Backoff(attempt)):
		case <-ctx.Done():
			return fmt.Errorf("context done during backoff: %w", ctx.Err())
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts: %w", ErrPermanent, attempts, lastErr)
}
