// Package remote asks an external estimation service for resource estimates.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/huangsam/footprint/internal/observability"
	"github.com/huangsam/footprint/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config controls request size, acceptance bounds and call pacing.
type Config struct {
	MaxPromptLines    int
	Bounds            schema.Bounds
	Policy            RetryPolicy
	RequestsPerSecond float64 // 0 disables the shared rate limiter
	MaxConcurrent     int64   // 0 leaves concurrent calls uncapped
}

// Estimator wraps a Provider with retries, parsing, clamping and validation.
type Estimator struct {
	provider Provider
	cfg      Config
	limiter  *rate.Limiter
	sem      *semaphore.Weighted
	calls    atomic.Int64
}

// NewEstimator creates an estimator. A nil provider yields an estimator that
// always returns ErrDisabled.
func NewEstimator(provider Provider, cfg Config) *Estimator {
	e := &Estimator{provider: provider, cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	if cfg.MaxConcurrent > 0 {
		e.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return e
}

// Enabled reports whether a provider is configured.
func (e *Estimator) Enabled() bool {
	return e != nil && e.provider != nil
}

// ProviderName returns the provider label, or "none".
func (e *Estimator) ProviderName() string {
	if !e.Enabled() {
		return string(schema.NoProvider)
	}
	return e.provider.Name()
}

// Calls returns how many provider calls were made, retries included.
func (e *Estimator) Calls() int64 {
	return e.calls.Load()
}

// Estimate performs one remote estimation. The result is clamped to the
// configured minimums and validated; anything else is an error.
func (e *Estimator) Estimate(ctx context.Context, req Request) (schema.ResourceEstimate, error) {
	if !e.Enabled() {
		return schema.ResourceEstimate{}, ErrDisabled
	}

	prompt, err := buildPrompt(req, e.cfg.MaxPromptLines)
	if err != nil {
		return schema.ResourceEstimate{}, err
	}

	if e.sem != nil {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return schema.ResourceEstimate{}, fmt.Errorf("acquiring remote slot: %w", err)
		}
		defer e.sem.Release(1)
	}

	log := logrus.WithFields(logrus.Fields{"file": req.Path, "provider": e.provider.Name()})

	var raw string
	err = e.cfg.Policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		e.calls.Add(1)
		out, err := e.provider.Complete(ctx, systemPrompt, prompt)
		if err != nil {
			outcome := observability.AttemptFailure
			if IsRetryable(err) {
				outcome = observability.AttemptTransient
			}
			observability.ObserveRemoteAttempt(outcome)
			log.WithField("attempt", attempt).WithError(err).Debug("Remote estimation attempt failed")
			return err
		}
		observability.ObserveRemoteAttempt(observability.AttemptSuccess)
		raw = out
		return nil
	})
	if err != nil {
		return schema.ResourceEstimate{}, err
	}

	est, err := ParseResponse(raw)
	if err != nil {
		return schema.ResourceEstimate{}, err
	}
	est = Clamp(est, e.cfg.Bounds)
	if err := est.Validate(e.cfg.Bounds); err != nil {
		return schema.ResourceEstimate{}, &ParseError{Reason: "estimate violates invariants", Raw: raw, Err: err}
	}
	est.Provenance = schema.RemoteProvenance
	return est, nil
}

// IsDisabled reports whether err means no remote call could be made at all.
func IsDisabled(err error) bool {
	return errors.Is(err, ErrDisabled)
}
