package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Failure classes of the remote path.
var (
	ErrTransient       = errors.New("transient remote failure")
	ErrPermanent       = errors.New("permanent remote failure")
	ErrInvalidResponse = errors.New("invalid remote response")
	ErrDisabled        = errors.New("remote estimation disabled")
)

// ProviderError is a failed call to an estimation provider.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when the transport failed before a response
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is classifies the failure as ErrTransient or ErrPermanent.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Transient()
	case ErrPermanent:
		return !e.Transient()
	}
	return false
}

// Transient reports whether a retry could succeed. Rate limits, server errors
// and connection failures are transient. Authentication, authorization and
// other client errors are not.
func (e *ProviderError) Transient() bool {
	switch {
	case e.StatusCode == 429 || e.StatusCode >= 500:
		return true
	case e.StatusCode >= 400:
		return false
	case errors.Is(e.Err, context.DeadlineExceeded):
		return true
	}
	return looksTransient(e.Err)
}

// ParseError is a response that could not be turned into a typed estimate.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidResponse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidResponse, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrInvalidResponse and ErrPermanent.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidResponse || target == ErrPermanent
}

// IsRetryable is the default retry predicate.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermanent) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return looksTransient(err)
}

// looksTransient inspects the message of errors that carry no status code.
func looksTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"401", "403", "unauthorized", "forbidden", "invalid api key", "permission denied"} {
		if strings.Contains(msg, s) {
			return false
		}
	}
	for _, s := range []string{
		"429", "rate limit", "resource_exhausted", "overloaded",
		"500", "502", "503", "504", "internal server error", "bad gateway",
		"service unavailable", "gateway timeout",
		"connection refused", "connection reset", "timeout", "temporary failure", "eof",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
