package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       *ProviderError
		transient bool
	}{
		{"rate limit", &ProviderError{StatusCode: 429, Err: errors.New("x")}, true},
		{"server error", &ProviderError{StatusCode: 503, Err: errors.New("x")}, true},
		{"unauthorized", &ProviderError{StatusCode: 401, Err: errors.New("x")}, false},
		{"forbidden", &ProviderError{StatusCode: 403, Err: errors.New("x")}, false},
		{"bad request", &ProviderError{StatusCode: 400, Err: errors.New("x")}, false},
		{"connection reset", &ProviderError{Err: errors.New("read: connection reset by peer")}, true},
		{"deadline", &ProviderError{Err: context.DeadlineExceeded}, true},
		{"auth by message", &ProviderError{Err: errors.New("Error 401: invalid api key")}, false},
		{"unknown", &ProviderError{Err: errors.New("something odd")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, tt.err.Transient())
			assert.Equal(t, tt.transient, errors.Is(tt.err, ErrTransient))
			assert.Equal(t, !tt.transient, errors.Is(tt.err, ErrPermanent))
			assert.Equal(t, tt.transient, IsRetryable(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestParseErrorMatchesSentinels(t *testing.T) {
	err := fmt.Errorf("estimate: %w", &ParseError{Reason: "bad"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.ErrorIs(t, err, ErrPermanent)
	assert.False(t, IsRetryable(err))

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad", pe.Reason)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(errors.New("503 service unavailable")))
	assert.False(t, IsRetryable(errors.New("403 forbidden")))
	assert.False(t, IsRetryable(ErrDisabled))
}
