package remote

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider for testing.
type MockProvider struct {
	mock.Mock
}

var _ Provider = &MockProvider{} // Compile-time check

// Name implements the Provider interface.
func (m *MockProvider) Name() string {
	return "mock"
}

// Complete implements the Provider interface.
func (m *MockProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}
