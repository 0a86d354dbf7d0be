package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRevisionClient is a mock implementation of RevisionClient for testing.
type MockRevisionClient struct {
	mock.Mock
}

var _ RevisionClient = &MockRevisionClient{} // Compile-time check

// GetRepoRoot mocks the GetRepoRoot method.
func (m *MockRevisionClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash mocks the GetRepoHash method.
func (m *MockRevisionClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRemoteURL mocks the GetRemoteURL method.
func (m *MockRevisionClient) GetRemoteURL(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}
