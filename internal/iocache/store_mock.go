package iocache

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetCacheStore implements the StoreManager interface.
func (m *MockStoreManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetRecordStore implements the StoreManager interface.
func (m *MockStoreManager) GetRecordStore() contract.RecordStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RecordStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Clear implements the CacheStore interface.
func (m *MockCacheStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ contract.RecordStore = &MockRecordStore{} // Compile-time check

// Store implements the RecordStore interface.
func (m *MockRecordStore) Store(ctx context.Context, rec *schema.AnalysisRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

// Latest implements the RecordStore interface.
func (m *MockRecordStore) Latest(ctx context.Context, identity string) (*schema.AnalysisRecord, error) {
	args := m.Called(ctx, identity)
	rec, _ := args.Get(0).(*schema.AnalysisRecord)
	return rec, args.Error(1)
}

// AppendChangeLog implements the RecordStore interface.
func (m *MockRecordStore) AppendChangeLog(ctx context.Context, entry schema.ChangeLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// ListRecords implements the RecordStore interface.
func (m *MockRecordStore) ListRecords(ctx context.Context, identity string) ([]schema.AnalysisRecord, error) {
	args := m.Called(ctx, identity)
	recs, _ := args.Get(0).([]schema.AnalysisRecord)
	return recs, args.Error(1)
}

// ListChangeLogs implements the RecordStore interface.
func (m *MockRecordStore) ListChangeLogs(ctx context.Context, identity string, limit int) ([]schema.ChangeLogEntry, error) {
	args := m.Called(ctx, identity, limit)
	entries, _ := args.Get(0).([]schema.ChangeLogEntry)
	return entries, args.Error(1)
}

// GetStatus implements the RecordStore interface.
func (m *MockRecordStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Clear implements the RecordStore interface.
func (m *MockRecordStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close implements the RecordStore interface.
func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
