// Package iocache persists estimates and analysis history on SQL backends.
package iocache

import (
	"sync"

	"github.com/huangsam/footprint/internal/contract"
)

// StoreManager manages the persistent estimate cache and the record store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	records      contract.RecordStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetCacheStore returns the estimate CacheStore, or nil when none is configured.
func (mgr *StoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetRecordStore returns the RecordStore, or nil when none is configured.
func (mgr *StoreManager) GetRecordStore() contract.RecordStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.records
}
