package analyzer

import (
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/schema"
)

// currentCacheVersion defines the version of the persisted estimate encoding.
const currentCacheVersion = 1

// MemoryCache is a process-lifetime LRU cache of estimates keyed by content hash.
type MemoryCache struct {
	lru *lru.Cache[string, schema.ResourceEstimate]
}

var _ contract.EstimateCache = &MemoryCache{} // Compile-time check

// NewMemoryCache creates an LRU cache holding at most size estimates.
func NewMemoryCache(size int) (*MemoryCache, error) {
	cache, err := lru.New[string, schema.ResourceEstimate](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: cache}, nil
}

// Get returns the estimate stored under hash.
func (c *MemoryCache) Get(hash string) (schema.ResourceEstimate, bool) {
	return c.lru.Get(hash)
}

// Put stores est under hash, evicting the least recently used entry when full.
func (c *MemoryCache) Put(hash string, est schema.ResourceEstimate) {
	c.lru.Add(hash, est)
}

// Len returns the number of cached estimates.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// NoopCache never hits and drops every write.
type NoopCache struct{}

var _ contract.EstimateCache = NoopCache{} // Compile-time check

// Get always misses.
func (NoopCache) Get(string) (schema.ResourceEstimate, bool) { return schema.ResourceEstimate{}, false }

// Put does nothing.
func (NoopCache) Put(string, schema.ResourceEstimate) {}

// StoreCache adapts a persistent contract.CacheStore to the estimate cache.
// Entries written with another encoding version, or holding a heuristic
// estimate, are treated as misses.
type StoreCache struct {
	store contract.CacheStore
}

var _ contract.EstimateCache = &StoreCache{} // Compile-time check

// NewStoreCache wraps store.
func NewStoreCache(store contract.CacheStore) *StoreCache {
	return &StoreCache{store: store}
}

// Get loads and decodes the estimate stored under hash.
func (c *StoreCache) Get(hash string) (schema.ResourceEstimate, bool) {
	data, version, _, err := c.store.Get(hash)
	if err != nil || version != currentCacheVersion {
		return schema.ResourceEstimate{}, false
	}
	var est schema.ResourceEstimate
	if err := json.Unmarshal(data, &est); err != nil {
		logrus.WithField("hash", hash).WithError(err).Debug("Discarding undecodable cache entry")
		return schema.ResourceEstimate{}, false
	}
	if est.Provenance != schema.RemoteProvenance {
		return schema.ResourceEstimate{}, false
	}
	return est, true
}

// Put encodes and stores est under hash. Only remote estimates are persisted;
// heuristic fallbacks stay in the process cache so a later run retries the
// provider and picks up changed heuristic tables. Write failures are logged
// and ignored.
func (c *StoreCache) Put(hash string, est schema.ResourceEstimate) {
	if est.Provenance != schema.RemoteProvenance {
		return
	}
	data, err := json.Marshal(est)
	if err != nil {
		logrus.WithField("hash", hash).WithError(err).Debug("Cannot encode estimate for cache")
		return
	}
	if err := c.store.Set(hash, data, currentCacheVersion, time.Now().Unix()); err != nil {
		logrus.WithField("hash", hash).WithError(err).Debug("Cache write failed")
	}
}

// TieredCache checks a fast cache before a slow one and promotes slow hits.
type TieredCache struct {
	fast contract.EstimateCache
	slow contract.EstimateCache
}

var _ contract.EstimateCache = &TieredCache{} // Compile-time check

// NewTieredCache layers fast in front of slow.
func NewTieredCache(fast, slow contract.EstimateCache) *TieredCache {
	return &TieredCache{fast: fast, slow: slow}
}

// Get checks fast first, then slow.
func (c *TieredCache) Get(hash string) (schema.ResourceEstimate, bool) {
	if est, ok := c.fast.Get(hash); ok {
		return est, true
	}
	est, ok := c.slow.Get(hash)
	if ok {
		c.fast.Put(hash, est)
	}
	return est, ok
}

// Put writes through to both layers.
func (c *TieredCache) Put(hash string, est schema.ResourceEstimate) {
	c.fast.Put(hash, est)
	c.slow.Put(hash, est)
}
