package iocache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/footprint/schema"
)

func resetGlobals() {
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &StoreManager{}
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite files", func(t *testing.T) {
		resetGlobals()
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))
		assert.NotNil(t, Manager.GetCacheStore())
		assert.NotNil(t, Manager.GetRecordStore())

		// Repeated init is a no-op
		require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
		assert.NotNil(t, Manager.GetCacheStore())

		CloseStores()
		CloseStores()

		_, err := os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should exist")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history database file should exist")
	})

	t.Run("none backends", func(t *testing.T) {
		resetGlobals()
		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		assert.Nil(t, Manager.GetCacheStore())
		assert.Nil(t, Manager.GetRecordStore())
		CloseStores()
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetGlobals()
		err := InitStores("oracle", "", schema.NoneBackend, "")
		assert.Error(t, err)
		assert.Nil(t, Manager.GetCacheStore())
	})
}

func TestStoreManagerConcurrency(t *testing.T) {
	resetGlobals()
	require.NoError(t, InitStores(schema.SQLiteBackend, ":memory:", schema.NoneBackend, ""))
	defer CloseStores()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, Manager.GetCacheStore())
			assert.Nil(t, Manager.GetRecordStore())
		}()
	}
	wg.Wait()
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(estimateTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path))
	assert.NoError(t, ClearCache(schema.SQLiteBackend, ":memory:"))
	assert.NoError(t, ClearCache(schema.NoneBackend, ""))
	assert.Error(t, ClearCache("oracle", ""))
}

func TestClearHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewRecordStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(context.Background(), schema.SQLiteBackend, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ClearHistory(context.Background(), schema.NoneBackend, ""))
	assert.Error(t, ClearHistory(context.Background(), "oracle", ""))
}

func TestDBFilePaths(t *testing.T) {
	assert.Contains(t, GetCacheDBFilePath(), ".footprint_cache.db")
	assert.Contains(t, GetHistoryDBFilePath(), ".footprint_history.db")
}
