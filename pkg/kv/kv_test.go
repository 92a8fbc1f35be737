package kv

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/db"
	_ "liyu1981.xyz/safetrack-monitor-service/pkg/testing"
)

// exerciseStore runs the same contract checks against any backend.
func exerciseStore(t *testing.T, store Store) {
	key := "test_" + uuid.NewString()

	_, ok, err := store.Get(key)
	require.NoError(t, err)
	assert.False(t, ok, "absent key should report ok=false")

	require.NoError(t, store.Set(key, `[{"id":"a"}]`))
	value, ok, err := store.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, value)

	// whole-blob replace
	require.NoError(t, store.Set(key, `[]`))
	value, _, err = store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.Remove(key))
	_, ok, err = store.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	// removing an absent key is not an error
	require.NoError(t, store.Remove(key))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreQuota(t *testing.T) {
	store := NewMemoryStore()
	store.Quota = 20

	require.NoError(t, store.Set("k", "0123456789"))
	assert.Equal(t, 11, store.Size())

	err := store.Set("k2", "0123456789")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// replacing an existing key only counts the new value
	require.NoError(t, store.Set("k", "0123456789abcdefgh"))

	_, ok, _ := store.Get("k2")
	assert.False(t, ok)
}

func TestMemoryStoreBroken(t *testing.T) {
	store := NewMemoryStore()
	store.Broken = true

	_, _, err := store.Get("k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Set("k", "v"), ErrUnavailable)
	assert.ErrorIs(t, store.Remove("k"), ErrUnavailable)
}

func TestSQLStore(t *testing.T) {
	common.SetTestLoggerNop()

	database, err := db.Open(db.UseMemorySqliteDialector(""))
	require.NoError(t, err)
	defer database.Close()

	exerciseStore(t, NewSQLStore(database))
}

func TestSQLStoreSharedBetweenHandles(t *testing.T) {
	common.SetTestLoggerNop()

	name := uuid.NewString()
	first, err := db.Open(db.UseMemorySqliteDialector(name))
	require.NoError(t, err)
	defer first.Close()
	second, err := db.Open(db.UseMemorySqliteDialector(name))
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, NewSQLStore(first).Set(common.StorageKeyAuth, "true"))

	value, ok, err := NewSQLStore(second).Get(common.StorageKeyAuth)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestRedisStore(t *testing.T) {
	if !common.IntegrationTestsEnabled() {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}

	addr := os.Getenv("SAFETRACK_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	store, err := NewRedisStore(addr, os.Getenv("SAFETRACK_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer store.Close()
	store.Prefix = "it:"

	exerciseStore(t, store)
}

func TestPostgresStore(t *testing.T) {
	if !common.IntegrationTestsEnabled() {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}

	connStr := os.Getenv("SAFETRACK_POSTGRES_URL")
	if connStr == "" {
		t.Skip("Skipping integration test: SAFETRACK_POSTGRES_URL not set")
	}

	store, err := NewPostgresStore(context.Background(), connStr)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}
