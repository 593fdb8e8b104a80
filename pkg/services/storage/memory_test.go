package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/postgres-ai/askdb/pkg/config"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	entry, err := s.Get(ctx, "schema")
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, s.Set(ctx, "schema", "TABLE Customers", 0))

	entry, err = s.Get(ctx, "schema")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "TABLE Customers", entry.Text)
	assert.True(t, entry.ExpiresAt.IsZero())

	require.NoError(t, s.Set(ctx, "short", "TABLE Plots", time.Nanosecond))
	time.Sleep(time.Millisecond)

	entry, err = s.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestNew(t *testing.T) {
	store, err := New(config.Storage{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = New(config.Storage{Driver: DriverFile, FilePath: "missing-storage.json"})
	require.NoError(t, err)
	assert.IsType(t, &JSONTextStore{}, store)

	store, err = New(config.Storage{Driver: DriverRedis, RedisAddr: "localhost:6379"})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	_, err = New(config.Storage{Driver: "etcd"})
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ASKDB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ASKDB_TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}))

	require.NoError(t, s.Set(ctx, "test:schema", "TABLE Customers", time.Minute))

	entry, err := s.Get(ctx, "test:schema")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "TABLE Customers", entry.Text)

	entry, err = s.Get(ctx, "test:missing")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
