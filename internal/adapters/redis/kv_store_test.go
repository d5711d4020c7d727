package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_SetGetRemove(t *testing.T) {
	client := setupTestRedis(t)
	kv := NewKVStore(client, 0)
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "careconnect:test:missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "careconnect:test:k", "v1"))
	require.NoError(t, kv.Set(ctx, "careconnect:test:k", "v2"))

	val, found, err := kv.Get(ctx, "careconnect:test:k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", val)

	require.NoError(t, kv.Remove(ctx, "careconnect:test:k"))
	require.NoError(t, kv.Remove(ctx, "careconnect:test:k"))

	_, found, err = kv.Get(ctx, "careconnect:test:k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKVStore_TTL(t *testing.T) {
	client := setupTestRedis(t)
	kv := NewKVStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "careconnect:test:ttl", "x"))
	assert.Greater(t, client.TTL(ctx, "careconnect:test:ttl").Val(), 59*time.Minute)
}

func TestKVStore_EmptyKey(t *testing.T) {
	client := setupTestRedis(t)
	kv := NewKVStore(client, 0)
	ctx := context.Background()

	require.Error(t, kv.Set(ctx, "", "x"))
	require.Error(t, kv.Remove(ctx, ""))
	_, _, err := kv.Get(ctx, "")
	require.Error(t, err)
}
