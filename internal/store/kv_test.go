package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetSet(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "links:agents:user-1")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "links:agents:user-1", `["A1","A2"]`, time.Minute))

	val, err := kv.Get(ctx, "links:agents:user-1")
	require.NoError(t, err)
	assert.Equal(t, `["A1","A2"]`, val)
}

func TestRedisKV_Delete(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "health:res-1", "healthy", 0))
	require.NoError(t, kv.Delete(ctx, "health:res-1"))

	_, err := kv.Get(ctx, "health:res-1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanKeys(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "health:res-1", "healthy", 0))
	require.NoError(t, kv.Set(ctx, "health:res-2", "unhealthy", 0))
	require.NoError(t, kv.Set(ctx, "links:agents:user-1", "[]", 0))

	keys, err := kv.ScanKeys(ctx, "health:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
