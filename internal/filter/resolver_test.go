package filter

import (
	"context"
	"testing"
	"time"

	"flowcrm-data/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCachedResolver(t *testing.T, inner LinkResolver) *CachedLinkResolver {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewCachedLinkResolver(inner, kv, time.Minute, zap.NewNop())
}

func TestCachedLinkResolver_SecondLookupHitsCache(t *testing.T) {
	inner := &fakeLinks{ids: map[string][]string{"u1": {"A1", "A2"}}}
	r := setupCachedResolver(t, inner)
	ctx := context.Background()

	ids, err := r.ResolveIndirectIDs(ctx, "agents", "user_id", "user_id", "u1", "agent_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, ids)

	ids, err = r.ResolveIndirectIDs(ctx, "agents", "user_id", "user_id", "u1", "agent_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, ids)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedLinkResolver_EmptySetStaysEmpty(t *testing.T) {
	inner := &fakeLinks{} // no linked records
	r := setupCachedResolver(t, inner)
	ctx := context.Background()

	ids, err := r.ResolveIndirectIDs(ctx, "agents", "user_id", "user_id", "u1", "agent_id")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// cached empty set still resolves empty, not "all rows"
	ids, err = r.ResolveIndirectIDs(ctx, "agents", "user_id", "user_id", "u1", "agent_id")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCachedLinkResolver_DistinctKeysPerUser(t *testing.T) {
	inner := &fakeLinks{ids: map[string][]string{"u1": {"A1"}, "u2": {"B7"}}}
	r := setupCachedResolver(t, inner)
	ctx := context.Background()

	ids1, err := r.ResolveIndirectIDs(ctx, "agents", "user_id", "user_id", "u1", "agent_id")
	require.NoError(t, err)
	ids2, err := r.ResolveIndirectIDs(ctx, "agents", "user_id", "user_id", "u2", "agent_id")
	require.NoError(t, err)

	assert.Equal(t, []string{"A1"}, ids1)
	assert.Equal(t, []string{"B7"}, ids2)
	assert.Equal(t, 2, inner.calls)
}
