package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIdempotency(t *testing.T) (*miniredis.Miniredis, IdempotencyStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, NewIdempotencyService(rdb, time.Hour)
}

func TestIdempotency_Lifecycle(t *testing.T) {
	mr, store := setupIdempotency(t)
	ctx := context.Background()

	briefID, reserved, err := store.Reserve(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, briefID)

	// a concurrent retry sees the pending marker
	briefID, reserved, err = store.Reserve(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, briefID)

	require.NoError(t, store.Complete(ctx, "user-1", "key-1", "brief-1"))

	briefID, reserved, err = store.Reserve(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "brief-1", briefID)

	assert.True(t, mr.Exists("idem:create-brief:user-1:key-1"))
	assert.Greater(t, mr.TTL("idem:create-brief:user-1:key-1"), time.Duration(0))
}

func TestIdempotency_KeysAreScopedPerUser(t *testing.T) {
	_, store := setupIdempotency(t)
	ctx := context.Background()

	_, reserved, err := store.Reserve(ctx, "user-1", "same")
	require.NoError(t, err)
	assert.True(t, reserved)

	_, reserved, err = store.Reserve(ctx, "user-2", "same")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotency_Release(t *testing.T) {
	mr, store := setupIdempotency(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "user-1", "key-1")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "user-1", "key-1"))
	assert.False(t, mr.Exists("idem:create-brief:user-1:key-1"))

	_, reserved, err := store.Reserve(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotency_Expiry(t *testing.T) {
	mr, store := setupIdempotency(t)
	ctx := context.Background()

	require.NoError(t, store.Complete(ctx, "user-1", "key-1", "brief-1"))
	mr.FastForward(2 * time.Hour)

	_, reserved, err := store.Reserve(ctx, "user-1", "key-1")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotency_RedisDown(t *testing.T) {
	mr, store := setupIdempotency(t)
	mr.Close()

	_, _, err := store.Reserve(context.Background(), "user-1", "key-1")
	assert.Error(t, err)
}
