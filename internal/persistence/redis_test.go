package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/token-service/internal/config"
	"github.com/spec-kit/token-service/internal/domain"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(store.Close)
	return store, mr
}

func TestRedis_SetGetDelete(t *testing.T) {
	store, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))

	val, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", val)

	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"), "deleting a missing key is not an error")

	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_SetWithExpirationEvicts(t *testing.T) {
	store, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithExpiration(ctx, "k", "v", time.Second))
	assert.Equal(t, time.Second, mr.TTL("k"))

	mr.FastForward(1100 * time.Millisecond)

	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_SetWithExpirationRejectsNonPositiveTTL(t *testing.T) {
	store, mr := newTestRedis(t)

	require.Error(t, store.SetWithExpiration(context.Background(), "k", "v", 0))
	assert.False(t, mr.Exists("k"))
}

func TestRedis_TransportFailureIsStoreUnavailable(t *testing.T) {
	store, mr := newTestRedis(t)
	ctx := context.Background()
	mr.Close()

	_, _, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = store.Exists(ctx, "k")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	require.ErrorIs(t, store.SetWithExpiration(ctx, "k", "v", time.Minute), domain.ErrStoreUnavailable)
	require.ErrorIs(t, store.Delete(ctx, "k"), domain.ErrStoreUnavailable)
}

func TestNewRedis_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	store := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
}

func TestRedis_PingWithoutClient(t *testing.T) {
	var store *Redis
	require.Error(t, store.Ping(context.Background()))
}
