package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalimuclement/theory-access/internal/cache"
	"github.com/mwalimuclement/theory-access/internal/config"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	return New(c), mr
}

func TestOpenGetClose(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	rec := Record{UserID: "user-1", Role: "user", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Open(ctx, "jti-1", rec, time.Hour))

	got, found, err := store.Get(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "user", got.Role)

	require.NoError(t, store.Close(ctx, "jti-1"))

	_, found, err = store.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetUnknownSession(t *testing.T) {
	store, _ := setupStore(t)

	_, found, err := store.Get(context.Background(), "no-such-jti")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionExpires(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	rec := Record{UserID: "user-1", Role: "user", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Open(ctx, "jti-ttl", rec, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, "jti-ttl")
	require.NoError(t, err)
	assert.False(t, found)
}
