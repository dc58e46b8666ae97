package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundloom/scriptnode/pkg/store"
	"github.com/soundloom/scriptnode/pkg/store/redis"
	"github.com/soundloom/scriptnode/pkg/store/storetest"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	storetest.RunStoreContract(t, redis.NewFromClient(newTestClient(t)))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	s := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "fleeting", store.Preset{Script: "function node_render(a, m) end"}))
	_, err = s.Load(ctx, "fleeting")
	assert.NoError(t, err)

	// miniredis advances TTLs manually.
	mr.FastForward(2 * time.Second)

	_, err = s.Load(ctx, "fleeting")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	client := newTestClient(t)
	a := redis.NewFromClient(client, redis.WithPrefix("a:"))
	b := redis.NewFromClient(client, redis.WithPrefix("b:"))
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, "one", store.Preset{Script: "-- a"}))
	_, err := b.Load(ctx, "one")
	assert.ErrorIs(t, err, store.ErrNotFound)

	names, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
