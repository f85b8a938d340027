package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytalle/storefront/internal/core/ports"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, "", ttl), mr
}

func TestSessionStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Hour)

	_, err := store.Get(ctx, "vytalle_session")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "vytalle_session", `{"token":"t"}`))
	v, err := store.Get(ctx, "vytalle_session")
	require.NoError(t, err)
	assert.Equal(t, `{"token":"t"}`, v)
	assert.True(t, mr.Exists("storefront:session:vytalle_session"))

	require.NoError(t, store.Delete(ctx, "vytalle_session"))
	require.NoError(t, store.Delete(ctx, "vytalle_session"), "delete is idempotent")
	_, err = store.Get(ctx, "vytalle_session")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestSessionStore_KeysExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Minute)

	require.NoError(t, store.Set(ctx, "k", "v"))
	mr.FastForward(time.Minute + time.Second)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestSessionStore_ScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, 0)
	a, b := store.Scope("a"), store.Scope("b")

	require.NoError(t, a.Set(ctx, "vytalle_session", "one"))
	_, err := b.Get(ctx, "vytalle_session")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
	assert.True(t, mr.Exists("storefront:session:a:vytalle_session"))
}

func TestSessionStore_ServerErrorIsWrapped(t *testing.T) {
	store, mr := newTestStore(t, 0)
	mr.SetError("LOADING redis is loading")

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrKeyNotFound))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = Connect(context.Background(), Config{Addr: mr.Addr(), Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
