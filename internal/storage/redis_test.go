package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisStore(client, "meetingroom:")
}

func TestRedisStore_SetGet(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()

	err := store.Set(ctx, "acme_meetings", "[]")
	require.NoError(t, err)

	raw, err := mr.Get("meetingroom:acme_meetings")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	v, err := store.Get(ctx, "acme_meetings")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestRedisStore_Missing(t *testing.T) {
	_, store := setupRedisStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists("meetingroom:k"))

	// deleting again is fine
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, store := setupRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = store.Set(context.Background(), "k", "v")
	assert.ErrorIs(t, err, ErrUnavailable)
}
