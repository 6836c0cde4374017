package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), &redis.Options{Addr: mr.Addr()}, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "session:abc", redisKey("abc"))
}

func TestRedisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	s, err := store.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.True(t, mr.Exists(redisKey(s.ID)))

	s.State.Index = 2
	s.State.Answers["Q1"] = "男性"
	s.State.Result = "ボストン型"
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 2, got.State.Index)
	assert.Equal(t, "男性", got.State.Answers["Q1"])
	assert.Equal(t, "ボストン型", got.State.Result)
	assert.Empty(t, got.State.ImageURL)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_FreshSessionHasAnswersMap(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, time.Hour)

	s, err := store.Create(ctx)
	require.NoError(t, err)
	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.State.Answers)
	assert.Empty(t, got.State.Answers)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)

	a, err := store.Create(ctx)
	require.NoError(t, err)
	b, err := store.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(redisKey(a.ID)))

	mr.FastForward(45 * time.Second)
	require.NoError(t, store.Save(ctx, b))

	mr.FastForward(30 * time.Second)
	_, err = store.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, b.ID)
	assert.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	require.NoError(t, mr.Set(redisKey("bad"), "{not json"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	// Берём свободный порт и сразу закрываем слушатель, подключение будет отклонено.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = NewRedisStore(ctx, &redis.Options{Addr: addr, MaxRetries: -1}, time.Minute)
	assert.ErrorContains(t, err, "redis ping")
}
