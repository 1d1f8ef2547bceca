package codestore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/foodduck/internal/common"
)

// harness pairs a Store with a way to move its clock forward.
type harness struct {
	store   Store
	advance func(time.Duration)
}

func newRedisHarness(t *testing.T) harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return harness{store: NewRedisStore(client), advance: mr.FastForward}
}

func newMemoryHarness(t *testing.T) harness {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(func() time.Time { return now })
	return harness{store: s, advance: func(d time.Duration) { now = now.Add(d) }}
}

func forEachStore(t *testing.T, fn func(t *testing.T, h harness)) {
	t.Run("redis", func(t *testing.T) { fn(t, newRedisHarness(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, newMemoryHarness(t)) })
}

func TestKey(t *testing.T) {
	assert.Equal(t, "temp-password:a@b.com", Key(PurposeTempPassword, "a@b.com"))
	assert.Equal(t, "email-verify:a@b.com", Key(PurposeEmailVerify, "a@b.com"))
}

func TestStore_SetGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()
		require.NoError(t, h.store.Set(ctx, "k", "12345", time.Minute))

		v, err := h.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "12345", v)
	})
}

func TestStore_GetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		_, err := h.store.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestStore_SetOverwrites(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()
		require.NoError(t, h.store.Set(ctx, "k", "11111", time.Minute))
		require.NoError(t, h.store.Set(ctx, "k", "22222", time.Minute))

		v, err := h.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "22222", v)
	})
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()
		require.NoError(t, h.store.Set(ctx, "k", "v", 5*time.Minute))

		h.advance(4 * time.Minute)
		_, err := h.store.Get(ctx, "k")
		require.NoError(t, err)

		h.advance(2 * time.Minute)
		_, err = h.store.Get(ctx, "k")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestStore_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()
		require.NoError(t, h.store.Set(ctx, "k", "v", time.Minute))
		require.NoError(t, h.store.Delete(ctx, "k"))

		_, err := h.store.Get(ctx, "k")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		assert.NoError(t, h.store.Delete(ctx, "k"), "deleting a missing key is not an error")
	})
}

func TestStore_ExpireExtends(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()
		require.NoError(t, h.store.Set(ctx, "k", "v", time.Minute))
		require.NoError(t, h.store.Expire(ctx, "k", 10*time.Minute))

		h.advance(5 * time.Minute)
		v, err := h.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)

		assert.NoError(t, h.store.Expire(ctx, "missing", time.Minute))
	})
}

func TestMemoryStore_SetSweepsUnreadExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(func() time.Time { return now })

	require.NoError(t, s.Set(ctx, Key(PurposeLogout, "jti-1"), "a@b.com", time.Second))
	require.NoError(t, s.Set(ctx, Key(PurposeLogout, "jti-2"), "a@b.com", time.Hour))
	require.NoError(t, s.Set(ctx, "forever", "x", 0))

	now = now.Add(2 * sweepInterval)
	require.NoError(t, s.Set(ctx, Key(PurposeLogout, "jti-3"), "a@b.com", time.Hour))

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.NotContains(t, s.items, Key(PurposeLogout, "jti-1"))
	assert.Contains(t, s.items, Key(PurposeLogout, "jti-2"))
	assert.Contains(t, s.items, "forever")
	assert.Len(t, s.items, 3)
}

func TestRedisStore_SetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client)
	require.NoError(t, s.Set(context.Background(), "temp-password:a@b.com", "12345", 5*time.Minute))

	assert.Equal(t, 5*time.Minute, mr.TTL("temp-password:a@b.com"))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	s := NewRedisStore(client)
	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	c, err := NewRedisClient(context.Background(), Options{Addr: addr})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	mr.Close()
	_, err = NewRedisClient(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}
