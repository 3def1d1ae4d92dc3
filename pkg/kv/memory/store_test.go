package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost-backend/pkg/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(0)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetDel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetString(ctx, "k", "v"))

	value, err := s.GetString(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	removed, err := s.Del(ctx, "k", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = s.GetString(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestExpiredKeysAreInvisible(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetString(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	count, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTTLSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ttl, err := s.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-2), ttl)

	require.NoError(t, s.SetString(ctx, "forever", "v"))
	ttl, err = s.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, s.SetString(ctx, "bounded", "v", time.Hour))
	ttl, err = s.TTL(ctx, "bounded")
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}

func TestExpire(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Expire(ctx, "missing", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetString(ctx, "k", "v"))
	ok, err = s.Expire(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIncrBy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.IncrBy(ctx, "counter", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.IncrBy(ctx, "counter", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
