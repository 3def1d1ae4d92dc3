package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost-backend/pkg/kv"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := NewCache("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestCacheStringRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))

	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	removed, err := cache.Delete(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestCacheJSONRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		UserID    string    `json:"user_id"`
		CreatedAt time.Time `json:"created_at"`
	}

	stored := payload{UserID: "u-1", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, cache.SetJSON(ctx, "k", stored, time.Minute))

	var loaded payload
	require.NoError(t, cache.GetJSON(ctx, "k", &loaded))
	assert.Equal(t, stored, loaded)

	err := cache.GetJSON(ctx, "missing", &loaded)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestCacheSetJSONRejectsUnmarshalableValues(t *testing.T) {
	cache := newTestCache(t)

	err := cache.SetJSON(context.Background(), "k", make(chan int), time.Minute)
	assert.Error(t, err)
}
