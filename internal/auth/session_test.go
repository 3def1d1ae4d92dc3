package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost-backend/internal/store"
)

func newTestSessions(t *testing.T, ttl time.Duration) *SessionManager {
	t.Helper()

	cache, err := store.NewCache("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return NewSessionManager(cache, ttl)
}

func TestSessionLifecycle(t *testing.T) {
	sessions := newTestSessions(t, time.Hour)
	ctx := context.Background()

	token, err := sessions.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, sessions.Revoke(ctx, token))

	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveRejectsUnknownToken(t *testing.T) {
	sessions := newTestSessions(t, time.Hour)

	_, err := sessions.Resolve(context.Background(), "made-up-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = sessions.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestTokensAreUnique(t *testing.T) {
	sessions := newTestSessions(t, time.Hour)
	ctx := context.Background()

	a, err := sessions.Create(ctx, "user-1")
	require.NoError(t, err)
	b, err := sessions.Create(ctx, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
