package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/inkpost/inkpost-backend/internal/store"
	"github.com/inkpost/inkpost-backend/pkg/kv"
)

// ErrInvalidSession is returned for missing, expired, or revoked tokens
var ErrInvalidSession = errors.New("invalid session")

const sessionKeyPrefix = "session:"

// Session is the record stored behind a token
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionManager issues opaque bearer tokens that map to session records
// in the cache, expiring after the configured TTL.
type SessionManager struct {
	cache *store.Cache
	ttl   time.Duration
}

// NewSessionManager creates a session manager with the given token TTL
func NewSessionManager(cache *store.Cache, ttl time.Duration) *SessionManager {
	return &SessionManager{cache: cache, ttl: ttl}
}

// Create issues a new token for the user
func (m *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	session := Session{UserID: userID, CreatedAt: time.Now().UTC()}
	if err := m.cache.SetJSON(ctx, sessionKeyPrefix+token, session, m.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Resolve returns the user ID behind a token
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}

	var session Session
	if err := m.cache.GetJSON(ctx, sessionKeyPrefix+token, &session); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", ErrInvalidSession
		}
		return "", err
	}

	return session.UserID, nil
}

// Revoke invalidates a token. Revoking an unknown token is not an error.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	_, err := m.cache.Delete(ctx, sessionKeyPrefix+token)
	return err
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
