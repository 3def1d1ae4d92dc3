package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/inkpost/inkpost-backend/pkg/kv"
)

// Store is an in-memory implementation of kv.Store. A background janitor
// evicts expired keys; reads also check expiry so a stopped janitor never
// serves stale values.
type Store struct {
	mu          sync.RWMutex
	values      map[string][]byte
	expirations map[string]time.Time

	janitorInterval time.Duration
	janitorStop     chan struct{}
	janitorDone     chan struct{}
	closeOnce       sync.Once
}

// New creates an in-memory store. A janitorInterval of 0 disables the
// background cleanup.
func New(janitorInterval time.Duration) *Store {
	s := &Store{
		values:          make(map[string][]byte),
		expirations:     make(map[string]time.Time),
		janitorInterval: janitorInterval,
		janitorStop:     make(chan struct{}),
		janitorDone:     make(chan struct{}),
	}

	if janitorInterval > 0 {
		go s.janitor()
	} else {
		close(s.janitorDone)
	}

	return s
}

func (s *Store) janitor() {
	defer close(s.janitorDone)
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.janitorStop:
			return
		}
	}
}

func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiry := range s.expirations {
		if now.After(expiry) {
			delete(s.values, key)
			delete(s.expirations, key)
		}
	}
}

// isExpiredLocked reports whether a key has expired. Caller holds a lock.
func (s *Store) isExpiredLocked(key string) bool {
	expiry, exists := s.expirations[key]
	return exists && time.Now().After(expiry)
}

// Set stores a value with an optional TTL
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	s.values[key] = buf

	if len(ttl) > 0 && ttl[0] > 0 {
		s.expirations[key] = time.Now().Add(ttl[0])
	} else {
		delete(s.expirations, key)
	}
	return nil
}

// Get retrieves a value
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists || s.isExpiredLocked(key) {
		return nil, kv.ErrNotFound
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	return buf, nil
}

// SetString stores a string value with an optional TTL
func (s *Store) SetString(ctx context.Context, key string, value string, ttl ...time.Duration) error {
	return s.Set(ctx, key, []byte(value), ttl...)
}

// GetString retrieves a string value
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// Del removes keys and reports how many existed
func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for _, key := range keys {
		if _, exists := s.values[key]; exists && !s.isExpiredLocked(key) {
			removed++
		}
		delete(s.values, key)
		delete(s.expirations, key)
	}
	return removed, nil
}

// Exists reports how many of the keys exist
func (s *Store) Exists(ctx context.Context, keys ...string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, key := range keys {
		if _, exists := s.values[key]; exists && !s.isExpiredLocked(key) {
			count++
		}
	}
	return count, nil
}

// Expire sets a TTL on an existing key
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.values[key]; !exists || s.isExpiredLocked(key) {
		return false, nil
	}
	s.expirations[key] = time.Now().Add(ttl)
	return true, nil
}

// TTL returns the remaining lifetime of a key. -1 means no expiry, -2
// means the key does not exist, matching Redis semantics.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.values[key]; !exists || s.isExpiredLocked(key) {
		return -2, nil
	}
	expiry, exists := s.expirations[key]
	if !exists {
		return -1, nil
	}
	return time.Until(expiry), nil
}

// IncrBy atomically increments the integer value stored at key
func (s *Store) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if value, exists := s.values[key]; exists && !s.isExpiredLocked(key) {
		parsed, err := strconv.ParseInt(string(value), 10, 64)
		if err != nil {
			return 0, err
		}
		current = parsed
	}

	current += n
	s.values[key] = []byte(strconv.FormatInt(current, 10))
	return current, nil
}

// Ping always succeeds for the in-memory store
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close stops the janitor
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.janitorStop)
	})
	<-s.janitorDone
	return nil
}
