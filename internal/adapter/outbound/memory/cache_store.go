package memory

import (
	"context"
	"sync"
	"time"

	"github.com/agora/server/internal/port/outbound"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// CacheStore is an in-process outbound.CacheStorePort for development and
// tests. Expired entries are dropped lazily on read.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

var _ outbound.CacheStorePort = (*CacheStore)(nil)

// NewCacheStore creates an empty store.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]cacheEntry), now: time.Now}
}

// NewCacheStoreWithClock creates an empty store that reads time from now.
func NewCacheStoreWithClock(now func() time.Time) *CacheStore {
	s := NewCacheStore()
	s.now = now
	return s
}

func (s *CacheStore) GetString(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", outbound.ErrCacheMiss
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", outbound.ErrCacheMiss
	}
	return e.value, nil
}

func (s *CacheStore) SetString(ctx context.Context, key, value string, opts outbound.CacheEntryOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cacheEntry{value: value, expiresAt: opts.AbsoluteExpiration}
	return nil
}

func (s *CacheStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
