package outbound

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by cache stores when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheEntryOptions carries per-entry storage options.
type CacheEntryOptions struct {
	// AbsoluteExpiration is the instant after which the entry is gone.
	// The zero value means no expiration.
	AbsoluteExpiration time.Time
}

// CacheStorePort is a string keyed, string valued store.
type CacheStorePort interface {
	// GetString returns the value for key, or ErrCacheMiss.
	GetString(ctx context.Context, key string) (string, error)

	// SetString stores value under key, replacing any previous entry.
	SetString(ctx context.Context, key, value string, opts CacheEntryOptions) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
