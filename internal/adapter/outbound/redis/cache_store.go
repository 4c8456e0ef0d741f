package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agora/server/internal/port/outbound"
)

// CacheStore implements outbound.CacheStorePort on Redis strings.
type CacheStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ outbound.CacheStorePort = (*CacheStore)(nil)

// NewCacheStore creates a cache store whose keys are namespaced by prefix.
func NewCacheStore(client redis.UniversalClient, prefix string) *CacheStore {
	return &CacheStore{client: client, prefix: prefix, now: time.Now}
}

func (s *CacheStore) key(key string) string {
	return s.prefix + key
}

func (s *CacheStore) GetString(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", outbound.ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (s *CacheStore) SetString(ctx context.Context, key, value string, opts outbound.CacheEntryOptions) error {
	if opts.AbsoluteExpiration.IsZero() {
		return s.client.Set(ctx, s.key(key), value, 0).Err()
	}

	// An entry that is already expired must not survive the write.
	if !opts.AbsoluteExpiration.After(s.now()) {
		return s.client.Del(ctx, s.key(key)).Err()
	}

	return s.client.SetArgs(ctx, s.key(key), value, redis.SetArgs{
		ExpireAt: opts.AbsoluteExpiration,
	}).Err()
}

func (s *CacheStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Ping checks the connection.
func (s *CacheStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
