package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora/server/internal/port/outbound"
)

// flakyStore fails every call while down is set.
type flakyStore struct {
	down  bool
	calls int
}

var errUnreachable = errors.New("dial tcp: connection refused")

func (s *flakyStore) GetString(context.Context, string) (string, error) {
	s.calls++
	if s.down {
		return "", errUnreachable
	}
	return "", outbound.ErrCacheMiss
}

func (s *flakyStore) SetString(context.Context, string, string, outbound.CacheEntryOptions) error {
	s.calls++
	if s.down {
		return errUnreachable
	}
	return nil
}

func (s *flakyStore) Remove(context.Context, string) error {
	s.calls++
	if s.down {
		return errUnreachable
	}
	return nil
}

type stateRecorder struct {
	states []int
}

func (r *stateRecorder) SetBreakerState(_ string, state int) {
	r.states = append(r.states, state)
}

func TestBreakerCacheStore_OpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	next := &flakyStore{down: true}
	rec := &stateRecorder{}
	store := NewBreakerCacheStore(next, BreakerOptions{
		Name:             "redis",
		FailureThreshold: 3,
		Timeout:          time.Minute,
	}, nil, rec)

	for i := 0; i < 3; i++ {
		_, err := store.GetString(ctx, "k")
		assert.ErrorIs(t, err, errUnreachable)
	}
	assert.Equal(t, "open", store.State())

	_, err := store.GetString(ctx, "k")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls, "open breaker must not reach the store")

	assert.ErrorIs(t, store.SetString(ctx, "k", "v", outbound.CacheEntryOptions{}), gobreaker.ErrOpenState)
	assert.ErrorIs(t, store.Remove(ctx, "k"), gobreaker.ErrOpenState)

	require.Len(t, rec.states, 2)
	assert.Equal(t, int(gobreaker.StateClosed), rec.states[0])
	assert.Equal(t, int(gobreaker.StateOpen), rec.states[1])
}

func TestBreakerCacheStore_MissesAreHealthy(t *testing.T) {
	ctx := context.Background()
	next := &flakyStore{}
	store := NewBreakerCacheStore(next, BreakerOptions{FailureThreshold: 2}, nil, nil)

	for i := 0; i < 10; i++ {
		_, err := store.GetString(ctx, "k")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
	}
	assert.Equal(t, "closed", store.State())
	assert.Equal(t, 10, next.calls)
}

func TestBreakerCacheStore_SuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	next := &flakyStore{down: true}
	store := NewBreakerCacheStore(next, BreakerOptions{FailureThreshold: 3}, nil, nil)

	_ = store.Remove(ctx, "k")
	_ = store.Remove(ctx, "k")
	next.down = false
	require.NoError(t, store.Remove(ctx, "k"))
	next.down = true
	_ = store.Remove(ctx, "k")
	_ = store.Remove(ctx, "k")

	assert.Equal(t, "closed", store.State())
}

func TestIsSuccessful(t *testing.T) {
	assert.True(t, isSuccessful(nil))
	assert.True(t, isSuccessful(outbound.ErrCacheMiss))
	assert.True(t, isSuccessful(context.Canceled))
	assert.False(t, isSuccessful(errUnreachable))
	assert.False(t, isSuccessful(context.DeadlineExceeded))
}
