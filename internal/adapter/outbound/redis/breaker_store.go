package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/agora/server/internal/port/outbound"
)

// BreakerOptions configures BreakerCacheStore.
type BreakerOptions struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// StateRecorder observes breaker state transitions.
type StateRecorder interface {
	SetBreakerState(name string, state int)
}

// BreakerCacheStore guards a cache store with a circuit breaker. While open,
// calls fail fast with gobreaker.ErrOpenState instead of waiting on the store.
type BreakerCacheStore struct {
	next outbound.CacheStorePort
	cb   *gobreaker.CircuitBreaker[string]
}

var _ outbound.CacheStorePort = (*BreakerCacheStore)(nil)

// NewBreakerCacheStore wraps next. recorder may be nil.
func NewBreakerCacheStore(next outbound.CacheStorePort, opts BreakerOptions, logger *zap.Logger, recorder StateRecorder) *BreakerCacheStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = "cache"
	}
	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if recorder != nil {
				recorder.SetBreakerState(name, int(to))
			}
		},
		IsSuccessful: isSuccessful,
	}

	if recorder != nil {
		recorder.SetBreakerState(opts.Name, int(gobreaker.StateClosed))
	}

	return &BreakerCacheStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Misses and caller cancellations say nothing about store health.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, outbound.ErrCacheMiss) ||
		errors.Is(err, context.Canceled)
}

func (s *BreakerCacheStore) GetString(ctx context.Context, key string) (string, error) {
	val, err := s.cb.Execute(func() (string, error) {
		return s.next.GetString(ctx, key)
	})
	return val, s.wrap(err)
}

func (s *BreakerCacheStore) SetString(ctx context.Context, key, value string, opts outbound.CacheEntryOptions) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.next.SetString(ctx, key, value, opts)
	})
	return s.wrap(err)
}

func (s *BreakerCacheStore) Remove(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (string, error) {
		return "", s.next.Remove(ctx, key)
	})
	return s.wrap(err)
}

// State returns the current breaker state name.
func (s *BreakerCacheStore) State() string {
	return s.cb.State().String()
}

func (s *BreakerCacheStore) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("cache store %s: %w", s.cb.Name(), err)
	}
	return err
}

// Ping checks the wrapped store directly, bypassing the breaker.
func (s *BreakerCacheStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
