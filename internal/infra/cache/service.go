// Package cache provides typed cache-aside access over a string key-value
// store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agora/server/internal/port/outbound"
)

// DefaultTTL is the lifetime of entries stored without an explicit TTL.
const DefaultTTL = 15 * time.Minute

// TracerName is the instrumentation scope of cache spans.
const TracerName = "github.com/agora/server/internal/infra/cache"

// ErrCorruptEntry is wrapped by errors for stored payloads that cannot be
// decoded into the requested type.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Recorder receives cache outcome counts.
type Recorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordCacheCorrupt(cache string)
	RecordCacheError(cache, op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit(string) {}
func (nopRecorder) RecordCacheMiss(string) {}
func (nopRecorder) RecordCacheCorrupt(string) {}
func (nopRecorder) RecordCacheError(string, string) {}

// Service wraps a CacheStorePort with TTL policy and instrumentation.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	store      outbound.CacheStorePort
	defaultTTL time.Duration
	now        func() time.Time
	recorder   Recorder
	logger     *zap.Logger
	tracer     trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultTTL sets the TTL used when Set is called without one.
// Non-positive values are ignored.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// WithClock sets the time source used to compute absolute expirations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer. The global provider's tracer is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService creates a cache service over store.
func NewService(store outbound.CacheStorePort, opts ...Option) *Service {
	s := &Service{
		store:      store,
		defaultTTL: DefaultTTL,
		now:        time.Now,
		recorder:   nopRecorder{},
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultTTL returns the TTL applied when none is given.
func (s *Service) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Service) Remove(ctx context.Context, key string) error {
	return s.remove(ctx, "default", key)
}

func (s *Service) expiresAt(ttl []time.Duration) time.Time {
	d := s.defaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		d = ttl[0]
	}
	return s.now().Add(d)
}

func (s *Service) startSpan(ctx context.Context, op, name, key string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "cache."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("cache.name", name),
			attribute.String("cache.key", key),
		),
	)
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// get returns the raw entry for key. A miss is (_, false, nil).
func (s *Service) get(ctx context.Context, name, key string) (string, bool, error) {
	raw, err := s.store.GetString(ctx, key)
	if errors.Is(err, outbound.ErrCacheMiss) {
		s.recorder.RecordCacheMiss(name)
		return "", false, nil
	}
	if err != nil {
		s.recorder.RecordCacheError(name, "get")
		return "", false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return raw, true, nil
}

func (s *Service) set(ctx context.Context, name, key, value string, ttl []time.Duration) error {
	opts := outbound.CacheEntryOptions{AbsoluteExpiration: s.expiresAt(ttl)}
	if err := s.store.SetString(ctx, key, value, opts); err != nil {
		s.recorder.RecordCacheError(name, "set")
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (s *Service) remove(ctx context.Context, name, key string) error {
	ctx, span := s.startSpan(ctx, "Remove", name, key)
	defer span.End()

	if err := s.store.Remove(ctx, key); err != nil {
		s.recorder.RecordCacheError(name, "remove")
		err = fmt.Errorf("cache remove %q: %w", key, err)
		failSpan(span, err)
		return err
	}
	return nil
}
