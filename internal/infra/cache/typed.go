package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Typed is a view of a Service that stores values of T with one codec.
// The name labels metrics, logs and spans.
type Typed[T any] struct {
	svc   *Service
	name  string
	codec Codec[T]
}

// NewTyped creates a typed view of svc.
func NewTyped[T any](svc *Service, name string, codec Codec[T]) *Typed[T] {
	return &Typed[T]{svc: svc, name: name, codec: codec}
}

// Get returns the value stored under key. A missing key yields
// (zero, false, nil). A payload that cannot be decoded yields an error
// wrapping ErrCorruptEntry. Store failures are returned wrapped.
func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	ctx, span := t.svc.startSpan(ctx, "Get", t.name, key)
	defer span.End()

	raw, ok, err := t.svc.get(ctx, t.name, key)
	if err != nil {
		failSpan(span, err)
		return zero, false, err
	}
	span.SetAttributes(attribute.Bool("cache.hit", ok))
	if !ok {
		return zero, false, nil
	}

	v, err := t.codec.Decode(raw)
	if err != nil {
		t.svc.recorder.RecordCacheCorrupt(t.name)
		t.svc.logger.Warn("corrupt cache entry",
			zap.String("cache", t.name),
			zap.String("key", key),
			zap.Int("size", len(raw)),
			zap.Error(err),
		)
		err = fmt.Errorf("%w: key %q: %w", ErrCorruptEntry, key, err)
		failSpan(span, err)
		return zero, false, err
	}

	t.svc.recorder.RecordCacheHit(t.name)
	return v, true, nil
}

// Set stores v under key, replacing any existing entry. The entry expires
// ttl from now, or after the service default when ttl is omitted or not
// positive.
func (t *Typed[T]) Set(ctx context.Context, key string, v T, ttl ...time.Duration) error {
	ctx, span := t.svc.startSpan(ctx, "Set", t.name, key)
	defer span.End()

	raw, err := t.codec.Encode(v)
	if err != nil {
		err = fmt.Errorf("cache encode %q: %w", key, err)
		failSpan(span, err)
		return err
	}

	if err := t.svc.set(ctx, t.name, key, raw, ttl); err != nil {
		failSpan(span, err)
		return err
	}
	return nil
}

// Remove deletes key.
func (t *Typed[T]) Remove(ctx context.Context, key string) error {
	return t.svc.remove(ctx, t.name, key)
}

// GetOrLoad returns the cached value for key, calling load on a miss and
// caching its result. A corrupt entry is overwritten by the loaded value.
// When the store cannot be read, the loaded value is returned without being
// cached. Only load errors are returned.
func (t *Typed[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error), ttl ...time.Duration) (T, error) {
	v, ok, err := t.Get(ctx, key)
	switch {
	case err == nil && ok:
		return v, nil
	case err == nil, errors.Is(err, ErrCorruptEntry):
		// miss, or an entry to overwrite
	default:
		t.svc.logger.Warn("cache read failed, bypassing",
			zap.String("cache", t.name),
			zap.String("key", key),
			zap.Error(err),
		)
		return load(ctx)
	}

	loaded, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := t.Set(ctx, key, loaded, ttl...); err != nil {
		t.svc.logger.Warn("cache write failed",
			zap.String("cache", t.name),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return loaded, nil
}

// Get reads key from s as JSON encoded T.
func Get[T any](ctx context.Context, s *Service, key string) (T, bool, error) {
	return NewTyped(s, "default", JSON[T]()).Get(ctx, key)
}

// Set stores v under key in s as JSON.
func Set[T any](ctx context.Context, s *Service, key string, v T, ttl ...time.Duration) error {
	return NewTyped(s, "default", JSON[T]()).Set(ctx, key, v, ttl...)
}
