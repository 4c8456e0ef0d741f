package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/agora/server/internal/infra/config"
)

func TestNew_Disabled(t *testing.T) {
	tp, shutdown, err := New(context.Background(), &config.TracingConfig{Enabled: false})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestNew_Enabled(t *testing.T) {
	tp, shutdown, err := New(context.Background(), &config.TracingConfig{
		Enabled:      true,
		Endpoint:     "127.0.0.1:1",
		Insecure:     true,
		ServiceName:  "agora-test",
		SamplingRate: 1,
		BatchTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, tp)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
