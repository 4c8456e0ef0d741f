package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("creates with default config", func(t *testing.T) {
		l := New(nil)
		assert.NotNil(t, l)
		assert.NotNil(t, l.Logger)
	})

	t.Run("json output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "info", Format: "json", Output: buf})

		l.Info("listing served", "items", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "listing served", entry["msg"])
		assert.Equal(t, float64(3), entry["items"])
	})

	t.Run("text output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "info", Format: "text", Output: buf})

		l.Info("test message")
		assert.Contains(t, buf.String(), "test message")
		assert.False(t, strings.HasPrefix(buf.String(), "{"))
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "warn", Format: "json", Output: buf})

		l.Info("dropped")
		assert.Empty(t, buf.String())

		l.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	l.With("request_id", "abc").Info("test message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
}

func TestLogger_Context(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		l := New(&Config{Level: "info", Format: "json", Output: &bytes.Buffer{}})
		ctx := ContextWithLogger(context.Background(), l)
		assert.Equal(t, l, FromContext(ctx))
	})

	t.Run("default when not set", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input).String())
		})
	}
}

func TestErr(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	l.Error("operation failed", Err(assert.AnError))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry["error"], "assert.AnError")
}

func TestCursor(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	token := "MjAyNC0wMS0wMlQwMzowNDowNVosNDI"
	l.Info("page served", Cursor(token))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	group, ok := entry["cursor"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, Fingerprint(token), group["fingerprint"])
	assert.Equal(t, float64(len(token)), group["length"])
	assert.NotContains(t, buf.String(), token)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("cursor-a")
	assert.Len(t, a, 12)
	assert.Equal(t, a, Fingerprint("cursor-a"))
	assert.NotEqual(t, a, Fingerprint("cursor-b"))
}

func TestCursorField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zap.New(core).Debug("ignoring malformed cursor", CursorField("bad-token"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	group, ok := fields["cursor"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, Fingerprint("bad-token"), group["fingerprint"])
	assert.Equal(t, int64(len("bad-token")), group["length"])
}

func TestNewZapLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		zl, err := NewZapLogger(&Config{Level: "debug", Format: "json"})
		require.NoError(t, err)
		assert.True(t, zl.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("text uses info by default", func(t *testing.T) {
		zl, err := NewZapLogger(&Config{Format: "text"})
		require.NoError(t, err)
		assert.False(t, zl.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, zl.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("nil config", func(t *testing.T) {
		zl, err := NewZapLogger(nil)
		require.NoError(t, err)
		assert.NotNil(t, zl)
	})
}
