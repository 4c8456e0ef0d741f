package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds the zap logger handed to domains and adapters.
// Format "text" selects the console encoder; anything else is JSON.
func NewZapLogger(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "text") {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel(cfg.Level))
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zcfg.Build()
}

func zapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// CursorField is the zap form of Cursor.
func CursorField(token string) zap.Field {
	return zap.Dict("cursor",
		zap.String("fingerprint", Fingerprint(token)),
		zap.Int("length", len(token)),
	)
}
