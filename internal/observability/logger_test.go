package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	t.Run("defaults to info", func(t *testing.T) {
		logger, err := NewLogger("", "json")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("console debug", func(t *testing.T) {
		logger, err := NewLogger("DEBUG", "console")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewLogger("loud", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid log level "loud"`)
	})
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	scoped := zap.New(core).With(zap.String("request_id", "req-1"))
	fallback := zap.NewNop()

	t.Run("returns scoped logger", func(t *testing.T) {
		ctx := WithLogger(context.Background(), scoped)
		LoggerFromContext(ctx, fallback).Info("hello")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "hello", entry.Message)
		assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
	})

	t.Run("falls back", func(t *testing.T) {
		assert.Same(t, fallback, LoggerFromContext(context.Background(), fallback))
	})

	t.Run("nil fallback is a no-op logger", func(t *testing.T) {
		logger := LoggerFromContext(context.Background(), nil)
		require.NotNil(t, logger)
		logger.Info("discarded")
	})
}
