package logger

import (
	"context"
	"testing"

	"marketplace_onboarding/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("Release JSON", func(t *testing.T) {
		l, err := New(&config.Config{GinMode: "release", LogLevel: "warn", LogFormat: "json"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("Debug console", func(t *testing.T) {
		l, err := New(&config.Config{GinMode: "debug", LogLevel: "debug", LogFormat: "console"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	FromContext(context.Background(), base).Info("no id")
	FromContext(WithRequestID(context.Background(), "req-123"), base).Info("with id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "req-123", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "req-123", RequestIDFrom(WithRequestID(context.Background(), "req-123")))
	assert.Equal(t, "", RequestIDFrom(context.Background()))
}
