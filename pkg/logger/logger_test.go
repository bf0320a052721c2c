package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Levels(t *testing.T) {
	l, err := NewLogger(&LoggerConfig{Debug: true})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger(&LoggerConfig{})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	assert.Equal(t, zapcore.InfoLevel, Level(nil))
}

func TestNewLogger_ExtraOptions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l, err := NewLogger(&LoggerConfig{}, zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	require.NoError(t, err)

	l.Info("signed", zap.String("coin", "solana"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "solana", logs.All()[0].ContextMap()["coin"])
	assert.True(t, logs.All()[0].Caller.Defined)
}
