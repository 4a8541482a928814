// ABOUTME: Tests for logger initialization and level parsing.
package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerNeverNil(t *testing.T) {
	require.NotNil(t, Logger)
	Logger.Debugw("safe before Initialize", "k", 1)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestInitialize(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	require.NoError(t, Initialize(false, "debug"))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Initialize(true, "warn"))
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, Initialize(false, "chatty"))
}
