package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"0", slog.LevelError},
		{"1", slog.LevelWarn},
		{"2", slog.LevelInfo},
		{"3", slog.LevelDebug},
		{"", slog.LevelWarn},
		{"debug", slog.LevelWarn},
		{"42", slog.LevelWarn},
		{"-1", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	original := Level()
	defer SetLogLevel(original)

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelError, slog.LevelInfo, slog.LevelWarn} {
		SetLogLevel(level)
		assert.Equal(t, level, Level())
	}
}

func TestLoggerHonoursLevel(t *testing.T) {
	original := Level()
	defer SetLogLevel(original)

	require.NotNil(t, Logger())
	assert.Same(t, Logger(), Logger())

	SetLogLevel(slog.LevelError)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelDebug))
	SetLogLevel(slog.LevelDebug)
	assert.True(t, Component("cache").Enabled(context.Background(), slog.LevelDebug))
}
