package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" DEBUG ": zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestNew(t *testing.T) {
	for _, json := range []bool{false, true} {
		l, err := New(Config{Level: "warn", JSON: json})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	}
}

func TestInitReplacesGlobal(t *testing.T) {
	previous := Log
	t.Cleanup(func() { Log = previous })

	l, err := Init(Config{Level: "debug", Service: "test"})
	require.NoError(t, err)
	assert.Same(t, l, Log)
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))
	Sync()
}
