package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_UnknownLevelAndFormatFallBack(t *testing.T) {
	// unknown values must not fail construction: level defaults to info,
	// format defaults to json
	log, err := NewLogger("shouting", "yaml", "flowcrm-data")
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	log, err := NewLogger("debug", "console", "flowcrm-data")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerWithDefaults(t *testing.T) {
	log, err := NewLoggerWithDefaults()
	require.NoError(t, err)
	assert.NotNil(t, log)
}
