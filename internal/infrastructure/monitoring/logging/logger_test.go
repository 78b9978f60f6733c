package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Defaults(t *testing.T) {
	logger, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewLogger_InvalidOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"unknown-scheme://x"}})
	assert.Error(t, err)
}

func TestLogger_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromCore(core)

	logger.Info("canonicalized dataset",
		String("path", "in.csv"),
		Int("rows", 42),
		Float64("similarity", 0.87),
		Bool("remove_salts", true),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "canonicalized dataset", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "in.csv", fields["path"])
	assert.Equal(t, int64(42), fields["rows"])
	assert.Equal(t, 0.87, fields["similarity"])
	assert.Equal(t, true, fields["remove_salts"])
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromCore(core).With(String("run_id", "abc"))

	logger.Warn("dropping invalid molecules", Int("count", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["run_id"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["count"])
}

func TestErrField(t *testing.T) {
	assert.Equal(t, "error", Err(nil).Key)
	assert.Equal(t, "<nil>", Err(nil).Value)
	assert.Equal(t, assert.AnError.Error(), Err(assert.AnError).Value)
}

func TestDefaultLogger(t *testing.T) {
	// The zero default must be usable without panicking.
	Default().Info("noop")

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	Default().Info("hello")
	require.Len(t, logs.All(), 1)

	// Restore the nop default for other tests.
	SetDefault(NewNopLogger())

	// SetDefault(nil) must be ignored.
	SetDefault(nil)
	Default().Info("still noop")
}
