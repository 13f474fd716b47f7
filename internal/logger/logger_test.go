package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn line")
	l.Errorf("error %d", 42)

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "WARN: ")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error 42")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
}

func TestFileLoggerSplitsErrors(t *testing.T) {
	dir := t.TempDir()
	l, err := NewFileLogger(dir, LevelInfo)
	require.NoError(t, err)

	l.Info("hello combined")
	l.Error("boom")
	require.NoError(t, l.Close())

	combined, err := os.ReadFile(filepath.Join(dir, "combined.log"))
	require.NoError(t, err)
	errorLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)

	assert.Contains(t, string(combined), "hello combined")
	assert.Contains(t, string(combined), "boom")
	assert.Contains(t, string(errorLog), "boom")
	assert.NotContains(t, string(errorLog), "hello combined")
}
