package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLines parses every JSON line written to buf.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "line: %s", scanner.Text())
		entries = append(entries, entry)
	}
	return entries
}

func resetSink(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		_ = Setup(Options{Output: os.Stderr})
		_ = Close()
	})
}

func TestLoggerWritesStructuredEntries(t *testing.T) {
	resetSink(t)

	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "info", Output: &buf}))

	logger := NewLogger("browser")
	logger.Infof("session ready in %dms", 42)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "browser", entries[0]["component"])
	assert.Equal(t, "session ready in 42ms", entries[0]["message"])
	assert.Equal(t, RunID(), entries[0]["run_id"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	resetSink(t)

	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "warn", Output: &buf}))

	logger := NewLogger("database")
	logger.Debugf("hidden")
	logger.Infof("hidden")
	logger.Warnf("shown %s", "warn")
	logger.Errorf("shown %s", "error")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestLoggerCreatedBeforeSetupUsesNewSink(t *testing.T) {
	resetSink(t)

	logger := NewLogger("transport")

	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Output: &buf}))
	logger.Infof("after setup")

	assert.Contains(t, buf.String(), "after setup")
}

func TestTextFormat(t *testing.T) {
	resetSink(t)

	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Format: "text", Output: &buf}))

	NewLogger("mcp").Infof("plain output")

	out := buf.String()
	assert.Contains(t, out, "plain output")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "text format should not be JSON")
}

func TestLogFile(t *testing.T) {
	resetSink(t)

	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Dir: dir, Output: &buf}))

	NewLogger("cmd").Infof("to file")
	require.NoError(t, Close())

	path := LogPath()
	assert.Equal(t, filepath.Join(dir, RunID()+"-bridge.log"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "to file")
	assert.Contains(t, buf.String(), "to file")
}

func TestLogFileFallback(t *testing.T) {
	resetSink(t)

	// A regular file where a directory is expected makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	var buf bytes.Buffer
	err := Setup(Options{Dir: filepath.Join(blocker, "logs"), Output: &buf})
	require.Error(t, err)

	NewLogger("cmd").Infof("still logging")
	assert.Contains(t, buf.String(), "still logging")
	assert.Empty(t, LogPath())
}

func TestCloseIdempotent(t *testing.T) {
	resetSink(t)

	require.NoError(t, Setup(Options{Dir: t.TempDir(), Output: &bytes.Buffer{}}))
	assert.NoError(t, Close())
	assert.NoError(t, Close())
}
