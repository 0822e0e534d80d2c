package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withGlobal(t *testing.T, l *Logger) {
	t.Helper()
	prev := globalLogger
	SetGlobal(l)
	t.Cleanup(func() { SetGlobal(prev) })
}

func TestGlobalFunctions(t *testing.T) {
	var buf bytes.Buffer
	withGlobal(t, NewWithWriter(&buf, DEBUG))

	Info("loaded %d playlists", 3)
	Debug("hidden without debug mode")
	Warn("retrying %s", "browse")

	out := buf.String()
	assert.Contains(t, out, "loaded 3 playlists")
	assert.Contains(t, out, "retrying browse")
	assert.Contains(t, out, "logger_test.go")
	assert.NotContains(t, out, "hidden without debug mode")

	buf.Reset()
	GetLogger().SetDebugMode(true)
	Debug("visible in debug mode")
	assert.Contains(t, buf.String(), "visible in debug mode")
	assert.True(t, IsDebugEnabled())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	withGlobal(t, NewWithWriter(&buf, WARN))

	Info("not written")
	Error("written")

	assert.NotContains(t, buf.String(), "not written")
	assert.Contains(t, buf.String(), "written")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	withGlobal(t, NewWithWriter(&buf, INFO))

	WithComponent("downloader").Info("queued")
	assert.Contains(t, buf.String(), "downloader")
	assert.Contains(t, buf.String(), "queued")

	SetGlobal(nil)
	assert.NotPanics(t, func() {
		WithComponent("silent").Info("dropped")
		Info("dropped")
	})
	assert.False(t, IsDebugEnabled())
}

func TestInitLogger(t *testing.T) {
	prev := globalLogger
	t.Cleanup(func() { SetGlobal(prev) })

	path := filepath.Join(t.TempDir(), "nested", "ytmgrab.log")
	require.NoError(t, InitLogger(path, INFO, false))
	Info("to file")
	require.NoError(t, CloseLogger())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}
