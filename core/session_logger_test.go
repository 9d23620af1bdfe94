package core

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionLogWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")

	w, err := NewSessionLogWriter(dir, "abc", "tutor")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "abc.active"))

	logger := NewSessionLogger(NewNopLogger(), w).With(map[string]any{"component": "test"})
	logger.Info("topic selected", "topic", "loops")
	w.Close()

	require.NoFileExists(t, filepath.Join(dir, "abc.active"))

	f, err := os.Open(w.Path())
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 3)

	var meta SessionMetadata
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &meta))
	require.Equal(t, "abc", meta.SessionID)
	require.Equal(t, "tutor", meta.Persona)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	require.Equal(t, LevelInfo, entry.Level)
	require.Equal(t, "topic selected", entry.Message)
	require.Equal(t, "loops", entry.Attrs["topic"])
	require.Equal(t, "test", entry.Attrs["component"])

	var closing LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &closing))
	require.Equal(t, "session log closed", closing.Message)
	require.EqualValues(t, 1, closing.Attrs["entries"])
}

func TestWriteAfterCloseIsIgnored(t *testing.T) {
	w, err := NewSessionLogWriter(t.TempDir(), "s1", "")
	require.NoError(t, err)
	w.Close()
	require.NotPanics(t, func() { w.Write(LevelInfo, "late", nil) })
}

func TestSessionLoggerKeepsBaseAttrs(t *testing.T) {
	var got map[string]any
	base := NewLogger(func(level, msg string, attrs map[string]any) { got = attrs }).
		With(map[string]any{"session_id": "s2"})

	w, err := NewSessionLogWriter(t.TempDir(), "s2", "")
	require.NoError(t, err)
	defer w.Close()

	NewSessionLogger(base, w).Info("hello")
	require.Equal(t, "s2", got["session_id"])
}
