package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "warn")

	l.Info("hidden")
	l.Debugf("hidden %d", 1)
	l.Warn("shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[WARN] shown")
}

func TestLoggerKeyValueAndWith(t *testing.T) {
	var got map[string]interface{}
	var gotMsg string
	l := NewLogger(func(level, msg string, attrs map[string]interface{}) {
		gotMsg = msg
		got = attrs
	}).With(map[string]any{"session": "s1"})

	l.Info("mode switched", "mode", "quiz")
	require.Equal(t, "mode switched", gotMsg)
	require.Equal(t, map[string]interface{}{"session": "s1", "mode": "quiz"}, got)

	l.Infof("loaded %d topics", 10)
	require.Equal(t, "loaded 10 topics", gotMsg)
	require.Equal(t, map[string]interface{}{"session": "s1"}, got)
}

func TestFormatAttrsSorted(t *testing.T) {
	s := formatAttrs(map[string]interface{}{"b": 2, "a": 1})
	require.Equal(t, " | a=1 b=2", s)
	require.Empty(t, formatAttrs(nil))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel(" debug "))
	require.Equal(t, LevelInfo, ParseLevel("chatty"))
	require.True(t, strings.HasPrefix(ParseLevel("error"), "ERR"))
}

func TestValidLevel(t *testing.T) {
	require.True(t, ValidLevel("warn"))
	require.True(t, ValidLevel(" TRACE "))
	require.False(t, ValidLevel("verbose"))
	require.False(t, ValidLevel(""))
}
