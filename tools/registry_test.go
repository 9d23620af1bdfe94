package tools

import (
	"testing"
	"time"

	"voicecoach/core"

	"github.com/stretchr/testify/require"
)

func echoTool(id string) core.LLMTool {
	return core.LLMTool{
		ToolId:      id,
		Description: "echo",
		Parameters: []core.Parameter{
			{Name: "text", Description: "what to echo", Required: true, Type: core.LLMParameterTypeString},
		},
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry(core.NewNopLogger())
	r.Register(echoTool("echo"), func(call core.LLMToolCall) string {
		return "echo: " + StringParam(call, "text")
	})

	require.True(t, r.Has("echo"))
	require.Equal(t, "echo", r.Tools()[0].Name)

	out := r.Call(core.NewToolCall("c1", "echo", map[string]any{"text": "hi"}))
	require.Equal(t, "echo: hi", out)
}

func TestRegistryKeepsOrderAndReplaces(t *testing.T) {
	r := NewRegistry(core.NewNopLogger())
	r.Register(echoTool("b"), func(core.LLMToolCall) string { return "b1" })
	r.Register(echoTool("a"), func(core.LLMToolCall) string { return "a" })
	r.Register(echoTool("b"), func(core.LLMToolCall) string { return "b2" })

	var ids []string
	for _, tool := range r.Tools() {
		ids = append(ids, tool.ToolId)
	}
	require.Equal(t, []string{"b", "a"}, ids)
	require.Equal(t, "b2", r.Call(core.NewToolCall("", "b", nil)))
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry(core.NewNopLogger())
	r.Register(echoTool("echo"), func(core.LLMToolCall) string { return "" })

	out := r.Call(core.NewToolCall("", "launch_rocket", nil))
	require.Equal(t, `Unknown tool "launch_rocket". Available tools: echo.`, out)
}

func TestRegistryRecoversPanicsAndObserves(t *testing.T) {
	r := NewRegistry(core.NewNopLogger())
	r.Register(echoTool("boom"), func(core.LLMToolCall) string { panic("kaboom") })

	var observed []string
	r.Observe(func(toolID string, elapsed time.Duration) {
		observed = append(observed, toolID)
		require.GreaterOrEqual(t, elapsed, time.Duration(0))
	})

	out := r.Call(core.NewToolCall("", "boom", nil))
	require.Contains(t, out, "boom tool failed")
	require.Equal(t, []string{"boom"}, observed)
}

func TestStringParam(t *testing.T) {
	require.Empty(t, StringParam(core.LLMToolCall{ToolId: "x"}, "text"))

	call := core.NewToolCall("", "x", map[string]any{"s": "v", "n": 3, "nil": nil})
	require.Equal(t, "v", StringParam(call, "s"))
	require.Equal(t, "3", StringParam(call, "n"))
	require.Empty(t, StringParam(call, "nil"))
	require.Empty(t, StringParam(call, "missing"))
}

func TestSchema(t *testing.T) {
	tool := core.LLMTool{
		ToolId: "set_learning_mode",
		Parameters: []core.Parameter{
			{Name: "mode", Description: "mode", Required: true, Type: core.LLMParameterTypeString, Enum: []string{"learn", "quiz"}},
			{Name: "loud", Description: "loud", Type: core.LLMParameterTypeBoolean},
		},
	}

	s := Schema(tool)
	require.Equal(t, "object", s["type"])
	require.Equal(t, []string{"mode"}, s["required"])

	props := s["properties"].(map[string]any)
	mode := props["mode"].(map[string]any)
	require.Equal(t, "string", mode["type"])
	require.Equal(t, []any{"learn", "quiz"}, mode["enum"])
	require.Equal(t, "boolean", props["loud"].(map[string]any)["type"])

	empty := Schema(core.LLMTool{ToolId: "noop"})
	require.NotContains(t, empty, "required")
	require.Empty(t, empty["properties"])
}
