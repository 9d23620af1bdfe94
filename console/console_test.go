package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"voicecoach/agent"
	"voicecoach/catalog"
	"voicecoach/core"
	"voicecoach/tools"

	"github.com/stretchr/testify/require"
)

// scriptedResponder calls tools named in the last user message as
// "tool:arg" and echoes the tool output.
type scriptedResponder struct {
	turns int
	fail  bool
}

func (s *scriptedResponder) Respond(_ context.Context, llmCtx *core.LLMContext, registry *tools.Registry) (string, error) {
	s.turns++
	if s.fail {
		return "", errors.New("upstream down")
	}
	last := llmCtx.Messages[len(llmCtx.Messages)-1]
	if last.Role != core.LLMMessageRoleUser {
		llmCtx.AddAssistantMessage("Hi! Which topic?")
		return "Hi! Which topic?", nil
	}
	topic, ok := strings.CutPrefix(last.Message, "topic:")
	if !ok {
		llmCtx.AddAssistantMessage("ok")
		return "ok", nil
	}
	out := registry.Call(core.NewToolCall("c", "select_topic", map[string]any{"topic_id": topic}))
	llmCtx.AddAssistantMessage(out)
	return out, nil
}

func newAgent(t *testing.T) *agent.Agent {
	t.Helper()
	a, err := agent.New(agent.PersonaTutor, agent.Dependencies{Catalog: catalog.Default(), Logger: core.NewNopLogger()})
	require.NoError(t, err)
	return a
}

func TestConsoleConversation(t *testing.T) {
	a := newAgent(t)
	r := &scriptedResponder{}
	var out bytes.Buffer
	in := strings.NewReader("\ntopic:loops\n/quit\nnever read\n")

	require.NoError(t, New(a, r, in, &out, core.NewNopLogger()).Run(t.Context()))

	text := out.String()
	require.True(t, strings.HasPrefix(text, "agent> Hi! Which topic?\n"))
	require.Contains(t, text, "agent> Topic set to Loops.")
	require.NotContains(t, text, "never read")
	require.Equal(t, 2, r.turns)
	require.Equal(t, "loops", a.Tutor.State().CurrentTopicID)
}

func TestConsoleEndsOnEOF(t *testing.T) {
	r := &scriptedResponder{}
	var out bytes.Buffer
	require.NoError(t, New(newAgent(t), r, strings.NewReader("hello"), &out, core.NewNopLogger()).Run(t.Context()))
	require.Equal(t, 2, r.turns)
}

func TestConsoleSurvivesResponderErrors(t *testing.T) {
	r := &scriptedResponder{fail: true}
	var out bytes.Buffer
	require.NoError(t, New(newAgent(t), r, strings.NewReader("hi\n"), &out, core.NewNopLogger()).Run(t.Context()))
	require.Equal(t, 2, strings.Count(out.String(), "lost my train of thought"))
}
