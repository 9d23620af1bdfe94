package llm

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"voicecoach/catalog"
	"voicecoach/core"
	"voicecoach/metrics"
	"voicecoach/tools"
	"voicecoach/tutor"

	"github.com/bytedance/sonic"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

const toolCallResponse = `{
  "id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-test",
  "choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
    "role": "assistant", "content": "",
    "tool_calls": [{"id": "call_1", "type": "function",
      "function": {"name": "select_topic", "arguments": "{\"topic_id\":\"loops\"}"}}]}}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

const textResponse = `{
  "id": "chatcmpl-2", "object": "chat.completion", "created": 2, "model": "gpt-test",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {
    "role": "assistant", "content": "Great, loops it is. Learn, quiz, or teach back?"}}],
  "usage": {"prompt_tokens": 30, "completion_tokens": 12, "total_tokens": 42}
}`

type fakeOpenAI struct {
	mu        sync.Mutex
	requests  []openai.ChatCompletionRequest
	responses []string
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req openai.ChatCompletionRequest
	_ = sonic.Unmarshal(body, &req)

	f.mu.Lock()
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	resp := f.responses[len(f.responses)-1]
	if idx < len(f.responses) {
		resp = f.responses[idx]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, resp)
}

func newService(t *testing.T, fake *fakeOpenAI, rounds int) *OpenAILLMService {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc := NewOpenAILLMService(Config{
		APIKey:        "test-key",
		BaseURL:       srv.URL + "/v1",
		Model:         "gpt-test",
		MaxToolRounds: rounds,
	}, core.NewNopLogger())
	require.NoError(t, svc.Init(t.Context()))
	return svc
}

func tutorSetup() (*core.LLMContext, *tools.Registry, *tutor.Tracker) {
	tr := tutor.NewTracker(catalog.Default(), nil, core.NewNopLogger())
	reg := tools.NewRegistry(core.NewNopLogger())
	tutor.Register(reg, tr)

	ctx := &core.LLMContext{Tools: reg.Tools()}
	ctx.AddSystemMessage("system")
	ctx.AddUserMessage("let's do loops")
	return ctx, reg, tr
}

func TestRespondRunsToolsThenAnswers(t *testing.T) {
	fake := &fakeOpenAI{responses: []string{toolCallResponse, textResponse}}
	svc := newService(t, fake, 3)

	var samples []metrics.Sample
	svc.OnMetrics(func(s metrics.Sample) { samples = append(samples, s) })

	llmCtx, reg, tr := tutorSetup()
	out, err := svc.Respond(t.Context(), llmCtx, reg)
	require.NoError(t, err)
	require.Equal(t, "Great, loops it is. Learn, quiz, or teach back?", out)
	require.Equal(t, "loops", tr.State().CurrentTopicID)

	require.Len(t, fake.requests, 2)
	require.Len(t, fake.requests[0].Tools, 3)
	require.Equal(t, "select_topic", fake.requests[0].Tools[0].Function.Name)

	second := fake.requests[1].Messages
	require.Len(t, second, 4)
	require.Equal(t, openai.ChatMessageRoleAssistant, second[2].Role)
	require.Equal(t, "call_1", second[2].ToolCalls[0].ID)
	require.JSONEq(t, `{"topic_id":"loops"}`, second[2].ToolCalls[0].Function.Arguments)
	require.Equal(t, openai.ChatMessageRoleTool, second[3].Role)
	require.Equal(t, "call_1", second[3].ToolCallID)
	require.Contains(t, second[3].Content, "Topic set to Loops.")

	require.Equal(t, out, llmCtx.GetLastAssistantMessage())

	require.Len(t, samples, 3)
	require.Equal(t, metrics.TypeLLM, samples[0].Type)
	require.Equal(t, 10, samples[0].PromptTokens)
	require.Equal(t, metrics.TypeTool, samples[1].Type)
	require.Equal(t, "select_topic", samples[1].ToolID)
	require.Equal(t, 30, samples[2].PromptTokens)
}

func TestRespondStopsAfterMaxToolRounds(t *testing.T) {
	fake := &fakeOpenAI{responses: []string{toolCallResponse}}
	svc := newService(t, fake, 1)

	llmCtx, reg, _ := tutorSetup()
	_, err := svc.Respond(t.Context(), llmCtx, reg)
	require.ErrorIs(t, err, ErrToolRoundsExceeded)
	require.Len(t, fake.requests, 2)
}

func TestRespondRequiresInit(t *testing.T) {
	svc := NewOpenAILLMService(Config{}, core.NewNopLogger())
	require.Error(t, svc.Init(t.Context()))

	llmCtx, reg, _ := tutorSetup()
	_, err := svc.Respond(t.Context(), llmCtx, reg)
	require.Error(t, err)
}

func TestConvertToolCallKeepsRawArguments(t *testing.T) {
	svc := NewOpenAILLMService(Config{}, core.NewNopLogger())
	call := svc.convertToolCall(openai.ToolCall{
		ID:       "c9",
		Function: openai.FunctionCall{Name: "record_mood", Arguments: "{not json"},
	})
	require.Equal(t, "c9", call.CallId)
	require.Equal(t, "{not json", (*call.Parameters)["raw_arguments"])
}
