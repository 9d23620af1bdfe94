package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voicecoach/core"
	"voicecoach/metrics"
	"voicecoach/tools"

	"github.com/bytedance/sonic"
	"github.com/sashabaranov/go-openai"
)

// ErrToolRoundsExceeded is returned when the model keeps requesting tools
// past Config.MaxToolRounds.
var ErrToolRoundsExceeded = errors.New("openai: too many consecutive tool rounds")

// OpenAILLMService answers a user turn with OpenAI chat completions, running
// any requested tools through a registry in between.
type OpenAILLMService struct {
	client *openai.Client
	config Config
	logger *core.Logger

	onMetrics func(metrics.Sample)

	isInitialized bool
	mu            sync.RWMutex
}

// Config holds the configuration for OpenAI service
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxTokens     int
	Temperature   float32
	MaxToolRounds int
}

// NewOpenAILLMService creates a new instance of OpenAILLMService
func NewOpenAILLMService(config Config, logger *core.Logger) *OpenAILLMService {
	if logger == nil {
		logger = core.GetLogger()
	}
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.MaxToolRounds <= 0 {
		config.MaxToolRounds = 4
	}
	return &OpenAILLMService{
		config: config,
		logger: logger.With(map[string]any{"component": "openai_llm", "model": config.Model}),
	}
}

// Init builds the HTTP client. It does not contact the API.
func (s *OpenAILLMService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.APIKey == "" {
		return fmt.Errorf("openai: API key is required")
	}

	clientConfig := openai.DefaultConfig(s.config.APIKey)
	if s.config.BaseURL != "" {
		clientConfig.BaseURL = s.config.BaseURL
	}
	s.client = openai.NewClientWithConfig(clientConfig)
	s.isInitialized = true
	return nil
}

// OnMetrics installs a callback for LLM and tool usage samples.
func (s *OpenAILLMService) OnMetrics(fn func(metrics.Sample)) {
	s.mu.Lock()
	s.onMetrics = fn
	s.mu.Unlock()
}

// Respond runs completions until the model answers with text, dispatching
// tool calls through registry and appending every turn to llmCtx.
func (s *OpenAILLMService) Respond(ctx context.Context, llmCtx *core.LLMContext, registry *tools.Registry) (string, error) {
	s.mu.RLock()
	client, ready, emit := s.client, s.isInitialized, s.onMetrics
	s.mu.RUnlock()
	if !ready {
		return "", fmt.Errorf("openai: service not initialized")
	}

	for round := 0; ; round++ {
		req, err := s.buildRequest(llmCtx)
		if err != nil {
			return "", err
		}

		start := time.Now()
		resp, err := client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("openai: failed to create completion: %w", err)
		}
		if emit != nil {
			emit(metrics.Sample{
				Type:             metrics.TypeLLM,
				Model:            resp.Model,
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				DurationMS:       float64(time.Since(start).Milliseconds()),
			})
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai: completion returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			llmCtx.AddAssistantMessage(msg.Content)
			return msg.Content, nil
		}
		if round >= s.config.MaxToolRounds {
			return "", ErrToolRoundsExceeded
		}

		calls := make([]core.LLMToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			calls = append(calls, s.convertToolCall(tc))
		}
		llmCtx.AddToolCalls(msg.Content, calls)

		for _, call := range calls {
			callStart := time.Now()
			out := registry.Call(call)
			if emit != nil {
				emit(metrics.Sample{
					Type:       metrics.TypeTool,
					ToolID:     call.ToolId,
					DurationMS: float64(time.Since(callStart).Milliseconds()),
				})
			}
			s.logger.With(map[string]any{"tool_id": call.ToolId, "round": round}).Debug("tool result appended")
			llmCtx.AddToolResult(call.CallId, out)
		}
	}
}

func (s *OpenAILLMService) buildRequest(llmCtx *core.LLMContext) (openai.ChatCompletionRequest, error) {
	messages, err := s.convertMessages(llmCtx.Messages)
	if err != nil {
		return openai.ChatCompletionRequest{}, fmt.Errorf("openai: failed to convert messages: %w", err)
	}
	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    messages,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}
	if len(llmCtx.Tools) > 0 {
		req.Tools = s.convertTools(llmCtx.Tools)
	}
	return req, nil
}

// convertMessages converts core messages to OpenAI messages
func (s *OpenAILLMService) convertMessages(messages []core.LLMMessage) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, msg := range messages {
		m := openai.ChatCompletionMessage{
			Role:       s.convertRole(msg.Role),
			Content:    msg.Message,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			args := []byte("{}")
			if call.Parameters != nil {
				b, err := sonic.Marshal(*call.Parameters)
				if err != nil {
					return nil, fmt.Errorf("marshal arguments for %s: %w", call.ToolId, err)
				}
				args = b
			}
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   call.CallId,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.ToolId,
					Arguments: string(args),
				},
			})
		}
		out = append(out, m)
	}
	return out, nil
}

// convertTools converts core tools to OpenAI tools
func (s *OpenAILLMService) convertTools(list []core.LLMTool) []openai.Tool {
	out := make([]openai.Tool, 0, len(list))
	for _, tool := range list {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.ToolId,
				Description: tool.Description,
				Parameters:  tools.Schema(tool),
			},
		})
	}
	return out
}

// convertRole converts core role to OpenAI role
func (s *OpenAILLMService) convertRole(role core.LLMMessageRole) string {
	switch role {
	case core.LLMMessageRoleAssistant:
		return openai.ChatMessageRoleAssistant
	case core.LLMMessageRoleSystem:
		return openai.ChatMessageRoleSystem
	case core.LLMMessageRoleTool:
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}

// convertToolCall converts OpenAI tool call to core tool call
func (s *OpenAILLMService) convertToolCall(toolCall openai.ToolCall) core.LLMToolCall {
	parameters := map[string]any{}

	if toolCall.Function.Arguments != "" {
		if err := sonic.Unmarshal([]byte(toolCall.Function.Arguments), &parameters); err != nil {
			s.logger.With(map[string]any{"tool_id": toolCall.Function.Name, "error": err}).Warn("unparseable tool arguments")
			parameters = map[string]any{
				"raw_arguments": toolCall.Function.Arguments,
			}
		}
	}

	return core.NewToolCall(toolCall.ID, toolCall.Function.Name, parameters)
}
