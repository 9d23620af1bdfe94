package core

type LLMMessageRole string

const (
	LLMMessageRoleUser      LLMMessageRole = "user"
	LLMMessageRoleAssistant LLMMessageRole = "assistant"
	LLMMessageRoleSystem    LLMMessageRole = "system"
	LLMMessageRoleTool      LLMMessageRole = "tool"
)

// LLMMessage represents a message exchanged with the LLM.
type LLMMessage struct {
	Role       LLMMessageRole `json:"role"`                   // Role of the message sender (e.g., user, assistant, system , tool).
	Message    string         `json:"message"`                // Content of the message.
	ToolCalls  []LLMToolCall  `json:"tool_calls,omitempty"`   // Tool calls requested by an assistant message.
	ToolCallID string         `json:"tool_call_id,omitempty"` // For tool messages, the call this result answers.
}

type LLMParamterType string

const (
	LLMParameterTypeString  LLMParamterType = "string"
	LLMParameterTypeInteger LLMParamterType = "number"
	LLMParameterTypeBoolean LLMParamterType = "boolean"
	LLMParameterTypeObject  LLMParamterType = "object"
)

// Parameter represents a parameter for an LLM tool.
type Parameter struct {
	Name        string          `json:"name"`              // Name of the parameter.
	Description string          `json:"description"`       // Description of the parameter.
	Required    bool            `json:"required"`          // Whether the parameter is required.
	Example     string          `json:"example,omitempty"` // Example value for the parameter.
	Enum        []string        `json:"enum,omitempty"`    // Allowed values, if restricted.
	Type        LLMParamterType `json:"type"`              // Type of the parameter (e.g., string, integer).
}

// LLMTool represents a tool that can be used by the LLM.
type LLMTool struct {
	Name        string      `json:"name"`                 // Name of the tool.
	ToolId      string      `json:"tool_id"`              // Id of the tool.
	Description string      `json:"description"`          // Description of the tool's functionality.
	Parameters  []Parameter `json:"parameters,omitempty"` // Parameters required by the tool.
}

type LLMContext struct {
	Messages []LLMMessage
	Tools    []LLMTool
}

func (c *LLMContext) AddSystemMessage(text string) {
	c.Messages = append(c.Messages, LLMMessage{Role: LLMMessageRoleSystem, Message: text})
}

func (c *LLMContext) AddUserMessage(text string) {
	c.Messages = append(c.Messages, LLMMessage{Role: LLMMessageRoleUser, Message: text})
}

func (c *LLMContext) AddAssistantMessage(text string) {
	c.Messages = append(c.Messages, LLMMessage{Role: LLMMessageRoleAssistant, Message: text})
}

// AddToolCalls records an assistant turn that requested tool invocations.
func (c *LLMContext) AddToolCalls(text string, calls []LLMToolCall) {
	c.Messages = append(c.Messages, LLMMessage{
		Role:      LLMMessageRoleAssistant,
		Message:   text,
		ToolCalls: calls,
	})
}

// AddToolResult records the string a tool returned for the given call.
func (c *LLMContext) AddToolResult(callID, result string) {
	c.Messages = append(c.Messages, LLMMessage{
		Role:       LLMMessageRoleTool,
		Message:    result,
		ToolCallID: callID,
	})
}

// GetLastAssistantMessage returns the text of the most recent assistant
// message that carried text, or "".
func (c *LLMContext) GetLastAssistantMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		msg := c.Messages[i]
		if msg.Role == LLMMessageRoleAssistant && msg.Message != "" {
			return msg.Message
		}
	}
	return ""
}

// LLMToolCall represents a call to an LLM tool.
type LLMToolCall struct {
	CallId     string          `json:"call_id,omitempty"`    // Provider-assigned id of this invocation.
	ToolId     string          `json:"tool_id"`              // Id of the tool being called.
	Parameters *map[string]any `json:"parameters,omitempty"` // Parameters for the tool call.
}

// NewToolCall builds an LLMToolCall from a plain parameter map.
func NewToolCall(callID, toolID string, params map[string]any) LLMToolCall {
	if params == nil {
		params = map[string]any{}
	}
	return LLMToolCall{CallId: callID, ToolId: toolID, Parameters: &params}
}
