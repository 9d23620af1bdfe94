// Package tools keeps the set of functions the language model may call and
// dispatches invocations to them.
package tools

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"voicecoach/core"
)

// HandlerFunc runs a tool call and returns text that is fed back into the
// model's context.
type HandlerFunc func(call core.LLMToolCall) string

// CallObserver is notified after every dispatched call.
type CallObserver func(toolID string, elapsed time.Duration)

// Registry maps tool ids to their definitions and handlers. Registration order
// is preserved so tool lists are stable across runs.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	tools    map[string]core.LLMTool
	handlers map[string]HandlerFunc
	observer CallObserver
	logger   *core.Logger
}

func NewRegistry(logger *core.Logger) *Registry {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Registry{
		tools:    make(map[string]core.LLMTool),
		handlers: make(map[string]HandlerFunc),
		logger:   logger.With(map[string]any{"component": "tools"}),
	}
}

// Register adds or replaces a tool. An empty Name defaults to ToolId.
func (r *Registry) Register(tool core.LLMTool, handler HandlerFunc) {
	if tool.Name == "" {
		tool.Name = tool.ToolId
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.ToolId]; !exists {
		r.order = append(r.order, tool.ToolId)
	}
	r.tools[tool.ToolId] = tool
	r.handlers[tool.ToolId] = handler
}

// Observe installs a callback run after each Call.
func (r *Registry) Observe(fn CallObserver) {
	r.mu.Lock()
	r.observer = fn
	r.mu.Unlock()
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []core.LLMTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.LLMTool, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tools[id])
	}
	return out
}

func (r *Registry) Has(toolID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[toolID]
	return ok
}

// Call dispatches to the registered handler. Unknown tools and handler
// panics come back as text so the model can recover conversationally.
func (r *Registry) Call(call core.LLMToolCall) (out string) {
	r.mu.RLock()
	handler, ok := r.handlers[call.ToolId]
	observer := r.observer
	known := make([]string, len(r.order))
	copy(known, r.order)
	r.mu.RUnlock()

	if !ok {
		r.logger.With(map[string]any{"tool_id": call.ToolId}).Warn("call to unknown tool")
		return fmt.Sprintf("Unknown tool %q. Available tools: %s.", call.ToolId, strings.Join(known, ", "))
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.With(map[string]any{"tool_id": call.ToolId, "panic": rec}).Error("tool handler panicked")
			out = fmt.Sprintf("The %s tool failed. Apologise to the user and try again.", call.ToolId)
		}
		if observer != nil {
			observer(call.ToolId, time.Since(start))
		}
	}()

	r.logger.With(map[string]any{"tool_id": call.ToolId, "call_id": call.CallId}).Debug("dispatching tool call")
	return handler(call)
}

// StringParam pulls a string parameter from an LLMToolCall by key.
// Non-string values are formatted with %v; missing keys give "".
func StringParam(call core.LLMToolCall, key string) string {
	if call.Parameters == nil {
		return ""
	}
	v, ok := (*call.Parameters)[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
