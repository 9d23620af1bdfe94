// Package mcpserver exposes an agent's tools to any MCP client, so the
// persona can be driven by an MCP-capable assistant instead of a voice
// pipeline.
package mcpserver

import (
	"context"
	"fmt"

	"voicecoach/agent"
	"voicecoach/core"
	"voicecoach/tools"

	"github.com/bytedance/sonic"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported in the MCP initialize handshake.
const Version = "1.0.0"

// New builds an MCP server with one tool per registered agent tool. The
// agent's system instructions are sent as the server instructions.
func New(a *agent.Agent, logger *core.Logger) *mcp.Server {
	if logger == nil {
		logger = core.GetLogger()
	}
	logger = logger.With(map[string]any{"component": "mcpserver"})

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "voicecoach-" + string(a.Persona),
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: a.Instructions,
	})

	for _, tool := range a.Tools.Tools() {
		server.AddTool(&mcp.Tool{
			Name:        tool.ToolId,
			Description: tool.Description,
			InputSchema: tools.Schema(tool),
		}, handlerFor(a.Tools, tool.ToolId, logger))
	}
	return server
}

func handlerFor(registry *tools.Registry, toolID string, logger *core.Logger) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := sonic.Unmarshal(req.Params.Arguments, &params); err != nil {
				logger.With(map[string]any{"tool_id": toolID, "error": err}).Warn("bad tool arguments")
				return &mcp.CallToolResult{
					IsError: true,
					Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("arguments for %s must be a JSON object", toolID)}},
				}, nil
			}
		}

		out := registry.Call(core.NewToolCall("", toolID, params))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
		}, nil
	}
}

// Run serves the agent over stdin/stdout until the client disconnects or ctx
// is cancelled.
func Run(ctx context.Context, a *agent.Agent, logger *core.Logger) error {
	if logger == nil {
		logger = core.GetLogger()
	}
	logger.With(map[string]any{"persona": string(a.Persona), "tools": len(a.Tools.Tools())}).Info("serving MCP over stdio")
	if err := New(a, logger).Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcpserver: %w", err)
	}
	return nil
}
