// Package mcp exposes the market-data tools to MCP hosts.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/internal/tools"
)

const serverName = "stockinsights"

// NewServer registers every tool from tools.Specs, each dispatched
// through executor.
func NewServer(executor tools.Executor, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithToolCapabilities(true),
	)

	for _, spec := range tools.Specs() {
		s.AddTool(BuildTool(spec), ToolHandler(executor, spec.Name))
	}
	log.Info().Int("tools", len(tools.Specs())).Msg("MCP server initialized")
	return s
}

// NewHTTPHandler wraps the server in a stateless streamable HTTP transport.
func NewHTTPHandler(s *mcpserver.MCPServer) http.Handler {
	return mcpserver.NewStreamableHTTPServer(s, mcpserver.WithStateLess(true))
}

// ServeStdio blocks serving MCP over stdin and stdout.
func ServeStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}

// BuildTool converts a tool spec into an mcp.Tool with the matching schema.
func BuildTool(spec tools.Spec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Desc)}
	for _, p := range spec.Params {
		propOpts := []mcp.PropertyOption{mcp.Required(), mcp.Description(p.Desc)}
		switch p.Type {
		case tools.ParamStringArray:
			opts = append(opts, mcp.WithArray(p.Name, append([]mcp.PropertyOption{mcp.WithStringItems()}, propOpts...)...))
		default:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

// ToolHandler runs one tool and returns its envelope as JSON text.
func ToolHandler(executor tools.Executor, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		env := executor.Execute(ctx, name, args)
		out, err := json.Marshal(env)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(out))},
			IsError: env.Error != "",
		}, nil
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(message)},
		IsError: true,
	}
}
