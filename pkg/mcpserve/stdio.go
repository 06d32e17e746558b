// Package mcpserve exposes the tool catalogue over the Model Context
// Protocol on stdio, for clients that speak MCP directly instead of the
// HTTP surface.
package mcpserve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/octobridge/octobridge/pkg/catalog"
	"github.com/octobridge/octobridge/pkg/dispatch"
)

// Server bridges the catalogue and dispatcher onto an MCP stdio server.
// The bearer token is fixed at construction: stdio has no per-request
// Authorization header, so the token comes from the environment.
type Server struct {
	mcpServer  *server.MCPServer
	dispatcher *dispatch.Dispatcher
	token      string
	logger     *slog.Logger
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger sets the logger used for serve diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New builds a stdio Server exposing every catalogue tool. Returns an
// error when a tool's schema cannot be serialized.
func New(cat *catalog.Catalog, dispatcher *dispatch.Dispatcher, version, token string, opts ...Option) (*Server, error) {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"octobridge",
			version,
			server.WithToolCapabilities(false),
		),
		dispatcher: dispatcher,
		token:      token,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	for _, tool := range cat.Tools() {
		rawSchema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema for %s: %w", tool.Name, err)
		}
		s.mcpServer.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, rawSchema),
			s.handleCall,
		)
	}

	return s, nil
}

// Serve runs the MCP protocol over stdin/stdout until the client hangs up.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// handleCall adapts one MCP tool call onto the dispatcher. Validation
// failures and upstream failures alike surface as MCP error results; the
// protocol has no other channel for them.
func (s *Server) handleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.dispatcher.Dispatch(ctx, dispatch.Invocation{
		ToolName:  req.Params.Name,
		Arguments: req.GetArguments(),
		Token:     s.token,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var text string
	if len(result.Content) > 0 {
		text = result.Content[0].Text
	}
	if result.IsError {
		s.logDebug("tool call failed upstream", "tool", req.Params.Name)
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
