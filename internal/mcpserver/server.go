// Package mcpserver exposes object operations as MCP tools. AI assistants
// connect over stdio and operate on any collection the backing API serves:
// reads, writes, and bulk changes. One Server wraps one API client, and
// every tool call maps to exactly one client call.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/netforge-io/netforge/pkg/netforge"
)

// serverName identifies this MCP server to connected clients.
const serverName = "netforge-mcp-server"

// Server bridges MCP tool calls to the API client.
type Server struct {
	mcp    *server.MCPServer
	client netforge.Client
}

// New creates an MCP server wired to the given API client and registers
// every tool. The tool set is fixed for the life of the server.
func New(client netforge.Client) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			netforge.Version,
			server.WithToolCapabilities(false),
		),
		client: client,
	}

	for _, reg := range s.tools() {
		s.addTool(reg.tool, reg.handler)
	}
	return s
}

// addTool registers one tool with request logging around the handler.
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Info().Str("tool", req.Params.Name).Msg("tool call")
		return handler(ctx, req)
	})
}

// ServeStdio runs the server on stdin and stdout until the client
// disconnects. Logs go to stderr so they never mix with the protocol.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HandleMessage dispatches one raw JSON-RPC message and returns the
// response. Tests use it to drive the server in process.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, message)
}
