// Package mcpserver mounts the roast_<domain> tool catalog behind the MCP
// JSON-RPC surface and the gin HTTP routes that expose
// it: POST /mcp for tool calls, GET /mcp for the per-session SSE progress
// stream keyed by the Mcp-Session-Id header, and GET /health.
package mcpserver

import "context"

// Dispatcher is the subset of *toolhandler.Handler the MCP server depends
// on, narrowed to an interface so tests can substitute a fake.
type Dispatcher interface {
	Handle(ctx context.Context, toolName string, args map[string]interface{}) (string, error)
}
