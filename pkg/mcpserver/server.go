package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/ejmockler/brutalist-mcp-go/pkg/apierr"
	"github.com/ejmockler/brutalist-mcp-go/pkg/catalog"
	"github.com/ejmockler/brutalist-mcp-go/pkg/version"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds the mcp.Server exposing one tool per catalog entry,
// each dispatching through the given Dispatcher. The MCP handshake
// library itself is an external collaborator: the server only wires the
// catalog's pre-built schemas through, it never authors protocol-level
// types itself.
func NewServer(tools []catalog.ToolConfig, dispatcher Dispatcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    version.AppName,
		Version: version.GitCommit,
	}, nil)

	for _, tool := range tools {
		registerTool(server, tool, dispatcher)
	}
	return server
}

// registerTool adds one roast_<domain> tool, bridging the catalog's
// map[string]interface{} schema into the SDK's jsonschema.Schema via a
// JSON round-trip rather than hand-authoring the SDK's schema struct
// fields (see DESIGN.md).
func registerTool(server *mcp.Server, tool catalog.ToolConfig, dispatcher Dispatcher) {
	mcpTool := &mcp.Tool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: schemaFromMap(tool.Schema),
	}

	handler := func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := dispatcher.Handle(ctx, tool.Name, args)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: apierr.UserMessage(err)}},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil, nil
	}

	mcp.AddTool(server, mcpTool, handler)
}

// schemaFromMap round-trips a catalog schema through JSON into the SDK's
// native schema type, which implements json.Unmarshaler for exactly this
// purpose. Returns nil (schema inferred by the SDK) if the round-trip
// fails, which should never happen for catalog-generated schemas.
func schemaFromMap(m map[string]interface{}) *jsonschema.Schema {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
