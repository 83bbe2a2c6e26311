package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejmockler/brutalist-mcp-go/pkg/catalog"
)

func TestNewServerRegistersEveryToolWithoutPanicking(t *testing.T) {
	server := NewServer(catalog.Build(), noopDispatcher{})
	require.NotNil(t, server)
}

func TestSchemaFromMapRoundTripsProperties(t *testing.T) {
	tools := catalog.Build()
	tool := catalog.ByName(tools)["roast_codebase"]

	schema := schemaFromMap(tool.Schema)
	require.NotNil(t, schema)
}

func TestSchemaFromMapReturnsNilOnUnmarshalableInput(t *testing.T) {
	bad := map[string]interface{}{"bad": make(chan int)}
	assert.Nil(t, schemaFromMap(bad))
}
