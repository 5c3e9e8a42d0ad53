package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)

	file := mcpServeCmd.Flags().Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)
}

func TestMCPServeCmd_NoService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	documentService = nil

	_, _, err := execute(t, "", "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document service not configured")
}

func TestMCPCmd_Long(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "ctxwin mcp serve --port 8080")
}
