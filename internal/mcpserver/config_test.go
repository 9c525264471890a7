package mcpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerName, cfg.Server.Name)
	assert.Equal(t, DefaultServerVersion, cfg.Server.Version)
	assert.Equal(t, DefaultProtocolVersion, cfg.Server.ProtocolVersion)
	assert.Empty(t, cfg.Overrides)
}

func TestParseConfig_Overrides(t *testing.T) {
	data := []byte(`
server:
  name: acme-agents
  instructions: Use list_agents first.
overrides:
  agent_chat:
    description: Talk to an agent.
    idempotent: false
  knowledge_search:
    disabled: true
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, "acme-agents", cfg.Server.Name)
	assert.Equal(t, DefaultServerVersion, cfg.Server.Version)
	assert.Equal(t, "Use list_agents first.", cfg.Server.Instructions)
	require.Contains(t, cfg.Overrides, "agent_chat")
	assert.Equal(t, "Talk to an agent.", cfg.Overrides["agent_chat"].Description)
	require.NotNil(t, cfg.Overrides["agent_chat"].Idempotent)
	assert.True(t, cfg.Overrides["knowledge_search"].Disabled)
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("server: [unclosed"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerName, cfg.Server.Name)

	path := filepath.Join(t.TempDir(), "mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  version: 9.9.9\n"), 0o600))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", cfg.Server.Version)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Apply(t *testing.T) {
	readOnly := true
	cfg := DefaultConfig()
	cfg.Overrides = map[string]ToolOverride{
		"a": {Description: "custom", ReadOnly: &readOnly},
		"b": {Disabled: true},
	}

	tools, err := cfg.Apply([]ServerTool{
		{Tool: mcp.NewTool("a", mcp.WithDescription("orig")), Handler: noopHandler},
		{Tool: mcp.NewTool("b"), Handler: noopHandler},
		{Tool: mcp.NewTool("c", mcp.WithDescription("untouched")), Handler: noopHandler},
	})
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "custom", tools[0].Tool.Description)
	assert.True(t, *tools[0].Tool.Annotations.ReadOnlyHint)
	assert.Equal(t, "c", tools[1].Tool.Name)
	assert.Equal(t, "untouched", tools[1].Tool.Description)
}

func TestConfig_ApplyUnknownTool(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overrides = map[string]ToolOverride{"nope": {Disabled: true}}
	_, err := cfg.Apply([]ServerTool{{Tool: mcp.NewTool("a"), Handler: noopHandler}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
