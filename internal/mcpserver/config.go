package mcpserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default server identity reported by initialize and GET /mcp.
const (
	DefaultServerName      = "starfrom-agentos"
	DefaultServerVersion   = "2.3.0"
	DefaultProtocolVersion = "2024-11-05"
)

// Config is the MCP catalog configuration loaded from mcp.yaml.
type Config struct {
	Server    ServerInfo              `yaml:"server"`
	Overrides map[string]ToolOverride `yaml:"overrides"`
}

// ServerInfo identifies the server to clients.
type ServerInfo struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	ProtocolVersion string `yaml:"protocol_version"`
	Instructions    string `yaml:"instructions"`
}

// ToolOverride allows per-tool customization.
type ToolOverride struct {
	Description string `yaml:"description"`
	ReadOnly    *bool  `yaml:"readonly"`
	Destructive *bool  `yaml:"destructive"`
	Idempotent  *bool  `yaml:"idempotent"`
	Disabled    bool   `yaml:"disabled"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads and parses the mcp.yaml configuration file. An empty path
// yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses mcp.yaml configuration from raw bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = DefaultServerName
	}
	if c.Server.Version == "" {
		c.Server.Version = DefaultServerVersion
	}
	if c.Server.ProtocolVersion == "" {
		c.Server.ProtocolVersion = DefaultProtocolVersion
	}
}

// Apply returns tools with overrides applied and disabled tools removed.
// Overrides naming unknown tools are an error so typos do not go unnoticed.
func (c *Config) Apply(tools []ServerTool) ([]ServerTool, error) {
	known := make(map[string]bool, len(tools))
	for _, t := range tools {
		known[t.Tool.Name] = true
	}
	for name := range c.Overrides {
		if !known[name] {
			return nil, fmt.Errorf("override for unknown tool %q", name)
		}
	}

	out := make([]ServerTool, 0, len(tools))
	for _, t := range tools {
		ov, ok := c.Overrides[t.Tool.Name]
		if !ok {
			out = append(out, t)
			continue
		}
		if ov.Disabled {
			continue
		}
		if ov.Description != "" {
			t.Tool.Description = ov.Description
		}
		if ov.ReadOnly != nil {
			t.Tool.Annotations.ReadOnlyHint = ov.ReadOnly
		}
		if ov.Destructive != nil {
			t.Tool.Annotations.DestructiveHint = ov.Destructive
		}
		if ov.Idempotent != nil {
			t.Tool.Annotations.IdempotentHint = ov.Idempotent
		}
		out = append(out, t)
	}
	return out, nil
}
