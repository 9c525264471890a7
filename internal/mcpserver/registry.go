package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Tenant is the caller a tool runs on behalf of. It always comes from the
// authenticated credential, never from tool arguments.
type Tenant struct {
	WorkspaceID  string
	CredentialID string
}

// ToolHandler executes a tool. A returned error is an unexpected internal
// failure; expected failures are reported as an error result.
type ToolHandler func(ctx context.Context, tenant Tenant, args map[string]any) (*mcp.CallToolResult, error)

// ServerTool pairs a tool definition with its handler.
type ServerTool struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

type registeredTool struct {
	ServerTool
	schema *jsonschema.Schema
}

// ReadOnly reports whether the tool is annotated as not modifying state.
func (t *registeredTool) ReadOnly() bool {
	return t.Tool.Annotations.ReadOnlyHint != nil && *t.Tool.Annotations.ReadOnlyHint
}

// ToolRegistry is the static tool catalog with compiled input schemas.
type ToolRegistry struct {
	order  []string
	byName map[string]*registeredTool
}

// NewToolRegistry compiles every tool's input schema. Duplicate names are an
// error.
func NewToolRegistry(tools ...ServerTool) (*ToolRegistry, error) {
	r := &ToolRegistry{byName: make(map[string]*registeredTool, len(tools))}
	for _, t := range tools {
		name := t.Tool.Name
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		raw, err := json.Marshal(t.Tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", name, err)
		}
		schema, err := jsonschema.CompileString("tool://"+name, string(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", name, err)
		}
		r.byName[name] = &registeredTool{ServerTool: t, schema: schema}
		r.order = append(r.order, name)
	}
	return r, nil
}

// List returns the tool definitions in registration order.
func (r *ToolRegistry) List() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.byName[name].Tool)
	}
	return tools
}

// Names returns the registered tool names sorted.
func (r *ToolRegistry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

func (r *ToolRegistry) get(name string) (*registeredTool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// validate checks args against the tool's input schema.
func (t *registeredTool) validate(args map[string]any) error {
	// The schema library expects values shaped like encoding/json output.
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return t.schema.Validate(v)
}

// decodeArgs decodes validated tool arguments into a typed struct tagged
// with mapstructure names.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}
