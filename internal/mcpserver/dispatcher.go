package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/audit"
	"github.com/starfrom/agentos-gateway/internal/metrics"
)

// CodeUnavailable is returned for write tools while the rate limit store is
// unreachable and the gateway runs degraded.
const CodeUnavailable = -32003

// Caller is the authenticated principal a request is dispatched for.
type Caller struct {
	Tenant
	CanWrite bool
	// Degraded is set when the request was admitted without a rate limit
	// decision.
	Degraded bool
}

// Dispatcher routes JSON-RPC requests to the handshake and the tool and
// resource catalogs. It holds no per-session state.
type Dispatcher struct {
	cfg       *Config
	tools     *ToolRegistry
	resources *ResourceRegistry
	logger    zerolog.Logger
}

func NewDispatcher(cfg *Config, tools *ToolRegistry, resources *ResourceRegistry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, tools: tools, resources: resources, logger: logger}
}

var knownMethods = map[string]bool{
	"initialize":     true,
	"ping":           true,
	"tools/list":     true,
	"tools/call":     true,
	"resources/list": true,
	"resources/read": true,
}

// Dispatch handles one request and returns its response.
func (d *Dispatcher) Dispatch(ctx context.Context, caller Caller, req *Request) *Response {
	resp := d.route(ctx, caller, req)

	label := req.Method
	if !knownMethods[label] {
		label = "unknown"
	}
	outcome := "ok"
	if resp.Error != nil {
		outcome = "error"
		audit.StatsFrom(ctx).SetError(resp.Error.Message)
	} else if r, ok := resp.Result.(*mcp.CallToolResult); ok && r.IsError {
		outcome = "tool_error"
		if len(r.Content) > 0 {
			if tc, ok := mcp.AsTextContent(r.Content[0]); ok {
				audit.StatsFrom(ctx).SetError(tc.Text)
			}
		}
	}
	metrics.MCPRequests.WithLabelValues(label, outcome).Inc()

	return resp
}

func (d *Dispatcher) route(ctx context.Context, caller Caller, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return d.initialize(req)
	case "ping":
		return resultResponse(req.ID, struct{}{})
	case "tools/list":
		return resultResponse(req.ID, mcp.ListToolsResult{Tools: d.tools.List()})
	case "tools/call":
		return d.callTool(ctx, caller, req)
	case "resources/list":
		return resultResponse(req.ID, mcp.ListResourcesResult{Resources: d.resources.List()})
	case "resources/read":
		return d.readResource(req)
	}
	return errorResponse(req.ID, mcp.METHOD_NOT_FOUND, fmt.Sprintf("Method not found: %s", req.Method))
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

func (d *Dispatcher) initialize(req *Request) *Response {
	var p initializeParams
	if err := decodeParams(req.Params, &p); err != nil {
		return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
	}
	version := p.ProtocolVersion
	if version == "" {
		version = d.cfg.Server.ProtocolVersion
	}

	result := mcp.InitializeResult{
		ProtocolVersion: version,
		ServerInfo: mcp.Implementation{
			Name:    d.cfg.Server.Name,
			Version: d.cfg.Server.Version,
		},
		Instructions: d.cfg.Server.Instructions,
	}
	result.Capabilities.Tools = &struct {
		ListChanged bool `json:"listChanged,omitempty"`
	}{}
	result.Capabilities.Resources = &struct {
		Subscribe   bool `json:"subscribe,omitempty"`
		ListChanged bool `json:"listChanged,omitempty"`
	}{}
	result.Capabilities.Logging = &struct{}{}

	return resultResponse(req.ID, result)
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (d *Dispatcher) callTool(ctx context.Context, caller Caller, req *Request) *Response {
	var p callToolParams
	if err := decodeParams(req.Params, &p); err != nil {
		return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
	}
	if p.Name == "" {
		return errorResponse(req.ID, mcp.INVALID_PARAMS, "Missing tool name")
	}

	tool, ok := d.tools.get(p.Name)
	if !ok {
		return errorResponse(req.ID, mcp.METHOD_NOT_FOUND, fmt.Sprintf("Tool not found: %s", p.Name))
	}

	if !tool.ReadOnly() {
		if !caller.CanWrite {
			return errorResponse(req.ID, CodeUnauthorized, "Token lacks the write scope")
		}
		if caller.Degraded {
			return errorResponse(req.ID, CodeUnavailable, "Write operations are temporarily unavailable")
		}
	}

	if p.Arguments == nil {
		p.Arguments = map[string]any{}
	}
	if err := tool.validate(p.Arguments); err != nil {
		return errorResponse(req.ID, mcp.INVALID_PARAMS, fmt.Sprintf("Invalid arguments for %s: %s", p.Name, err))
	}

	result, err := tool.Handler(ctx, caller.Tenant, p.Arguments)
	if err != nil {
		d.logger.Error().Err(err).
			Str("tool", p.Name).
			Str("workspace_id", caller.WorkspaceID).
			Msg("tool execution failed")
		return errorResponse(req.ID, mcp.INTERNAL_ERROR, "Internal error")
	}
	return resultResponse(req.ID, result)
}

type readResourceParams struct {
	URI string `json:"uri"`
}

func (d *Dispatcher) readResource(req *Request) *Response {
	var p readResourceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
	}
	contents, ok := d.resources.Read(p.URI)
	if !ok {
		return errorResponse(req.ID, CodeResourceNotFound, fmt.Sprintf("Resource not found: %s", p.URI))
	}
	return resultResponse(req.ID, mcp.ReadResourceResult{Contents: contents})
}

// decodeParams unmarshals params into out. Absent params leave out zero.
func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
