package mcpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/ratelimit"
)

// Server serves the MCP endpoint. Authentication and rate limiting run in
// middleware before either handler; the handlers read the identity from the
// request context.
type Server struct {
	cfg        *Config
	tools      *ToolRegistry
	resources  *ResourceRegistry
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

// New builds the MCP server from the tool catalog, applying cfg's overrides.
func New(cfg *Config, tools []ServerTool, logger zerolog.Logger) (*Server, error) {
	tools, err := cfg.Apply(tools)
	if err != nil {
		return nil, err
	}
	registry, err := NewToolRegistry(tools...)
	if err != nil {
		return nil, err
	}
	resources, err := NewResourceRegistry()
	if err != nil {
		return nil, err
	}

	logger.Info().
		Strs("tools", registry.Names()).
		Int("resources", len(resources.List())).
		Msg("MCP catalog loaded")

	return &Server{
		cfg:        cfg,
		tools:      registry,
		resources:  resources,
		dispatcher: NewDispatcher(cfg, registry, resources, logger),
		logger:     logger,
	}, nil
}

func callerFrom(r *http.Request) Caller {
	id := auth.IdentityFrom(r.Context())
	if id == nil {
		return Caller{}
	}
	return Caller{
		Tenant:   Tenant{WorkspaceID: id.WorkspaceID, CredentialID: id.CredentialID},
		CanWrite: id.HasScope(model.ScopeWrite),
		Degraded: ratelimit.IsDegraded(r.Context()),
	}
}

// HandlePost serves JSON-RPC requests on POST /mcp.
func (s *Server) HandlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResponse(w, http.StatusRequestEntityTooLarge, errorResponse(nil, mcp.INVALID_REQUEST, "Request body too large"))
			return
		}
		writeResponse(w, http.StatusBadRequest, errorResponse(nil, mcp.PARSE_ERROR, "Failed to read request body"))
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		writeResponse(w, http.StatusOK, errorResponse(nil, mcp.INVALID_REQUEST, "Batch requests are not supported"))
		return
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		writeResponse(w, http.StatusOK, errorResponse(nil, mcp.PARSE_ERROR, "Parse error"))
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != mcp.JSONRPC_VERSION {
		writeResponse(w, http.StatusOK, errorResponse(req.ID, mcp.INVALID_REQUEST, `jsonrpc must be "2.0"`))
		return
	}
	if req.Method == "" {
		writeResponse(w, http.StatusOK, errorResponse(req.ID, mcp.INVALID_REQUEST, "Missing method"))
		return
	}

	if req.IsNotification() || strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug().Str("method", req.Method).Msg("MCP notification")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), callerFrom(r), &req)
	writeResponse(w, http.StatusOK, resp)
}

// Description is the self-description returned by GET /mcp.
type Description struct {
	Server        string `json:"server"`
	Version       string `json:"version"`
	Protocol      string `json:"protocol"`
	Authenticated bool   `json:"authenticated"`
	WorkspaceID   string `json:"workspace_id"`
}

// HandleGet serves GET /mcp: ?method=tools or ?method=resources returns the
// catalog, anything else the server self-description.
func (s *Server) HandleGet(w http.ResponseWriter, r *http.Request) {
	var body any
	switch r.URL.Query().Get("method") {
	case "tools":
		body = mcp.ListToolsResult{Tools: s.tools.List()}
	case "resources":
		body = mcp.ListResourcesResult{Resources: s.resources.List()}
	default:
		caller := callerFrom(r)
		body = Description{
			Server:        s.cfg.Server.Name,
			Version:       s.cfg.Server.Version,
			Protocol:      "MCP " + s.cfg.Server.ProtocolVersion,
			Authenticated: caller.WorkspaceID != "",
			WorkspaceID:   caller.WorkspaceID,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}
