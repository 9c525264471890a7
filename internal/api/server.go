package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/api/handler"
	mw "github.com/starfrom/agentos-gateway/internal/api/middleware"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/apierr"
	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/llm"
	"github.com/starfrom/agentos-gateway/internal/mcpserver"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// CheckFunc reports whether a dependency is reachable. /readyz runs each one.
type CheckFunc func(ctx context.Context) error

// Options carries everything the router needs.
type Options struct {
	Logger        zerolog.Logger
	AdminToken    string
	TrustProxy    bool
	PerKeyLimits  bool
	Authenticator mw.Authenticator
	Limiter       mw.Limiter
	Audit         auth.AuditRecorder

	Credentials handler.CredentialStore
	Agents      handler.AgentStore
	Sessions    handler.SessionStore
	Workflows   handler.WorkflowStore
	CallLogs    handler.CallLogStore
	Knowledge   handler.KnowledgeStore
	Webhooks    handler.WebhookStore
	Backend     llm.Backend
	MCP         *mcpserver.Server

	Readiness map[string]CheckFunc
}

type Server struct {
	router chi.Router
	opts   Options
}

func NewServer(opts Options) *Server {
	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if s.opts.TrustProxy {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(mw.RequestLogger(s.opts.Logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/internal", func(r chi.Router) {
		r.Use(mw.AdminToken(s.opts.AdminToken))

		for path, kind := range map[string]model.CredentialKind{
			"/api-keys":   model.CredentialKindAPIKey,
			"/mcp-tokens": model.CredentialKindMCPToken,
		} {
			h := handler.NewCredential(s.opts.Credentials, kind)
			r.Get(path, h.List)
			r.Post(path, h.Create)
			r.Post(path+"/{id}/revoke", h.Revoke)
			r.Delete(path+"/{id}", h.Delete)
		}
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.opts.Authenticator, model.CredentialKindAPIKey, response.WriteAPIError))
		r.Use(mw.Audit(s.opts.Audit))
		r.Use(mw.RateLimit(s.opts.Limiter, s.opts.PerKeyLimits, response.WriteAPIError))

		agent := handler.NewAgent(s.opts.Agents, s.opts.Sessions, s.opts.Backend)
		workflow := handler.NewWorkflow(s.opts.Workflows)
		session := handler.NewSession(s.opts.Sessions)
		logs := handler.NewLogs(s.opts.CallLogs)
		knowledge := handler.NewKnowledge(s.opts.Agents, s.opts.Knowledge)
		webhook := handler.NewWebhook(s.opts.Webhooks)
		write := mw.RequireScope(model.ScopeWrite)

		r.Get("/agents", agent.List)
		r.With(write).Post("/agents/{agentID}/chat", agent.Chat)

		r.Get("/agents/{agentID}/knowledge", knowledge.List)
		r.With(write).Post("/agents/{agentID}/knowledge", knowledge.Create)
		r.Post("/agents/{agentID}/knowledge/search", knowledge.Search)

		r.With(write).Post("/workflows/{workflowID}/trigger", workflow.Trigger)
		r.Get("/workflow-runs/{runID}", workflow.GetRun)

		r.Get("/sessions/{sessionID}/messages", session.Messages)

		r.Get("/logs", logs.List)

		r.Get("/webhooks", webhook.List)
		r.With(write).Post("/webhooks", webhook.Create)
		r.With(write).Delete("/webhooks/{webhookID}", webhook.Delete)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(mw.Auth(s.opts.Authenticator, model.CredentialKindMCPToken, writeMCPError))
		r.Use(mw.Audit(s.opts.Audit))
		r.Use(mw.RateLimit(s.opts.Limiter, s.opts.PerKeyLimits, writeMCPError))

		r.Post("/mcp", s.opts.MCP.HandlePost)
		r.Get("/mcp", s.opts.MCP.HandleGet)
	})
}

// writeMCPError renders middleware rejections on /mcp as JSON-RPC envelopes.
func writeMCPError(w http.ResponseWriter, err error) {
	mcpserver.WriteTransportError(w, apierr.KindOf(err).Status(), apierr.Public(err))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	for name, check := range s.opts.Readiness {
		if err := check(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			checks[name] = "unavailable"
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
