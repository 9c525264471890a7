package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/api/request"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/audit"
	"github.com/starfrom/agentos-gateway/internal/llm"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// AgentStore reads a workspace's agents.
type AgentStore interface {
	ListActive(ctx context.Context, workspaceID string) ([]model.Agent, error)
	Get(ctx context.Context, workspaceID, agentID string) (*model.Agent, error)
}

// SessionStore reads and appends chat history.
type SessionStore interface {
	ListMessages(ctx context.Context, workspaceID, sessionID string, limit int) ([]model.ChatMessage, error)
	RecordTurn(ctx context.Context, workspaceID, agentID, sessionID, userMessage, reply string) (string, error)
}

// Agent serves the agent routes of the REST API.
type Agent struct {
	agents   AgentStore
	sessions SessionStore
	backend  llm.Backend
}

func NewAgent(agents AgentStore, sessions SessionStore, backend llm.Backend) *Agent {
	return &Agent{agents: agents, sessions: sessions, backend: backend}
}

// List returns the workspace's active agents.
func (h *Agent) List(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agents.ListActive(r.Context(), workspaceID(r))
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if agents == nil {
		agents = []model.Agent{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": agents})
}

// ChatResponse is the reply to one chat message.
type ChatResponse struct {
	Reply      string `json:"reply"`
	SessionID  string `json:"session_id"`
	TokensUsed int    `json:"tokens_used"`
}

// Chat sends a message to an agent and stores the turn in its session.
func (h *Agent) Chat(w http.ResponseWriter, r *http.Request) {
	agentID, err := request.RequireID(chi.URLParam(r, "agentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req request.Chat
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	ws := workspaceID(r)
	agent, err := h.agents.Get(ctx, ws, agentID)
	if err != nil {
		writeStoreError(w, r, err, "agent not found")
		return
	}
	if req.SessionID != "" {
		if _, err := h.sessions.ListMessages(ctx, ws, req.SessionID, 1); err != nil {
			writeStoreError(w, r, err, "session not found")
			return
		}
	}

	reply, err := h.backend.Reply(ctx, agent, req.Message)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("agent_id", agent.ID).Msg("chat backend failed")
		audit.StatsFrom(ctx).SetError("chat backend failed")
		response.WriteError(w, http.StatusBadGateway, "agent is unavailable, try again later")
		return
	}
	audit.StatsFrom(ctx).AddTokens(reply.TokensUsed)

	sessionID, err := h.sessions.RecordTurn(ctx, ws, agent.ID, req.SessionID, req.Message, reply.Text)
	if err != nil {
		writeStoreError(w, r, err, "session not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, ChatResponse{
		Reply:      reply.Text,
		SessionID:  sessionID,
		TokensUsed: reply.TokensUsed,
	})
}
