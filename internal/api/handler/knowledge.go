package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starfrom/agentos-gateway/internal/api/request"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/model"
)

const defaultKnowledgeTopK = 5

// KnowledgeStore manages agent knowledge sources and searches them.
type KnowledgeStore interface {
	ListSources(ctx context.Context, workspaceID, agentID string) ([]model.KnowledgeSource, error)
	CreateSource(ctx context.Context, workspaceID, agentID, name, sourceType, content string) (*model.KnowledgeSource, error)
	Search(ctx context.Context, workspaceID, agentID, query string, topK int) (*model.KnowledgeResult, error)
}

// Knowledge serves the knowledge routes of an agent.
type Knowledge struct {
	agents    AgentStore
	knowledge KnowledgeStore
}

func NewKnowledge(agents AgentStore, knowledge KnowledgeStore) *Knowledge {
	return &Knowledge{agents: agents, knowledge: knowledge}
}

// agent resolves the agentID URL param to an agent of the caller's
// workspace, writing the error response when it cannot.
func (h *Knowledge) agent(w http.ResponseWriter, r *http.Request) (*model.Agent, bool) {
	agentID, err := request.RequireID(chi.URLParam(r, "agentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	agent, err := h.agents.Get(r.Context(), workspaceID(r), agentID)
	if err != nil {
		writeStoreError(w, r, err, "agent not found")
		return nil, false
	}
	return agent, true
}

// List returns the agent's active knowledge sources.
func (h *Knowledge) List(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.agent(w, r)
	if !ok {
		return
	}
	sources, err := h.knowledge.ListSources(r.Context(), workspaceID(r), agent.ID)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if sources == nil {
		sources = []model.KnowledgeSource{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": sources})
}

// Create registers a new knowledge source pending ingestion.
func (h *Knowledge) Create(w http.ResponseWriter, r *http.Request) {
	agentID, err := request.RequireID(chi.URLParam(r, "agentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req request.CreateKnowledgeSource
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ks, err := h.knowledge.CreateSource(r.Context(), workspaceID(r), agentID, req.Name, req.Type, req.Content)
	if err != nil {
		writeStoreError(w, r, err, "agent not found")
		return
	}
	response.WriteJSON(w, http.StatusCreated, ks)
}

// Search returns the agent's knowledge chunks that best match the query.
func (h *Knowledge) Search(w http.ResponseWriter, r *http.Request) {
	agentID, err := request.RequireID(chi.URLParam(r, "agentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req request.KnowledgeSearch
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TopK == 0 {
		req.TopK = defaultKnowledgeTopK
	}

	ctx := r.Context()
	ws := workspaceID(r)
	if _, err := h.agents.Get(ctx, ws, agentID); err != nil {
		writeStoreError(w, r, err, "agent not found")
		return
	}
	res, err := h.knowledge.Search(ctx, ws, agentID, req.Query, req.TopK)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}
