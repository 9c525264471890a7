package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starfrom/agentos-gateway/internal/api/request"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// WorkflowStore reads workflows and creates runs.
type WorkflowStore interface {
	Trigger(ctx context.Context, workspaceID, workflowID, triggerType string, input json.RawMessage) (*model.WorkflowRun, error)
	GetRun(ctx context.Context, workspaceID, runID string) (*model.WorkflowRun, error)
}

type Workflow struct {
	svc WorkflowStore
}

func NewWorkflow(svc WorkflowStore) *Workflow {
	return &Workflow{svc: svc}
}

// Trigger queues a run of an active workflow and returns 202 with its id.
func (h *Workflow) Trigger(w http.ResponseWriter, r *http.Request) {
	workflowID, err := request.RequireID(chi.URLParam(r, "workflowID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req request.TriggerWorkflow
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Inputs == nil {
		req.Inputs = map[string]any{}
	}
	input, err := json.Marshal(req.Inputs)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "inputs must be a JSON object")
		return
	}

	run, err := h.svc.Trigger(r.Context(), workspaceID(r), workflowID, model.TriggerTypeAPI, input)
	if errors.Is(err, core.ErrInactive) {
		response.WriteError(w, http.StatusBadRequest, "workflow is not active")
		return
	}
	if err != nil {
		writeStoreError(w, r, err, "workflow not found")
		return
	}

	response.WriteJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID,
		"status": run.Status,
	})
}

// GetRun returns one run of a workspace workflow.
func (h *Workflow) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := request.RequireID(chi.URLParam(r, "runID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.svc.GetRun(r.Context(), workspaceID(r), runID)
	if err != nil {
		writeStoreError(w, r, err, "workflow run not found")
		return
	}
	response.WriteJSON(w, http.StatusOK, run)
}
