package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/platform"
)

// WorkflowService reads workflows and records run requests. Runs are created
// in the pending state; execution belongs to the workflow engine.
type WorkflowService struct {
	db DB
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(db DB) *WorkflowService {
	return &WorkflowService{db: db}
}

// Get returns a workflow if it belongs to the workspace.
func (s *WorkflowService) Get(ctx context.Context, workspaceID, workflowID string) (*model.Workflow, error) {
	var w model.Workflow
	err := s.db.QueryRow(ctx,
		`SELECT id, workspace_id, name, status, created_at FROM workflows WHERE id = $1 AND workspace_id = $2`,
		workflowID, workspaceID,
	).Scan(&w.ID, &w.WorkspaceID, &w.Name, &w.Status, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get workflow %s: %w", workflowID, notFound(err))
	}
	return &w, nil
}

// Trigger creates a pending run of an active workflow with the given input.
func (s *WorkflowService) Trigger(ctx context.Context, workspaceID, workflowID, triggerType string, input json.RawMessage) (*model.WorkflowRun, error) {
	wf, err := s.Get(ctx, workspaceID, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.Status != model.WorkflowStatusActive {
		return nil, fmt.Errorf("workflow %q: %w", wf.Name, ErrInactive)
	}
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	run := &model.WorkflowRun{
		ID:          platform.NewID(),
		WorkflowID:  workflowID,
		WorkspaceID: workspaceID,
		Status:      model.RunStatusPending,
		TriggerType: triggerType,
		InputData:   input,
	}
	err = s.db.QueryRow(ctx,
		`INSERT INTO workflow_runs (id, workflow_id, workspace_id, status, trigger_type, input_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 RETURNING created_at`,
		run.ID, run.WorkflowID, run.WorkspaceID, run.Status, run.TriggerType, run.InputData,
	).Scan(&run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create workflow run: %w", err)
	}
	return run, nil
}

// GetRun returns a run if it belongs to the workspace.
func (s *WorkflowService) GetRun(ctx context.Context, workspaceID, runID string) (*model.WorkflowRun, error) {
	var r model.WorkflowRun
	err := s.db.QueryRow(ctx,
		`SELECT id, workflow_id, workspace_id, status, trigger_type, input_data, output_data, error_message, started_at, completed_at, created_at
		 FROM workflow_runs WHERE id = $1 AND workspace_id = $2`,
		runID, workspaceID,
	).Scan(&r.ID, &r.WorkflowID, &r.WorkspaceID, &r.Status, &r.TriggerType, &r.InputData, &r.OutputData, &r.ErrorMessage, &r.StartedAt, &r.CompletedAt, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get workflow run %s: %w", runID, notFound(err))
	}
	return &r, nil
}
