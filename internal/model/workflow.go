package model

import (
	"encoding/json"
	"time"
)

// Workflow statuses.
const (
	WorkflowStatusActive = "active"
)

// Workflow run statuses.
const (
	RunStatusPending = "pending"
)

// Workflow run trigger types.
const (
	TriggerTypeMCP = "mcp"
	TriggerTypeAPI = "api"
)

// Workflow is a workspace-owned automation definition.
type Workflow struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkflowRun is one execution of a workflow. Runs are created pending and
// advanced by an external executor.
type WorkflowRun struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id"`
	WorkspaceID  string          `json:"workspace_id"`
	Status       string          `json:"status"`
	TriggerType  string          `json:"trigger_type"`
	InputData    json.RawMessage `json:"input_data,omitempty"`
	OutputData   json.RawMessage `json:"output_data,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
