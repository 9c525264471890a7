package core

import (
	"context"
	"fmt"

	"github.com/starfrom/agentos-gateway/internal/model"
)

// AgentService reads agent definitions. Every query is scoped to a workspace.
type AgentService struct {
	db DB
}

// NewAgentService creates a new AgentService.
func NewAgentService(db DB) *AgentService {
	return &AgentService{db: db}
}

// ListActive returns the workspace's active agents ordered by name.
func (s *AgentService) ListActive(ctx context.Context, workspaceID string) ([]model.Agent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, workspace_id, name, description, model, status, is_active, created_at
		 FROM agents WHERE workspace_id = $1 AND is_active = true ORDER BY name`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		var a model.Agent
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &a.Name, &a.Description, &a.Model, &a.Status, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}
	return agents, nil
}

// Get returns one agent if it belongs to the workspace.
func (s *AgentService) Get(ctx context.Context, workspaceID, agentID string) (*model.Agent, error) {
	var a model.Agent
	err := s.db.QueryRow(ctx,
		`SELECT id, workspace_id, name, description, model, status, is_active, created_at
		 FROM agents WHERE id = $1 AND workspace_id = $2`,
		agentID, workspaceID,
	).Scan(&a.ID, &a.WorkspaceID, &a.Name, &a.Description, &a.Model, &a.Status, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", agentID, notFound(err))
	}
	return &a, nil
}
