package core

import (
	"context"
	"fmt"

	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/platform"
)

// WebhookService manages a workspace's outbound webhook subscriptions.
type WebhookService struct {
	db DB
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(db DB) *WebhookService {
	return &WebhookService{db: db}
}

// List returns the workspace's webhooks, newest first.
func (s *WebhookService) List(ctx context.Context, workspaceID string) ([]model.Webhook, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, url, events, is_active, created_at
		 FROM webhooks WHERE workspace_id = $1 ORDER BY created_at DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	hooks := []model.Webhook{}
	for rows.Next() {
		h := model.Webhook{WorkspaceID: workspaceID}
		if err := rows.Scan(&h.ID, &h.Name, &h.URL, &h.Events, &h.IsActive, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		hooks = append(hooks, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhooks: %w", err)
	}
	return hooks, nil
}

// Create subscribes url to events for the workspace. An empty secret is
// stored as NULL.
func (s *WebhookService) Create(ctx context.Context, workspaceID, name, url string, events []string, secret string) (*model.Webhook, error) {
	h := &model.Webhook{
		ID:          platform.NewID(),
		WorkspaceID: workspaceID,
		Name:        name,
		URL:         url,
		Events:      events,
		IsActive:    true,
	}
	if secret != "" {
		h.Secret = &secret
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO webhooks (id, workspace_id, name, url, events, secret, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, true, now())
		 RETURNING created_at`,
		h.ID, workspaceID, name, url, events, h.Secret,
	).Scan(&h.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert webhook: %w", err)
	}
	return h, nil
}

// Delete removes a webhook of the workspace. Returns ErrNotFound when no
// such webhook exists in the workspace.
func (s *WebhookService) Delete(ctx context.Context, workspaceID, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM webhooks WHERE id = $1 AND workspace_id = $2`,
		id, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("delete webhook %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete webhook %s: %w", id, ErrNotFound)
	}
	return nil
}
