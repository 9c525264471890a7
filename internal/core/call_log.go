package core

import (
	"context"
	"fmt"

	"github.com/starfrom/agentos-gateway/internal/model"
)

// CallLogService persists and reads the gateway's per-request audit trail.
type CallLogService struct {
	db DB
}

// NewCallLogService creates a new CallLogService.
func NewCallLogService(db DB) *CallLogService {
	return &CallLogService{db: db}
}

// Insert appends one entry. CreatedAt is assigned by the database when zero.
func (s *CallLogService) Insert(ctx context.Context, e *model.CallLogEntry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO call_logs (credential_id, workspace_id, endpoint, method, status_code, latency_ms, tokens_used, error_message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))`,
		e.CredentialID, e.WorkspaceID, e.Endpoint, e.Method, e.StatusCode, e.LatencyMs, e.TokensUsed, e.ErrorMessage, nullTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	return nil
}

// ListByWorkspace returns a page of entries for a workspace, newest first.
// afterID is the id of the last entry of the previous page, or 0 for the
// first page. hasMore reports whether another page exists.
func (s *CallLogService) ListByWorkspace(ctx context.Context, workspaceID string, limit int, afterID int64) ([]model.CallLogEntry, bool, error) {
	query := `SELECT id, credential_id, workspace_id, endpoint, method, status_code, latency_ms, tokens_used, error_message, created_at
		FROM call_logs WHERE workspace_id = $1`
	args := []any{workspaceID}
	if afterID > 0 {
		query += ` AND id < $2`
		args = append(args, afterID)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT %d`, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list call logs: %w", err)
	}
	defer rows.Close()

	var entries []model.CallLogEntry
	for rows.Next() {
		var e model.CallLogEntry
		if err := rows.Scan(&e.ID, &e.CredentialID, &e.WorkspaceID, &e.Endpoint, &e.Method, &e.StatusCode, &e.LatencyMs, &e.TokensUsed, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan call log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate call logs: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	return entries, hasMore, nil
}
