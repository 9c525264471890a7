package core

import (
	"context"
	"fmt"

	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/platform"
)

// SessionService reads chat history.
type SessionService struct {
	db DB
}

// NewSessionService creates a new SessionService.
func NewSessionService(db DB) *SessionService {
	return &SessionService{db: db}
}

// ListMessages returns up to limit messages of a session in chronological
// order. A session outside the workspace yields ErrNotFound.
func (s *SessionService) ListMessages(ctx context.Context, workspaceID, sessionID string, limit int) ([]model.ChatMessage, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1 AND workspace_id = $2)`,
		sessionID, workspaceID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check session %s: %w", sessionID, err)
	}
	if !exists {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM chat_messages WHERE session_id = $1 ORDER BY created_at ASC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// RecordTurn stores a user message and the agent's reply. An empty sessionID
// opens a new session for the agent; the session id is returned either way.
func (s *SessionService) RecordTurn(ctx context.Context, workspaceID, agentID, sessionID, userMessage, reply string) (string, error) {
	if sessionID == "" {
		sessionID = platform.NewID()
		_, err := s.db.Exec(ctx,
			`INSERT INTO chat_sessions (id, workspace_id, agent_id, created_at) VALUES ($1, $2, $3, now())`,
			sessionID, workspaceID, agentID,
		)
		if err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
	} else {
		tag, err := s.db.Exec(ctx,
			`UPDATE chat_sessions SET updated_at = now() WHERE id = $1 AND workspace_id = $2`,
			sessionID, workspaceID,
		)
		if err != nil {
			return "", fmt.Errorf("touch session %s: %w", sessionID, err)
		}
		if tag.RowsAffected() == 0 {
			return "", fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, now()), ($5, $2, $6, $7, now() + interval '1 microsecond')`,
		platform.NewID(), sessionID, model.RoleUser, userMessage,
		platform.NewID(), model.RoleAssistant, reply,
	)
	if err != nil {
		return "", fmt.Errorf("insert messages: %w", err)
	}
	return sessionID, nil
}
