package model

import "time"

// CallLogEntry is an append-only audit record of one gateway call.
// CredentialID and WorkspaceID are nil for calls that never authenticated.
type CallLogEntry struct {
	ID           int64     `json:"id"`
	CredentialID *string   `json:"credential_id,omitempty"`
	WorkspaceID  *string   `json:"workspace_id,omitempty"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	StatusCode   int       `json:"status_code"`
	LatencyMs    *int      `json:"latency_ms,omitempty"`
	TokensUsed   *int      `json:"tokens_used,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
