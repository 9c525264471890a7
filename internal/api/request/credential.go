package request

import "time"

// CreateAPIKey is the body of POST /internal/api-keys.
type CreateAPIKey struct {
	WorkspaceID  string     `json:"workspace_id" validate:"required,max=255"`
	Name         string     `json:"name" validate:"required,min=1,max=255"`
	Scopes       []string   `json:"scopes" validate:"omitempty,dive,scope"`
	ExpiresAt    *time.Time `json:"expires_at"`
	AllowedIPs   []string   `json:"allowed_ips" validate:"omitempty,dive,ip"`
	RateLimitRPM *int       `json:"rate_limit_rpm" validate:"omitempty,min=1,max=10000"`
}

// CreateMCPToken is the body of POST /internal/mcp-tokens.
type CreateMCPToken struct {
	WorkspaceID string     `json:"workspace_id" validate:"required,max=255"`
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	ExpiresAt   *time.Time `json:"expires_at"`
}
