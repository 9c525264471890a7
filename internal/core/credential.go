package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/starfrom/agentos-gateway/internal/crypto"
	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/platform"
)

// CreateCredentialParams describes a credential to issue.
type CreateCredentialParams struct {
	WorkspaceID  string
	Kind         model.CredentialKind
	Name         string
	Scopes       []string
	ExpiresAt    *time.Time
	AllowedIPs   []string
	RateLimitRPM int
}

// CredentialService manages API keys and MCP tokens in the credentials table.
type CredentialService struct {
	db DB
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(db DB) *CredentialService {
	return &CredentialService{db: db}
}

const credentialColumns = `id, workspace_id, kind, name, prefix, scopes, is_active, expires_at, allowed_ips, rate_limit_rpm, last_used_at, created_at`

// Create issues a new secret, stores its hash, and returns the stored model
// along with the plaintext. The plaintext must be shown to the caller exactly
// once.
func (s *CredentialService) Create(ctx context.Context, p CreateCredentialParams) (*model.Credential, string, error) {
	if !p.Kind.Valid() {
		return nil, "", fmt.Errorf("create credential: unknown kind %q", p.Kind)
	}
	if p.WorkspaceID == "" {
		return nil, "", fmt.Errorf("create credential: workspace id is required")
	}

	secret := crypto.Issue(p.Kind)

	scopes := p.Scopes
	if len(scopes) == 0 {
		scopes = model.DefaultScopes
	}
	allowedIPs := make([]string, 0, len(p.AllowedIPs))
	for _, ip := range p.AllowedIPs {
		allowedIPs = append(allowedIPs, model.CanonicalIP(ip))
	}
	rpm := p.RateLimitRPM
	if rpm <= 0 {
		rpm = model.DefaultRateLimitRPM
	}

	c := &model.Credential{
		ID:           platform.NewID(),
		WorkspaceID:  p.WorkspaceID,
		Kind:         p.Kind,
		Name:         p.Name,
		SecretHash:   secret.Hash,
		Prefix:       secret.Prefix,
		Scopes:       scopes,
		IsActive:     true,
		ExpiresAt:    p.ExpiresAt,
		AllowedIPs:   allowedIPs,
		RateLimitRPM: rpm,
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO credentials (id, workspace_id, kind, name, secret_hash, prefix, scopes, is_active, expires_at, allowed_ips, rate_limit_rpm, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, $9, $10, now())
		 RETURNING created_at`,
		c.ID, c.WorkspaceID, string(c.Kind), c.Name, c.SecretHash, c.Prefix, c.Scopes, c.ExpiresAt, c.AllowedIPs, c.RateLimitRPM,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("insert credential: %w", err)
	}

	return c, secret.Plaintext, nil
}

// GetByHash looks up a credential by the digest of its plaintext. Inactive
// and expired credentials are returned too; the caller decides.
func (s *CredentialService) GetByHash(ctx context.Context, secretHash string) (*model.Credential, error) {
	var c model.Credential
	var kind string
	err := s.db.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE secret_hash = $1`, secretHash,
	).Scan(&c.ID, &c.WorkspaceID, &kind, &c.Name, &c.Prefix, &c.Scopes, &c.IsActive, &c.ExpiresAt, &c.AllowedIPs, &c.RateLimitRPM, &c.LastUsedAt, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get credential by hash: %w", notFound(err))
	}
	c.Kind = model.CredentialKind(kind)
	c.SecretHash = secretHash
	if err := validateCredential(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// TouchLastUsed records that the credential was used at the given time.
func (s *CredentialService) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.Exec(ctx, `UPDATE credentials SET last_used_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch credential %s: %w", id, err)
	}
	return nil
}

// ListByWorkspace returns a workspace's credentials of one kind, newest first.
func (s *CredentialService) ListByWorkspace(ctx context.Context, workspaceID string, kind model.CredentialKind) ([]model.Credential, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE workspace_id = $1 AND kind = $2 ORDER BY created_at DESC`,
		workspaceID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		var c model.Credential
		var k string
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &k, &c.Name, &c.Prefix, &c.Scopes, &c.IsActive, &c.ExpiresAt, &c.AllowedIPs, &c.RateLimitRPM, &c.LastUsedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		c.Kind = model.CredentialKind(k)
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return creds, nil
}

// Revoke deactivates a credential owned by the workspace.
func (s *CredentialService) Revoke(ctx context.Context, workspaceID string, kind model.CredentialKind, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE credentials SET is_active = false WHERE id = $1 AND workspace_id = $2 AND kind = $3`,
		id, workspaceID, string(kind),
	)
	if err != nil {
		return fmt.Errorf("revoke credential %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revoke credential %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete physically removes a credential owned by the workspace.
func (s *CredentialService) Delete(ctx context.Context, workspaceID string, kind model.CredentialKind, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM credentials WHERE id = $1 AND workspace_id = $2 AND kind = $3`,
		id, workspaceID, string(kind),
	)
	if err != nil {
		return fmt.Errorf("delete credential %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete credential %s: %w", id, ErrNotFound)
	}
	return nil
}

var errMalformedCredential = errors.New("malformed credential record")

// validateCredential rejects rows missing fields the authenticator relies on.
func validateCredential(c *model.Credential) error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", errMalformedCredential)
	case c.WorkspaceID == "":
		return fmt.Errorf("%w: credential %s has no workspace", errMalformedCredential, c.ID)
	case !c.Kind.Valid():
		return fmt.Errorf("%w: credential %s has kind %q", errMalformedCredential, c.ID, c.Kind)
	}
	return nil
}
