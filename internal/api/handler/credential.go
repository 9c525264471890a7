package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starfrom/agentos-gateway/internal/api/request"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// CredentialStore is the credential persistence the admin routes need.
type CredentialStore interface {
	Create(ctx context.Context, p core.CreateCredentialParams) (*model.Credential, string, error)
	ListByWorkspace(ctx context.Context, workspaceID string, kind model.CredentialKind) ([]model.Credential, error)
	Revoke(ctx context.Context, workspaceID string, kind model.CredentialKind, id string) error
	Delete(ctx context.Context, workspaceID string, kind model.CredentialKind, id string) error
}

// Credential handles /internal administration of one credential kind.
type Credential struct {
	svc  CredentialStore
	kind model.CredentialKind
	now  func() time.Time
}

// NewCredential creates a Credential handler for kind.
func NewCredential(svc CredentialStore, kind model.CredentialKind) *Credential {
	return &Credential{svc: svc, kind: kind, now: time.Now}
}

// CreatedCredential is returned once at issuance. APIKey or MCPToken holds
// the plaintext, depending on kind.
type CreatedCredential struct {
	model.Credential
	APIKey   string `json:"api_key,omitempty"`
	MCPToken string `json:"mcp_token,omitempty"`
}

// Create issues a credential. The plaintext is in the response and nowhere else.
func (h *Credential) Create(w http.ResponseWriter, r *http.Request) {
	var params core.CreateCredentialParams
	switch h.kind {
	case model.CredentialKindAPIKey:
		var req request.CreateAPIKey
		if err := request.Decode(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		params = core.CreateCredentialParams{
			WorkspaceID: req.WorkspaceID,
			Name:        req.Name,
			Scopes:      req.Scopes,
			ExpiresAt:   req.ExpiresAt,
			AllowedIPs:  req.AllowedIPs,
		}
		if req.RateLimitRPM != nil {
			params.RateLimitRPM = *req.RateLimitRPM
		}
	default:
		var req request.CreateMCPToken
		if err := request.Decode(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		params = core.CreateCredentialParams{
			WorkspaceID: req.WorkspaceID,
			Name:        req.Name,
			Scopes:      model.DefaultScopes,
			ExpiresAt:   req.ExpiresAt,
		}
	}
	params.Kind = h.kind

	if params.ExpiresAt != nil && !params.ExpiresAt.After(h.now()) {
		response.WriteError(w, http.StatusBadRequest, "expires_at must be in the future")
		return
	}

	cred, plaintext, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}

	resp := CreatedCredential{Credential: *cred}
	if h.kind == model.CredentialKindAPIKey {
		resp.APIKey = plaintext
	} else {
		resp.MCPToken = plaintext
	}
	response.WriteJSON(w, http.StatusCreated, resp)
}

// List returns a workspace's credentials of this kind, newest first.
func (h *Credential) List(w http.ResponseWriter, r *http.Request) {
	ws := r.URL.Query().Get("workspace_id")
	if ws == "" {
		response.WriteError(w, http.StatusBadRequest, "workspace_id is required")
		return
	}

	creds, err := h.svc.ListByWorkspace(r.Context(), ws, h.kind)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if creds == nil {
		creds = []model.Credential{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": creds})
}

// Revoke deactivates a credential. It stays listed but no longer authenticates.
func (h *Credential) Revoke(w http.ResponseWriter, r *http.Request) {
	ws, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Revoke(r.Context(), ws, h.kind, id); err != nil {
		writeStoreError(w, r, err, "credential not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a credential permanently.
func (h *Credential) Delete(w http.ResponseWriter, r *http.Request) {
	ws, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), ws, h.kind, id); err != nil {
		writeStoreError(w, r, err, "credential not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Credential) scopedID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	ws := r.URL.Query().Get("workspace_id")
	if ws == "" {
		response.WriteError(w, http.StatusBadRequest, "workspace_id is required")
		return "", "", false
	}
	return ws, id, true
}
