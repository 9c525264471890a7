package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starfrom/agentos-gateway/internal/api/request"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// WebhookStore manages a workspace's webhooks.
type WebhookStore interface {
	List(ctx context.Context, workspaceID string) ([]model.Webhook, error)
	Create(ctx context.Context, workspaceID, name, url string, events []string, secret string) (*model.Webhook, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

// Webhook serves the webhook routes of the REST API.
type Webhook struct {
	store WebhookStore
}

func NewWebhook(store WebhookStore) *Webhook {
	return &Webhook{store: store}
}

// List returns the workspace's webhooks, newest first.
func (h *Webhook) List(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.store.List(r.Context(), workspaceID(r))
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if hooks == nil {
		hooks = []model.Webhook{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": hooks})
}

// Create subscribes a URL to workspace events.
func (h *Webhook) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateWebhook
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	hook, err := h.store.Create(r.Context(), workspaceID(r), req.Name, req.URL, req.Events, req.Secret)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	response.WriteJSON(w, http.StatusCreated, hook)
}

// Delete removes a webhook of the workspace.
func (h *Webhook) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "webhookID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Delete(r.Context(), workspaceID(r), id); err != nil {
		writeStoreError(w, r, err, "webhook not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
