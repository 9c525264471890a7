package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starfrom/agentos-gateway/internal/api/request"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/model"
)

type Session struct {
	svc SessionStore
}

func NewSession(svc SessionStore) *Session {
	return &Session{svc: svc}
}

// Messages returns a session's messages, oldest first.
func (h *Session) Messages(w http.ResponseWriter, r *http.Request) {
	sessionID, err := request.RequireID(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	pg := request.ParsePagination(r)

	msgs, err := h.svc.ListMessages(r.Context(), workspaceID(r), sessionID, pg.Limit)
	if err != nil {
		writeStoreError(w, r, err, "session not found")
		return
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": msgs})
}
