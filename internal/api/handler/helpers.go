package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/audit"
	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/core"
)

// writeStoreError maps a store error to a response. Not-found becomes 404
// with notFoundMsg; anything else is logged and hidden behind a 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	if errors.Is(err, core.ErrNotFound) {
		audit.StatsFrom(r.Context()).SetError(notFoundMsg)
		response.WriteError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("store error")
	audit.StatsFrom(r.Context()).SetError("internal error")
	response.WriteError(w, http.StatusInternalServerError, "internal error")
}

// workspaceID returns the authenticated caller's workspace. Routes using it
// always run behind the auth middleware.
func workspaceID(r *http.Request) string {
	if id := auth.IdentityFrom(r.Context()); id != nil {
		return id.WorkspaceID
	}
	return ""
}
