package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/starfrom/agentos-gateway/internal/api/request"
	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// CallLogStore pages through a workspace's call log.
type CallLogStore interface {
	ListByWorkspace(ctx context.Context, workspaceID string, limit int, afterID int64) ([]model.CallLogEntry, bool, error)
}

// Logs serves the caller's own call log, newest first.
type Logs struct {
	svc CallLogStore
}

func NewLogs(svc CallLogStore) *Logs {
	return &Logs{svc: svc}
}

// List returns one page of call log entries. next_cursor is the id of the
// last entry on the page.
func (h *Logs) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)
	afterID, err := pg.AfterID()
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, hasMore, err := h.svc.ListByWorkspace(r.Context(), workspaceID(r), pg.Limit, afterID)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if entries == nil {
		entries = []model.CallLogEntry{}
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		nextCursor = strconv.FormatInt(entries[len(entries)-1].ID, 10)
	}
	response.WritePaginated(w, http.StatusOK, entries, nextCursor, hasMore)
}
