package response

import (
	"encoding/json"
	"net/http"

	"github.com/starfrom/agentos-gateway/internal/apierr"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorBody is the JSON shape of every REST error.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: codeForStatus(status)})
}

// WriteAPIError writes err using its apierr kind. Unclassified errors become
// a generic 500 so internal details never reach the caller.
func WriteAPIError(w http.ResponseWriter, err error) {
	kind := apierr.KindOf(err)
	WriteJSON(w, kind.Status(), ErrorBody{Error: apierr.Public(err), Code: kind.Code()})
}

var statusKinds = []apierr.Kind{
	apierr.KindUnauthorized,
	apierr.KindForbidden,
	apierr.KindRateLimited,
	apierr.KindNotFound,
	apierr.KindBadRequest,
	apierr.KindUnavailable,
}

func codeForStatus(status int) string {
	for _, k := range statusKinds {
		if k.Status() == status {
			return k.Code()
		}
	}
	if status >= 400 && status < 500 {
		return apierr.KindBadRequest.Code()
	}
	return apierr.KindInternal.Code()
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePaginated writes a paginated JSON response.
func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}
