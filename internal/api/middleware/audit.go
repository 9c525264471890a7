package middleware

import (
	"net/http"
	"time"

	"github.com/starfrom/agentos-gateway/internal/audit"
	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// Audit returns a middleware that records one call log entry per request.
// It runs after Auth so every entry carries the caller's credential and
// workspace; handlers add tokens and error details through audit.CallStats.
func Audit(rec auth.AuditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, stats := audit.WithStats(r.Context())

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			latency := int(time.Since(start).Milliseconds())
			tokens, errMsg := stats.Snapshot()
			entry := model.CallLogEntry{
				Endpoint:     r.URL.Path,
				Method:       r.Method,
				StatusCode:   sw.status,
				LatencyMs:    &latency,
				TokensUsed:   tokens,
				ErrorMessage: errMsg,
				CreatedAt:    start.UTC(),
			}
			if id := auth.IdentityFrom(ctx); id != nil {
				credID, wsID := id.CredentialID, id.WorkspaceID
				entry.CredentialID = &credID
				entry.WorkspaceID = &wsID
			}
			rec.Record(entry)
		})
	}
}
