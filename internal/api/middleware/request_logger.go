package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/auth"
)

// RequestLogger returns a middleware that logs each request. The workspace
// is read after the handler ran, so it is set for authenticated calls only.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())
			reqLogger := logger.With().Str("request_id", reqID).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			var identity *auth.Identity
			r = r.WithContext(withIdentitySink(r.Context(), &identity))

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			ev := reqLogger.Info()
			if ww.status >= http.StatusInternalServerError {
				ev = reqLogger.Warn()
			}
			if identity != nil {
				ev = ev.Str("workspace_id", identity.WorkspaceID).Str("key_prefix", identity.Prefix)
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

type identitySinkKey struct{}

// withIdentitySink lets Auth, which runs deeper in the chain, hand the
// identity back to the request logger.
func withIdentitySink(ctx context.Context, dst **auth.Identity) context.Context {
	return context.WithValue(ctx, identitySinkKey{}, dst)
}

func reportIdentity(ctx context.Context, id *auth.Identity) {
	if dst, ok := ctx.Value(identitySinkKey{}).(**auth.Identity); ok {
		*dst = id
	}
}
