package middleware

import (
	"context"
	"net/http"

	"github.com/starfrom/agentos-gateway/internal/apierr"
	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/ratelimit"
)

// Limiter decides whether a tenant may make another request.
type Limiter interface {
	Check(ctx context.Context, tenant string, limit int) (ratelimit.Result, error)
}

var errRateLimited = apierr.New(apierr.KindRateLimited, "Rate limit exceeded")

// RateLimit returns a middleware that charges each request to the
// authenticated workspace, or to the credential when perKey is set, in which
// case the credential's own quota applies. It must run after Auth.
// X-RateLimit-* headers are set on every response the limiter decided.
func RateLimit(l Limiter, perKey bool, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFrom(r.Context())
			if identity == nil {
				writeErr(w, apierr.New(apierr.KindUnauthorized, "not authenticated"))
				return
			}

			tenant, limit := identity.WorkspaceID, 0
			if perKey {
				tenant, limit = identity.CredentialID, identity.RateLimitRPM
			}

			res, err := l.Check(r.Context(), tenant, limit)
			res.SetHeaders(w.Header())
			if err != nil {
				writeErr(w, err)
				return
			}
			if !res.Allowed {
				writeErr(w, errRateLimited)
				return
			}

			if res.Degraded {
				r = r.WithContext(ratelimit.WithDegraded(r.Context()))
			}
			next.ServeHTTP(w, r)
		})
	}
}
