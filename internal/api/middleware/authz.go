package middleware

import (
	"net/http"

	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/ratelimit"
)

// RequireScope returns middleware that checks the credential grants scope.
// Write routes are also refused while the rate limiter runs degraded.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IdentityFrom(r.Context()).HasScope(scope) {
				response.WriteError(w, http.StatusForbidden, "insufficient scope: requires "+scope)
				return
			}
			if scope == model.ScopeWrite && ratelimit.IsDegraded(r.Context()) {
				response.WriteError(w, http.StatusServiceUnavailable, "write operations are temporarily unavailable")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
