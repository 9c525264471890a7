package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// ErrorWriter renders a classified error for one surface. REST routes write
// {"error","code"} bodies; /mcp writes JSON-RPC envelopes.
type ErrorWriter func(w http.ResponseWriter, err error)

// Authenticator validates an Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header, clientIP string, kind model.CredentialKind) (*auth.Identity, error)
}

// Auth returns a middleware that requires a bearer credential of the given
// kind and stores the resulting identity in the request context.
func Auth(a Authenticator, kind model.CredentialKind, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"), ClientIP(r), kind)
			if err != nil {
				writeErr(w, err)
				return
			}
			reportIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// ClientIP returns the caller address without port. When RealIP runs first,
// RemoteAddr already holds the forwarded address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
