package ratelimit

import (
	"context"
	"net/http"
	"strconv"
)

const resetLayout = "2006-01-02T15:04:05.000Z07:00"

// SetHeaders writes the X-RateLimit-* headers for r.
func (r Result) SetHeaders(h http.Header) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(r.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(r.Remaining))
	h.Set("X-RateLimit-Reset", r.ResetAt.UTC().Format(resetLayout))
}

type contextKey struct{}

// WithDegraded marks ctx as admitted while the limiter store was down.
func WithDegraded(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, true)
}

// IsDegraded reports whether ctx was admitted in degraded mode.
func IsDegraded(ctx context.Context) bool {
	v, _ := ctx.Value(contextKey{}).(bool)
	return v
}
