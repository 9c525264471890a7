package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/ratelimit"
)

func TestRequireScope(t *testing.T) {
	readOnly := &auth.Identity{WorkspaceID: "ws-1", Scopes: []string{model.ScopeRead}}

	tests := []struct {
		name     string
		identity *auth.Identity
		scope    string
		degraded bool
		want     int
	}{
		{"granted", testIdentity, model.ScopeWrite, false, http.StatusOK},
		{"missing scope", readOnly, model.ScopeWrite, false, http.StatusForbidden},
		{"no identity", nil, model.ScopeRead, false, http.StatusForbidden},
		{"degraded write", testIdentity, model.ScopeWrite, true, http.StatusServiceUnavailable},
		{"degraded read", readOnly, model.ScopeRead, true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/v1/workflows/wf/trigger", nil)
			ctx := r.Context()
			if tt.identity != nil {
				ctx = auth.WithIdentity(ctx, tt.identity)
			}
			if tt.degraded {
				ctx = ratelimit.WithDegraded(ctx)
			}

			rec := httptest.NewRecorder()
			RequireScope(tt.scope)(http.HandlerFunc(okHandler)).ServeHTTP(rec, r.WithContext(ctx))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminToken(t *testing.T) {
	handler := AdminToken("s3cret")(http.HandlerFunc(okHandler))

	for header, want := range map[string]int{
		"s3cret":  http.StatusOK,
		"s3cret2": http.StatusUnauthorized,
		"":        http.StatusUnauthorized,
	} {
		r := httptest.NewRequest("GET", "/internal/api-keys", nil)
		if header != "" {
			r.Header.Set("X-Admin-Token", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, want, rec.Code, "header %q", header)
	}
}

func TestAdminToken_EmptyConfiguredTokenRejectsAll(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminToken("")(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest("GET", "/internal/api-keys", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
