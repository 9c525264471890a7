package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/ratelimit"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, header, clientIP string, kind model.CredentialKind) (*auth.Identity, error) {
	args := m.Called(ctx, header, clientIP, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Check(ctx context.Context, tenant string, limit int) (ratelimit.Result, error) {
	args := m.Called(ctx, tenant, limit)
	return args.Get(0).(ratelimit.Result), args.Error(1)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []model.CallLogEntry
}

func (r *recordingAudit) Record(e model.CallLogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

var testIdentity = &auth.Identity{
	CredentialID: "cred-1",
	WorkspaceID:  "ws-1",
	Kind:         model.CredentialKindAPIKey,
	Prefix:       "sk-0123abcd",
	Scopes:       []string{model.ScopeRead, model.ScopeWrite},
	RateLimitRPM: 120,
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
