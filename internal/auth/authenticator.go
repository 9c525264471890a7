// Package auth validates bearer credentials and carries the resulting
// identity through request contexts.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/apierr"
	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/crypto"
	"github.com/starfrom/agentos-gateway/internal/metrics"
	"github.com/starfrom/agentos-gateway/internal/model"
)

// AuthEndpoint is the endpoint recorded in the call log for successful
// authentications.
const AuthEndpoint = "/auth"

const touchTimeout = 5 * time.Second

// CredentialStore is the subset of credential persistence the authenticator needs.
type CredentialStore interface {
	GetByHash(ctx context.Context, secretHash string) (*model.Credential, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}

// AuditRecorder queues call log entries without blocking.
type AuditRecorder interface {
	Record(entry model.CallLogEntry)
}

// Identity is what a valid credential authorizes.
type Identity struct {
	CredentialID string
	WorkspaceID  string
	Kind         model.CredentialKind
	Prefix       string
	Scopes       []string
	RateLimitRPM int
}

// HasScope reports whether the identity grants scope.
func (i *Identity) HasScope(scope string) bool {
	if i == nil {
		return false
	}
	for _, s := range i.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Authenticator checks bearer headers against the credential store.
type Authenticator struct {
	store  CredentialStore
	audit  AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthenticator(store CredentialStore, audit AuditRecorder, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

var (
	errMissingHeader = apierr.New(apierr.KindUnauthorized, "missing authorization header")
	errMalformed     = apierr.New(apierr.KindUnauthorized, "malformed authorization header")
	errIPDenied      = apierr.New(apierr.KindForbidden, "access denied from this IP address")
	errLookup        = apierr.New(apierr.KindInternal, "authentication failed")
)

// invalid returns the single message used for every lookup-stage failure of
// a kind, so responses never reveal whether a hash exists.
func invalid(kind model.CredentialKind, reason string) *apierr.Error {
	msg := "Invalid API key"
	if kind == model.CredentialKindMCPToken {
		msg = "Invalid MCP token"
	}
	return apierr.New(apierr.KindUnauthorized, msg).WithReason(reason)
}

// Authenticate validates an Authorization header value for a credential of
// the given kind. Checks run in order and stop at the first failure; only a
// successful call touches last-used and writes an audit entry.
func (a *Authenticator) Authenticate(ctx context.Context, header, clientIP string, kind model.CredentialKind) (*Identity, error) {
	if header == "" {
		return nil, a.fail(errMissingHeader.WithReason("missing"))
	}

	scheme, secret, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return nil, a.fail(errMalformed.WithReason("malformed"))
	}
	parsedKind, ok := crypto.ParseSecret(secret)
	if !ok {
		return nil, a.fail(errMalformed.WithReason("malformed"))
	}
	if parsedKind != kind {
		return nil, a.fail(invalid(kind, "wrong_kind"))
	}

	cred, err := a.store.GetByHash(ctx, crypto.HashSecret(secret))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, a.fail(invalid(kind, "not_found"))
		}
		return nil, a.fail(errLookup.WithReason("lookup_error").Wrap(err))
	}

	now := a.now()
	switch {
	case cred.Kind != kind:
		return nil, a.fail(invalid(kind, "wrong_kind"))
	case !cred.IsActive:
		return nil, a.fail(invalid(kind, "inactive"))
	case cred.Expired(now):
		return nil, a.fail(invalid(kind, "expired"))
	case !cred.IPAllowed(clientIP):
		return nil, a.fail(errIPDenied.WithReason("ip_denied"))
	}

	go a.touch(cred.ID, now)

	credID, wsID := cred.ID, cred.WorkspaceID
	a.audit.Record(model.CallLogEntry{
		CredentialID: &credID,
		WorkspaceID:  &wsID,
		Endpoint:     AuthEndpoint,
		Method:       "AUTH",
		StatusCode:   http.StatusOK,
		CreatedAt:    now,
	})

	return &Identity{
		CredentialID: cred.ID,
		WorkspaceID:  cred.WorkspaceID,
		Kind:         cred.Kind,
		Prefix:       cred.Prefix,
		Scopes:       cred.Scopes,
		RateLimitRPM: cred.RateLimitRPM,
	}, nil
}

func (a *Authenticator) touch(id string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
	defer cancel()
	if err := a.store.TouchLastUsed(ctx, id, at); err != nil {
		a.logger.Warn().Err(err).Str("credential_id", id).Msg("failed to update last used")
	}
}

func (a *Authenticator) fail(e *apierr.Error) error {
	metrics.AuthFailures.WithLabelValues(e.Reason).Inc()
	return e
}
