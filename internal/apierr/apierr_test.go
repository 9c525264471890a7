package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_CodeAndStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		code   string
		status int
	}{
		{KindUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
		{KindForbidden, "FORBIDDEN", http.StatusForbidden},
		{KindRateLimited, "RATE_LIMITED", http.StatusTooManyRequests},
		{KindNotFound, "NOT_FOUND", http.StatusNotFound},
		{KindBadRequest, "BAD_REQUEST", http.StatusBadRequest},
		{KindUnavailable, "UNAVAILABLE", http.StatusServiceUnavailable},
		{KindInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.kind.Code())
			assert.Equal(t, tt.status, tt.kind.Status())
		})
	}
}

func TestError_ReasonStaysPrivate(t *testing.T) {
	err := New(KindUnauthorized, "invalid API key").WithReason("credential revoked")

	assert.Equal(t, "invalid API key", Public(err))
	assert.Contains(t, err.Error(), "credential revoked")
}

func TestKindOf_WrappedError(t *testing.T) {
	base := New(KindForbidden, "IP not allowed")
	wrapped := fmt.Errorf("authenticate: %w", base)

	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindForbidden))
	assert.False(t, Is(wrapped, KindUnauthorized))
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal error", Public(err))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := New(KindInternal, "store unavailable").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "dial tcp: refused", err.Reason)
}
