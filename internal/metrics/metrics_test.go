package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServesGatewayCounters(t *testing.T) {
	AuthFailures.WithLabelValues("expired").Inc()
	AuditDropped.Inc()

	srv := NewServer(":0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `gateway_auth_failures_total{reason="expired"}`))
	assert.True(t, strings.Contains(body, "gateway_audit_dropped_total"))
}

func TestServer_Healthz(t *testing.T) {
	srv := NewServer(":0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRateLimitDecisions_Labels(t *testing.T) {
	before := testutil.ToFloat64(RateLimitDecisions.WithLabelValues("limited"))
	RateLimitDecisions.WithLabelValues("limited").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RateLimitDecisions.WithLabelValues("limited")))
}
