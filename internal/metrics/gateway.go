package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures counts rejected credentials by internal reason
	// (malformed, not_found, inactive, expired, ip_denied, lookup_error).
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_auth_failures_total",
			Help: "Total number of rejected authentication attempts",
		},
		[]string{"reason"},
	)

	// RateLimitDecisions counts limiter outcomes: allowed, limited, store_error.
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_ratelimit_decisions_total",
			Help: "Total number of rate limit decisions by outcome",
		},
		[]string{"outcome"},
	)

	AuditDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_audit_dropped_total",
			Help: "Audit entries dropped because the buffer was full or the write failed",
		},
	)

	MCPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_mcp_requests_total",
			Help: "Total number of MCP JSON-RPC requests by method and outcome",
		},
		[]string{"method", "outcome"},
	)
)
