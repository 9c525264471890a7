// Package ratelimit enforces per-tenant sliding-window quotas on a shared
// Redis store. Counting is atomic inside a Lua script so every gateway
// instance sees the same window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/apierr"
	"github.com/starfrom/agentos-gateway/internal/metrics"
)

// Policy decides what happens when the store cannot be reached.
type Policy string

const (
	// PolicyOpen allows the request and logs a warning.
	PolicyOpen Policy = "open"
	// PolicyClosed rejects the request as unavailable.
	PolicyClosed Policy = "closed"
	// PolicyScoped allows the request but marks it degraded so write
	// operations downstream refuse to run.
	PolicyScoped Policy = "scoped"
)

const DefaultPrefix = "agentos:ratelimit:"

// slidingLog keeps one sorted-set member per admitted request, scored by the
// store's own clock in milliseconds. Rejected requests are not recorded.
// Returns {allowed, count, oldest_ms, now_ms}.
var slidingLog = redis.NewScript(`
local key = KEYS[1]
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local member = ARGV[3]

local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, member)
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
return {allowed, count, oldest, now}
`)

// Result is one limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// Degraded is set when the store failed and the policy admitted the
	// request anyway in scoped mode.
	Degraded bool
}

// Options configures a Limiter.
type Options struct {
	Window time.Duration
	Limit  int
	Policy Policy
	Prefix string
}

// Limiter checks quotas against Redis.
type Limiter struct {
	client redis.Scripter
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

func NewLimiter(client redis.Scripter, opts Options, logger zerolog.Logger) *Limiter {
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Limit <= 0 {
		opts.Limit = 60
	}
	if opts.Policy == "" {
		opts.Policy = PolicyScoped
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &Limiter{client: client, opts: opts, logger: logger, now: time.Now}
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.opts.Window }

// Check records one request for tenant and reports whether it fits the
// quota. limit overrides the configured default when positive.
func (l *Limiter) Check(ctx context.Context, tenant string, limit int) (Result, error) {
	if limit <= 0 {
		limit = l.opts.Limit
	}

	raw, err := slidingLog.Run(ctx, l.client,
		[]string{l.opts.Prefix + tenant},
		l.opts.Window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err == nil && len(raw) != 4 {
		err = fmt.Errorf("unexpected script reply of length %d", len(raw))
	}
	if err != nil {
		return l.storeFailure(tenant, limit, err)
	}

	res := decide(limit, l.opts.Window, raw[0] == 1, raw[1], raw[2])
	if res.Allowed {
		metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
	} else {
		metrics.RateLimitDecisions.WithLabelValues("limited").Inc()
	}
	return res, nil
}

// decide turns a script reply into a Result. The reset time is when the
// oldest admitted request leaves the window, which only moves forward.
func decide(limit int, window time.Duration, allowed bool, count, oldestMs int64) Result {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(oldestMs).Add(window).UTC(),
	}
}

func (l *Limiter) storeFailure(tenant string, limit int, err error) (Result, error) {
	metrics.RateLimitDecisions.WithLabelValues("store_error").Inc()

	res := Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit,
		ResetAt:   l.now().Add(l.opts.Window).UTC(),
	}

	switch l.opts.Policy {
	case PolicyClosed:
		l.logger.Error().Err(err).Str("tenant", tenant).Msg("rate limit store unavailable, rejecting request")
		res.Allowed = false
		res.Remaining = 0
		return res, apierr.New(apierr.KindUnavailable, "rate limiting unavailable").Wrap(err)
	case PolicyOpen:
		l.logger.Warn().Err(err).Str("tenant", tenant).Msg("rate limit store unavailable, allowing request")
	default:
		l.logger.Warn().Err(err).Str("tenant", tenant).Msg("rate limit store unavailable, allowing read-only request")
		res.Degraded = true
	}
	return res, nil
}
