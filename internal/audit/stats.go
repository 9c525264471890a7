package audit

import (
	"context"
	"sync"
)

// CallStats collects per-call details that handlers learn while serving a
// request and that belong in its call log entry.
type CallStats struct {
	mu           sync.Mutex
	tokensUsed   int
	hasTokens    bool
	errorMessage string
}

// AddTokens adds model tokens consumed by the call.
func (s *CallStats) AddTokens(n int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.tokensUsed += n
	s.hasTokens = true
	s.mu.Unlock()
}

// SetError records an error message for the call.
func (s *CallStats) SetError(msg string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.errorMessage = msg
	s.mu.Unlock()
}

// Snapshot returns the collected values as optional fields.
func (s *CallStats) Snapshot() (tokens *int, errMsg *string) {
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasTokens {
		n := s.tokensUsed
		tokens = &n
	}
	if s.errorMessage != "" {
		m := s.errorMessage
		errMsg = &m
	}
	return tokens, errMsg
}

type statsKey struct{}

// WithStats attaches a fresh CallStats to ctx.
func WithStats(ctx context.Context) (context.Context, *CallStats) {
	s := &CallStats{}
	return context.WithValue(ctx, statsKey{}, s), s
}

// StatsFrom returns the CallStats in ctx. The nil result is safe to use.
func StatsFrom(ctx context.Context) *CallStats {
	s, _ := ctx.Value(statsKey{}).(*CallStats)
	return s
}
