// Package audit writes the gateway call log asynchronously. Recording never
// blocks and never fails the request being audited.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/metrics"
	"github.com/starfrom/agentos-gateway/internal/model"
)

const (
	bufferSize   = 1024
	writeTimeout = 5 * time.Second
)

// Store persists call log entries.
type Store interface {
	Insert(ctx context.Context, e *model.CallLogEntry) error
}

// Logger is an async call log writer.
type Logger struct {
	store  Store
	logger zerolog.Logger
	ch     chan model.CallLogEntry
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewLogger(store Store, logger zerolog.Logger) *Logger {
	l := &Logger{
		store:  store,
		logger: logger,
		ch:     make(chan model.CallLogEntry, bufferSize),
		done:   make(chan struct{}),
	}
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer close(l.done)
	for entry := range l.ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := l.store.Insert(ctx, &entry)
		cancel()
		if err != nil {
			metrics.AuditDropped.Inc()
			l.logger.Error().Err(err).Str("endpoint", entry.Endpoint).Msg("failed to write call log")
		}
	}
}

// Record queues an entry. A full buffer or a closed logger drops it.
func (l *Logger) Record(entry model.CallLogEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		metrics.AuditDropped.Inc()
		return
	}

	select {
	case l.ch <- entry:
	default:
		metrics.AuditDropped.Inc()
		l.logger.Warn().Str("endpoint", entry.Endpoint).Msg("call log buffer full, dropping entry")
	}
}

// Close stops accepting entries and waits for queued ones to be written or
// for ctx to expire.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
