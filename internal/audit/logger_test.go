package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfrom/agentos-gateway/internal/metrics"
	"github.com/starfrom/agentos-gateway/internal/model"
)

type memStore struct {
	mu      sync.Mutex
	entries []model.CallLogEntry
	err     error
	block   chan struct{}
}

func (s *memStore) Insert(ctx context.Context, e *model.CallLogEntry) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestLogger_RecordAndClose(t *testing.T) {
	store := &memStore{}
	l := NewLogger(store, zerolog.Nop())

	wsID := "ws-1"
	l.Record(model.CallLogEntry{WorkspaceID: &wsID, Endpoint: "/mcp", Method: "tools/list", StatusCode: 200})
	l.Record(model.CallLogEntry{Endpoint: "/auth", Method: "AUTH", StatusCode: 401})

	require.NoError(t, l.Close(context.Background()))
	require.Equal(t, 2, store.len())
	assert.Equal(t, "/mcp", store.entries[0].Endpoint)
	assert.Nil(t, store.entries[1].WorkspaceID)
	assert.False(t, store.entries[1].CreatedAt.IsZero())
}

func TestLogger_StoreFailureIsCountedNotPropagated(t *testing.T) {
	store := &memStore{err: errors.New("db down")}
	l := NewLogger(store, zerolog.Nop())
	before := testutil.ToFloat64(metrics.AuditDropped)

	l.Record(model.CallLogEntry{Endpoint: "/mcp"})
	require.NoError(t, l.Close(context.Background()))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AuditDropped))
}

func TestLogger_FullBufferDropsWithoutBlocking(t *testing.T) {
	store := &memStore{block: make(chan struct{})}
	l := NewLogger(store, zerolog.Nop())
	before := testutil.ToFloat64(metrics.AuditDropped)

	done := make(chan struct{})
	go func() {
		// One entry is held by the blocked drain goroutine, the rest fill the buffer.
		for i := 0; i < bufferSize+10; i++ {
			l.Record(model.CallLogEntry{Endpoint: "/mcp"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.AuditDropped)-before, float64(9))
	close(store.block)
	require.NoError(t, l.Close(context.Background()))
}

func TestLogger_RecordAfterCloseIsDropped(t *testing.T) {
	store := &memStore{}
	l := NewLogger(store, zerolog.Nop())
	require.NoError(t, l.Close(context.Background()))

	assert.NotPanics(t, func() { l.Record(model.CallLogEntry{Endpoint: "/mcp"}) })
	assert.Equal(t, 0, store.len())
}

func TestLogger_CloseHonoursContext(t *testing.T) {
	store := &memStore{block: make(chan struct{})}
	l := NewLogger(store, zerolog.Nop())
	l.Record(model.CallLogEntry{Endpoint: "/mcp"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Close(ctx), context.DeadlineExceeded)
	close(store.block)
}
