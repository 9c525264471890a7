package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/starfrom/agentos-gateway/internal/llm"
	"github.com/starfrom/agentos-gateway/internal/model"
)

type mockAgents struct {
	mock.Mock
}

func (m *mockAgents) ListActive(ctx context.Context, workspaceID string) ([]model.Agent, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agent), args.Error(1)
}

func (m *mockAgents) Get(ctx context.Context, workspaceID, agentID string) (*model.Agent, error) {
	args := m.Called(ctx, workspaceID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

type mockWorkflows struct {
	mock.Mock
}

func (m *mockWorkflows) Trigger(ctx context.Context, workspaceID, workflowID, triggerType string, input json.RawMessage) (*model.WorkflowRun, error) {
	args := m.Called(ctx, workspaceID, workflowID, triggerType, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowRun), args.Error(1)
}

func (m *mockWorkflows) GetRun(ctx context.Context, workspaceID, runID string) (*model.WorkflowRun, error) {
	args := m.Called(ctx, workspaceID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowRun), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) ListMessages(ctx context.Context, workspaceID, sessionID string, limit int) ([]model.ChatMessage, error) {
	args := m.Called(ctx, workspaceID, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

func (m *mockSessions) RecordTurn(ctx context.Context, workspaceID, agentID, sessionID, userMessage, reply string) (string, error) {
	args := m.Called(ctx, workspaceID, agentID, sessionID, userMessage, reply)
	return args.String(0), args.Error(1)
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Reply(ctx context.Context, agent *model.Agent, message string) (*llm.Reply, error) {
	args := m.Called(ctx, agent, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Reply), args.Error(1)
}

func (m *mockBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type mockKnowledge struct {
	mock.Mock
}

func (m *mockKnowledge) Search(ctx context.Context, workspaceID, agentID, query string, topK int) (*model.KnowledgeResult, error) {
	args := m.Called(ctx, workspaceID, agentID, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KnowledgeResult), args.Error(1)
}

type testDeps struct {
	agents    *mockAgents
	workflows *mockWorkflows
	sessions  *mockSessions
	knowledge *mockKnowledge
	backend   *mockBackend
}

func newTestToolset() (*Toolset, *testDeps) {
	d := &testDeps{
		agents:    &mockAgents{},
		workflows: &mockWorkflows{},
		sessions:  &mockSessions{},
		knowledge: &mockKnowledge{},
		backend:   &mockBackend{},
	}
	return &Toolset{
		Agents:    d.agents,
		Workflows: d.workflows,
		Sessions:  d.sessions,
		Knowledge: d.knowledge,
		Backend:   d.backend,
		Logger:    zerolog.Nop(),
	}, d
}

// resultText returns the text of the first content item.
func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, r)
	require.NotEmpty(t, r.Content)
	tc, ok := mcp.AsTextContent(r.Content[0])
	require.True(t, ok, "first content item is not text")
	return tc.Text
}
