package handler

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/llm"
	"github.com/starfrom/agentos-gateway/internal/model"
)

type mockCredentials struct {
	mock.Mock
}

func (m *mockCredentials) Create(ctx context.Context, p core.CreateCredentialParams) (*model.Credential, string, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.Credential), args.String(1), args.Error(2)
}

func (m *mockCredentials) ListByWorkspace(ctx context.Context, workspaceID string, kind model.CredentialKind) ([]model.Credential, error) {
	args := m.Called(ctx, workspaceID, kind)
	creds, _ := args.Get(0).([]model.Credential)
	return creds, args.Error(1)
}

func (m *mockCredentials) Revoke(ctx context.Context, workspaceID string, kind model.CredentialKind, id string) error {
	return m.Called(ctx, workspaceID, kind, id).Error(0)
}

func (m *mockCredentials) Delete(ctx context.Context, workspaceID string, kind model.CredentialKind, id string) error {
	return m.Called(ctx, workspaceID, kind, id).Error(0)
}

type mockAgents struct {
	mock.Mock
}

func (m *mockAgents) ListActive(ctx context.Context, workspaceID string) ([]model.Agent, error) {
	args := m.Called(ctx, workspaceID)
	agents, _ := args.Get(0).([]model.Agent)
	return agents, args.Error(1)
}

func (m *mockAgents) Get(ctx context.Context, workspaceID, agentID string) (*model.Agent, error) {
	args := m.Called(ctx, workspaceID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) ListMessages(ctx context.Context, workspaceID, sessionID string, limit int) ([]model.ChatMessage, error) {
	args := m.Called(ctx, workspaceID, sessionID, limit)
	msgs, _ := args.Get(0).([]model.ChatMessage)
	return msgs, args.Error(1)
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
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

type mockKnowledge struct {
	mock.Mock
}

func (m *mockKnowledge) ListSources(ctx context.Context, workspaceID, agentID string) ([]model.KnowledgeSource, error) {
	args := m.Called(ctx, workspaceID, agentID)
	sources, _ := args.Get(0).([]model.KnowledgeSource)
	return sources, args.Error(1)
}

func (m *mockKnowledge) CreateSource(ctx context.Context, workspaceID, agentID, name, sourceType, content string) (*model.KnowledgeSource, error) {
	args := m.Called(ctx, workspaceID, agentID, name, sourceType, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KnowledgeSource), args.Error(1)
}

func (m *mockKnowledge) Search(ctx context.Context, workspaceID, agentID, query string, topK int) (*model.KnowledgeResult, error) {
	args := m.Called(ctx, workspaceID, agentID, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KnowledgeResult), args.Error(1)
}

type mockWebhooks struct {
	mock.Mock
}

func (m *mockWebhooks) List(ctx context.Context, workspaceID string) ([]model.Webhook, error) {
	args := m.Called(ctx, workspaceID)
	hooks, _ := args.Get(0).([]model.Webhook)
	return hooks, args.Error(1)
}

func (m *mockWebhooks) Create(ctx context.Context, workspaceID, name, url string, events []string, secret string) (*model.Webhook, error) {
	args := m.Called(ctx, workspaceID, name, url, events, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Webhook), args.Error(1)
}

func (m *mockWebhooks) Delete(ctx context.Context, workspaceID, id string) error {
	return m.Called(ctx, workspaceID, id).Error(0)
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

type mockCallLogs struct {
	mock.Mock
}

func (m *mockCallLogs) ListByWorkspace(ctx context.Context, workspaceID string, limit int, afterID int64) ([]model.CallLogEntry, bool, error) {
	args := m.Called(ctx, workspaceID, limit, afterID)
	entries, _ := args.Get(0).([]model.CallLogEntry)
	return entries, args.Bool(1), args.Error(2)
}
