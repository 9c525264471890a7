package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/audit"
	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/llm"
	"github.com/starfrom/agentos-gateway/internal/model"
)

const (
	defaultTopK         = 5
	maxTopK             = 50
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// AgentStore reads a workspace's agents.
type AgentStore interface {
	ListActive(ctx context.Context, workspaceID string) ([]model.Agent, error)
	Get(ctx context.Context, workspaceID, agentID string) (*model.Agent, error)
}

// WorkflowStore reads workflows and creates runs.
type WorkflowStore interface {
	Trigger(ctx context.Context, workspaceID, workflowID, triggerType string, input json.RawMessage) (*model.WorkflowRun, error)
	GetRun(ctx context.Context, workspaceID, runID string) (*model.WorkflowRun, error)
}

// SessionStore reads and appends chat history.
type SessionStore interface {
	ListMessages(ctx context.Context, workspaceID, sessionID string, limit int) ([]model.ChatMessage, error)
	RecordTurn(ctx context.Context, workspaceID, agentID, sessionID, userMessage, reply string) (string, error)
}

// KnowledgeStore searches an agent's knowledge chunks.
type KnowledgeStore interface {
	Search(ctx context.Context, workspaceID, agentID, query string, topK int) (*model.KnowledgeResult, error)
}

// Toolset implements the gateway's tools over the tenant data stores.
type Toolset struct {
	Agents    AgentStore
	Workflows WorkflowStore
	Sessions  SessionStore
	Knowledge KnowledgeStore
	Backend   llm.Backend
	Logger    zerolog.Logger
}

// Tools returns the tool catalog.
func (ts *Toolset) Tools() []ServerTool {
	return []ServerTool{
		{
			Tool: mcp.NewTool("agent_chat",
				mcp.WithDescription("Send a message to an agent and get its reply."),
				mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent ID")),
				mcp.WithString("message", mcp.Required(), mcp.Description("Message to send to the agent"), mcp.MinLength(1)),
				mcp.WithString("session_id", mcp.Description("Session ID to continue an existing conversation")),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: ts.agentChat,
		},
		{
			Tool: mcp.NewTool("list_agents",
				mcp.WithDescription("List the active agents in the workspace."),
				mcp.WithString("workspace_id", mcp.Description("Ignored; the workspace is taken from the token")),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: ts.listAgents,
		},
		{
			Tool: mcp.NewTool("trigger_workflow",
				mcp.WithDescription("Start a run of a workflow. Returns the run ID."),
				mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow ID")),
				mcp.WithObject("inputs", mcp.Description("Workflow input parameters")),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: ts.triggerWorkflow,
		},
		{
			Tool: mcp.NewTool("get_workflow_status",
				mcp.WithDescription("Get the status and result of a workflow run."),
				mcp.WithString("run_id", mcp.Required(), mcp.Description("Workflow run ID")),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: ts.getWorkflowStatus,
		},
		{
			Tool: mcp.NewTool("knowledge_search",
				mcp.WithDescription("Search an agent's knowledge base."),
				mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent whose knowledge base to search")),
				mcp.WithString("query", mcp.Required(), mcp.Description("Search query"), mcp.MinLength(1)),
				mcp.WithNumber("top_k", integer(), mcp.Description("Number of results (default 5)"), mcp.Min(1), mcp.Max(maxTopK)),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: ts.knowledgeSearch,
		},
		{
			Tool: mcp.NewTool("get_session_history",
				mcp.WithDescription("Get the messages of a chat session, oldest first."),
				mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
				mcp.WithNumber("limit", integer(), mcp.Description("Maximum messages to return (default 50, max 200)"), mcp.Min(1), mcp.Max(maxHistoryLimit)),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: ts.getSessionHistory,
		},
	}
}

type agentChatArgs struct {
	AgentID   string `mapstructure:"agent_id"`
	Message   string `mapstructure:"message"`
	SessionID string `mapstructure:"session_id"`
}

func (ts *Toolset) agentChat(ctx context.Context, tenant Tenant, args map[string]any) (*mcp.CallToolResult, error) {
	var in agentChatArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	agent, err := ts.Agents.Get(ctx, tenant.WorkspaceID, in.AgentID)
	if err != nil {
		return notFoundOr(err, "Agent not found or not accessible")
	}
	if in.SessionID != "" {
		if _, err := ts.Sessions.ListMessages(ctx, tenant.WorkspaceID, in.SessionID, 1); err != nil {
			return notFoundOr(err, "Session not found")
		}
	}

	reply, err := ts.Backend.Reply(ctx, agent, in.Message)
	if err != nil {
		ts.Logger.Error().Err(err).Str("agent_id", agent.ID).Msg("chat backend failed")
		return mcp.NewToolResultError("Agent is unavailable, try again later"), nil
	}
	audit.StatsFrom(ctx).AddTokens(reply.TokensUsed)

	sessionID, err := ts.Sessions.RecordTurn(ctx, tenant.WorkspaceID, agent.ID, in.SessionID, in.Message, reply.Text)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return mcp.NewToolResultError("Session not found"), nil
		}
		ts.Logger.Warn().Err(err).Str("agent_id", agent.ID).Msg("failed to record chat turn")
	}

	text := reply.Text
	if sessionID != "" {
		text += "\n\nSession ID: " + sessionID
	}
	return mcp.NewToolResultText(text), nil
}

func (ts *Toolset) listAgents(ctx context.Context, tenant Tenant, _ map[string]any) (*mcp.CallToolResult, error) {
	agents, err := ts.Agents.ListActive(ctx, tenant.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return mcp.NewToolResultText("No agents are available in this workspace."), nil
	}

	var b strings.Builder
	b.WriteString("Available agents:\n")
	for _, a := range agents {
		fmt.Fprintf(&b, "\n- %s (ID: %s)\n  Model: %s\n  Status: %s\n", a.Name, a.ID, a.Model, a.Status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

type triggerWorkflowArgs struct {
	WorkflowID string         `mapstructure:"workflow_id"`
	Inputs     map[string]any `mapstructure:"inputs"`
}

func (ts *Toolset) triggerWorkflow(ctx context.Context, tenant Tenant, args map[string]any) (*mcp.CallToolResult, error) {
	var in triggerWorkflowArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Inputs == nil {
		in.Inputs = map[string]any{}
	}
	input, err := json.Marshal(in.Inputs)
	if err != nil {
		return nil, err
	}

	run, err := ts.Workflows.Trigger(ctx, tenant.WorkspaceID, in.WorkflowID, model.TriggerTypeMCP, input)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return mcp.NewToolResultError("Workflow not found or not accessible"), nil
	case errors.Is(err, core.ErrInactive):
		return mcp.NewToolResultError("Workflow is not active"), nil
	case err != nil:
		return nil, err
	}

	return mcp.NewToolResultText(fmt.Sprintf("Workflow triggered.\nRun ID: %s\nStatus: %s", run.ID, run.Status)), nil
}

type getWorkflowStatusArgs struct {
	RunID string `mapstructure:"run_id"`
}

func (ts *Toolset) getWorkflowStatus(ctx context.Context, tenant Tenant, args map[string]any) (*mcp.CallToolResult, error) {
	var in getWorkflowStatusArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	run, err := ts.Workflows.GetRun(ctx, tenant.WorkspaceID, in.RunID)
	if err != nil {
		return notFoundOr(err, "Workflow run not found")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run ID: %s\nStatus: %s", run.ID, run.Status)
	if run.StartedAt != nil {
		fmt.Fprintf(&b, "\nStarted: %s", run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if run.CompletedAt != nil {
		fmt.Fprintf(&b, "\nCompleted: %s", run.CompletedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if len(run.OutputData) > 0 && string(run.OutputData) != "null" {
		fmt.Fprintf(&b, "\nOutput: %s", run.OutputData)
	}
	if run.ErrorMessage != nil {
		fmt.Fprintf(&b, "\nError: %s", *run.ErrorMessage)
	}
	return mcp.NewToolResultText(b.String()), nil
}

type knowledgeSearchArgs struct {
	AgentID string `mapstructure:"agent_id"`
	Query   string `mapstructure:"query"`
	TopK    int    `mapstructure:"top_k"`
}

func (ts *Toolset) knowledgeSearch(ctx context.Context, tenant Tenant, args map[string]any) (*mcp.CallToolResult, error) {
	in := knowledgeSearchArgs{TopK: defaultTopK}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	agent, err := ts.Agents.Get(ctx, tenant.WorkspaceID, in.AgentID)
	if err != nil {
		return notFoundOr(err, "Agent not found or not accessible")
	}

	res, err := ts.Knowledge.Search(ctx, tenant.WorkspaceID, agent.ID, in.Query, in.TopK)
	if err != nil {
		ts.Logger.Error().Err(err).Str("agent_id", agent.ID).Msg("knowledge search failed")
		return mcp.NewToolResultError("Knowledge search is unavailable, try again later"), nil
	}
	if len(res.Chunks) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No knowledge found for %q.", in.Query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d result(s) for %q (%s search):", len(res.Chunks), in.Query, res.Mode)
	for i, c := range res.Chunks {
		fmt.Fprintf(&b, "\n\n%d. ", i+1)
		if res.Mode == model.SearchModeSemantic {
			fmt.Fprintf(&b, "[score %.3f] ", c.Score)
		}
		b.WriteString(c.Content)
	}
	return mcp.NewToolResultText(b.String()), nil
}

type getSessionHistoryArgs struct {
	SessionID string `mapstructure:"session_id"`
	Limit     int    `mapstructure:"limit"`
}

func (ts *Toolset) getSessionHistory(ctx context.Context, tenant Tenant, args map[string]any) (*mcp.CallToolResult, error) {
	in := getSessionHistoryArgs{Limit: defaultHistoryLimit}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	msgs, err := ts.Sessions.ListMessages(ctx, tenant.WorkspaceID, in.SessionID, in.Limit)
	if err != nil {
		return notFoundOr(err, "Session not found")
	}
	if len(msgs) == 0 {
		return mcp.NewToolResultText("No messages found in this session."), nil
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, fmt.Sprintf("[%s] %s", m.Role, m.Content))
	}
	return mcp.NewToolResultText("Session history:\n\n" + strings.Join(parts, "\n\n")), nil
}

// integer narrows a number property to JSON Schema "integer" so fractional
// values are rejected during validation.
func integer() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}

// notFoundOr turns core.ErrNotFound into an error result and passes any
// other error through as internal.
func notFoundOr(err error, msg string) (*mcp.CallToolResult, error) {
	if errors.Is(err, core.ErrNotFound) {
		return mcp.NewToolResultError(msg), nil
	}
	return nil, err
}
