package llm

import (
	"context"
	"fmt"

	"github.com/starfrom/agentos-gateway/internal/model"
)

// Reply is an agent's answer to one message.
type Reply struct {
	Text       string
	TokensUsed int
}

// Backend answers chat messages and embeds knowledge queries on behalf of
// an agent.
type Backend interface {
	Reply(ctx context.Context, agent *model.Agent, message string) (*Reply, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewBackend returns a Backend talking to an OpenAI-compatible endpoint, or
// a placeholder that echoes the message when baseURL is empty.
func NewBackend(baseURL, apiKey, defaultModel, embeddingModel string) Backend {
	if baseURL == "" {
		return Placeholder{}
	}
	return &ChatBackend{client: NewClient(baseURL, apiKey, defaultModel), embeddingModel: embeddingModel}
}

// ChatBackend forwards messages to a chat completions API and queries to an
// embeddings API.
type ChatBackend struct {
	client         *Client
	embeddingModel string
}

func (b *ChatBackend) Reply(ctx context.Context, agent *model.Agent, message string) (*Reply, error) {
	messages := []Message{{Role: model.RoleUser, Content: message}}
	if agent.Description != "" {
		messages = append([]Message{{Role: "system", Content: agent.Description}}, messages...)
	}

	resp, err := b.client.Chat(ctx, ChatRequest{Model: agent.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completions: no choices returned")
	}
	return &Reply{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// Embed returns the query embedding. With no embedding model configured it
// returns nil so searches fall back to keyword matching.
func (b *ChatBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	if b.embeddingModel == "" {
		return nil, nil
	}
	return b.client.Embed(ctx, b.embeddingModel, text)
}

// Placeholder acknowledges messages without calling a model.
type Placeholder struct{}

func (Placeholder) Reply(_ context.Context, agent *model.Agent, message string) (*Reply, error) {
	return &Reply{
		Text: fmt.Sprintf("[%s] received: %q\n\nNo inference backend is configured for this gateway.", agent.Name, message),
	}, nil
}

// Embed reports that no embedding model is available.
func (Placeholder) Embed(context.Context, string) ([]float32, error) {
	return nil, nil
}
