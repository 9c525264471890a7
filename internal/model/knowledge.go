package model

import (
	"encoding/json"
	"time"
)

// KnowledgeSource is a document collection attached to an agent. Sources
// start in KnowledgeStatusPending until an ingester chunks them.
type KnowledgeSource struct {
	ID            string          `json:"id"`
	WorkspaceID   string          `json:"-"`
	AgentID       string          `json:"agent_id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	DocumentCount int             `json:"document_count"`
	Config        json.RawMessage `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// KnowledgeStatusPending marks a source that has not been ingested yet.
const KnowledgeStatusPending = "pending"

// KnowledgeChunk is one searchable passage of a knowledge source. Score is
// the cosine similarity to the query embedding, or zero for keyword matches.
type KnowledgeChunk struct {
	ID       string          `json:"id"`
	SourceID string          `json:"source_id"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
	Score    float64         `json:"score"`
}

// Knowledge search modes.
const (
	SearchModeSemantic = "semantic"
	SearchModeKeyword  = "keyword"
)

// KnowledgeResult is the outcome of one knowledge search.
type KnowledgeResult struct {
	Query  string           `json:"query"`
	Mode   string           `json:"mode"`
	Chunks []KnowledgeChunk `json:"chunks"`
}
