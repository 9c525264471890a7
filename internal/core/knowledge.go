package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/platform"
)

// maxScanChunks bounds how many embedded chunks one semantic search ranks.
const maxScanChunks = 2000

// Embedder turns text into an embedding vector. A nil vector with a nil
// error means no embedding model is configured.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeService manages agent knowledge sources and searches their
// chunks. Every query is scoped to a workspace.
type KnowledgeService struct {
	db       DB
	embedder Embedder
}

// NewKnowledgeService creates a new KnowledgeService. A nil embedder limits
// search to keyword matching.
func NewKnowledgeService(db DB, embedder Embedder) *KnowledgeService {
	return &KnowledgeService{db: db, embedder: embedder}
}

// ListSources returns the agent's active knowledge sources, newest first.
func (s *KnowledgeService) ListSources(ctx context.Context, workspaceID, agentID string) ([]model.KnowledgeSource, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, agent_id, name, type, status, document_count, created_at
		 FROM knowledge_sources
		 WHERE workspace_id = $1 AND agent_id = $2 AND is_active = true
		 ORDER BY created_at DESC`,
		workspaceID, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list knowledge sources: %w", err)
	}
	defer rows.Close()

	sources := []model.KnowledgeSource{}
	for rows.Next() {
		ks := model.KnowledgeSource{WorkspaceID: workspaceID}
		if err := rows.Scan(&ks.ID, &ks.AgentID, &ks.Name, &ks.Type, &ks.Status, &ks.DocumentCount, &ks.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge source: %w", err)
		}
		sources = append(sources, ks)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge sources: %w", err)
	}
	return sources, nil
}

// CreateSource registers a pending knowledge source for an agent of the
// workspace. The raw content is kept in the source config for ingestion.
// Returns ErrNotFound when the agent is not in the workspace.
func (s *KnowledgeService) CreateSource(ctx context.Context, workspaceID, agentID, name, sourceType, content string) (*model.KnowledgeSource, error) {
	cfg, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("marshal knowledge source config: %w", err)
	}

	ks := &model.KnowledgeSource{
		ID:          platform.NewID(),
		WorkspaceID: workspaceID,
		AgentID:     agentID,
		Name:        name,
		Type:        sourceType,
		Status:      model.KnowledgeStatusPending,
		Config:      cfg,
	}
	err = s.db.QueryRow(ctx,
		`INSERT INTO knowledge_sources (id, workspace_id, agent_id, name, type, status, config, created_at)
		 SELECT $1::uuid, $2::text, a.id, $4::text, $5::text, $6::text, $7::jsonb, now()
		 FROM agents a WHERE a.id = $3 AND a.workspace_id = $2
		 RETURNING created_at`,
		ks.ID, workspaceID, agentID, name, sourceType, ks.Status, cfg,
	).Scan(&ks.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create knowledge source for agent %s: %w", agentID, notFound(err))
	}
	return ks, nil
}

// Search returns up to topK chunks of the agent's active sources. With an
// embedder the chunks are ranked by cosine similarity to the query. Without
// one, or when embedding fails or no chunk is embedded yet, chunks containing
// the query text are returned newest first.
func (s *KnowledgeService) Search(ctx context.Context, workspaceID, agentID, query string, topK int) (*model.KnowledgeResult, error) {
	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, query)
		switch {
		case err != nil:
			zerolog.Ctx(ctx).Warn().Err(err).Str("agent_id", agentID).Msg("query embedding failed, using keyword search")
		case len(vec) > 0:
			chunks, err := s.semantic(ctx, workspaceID, agentID, vec, topK)
			if err != nil {
				return nil, err
			}
			if len(chunks) > 0 {
				return &model.KnowledgeResult{Query: query, Mode: model.SearchModeSemantic, Chunks: chunks}, nil
			}
		}
	}

	chunks, err := s.keyword(ctx, workspaceID, agentID, query, topK)
	if err != nil {
		return nil, err
	}
	return &model.KnowledgeResult{Query: query, Mode: model.SearchModeKeyword, Chunks: chunks}, nil
}

func (s *KnowledgeService) semantic(ctx context.Context, workspaceID, agentID string, vec []float32, topK int) ([]model.KnowledgeChunk, error) {
	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.source_id, c.content, c.metadata, c.embedding
		 FROM knowledge_chunks c
		 JOIN knowledge_sources ks ON ks.id = c.source_id
		 WHERE ks.workspace_id = $1 AND ks.agent_id = $2 AND ks.is_active = true AND c.embedding IS NOT NULL
		 ORDER BY c.created_at DESC
		 LIMIT $3`,
		workspaceID, agentID, maxScanChunks,
	)
	if err != nil {
		return nil, fmt.Errorf("search knowledge chunks: %w", err)
	}
	defer rows.Close()

	var chunks []model.KnowledgeChunk
	for rows.Next() {
		var (
			c         model.KnowledgeChunk
			embedding []float32
		)
		if err := rows.Scan(&c.ID, &c.SourceID, &c.Content, &c.Metadata, &embedding); err != nil {
			return nil, fmt.Errorf("scan knowledge chunk: %w", err)
		}
		score, ok := cosine(vec, embedding)
		if !ok {
			continue
		}
		c.Score = score
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge chunks: %w", err)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}
	return chunks, nil
}

func (s *KnowledgeService) keyword(ctx context.Context, workspaceID, agentID, query string, topK int) ([]model.KnowledgeChunk, error) {
	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.source_id, c.content, c.metadata
		 FROM knowledge_chunks c
		 JOIN knowledge_sources ks ON ks.id = c.source_id
		 WHERE ks.workspace_id = $1 AND ks.agent_id = $2 AND ks.is_active = true
		   AND c.content ILIKE '%' || $3::text || '%'
		 ORDER BY c.created_at DESC
		 LIMIT $4`,
		workspaceID, agentID, likeEscaper.Replace(query), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("search knowledge chunks: %w", err)
	}
	defer rows.Close()

	chunks := []model.KnowledgeChunk{}
	for rows.Next() {
		var c model.KnowledgeChunk
		if err := rows.Scan(&c.ID, &c.SourceID, &c.Content, &c.Metadata); err != nil {
			return nil, fmt.Errorf("scan knowledge chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge chunks: %w", err)
	}
	return chunks, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// cosine returns the cosine similarity of a and b. It reports false when the
// vectors differ in length or either has zero magnitude.
func cosine(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
