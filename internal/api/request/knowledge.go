package request

// CreateKnowledgeSource is the body of POST /api/v1/agents/{agentID}/knowledge.
type CreateKnowledgeSource struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Type    string `json:"type" validate:"required,min=1,max=50"`
	Content string `json:"content" validate:"required,min=1,max=1000000"`
}

// KnowledgeSearch is the body of POST /api/v1/agents/{agentID}/knowledge/search.
// TopK defaults to 5 when omitted.
type KnowledgeSearch struct {
	Query string `json:"query" validate:"required,min=1,max=4000"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}
