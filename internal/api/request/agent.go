package request

// Chat is the body of POST /api/v1/agents/{agentID}/chat.
type Chat struct {
	Message   string `json:"message" validate:"required,min=1,max=32000"`
	SessionID string `json:"session_id" validate:"omitempty,max=255"`
}

// TriggerWorkflow is the body of POST /api/v1/workflows/{workflowID}/trigger.
type TriggerWorkflow struct {
	Inputs map[string]any `json:"inputs"`
}
