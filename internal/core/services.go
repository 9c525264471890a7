package core

type Services struct {
	Credential *CredentialService
	CallLog    *CallLogService
	Agent      *AgentService
	Workflow   *WorkflowService
	Session    *SessionService
	Knowledge  *KnowledgeService
	Webhook    *WebhookService
}

// NewServices wires every service to db. embedder may be nil.
func NewServices(db DB, embedder Embedder) *Services {
	return &Services{
		Credential: NewCredentialService(db),
		CallLog:    NewCallLogService(db),
		Agent:      NewAgentService(db),
		Workflow:   NewWorkflowService(db),
		Session:    NewSessionService(db),
		Knowledge:  NewKnowledgeService(db, embedder),
		Webhook:    NewWebhookService(db),
	}
}
