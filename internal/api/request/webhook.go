package request

// CreateWebhook is the body of POST /api/v1/webhooks.
type CreateWebhook struct {
	Name   string   `json:"name" validate:"required,min=1,max=255"`
	URL    string   `json:"url" validate:"required,url,max=2048"`
	Events []string `json:"events" validate:"required,min=1,dive,required,max=100"`
	Secret string   `json:"secret" validate:"omitempty,max=255"`
}
