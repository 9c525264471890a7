package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/model"
)

func messagesRequest(target string) *http.Request {
	return withWorkspace(withChiURLParam(newRequest(http.MethodGet, target, nil), "sessionID", "s-1"))
}

func TestSessionMessages_LimitClamped(t *testing.T) {
	svc := &mockSessions{}
	svc.On("ListMessages", mock.Anything, testWorkspace, "s-1", 200).Return([]model.ChatMessage{
		{ID: "m-1", Role: model.RoleUser, Content: "hi"},
		{ID: "m-2", Role: model.RoleAssistant, Content: "hello"},
	}, nil)
	rec := httptest.NewRecorder()

	NewSession(svc).Messages(rec, messagesRequest("/api/v1/sessions/s-1/messages?limit=5000"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"assistant"`)
	svc.AssertExpectations(t)
}

func TestSessionMessages_NotFound(t *testing.T) {
	svc := &mockSessions{}
	svc.On("ListMessages", mock.Anything, testWorkspace, "s-1", 50).Return(nil, core.ErrNotFound)
	rec := httptest.NewRecorder()

	NewSession(svc).Messages(rec, messagesRequest("/api/v1/sessions/s-1/messages"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session not found", decodeErrorResponse(rec)["error"])
}
