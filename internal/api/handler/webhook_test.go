package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/model"
)

func TestWebhookList(t *testing.T) {
	store := &mockWebhooks{}
	secret := "s3cret"
	store.On("List", mock.Anything, testWorkspace).Return([]model.Webhook{
		{ID: "wh-2", Name: "new", URL: "https://example.com/b", Events: []string{"run.completed"}, Secret: &secret, IsActive: true, CreatedAt: time.Unix(1700000100, 0)},
		{ID: "wh-1", Name: "old", URL: "https://example.com/a", Events: []string{"run.failed"}, IsActive: false, CreatedAt: time.Unix(1700000000, 0)},
	}, nil)
	rec := httptest.NewRecorder()

	NewWebhook(store).List(rec, withWorkspace(newRequest(http.MethodGet, "/api/v1/webhooks", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "s3cret")
	var body struct {
		Items []model.Webhook `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "wh-2", body.Items[0].ID)
}

func TestWebhookList_EmptyIsArray(t *testing.T) {
	store := &mockWebhooks{}
	store.On("List", mock.Anything, testWorkspace).Return(nil, nil)
	rec := httptest.NewRecorder()

	NewWebhook(store).List(rec, withWorkspace(newRequest(http.MethodGet, "/api/v1/webhooks", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestWebhookCreate(t *testing.T) {
	store := &mockWebhooks{}
	store.On("Create", mock.Anything, testWorkspace, "runs", "https://example.com/hook", []string{"run.completed"}, "").
		Return(&model.Webhook{ID: "wh-1", Name: "runs", URL: "https://example.com/hook", Events: []string{"run.completed"}, IsActive: true}, nil)
	rec := httptest.NewRecorder()

	NewWebhook(store).Create(rec, withWorkspace(newRequest(http.MethodPost, "/api/v1/webhooks", map[string]any{
		"name": "runs", "url": "https://example.com/hook", "events": []string{"run.completed"},
	})))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "wh-1", body["id"])
	assert.Equal(t, true, body["is_active"])
}

func TestWebhookCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"url": "https://example.com", "events": []string{"a"}}},
		{"invalid url", map[string]any{"name": "n", "url": "not a url", "events": []string{"a"}}},
		{"no events", map[string]any{"name": "n", "url": "https://example.com", "events": []string{}}},
		{"missing events", map[string]any{"name": "n", "url": "https://example.com"}},
		{"blank event", map[string]any{"name": "n", "url": "https://example.com", "events": []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockWebhooks{}
			rec := httptest.NewRecorder()

			NewWebhook(store).Create(rec, withWorkspace(newRequest(http.MethodPost, "/api/v1/webhooks", tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookCreate_StoreError(t *testing.T) {
	store := &mockWebhooks{}
	store.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	rec := httptest.NewRecorder()

	NewWebhook(store).Create(rec, withWorkspace(newRequest(http.MethodPost, "/api/v1/webhooks", map[string]any{
		"name": "n", "url": "https://example.com", "events": []string{"a"},
	})))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookDelete(t *testing.T) {
	store := &mockWebhooks{}
	store.On("Delete", mock.Anything, testWorkspace, validID).Return(nil)
	rec := httptest.NewRecorder()
	r := withWorkspace(withChiURLParam(newRequest(http.MethodDelete, "/api/v1/webhooks/"+validID, nil), "webhookID", validID))

	NewWebhook(store).Delete(rec, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWebhookDelete_NotFound(t *testing.T) {
	store := &mockWebhooks{}
	store.On("Delete", mock.Anything, testWorkspace, validID).Return(core.ErrNotFound)
	rec := httptest.NewRecorder()
	r := withWorkspace(withChiURLParam(newRequest(http.MethodDelete, "/api/v1/webhooks/"+validID, nil), "webhookID", validID))

	NewWebhook(store).Delete(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "webhook not found", decodeErrorResponse(rec)["error"])
}
