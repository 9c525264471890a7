package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/starfrom/agentos-gateway/internal/api/response"
	"github.com/starfrom/agentos-gateway/internal/model"
)

func TestRequestLogger_IncludesWorkspace(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	a := &mockAuthenticator{}
	a.On("Authenticate", mock.Anything, "Bearer sk-x", mock.Anything, model.CredentialKindAPIKey).Return(testIdentity, nil)

	handler := RequestLogger(logger)(
		Auth(a, model.CredentialKindAPIKey, response.WriteAPIError)(http.HandlerFunc(okHandler)),
	)
	r := httptest.NewRequest("GET", "/api/v1/agents", nil)
	r.Header.Set("Authorization", "Bearer sk-x")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["message"])
	assert.Equal(t, "ws-1", line["workspace_id"])
	assert.Equal(t, "sk-0123abcd", line["key_prefix"])
	assert.Equal(t, float64(200), line["status"])
	assert.NotContains(t, buf.String(), "Bearer")
}

func TestRequestLogger_Anonymous(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger(zerolog.New(&buf))(http.HandlerFunc(okHandler))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "workspace_id")
	assert.Equal(t, "/healthz", line["path"])
}
