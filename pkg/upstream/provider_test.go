package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikketryhard/a2c/pkg/registry"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc, apiKeyEnv, apiKeyHeader string) (*Provider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := New(Config{
		Name:              "test",
		Info:              registry.Info{Name: "test", APIFormat: registry.FormatAnthropic},
		BaseURL:           srv.URL,
		APIKeyEnv:         apiKeyEnv,
		APIKeyHeader:      apiKeyHeader,
		RequestPath:       "/v1/messages",
		StreamRequestPath: "/v1/messages",
		HealthModel:       "test-model",
	})
	return p, srv
}

func TestProvider_SendRequest_SetsAuthHeaderFromEnv(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret-value")
	var gotHeader string
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-api-key")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, "TEST_API_KEY", "x-api-key")

	resp, err := p.SendRequest(context.Background(), registry.Request{Body: []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "secret-value", gotHeader)
}

func TestProvider_IsConfigured_FalseWithoutEnvKey(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {}, "MISSING_KEY_ENV_VAR", "x-api-key")
	assert.False(t, p.IsConfigured())
}

func TestProvider_StreamRequest_ReturnsLiveBody(t *testing.T) {
	t.Setenv("TEST_API_KEY", "k")
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("event: ping\ndata: {}\n\n"))
	}, "TEST_API_KEY", "x-api-key")

	resp, err := p.StreamRequest(context.Background(), registry.Request{Body: []byte(`{}`)})
	require.NoError(t, err)
	require.NotNil(t, resp.Stream)
	defer resp.Stream.Close()

	data, err := io.ReadAll(resp.Stream)
	require.NoError(t, err)
	assert.Contains(t, string(data), "event: ping")
}

func TestProvider_CheckHealth_ClassifiesStatusCodes(t *testing.T) {
	t.Setenv("TEST_API_KEY", "k")

	cases := []struct {
		status int
		want   registry.Status
	}{
		{200, registry.StatusHealthy},
		{401, registry.StatusUnhealthy},
		{429, registry.StatusDegraded},
		{500, registry.StatusDegraded},
	}

	for _, tc := range cases {
		p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}, "TEST_API_KEY", "x-api-key")

		health := p.CheckHealth(context.Background())
		assert.Equal(t, tc.want, health.Status, "status %d", tc.status)
	}
}

func TestProvider_CheckHealth_UnconfiguredWithoutKey(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {}, "MISSING_KEY_ENV_VAR", "x-api-key")
	health := p.CheckHealth(context.Background())
	assert.Equal(t, registry.StatusUnhealthy, health.Status)
}

func TestProvider_ResolvePath_SubstitutesModelForGeminiStyleRoute(t *testing.T) {
	t.Setenv("GOOGLE_TEST_KEY", "k")
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	p := New(Config{
		Name:              "gemini-test",
		Info:              registry.Info{Name: "gemini-test", APIFormat: registry.FormatGemini},
		BaseURL:           srv.URL,
		APIKeyEnv:         "GOOGLE_TEST_KEY",
		APIKeyHeader:      "x-goog-api-key",
		RequestPath:       "/models/%s:generateContent",
		StreamRequestPath: "/models/%s:streamGenerateContent",
		HealthModel:       "gemini-test-model",
	})

	_, err := p.SendRequest(context.Background(), registry.Request{Body: []byte(`{}`), Model: "claude-opus-4-5"})
	require.NoError(t, err)
	assert.Equal(t, "/models/claude-opus-4-5:generateContent", gotPath)
}

func TestHealthProbeBody_GeminiShapeDiffersFromAnthropic(t *testing.T) {
	anthropicBody := healthProbeBody(registry.FormatAnthropic, "m")
	geminiBody := healthProbeBody(registry.FormatGemini, "m")

	_, hasMessages := anthropicBody["messages"]
	_, hasContents := geminiBody["contents"]
	assert.True(t, hasMessages)
	assert.True(t, hasContents)

	b, err := json.Marshal(geminiBody)
	require.NoError(t, err)
	assert.Contains(t, string(b), "generationConfig")
}
