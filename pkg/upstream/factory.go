package upstream

import (
	"fmt"

	"github.com/nikketryhard/a2c/pkg/registry"
)

// Anthropic builds the native Anthropic passthrough provider. baseURL
// defaults to the public API when empty.
func Anthropic(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return New(Config{
		Name: "anthropic",
		Info: registry.Info{
			Name:        "anthropic",
			DisplayName: "Anthropic",
			APIFormat:   registry.FormatAnthropic,
			Capabilities: registry.Capabilities{
				SupportsStreaming: true,
				SupportsThinking:  true,
				SupportsTools:     true,
				SupportsVision:    true,
				MaxContextTokens:  200000,
			},
			Description: "Native Anthropic Claude API",
		},
		BaseURL:          baseURL,
		APIKeyEnv:        "ANTHROPIC_API_KEY",
		APIKeyHeader:     "x-api-key",
		AnthropicVersion: "2023-06-01",
		RequestPath:      "/v1/messages",
		StreamRequestPath: "/v1/messages",
		HealthModel:      "claude-3-haiku-20240307",
	})
}

// Antigravity builds the Gemini-format provider that routes Claude
// models through Google's direct Generative Language API: a URL keyed
// by an API key query parameter.
func Antigravity(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return New(Config{
		Name:              "antigravity",
		Info:              antigravityInfo(),
		BaseURL:           baseURL,
		APIKeyEnv:         "GOOGLE_API_KEY",
		QueryKeyParam:     true,
		RequestPath:       "/models/%s:generateContent",
		StreamRequestPath: "/models/%s:streamGenerateContent?alt=sse",
		HealthModel:       "claude-opus-4-5",
	})
}

// AntigravityVertex builds the Gemini-format provider scoped to a GCP
// project/location (".../publishers/google/models/{model}:{generateContent}").
// Vertex AI authenticates with a bearer access token rather than a URL
// API key; the token is read from an environment variable the operator
// refreshes out of band (e.g. via `gcloud auth print-access-token` in a
// sidecar).
func AntigravityVertex(project, location, baseURL string) *Provider {
	if location == "" {
		location = "us-central1"
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", location)
	}
	resourcePrefix := fmt.Sprintf("/projects/%s/locations/%s/publishers/google", project, location)
	return New(Config{
		Name:              "antigravity",
		Info:              antigravityInfo(),
		BaseURL:           baseURL,
		APIKeyEnv:         "GOOGLE_VERTEX_ACCESS_TOKEN",
		APIKeyHeader:      "Authorization",
		APIKeyPrefix:      "Bearer ",
		RequestPath:       resourcePrefix + "/models/%s:generateContent",
		StreamRequestPath: resourcePrefix + "/models/%s:streamGenerateContent?alt=sse",
		HealthModel:       "claude-opus-4-5",
	})
}

func antigravityInfo() registry.Info {
	return registry.Info{
		Name:        "antigravity",
		DisplayName: "Antigravity (Google)",
		APIFormat:   registry.FormatGemini,
		Capabilities: registry.Capabilities{
			SupportsStreaming: true,
			SupportsThinking:  true,
			SupportsTools:     true,
			SupportsVision:    true,
			MaxContextTokens:  1000000,
		},
		Description: "Google Antigravity API with Claude model support",
	}
}
