// Package upstream adapts one concrete HTTP backend to the
// registry.Provider interface, building on the shared HTTP client
// (pkg/internal/http) for connection pooling and request/response
// plumbing. Two backend families are supported: a static-path,
// header-authenticated one and a per-model-path one with optional
// query-string auth.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	internalhttp "github.com/nikketryhard/a2c/pkg/internal/http"
	"github.com/nikketryhard/a2c/pkg/registry"
)

// Config describes one upstream provider's static wiring.
type Config struct {
	Name string
	Info registry.Info

	BaseURL      string
	APIKeyEnv    string
	APIKeyHeader string // e.g. "x-api-key", "x-goog-api-key"
	APIKeyPrefix string // e.g. "Bearer " when APIKeyHeader is Authorization

	// RequestPath/StreamRequestPath may contain one "%s" verb, filled
	// in with the request's model (antigravity's :generateContent
	// paths are keyed by model; anthropic's /v1/messages is static and
	// takes no verb).
	RequestPath       string
	StreamRequestPath string

	// QueryKeyParam appends "?key=<APIKey>" (direct Gemini API key
	// auth) instead of sending an auth header.
	QueryKeyParam bool

	// HealthModel is the model id used in the minimal probe request
	// CheckHealth sends; AnthropicVersion is sent as a header when set.
	HealthModel      string
	AnthropicVersion string

	Timeout time.Duration
}

// Provider is an HTTP-backed registry.Provider.
type Provider struct {
	cfg    Config
	client *internalhttp.Client
}

// New builds a Provider from cfg. The API key is read from
// os.Getenv(cfg.APIKeyEnv) lazily on every call so credential rotation
// via environment reload doesn't require re-registration.
func New(cfg Config) *Provider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Provider{
		cfg: cfg,
		client: internalhttp.NewClient(internalhttp.Config{
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		}),
	}
}

func (p *Provider) Name() string        { return p.cfg.Name }
func (p *Provider) Info() registry.Info { return p.cfg.Info }

func (p *Provider) apiKey() string {
	if p.cfg.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.cfg.APIKeyEnv)
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey() != ""
}

func (p *Provider) authHeaders() map[string]string {
	key := p.apiKey()
	if key == "" || p.cfg.QueryKeyParam || p.cfg.APIKeyHeader == "" {
		headers := map[string]string{}
		if p.cfg.AnthropicVersion != "" {
			headers["anthropic-version"] = p.cfg.AnthropicVersion
		}
		if len(headers) == 0 {
			return nil
		}
		return headers
	}
	headers := map[string]string{p.cfg.APIKeyHeader: p.cfg.APIKeyPrefix + key}
	if p.cfg.AnthropicVersion != "" {
		headers["anthropic-version"] = p.cfg.AnthropicVersion
	}
	return headers
}

// resolvePath fills in the model verb (if any) and appends the API key
// as a query parameter when the provider authenticates that way.
func (p *Provider) resolvePath(template, model string) string {
	path := template
	if strings.Contains(path, "%s") {
		path = fmt.Sprintf(path, model)
	}
	if p.cfg.QueryKeyParam {
		if key := p.apiKey(); key != "" {
			sep := "?"
			if strings.Contains(path, "?") {
				sep = "&"
			}
			path += sep + "key=" + key
		}
	}
	return path
}

// SendRequest performs one non-streaming upstream call.
func (p *Provider) SendRequest(ctx context.Context, req registry.Request) (*registry.Response, error) {
	start := time.Now()
	resp, err := p.client.Do(ctx, internalhttp.Request{
		Method:  "POST",
		Path:    p.resolvePath(p.cfg.RequestPath, req.Model),
		Headers: mergeHeaders(p.authHeaders(), req.Headers),
		Body:    rawBody(req.Body),
	})
	if err != nil {
		return nil, err
	}
	return &registry.Response{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// StreamRequest performs one streaming upstream call, returning the
// live response body as a Response.Stream the caller must close.
func (p *Provider) StreamRequest(ctx context.Context, req registry.Request) (*registry.Response, error) {
	start := time.Now()
	httpResp, err := p.client.DoStream(ctx, internalhttp.Request{
		Method:  "POST",
		Path:    p.resolvePath(p.cfg.StreamRequestPath, req.Model),
		Headers: mergeHeaders(p.authHeaders(), req.Headers),
		Body:    rawBody(req.Body),
	})
	if err != nil {
		return nil, err
	}
	return &registry.Response{
		StatusCode: httpResp.StatusCode,
		Stream:     httpResp.Body,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// CheckHealth sends a minimal real request (one token, "hi") rather
// than probing a separate status endpoint, since neither Anthropic nor
// Gemini expose one.
func (p *Provider) CheckHealth(ctx context.Context) registry.Health {
	if !p.IsConfigured() {
		return registry.Health{Status: registry.StatusUnhealthy, LastCheck: time.Now(), Error: "not configured"}
	}

	model := p.cfg.HealthModel
	body, err := json.Marshal(healthProbeBody(p.cfg.Info.APIFormat, model))
	if err != nil {
		return registry.Health{Status: registry.StatusUnknown, LastCheck: time.Now(), Error: err.Error()}
	}

	start := time.Now()
	resp, err := p.client.Do(ctx, internalhttp.Request{
		Method:  "POST",
		Path:    p.resolvePath(p.cfg.RequestPath, model),
		Headers: p.authHeaders(),
		Body:    rawBody(body),
	})
	latency := time.Since(start).Milliseconds()

	if err != nil {
		msg := "connection failed"
		var nerr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			msg = "timeout"
		}
		return registry.Health{Status: registry.StatusUnhealthy, LatencyMs: latency, LastCheck: time.Now(), Error: msg}
	}

	switch {
	case resp.StatusCode == 200:
		return registry.Health{Status: registry.StatusHealthy, LatencyMs: latency, LastCheck: time.Now()}
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return registry.Health{Status: registry.StatusUnhealthy, LatencyMs: latency, LastCheck: time.Now(), Error: "invalid credentials"}
	case resp.StatusCode == 429:
		return registry.Health{Status: registry.StatusDegraded, LatencyMs: latency, LastCheck: time.Now(), Error: "rate limited"}
	default:
		return registry.Health{Status: registry.StatusDegraded, LatencyMs: latency, LastCheck: time.Now(), Error: fmt.Sprintf("status %d", resp.StatusCode)}
	}
}

func healthProbeBody(format registry.APIFormat, model string) map[string]interface{} {
	if format == registry.FormatGemini {
		return map[string]interface{}{
			"contents":         []map[string]interface{}{{"role": "user", "parts": []map[string]string{{"text": "hi"}}}},
			"generationConfig": map[string]interface{}{"maxOutputTokens": 1},
		}
	}
	return map[string]interface{}{
		"model":      model,
		"max_tokens": 1,
		"messages":   []map[string]string{{"role": "user", "content": "hi"}},
	}
}

func mergeHeaders(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// rawBody passes already-marshaled bytes through internalhttp.Client's
// interface{} body field (which always calls json.Marshal on it)
// without a redundant unmarshal/remarshal round trip.
type rawBody []byte

func (r rawBody) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}
