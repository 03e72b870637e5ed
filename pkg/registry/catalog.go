package registry

// ModelEntry is one row of the /v1/models catalog.
type ModelEntry struct {
	ID               string `json:"id"`
	Provider         string `json:"provider"`
	DisplayName      string `json:"display_name"`
	SupportsThinking bool   `json:"supports_thinking"`
}

// modelCatalogs is the built-in, per-provider model list surfaced on
// /v1/models.
var modelCatalogs = map[string][]ModelEntry{
	"anthropic": {
		{ID: "claude-opus-4-5", Provider: "anthropic", DisplayName: "Claude Opus 4.5", SupportsThinking: true},
		{ID: "claude-sonnet-4-5", Provider: "anthropic", DisplayName: "Claude Sonnet 4.5", SupportsThinking: true},
		{ID: "claude-haiku-4-5", Provider: "anthropic", DisplayName: "Claude Haiku 4.5", SupportsThinking: true},
	},
	"antigravity": {
		{ID: "claude-opus-4-5", Provider: "antigravity", DisplayName: "Claude Opus 4.5 (via antigravity)", SupportsThinking: true},
		{ID: "claude-sonnet-4-5", Provider: "antigravity", DisplayName: "Claude Sonnet 4.5 (via antigravity)", SupportsThinking: true},
		{ID: "claude-haiku-4-5", Provider: "antigravity", DisplayName: "Claude Haiku 4.5 (via antigravity)", SupportsThinking: true},
	},
}

// ModelCatalog lists the built-in catalog entries for every configured
// provider this Registry knows about. Providers with no catalog entry
// (a custom upstream) are simply omitted.
func (r *Registry) ModelCatalog() []ModelEntry {
	var out []ModelEntry
	for _, p := range r.ListConfigured() {
		out = append(out, modelCatalogs[p.Name()]...)
	}
	return out
}

// Snapshot is the admin-surfaced view of one provider: its static info
// plus last-known health.
type Snapshot struct {
	Info   Info   `json:"info"`
	Health Health `json:"health"`
}

// Snapshot returns a point-in-time view of every registered provider,
// for the /admin/providers endpoint.
func (r *Registry) Snapshot() []Snapshot {
	r.mu.RLock()
	providers := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(providers))
	for _, p := range providers {
		h, _ := r.HealthOf(p.Name())
		out = append(out, Snapshot{Info: p.Info(), Health: h})
	}
	return out
}
