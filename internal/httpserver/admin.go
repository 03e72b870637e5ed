package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nikketryhard/a2c/pkg/debugevents"
	"github.com/nikketryhard/a2c/pkg/routing"
)

// adminProviders handles GET /admin/providers: every registered
// provider's static info plus last-known health.
func (h *handlers) adminProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, h.reg.Snapshot())
}

// adminTestProvider handles POST /admin/providers/{name}/test: forces
// an immediate health check and reports the result.
func (h *handlers) adminTestProvider(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	health, err := h.reg.CheckOne(r.Context(), name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, 200, map[string]interface{}{
		"provider": name,
		"success":  health.Status == "healthy",
		"health":   health,
	})
}

// adminStats handles GET /admin/stats?hours=N: request counts, latency,
// and token totals aggregated over the requested window. Without a
// recorder wired it reports an empty window.
func (h *handlers) adminStats(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			hours = n
		}
	}
	if h.stats == nil {
		writeJSON(w, 200, debugevents.Stats{PeriodHours: hours, ByProvider: map[string]int{}})
		return
	}
	writeJSON(w, 200, h.stats.Snapshot(hours))
}

// adminRoutingRules handles GET /admin/routing/rules: the ruleset's
// compiled rules in priority order.
func (h *handlers) adminRoutingRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, h.dispatcher.Ruleset().Explain())
}

// adminRoutingTest handles GET /admin/routing/test: evaluates the
// ruleset against a hypothetical request described by query
// parameters.
func (h *handlers) adminRoutingTest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	model := q.Get("model")
	if model == "" {
		model = "claude-opus-4-5"
	}
	thinking, _ := strconv.ParseBool(q.Get("thinking"))
	contextTokens, _ := strconv.Atoi(q.Get("context_tokens"))

	in := routing.MatchInput{
		AgentType:       routing.AgentType(q.Get("agent_type")),
		Model:           model,
		ThinkingEnabled: thinking,
		ContextTokens:   contextTokens,
	}
	provider, ruleName := h.dispatcher.Ruleset().Test(in)

	writeJSON(w, 200, map[string]interface{}{
		"input": map[string]interface{}{
			"model":          model,
			"thinking":       thinking,
			"agent_type":     q.Get("agent_type"),
			"context_tokens": contextTokens,
		},
		"result": map[string]string{
			"provider": provider,
			"rule":     ruleName,
		},
	})
}
