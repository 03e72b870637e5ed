package httpserver

import (
	"net/http"
	"time"
)

// liveness handles GET /health/live: a bare process-alive probe.
func (h *handlers) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// readiness handles GET /health/ready: ready once at least one
// provider is configured or healthy, 503 otherwise.
func (h *handlers) readiness(w http.ResponseWriter, r *http.Request) {
	configured := h.reg.ListConfigured()
	healthy := h.reg.ListHealthy()
	ready := len(healthy) > 0 || len(configured) > 0

	status := 200
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"providers": map[string]int{
			"total":     len(h.reg.List()),
			"configured": len(configured),
			"healthy":   len(healthy),
		},
	})
}

// providerHealth handles GET /health/providers: detailed per-provider
// health plus an overall rollup.
func (h *handlers) providerHealth(w http.ResponseWriter, r *http.Request) {
	snapshots := h.reg.Snapshot()

	allHealthy, anyHealthy := len(snapshots) > 0, false
	providers := make(map[string]interface{}, len(snapshots))
	for _, s := range snapshots {
		healthy := s.Health.Status == "healthy"
		anyHealthy = anyHealthy || healthy
		allHealthy = allHealthy && healthy
		providers[s.Info.Name] = map[string]interface{}{
			"display_name": s.Info.DisplayName,
			"is_healthy":   healthy,
			"health":       s.Health,
			"capabilities": s.Info.Capabilities,
		}
	}

	overall := "unhealthy"
	switch {
	case allHealthy && len(snapshots) > 0:
		overall = "healthy"
	case anyHealthy:
		overall = "degraded"
	}

	writeJSON(w, 200, map[string]interface{}{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"providers": providers,
	})
}
