// Package httpserver wires the dispatcher, registry, and ruleset into
// chi routes: the /v1 client surface, the /health probes, and the
// /admin introspection endpoints.
package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikketryhard/a2c/internal/applog"
	"github.com/nikketryhard/a2c/pkg/apierr"
	"github.com/nikketryhard/a2c/pkg/debugevents"
	"github.com/nikketryhard/a2c/pkg/dispatch"
	"github.com/nikketryhard/a2c/pkg/registry"
	"github.com/nikketryhard/a2c/pkg/telemetry"
)

// Deps are the collaborators a Server needs; New wires them into routes.
type Deps struct {
	Dispatcher  *dispatch.Dispatcher
	Registry    *registry.Registry
	Log         *applog.Logger
	Tracer      trace.Tracer
	Stats       *debugevents.StatsRecorder
	CORSOrigins []string
}

// New builds the chi router serving every route the gateway exposes.
func New(d Deps) http.Handler {
	h := &handlers{dispatcher: d.Dispatcher, reg: d.Registry, log: d.Log, tracer: d.Tracer, stats: d.Stats}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(180 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"*"},
	}))

	r.Get("/", h.root)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", h.createMessage)
		r.Get("/models", h.listModels)
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", h.liveness)
		r.Get("/ready", h.readiness)
		r.Get("/providers", h.providerHealth)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/providers", h.adminProviders)
		r.Post("/providers/{name}/test", h.adminTestProvider)
		r.Get("/routing/rules", h.adminRoutingRules)
		r.Get("/routing/test", h.adminRoutingTest)
		r.Get("/stats", h.adminStats)
	})

	return r
}

type handlers struct {
	dispatcher *dispatch.Dispatcher
	reg        *registry.Registry
	log        *applog.Logger
	tracer     trace.Tracer
	stats      *debugevents.StatsRecorder
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"name": "a2c", "status": "running"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, err *apierr.Error) {
	writeJSON(w, err.Status, err.ToBody())
}

func (h *handlers) tracerOrNoop() trace.Tracer {
	if h.tracer != nil {
		return h.tracer
	}
	return telemetry.GetTracer(telemetry.DefaultSettings())
}
