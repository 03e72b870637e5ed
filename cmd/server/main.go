// Command server runs the a2c gateway: an HTTP front door that accepts
// Messages-format requests, routes them per the configured rules, and
// dispatches them to whichever upstream provider the routing engine
// selects, translating wire formats as needed.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikketryhard/a2c/internal/applog"
	"github.com/nikketryhard/a2c/internal/config"
	"github.com/nikketryhard/a2c/internal/httpserver"
	"github.com/nikketryhard/a2c/internal/tracing"
	"github.com/nikketryhard/a2c/pkg/debugevents"
	"github.com/nikketryhard/a2c/pkg/dispatch"
	"github.com/nikketryhard/a2c/pkg/failover"
	"github.com/nikketryhard/a2c/pkg/registry"
	"github.com/nikketryhard/a2c/pkg/upstream"
)

// debugSink builds the debug-event sink: the in-memory stats recorder
// (always on, it backs /admin/stats), plus JSON-lines file capture when
// A2C_DEBUG_EVENTS_PATH names a writable path.
func debugSink(stats *debugevents.StatsRecorder) debugevents.Sink {
	path := os.Getenv("A2C_DEBUG_EVENTS_PATH")
	if path == "" {
		return stats
	}
	fileSink, err := debugevents.NewFileSink(path)
	if err != nil {
		return stats
	}
	return debugevents.MultiSink{stats, fileSink}
}

func main() {
	configPath := flag.String("config", "", "path to the gateway's YAML config file")
	flag.Parse()

	log := applog.New("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("load config: %v", err)
		os.Exit(1)
	}

	reg := registry.New()
	registerConfiguredProviders(reg, cfg, log)

	ruleset, err := cfg.Routing.ToRuleset()
	if err != nil {
		log.Errorf("compile routing config: %v", err)
		os.Exit(1)
	}

	tracer, shutdownTracing, err := tracing.Setup(tracing.Config{
		Endpoint:    os.Getenv("A2C_OTLP_ENDPOINT"),
		ServiceName: "a2c",
		Insecure:    os.Getenv("A2C_OTLP_INSECURE") == "true",
	})
	if err != nil {
		log.Errorf("setup tracing: %v", err)
		os.Exit(1)
	}

	stats := debugevents.NewStatsRecorder()
	dispatcher := dispatch.New(reg, ruleset, failover.DefaultPolicy(), debugSink(stats), log.With("dispatch"))

	monitor := registry.NewMonitor(reg, 60*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	monitor.Start(ctx)

	handler := httpserver.New(httpserver.Deps{
		Dispatcher: dispatcher,
		Registry:   reg,
		Log:        log.With("http"),
		Tracer:     tracer,
		Stats:      stats,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses can run far longer than any fixed write deadline
	}

	go func() {
		log.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Infof("shutting down")
	cancel()
	monitor.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Errorf("tracer shutdown: %v", err)
	}
}

// registerConfiguredProviders wires the gateway's two built-in
// upstreams. Per-provider base URL overrides come from the config
// file's providers section; credentials are always read from the
// environment, never from YAML.
func registerConfiguredProviders(reg *registry.Registry, cfg *config.Config, log *applog.Logger) {
	anthropicBase := ""
	if pc, ok := cfg.Providers["anthropic"]; ok {
		anthropicBase = pc.BaseURL
	}
	antigravityBase := ""
	if pc, ok := cfg.Providers["antigravity"]; ok {
		antigravityBase = pc.BaseURL
	}

	anthropic := upstream.Anthropic(anthropicBase)
	if err := reg.Register(anthropic, 0, 0); err != nil {
		log.Errorf("register anthropic: %v", err)
	} else if anthropic.IsConfigured() {
		log.Infof("registered anthropic provider (configured)")
	} else {
		log.Warnf("registered anthropic provider (no ANTHROPIC_API_KEY set)")
	}

	// A configured GCP project selects the Vertex-style resource-scoped
	// endpoint; otherwise the direct API-key endpoint.
	var antigravity *upstream.Provider
	antigravityKeyEnv := "GOOGLE_API_KEY"
	if project := os.Getenv("A2C_VERTEX_PROJECT"); project != "" {
		antigravity = upstream.AntigravityVertex(project, os.Getenv("A2C_VERTEX_LOCATION"), antigravityBase)
		antigravityKeyEnv = "GOOGLE_VERTEX_ACCESS_TOKEN"
	} else {
		antigravity = upstream.Antigravity(antigravityBase)
	}
	if err := reg.Register(antigravity, 0, 0); err != nil {
		log.Errorf("register antigravity: %v", err)
	} else if antigravity.IsConfigured() {
		log.Infof("registered antigravity provider (configured)")
	} else {
		log.Warnf("registered antigravity provider (no %s set)", antigravityKeyEnv)
	}
}
