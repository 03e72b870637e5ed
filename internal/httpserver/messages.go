package httpserver

import (
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikketryhard/a2c/pkg/apierr"
	"github.com/nikketryhard/a2c/pkg/dispatch"
	"github.com/nikketryhard/a2c/pkg/registry"
	"github.com/nikketryhard/a2c/pkg/telemetry"
)

// requestTimeout picks the per-request deadline: 120s by default,
// extended to 180s for a streaming call heading to a foreign-format
// (translated) upstream, which must stay open long enough to translate a
// full SSE response rather than a quick unary round trip.
func requestTimeout(stream bool, chain []string, reg *registry.Registry) time.Duration {
	if !stream || len(chain) == 0 {
		return 120 * time.Second
	}
	if prov, ok := reg.Get(chain[0]); ok && prov.Info().APIFormat != registry.FormatAnthropic {
		return 180 * time.Second
	}
	return 120 * time.Second
}

func newRequestID() string {
	u := uuid.New()
	return "req_" + hex.EncodeToString(u[:12])
}

func newMessageID() string {
	u := uuid.New()
	return "msg_" + hex.EncodeToString(u[:12])
}

// createMessage handles POST /v1/messages: parse, route, and dispatch
// to the selected provider chain, streaming or unary per the request's
// stream field.
func (h *handlers) createMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeAPIError(w, apierr.InvalidRequest("could not read request body: %v", err))
		return
	}

	requestID := newRequestID()
	messageID := newMessageID()
	agentType := r.Header.Get("x-agent-type")
	start := time.Now()

	// Every reply carries the request id, error replies included.
	w.Header().Set("X-Request-Id", requestID)

	reqHeaders := map[string]string{"x-agent-type": agentType, "anthropic-version": r.Header.Get("anthropic-version")}

	_, spanErr := telemetry.RecordSpan(r.Context(), h.tracerOrNoop(), telemetry.SpanOptions{
		Name:        "dispatch.messages",
		Attributes:  telemetry.GetBaseAttributes("unrouted", "", nil, reqHeaders),
		EndWhenDone: true,
	}, func(ctx context.Context, span trace.Span) (struct{}, error) {
		span.SetAttributes(attribute.String("a2c.request_id", requestID))

		prepared, apiErr := h.dispatcher.Prepare(body, agentType)
		if apiErr != nil {
			return struct{}{}, apiErr
		}
		telemetry.AddSettingsAttributes(span, "a2c", map[string]interface{}{
			"model":        prepared.Request.Model,
			"thinking":     prepared.IncludeThinking,
			"matched_rule": prepared.MatchedRule,
		})

		ctx, cancel := context.WithTimeout(ctx, requestTimeout(prepared.Request.Stream, prepared.ProviderChain, h.reg))
		defer cancel()

		if prepared.Request.Stream {
			h.streamMessage(ctx, w, prepared, requestID, messageID, body, start)
			return struct{}{}, nil
		}

		result, apiErr := h.dispatcher.DispatchUnary(ctx, prepared, requestID, messageID, body)
		if apiErr != nil {
			return struct{}{}, apiErr
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Provider", result.ProviderUsed)
		w.WriteHeader(result.StatusCode)
		_, _ = w.Write(result.Body)

		h.log.Infof("[%s] %s served in %s (model=%s stream=false)",
			requestID, result.ProviderUsed, time.Since(start), prepared.Request.Model)
		return struct{}{}, nil
	})

	if spanErr != nil {
		if apiErr, ok := spanErr.(*apierr.Error); ok {
			writeAPIError(w, apiErr)
		}
	}
}

// flushWriter wraps an http.ResponseWriter, flushing after every write
// so SSE events reach the client as the upstream produces them rather
// than buffering until the handler returns.
type flushWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if fw.f != nil {
		fw.f.Flush()
	}
	return n, err
}

func (h *handlers) streamMessage(ctx context.Context, w http.ResponseWriter, prepared *dispatch.Prepared, requestID, messageID string, body []byte, start time.Time) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Headers must go out before the first SSE byte, so the selected
	// provider is reported optimistically as the chain's first entry;
	// a failover that happens before any bytes are copied (the only
	// kind DispatchStream performs) will not be reflected here.
	if len(prepared.ProviderChain) > 0 {
		w.Header().Set("X-Provider", prepared.ProviderChain[0])
	}
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	out := flushWriter{w: w, f: flusher}

	result, apiErr := h.dispatcher.DispatchStream(ctx, prepared, requestID, messageID, body, out)
	if apiErr != nil {
		h.log.Errorf("[%s] stream dispatch failed: %v", requestID, apiErr)
		return
	}

	h.log.Infof("[%s] %s streamed in %s (model=%s)",
		requestID, result.ProviderUsed, time.Since(start), prepared.Request.Model)
}
