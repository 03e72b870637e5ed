// Package dispatch ties the request translator, the routing engine, the
// provider registry, and the failover policy together into the
// end-to-end handling of one inbound request.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/nikketryhard/a2c/internal/applog"
	"github.com/nikketryhard/a2c/pkg/apierr"
	"github.com/nikketryhard/a2c/pkg/convert"
	"github.com/nikketryhard/a2c/pkg/debugevents"
	"github.com/nikketryhard/a2c/pkg/failover"
	"github.com/nikketryhard/a2c/pkg/provider/types"
	"github.com/nikketryhard/a2c/pkg/registry"
	"github.com/nikketryhard/a2c/pkg/routing"
	"github.com/nikketryhard/a2c/pkg/streaming"
	"github.com/nikketryhard/a2c/pkg/tokens"
)

// Dispatcher orchestrates one inbound /v1/messages call from parsed
// body to either a unary response body or a streamed one.
type Dispatcher struct {
	reg     *registry.Registry
	ruleset atomic.Pointer[routing.Ruleset]
	policy  failover.Policy
	sink    debugevents.Sink
	log     *applog.Logger

	// sleep is the backoff wait, overridable in tests.
	sleep func(time.Duration)
}

// New builds a Dispatcher bound to reg and rs, using policy for retry
// and failover decisions. sink receives debug events; pass
// debugevents.NoopSink{} to disable capture.
func New(reg *registry.Registry, rs *routing.Ruleset, policy failover.Policy, sink debugevents.Sink, log *applog.Logger) *Dispatcher {
	d := &Dispatcher{reg: reg, policy: policy, sink: sink, log: log, sleep: time.Sleep}
	d.ruleset.Store(rs)
	return d
}

// SetRuleset atomically swaps in a reloaded ruleset.
func (d *Dispatcher) SetRuleset(rs *routing.Ruleset) {
	d.ruleset.Store(rs)
}

// Ruleset returns the ruleset currently in effect.
func (d *Dispatcher) Ruleset() *routing.Ruleset {
	return d.ruleset.Load()
}

// Prepared is the result of parsing and routing one inbound request,
// ready to be dispatched unary or streamed.
type Prepared struct {
	Request         *types.MessagesRequest
	AgentType       string
	ContextTokens   int
	IncludeThinking bool
	MatchedRule     string
	ProviderChain   []string
}

// Prepare parses body, estimates its token footprint, and selects the
// ordered chain of providers to attempt.
func (d *Dispatcher) Prepare(body []byte, agentType string) (*Prepared, *apierr.Error) {
	var generic map[string]interface{}
	if err := json.Unmarshal(body, &generic); err != nil {
		return nil, apierr.InvalidRequest("invalid JSON: %v", err)
	}
	contextTokens := tokens.Estimate(generic)

	var req types.MessagesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apierr.InvalidRequest("invalid JSON: %v", err)
	}

	includeThinking := convert.ThinkingDecision(&req)

	agent := routing.AgentType(agentType)
	if agent == "" {
		agent = routing.AgentDefault
	}

	providerName, rule := d.Ruleset().Select(routing.MatchInput{
		AgentType:       agent,
		Model:           req.Model,
		ThinkingEnabled: includeThinking,
		ContextTokens:   contextTokens,
	})

	matchedRule := ""
	fallback := ""
	if rule != nil {
		matchedRule = rule.Name
		fallback = rule.FallbackProvider
	}

	available := make([]string, 0)
	for _, p := range d.reg.ListConfigured() {
		available = append(available, p.Name())
	}

	if _, ok := d.reg.Get(providerName); !ok {
		configured := d.reg.ListConfigured()
		if len(configured) == 0 {
			return nil, apierr.New(apierr.TypeRoutingError, "no providers configured")
		}
		d.log.Warnf("provider %q not found, falling back to %q", providerName, configured[0].Name())
		providerName = configured[0].Name()
	}

	chain := failover.BuildChain(providerName, fallback, available)
	if len(chain) == 0 {
		return nil, apierr.New(apierr.TypeRoutingError, "no providers available")
	}

	return &Prepared{
		Request:         &req,
		AgentType:       agentType,
		ContextTokens:   contextTokens,
		IncludeThinking: includeThinking,
		MatchedRule:     matchedRule,
		ProviderChain:   chain,
	}, nil
}

// buildOutboundBody translates the Messages request into the provider's
// own wire format when it speaks a foreign format, or passes the
// original JSON through unchanged when it speaks Messages natively.
func buildOutboundBody(p *Prepared, info registry.Info, originalBody []byte) ([]byte, error) {
	if info.APIFormat == registry.FormatAnthropic {
		return originalBody, nil
	}
	genReq, _ := convert.Translate(p.Request)
	return json.Marshal(genReq)
}

// outboundModel resolves the model identifier used to address the
// upstream: a foreign-format provider is keyed by its own model names
// (the request/stream path templates fill in this value), while a
// Messages-format provider understands the client's own model string
// unchanged.
func outboundModel(p *Prepared, info registry.Info) string {
	if info.APIFormat == registry.FormatAnthropic {
		return p.Request.Model
	}
	return convert.MapModel(p.Request.Model)
}

// UnaryResult is the outcome of a non-streaming dispatch.
type UnaryResult struct {
	StatusCode   int
	Body         []byte
	ProviderUsed string
}

// DispatchUnary sends one non-streaming request across the prepared
// failover chain, retrying retryable statuses in place before advancing
// to the next provider.
func (d *Dispatcher) DispatchUnary(ctx context.Context, p *Prepared, requestID, messageID string, originalBody []byte) (*UnaryResult, *apierr.Error) {
	var lastErr *apierr.Error
	start := time.Now()

	for _, name := range p.ProviderChain {
		d.sink.RequestStarted(debugevents.RequestStarted{
			RequestID: requestID, Provider: name, Model: p.Request.Model,
			AgentType: p.AgentType, MatchedRule: p.MatchedRule, Timestamp: time.Now(),
		})
		prov, ok := d.reg.Get(name)
		if !ok {
			continue
		}
		if health, ok := d.reg.HealthOf(name); ok && d.policy.ShouldFailover(health) {
			continue
		}

		outBody, err := buildOutboundBody(p, prov.Info(), originalBody)
		if err != nil {
			lastErr = apierr.Internal(err)
			continue
		}

		var resp *registry.Response
		var sendErr error
		for attempt := 1; attempt <= d.policy.MaxRetries; attempt++ {
			if lim := d.reg.Limiter(name); lim != nil {
				_ = lim.Wait(ctx)
			}
			resp, sendErr = prov.SendRequest(ctx, registry.Request{Method: "POST", Body: outBody, Model: outboundModel(p, prov.Info())})
			if sendErr != nil {
				lastErr = apierr.Wrap(apierr.TypeProviderError, "upstream call failed", sendErr)
				break
			}
			if !d.policy.ShouldRetry(resp.StatusCode) {
				break
			}
			lastErr = apierr.ProviderError(name, resp.StatusCode, fmt.Errorf("retryable status %d", resp.StatusCode))
			d.sleep(time.Duration(d.policy.RetryDelayMs(attempt)) * time.Millisecond)
		}

		if sendErr != nil {
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			finalBody, err := renderUnaryBody(prov.Info(), resp.Body, p, messageID)
			if err != nil {
				return nil, apierr.Internal(err)
			}
			d.sink.RequestCompleted(debugevents.RequestCompleted{
				RequestID: requestID, Status: resp.StatusCode,
				LatencyMs: time.Since(start).Milliseconds(), InputTokens: p.ContextTokens,
				Timestamp: time.Now(),
			})
			return &UnaryResult{StatusCode: resp.StatusCode, Body: finalBody, ProviderUsed: name}, nil
		}
		lastErr = apierr.ProviderError(name, resp.StatusCode, fmt.Errorf("upstream status %d", resp.StatusCode))
	}

	if lastErr == nil {
		lastErr = apierr.New(apierr.TypeRoutingError, "no providers available")
	}
	d.sink.RequestError(debugevents.RequestError{
		RequestID: requestID, Error: lastErr.Error(), ErrorType: string(lastErr.ErrType), Timestamp: time.Now(),
	})
	return nil, lastErr
}

// renderUnaryBody decodes a foreign-format response and re-renders it
// as a Messages-format response, or passes a native-format body through
// unchanged.
func renderUnaryBody(info registry.Info, body []byte, p *Prepared, messageID string) ([]byte, error) {
	if info.APIFormat == registry.FormatAnthropic {
		return body, nil
	}
	var chunk types.StreamChunk
	if err := json.Unmarshal(body, &chunk); err != nil {
		return nil, err
	}
	resp := convert.BuildResponse(chunk, convert.ResponseOptions{
		MessageID:          messageID,
		Model:              p.Request.Model,
		InitialInputTokens: p.ContextTokens,
	})
	return json.Marshal(resp)
}

// StreamResult reports which provider ultimately served a streamed
// request, for response-header and debug-event purposes.
type StreamResult struct {
	ProviderUsed string
}

// DispatchStream opens the prepared request against the failover
// chain's providers in turn (since a stream that has already started
// writing to the client cannot itself be retried, a stream only
// advances to the next provider if OPENING the connection fails or
// returns a non-2xx status before any bytes are copied) and pipes the
// upstream bytes through the Streaming Translator for foreign-format
// providers, or verbatim for Messages-format ones.
func (d *Dispatcher) DispatchStream(ctx context.Context, p *Prepared, requestID, messageID string, originalBody []byte, out io.Writer) (*StreamResult, *apierr.Error) {
	var lastErr *apierr.Error
	start := time.Now()

	for _, name := range p.ProviderChain {
		prov, ok := d.reg.Get(name)
		if !ok {
			continue
		}
		d.sink.RequestStarted(debugevents.RequestStarted{
			RequestID: requestID, Provider: name, Model: p.Request.Model,
			AgentType: p.AgentType, IsStreaming: true, MatchedRule: p.MatchedRule, Timestamp: time.Now(),
		})
		if health, ok := d.reg.HealthOf(name); ok && d.policy.ShouldFailover(health) {
			continue
		}

		outBody, err := buildOutboundBody(p, prov.Info(), originalBody)
		if err != nil {
			lastErr = apierr.Internal(err)
			continue
		}

		if lim := d.reg.Limiter(name); lim != nil {
			_ = lim.Wait(ctx)
		}

		resp, err := prov.StreamRequest(ctx, registry.Request{Method: "POST", Body: outBody, Model: outboundModel(p, prov.Info())})
		if err != nil {
			lastErr = apierr.Wrap(apierr.TypeProviderError, "upstream stream open failed", err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = apierr.ProviderError(name, resp.StatusCode, fmt.Errorf("upstream status %d", resp.StatusCode))
			if resp.Stream != nil {
				_ = resp.Stream.Close()
			}
			continue
		}

		info := prov.Info()
		if info.APIFormat == registry.FormatAnthropic {
			if _, err := io.Copy(out, resp.Stream); err != nil {
				_ = resp.Stream.Close()
				return nil, apierr.Internal(err)
			}
			_ = resp.Stream.Close()
			d.sink.RequestCompleted(debugevents.RequestCompleted{
				RequestID: requestID, Status: resp.StatusCode,
				LatencyMs: time.Since(start).Milliseconds(), InputTokens: p.ContextTokens,
				Timestamp: time.Now(),
			})
			return &StreamResult{ProviderUsed: name}, nil
		}

		seq := 0
		translateErr := streaming.Translate(ctx, resp.Stream, out, streaming.Options{
			MessageID:             messageID,
			Model:                 p.Request.Model,
			InitialInputTokens:    p.ContextTokens,
			ClientThinkingEnabled: p.IncludeThinking,
			ThinkingToText:        true,
			OnEvent: func(eventType, data string) {
				seq++
				d.sink.SSEEvent(debugevents.SSEEvent{
					RequestID: requestID, Sequence: seq, EventType: eventType,
					Data: data, Timestamp: time.Now(),
				})
			},
		})
		_ = resp.Stream.Close()
		if translateErr != nil {
			return nil, apierr.Internal(translateErr)
		}
		d.sink.RequestCompleted(debugevents.RequestCompleted{
			RequestID: requestID, Status: resp.StatusCode,
			LatencyMs: time.Since(start).Milliseconds(), InputTokens: p.ContextTokens,
			Timestamp: time.Now(),
		})
		return &StreamResult{ProviderUsed: name}, nil
	}

	if lastErr == nil {
		lastErr = apierr.New(apierr.TypeRoutingError, "no providers available")
	}
	// The 200/text-event-stream response is already committed by the
	// time providers are attempted, so a chain that never opened still
	// owes the client a well-formed stream: a synthesized message_start
	// followed by a terminal error event.
	seq := 0
	streaming.EmitErrorStream(out, streaming.Options{
		MessageID:          messageID,
		Model:              p.Request.Model,
		InitialInputTokens: p.ContextTokens,
		OnEvent: func(eventType, data string) {
			seq++
			d.sink.SSEEvent(debugevents.SSEEvent{
				RequestID: requestID, Sequence: seq, EventType: eventType,
				Data: data, Timestamp: time.Now(),
			})
		},
	}, string(lastErr.ErrType), lastErr)
	d.sink.RequestError(debugevents.RequestError{
		RequestID: requestID, Error: lastErr.Error(), ErrorType: string(lastErr.ErrType), Timestamp: time.Now(),
	})
	return nil, lastErr
}
