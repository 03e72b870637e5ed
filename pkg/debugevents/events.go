// Package debugevents defines the structured events the dispatcher and
// streaming translator emit for external debug capture. Persistence is
// the consumer's concern; the gateway only produces the events.
package debugevents

import "time"

// RequestStarted is emitted once a request has been routed and is about
// to be forwarded to a provider.
type RequestStarted struct {
	RequestID   string    `json:"request_id"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	AgentType   string    `json:"agent_type,omitempty"`
	IsStreaming bool      `json:"is_streaming"`
	MatchedRule string    `json:"matched_rule,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RequestCompleted is emitted once a response (streaming or not) has
// fully been returned to the client.
type RequestCompleted struct {
	RequestID    string    `json:"request_id"`
	Status       int       `json:"status"`
	LatencyMs    int64     `json:"latency_ms"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// RequestError is emitted when a request terminates in an error,
// whether before or after a stream has started.
type RequestError struct {
	RequestID string    `json:"request_id"`
	Error     string    `json:"error"`
	ErrorType string    `json:"error_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SSEEvent records one translated event of a streaming response, in
// sequence order, for replay/debugging.
type SSEEvent struct {
	RequestID string          `json:"request_id"`
	Sequence  int             `json:"sequence"`
	EventType string          `json:"event_type"`
	Data      string          `json:"data,omitempty"`
	Raw       string          `json:"raw,omitempty"`
	DeltaMs   int64           `json:"delta_ms,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Sink receives debug events as they occur. Implementations must not
// block the request path; a slow or failing sink must never affect
// dispatch.
type Sink interface {
	RequestStarted(RequestStarted)
	RequestCompleted(RequestCompleted)
	RequestError(RequestError)
	SSEEvent(SSEEvent)
}
