package debugevents

import (
	"encoding/json"
	"os"
	"sync"
)

// NoopSink discards every event, for callers that want no debug
// capture. cmd/server does not use it: it always wires a StatsRecorder.
type NoopSink struct{}

func (NoopSink) RequestStarted(RequestStarted)     {}
func (NoopSink) RequestCompleted(RequestCompleted) {}
func (NoopSink) RequestError(RequestError)         {}
func (NoopSink) SSEEvent(SSEEvent)                 {}

// FileSink appends each event as one JSON line to a file, for local
// debugging without standing up an external store. Writes are
// serialized; a marshal or write failure is swallowed since a broken
// sink must never fail a request.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
}

// NewFileSink opens (creating if needed, appending otherwise) the file
// at path for JSON-lines event capture.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Close() error {
	return s.f.Close()
}

func (s *FileSink) write(kind string, payload interface{}) {
	line := struct {
		Kind string      `json:"kind"`
		Data interface{} `json:"data"`
	}{kind, payload}

	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.f.Write(data)
}

func (s *FileSink) RequestStarted(e RequestStarted)     { s.write("request_started", e) }
func (s *FileSink) RequestCompleted(e RequestCompleted) { s.write("request_completed", e) }
func (s *FileSink) RequestError(e RequestError)         { s.write("request_error", e) }
func (s *FileSink) SSEEvent(e SSEEvent)                 { s.write("sse_event", e) }
