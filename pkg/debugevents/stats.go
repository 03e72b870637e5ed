package debugevents

import (
	"math"
	"sync"
	"time"
)

// maxStatsRetention bounds how far back Stats can look; records older
// than this are pruned on every write and read.
const maxStatsRetention = 168 * time.Hour

// Stats is the aggregate served by GET /admin/stats.
type Stats struct {
	PeriodHours int            `json:"period_hours"`
	Requests    StatsRequests  `json:"requests"`
	Latency     StatsLatency   `json:"latency"`
	Tokens      StatsTokens    `json:"tokens"`
	ByProvider  map[string]int `json:"by_provider"`
}

type StatsRequests struct {
	Total     int     `json:"total"`
	Success   int     `json:"success"`
	Errors    int     `json:"errors"`
	ErrorRate float64 `json:"error_rate"`
}

type StatsLatency struct {
	AvgMs *float64 `json:"avg_ms"`
}

type StatsTokens struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

type statsRecord struct {
	provider     string
	latencyMs    int64
	inputTokens  int
	outputTokens int
	failed       bool
	hasLatency   bool
	finishedAt   time.Time
}

// StatsRecorder is a Sink that keeps a bounded in-memory window of
// request outcomes so the admin surface can aggregate them on demand.
// It correlates RequestStarted with the matching completion or error by
// request ID; per-event SSE capture is ignored.
type StatsRecorder struct {
	mu       sync.Mutex
	inflight map[string]string // request ID -> last provider attempted
	finished []statsRecord

	// now is overridable in tests.
	now func() time.Time
}

// NewStatsRecorder returns an empty recorder ready to be wired as a
// debug-event sink.
func NewStatsRecorder() *StatsRecorder {
	return &StatsRecorder{inflight: make(map[string]string), now: time.Now}
}

func (s *StatsRecorder) RequestStarted(e RequestStarted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A failover re-emits RequestStarted for each provider attempted;
	// the last one is the one that produced the final outcome.
	s.inflight[e.RequestID] = e.Provider
}

func (s *StatsRecorder) RequestCompleted(e RequestCompleted) {
	s.finish(e.RequestID, statsRecord{
		latencyMs:    e.LatencyMs,
		inputTokens:  e.InputTokens,
		outputTokens: e.OutputTokens,
		hasLatency:   true,
		finishedAt:   eventTime(e.Timestamp, s.now),
	})
}

func (s *StatsRecorder) RequestError(e RequestError) {
	s.finish(e.RequestID, statsRecord{
		failed:     true,
		finishedAt: eventTime(e.Timestamp, s.now),
	})
}

func (s *StatsRecorder) SSEEvent(SSEEvent) {}

func eventTime(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t
}

func (s *StatsRecorder) finish(requestID string, rec statsRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.provider = s.inflight[requestID]
	delete(s.inflight, requestID)
	s.finished = append(s.finished, rec)
	s.pruneLocked()
}

func (s *StatsRecorder) pruneLocked() {
	cutoff := s.now().Add(-maxStatsRetention)
	i := 0
	for i < len(s.finished) && s.finished[i].finishedAt.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.finished = append(s.finished[:0], s.finished[i:]...)
	}
}

// Snapshot aggregates the outcomes recorded within the last hours
// hours. hours is clamped to [1, 168].
func (s *StatsRecorder) Snapshot(hours int) Stats {
	if hours < 1 {
		hours = 1
	}
	if hours > 168 {
		hours = 168
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	since := s.now().Add(-time.Duration(hours) * time.Hour)
	out := Stats{PeriodHours: hours, ByProvider: make(map[string]int)}

	var latencySum int64
	var latencyCount int
	for _, rec := range s.finished {
		if rec.finishedAt.Before(since) {
			continue
		}
		out.Requests.Total++
		if rec.failed {
			out.Requests.Errors++
		} else {
			out.Requests.Success++
		}
		if rec.hasLatency {
			latencySum += rec.latencyMs
			latencyCount++
		}
		out.Tokens.Input += rec.inputTokens
		out.Tokens.Output += rec.outputTokens
		if rec.provider != "" {
			out.ByProvider[rec.provider]++
		}
	}

	if out.Requests.Total > 0 {
		out.Requests.ErrorRate = float64(out.Requests.Errors) / float64(out.Requests.Total)
	}
	if latencyCount > 0 {
		avg := math.Round(float64(latencySum)/float64(latencyCount)*100) / 100
		out.Latency.AvgMs = &avg
	}
	return out
}

// MultiSink fans each event out to every wrapped sink in order.
type MultiSink []Sink

func (m MultiSink) RequestStarted(e RequestStarted) {
	for _, s := range m {
		s.RequestStarted(e)
	}
}

func (m MultiSink) RequestCompleted(e RequestCompleted) {
	for _, s := range m {
		s.RequestCompleted(e)
	}
}

func (m MultiSink) RequestError(e RequestError) {
	for _, s := range m {
		s.RequestError(e)
	}
}

func (m MultiSink) SSEEvent(e SSEEvent) {
	for _, s := range m {
		s.SSEEvent(e)
	}
}
