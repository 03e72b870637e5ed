package debugevents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStatsRecorder_AggregatesCompletionsAndErrors(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewStatsRecorder()
	rec.now = fixedClock(now)

	rec.RequestStarted(RequestStarted{RequestID: "req_1", Provider: "anthropic"})
	rec.RequestCompleted(RequestCompleted{RequestID: "req_1", Status: 200, LatencyMs: 100, InputTokens: 10, OutputTokens: 20, Timestamp: now})

	rec.RequestStarted(RequestStarted{RequestID: "req_2", Provider: "antigravity"})
	rec.RequestCompleted(RequestCompleted{RequestID: "req_2", Status: 200, LatencyMs: 300, InputTokens: 5, Timestamp: now})

	rec.RequestStarted(RequestStarted{RequestID: "req_3", Provider: "anthropic"})
	rec.RequestError(RequestError{RequestID: "req_3", Error: "boom", ErrorType: "provider_error", Timestamp: now})

	stats := rec.Snapshot(24)

	assert.Equal(t, 24, stats.PeriodHours)
	assert.Equal(t, 3, stats.Requests.Total)
	assert.Equal(t, 2, stats.Requests.Success)
	assert.Equal(t, 1, stats.Requests.Errors)
	assert.InDelta(t, 1.0/3.0, stats.Requests.ErrorRate, 1e-9)
	require.NotNil(t, stats.Latency.AvgMs)
	assert.Equal(t, 200.0, *stats.Latency.AvgMs)
	assert.Equal(t, 15, stats.Tokens.Input)
	assert.Equal(t, 20, stats.Tokens.Output)
	assert.Equal(t, map[string]int{"anthropic": 2, "antigravity": 1}, stats.ByProvider)
}

func TestStatsRecorder_FailoverCountsLastProviderAttempted(t *testing.T) {
	rec := NewStatsRecorder()

	// Failover re-emits RequestStarted per provider; the final outcome
	// belongs to the last provider attempted.
	rec.RequestStarted(RequestStarted{RequestID: "req_1", Provider: "antigravity"})
	rec.RequestStarted(RequestStarted{RequestID: "req_1", Provider: "anthropic"})
	rec.RequestCompleted(RequestCompleted{RequestID: "req_1", Status: 200})

	stats := rec.Snapshot(1)
	assert.Equal(t, map[string]int{"anthropic": 1}, stats.ByProvider)
}

func TestStatsRecorder_WindowExcludesOlderRecords(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewStatsRecorder()
	rec.now = fixedClock(now)

	rec.RequestStarted(RequestStarted{RequestID: "req_old", Provider: "anthropic"})
	rec.RequestCompleted(RequestCompleted{RequestID: "req_old", Status: 200, Timestamp: now.Add(-3 * time.Hour)})

	rec.RequestStarted(RequestStarted{RequestID: "req_new", Provider: "anthropic"})
	rec.RequestCompleted(RequestCompleted{RequestID: "req_new", Status: 200, Timestamp: now.Add(-10 * time.Minute)})

	assert.Equal(t, 1, rec.Snapshot(1).Requests.Total)
	assert.Equal(t, 2, rec.Snapshot(4).Requests.Total)
}

func TestStatsRecorder_PrunesPastMaxRetention(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewStatsRecorder()
	rec.now = fixedClock(now)

	rec.RequestCompleted(RequestCompleted{RequestID: "req_ancient", Status: 200, Timestamp: now.Add(-200 * time.Hour)})
	rec.RequestCompleted(RequestCompleted{RequestID: "req_recent", Status: 200, Timestamp: now.Add(-time.Hour)})

	stats := rec.Snapshot(168)
	assert.Equal(t, 1, stats.Requests.Total)
}

func TestStatsRecorder_ClampsHours(t *testing.T) {
	rec := NewStatsRecorder()
	assert.Equal(t, 1, rec.Snapshot(0).PeriodHours)
	assert.Equal(t, 168, rec.Snapshot(9999).PeriodHours)
}

func TestStatsRecorder_EmptyWindow(t *testing.T) {
	rec := NewStatsRecorder()
	stats := rec.Snapshot(24)
	assert.Equal(t, 0, stats.Requests.Total)
	assert.Zero(t, stats.Requests.ErrorRate)
	assert.Nil(t, stats.Latency.AvgMs)
	assert.Empty(t, stats.ByProvider)
}

func TestMultiSink_FansOutToEverySink(t *testing.T) {
	rec1 := NewStatsRecorder()
	rec2 := NewStatsRecorder()
	var sink Sink = MultiSink{rec1, rec2}

	sink.RequestStarted(RequestStarted{RequestID: "req_1", Provider: "anthropic"})
	sink.RequestCompleted(RequestCompleted{RequestID: "req_1", Status: 200})
	sink.SSEEvent(SSEEvent{RequestID: "req_1", Sequence: 1, EventType: "message_start"})

	assert.Equal(t, 1, rec1.Snapshot(1).Requests.Total)
	assert.Equal(t, 1, rec2.Snapshot(1).Requests.Total)
}
