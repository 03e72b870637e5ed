package failover

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikketryhard/a2c/pkg/registry"
)

func TestPolicy_ShouldRetry_OnlyRetryableStatuses(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.ShouldRetry(429))
	assert.True(t, p.ShouldRetry(503))
	assert.False(t, p.ShouldRetry(400))
	assert.False(t, p.ShouldRetry(200))
}

func TestPolicy_ShouldFailover_Unhealthy(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.ShouldFailover(registry.Health{Status: registry.StatusUnhealthy}))
}

func TestPolicy_ShouldFailover_DegradedOnlyAboveThreshold(t *testing.T) {
	p := DefaultPolicy()
	assert.False(t, p.ShouldFailover(registry.Health{Status: registry.StatusDegraded, LatencyMs: 100}))
	assert.True(t, p.ShouldFailover(registry.Health{Status: registry.StatusDegraded, LatencyMs: 9000}))
}

func TestPolicy_RetryDelayMs_MonotonicAndCapped(t *testing.T) {
	p := DefaultPolicy()
	prev := 0
	for attempt := 1; attempt <= 10; attempt++ {
		d := p.RetryDelayMs(attempt)
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, p.MaxRetryDelayMs)
		prev = d
	}
}

func TestBuildChain_PrimaryThenFallbackThenRest(t *testing.T) {
	chain := BuildChain("b", "a", []string{"a", "b", "c"})
	assert.Equal(t, []string{"b", "a", "c"}, chain)
}

func TestBuildChain_SkipsUnavailablePrimary(t *testing.T) {
	chain := BuildChain("missing", "a", []string{"a", "c"})
	assert.Equal(t, []string{"a", "c"}, chain)
}

func TestBuildChain_NoDuplicateWhenFallbackEqualsPrimary(t *testing.T) {
	chain := BuildChain("a", "a", []string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, chain)
}
