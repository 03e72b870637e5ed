// Package failover decides when to retry or fail over a request and in
// which provider order.
package failover

import (
	"math"

	"github.com/nikketryhard/a2c/pkg/registry"
)

// retryableStatus are upstream HTTP statuses worth retrying against the
// same provider before failing over to another one.
var retryableStatus = map[int]bool{
	408: true, 429: true, 500: true, 502: true, 503: true, 504: true,
}

// Policy holds the tunables governing retry/failover behavior.
type Policy struct {
	MaxRetries        int
	BaseRetryDelayMs  int
	MaxRetryDelayMs   int
	LatencyThresholdMs int64
}

// DefaultPolicy returns the gateway's standard retry tunables.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, BaseRetryDelayMs: 100, MaxRetryDelayMs: 5000, LatencyThresholdMs: 5000}
}

// ShouldRetry reports whether a response status is worth retrying
// against the same provider.
func (p Policy) ShouldRetry(statusCode int) bool {
	return retryableStatus[statusCode]
}

// ShouldFailover reports whether a provider's current health justifies
// routing this request to a different provider instead of retrying it
// in place: an unhealthy provider always fails over; a degraded one
// fails over only once its measured latency crosses the threshold.
func (p Policy) ShouldFailover(h registry.Health) bool {
	if h.Status == registry.StatusUnhealthy {
		return true
	}
	if h.Status == registry.StatusDegraded && h.LatencyMs > p.LatencyThresholdMs {
		return true
	}
	return false
}

// RetryDelayMs returns the exponential backoff delay for the given
// 1-indexed attempt, capped at MaxRetryDelayMs. It is monotonically
// non-decreasing in attempt.
func (p Policy) RetryDelayMs(attempt int) int {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.BaseRetryDelayMs) * math.Pow(2, float64(attempt-1))
	if delay > float64(p.MaxRetryDelayMs) {
		return p.MaxRetryDelayMs
	}
	return int(delay)
}

// BuildChain orders the providers a request should be tried against:
// primary first (if available), then fallback (if available and
// distinct from primary), then every other available provider in the
// order given, skipping anything already placed.
func BuildChain(primary, fallback string, available []string) []string {
	avail := make(map[string]bool, len(available))
	for _, a := range available {
		avail[a] = true
	}

	var chain []string
	placed := make(map[string]bool)

	if primary != "" && avail[primary] {
		chain = append(chain, primary)
		placed[primary] = true
	}
	if fallback != "" && avail[fallback] && !placed[fallback] {
		chain = append(chain, fallback)
		placed[fallback] = true
	}
	for _, a := range available {
		if !placed[a] {
			chain = append(chain, a)
			placed[a] = true
		}
	}
	return chain
}
