package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapModel_StripsDatedSuffix(t *testing.T) {
	assert.Equal(t, MapModel("claude-sonnet-4-5"), MapModel("claude-sonnet-4-5-20250501"))
}

func TestMapModel_UnsupportedFallsBackToDefault(t *testing.T) {
	assert.Equal(t, MapModel(DefaultModel), MapModel("gpt-4o"))
}

func TestMapModel_Known(t *testing.T) {
	assert.Equal(t, "gemini-claude-opus-4-5", MapModel("claude-opus-4-5"))
}

func TestMapModel_CanonicalHaikuMapsToUpstreamName(t *testing.T) {
	first := MapModel("claude-haiku-4-5")
	assert.Equal(t, first, "gemini-claude-haiku-4-5")
}

func TestMapModel_IsIdempotentOnItsOwnOutput(t *testing.T) {
	for _, in := range []string{"claude-opus-4-5", "claude-sonnet-4-5", "claude-haiku-4-5", "claude-opus-4", "gpt-4o", ""} {
		mapped := MapModel(in)
		assert.Equal(t, mapped, MapModel(mapped), "input %q", in)
	}
}

// Legacy aliases resolve to a specific upstream target, not silently to
// DefaultModel's mapping like a genuinely unknown model string would.
func TestMapModel_LegacyAliasResolvesToItsOwnTarget(t *testing.T) {
	assert.Equal(t, "gemini-3-pro-high", MapModel("claude-opus-4"))
	assert.NotEqual(t, MapModel(DefaultModel), MapModel("claude-opus-4"))
}

func TestMapModel_LegacyDottedAliasMapsToCanonicalSonnet(t *testing.T) {
	assert.Equal(t, MapModel("claude-sonnet-4-5"), MapModel("claude-sonnet-4.5"))
}

func TestMapModel_LegacyDatedClaude3AliasesMapToSonnet(t *testing.T) {
	assert.Equal(t, MapModel("claude-sonnet-4-5"), MapModel("claude-3-5-sonnet-20241022"))
	assert.Equal(t, MapModel("claude-sonnet-4-5"), MapModel("claude-3-5-sonnet-20240620"))
}
