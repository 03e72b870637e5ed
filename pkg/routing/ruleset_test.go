package routing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleset_HighestPriorityWins(t *testing.T) {
	low := Rule{Name: "low", Provider: "p-low", Priority: 1}
	high := Rule{Name: "high", Provider: "p-high", Priority: 100}

	rs := NewRuleset([]Rule{low, high}, "default")

	provider, rule := rs.Select(MatchInput{})
	require.NotNil(t, rule)
	assert.Equal(t, "p-high", provider)
	assert.Equal(t, "high", rule.Name)
}

func TestRuleset_FallsBackToDefaultWhenNothingMatches(t *testing.T) {
	agentType := AgentBackground
	rule := Rule{Name: "bg-only", Provider: "p-bg", Priority: 10, AgentType: agentType}

	rs := NewRuleset([]Rule{rule}, "default-provider")

	provider, matched := rs.Select(MatchInput{AgentType: AgentDefault})
	assert.Nil(t, matched)
	assert.Equal(t, "default-provider", provider)
}

func TestRule_Matches_IsBooleanAndOverPopulatedClauses(t *testing.T) {
	min := 1000
	thinking := true
	rule := Rule{MinContextTokens: &min, ThinkingEnabled: &thinking}

	assert.True(t, rule.Matches(MatchInput{ContextTokens: 2000, ThinkingEnabled: true}))
	assert.False(t, rule.Matches(MatchInput{ContextTokens: 2000, ThinkingEnabled: false}))
	assert.False(t, rule.Matches(MatchInput{ContextTokens: 500, ThinkingEnabled: true}))
}

func TestConfig_ToRuleset_RejectsDuplicateNames(t *testing.T) {
	cfg := &Config{
		DefaultProvider: "d",
		Rules: []RuleConfig{
			{Name: "same", Provider: "p1", Priority: 1},
			{Name: "same", Provider: "p2", Priority: 2},
		},
	}

	_, err := cfg.ToRuleset()
	assert.Error(t, err)
}

func TestBuildDefaultConfig_SixRulesDescendingPriority(t *testing.T) {
	cfg := BuildDefaultConfig(DefaultSettings{
		DefaultProvider: "antigravity", BackgroundProvider: "antigravity",
		ThinkProvider: "antigravity", LongContextProvider: "antigravity",
		WebSearchProvider: "antigravity", LongContextThreshold: 128000,
	})
	rs, err := cfg.ToRuleset()
	require.NoError(t, err)

	explained := rs.Explain()
	require.Len(t, explained, 6)
	for i := 1; i < len(explained); i++ {
		assert.GreaterOrEqual(t, explained[i-1].Priority, explained[i].Priority)
	}
}

func TestLoadFile_ParsesNestedMatchBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_provider: antigravity
rules:
  - name: sonnet-thinking
    provider: antigravity
    priority: 10
    fallback_provider: anthropic
    match:
      model_pattern: ".*sonnet.*"
      thinking: true
      min_context_tokens: 1000
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)

	rs, err := cfg.ToRuleset()
	require.NoError(t, err)

	provider, rule := rs.Select(MatchInput{Model: "claude-SONNET-4-5", ThinkingEnabled: true, ContextTokens: 2000})
	require.NotNil(t, rule)
	assert.Equal(t, "antigravity", provider)
	assert.Equal(t, "anthropic", rule.FallbackProvider)

	provider, rule = rs.Select(MatchInput{Model: "claude-sonnet-4-5", ThinkingEnabled: false, ContextTokens: 2000})
	assert.Nil(t, rule)
	assert.Equal(t, "antigravity", provider)
}

func TestLoadFile_RejectsUnknownMatchKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_provider: antigravity
rules:
  - name: bad
    provider: antigravity
    priority: 10
    match:
      model_regex: ".*sonnet.*"
`), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model_regex")
}

func TestLoadFile_MissingPathReturnsDefault(t *testing.T) {
	cfg, err := LoadFile("/nonexistent/routing.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.Rules, 6)
}
