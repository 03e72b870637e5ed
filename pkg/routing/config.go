package routing

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// MatchConfig is the match clause block of one routing rule as it
// appears in the YAML file. Unmarshalling rejects any key outside the
// known clause set, so a typo in a rule fails the config load instead of
// silently never matching.
type MatchConfig struct {
	AgentType        string `yaml:"agent_type,omitempty"`
	ModelPattern     string `yaml:"model_pattern,omitempty"`
	Thinking         *bool  `yaml:"thinking,omitempty"`
	MinContextTokens *int   `yaml:"min_context_tokens,omitempty"`
	MaxContextTokens *int   `yaml:"max_context_tokens,omitempty"`
}

var knownMatchKeys = map[string]bool{
	"agent_type":         true,
	"model_pattern":      true,
	"thinking":           true,
	"min_context_tokens": true,
	"max_context_tokens": true,
}

func (m *MatchConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return &ValidationError{Reason: "match must be a mapping"}
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if key := value.Content[i].Value; !knownMatchKeys[key] {
			return &ValidationError{Reason: fmt.Sprintf("unknown match key %q", key)}
		}
	}
	type plain MatchConfig
	return value.Decode((*plain)(m))
}

// RuleConfig is a rule as it appears in the routing YAML file.
type RuleConfig struct {
	Name             string      `yaml:"name"`
	Provider         string      `yaml:"provider"`
	Priority         int         `yaml:"priority"`
	FallbackProvider string      `yaml:"fallback_provider,omitempty"`
	Match            MatchConfig `yaml:"match,omitempty"`
}

// Config is the routing section of the gateway's YAML configuration.
type Config struct {
	DefaultProvider      string       `yaml:"default_provider"`
	LongContextThreshold int          `yaml:"long_context_threshold"`
	Rules                []RuleConfig `yaml:"rules"`
}

// ValidationError reports a malformed routing configuration.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid routing config: " + e.Reason }

// Validate checks rule names are unique, non-empty, and carry a provider.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Rules))
	for _, r := range c.Rules {
		if r.Name == "" {
			return &ValidationError{Reason: "rule missing name"}
		}
		if r.Provider == "" {
			return &ValidationError{Reason: fmt.Sprintf("rule %q missing provider", r.Name)}
		}
		if seen[r.Name] {
			return &ValidationError{Reason: fmt.Sprintf("duplicate rule name %q", r.Name)}
		}
		seen[r.Name] = true
	}
	return nil
}

// ToRuleset compiles the configuration into an evaluatable Ruleset,
// compiling each rule's model_pattern into a case-insensitive regexp.
func (c *Config) ToRuleset() (*Ruleset, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rules := make([]Rule, 0, len(c.Rules))
	for _, rc := range c.Rules {
		rule := Rule{
			Name: rc.Name, Provider: rc.Provider, Priority: rc.Priority,
			AgentType: AgentType(rc.Match.AgentType), ThinkingEnabled: rc.Match.Thinking,
			MinContextTokens: rc.Match.MinContextTokens, MaxContextTokens: rc.Match.MaxContextTokens,
			FallbackProvider: rc.FallbackProvider,
		}
		if rc.Match.ModelPattern != "" {
			re, err := regexp.Compile("(?i)" + rc.Match.ModelPattern)
			if err != nil {
				return nil, &ValidationError{Reason: fmt.Sprintf("rule %q: bad model_pattern: %v", rc.Name, err)}
			}
			rule.ModelPattern = re
		}
		rules = append(rules, rule)
	}
	return NewRuleset(rules, c.DefaultProvider), nil
}

// LoadFile reads a routing YAML file. A missing or empty file yields
// the built-in default configuration rather than an error.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return DefaultConfig(), nil
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse routing config: %w", err)
	}
	return &cfg, nil
}

// DefaultSettings names the providers the built-in ruleset wires rules
// to; callers populate it from their provider configuration before
// calling DefaultConfig.
type DefaultSettings struct {
	DefaultProvider      string
	BackgroundProvider   string
	ThinkProvider        string
	LongContextProvider  string
	WebSearchProvider    string
	LongContextThreshold int
}

// DefaultConfig builds the six built-in rules used when no routing YAML
// is supplied: thinking requests, long context, web search, background
// agents, think agents, and opus-family models, in descending priority.
// Callers needing custom providers should use BuildDefaultConfig
// instead.
func DefaultConfig() *Config {
	return BuildDefaultConfig(DefaultSettings{
		DefaultProvider:      "antigravity",
		BackgroundProvider:   "antigravity",
		ThinkProvider:        "antigravity",
		LongContextProvider:  "antigravity",
		WebSearchProvider:    "antigravity",
		LongContextThreshold: 128000,
	})
}

// BuildDefaultConfig builds the default rule set parameterized by s.
func BuildDefaultConfig(s DefaultSettings) *Config {
	truth := true
	return &Config{
		DefaultProvider:      s.DefaultProvider,
		LongContextThreshold: s.LongContextThreshold,
		Rules: []RuleConfig{
			{Name: "thinking-requests", Provider: s.DefaultProvider, Priority: 100, Match: MatchConfig{Thinking: &truth}},
			{Name: "long-context", Provider: s.LongContextProvider, Priority: 90, Match: MatchConfig{MinContextTokens: &s.LongContextThreshold}},
			{Name: "websearch", Provider: s.WebSearchProvider, Priority: 80, Match: MatchConfig{AgentType: string(AgentWebSearch)}},
			{Name: "background", Provider: s.BackgroundProvider, Priority: 70, Match: MatchConfig{AgentType: string(AgentBackground)}},
			{Name: "think-agent", Provider: s.ThinkProvider, Priority: 60, Match: MatchConfig{AgentType: string(AgentThink)}},
			{Name: "opus-models", Provider: s.DefaultProvider, Priority: 50, Match: MatchConfig{ModelPattern: ".*opus.*"}},
		},
	}
}
