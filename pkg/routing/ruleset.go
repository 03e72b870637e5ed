package routing

import "sort"

// Ruleset is an immutable, priority-sorted list of rules plus the
// provider used when nothing matches. Callers that need to swap in a
// reloaded configuration should build a new Ruleset and atomically
// replace their pointer to it rather than mutate one in place.
type Ruleset struct {
	rules           []Rule
	defaultProvider string
}

// NewRuleset sorts rules by descending priority (ties keep their input
// order) and pairs them with a default provider.
func NewRuleset(rules []Rule, defaultProvider string) *Ruleset {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &Ruleset{rules: sorted, defaultProvider: defaultProvider}
}

// Select returns the provider for the first matching rule, in priority
// order, and the rule itself (nil if the default provider was used).
func (rs *Ruleset) Select(in MatchInput) (provider string, matched *Rule) {
	for i := range rs.rules {
		if rs.rules[i].Matches(in) {
			return rs.rules[i].Provider, &rs.rules[i]
		}
	}
	return rs.defaultProvider, nil
}

// DefaultProvider returns the provider used when no rule matches.
func (rs *Ruleset) DefaultProvider() string {
	return rs.defaultProvider
}

// RuleExplanation is the admin-surfaced view of a single rule.
type RuleExplanation struct {
	Name             string `json:"name"`
	Provider         string `json:"provider"`
	Priority         int    `json:"priority"`
	AgentType        string `json:"agent_type,omitempty"`
	ModelPattern     string `json:"model_pattern,omitempty"`
	FallbackProvider string `json:"fallback_provider,omitempty"`
}

// Explain lists the ruleset's rules in evaluation order, for the admin
// routing-introspection endpoint.
func (rs *Ruleset) Explain() []RuleExplanation {
	out := make([]RuleExplanation, 0, len(rs.rules))
	for _, r := range rs.rules {
		e := RuleExplanation{
			Name: r.Name, Provider: r.Provider, Priority: r.Priority,
			AgentType: string(r.AgentType), FallbackProvider: r.FallbackProvider,
		}
		if r.ModelPattern != nil {
			e.ModelPattern = r.ModelPattern.String()
		}
		out = append(out, e)
	}
	return out
}

// Test evaluates in against the ruleset without side effects, for the
// admin routing-test endpoint.
func (rs *Ruleset) Test(in MatchInput) (provider, ruleName string) {
	p, rule := rs.Select(in)
	if rule == nil {
		return p, ""
	}
	return p, rule.Name
}
