// Package routing selects which provider handles a request by matching
// a priority-ordered list of declarative rules.
package routing

import (
	"regexp"
	"strings"
)

// AgentType classifies the kind of caller that issued a request, set by
// an inbound header the dispatcher reads before routing.
type AgentType string

const (
	AgentDefault      AgentType = "default"
	AgentBackground   AgentType = "background"
	AgentThink        AgentType = "think"
	AgentLongContext  AgentType = "long_context"
	AgentWebSearch    AgentType = "websearch"
	AgentCode         AgentType = "code"
)

// MatchInput is the set of facts a rule's clauses are matched against.
type MatchInput struct {
	AgentType        AgentType
	Model            string
	ThinkingEnabled  bool
	ContextTokens    int
}

// Rule is one routing decision: a provider to send matching requests
// to, plus the clauses that must all hold (boolean AND) for it to
// apply. An unset clause (zero value) is not checked.
type Rule struct {
	Name             string
	Provider         string
	Priority         int
	AgentType        AgentType
	ModelPattern     *regexp.Regexp
	ThinkingEnabled  *bool
	MinContextTokens *int
	MaxContextTokens *int
	FallbackProvider string
}

// Matches reports whether every populated clause on r holds for in.
func (r *Rule) Matches(in MatchInput) bool {
	if r.AgentType != "" && r.AgentType != in.AgentType {
		return false
	}
	if r.ModelPattern != nil && !r.ModelPattern.MatchString(strings.ToLower(in.Model)) {
		return false
	}
	if r.ThinkingEnabled != nil && *r.ThinkingEnabled != in.ThinkingEnabled {
		return false
	}
	if r.MinContextTokens != nil && in.ContextTokens < *r.MinContextTokens {
		return false
	}
	if r.MaxContextTokens != nil && in.ContextTokens > *r.MaxContextTokens {
		return false
	}
	return true
}
