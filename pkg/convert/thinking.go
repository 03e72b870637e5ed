package convert

import "github.com/nikketryhard/a2c/pkg/provider/types"

// maxThinkingBudgetHeadroom is the minimum number of tokens a thinking
// budget must leave for the final answer; a budget that would consume
// the whole max_tokens is trimmed to leave at least one token free.
const maxThinkingBudgetHeadroom = 1

// defaultThinkingBudget is the budget applied when a client enables
// thinking (`thinking: true` or `{"type":"enabled"}`) without naming a
// `budget_tokens`.
const defaultThinkingBudget = 1024

// resolveThinking decides whether extended thinking is active for this
// request and what budget to advertise upstream.
//
// Thinking can only resume correctly if the immediately preceding
// assistant turn itself started with a thinking (or redacted_thinking)
// block, or there is no preceding assistant turn at all; otherwise the
// upstream has nothing to extend and thinking is force-disabled.
func resolveThinking(req *types.MessagesRequest) (include bool, budget int) {
	if !req.Thinking.Enabled() {
		return false, 0
	}
	if !lastAssistantTurnStartsWithThinking(req.Messages) {
		return false, 0
	}

	budget = req.Thinking.BudgetTokens
	if !req.Thinking.HasBudget {
		budget = defaultThinkingBudget
	}
	if budget >= req.MaxTokens && req.MaxTokens >= 2 {
		budget = req.MaxTokens - maxThinkingBudgetHeadroom
	}
	if budget <= 0 {
		return false, 0
	}
	return true, budget
}

func lastAssistantTurnStartsWithThinking(msgs []types.Message) bool {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != types.RoleAssistant {
			continue
		}
		if len(msgs[i].Content) == 0 {
			return false
		}
		switch msgs[i].Content[0].BlockType() {
		case "thinking", "redacted_thinking":
			return true
		default:
			return false
		}
	}
	return true
}
