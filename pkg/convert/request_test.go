package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikketryhard/a2c/pkg/provider/types"
)

func TestTranslate_SimpleTextTurn(t *testing.T) {
	req := &types.MessagesRequest{
		System:    []string{"be terse"},
		MaxTokens: 1024,
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "hi"}}},
		},
	}

	out, _ := Translate(req)

	require.NotNil(t, out.SystemInstruction)
	assert.Equal(t, "be terse", out.SystemInstruction.Parts[0].Text)
	require.Len(t, out.Contents, 1)
	assert.Equal(t, "user", out.Contents[0].Role)
	assert.Equal(t, "hi", out.Contents[0].Parts[0].Text)
	assert.Equal(t, 1024, out.GenerationConfig.MaxOutputTokens)
}

func TestTranslate_WhitespaceOnlyTextDropped(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 10,
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "   "}}},
		},
	}

	out, _ := Translate(req)

	assert.Empty(t, out.Contents)
}

func TestTranslate_ToolUseAndResultInterleaved(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 10,
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "weather?"}}},
			{Role: types.RoleAssistant, Content: []types.ContentBlock{
				types.ToolUseBlock{ID: "call_1", Name: "get_weather", Input: map[string]interface{}{"city": "nyc"}},
			}},
			{Role: types.RoleUser, Content: []types.ContentBlock{
				types.ToolResultBlock{ToolUseID: "call_1", Content: "sunny"},
			}},
		},
	}

	out, _ := Translate(req)

	require.Len(t, out.Contents, 3)
	assert.Equal(t, "model", out.Contents[1].Role)
	require.Len(t, out.Contents[1].Parts, 1)
	require.NotNil(t, out.Contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "user", out.Contents[2].Role)
	require.NotNil(t, out.Contents[2].Parts[0].FunctionResponse)
}

func TestTranslate_ToolResultMultiPartContentTakesFirstTextOnly(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 10,
		Messages: []types.Message{
			{Role: types.RoleAssistant, Content: []types.ContentBlock{
				types.ToolUseBlock{ID: "call_1", Name: "get_weather", Input: map[string]interface{}{"city": "nyc"}},
			}},
			{Role: types.RoleUser, Content: []types.ContentBlock{
				types.ToolResultBlock{ToolUseID: "call_1", Content: []types.ContentBlock{
					types.TextBlock{Text: "A"},
					types.TextBlock{Text: "B"},
				}},
			}},
		},
	}

	out, _ := Translate(req)

	require.Len(t, out.Contents, 2)
	resp := out.Contents[1].Parts[0].FunctionResponse
	require.NotNil(t, resp)
	assert.Equal(t, "A", resp.Response["output"])
}

func TestTranslate_OrphanToolResultDropped(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 10,
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{
				types.ToolResultBlock{ToolUseID: "no_such_call", Content: "sunny"},
			}},
		},
	}

	out, _ := Translate(req)

	assert.Empty(t, out.Contents)
}

func TestTranslate_ThinkingDisabledWithoutPriorThinkingTurn(t *testing.T) {
	budget := 2000
	req := &types.MessagesRequest{
		MaxTokens: 4000,
		Thinking:  &types.Thinking{Mode: "enabled", BudgetTokens: budget, HasBudget: true},
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "hi"}}},
			{Role: types.RoleAssistant, Content: []types.ContentBlock{types.TextBlock{Text: "hello"}}},
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "again"}}},
		},
	}

	out, _ := Translate(req)

	assert.Nil(t, out.GenerationConfig.ThinkingConfig)
}

func TestTranslate_ThinkingBudgetTrimmedBelowMaxTokens(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 1000,
		Thinking:  &types.Thinking{Mode: "enabled", BudgetTokens: 1000, HasBudget: true},
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "hi"}}},
		},
	}

	out, _ := Translate(req)

	require.NotNil(t, out.GenerationConfig.ThinkingConfig)
	assert.Equal(t, 999, out.GenerationConfig.ThinkingConfig.ThinkingBudget)
}

// The budget is only reduced to max_tokens-1 when max_tokens is at
// least 2, so a budget already over a max_tokens of 1 is left alone
// (and remains > 0, so thinking stays active with its original
// oversized budget).
func TestTranslate_ThinkingBudgetNotTrimmedBelowTwoMaxTokens(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 1,
		Thinking:  &types.Thinking{Mode: "enabled", BudgetTokens: 500, HasBudget: true},
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "hi"}}},
		},
	}

	out, _ := Translate(req)

	require.NotNil(t, out.GenerationConfig.ThinkingConfig)
	assert.Equal(t, 500, out.GenerationConfig.ThinkingConfig.ThinkingBudget)
}

// TestTranslate_ThinkingDefaultBudgetWhenOmitted mirrors a client
// enabling thinking without naming a budget_tokens (e.g. plain
// `thinking: true` or `{"type":"enabled"}`); the gateway must fall back
// to a usable default budget rather than advertising zero upstream.
func TestTranslate_ThinkingDefaultBudgetWhenOmitted(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 4000,
		Thinking:  &types.Thinking{Mode: "enabled"},
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "hi"}}},
		},
	}

	out, include := Translate(req)

	assert.True(t, include)
	require.NotNil(t, out.GenerationConfig.ThinkingConfig)
	assert.Equal(t, defaultThinkingBudget, out.GenerationConfig.ThinkingConfig.ThinkingBudget)
}

// TestTranslate_ThinkingDefaultBudgetClampedBelowMaxTokens checks the
// default budget still goes through the max_tokens clamp like any
// explicit budget would.
func TestTranslate_ThinkingDefaultBudgetClampedBelowMaxTokens(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens: 100,
		Thinking:  &types.Thinking{Mode: "enabled"},
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "hi"}}},
		},
	}

	out, _ := Translate(req)

	require.NotNil(t, out.GenerationConfig.ThinkingConfig)
	assert.Equal(t, 99, out.GenerationConfig.ThinkingConfig.ThinkingBudget)
}

func TestTranslate_StopSequencesCappedAtFive(t *testing.T) {
	req := &types.MessagesRequest{
		MaxTokens:     10,
		StopSequences: []string{"a", "b", "c", "d", "e", "f"},
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentBlock{types.TextBlock{Text: "hi"}}},
		},
	}

	out, _ := Translate(req)

	assert.Len(t, out.GenerationConfig.StopSequences, 5)
}
