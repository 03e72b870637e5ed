package convert

import (
	"encoding/json"
	"strings"

	"github.com/nikketryhard/a2c/pkg/provider/types"
)

// genRole maps a Messages-format role to the upstream's own role names.
func genRole(r types.Role) string {
	if r == types.RoleAssistant {
		return "model"
	}
	return "user"
}

// taggedPart is an intermediate representation used while building the
// Generative-Content contents list: one Part plus the role and, for
// tool_use/tool_result pairs, the call ID the final reorganization pass
// uses to interleave a function's call and response.
type taggedPart struct {
	role       string
	part       types.Part
	toolCallID string
}

// buildContents converts Messages-format turns into a flat, tagged part
// list (not yet grouped into Content objects or reorganized).
//
// Thinking and redacted-thinking blocks are dropped unless includeThinking
// is set and the block carries a signature to resume from; whitespace-only
// text is dropped; tool results are flattened to a plain string response.
func buildContents(msgs []types.Message, includeThinking bool) []taggedPart {
	var out []taggedPart

	for _, msg := range msgs {
		role := genRole(msg.Role)
		for _, block := range msg.Content {
			switch b := block.(type) {
			case types.TextBlock:
				if isNonWhitespace(b.Text) {
					out = append(out, taggedPart{role: role, part: types.Part{Text: b.Text}})
				}
			case types.ThinkingBlock:
				if includeThinking && b.Signature != "" {
					out = append(out, taggedPart{role: role, part: types.Part{
						Text: b.Thinking, Thought: true, ThoughtSignature: b.Signature,
					}})
				}
			case types.RedactedThinkingBlock:
				if includeThinking && b.Data != "" {
					out = append(out, taggedPart{role: role, part: types.Part{
						Thought: true, ThoughtSignature: b.Data,
					}})
				}
			case types.ImageBlock:
				if b.Data != "" {
					out = append(out, taggedPart{role: role, part: types.Part{
						InlineData: &types.Blob{MimeType: b.MediaType, Data: b.Data},
					}})
				}
			case types.ToolUseBlock:
				out = append(out, taggedPart{
					role:       role,
					toolCallID: b.ID,
					part: types.Part{FunctionCall: &types.FunctionCall{
						Name: b.Name, Args: b.Input,
					}},
				})
			case types.ToolResultBlock:
				out = append(out, taggedPart{
					role:       role,
					toolCallID: b.ToolUseID,
					part: types.Part{FunctionResponse: &types.FunctionResponse{
						Response: map[string]interface{}{
							"output": extractToolResultText(b),
						},
					}},
				})
			default:
				if raw, err := json.Marshal(block); err == nil {
					out = append(out, taggedPart{role: role, part: types.Part{Text: string(raw)}})
				}
			}
		}
	}

	return out
}

// extractToolResultText reduces a tool result's content, whether a
// plain string or a list of content blocks, to one text payload: the
// first part's text, or its stringification when it isn't text. It
// fills in a placeholder when the tool reported an error with no body.
func extractToolResultText(b types.ToolResultBlock) string {
	switch c := b.Content.(type) {
	case string:
		return c
	case []types.ContentBlock:
		if len(c) == 0 {
			return ""
		}
		if t, ok := c[0].(types.TextBlock); ok {
			return t.Text
		}
		if raw, err := json.Marshal(c[0]); err == nil {
			return string(raw)
		}
		return ""
	case nil:
		if b.IsError {
			return "error"
		}
		return ""
	default:
		if raw, err := json.Marshal(c); err == nil {
			return string(raw)
		}
		return ""
	}
}

func isNonWhitespace(s string) bool {
	return strings.TrimSpace(s) != ""
}

// assembleContents groups a reorganized tagged-part list into Content
// turns, coalescing consecutive parts that share a role the way the
// upstream expects a single turn's parts to be batched.
func assembleContents(items []taggedPart) []types.Content {
	var out []types.Content
	for _, item := range items {
		if n := len(out); n > 0 && out[n-1].Role == item.role {
			out[n-1].Parts = append(out[n-1].Parts, item.part)
			continue
		}
		out = append(out, types.Content{Role: item.role, Parts: []types.Part{item.part}})
	}
	return out
}
