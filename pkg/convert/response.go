package convert

import (
	"strings"

	"github.com/google/uuid"

	"github.com/nikketryhard/a2c/pkg/provider/types"
)

// ResponseOptions carries the values the dispatcher already knows before
// a non-streaming response is built: the synthesized message id, the
// model name to report, and the pre-flight token estimate to fall back
// on if the upstream never reports usage.
type ResponseOptions struct {
	MessageID          string
	Model              string
	InitialInputTokens int
}

// BuildResponse turns a single (non-streaming) Generative-Content
// response into a Messages-format response, resolving Open Question (c)
// of the translation contract in favor of consistency: callers of this
// gateway always see Messages-shaped JSON, streaming or not, rather than
// the foreign body verbatim.
func BuildResponse(chunk types.StreamChunk, opt ResponseOptions) types.MessagesResponse {
	resp := types.MessagesResponse{
		ID:    opt.MessageID,
		Type:  "message",
		Role:  types.RoleAssistant,
		Model: opt.Model,
	}

	usage := types.Usage{InputTokens: opt.InitialInputTokens}
	if u := chunk.EffectiveUsage(); u != nil {
		if u.PromptTokenCount > 0 {
			usage.InputTokens = u.PromptTokenCount
		}
		if u.CandidatesTokenCount > 0 {
			usage.OutputTokens = u.CandidatesTokenCount
		}
	}
	resp.Usage = usage

	candidates := chunk.EffectiveCandidates()
	if len(candidates) == 0 {
		resp.StopReason = types.StopReasonEndTurn
		return resp
	}

	candidate := candidates[0]
	hasToolUse := false
	var thinkingSignature string

	for _, part := range candidate.Content.Parts {
		switch {
		case part.Thought:
			if part.ThoughtSignature != "" {
				thinkingSignature = part.ThoughtSignature
			}
			if part.Text != "" {
				resp.Content = append(resp.Content, types.ThinkingBlock{
					Thinking: part.Text, Signature: thinkingSignature,
				})
			}
		case part.InlineData != nil:
			resp.Content = append(resp.Content, types.ImageBlock{
				MediaType: part.InlineData.MimeType, Data: part.InlineData.Data,
			})
		case part.FunctionCall != nil:
			hasToolUse = true
			resp.Content = append(resp.Content, types.ToolUseBlock{
				ID:    "toolu_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
				Name:  part.FunctionCall.Name,
				Input: removeNulls(part.FunctionCall.Args),
			})
		case part.Text != "" && strings.TrimSpace(part.Text) != "":
			resp.Content = append(resp.Content, types.TextBlock{Text: part.Text})
		}
	}

	switch {
	case hasToolUse:
		resp.StopReason = types.StopReasonToolUse
	case candidate.FinishReason == "MAX_TOKENS":
		resp.StopReason = types.StopReasonMaxTokens
	default:
		resp.StopReason = types.StopReasonEndTurn
	}

	return resp
}

// removeNulls recursively strips nil-valued keys from a tool call's
// arguments before they're surfaced to the client, mirroring the
// streaming translator's null-stripping rule for emitted (not
// historical) tool calls.
func removeNulls(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[k] = removeNullsValue(v)
	}
	return out
}

func removeNullsValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		return removeNulls(tv)
	case []interface{}:
		out := make([]interface{}, 0, len(tv))
		for _, el := range tv {
			out = append(out, removeNullsValue(el))
		}
		return out
	default:
		return v
	}
}
