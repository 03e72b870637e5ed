package convert

import "github.com/nikketryhard/a2c/pkg/provider/types"

// Translate converts a Messages-format request into the equivalent
// Generative-Content request. The thinking-activation decision
// (resolveThinking) is made first so it governs both the generation
// config and which content blocks buildContents is allowed to keep.
func Translate(req *types.MessagesRequest) (*types.GenerateContentRequest, bool) {
	includeThinking, budget := resolveThinking(req)
	genConfig := buildGenerationConfig(req, includeThinking, budget)

	items := buildContents(req.Messages, includeThinking)
	items = reorganizeToolMessages(items)
	contents := assembleContents(items)

	out := &types.GenerateContentRequest{
		Contents:         contents,
		Tools:            buildTools(req.Tools),
		GenerationConfig: genConfig,
	}
	if sys := buildSystemInstruction(req.System); sys != nil {
		out.SystemInstruction = sys
	}
	return out, includeThinking
}

// ThinkingDecision exposes the same thinking-activation decision
// Translate makes, for callers (the routing engine) that need to know
// whether thinking is active for this call before or independent of a
// full translation.
func ThinkingDecision(req *types.MessagesRequest) bool {
	include, _ := resolveThinking(req)
	return include
}

// buildSystemInstruction flattens the request's ordered system text parts
// into one roleless Content, dropping any whitespace-only part; if
// nothing survives, it returns nil so the caller omits systemInstruction
// entirely.
func buildSystemInstruction(system []string) *types.Content {
	parts := make([]types.Part, 0, len(system))
	for _, s := range system {
		if isNonWhitespace(s) {
			parts = append(parts, types.Part{Text: s})
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &types.Content{Parts: parts}
}
