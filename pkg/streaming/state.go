// Package streaming translates an upstream Generative-Content SSE
// stream into a Messages-format SSE stream, one event at a time, so the
// dispatcher can flush each translated event to the client as soon as
// it is produced.
package streaming

import "github.com/nikketryhard/a2c/pkg/provider/types"

// blockNone means no content block is currently open on the output side.
const blockNone = -1

// state tracks everything the translator needs to remember between
// upstream events: which output content block is open (if any), the
// running usage counters, and whether a tool call was seen (which
// determines the final stop_reason).
type state struct {
	messageID string
	model     string

	openBlockType  string
	openBlockIndex int

	thinkingSignatureSent bool

	hasToolUse bool

	inputTokens     int
	outputTokens    int
	hasInputTokens  bool
	hasOutputTokens bool
	finishReason    string

	messageStartSent bool
}

func newState(messageID, model string) *state {
	return &state{
		messageID:      messageID,
		model:          model,
		openBlockIndex: blockNone,
	}
}

// nextIndex allocates the next content_block index, Anthropic-style
// (0-based, monotonically increasing across the whole message).
func (s *state) nextIndex() int {
	s.openBlockIndex++
	return s.openBlockIndex
}

// isBlockOpen reports whether a content block of the given type is the
// currently open one.
func (s *state) isBlockOpen(blockType string) bool {
	return s.openBlockType == blockType
}

func (s *state) markOpen(blockType string) {
	s.openBlockType = blockType
}

func (s *state) markClosed() {
	s.openBlockType = ""
}

func (s *state) applyUsage(u *types.UsageMetadata) {
	if u == nil {
		return
	}
	if u.PromptTokenCount > 0 {
		s.inputTokens = u.PromptTokenCount
		s.hasInputTokens = true
	}
	if u.CandidatesTokenCount > 0 {
		s.outputTokens = u.CandidatesTokenCount
		s.hasOutputTokens = true
	}
}

// stopReason computes the terminal Messages-format stop_reason from
// what was observed during the stream.
func (s *state) stopReason() string {
	if s.hasToolUse {
		return types.StopReasonToolUse
	}
	if s.finishReason == "MAX_TOKENS" {
		return types.StopReasonMaxTokens
	}
	return types.StopReasonEndTurn
}
