package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/nikketryhard/a2c/pkg/provider/types"
	ssewire "github.com/nikketryhard/a2c/pkg/providerutils/streaming"
)

// Options configures one stream translation.
type Options struct {
	MessageID             string
	Model                 string
	InitialInputTokens    int
	ClientThinkingEnabled bool
	// ThinkingToText folds thinking content the client didn't ask to see
	// into a wrapped <assistant_thinking> text block instead of
	// discarding it outright.
	ThinkingToText bool
	// OnEvent, if set, is called once per Messages-format SSE event
	// written downstream, in emission order, so a caller can mirror the
	// stream into a debug-capture sink without the translator needing to
	// know anything about that sink's shape.
	OnEvent func(eventType, data string)
}

// outEvent is one not-yet-written Messages-format SSE event.
type outEvent struct {
	name string
	data []byte
}

// translator holds everything live for the duration of one stream.
type translator struct {
	st  *state
	w   *ssewire.SSEWriter
	opt Options

	pending []outEvent
	started bool

	thinkingTextBuf strings.Builder
}

// Translate reads upstream Generative-Content SSE events from r and
// writes the equivalent Messages-format SSE events to out. It returns
// once the upstream stream ends or ctx is cancelled.
func Translate(ctx context.Context, r io.Reader, out io.Writer, opt Options) (err error) {
	tr := &translator{
		st:  newState(opt.MessageID, opt.Model),
		w:   ssewire.NewSSEWriter(out),
		opt: opt,
	}

	defer func() {
		if rec := recover(); rec != nil {
			tr.emitError("internal_error", fmt.Errorf("%v", rec))
			err = fmt.Errorf("streaming translator panicked: %v", rec)
		}
	}()

	parser := ssewire.NewSSEParser(r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ev, perr := parser.Next()
		if perr == io.EOF {
			break
		}
		if perr != nil {
			tr.emitError("provider_error", perr)
			return perr
		}
		if ev.Data == "" {
			continue
		}
		if ssewire.IsStreamDone(ev) {
			break
		}

		var chunk types.StreamChunk
		if jerr := json.Unmarshal([]byte(ev.Data), &chunk); jerr != nil {
			continue
		}
		if err := tr.handleChunk(chunk); err != nil {
			return err
		}
		if tr.st.finishReason != "" {
			break
		}
	}

	return tr.finish()
}

// EmitErrorStream writes the minimal valid event sequence for a stream
// that failed before any upstream bytes arrived: a synthesized
// message_start carrying the pre-flight token estimate, then a terminal
// error event. Callers use it when the response headers have already
// been committed, so a bare HTTP error body is no longer possible.
func EmitErrorStream(out io.Writer, opt Options, errType string, cause error) {
	tr := &translator{
		st:  newState(opt.MessageID, opt.Model),
		w:   ssewire.NewSSEWriter(out),
		opt: opt,
	}
	tr.emitError(errType, cause)
}

func (tr *translator) handleChunk(chunk types.StreamChunk) error {
	// Each chunk's reported counters overwrite the running totals; the
	// upstream reports cumulative usage, so the latest sample wins.
	if u := chunk.EffectiveUsage(); u.Completeness() > 0 {
		tr.st.applyUsage(u)
		tr.ensureStarted()
	}

	candidates := chunk.EffectiveCandidates()
	if len(candidates) == 0 {
		return nil
	}
	candidate := candidates[0]

	for _, part := range candidate.Content.Parts {
		if err := tr.handlePart(part); err != nil {
			return err
		}
	}

	if candidate.FinishReason != "" {
		tr.st.finishReason = candidate.FinishReason
	}
	return nil
}

func (tr *translator) handlePart(part types.Part) error {
	switch {
	case part.Thought:
		return tr.handleThought(part)
	case part.InlineData != nil:
		return tr.handleImage(part)
	case part.FunctionCall != nil:
		return tr.handleFunctionCall(part.FunctionCall)
	case part.Text != "":
		return tr.handleText(part.Text)
	default:
		return nil
	}
}

// emitSignature sends a signature_delta for the currently open thinking
// block once, the first time the upstream attaches a thought signature.
func (tr *translator) emitSignature(signature string) error {
	if !tr.st.isBlockOpen("thinking") || tr.st.thinkingSignatureSent {
		return nil
	}
	tr.st.thinkingSignatureSent = true
	return tr.emit("content_block_delta", map[string]interface{}{
		"type":  "content_block_delta",
		"index": tr.st.openBlockIndex,
		"delta": map[string]interface{}{"type": "signature_delta", "signature": signature},
	})
}

// handleThought opens or continues a thinking block. A signature
// present on the part that OPENS the block is embedded directly in its
// content_block_start payload; a signature arriving on a later part of
// an already-open block instead gets its own signature_delta, emitted
// before that part's thinking_delta.
func (tr *translator) handleThought(part types.Part) error {
	if !tr.opt.ClientThinkingEnabled {
		if tr.opt.ThinkingToText {
			tr.thinkingTextBuf.WriteString(part.Text)
		}
		return nil
	}

	if !tr.st.isBlockOpen("thinking") {
		block := map[string]interface{}{"type": "thinking", "thinking": ""}
		if part.ThoughtSignature != "" {
			block["signature"] = part.ThoughtSignature
		}
		if err := tr.openBlock("thinking", block); err != nil {
			return err
		}
		if part.ThoughtSignature != "" {
			tr.st.thinkingSignatureSent = true
		}
	} else if part.ThoughtSignature != "" {
		if err := tr.emitSignature(part.ThoughtSignature); err != nil {
			return err
		}
	}

	if part.Text == "" {
		return nil
	}
	return tr.emit("content_block_delta", map[string]interface{}{
		"type":  "content_block_delta",
		"index": tr.st.openBlockIndex,
		"delta": map[string]interface{}{"type": "thinking_delta", "thinking": part.Text},
	})
}

func (tr *translator) handleText(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := tr.flushThinkingBuffer(true); err != nil {
		return err
	}
	if !tr.st.isBlockOpen("text") {
		if err := tr.openBlock("text", map[string]interface{}{"type": "text", "text": ""}); err != nil {
			return err
		}
	}
	return tr.emit("content_block_delta", map[string]interface{}{
		"type":  "content_block_delta",
		"index": tr.st.openBlockIndex,
		"delta": map[string]interface{}{"type": "text_delta", "text": text},
	})
}

// flushThinkingBuffer emits any buffered, client-invisible thinking text
// as a wrapped text block before the real answer text starts. When
// trailingBlankLine is false (the end-of-stream epilogue call) the
// wrapper omits the extra blank line the mid-stream variant adds.
func (tr *translator) flushThinkingBuffer(trailingBlankLine bool) error {
	if tr.thinkingTextBuf.Len() == 0 {
		return nil
	}
	buffered := tr.thinkingTextBuf.String()
	tr.thinkingTextBuf.Reset()

	wrapped := "<assistant_thinking>\n" + buffered + "</assistant_thinking>\n"
	if trailingBlankLine {
		wrapped += "\n"
	}

	if !tr.st.isBlockOpen("text") {
		if err := tr.openBlock("text", map[string]interface{}{"type": "text", "text": ""}); err != nil {
			return err
		}
	}
	return tr.emit("content_block_delta", map[string]interface{}{
		"type":  "content_block_delta",
		"index": tr.st.openBlockIndex,
		"delta": map[string]interface{}{"type": "text_delta", "text": wrapped},
	})
}

func (tr *translator) handleImage(part types.Part) error {
	if err := tr.closeOpenBlock(); err != nil {
		return err
	}
	index := tr.st.nextIndex()
	if err := tr.emit("content_block_start", map[string]interface{}{
		"type": "content_block_start", "index": index,
		"content_block": map[string]interface{}{
			"type": "image",
			"source": map[string]interface{}{
				"type": "base64", "media_type": part.InlineData.MimeType, "data": part.InlineData.Data,
			},
		},
	}); err != nil {
		return err
	}
	return tr.emit("content_block_stop", map[string]interface{}{"type": "content_block_stop", "index": index})
}

func (tr *translator) handleFunctionCall(fc *types.FunctionCall) error {
	if err := tr.closeOpenBlock(); err != nil {
		return err
	}
	tr.st.hasToolUse = true

	id := "toolu_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	index := tr.st.nextIndex()

	if err := tr.emit("content_block_start", map[string]interface{}{
		"type": "content_block_start", "index": index,
		"content_block": map[string]interface{}{"type": "tool_use", "id": id, "name": fc.Name, "input": map[string]interface{}{}},
	}); err != nil {
		return err
	}

	args := removeNulls(fc.Args)
	argsJSON, _ := json.Marshal(args)
	if err := tr.emit("content_block_delta", map[string]interface{}{
		"type":  "content_block_delta",
		"index": index,
		"delta": map[string]interface{}{"type": "input_json_delta", "partial_json": string(argsJSON)},
	}); err != nil {
		return err
	}

	return tr.emit("content_block_stop", map[string]interface{}{"type": "content_block_stop", "index": index})
}

// removeNulls recursively strips nil-valued keys from a tool call's
// arguments; some tools' schemas reject explicit nulls in the input
// object.
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

// openBlock closes whatever block is open, then starts a new one at the
// next index.
func (tr *translator) openBlock(blockType string, block map[string]interface{}) error {
	if err := tr.closeOpenBlock(); err != nil {
		return err
	}
	index := tr.st.nextIndex()
	tr.st.markOpen(blockType)
	tr.st.thinkingSignatureSent = false
	return tr.emit("content_block_start", map[string]interface{}{
		"type": "content_block_start", "index": index, "content_block": block,
	})
}

func (tr *translator) closeOpenBlock() error {
	if tr.st.openBlockType == "" {
		return nil
	}
	index := tr.st.openBlockIndex
	tr.st.markClosed()
	return tr.emit("content_block_stop", map[string]interface{}{"type": "content_block_stop", "index": index})
}

// finish runs the end-of-stream epilogue: flush any remaining buffered
// thinking text, close whatever block is open, and emit message_delta +
// message_stop.
func (tr *translator) finish() error {
	tr.ensureStarted()

	if err := tr.flushThinkingBuffer(false); err != nil {
		return err
	}
	if err := tr.closeOpenBlock(); err != nil {
		return err
	}

	usage := types.Usage{InputTokens: tr.opt.InitialInputTokens}
	if tr.st.hasInputTokens {
		usage.InputTokens = tr.st.inputTokens
	}
	if tr.st.hasOutputTokens {
		usage.OutputTokens = tr.st.outputTokens
	}

	if err := tr.emit("message_delta", map[string]interface{}{
		"type":  "message_delta",
		"delta": map[string]interface{}{"stop_reason": tr.st.stopReason(), "stop_sequence": nil},
		"usage": usage,
	}); err != nil {
		return err
	}

	return tr.emit("message_stop", map[string]interface{}{"type": "message_stop"})
}

// ensureStarted sends message_start exactly once, either because usage
// info has arrived or because the stream is ending without ever having
// seen any, in which case InitialInputTokens covers it.
func (tr *translator) ensureStarted() {
	if tr.started {
		return
	}
	tr.started = true

	inputTokens := tr.opt.InitialInputTokens
	if tr.st.hasInputTokens {
		inputTokens = tr.st.inputTokens
	}

	_ = tr.emitNow("message_start", map[string]interface{}{
		"type": "message_start",
		"message": map[string]interface{}{
			"id": tr.st.messageID, "type": "message", "role": "assistant",
			"model": tr.st.model, "content": []interface{}{},
			"stop_reason": nil, "stop_sequence": nil,
			"usage": types.Usage{InputTokens: inputTokens},
		},
	})

	for _, p := range tr.pending {
		tr.writeEvent(p.name, p.data)
	}
	tr.pending = nil
}

// writeEvent performs the actual downstream write and, if configured,
// mirrors the event to Options.OnEvent.
func (tr *translator) writeEvent(name string, data []byte) error {
	if err := tr.w.WriteNamedEvent(name, string(data)); err != nil {
		return err
	}
	if tr.opt.OnEvent != nil {
		tr.opt.OnEvent(name, string(data))
	}
	return nil
}

// emit buffers an event until message_start has gone out, then writes
// it directly; this bounds how much the translator holds in memory to
// whatever accumulates before the first usage-bearing chunk arrives.
func (tr *translator) emit(name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if !tr.started {
		tr.pending = append(tr.pending, outEvent{name: name, data: data})
		return nil
	}
	return tr.writeEvent(name, data)
}

// emitError terminates a failing stream in-band: message_start first if
// it never went out, then a final error event. Write failures are
// ignored since the downstream is likely gone too.
func (tr *translator) emitError(errType string, cause error) {
	tr.ensureStarted()
	_ = tr.emitNow("error", map[string]interface{}{
		"type": "error",
		"error": map[string]string{
			"type": errType, "message": cause.Error(),
		},
	})
}

// emitNow writes directly, bypassing the pending buffer; only valid for
// message_start itself and the terminal error event.
func (tr *translator) emitNow(name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tr.writeEvent(name, data)
}
