// Package types defines the wire-level data model shared by the
// Messages-format and Generative-Content-format sides of the gateway.
package types

import "encoding/json"

// Role identifies the speaker of a Messages-format message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentBlock is a single block of a Messages-format message. Concrete
// types implement BlockType so callers can switch on it without a type
// assertion chain at every call site.
type ContentBlock interface {
	BlockType() string
}

// TextBlock is plain text content.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) BlockType() string { return "text" }

// MarshalJSON emits the "type" discriminator the wire format requires.
func (t TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{"text", t.Text})
}

// ThinkingBlock carries a model's extended-thinking trace. Signature is
// an opaque token the provider issued alongside the thinking text and
// must be echoed back verbatim on the next turn.
type ThinkingBlock struct {
	Thinking  string `json:"thinking"`
	Signature string `json:"signature"`
}

func (ThinkingBlock) BlockType() string { return "thinking" }

// MarshalJSON emits the "type" discriminator the wire format requires.
func (b ThinkingBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Thinking  string `json:"thinking"`
		Signature string `json:"signature"`
	}{"thinking", b.Thinking, b.Signature})
}

// RedactedThinkingBlock is a thinking block whose text has been withheld
// by the provider; only the signature round-trips.
type RedactedThinkingBlock struct {
	Data string `json:"data"`
}

func (RedactedThinkingBlock) BlockType() string { return "redacted_thinking" }

// MarshalJSON emits the "type" discriminator the wire format requires.
func (b RedactedThinkingBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}{"redacted_thinking", b.Data})
}

// ImageBlock is inline base64 image content.
type ImageBlock struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func (ImageBlock) BlockType() string { return "image" }

// MarshalJSON emits the "type" discriminator and nested source object
// the wire format expects for image blocks.
func (b ImageBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Source struct {
			Type      string `json:"type"`
			MediaType string `json:"media_type"`
			Data      string `json:"data"`
		} `json:"source"`
	}{"image", struct {
		Type      string `json:"type"`
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	}{"base64", b.MediaType, b.Data}})
}

// ToolUseBlock is a model-issued tool invocation.
type ToolUseBlock struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

func (ToolUseBlock) BlockType() string { return "tool_use" }

// MarshalJSON emits the "type" discriminator the wire format requires.
func (b ToolUseBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string                 `json:"type"`
		ID    string                 `json:"id"`
		Name  string                 `json:"name"`
		Input map[string]interface{} `json:"input"`
	}{"tool_use", b.ID, b.Name, b.Input})
}

// ToolResultBlock is the caller's answer to a prior ToolUseBlock. Content
// is either a plain string or a list of ContentBlock (only Text/Image
// are valid inside a tool result).
type ToolResultBlock struct {
	ToolUseID string       `json:"tool_use_id"`
	Content   interface{}  `json:"content"`
	IsError   bool         `json:"is_error,omitempty"`
}

func (ToolResultBlock) BlockType() string { return "tool_result" }

// MarshalJSON emits the "type" discriminator the wire format requires.
func (b ToolResultBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string      `json:"type"`
		ToolUseID string      `json:"tool_use_id"`
		Content   interface{} `json:"content"`
		IsError   bool        `json:"is_error,omitempty"`
	}{"tool_result", b.ToolUseID, b.Content, b.IsError})
}

// UnknownBlock preserves a block type the gateway doesn't recognize so
// it can be passed through rather than dropped.
type UnknownBlock struct {
	Type string
	Raw  map[string]interface{}
}

func (u UnknownBlock) BlockType() string { return u.Type }

// MarshalJSON re-emits the block exactly as it arrived on the wire.
func (u UnknownBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Raw)
}

// Message is one turn of a Messages-format conversation.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Thinking configures extended-thinking on a request. Mode is either
// empty (unset), "enabled", or "disabled"; BudgetTokens only applies
// when Mode is "enabled".
type Thinking struct {
	Mode          string
	BudgetTokens  int
	HasBudget     bool
}

// Enabled reports whether the request asked for extended thinking.
func (t *Thinking) Enabled() bool {
	return t != nil && t.Mode == "enabled"
}

// Tool is a callable the model may invoke, described by a JSON schema.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// ToolChoice constrains which tool, if any, the model must call.
type ToolChoice struct {
	Type string `json:"type"` // "auto", "any", "tool", "none"
	Name string `json:"name,omitempty"`
}

// MessagesRequest is the body of a POST /v1/messages call.
type MessagesRequest struct {
	Model string `json:"model"`
	// System holds the flattened ordered text parts of the request's
	// system prompt; the wire form may be a bare string or a sequence of
	// text blocks (see Thinking.UnmarshalJSON's sibling on MessagesRequest).
	System        []string               `json:"-"`
	Messages      []Message              `json:"messages"`
	Tools         []Tool                 `json:"tools,omitempty"`
	ToolChoice    *ToolChoice            `json:"tool_choice,omitempty"`
	MaxTokens     int                    `json:"max_tokens"`
	Temperature   *float64               `json:"temperature,omitempty"`
	TopP          *float64               `json:"top_p,omitempty"`
	TopK          *int                   `json:"top_k,omitempty"`
	StopSequences []string               `json:"stop_sequences,omitempty"`
	Stream        bool                   `json:"stream,omitempty"`
	Thinking      *Thinking              `json:"thinking,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Usage reports token counts for a Messages-format response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// MessagesResponse is the body of a non-streaming POST /v1/messages
// response.
type MessagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       Role           `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// StopReason enumerates why generation ended.
const (
	StopReasonEndTurn      = "end_turn"
	StopReasonMaxTokens    = "max_tokens"
	StopReasonToolUse      = "tool_use"
	StopReasonStopSequence = "stop_sequence"
)
