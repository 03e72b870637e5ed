package types

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes a Thinking config from either of its accepted
// wire shapes: a bare boolean, or `{"type": "enabled", "budget_tokens": N}`.
func (t *Thinking) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		if asBool {
			t.Mode = "enabled"
		} else {
			t.Mode = "disabled"
		}
		return nil
	}

	var raw struct {
		Type         string `json:"type"`
		BudgetTokens *int   `json:"budget_tokens"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Mode = raw.Type
	if raw.BudgetTokens != nil {
		t.BudgetTokens = *raw.BudgetTokens
		t.HasBudget = true
	}
	return nil
}

// MarshalJSON encodes a Thinking config back to its wire shape.
func (t Thinking) MarshalJSON() ([]byte, error) {
	out := struct {
		Type         string `json:"type"`
		BudgetTokens int    `json:"budget_tokens,omitempty"`
	}{Type: t.Mode}
	if t.HasBudget {
		out.BudgetTokens = t.BudgetTokens
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a MessagesRequest, accepting the wire format's two
// shapes for "system": a bare string, or an ordered sequence of text
// blocks ({"type":"text","text":"..."}), flattened here into System.
func (r *MessagesRequest) UnmarshalJSON(data []byte) error {
	type alias MessagesRequest
	aux := struct {
		System json.RawMessage `json:"system"`
		*alias
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.System) == 0 || string(aux.System) == "null" {
		return nil
	}

	var asString string
	if err := json.Unmarshal(aux.System, &asString); err == nil {
		r.System = []string{asString}
		return nil
	}

	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(aux.System, &parts); err != nil {
		return fmt.Errorf("decode system: %w", err)
	}
	r.System = make([]string, len(parts))
	for i, p := range parts {
		r.System[i] = p.Text
	}
	return nil
}

// MarshalJSON encodes a MessagesRequest back to its wire shape, emitting
// System as a bare string when it is a single part (the common case) and
// as a sequence of text blocks otherwise.
func (r MessagesRequest) MarshalJSON() ([]byte, error) {
	type alias MessagesRequest
	aux := struct {
		System interface{} `json:"system,omitempty"`
		alias
	}{alias: alias(r)}

	switch len(r.System) {
	case 0:
		// omitted
	case 1:
		aux.System = r.System[0]
	default:
		parts := make([]map[string]string, len(r.System))
		for i, s := range r.System {
			parts[i] = map[string]string{"type": "text", "text": s}
		}
		aux.System = parts
	}
	return json.Marshal(aux)
}

// UnmarshalJSON decodes a Message, sniffing each content block's "type"
// field to build the right concrete ContentBlock.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    Role              `json:"role"`
		Content json.RawMessage   `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role

	if len(raw.Content) == 0 {
		return nil
	}

	// Anthropic allows content to be a bare string for simple turns.
	var asString string
	if err := json.Unmarshal(raw.Content, &asString); err == nil {
		m.Content = []ContentBlock{TextBlock{Text: asString}}
		return nil
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(raw.Content, &rawBlocks); err != nil {
		return err
	}
	m.Content = make([]ContentBlock, 0, len(rawBlocks))
	for _, rb := range rawBlocks {
		block, err := decodeBlock(rb)
		if err != nil {
			return err
		}
		m.Content = append(m.Content, block)
	}
	return nil
}

func decodeBlock(raw json.RawMessage) (ContentBlock, error) {
	var tagged struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}

	switch tagged.Type {
	case "text":
		var b struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return TextBlock{Text: b.Text}, nil

	case "thinking":
		var b struct {
			Thinking  string `json:"thinking"`
			Signature string `json:"signature"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return ThinkingBlock{Thinking: b.Thinking, Signature: b.Signature}, nil

	case "redacted_thinking":
		var b struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return RedactedThinkingBlock{Data: b.Data}, nil

	case "image":
		var b struct {
			Source struct {
				MediaType string `json:"media_type"`
				Data      string `json:"data"`
			} `json:"source"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return ImageBlock{MediaType: b.Source.MediaType, Data: b.Source.Data}, nil

	case "tool_use":
		var b struct {
			ID    string                 `json:"id"`
			Name  string                 `json:"name"`
			Input map[string]interface{} `json:"input"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return ToolUseBlock{ID: b.ID, Name: b.Name, Input: b.Input}, nil

	case "tool_result":
		var b struct {
			ToolUseID string          `json:"tool_use_id"`
			Content   json.RawMessage `json:"content"`
			IsError   bool            `json:"is_error"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		content, err := decodeToolResultContent(b.Content)
		if err != nil {
			return nil, err
		}
		return ToolResultBlock{ToolUseID: b.ToolUseID, Content: content, IsError: b.IsError}, nil

	default:
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode unknown content block: %w", err)
		}
		return UnknownBlock{Type: tagged.Type, Raw: m}, nil
	}
}

// decodeToolResultContent handles the two shapes a tool_result's
// content can take: a plain string, or a list of content blocks (only
// text and image are meaningful inside a tool result).
func decodeToolResultContent(raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(raw, &rawBlocks); err != nil {
		return nil, err
	}
	blocks := make([]ContentBlock, 0, len(rawBlocks))
	for _, rb := range rawBlocks {
		b, err := decodeBlock(rb)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
