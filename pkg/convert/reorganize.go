package convert

// reorganizeToolMessages moves each function response so it sits
// immediately after the function call it answers, regardless of how
// many turns separated them in the original message list, and drops any
// response whose call never appeared.
//
// The upstream requires a call and its response to be adjacent; the
// Messages format instead batches an assistant turn's calls and the
// following user turn's results separately, so this pass repairs the
// interleaving before the parts are grouped into Content turns.
//
// Applying it twice is a no-op: a list already in call-response order has
// nothing left to relocate or drop.
func reorganizeToolMessages(items []taggedPart) []taggedPart {
	callPos := make(map[string]int, len(items))
	for i, item := range items {
		if item.part.FunctionCall != nil && item.toolCallID != "" {
			callPos[item.toolCallID] = i
		}
	}

	insertAfter := make(map[int][]taggedPart)
	relocated := make(map[int]bool)

	for i, item := range items {
		if item.part.FunctionResponse == nil {
			continue
		}
		pos, ok := callPos[item.toolCallID]
		if !ok {
			// orphan response: no matching call, drop it.
			relocated[i] = true
			continue
		}
		// The upstream matches a functionResponse to its functionCall by
		// name, not by the Messages-format tool_use_id, which never
		// appears on the wire.
		item.part.FunctionResponse.Name = items[pos].part.FunctionCall.Name
		if pos == i-1 {
			// already adjacent, leave in place.
			continue
		}
		insertAfter[pos] = append(insertAfter[pos], item)
		relocated[i] = true
	}

	out := make([]taggedPart, 0, len(items))
	for i, item := range items {
		if relocated[i] {
			continue
		}
		out = append(out, item)
		out = append(out, insertAfter[i]...)
	}
	return out
}
