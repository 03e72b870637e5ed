// Package schema sanitizes JSON Schema tool definitions down to the
// subset a Generative-Content upstream accepts.
package schema

import (
	"fmt"
	"sort"
)

// unsupportedKeys are JSON Schema keywords the upstream rejects outright
// and that carry no useful validation signal once dropped.
var unsupportedKeys = map[string]bool{
	"$schema": true, "$id": true, "$ref": true, "$defs": true,
	"definitions": true, "title": true, "example": true, "examples": true,
	"readOnly": true, "writeOnly": true, "default": true,
	"exclusiveMinimum": true, "exclusiveMaximum": true,
	"oneOf": true, "anyOf": true, "allOf": true, "const": true,
	"additionalItems": true, "contains": true, "patternProperties": true,
	"dependencies": true, "propertyNames": true,
	"if": true, "then": true, "else": true,
	"contentEncoding": true, "contentMediaType": true,
}

// fieldsToRemove are keywords the upstream doesn't understand but that
// have no textual fallback worth preserving.
var fieldsToRemove = map[string]bool{
	"additionalProperties": true,
}

// validationLabels maps a constraint keyword to the label used when it
// is folded into the sibling description field.
var validationLabels = map[string]string{
	"minLength": "minLength", "maxLength": "maxLength",
	"minimum": "minimum", "maximum": "maximum",
	"minItems": "minItems", "maxItems": "maxItems",
}

// Clean returns a copy of schema with unsupported keywords stripped,
// constraint keywords folded into description text, and nullable type
// arrays collapsed to a single scalar type. It is idempotent: Clean(Clean(s))
// produces the same result as Clean(s).
func Clean(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	return cleanNode(in).(map[string]interface{})
}

func cleanNode(v interface{}) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		return cleanObject(node)
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, e := range node {
			out[i] = cleanNode(e)
		}
		return out
	default:
		return v
	}
}

func cleanObject(obj map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	var notes []string

	for key, val := range obj {
		if unsupportedKeys[key] || fieldsToRemove[key] {
			continue
		}
		if label, ok := validationLabels[key]; ok {
			notes = append(notes, fmt.Sprintf("%s: %v", label, val))
			continue
		}
		out[key] = cleanNode(val)
	}

	normalizeType(out)
	inferObjectType(out)
	appendValidationNotes(out, notes)

	return out
}

// normalizeType collapses a `"type": ["x", "null"]` array into a scalar
// type plus `nullable: true`, defaulting to "string" when null is the
// only member.
func normalizeType(out map[string]interface{}) {
	raw, ok := out["type"]
	if !ok {
		return
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return
	}

	nullable := false
	var scalar string
	for _, t := range arr {
		s, _ := t.(string)
		if s == "null" {
			nullable = true
			continue
		}
		if scalar == "" {
			scalar = s
		}
	}
	if scalar == "" {
		scalar = "string"
	}
	out["type"] = scalar
	if nullable {
		out["nullable"] = true
	}
}

// inferObjectType adds `"type": "object"` when properties are present
// but the type keyword was never specified, matching schemas authors
// commonly leave implicit.
func inferObjectType(out map[string]interface{}) {
	if _, hasType := out["type"]; hasType {
		return
	}
	if _, hasProps := out["properties"]; hasProps {
		out["type"] = "object"
	}
}

func appendValidationNotes(out map[string]interface{}, notes []string) {
	if len(notes) == 0 {
		return
	}
	sort.Strings(notes)
	desc, _ := out["description"].(string)
	joined := ""
	for i, n := range notes {
		if i > 0 {
			joined += ", "
		}
		joined += n
	}
	if desc == "" {
		out["description"] = "Validation: " + joined
		return
	}
	out["description"] = desc + " (" + joined + ")"
}
