// Package parser turns raw model output into structured reply documents.
// It is tolerant by design: models wrap JSON in markdown fences, prepend
// prose, or emit bare key-value bodies, and the parser recovers the payload
// from all of those before attempting a strict decode.
package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome is the result of parsing one raw model reply. Produced fresh per
// response, never persisted.
type Outcome struct {
	// ParseOK reports whether the text decoded as JSON at all.
	ParseOK bool
	// FormatOK reports whether the decoded document matched the expected
	// events/choices envelope.
	FormatOK bool
	// Error holds the decode or validation diagnostic when something failed.
	Error string
	// Data is the decoded root object, kept even when validation failed so
	// callers can inspect or fall back.
	Data map[string]any
}

// wrapKeys are top-level key names that identify a bare (brace-less) JSON
// body worth repairing.
var wrapKeys = []string{`"events"`, `"choices"`, `"narration"`}

// stripFences removes a leading markdown code fence (with optional language
// tag) and its closing fence. Idempotent: already-clean input passes through.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl != -1 {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(s)
		if strings.HasSuffix(s, "```") {
			s = s[:len(s)-3]
		}
	}
	return strings.TrimSpace(s)
}

// extractObject returns the substring between the first '{' and the last '}',
// discarding any leading or trailing prose. When no brace pair exists the
// trimmed input is returned unchanged.
func extractObject(s string) string {
	s = strings.TrimSpace(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

// maybeWrap repairs bodies that lost their outer braces: if the text does not
// start with '{' but mentions a known top-level key, it is wrapped in braces
// (trailing commas trimmed).
func maybeWrap(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "{") {
		return t
	}
	for _, key := range wrapKeys {
		if strings.Contains(t, key) {
			return "{\n" + strings.Trim(t, ",") + "\n}"
		}
	}
	return t
}

// Parse cleans raw model output and decodes it against the structured
// events/choices envelope (schema A).
func Parse(raw string) Outcome {
	cleaned := stripFences(raw)
	cleaned = extractObject(cleaned)
	cleaned = maybeWrap(cleaned)

	var root any
	if err := json.Unmarshal([]byte(cleaned), &root); err != nil {
		return Outcome{Error: fmt.Sprintf("json decode: %v", err)}
	}

	data, ok := root.(map[string]any)
	if !ok {
		return Outcome{ParseOK: true, Error: "root is not a JSON object"}
	}

	if _, hasEvents := data["events"]; hasEvents {
		if _, hasChoices := data["choices"]; hasChoices {
			formatOK, verr := validateStructured(data)
			return Outcome{ParseOK: true, FormatOK: formatOK, Error: verr, Data: data}
		}
	}

	return Outcome{
		ParseOK: true,
		Error:   "valid JSON but missing the events/choices envelope",
		Data:    data,
	}
}

// validateStructured checks the schema-A envelope: a list of typed events and
// a list of 2-4 non-blank choice strings.
func validateStructured(data map[string]any) (bool, string) {
	events, ok := data["events"].([]any)
	if !ok {
		return false, "'events' missing or not a list"
	}

	for i, raw := range events {
		ev, ok := raw.(map[string]any)
		if !ok {
			return false, fmt.Sprintf("events[%d] is not an object", i)
		}

		typ, _ := ev["type"].(string)
		if typ != "narration" && typ != "dialogue" {
			return false, fmt.Sprintf("events[%d].type invalid: %v", i, ev["type"])
		}
		if _, ok := ev["text"].(string); !ok {
			return false, fmt.Sprintf("events[%d].text is not a string", i)
		}
		if typ == "dialogue" {
			name, _ := ev["name"].(string)
			if strings.TrimSpace(name) == "" {
				return false, fmt.Sprintf("events[%d].name missing or blank", i)
			}
		}
	}

	choices, ok := data["choices"].([]any)
	if !ok {
		return false, "'choices' missing or not a list"
	}
	clean := 0
	for _, c := range choices {
		if s, ok := c.(string); ok && strings.TrimSpace(s) != "" {
			clean++
		}
	}
	if clean < 2 || clean > 4 {
		return false, fmt.Sprintf("'choices' must hold 2-4 strings (has %d)", clean)
	}

	return true, ""
}
