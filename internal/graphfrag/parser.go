// Package graphfrag implements the Graph Fragment Parser: it separates an
// LLM response into the Markdown documentation and the embedded JSON graph
// fragment marked by <!-- GRAPH_DATA_START --> / <!-- GRAPH_DATA_END -->.
package graphfrag

import (
	"encoding/json"
	"errors"
	"strings"

	"codedocs/internal/docmodel"
)

const (
	graphStartMarker = "<!-- GRAPH_DATA_START -->"
	graphEndMarker   = "<!-- GRAPH_DATA_END -->"
)

// ErrEmptyDoc is returned when the Markdown portion is empty after the
// fragment block (if any) is removed and the result trimmed.
var ErrEmptyDoc = errors.New("graphfrag: markdown portion is empty after trim")

// Parse splits raw LLM Markdown output into the documentation text and an
// optional graph fragment. A missing start or end marker means "no
// fragment", not an error. A fragment whose JSON fails to parse is dropped
// (not fatal) — the Markdown portion still counts as a successful analysis
// provided it is non-empty.
func Parse(markdown string) (doc string, fragment *docmodel.GraphFragment, err error) {
	start := strings.Index(markdown, graphStartMarker)
	end := strings.Index(markdown, graphEndMarker)

	if start < 0 || end < 0 || start >= end {
		doc = strings.TrimSpace(markdown)
		if doc == "" {
			return "", nil, ErrEmptyDoc
		}
		return doc, nil, nil
	}

	before := strings.TrimRight(markdown[:start], " \t\n\r")
	after := strings.TrimLeft(markdown[end+len(graphEndMarker):], " \t\n\r")
	doc = strings.TrimSpace(before + after)
	if doc == "" {
		return "", nil, ErrEmptyDoc
	}

	section := markdown[start+len(graphStartMarker) : end]
	jsonStr, ok := extractJSON(section)
	if !ok {
		return doc, nil, nil
	}

	var frag docmodel.GraphFragment
	if uerr := json.Unmarshal([]byte(jsonStr), &frag); uerr != nil {
		// Dropping the fragment is not fatal; it is returned as nil with no error.
		return doc, nil, nil
	}
	return doc, &frag, nil
}

// extractJSON finds the JSON payload inside a graph-data section, tolerant
// of it being wrapped in a ```json fence, a bare ``` fence, or present as a
// bare object.
func extractJSON(section string) (string, bool) {
	trimmed := strings.TrimSpace(section)

	if idx := strings.Index(trimmed, "```json"); idx >= 0 {
		rest := trimmed[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}

	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		rest := trimmed[idx+3:]
		braceStart := strings.Index(rest, "{")
		if braceStart < 0 {
			braceStart = 0
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 && end > braceStart {
			return strings.TrimSpace(rest[braceStart:end]), true
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return strings.TrimSpace(trimmed[start : end+1]), true
	}

	return "", false
}
