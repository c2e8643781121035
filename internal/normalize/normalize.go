// Package normalize turns heterogeneous tool output into something the
// model and the user can consume: sanitized display text, image URLs, and
// citations. Input is untrusted; nothing in here panics or errors on
// malformed payloads, the fallback is always the raw text untouched.
package normalize

import (
	"encoding/json"
	"strings"

	"pkdindustries/toolshack/internal/citation"
)

// Result is the outcome of normalizing one tool result.
type Result struct {
	Display   string
	Images    []string
	Citations []citation.Citation
}

// Normalize parses one tool result. Strategies are tried in order: the
// marker-delimited text format first (structural markers are cheaper and
// more reliable than guessing at JSON), then JSON shapes, then the raw
// text passes through unchanged.
func Normalize(toolName, raw string) Result {
	res := Result{Display: raw}

	if cites, ok := markerBlocks(toolName, raw); ok {
		res.Citations = cites
		return res
	}

	payload, display := stripLabel(raw)
	values, ok := decode(payload)
	if !ok {
		return res
	}
	res.Display = display

	for _, v := range values {
		applyShape(toolName, v, &res)
	}
	return res
}

// markerBlocks parses the pre-formatted web-search text format:
// blocks separated by blank lines, each carrying literal Title:/URL:/Content:
// markers. A block missing a marker is skipped, never an error.
func markerBlocks(toolName, raw string) ([]citation.Citation, bool) {
	if !strings.Contains(raw, "Title:") || !strings.Contains(raw, "URL:") || !strings.Contains(raw, "Content:") {
		return nil, false
	}
	var cites []citation.Citation
	for _, block := range strings.Split(raw, "\n\n") {
		if !strings.Contains(block, "Title:") || !strings.Contains(block, "URL:") || !strings.Contains(block, "Content:") {
			continue
		}
		title := strings.TrimSpace(between(block, "Title:", "URL:"))
		url := strings.TrimSpace(between(block, "URL:", "Content:"))
		content := strings.ReplaceAll(strings.TrimSpace(after(block, "Content:")), "\n", "")
		cites = append(cites, citation.Citation{
			URL:     url,
			Title:   title,
			Excerpt: citation.Clip(content),
			Source:  toolName,
		})
	}
	return cites, true
}

func between(s, from, to string) string {
	rest := after(s, from)
	if idx := strings.Index(rest, to); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

func after(s, marker string) string {
	if idx := strings.Index(s, marker); idx >= 0 {
		return s[idx+len(marker):]
	}
	return ""
}

// stripLabel handles the search-index payload convention "<label>: {json}".
// The label is dropped so the JSON decodes and so the model sees the
// payload, not the envelope. Payloads already starting with JSON pass
// through untouched.
func stripLabel(raw string) (payload, display string) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed, raw
	}
	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return raw, raw
	}
	rest := strings.TrimSpace(trimmed[idx+1:])
	if strings.HasPrefix(rest, "{") || strings.HasPrefix(rest, "[") {
		return rest, rest
	}
	return raw, raw
}

// decode parses payload as a single JSON value, or as N concatenated
// top-level JSON objects (the knowledge-base tool emits these with no
// separator). Returns false when nothing decodes.
func decode(payload string) ([]any, bool) {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}

	var single any
	if err := json.Unmarshal([]byte(trimmed), &single); err == nil {
		return []any{single}, true
	}

	if strings.HasPrefix(trimmed, "{") {
		parts, ok := SplitConcatenatedJSON(trimmed)
		if ok && len(parts) > 1 {
			values := make([]any, 0, len(parts))
			for _, part := range parts {
				var v any
				if err := json.Unmarshal([]byte(part), &v); err != nil {
					return nil, false
				}
				values = append(values, v)
			}
			return values, true
		}
	}
	return nil, false
}

// SplitConcatenatedJSON splits a string of back-to-back top-level JSON
// objects by brace counting. Braces inside strings (and escaped quotes
// inside those) are ignored. Returns false if the text is not a clean
// sequence of complete objects.
func SplitConcatenatedJSON(s string) ([]string, bool) {
	var parts []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth == 0 {
				return nil, false
			}
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, false
			}
			if depth == 0 {
				parts = append(parts, s[start:i+1])
				start = -1
			}
		default:
			// Anything outside an object must be whitespace
			if depth == 0 && c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				return nil, false
			}
		}
	}
	if depth != 0 || inString || len(parts) == 0 {
		return nil, false
	}
	return parts, true
}

// applyShape mines one decoded JSON value for images and citations.
func applyShape(toolName string, v any, res *Result) {
	switch val := v.(type) {
	case map[string]any:
		applyObject(toolName, val, res)
	case []any:
		for _, item := range val {
			switch it := item.(type) {
			case map[string]any:
				applyObject(toolName, it, res)
			case string:
				// double-encoded: array elements that are JSON strings
				var inner map[string]any
				if err := json.Unmarshal([]byte(it), &inner); err != nil {
					continue
				}
				if _, ok := inner["rank_order"]; ok {
					res.Citations = append(res.Citations, citation.Citation{
						URL:     str(inner["url"]),
						Title:   str(inner["title"]),
						Excerpt: capExcerpt(str(inner["context"])),
						Source:  toolName,
					})
				}
			}
		}
	}
}

func applyObject(toolName string, obj map[string]any, res *Result) {
	if path, ok := obj["path"]; ok {
		switch p := path.(type) {
		case string:
			res.Images = append(res.Images, p)
		case []any:
			for _, u := range p {
				if s, ok := u.(string); ok {
					res.Images = append(res.Images, s)
				}
			}
		}
	}

	if ref, ok := obj["reference"].(map[string]any); ok {
		if contents, ok := obj["contents"].(string); ok {
			res.Citations = append(res.Citations, citation.Citation{
				URL:     str(ref["url"]),
				Title:   str(ref["title"]),
				Excerpt: capExcerpt(contents),
				Source:  str(ref["from"]),
			})
		}
	}

	if papers, ok := obj["papers"].([]any); ok {
		for _, p := range papers {
			paper, ok := p.(map[string]any)
			if !ok {
				continue
			}
			res.Citations = append(res.Citations, citation.Citation{
				URL:     str(paper["url"]),
				Title:   str(paper["title"]),
				Excerpt: capExcerpt(str(paper["abstract"])),
				Source:  toolName,
			})
		}
	}
}

// capExcerpt truncates to the citation cap and strips newlines, matching
// how search-result context is squeezed onto one line.
func capExcerpt(s string) string {
	r := []rune(s)
	if len(r) > citation.ExcerptMax {
		s = string(r[:citation.ExcerptMax])
	}
	return strings.ReplaceAll(s, "\n", "")
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
