// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import "strings"

// StripFences removes a Markdown code fence wrapper (``` or ```json) that
// models sometimes add around structured output, then trims to the outermost
// JSON object or array so stray prose before or after is ignored.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := len(s)
	if i := strings.IndexByte(s, '{'); i >= 0 && i < start {
		start = i
	}
	if i := strings.IndexByte(s, '['); i >= 0 && i < start {
		start = i
	}
	if start == len(s) {
		return s
	}

	var end int
	switch s[start] {
	case '{':
		end = strings.LastIndexByte(s, '}')
	case '[':
		end = strings.LastIndexByte(s, ']')
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}
