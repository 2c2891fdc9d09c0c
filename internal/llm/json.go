package llm

import (
	"strings"
)

// ExtractJSONObject cleans up a model response that should contain a single
// JSON object. Models occasionally ignore "no Markdown" instructions and wrap
// the payload in code fences or surround it with prose; this strips fences and
// keeps only the text from the first '{' to the last '}'.
func ExtractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the JSON object, keep only from the first
	// '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
