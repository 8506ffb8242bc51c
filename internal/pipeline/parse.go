package pipeline

import (
	"encoding/json"
	"strings"
)

// ParseJSON decodes a model reply into out, tolerating the markdown code
// fences models like to wrap JSON in.
func ParseJSON(stage, content string, out interface{}) error {
	if err := json.Unmarshal([]byte(StripFences(content)), out); err != nil {
		return NewErrParse(stage, err)
	}
	return nil
}

// StripFences removes a leading ```json (or bare ```) fence and the
// matching trailing fence.
func StripFences(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}

	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	return s
}
