package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// reply mirrors the JSON object the model is asked to return. Scope and
// body may be null.
type reply struct {
	Type  *string `json:"type"`
	Scope *string `json:"scope"`
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// ErrNoJSONObject is returned when a reply holds no {...} object at all.
var ErrNoJSONObject = errors.New("reply does not contain a JSON object")

// ParseJSON extracts, decodes, normalizes and validates a model reply.
// Markdown code fences and prose around the object are tolerated.
func ParseJSON(raw string) (*CommitMessage, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	var r reply
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	cm := &CommitMessage{
		Type:  deref(r.Type),
		Scope: deref(r.Scope),
		Title: deref(r.Title),
		Body:  deref(r.Body),
	}
	cm.Normalize()
	if err := cm.Validate(); err != nil {
		return nil, err
	}
	return cm, nil
}

// extractObject returns the text from the first '{' to the last '}'.
func extractObject(raw string) (string, error) {
	text := stripFences(strings.TrimSpace(raw))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// stripFences removes a surrounding ``` or ```json fence.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// Drop the info string ("json").
		text = text[nl+1:]
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
