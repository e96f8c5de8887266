package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

var errNoJSONObject = errors.New("no JSON object in reply")

// reply is the normalized provider answer.
type reply struct {
	Category   model.Category
	Reasoning  string
	Confidence float64
}

// rawReply is the JSON object a provider is asked to return. Confidence is
// decoded loosely because models return numbers, numeric strings and
// percentages.
type rawReply struct {
	Confidence any    `json:"confidence"`
	Category   string `json:"category"`
	Reasoning  string `json:"reasoning"`
}

// parseReply decodes the first JSON object in content.
func parseReply(content string) (reply, error) {
	object, err := extractJSONObject(cleanMarkdownWrapper(content))
	if err != nil {
		return reply{}, err
	}

	var raw rawReply
	if err := json.Unmarshal([]byte(object), &raw); err != nil {
		return reply{}, fmt.Errorf("failed to parse JSON reply: %w", err)
	}
	if strings.TrimSpace(raw.Category) == "" {
		return reply{}, fmt.Errorf("no category found in reply")
	}

	confidence, err := parseConfidence(raw.Confidence)
	if err != nil {
		return reply{}, err
	}

	return reply{
		Category:   MapLabel(raw.Category),
		Confidence: confidence,
		Reasoning:  strings.TrimSpace(raw.Reasoning),
	}, nil
}

func parseConfidence(v any) (float64, error) {
	switch c := v.(type) {
	case nil:
		return DefaultConfidence, nil
	case float64:
		return model.ClampConfidence(c), nil
	case string:
		s := strings.TrimSpace(c)
		if s == "" {
			return DefaultConfidence, nil
		}
		if pct, ok := strings.CutSuffix(s, "%"); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid confidence %q: %w", c, err)
			}
			return model.ClampConfidence(f / 100), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid confidence %q: %w", c, err)
		}
		return model.ClampConfidence(f), nil
	default:
		return 0, fmt.Errorf("invalid confidence type %T", v)
	}
}

// cleanMarkdownWrapper strips a surrounding ``` or ```json fence.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 && !strings.ContainsAny(content[:nl], "{") {
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// extractJSONObject returns the first balanced {...} in s, honoring string
// literals and escapes.
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errNoJSONObject
}
