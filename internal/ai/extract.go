package ai

import "strings"

// extractor pulls reply text out of one known response shape.
type extractor func(data map[string]any) (string, bool)

// replyExtractors are tried in order; new response shapes are added here.
var replyExtractors = []extractor{
	candidateContentText,
	candidateText,
	alternateOutput,
}

func extractReply(data map[string]any) (string, bool) {
	for _, ex := range replyExtractors {
		if text, ok := ex(data); ok {
			return text, true
		}
	}
	return "", false
}

// candidates[0].content is either a list of parts or an object with a parts list.
func candidateContentText(data map[string]any) (string, bool) {
	first, ok := firstCandidate(data)
	if !ok {
		return "", false
	}
	var parts []any
	switch content := first["content"].(type) {
	case []any:
		parts = content
	case map[string]any:
		parts, _ = content["parts"].([]any)
	}
	for _, part := range parts {
		m, ok := part.(map[string]any)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(toString(m["text"])); text != "" {
			return text, true
		}
	}
	return "", false
}

func candidateText(data map[string]any) (string, bool) {
	first, ok := firstCandidate(data)
	if !ok {
		return "", false
	}
	text := strings.TrimSpace(toString(first["text"]))
	return text, text != ""
}

// alternateOutput covers {output: "..."}, {content: "..."} and the same keys on the first candidate.
func alternateOutput(data map[string]any) (string, bool) {
	sources := []map[string]any{data}
	if first, ok := firstCandidate(data); ok {
		sources = append(sources, first)
	}
	for _, src := range sources {
		for _, key := range []string{"output", "content"} {
			if text := strings.TrimSpace(toString(src[key])); text != "" {
				return text, true
			}
		}
	}
	return "", false
}

func firstCandidate(data map[string]any) (map[string]any, bool) {
	candidates, ok := data["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return nil, false
	}
	first, ok := candidates[0].(map[string]any)
	return first, ok
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
