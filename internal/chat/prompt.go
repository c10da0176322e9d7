package chat

import (
	"fmt"
	"strings"
)

// PromptFromHistory renders messages oldest first as "role: content" lines and
// keeps only the last window lines.
func PromptFromHistory(msgs []Message, window int) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	if window > 0 && len(lines) > window {
		lines = lines[len(lines)-window:]
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt is PromptFromHistory over prior plus the new user line.
func BuildPrompt(prior []Message, newText string, window int) string {
	all := make([]Message, 0, len(prior)+1)
	all = append(all, prior...)
	all = append(all, Message{Role: RoleUser, Content: newText})
	return PromptFromHistory(all, window)
}
