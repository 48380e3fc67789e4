package utils

import (
	"strings"
)

// CleanMarkdown strips conversational filler and outer markdown code blocks.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	// Strip outer wrapping code blocks if present (e.g. ```json ... ```)
	for _, prefix := range []string{"```json", "```markdown", "```"} {
		if strings.HasPrefix(cleaned, prefix) && strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimPrefix(cleaned, prefix)
			cleaned = strings.TrimSuffix(cleaned, "```")
			cleaned = strings.TrimSpace(cleaned)
			break
		}
	}
	return cleaned
}
