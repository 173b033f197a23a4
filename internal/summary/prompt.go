package summary

import (
	"strings"
)

const truncationMarker = "... (truncated)"

const promptTemplate = `You are reviewing pull-request statistics for a software repository.
Write a short narrative (at most two paragraphs) describing trends in volume,
review latency and review engagement. Mention notable months or authors.
Do not repeat the tables.

{{.Stats}}
`

// BuildPrompt fills the template with stats, dropping trailing lines until
// the prompt fits within budget tokens. A budget of zero or less disables
// trimming.
func BuildPrompt(stats string, budget int) (prompt string, truncated bool) {
	prompt = render(stats)
	if budget <= 0 || estimateTokens(prompt) <= budget {
		return prompt, false
	}

	lines := strings.Split(strings.TrimRight(stats, "\n"), "\n")
	for len(lines) > 0 {
		lines = lines[:len(lines)-1]
		prompt = render(strings.Join(append(lines, truncationMarker), "\n"))
		if estimateTokens(prompt) <= budget {
			return prompt, true
		}
	}
	return render(truncationMarker), true
}

func render(stats string) string {
	return strings.ReplaceAll(promptTemplate, "{{.Stats}}", stats)
}
