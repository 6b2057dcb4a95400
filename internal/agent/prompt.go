package agent

import (
	"strings"

	"lifeos/internal/core"
)

const baselinePrompt = "I'm just starting to track my life. Please provide initial baseline scores and recommendations for someone beginning their life tracking journey."

// InsightPrompt lists every domain's entries for the insight agent, or asks
// for a baseline when nothing has been logged.
func InsightPrompt(store core.EntryStore) string {
	if store.Count() == 0 {
		return baselinePrompt
	}
	blocks := make([]string, 0, len(core.Domains))
	for _, d := range core.Domains {
		entries := store.Entries(d)
		if len(entries) == 0 {
			blocks = append(blocks, string(d)+": No entries yet")
			continue
		}
		var b strings.Builder
		b.WriteString(string(d))
		b.WriteString(":")
		for _, e := range entries {
			b.WriteString("\n- ")
			b.WriteString(e.Content)
		}
		blocks = append(blocks, b.String())
	}
	return "Here is my life data across domains:\n\n" +
		strings.Join(blocks, "\n\n") +
		"\n\nPlease analyze all domains and provide holistic life insights with scores, patterns, and recommendations."
}

// TrackerPrompt tags free text with its domain.
func TrackerPrompt(d core.Domain, text string) string {
	return "[Domain: " + string(d) + "] " + text
}

// QueryPrompt asks the tracker a question about a domain instead of logging.
func QueryPrompt(d core.Domain, question string) string {
	return "[Domain: " + string(d) + "] [Query] " + question
}
