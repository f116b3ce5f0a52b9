// Package mention links canonical entities to source documents: occurrence
// counting over all known surface forms and bounded context-snippet
// extraction around the first occurrence.
package mention

import (
	"strings"
)

// DefaultWindow is the number of context characters taken on each side of
// the first occurrence when building a snippet.
const DefaultWindow = 80

// Ellipsis marks a snippet truncated by the window rather than by the
// document boundary.
const Ellipsis = "..."

// CountOccurrences counts all case-insensitive occurrences of any of the
// given surface forms in the document text. Repeated occurrences in one
// document increment the count of a single mention link, never create a
// second one.
func CountOccurrences(text string, forms []string) int {
	lowered := strings.ToLower(text)

	total := 0
	for _, form := range forms {
		if form == "" {
			continue
		}
		needle := strings.ToLower(form)
		for offset := 0; ; {
			idx := strings.Index(lowered[offset:], needle)
			if idx < 0 {
				break
			}
			total++
			offset += idx + len(needle)
		}
	}
	return total
}

// Snippet extracts a bounded context excerpt centered on the first
// case-insensitive occurrence of any surface form. The window is trimmed to
// whitespace boundaries where feasible and marked with an ellipsis on each
// side that was truncated by the window rather than the document boundary.
// If no form occurs in the text the snippet is empty rather than guessed.
func Snippet(text string, forms []string, window int) string {
	if window <= 0 {
		window = DefaultWindow
	}

	lowered := strings.ToLower(text)

	first := -1
	matchLen := 0
	for _, form := range forms {
		if form == "" {
			continue
		}
		idx := strings.Index(lowered, strings.ToLower(form))
		if idx >= 0 && (first < 0 || idx < first) {
			first = idx
			matchLen = len(form)
		}
	}
	if first < 0 {
		return ""
	}

	start := first - window
	end := first + matchLen + window
	truncatedLeft := start > 0
	truncatedRight := end < len(text)
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}

	excerpt := text[start:end]
	matchStart := first - start
	matchEnd := matchStart + matchLen

	// Trim partial words at truncated edges, never into the match itself
	if truncatedRight {
		if cut := strings.LastIndexAny(excerpt, " \t\n"); cut > matchEnd {
			excerpt = excerpt[:cut]
		}
	}
	if truncatedLeft {
		if cut := strings.IndexAny(excerpt, " \t\n"); cut >= 0 && cut < matchStart {
			excerpt = excerpt[cut+1:]
		}
	}

	excerpt = strings.Join(strings.Fields(excerpt), " ")

	if truncatedLeft {
		excerpt = Ellipsis + excerpt
	}
	if truncatedRight {
		excerpt = excerpt + Ellipsis
	}

	return excerpt
}
