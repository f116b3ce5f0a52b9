package mention

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountOccurrences(t *testing.T) {
	text := "Jeffrey Epstein met Jeff Epstein's lawyer. JEFFREY EPSTEIN left."

	t.Run("Counts case-insensitively over all forms", func(t *testing.T) {
		count := CountOccurrences(text, []string{"Jeffrey Epstein", "Jeff Epstein"})
		assert.Equal(t, 3, count)
	})

	t.Run("Single form", func(t *testing.T) {
		assert.Equal(t, 2, CountOccurrences(text, []string{"jeffrey epstein"}))
	})

	t.Run("Absent form counts zero", func(t *testing.T) {
		assert.Zero(t, CountOccurrences(text, []string{"Ghislaine Maxwell"}))
	})

	t.Run("Empty forms are ignored", func(t *testing.T) {
		assert.Equal(t, 2, CountOccurrences(text, []string{"", "Jeffrey Epstein"}))
	})

	t.Run("Overlap-free scanning", func(t *testing.T) {
		assert.Equal(t, 2, CountOccurrences("aaaa", []string{"aa"}))
	})
}

func TestSnippet(t *testing.T) {
	t.Run("Short document returns whole text without ellipses", func(t *testing.T) {
		text := "Ghislaine Maxwell appeared in court."
		snippet := Snippet(text, []string{"Ghislaine Maxwell"}, 80)
		assert.Equal(t, text, snippet)
	})

	t.Run("Window truncation adds ellipses on both sides", func(t *testing.T) {
		prefix := strings.Repeat("before ", 30)
		suffix := strings.Repeat("after ", 30)
		text := prefix + "Ghislaine Maxwell" + " " + suffix

		snippet := Snippet(text, []string{"Ghislaine Maxwell"}, 20)

		assert.True(t, strings.HasPrefix(snippet, Ellipsis))
		assert.True(t, strings.HasSuffix(snippet, Ellipsis))
		assert.Contains(t, snippet, "Ghislaine Maxwell")
	})

	t.Run("Truncated edges break on whitespace", func(t *testing.T) {
		prefix := strings.Repeat("context ", 30)
		text := prefix + "Jeffrey Epstein testified at length about the island schedule."

		snippet := Snippet(text, []string{"Jeffrey Epstein"}, 25)
		trimmed := strings.TrimPrefix(strings.TrimSuffix(snippet, Ellipsis), Ellipsis)

		// No partial words survive the trim
		for _, word := range strings.Fields(trimmed) {
			assert.Contains(t, text, word, "Expected %q to be a whole word from the source", word)
		}
		assert.Contains(t, snippet, "Jeffrey Epstein")
	})

	t.Run("Earliest occurrence across forms wins", func(t *testing.T) {
		text := "Jeff Epstein arrived first. Jeffrey Epstein is the canonical form."
		snippet := Snippet(text, []string{"Jeffrey Epstein", "Jeff Epstein"}, 10)
		assert.Contains(t, snippet, "Jeff Epstein arrived")
	})

	t.Run("Internal whitespace collapses", func(t *testing.T) {
		text := "Deposition of\n\n  Ghislaine   Maxwell, witness."
		snippet := Snippet(text, []string{"Maxwell"}, 80)
		assert.Equal(t, "Deposition of Ghislaine Maxwell, witness.", snippet)
	})

	t.Run("Absent entity yields empty snippet", func(t *testing.T) {
		assert.Empty(t, Snippet("No names here.", []string{"Ghislaine Maxwell"}, 80))
	})

	t.Run("Non-positive window falls back to the default", func(t *testing.T) {
		text := "Ghislaine Maxwell appeared."
		assert.Equal(t, text, Snippet(text, []string{"Ghislaine Maxwell"}, 0))
	})
}
