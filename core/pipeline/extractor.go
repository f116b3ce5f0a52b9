package pipeline

import (
	"regexp"

	"github.com/docarchive/entreg/model"
	"github.com/google/uuid"
)

// capitalizedWord matches one word of a candidate span: an uppercase letter
// followed by lowercase letters, optionally with internal hyphen/apostrophe
// segments ("Jean-Luc", "O'Brien").
const capitalizedWord = `(?:[A-Z]['’])?[A-Z][a-z]+(?:['’-][A-Za-z][a-z]+)*`

// candidateSpan matches 2 to 5 consecutive capitalized words
var candidateSpan = regexp.MustCompile(capitalizedWord + `(?: ` + capitalizedWord + `){1,4}`)

// ExtractCandidates scans raw document text for capitalized multi-word spans.
// The result is ordered by first occurrence and deduplicated by exact string
// within the document; case variants are distinct at this stage, case
// normalization happens later during alias comparison. Pure, no side effects.
func ExtractCandidates(text string, documentRID uuid.UUID) []model.RawCandidate {
	matches := candidateSpan.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	candidates := make([]model.RawCandidate, 0, len(matches))

	for _, match := range matches {
		span := text[match[0]:match[1]]
		if seen[span] {
			continue
		}
		seen[span] = true

		candidates = append(candidates, model.RawCandidate{
			Text:     span,
			Document: documentRID,
			Start:    match[0],
			End:      match[1],
		})
	}

	return candidates
}
