package pipeline

import (
	"regexp"
	"strings"

	"github.com/docarchive/entreg/gazetteer"
	"github.com/docarchive/entreg/model"
)

// personToken matches the strict person-token grammar: a capitalized
// alphabetic word, optionally with an internal hyphen/apostrophe segment
var personToken = regexp.MustCompile(`^` + capitalizedWord + `$`)

// Classifier assigns PERSON or ORGANIZATION to candidates that survived the
// rejection filter, or rejects them as non-entities.
type Classifier struct {
	bundle *gazetteer.Bundle
}

// NewClassifier creates a classifier over a gazetteer bundle
func NewClassifier(bundle *gazetteer.Bundle) *Classifier {
	return &Classifier{bundle: bundle}
}

// Classify decides the entity class of a candidate.
// Organization markers and notable-organization patterns are checked first;
// two-capitalized-word candidates without either classify PERSON, so notable
// organizations like "Merrill Lynch" need an explicit pattern entry.
// The second return value is false when the candidate yields no entity,
// which is the expected outcome for most candidates, not an error.
func (c *Classifier) Classify(candidate string) (model.EntityClass, bool) {
	tokens := strings.Fields(candidate)
	if len(tokens) < 2 {
		return "", false
	}

	if c.isOrganization(candidate, tokens) {
		return model.ClassOrganization, true
	}

	if c.isPerson(tokens) {
		return model.ClassPerson, true
	}

	return "", false
}

func (c *Classifier) isOrganization(candidate string, tokens []string) bool {
	for _, token := range tokens {
		if c.bundle.IsOrgMarker(token) {
			return true
		}
	}
	return c.bundle.MatchesNotableOrg(candidate)
}

// isPerson requires at least two tokens matching the strict person-token
// grammar; recognized particles and suffixes (von, de, Jr., III) are allowed
// but do not count toward the minimum. Candidates starting with a bare title
// of address followed by nothing but common words ("President Announced")
// are rejected.
func (c *Classifier) isPerson(tokens []string) bool {
	if c.bundle.IsTitleOfAddress(tokens[0]) {
		rest := tokens[1:]
		allCommon := len(rest) > 0
		for _, token := range rest {
			if !c.bundle.IsCommonWord(token) {
				allCommon = false
				break
			}
		}
		if allCommon {
			return false
		}
	}

	counting := 0
	for _, token := range tokens {
		if c.bundle.IsPersonParticle(token) {
			continue
		}
		if !personToken.MatchString(token) {
			return false
		}
		counting++
	}

	return counting >= 2
}
