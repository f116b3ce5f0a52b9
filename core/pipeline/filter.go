package pipeline

import (
	"strings"

	"github.com/docarchive/entreg/gazetteer"
)

// RejectionRule is one named predicate of the rejection filter.
// Rejects returns true when the candidate is not a real entity.
type RejectionRule struct {
	Name    string
	Rejects func(candidate string) bool
}

// RejectionFilter applies an ordered list of rejection rules to a candidate.
// The first matching rule wins; order matters because cheaper and
// higher-precision checks run first. Ties resolve toward rejection.
type RejectionFilter struct {
	rules []RejectionRule
}

// NewRejectionFilter builds the default rule pipeline over a gazetteer bundle:
// place gazetteers (exact and per-word), date-fragment patterns, then
// generic-phrase and document-artifact sets.
func NewRejectionFilter(bundle *gazetteer.Bundle) *RejectionFilter {
	return &RejectionFilter{
		rules: []RejectionRule{
			{Name: "country", Rejects: bundle.IsCountry},
			{Name: "city", Rejects: bundle.IsCity},
			{Name: "us-state", Rejects: bundle.IsUSState},
			{Name: "region", Rejects: bundle.IsRegion},
			{Name: "place-word", Rejects: func(candidate string) bool {
				// Catches compounds like "Saudi Press" where a single word
				// is a country or city name.
				for _, word := range strings.Fields(candidate) {
					if bundle.IsPlaceWord(word) {
						return true
					}
				}
				return false
			}},
			{Name: "date-fragment", Rejects: bundle.MatchesDatePattern},
			{Name: "generic-phrase", Rejects: bundle.IsGenericPhrase},
			{Name: "document-artifact", Rejects: bundle.IsDocumentArtifact},
		},
	}
}

// Reject checks the candidate against all rules in order.
// It returns the name of the first matching rule and true if the candidate
// should be dropped, or "" and false if it survives.
func (f *RejectionFilter) Reject(candidate string) (string, bool) {
	for _, rule := range f.rules {
		if rule.Rejects(candidate) {
			return rule.Name, true
		}
	}
	return "", false
}

// Rules returns the ordered rule names, mainly for logging and tests
func (f *RejectionFilter) Rules() []string {
	names := make([]string, 0, len(f.rules))
	for _, rule := range f.rules {
		names = append(names, rule.Name)
	}
	return names
}
