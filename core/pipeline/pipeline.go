package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/docarchive/entreg/gazetteer"
	"github.com/docarchive/entreg/model"
	"github.com/google/uuid"
)

// ErrMalformedText signals undecodable document text. The caller is expected
// to skip the document with a logged warning rather than abort the batch.
var ErrMalformedText = fmt.Errorf("document text is not valid UTF-8")

// ClassifiedCandidate is a candidate that survived filtering with its
// assigned entity class
type ClassifiedCandidate struct {
	Candidate model.RawCandidate
	Class     model.EntityClass
}

// Result summarizes one extraction pass over a single document
type Result struct {
	Extracted  int
	RejectedBy map[string]int
	Unclassed  int
	Candidates []ClassifiedCandidate
}

// Pipeline combines candidate extraction, rejection filtering and
// classification into a single pure pass over document text.
// A Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	Filter     *RejectionFilter
	Classifier *Classifier
}

// NewPipeline creates the extraction pipeline over a gazetteer bundle
func NewPipeline(bundle *gazetteer.Bundle) *Pipeline {
	return &Pipeline{
		Filter:     NewRejectionFilter(bundle),
		Classifier: NewClassifier(bundle),
	}
}

// Process extracts, filters and classifies all candidates of one document.
// Classification rejection is counted, not treated as failure.
func (p *Pipeline) Process(text string, documentRID uuid.UUID) (*Result, error) {
	if !utf8.ValidString(text) {
		return nil, ErrMalformedText
	}

	result := &Result{
		RejectedBy: map[string]int{},
	}

	candidates := ExtractCandidates(text, documentRID)
	result.Extracted = len(candidates)

	for _, candidate := range candidates {
		if rule, rejected := p.Filter.Reject(candidate.Text); rejected {
			result.RejectedBy[rule]++
			continue
		}

		class, ok := p.Classifier.Classify(candidate.Text)
		if !ok {
			result.Unclassed++
			continue
		}

		result.Candidates = append(result.Candidates, ClassifiedCandidate{
			Candidate: candidate,
			Class:     class,
		})
	}

	return result, nil
}
