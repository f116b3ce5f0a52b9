package model

import "fmt"

// ScoringConfig holds the tunable thresholds of the risk scorer.
// IntensityMultiples are multiples of the corpus mean mention count that map
// to intensity scores 5 down to 2; an entity below the last multiple scores 1.
// LowFraction is the bottom fraction of the sorted mention distribution that
// is tiered LOW, HighFraction the top fraction tiered HIGH; everything in
// between is MEDIUM.
type ScoringConfig struct {
	IntensityMultiples []float64 `json:"intensity_multiples"`
	LowFraction        float64   `json:"low_fraction"`
	HighFraction       float64   `json:"high_fraction"`
}

// DefaultScoringConfig returns the default scoring thresholds
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		IntensityMultiples: []float64{10, 5, 2, 1},
		LowFraction:        0.40,
		HighFraction:       0.25,
	}
}

// Validate checks that the thresholds are usable: four strictly decreasing
// positive multiples (so intensity is monotonic in mention count) and tier
// fractions that partition the distribution without overlap.
func (c ScoringConfig) Validate() error {
	if len(c.IntensityMultiples) != 4 {
		return fmt.Errorf("expected 4 intensity multiples for scores 5 to 2, got %d", len(c.IntensityMultiples))
	}
	for i, m := range c.IntensityMultiples {
		if m <= 0 {
			return fmt.Errorf("intensity multiple %d must be positive, got %v", i, m)
		}
		if i > 0 && m >= c.IntensityMultiples[i-1] {
			return fmt.Errorf("intensity multiples must be strictly decreasing, got %v", c.IntensityMultiples)
		}
	}
	if c.LowFraction < 0 || c.HighFraction < 0 {
		return fmt.Errorf("tier fractions must not be negative")
	}
	if c.LowFraction+c.HighFraction > 1 {
		return fmt.Errorf("tier fractions overlap: low %v + high %v > 1", c.LowFraction, c.HighFraction)
	}
	return nil
}
