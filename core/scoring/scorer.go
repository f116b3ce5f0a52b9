// Package scoring derives risk tiers and intensity scores from the
// corpus-wide mention-count distribution. The computation is a pure,
// whole-corpus recomputation: no incremental state, no input-order
// dependence, no randomness.
package scoring

import (
	"sort"

	"github.com/docarchive/entreg/helper"
	"github.com/docarchive/entreg/model"
	"gonum.org/v1/gonum/stat"
)

// EntityScore is the derived severity of one entity at the moment of
// computation
type EntityScore struct {
	EntityID       int64
	MentionCount   int
	IntensityScore int
	RiskTier       model.RiskTier
}

// Score assigns an intensity score in 1..5 and a risk tier to every entity
// in the mention-count snapshot.
//
// Intensity thresholds are multiples of the corpus mean mention count;
// higher mention count never yields a lower score. Tier cut points are
// percentiles of the sorted distribution; every entity lands in exactly one
// tier. On degenerate distributions where the cut points collide, HIGH takes
// precedence over LOW.
func Score(counts map[int64]int, config model.ScoringConfig) ([]EntityScore, error) {
	err := config.Validate()
	if err != nil {
		return nil, helper.NewError("validate scoring config", err)
	}

	if len(counts) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = float64(counts[id])
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	lowCut := stat.Quantile(config.LowFraction, stat.Empirical, sorted, nil)
	highCut := stat.Quantile(1-config.HighFraction, stat.Empirical, sorted, nil)

	scores := make([]EntityScore, len(ids))
	for i, id := range ids {
		count := counts[id]
		scores[i] = EntityScore{
			EntityID:       id,
			MentionCount:   count,
			IntensityScore: intensity(float64(count), mean, config.IntensityMultiples),
			RiskTier:       tier(float64(count), lowCut, highCut),
		}
	}

	return scores, nil
}

func intensity(count, mean float64, multiples []float64) int {
	if mean <= 0 {
		return 1
	}
	for i, multiple := range multiples {
		if count >= multiple*mean {
			return 5 - i
		}
	}
	return 1
}

func tier(count, lowCut, highCut float64) model.RiskTier {
	switch {
	case count >= highCut:
		return model.TierHigh
	case count <= lowCut:
		return model.TierLow
	default:
		return model.TierMedium
	}
}
