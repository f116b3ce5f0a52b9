package scoring

import (
	"testing"

	"github.com/docarchive/entreg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	config := model.DefaultScoringConfig()

	t.Run("Empty snapshot scores nothing", func(t *testing.T) {
		scores, err := Score(map[int64]int{}, config)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("Invalid config is rejected", func(t *testing.T) {
		bad := config
		bad.IntensityMultiples = []float64{1, 2, 3, 4}

		_, err := Score(map[int64]int{1: 5}, bad)
		assert.Error(t, err)
	})

	t.Run("Results are ordered by entity ID", func(t *testing.T) {
		scores, err := Score(map[int64]int{9: 3, 2: 7, 5: 1}, config)
		require.NoError(t, err)
		require.Len(t, scores, 3)
		assert.Equal(t, int64(2), scores[0].EntityID)
		assert.Equal(t, int64(5), scores[1].EntityID)
		assert.Equal(t, int64(9), scores[2].EntityID)
	})

	t.Run("Tier cut points follow the configured fractions", func(t *testing.T) {
		// Uniform 1..20 distribution: bottom 40% is LOW, top quarter HIGH
		counts := map[int64]int{}
		for i := int64(1); i <= 20; i++ {
			counts[i] = int(i)
		}

		scores, err := Score(counts, config)
		require.NoError(t, err)

		byCount := map[int]model.RiskTier{}
		for _, score := range scores {
			byCount[score.MentionCount] = score.RiskTier
		}

		assert.Equal(t, model.TierLow, byCount[1])
		assert.Equal(t, model.TierLow, byCount[8])
		assert.Equal(t, model.TierMedium, byCount[9])
		assert.Equal(t, model.TierMedium, byCount[14])
		assert.Equal(t, model.TierHigh, byCount[15])
		assert.Equal(t, model.TierHigh, byCount[20])
	})

	t.Run("Intensity follows mean multiples", func(t *testing.T) {
		// 12 entities, total 120 mentions, mean 10
		counts := map[int64]int{1: 105, 2: 9, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 0, 10: 0, 11: 0, 12: 0}

		scores, err := Score(counts, config)
		require.NoError(t, err)

		byID := map[int64]EntityScore{}
		for _, score := range scores {
			byID[score.EntityID] = score
		}

		assert.Equal(t, 5, byID[1].IntensityScore, "Expected 105 mentions at mean 10 to reach the top band")
		assert.Equal(t, 1, byID[2].IntensityScore, "Expected 9 mentions to stay below the mean threshold")
		assert.Equal(t, 1, byID[3].IntensityScore)
	})

	t.Run("Higher count never scores lower", func(t *testing.T) {
		counts := map[int64]int{}
		for i := int64(1); i <= 50; i++ {
			counts[i] = int(i * i % 37)
		}

		scores, err := Score(counts, config)
		require.NoError(t, err)

		byCount := make([]EntityScore, len(scores))
		copy(byCount, scores)
		for i := range byCount {
			for j := i + 1; j < len(byCount); j++ {
				if byCount[j].MentionCount < byCount[i].MentionCount {
					byCount[i], byCount[j] = byCount[j], byCount[i]
				}
			}
		}

		for i := 1; i < len(byCount); i++ {
			assert.GreaterOrEqual(t, byCount[i].IntensityScore, byCount[i-1].IntensityScore,
				"intensity must be monotone in mention count")
			assert.GreaterOrEqual(t, tierRank(byCount[i].RiskTier), tierRank(byCount[i-1].RiskTier),
				"tier must be monotone in mention count")
		}
	})

	t.Run("Degenerate distribution favors HIGH", func(t *testing.T) {
		counts := map[int64]int{1: 5, 2: 5, 3: 5, 4: 5}

		scores, err := Score(counts, config)
		require.NoError(t, err)

		for _, score := range scores {
			assert.Equal(t, model.TierHigh, score.RiskTier)
			assert.Equal(t, 2, score.IntensityScore, "Expected exactly mean to land in the 1x band")
		}
	})

	t.Run("All-zero counts score the floor", func(t *testing.T) {
		scores, err := Score(map[int64]int{1: 0, 2: 0}, config)
		require.NoError(t, err)

		for _, score := range scores {
			assert.Equal(t, 1, score.IntensityScore)
		}
	})

	t.Run("Deterministic across runs", func(t *testing.T) {
		counts := map[int64]int{1: 3, 2: 14, 3: 7, 4: 1, 5: 22, 6: 9}

		first, err := Score(counts, config)
		require.NoError(t, err)
		second, err := Score(counts, config)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func tierRank(tier model.RiskTier) int {
	switch tier {
	case model.TierHigh:
		return 2
	case model.TierMedium:
		return 1
	default:
		return 0
	}
}
