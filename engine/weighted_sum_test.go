package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policyforge/mcda/internal/domain"
)

func normalizedFixture(t *testing.T, critIDs []string, alternatives []string, values [][]float64) *domain.NormalizedScoreMatrix {
	t.Helper()
	criteria := make([]domain.Criterion, len(critIDs))
	for i, id := range critIDs {
		criteria[i] = domain.Criterion{ID: id, Direction: domain.Maximize}
	}
	return &domain.NormalizedScoreMatrix{
		Criteria:     criteria,
		Alternatives: alternatives,
		Values:       values,
	}
}

func mustWeights(t *testing.T, ids []string, weights []float64) domain.WeightVector {
	t.Helper()
	w, err := domain.NewWeightVector(ids, weights)
	require.NoError(t, err)
	return w
}

// TestWeightedSumScorer_RanksByWeightedSum verifies the core aggregation
// on a worked example: with weights 0.6/0.4 the sums come out to
// A=0.40, B=0.60, C=0.50, so the ranking is B, C, A.
func TestWeightedSumScorer_RanksByWeightedSum(t *testing.T) {
	matrix := normalizedFixture(t,
		[]string{"impact", "cost"},
		[]string{"A", "B", "C"},
		[][]float64{
			{0.0, 1.0},
			{1.0, 0.0},
			{0.5, 0.5},
		},
	)
	weights := mustWeights(t, []string{"impact", "cost"}, []float64{0.6, 0.4})

	scorer := NewWeightedSumScorer(nil)
	results, err := scorer.Score(context.Background(), matrix, weights)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "B", results[0].AlternativeID)
	assert.InDelta(t, 0.6, results[0].Score, 1e-12)
	assert.Equal(t, 1, results[0].Rank)

	assert.Equal(t, "C", results[1].AlternativeID)
	assert.InDelta(t, 0.5, results[1].Score, 1e-12)
	assert.Equal(t, 2, results[1].Rank)

	assert.Equal(t, "A", results[2].AlternativeID)
	assert.InDelta(t, 0.4, results[2].Score, 1e-12)
	assert.Equal(t, 3, results[2].Rank)
}

// TestWeightedSumScorer_TieBreakByID verifies that equal scalars rank in
// lexicographic ID order so repeated runs never shuffle ties.
func TestWeightedSumScorer_TieBreakByID(t *testing.T) {
	matrix := normalizedFixture(t,
		[]string{"c1"},
		[]string{"zeta", "alpha", "mid"},
		[][]float64{{0.5}, {0.5}, {0.9}},
	)
	weights := mustWeights(t, []string{"c1"}, []float64{1})

	scorer := NewWeightedSumScorer(nil)
	results, err := scorer.Score(context.Background(), matrix, weights)
	require.NoError(t, err)

	assert.Equal(t, []string{"mid", "alpha", "zeta"},
		[]string{results[0].AlternativeID, results[1].AlternativeID, results[2].AlternativeID})
	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, 3, results[2].Rank)
}

// TestWeightedSumScorer_Monotonicity verifies that raising one criterion
// score, all else equal, never lowers an alternative's scalar.
func TestWeightedSumScorer_Monotonicity(t *testing.T) {
	weights := mustWeights(t, []string{"c1", "c2"}, []float64{0.5, 0.5})
	scorer := NewWeightedSumScorer(nil)

	base := normalizedFixture(t, []string{"c1", "c2"}, []string{"a"}, [][]float64{{0.4, 0.4}})
	bumped := normalizedFixture(t, []string{"c1", "c2"}, []string{"a"}, [][]float64{{0.4, 0.7}})

	baseResults, err := scorer.Score(context.Background(), base, weights)
	require.NoError(t, err)
	bumpedResults, err := scorer.Score(context.Background(), bumped, weights)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, bumpedResults[0].Score, baseResults[0].Score)
}

// TestWeightedSumScorer_AppliesTransform verifies the optional
// post-processing hook runs before ranking.
func TestWeightedSumScorer_AppliesTransform(t *testing.T) {
	matrix := normalizedFixture(t,
		[]string{"c1"},
		[]string{"low", "high"},
		[][]float64{{0.2}, {0.8}},
	)
	weights := mustWeights(t, []string{"c1"}, []float64{1})

	// Invert scalars so ranking flips relative to the raw sums.
	scorer := NewWeightedSumScorer(func(_ string, score float64) float64 {
		return 1 - score
	})
	results, err := scorer.Score(context.Background(), matrix, weights)
	require.NoError(t, err)

	assert.Equal(t, "low", results[0].AlternativeID)
	assert.InDelta(t, 0.8, results[0].Score, 1e-12)
}

// TestWeightedSumScorer_WeightMismatch verifies that a weight vector not
// covering the matrix criteria fails before any arithmetic.
func TestWeightedSumScorer_WeightMismatch(t *testing.T) {
	matrix := normalizedFixture(t, []string{"c1", "c2"}, []string{"a"}, [][]float64{{0.5, 0.5}})
	weights := mustWeights(t, []string{"c1", "other"}, []float64{0.5, 0.5})

	scorer := NewWeightedSumScorer(nil)
	_, err := scorer.Score(context.Background(), matrix, weights)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownCriterion)
}

// TestWeightedSumScorer_ContextCancelled verifies cancellation is honored
// before scoring starts.
func TestWeightedSumScorer_ContextCancelled(t *testing.T) {
	matrix := normalizedFixture(t, []string{"c1"}, []string{"a"}, [][]float64{{0.5}})
	weights := mustWeights(t, []string{"c1"}, []float64{1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scorer := NewWeightedSumScorer(nil)
	_, err := scorer.Score(ctx, matrix, weights)
	assert.ErrorIs(t, err, context.Canceled)
}
