package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/policyforge/mcda/internal/domain"
	"github.com/policyforge/mcda/internal/ports"
)

var _ ports.Scorer = (*WeightedSumScorer)(nil)

// WeightedSumScorer is the default, fully compensatory aggregation model:
// each alternative's scalar is the weight-dot-product of its normalized
// criterion scores. Ranking is a stable descending sort with ties broken
// by alternative ID, so identical inputs always produce identical output.
//
// The scorer is stateless and safe for concurrent use.
type WeightedSumScorer struct {
	// transform is an optional caller-supplied post-processing step
	// applied to scalars before ranking. Discrete banding and
	// near-threshold bonus rules live here, never in the core sum.
	transform ports.ScoreTransform
}

// NewWeightedSumScorer creates a weighted-sum scorer. A nil transform
// leaves scalars untouched.
func NewWeightedSumScorer(transform ports.ScoreTransform) *WeightedSumScorer {
	return &WeightedSumScorer{transform: transform}
}

// Name returns the scorer identifier used in reports and metric labels.
func (s *WeightedSumScorer) Name() string { return "weighted_sum" }

// Score computes per-alternative weighted sums and ranks them. The
// weight vector must cover exactly the matrix's criteria; mismatches
// fail before any arithmetic happens.
func (s *WeightedSumScorer) Score(
	ctx context.Context,
	matrix *domain.NormalizedScoreMatrix,
	weights domain.WeightVector,
) ([]domain.ScoreResult, error) {
	if matrix == nil {
		return nil, fmt.Errorf("normalized score matrix is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aligned, err := weights.AlignedTo(matrix.Criteria)
	if err != nil {
		return nil, fmt.Errorf("aligning weights: %w", err)
	}

	results := make([]domain.ScoreResult, len(matrix.Alternatives))
	for ai, altID := range matrix.Alternatives {
		sum := 0.0
		for ci, w := range aligned {
			sum += w * matrix.Values[ai][ci]
		}
		if s.transform != nil {
			sum = s.transform(altID, sum)
		}
		results[ai] = domain.ScoreResult{AlternativeID: altID, Score: sum}
	}

	rankResults(results)
	return results, nil
}

// rankResults sorts results descending by score, breaking ties by
// alternative ID ascending, and assigns 1-based ranks.
func rankResults(results []domain.ScoreResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].AlternativeID < results[j].AlternativeID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}
