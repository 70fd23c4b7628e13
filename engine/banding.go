package engine

import (
	"fmt"
	"sort"

	"github.com/policyforge/mcda/internal/ports"
)

// ScoreBand maps a score cutoff to the value assigned to everything at
// or above it (until the next band takes over).
type ScoreBand struct {
	// Min is the inclusive lower cutoff for this band.
	Min float64 `yaml:"min" json:"min"`

	// Score is the value assigned to scalars falling in this band.
	Score float64 `yaml:"score" json:"score"`
}

// ThresholdBander is an optional ScoreTransform that snaps continuous
// scalars onto a discrete band table. Banding is a presentation-layer
// business rule, not an engine invariant: the core scorers stay
// continuous and callers opt into this transform explicitly. Scores
// below every band pass through unchanged so the table's coverage gaps
// stay visible instead of being silently flattened.
type ThresholdBander struct {
	// bands is sorted descending by Min so the first match wins.
	bands []ScoreBand
}

// NewThresholdBander validates and sorts a band table. Duplicate cutoffs
// are rejected because they would make band assignment order-dependent.
func NewThresholdBander(bands []ScoreBand) (*ThresholdBander, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("at least one score band is required")
	}
	sorted := append([]ScoreBand(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Min == sorted[i-1].Min {
			return nil, fmt.Errorf("duplicate band cutoff %g", sorted[i].Min)
		}
	}
	return &ThresholdBander{bands: sorted}, nil
}

// Transform implements ports.ScoreTransform by returning the band value
// for the highest cutoff at or below score.
func (b *ThresholdBander) Transform(alternativeID string, score float64) float64 {
	for _, band := range b.bands {
		if score >= band.Min {
			return band.Score
		}
	}
	return score
}

var _ ports.ScoreTransform = (*ThresholdBander)(nil).Transform
