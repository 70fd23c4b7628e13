package domain

import (
	"fmt"
	"math"
)

// weightSumTolerance bounds how far a weight vector's sum may drift from
// one before it is rejected.
const weightSumTolerance = 1e-9

// WeightVector maps each criterion to a non-negative weight, with the
// invariant that weights sum to 1.0. The invariant is checked at
// construction, after every derivation, and after every manual edit;
// a vector that fails it never enters the engine.
type WeightVector struct {
	criterionIDs []string
	weights      []float64
	index        map[string]int
}

// NewWeightVector builds a weight vector over the given criteria. It
// fails with ErrWeightSum when any weight is negative or non-finite, or
// when the sum is not 1.0 within tolerance.
func NewWeightVector(criterionIDs []string, weights []float64) (WeightVector, error) {
	if len(criterionIDs) == 0 {
		return WeightVector{}, fmt.Errorf("weight vector requires at least one criterion")
	}
	if len(criterionIDs) != len(weights) {
		return WeightVector{}, fmt.Errorf("criterion count (%d) and weight count (%d) differ", len(criterionIDs), len(weights))
	}

	index := make(map[string]int, len(criterionIDs))
	sum := 0.0
	for i, id := range criterionIDs {
		if _, dup := index[id]; dup {
			return WeightVector{}, fmt.Errorf("duplicate criterion ID %q in weight vector", id)
		}
		index[id] = i

		w := weights[i]
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return WeightVector{}, fmt.Errorf("%w: weight for %q is %g", ErrWeightSum, id, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return WeightVector{}, fmt.Errorf("%w: sum is %.12f", ErrWeightSum, sum)
	}

	return WeightVector{
		criterionIDs: append([]string(nil), criterionIDs...),
		weights:      append([]float64(nil), weights...),
		index:        index,
	}, nil
}

// NormalizedWeightVector rescales arbitrary non-negative weights so they
// sum to one, then builds a vector. It fails when the raw sum is zero or
// any weight is negative.
func NormalizedWeightVector(criterionIDs []string, raw []float64) (WeightVector, error) {
	if len(criterionIDs) != len(raw) {
		return WeightVector{}, fmt.Errorf("criterion count (%d) and weight count (%d) differ", len(criterionIDs), len(raw))
	}
	sum := 0.0
	for i, w := range raw {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return WeightVector{}, fmt.Errorf("%w: weight for %q is %g", ErrWeightSum, criterionIDs[i], w)
		}
		sum += w
	}
	if sum <= 0 {
		return WeightVector{}, fmt.Errorf("%w: all weights are zero", ErrWeightSum)
	}
	scaled := make([]float64, len(raw))
	for i, w := range raw {
		scaled[i] = w / sum
	}
	// Absorb accumulated rounding into the largest weight so the sum is
	// exact. The adjustment is at most a few ULPs.
	total, maxIdx := 0.0, 0
	for i, w := range scaled {
		total += w
		if w > scaled[maxIdx] {
			maxIdx = i
		}
	}
	scaled[maxIdx] += 1.0 - total
	return NewWeightVector(criterionIDs, scaled)
}

// UniformWeights assigns every criterion the same weight.
func UniformWeights(criterionIDs []string) (WeightVector, error) {
	raw := make([]float64, len(criterionIDs))
	for i := range raw {
		raw[i] = 1
	}
	return NormalizedWeightVector(criterionIDs, raw)
}

// Weight returns the weight for a criterion ID and whether it exists.
func (w WeightVector) Weight(id string) (float64, bool) {
	i, ok := w.index[id]
	if !ok {
		return 0, false
	}
	return w.weights[i], true
}

// Len returns the number of criteria covered by the vector.
func (w WeightVector) Len() int { return len(w.criterionIDs) }

// CriterionIDs returns a copy of the covered criterion IDs in order.
func (w WeightVector) CriterionIDs() []string {
	return append([]string(nil), w.criterionIDs...)
}

// Weights returns a copy of the weights in criterion order.
func (w WeightVector) Weights() []float64 {
	return append([]float64(nil), w.weights...)
}

// AlignedTo projects the vector onto the column order of the given
// criterion set. It fails with ErrUnknownCriterion when the vector does
// not cover a criterion, so weight/matrix mismatches surface before any
// arithmetic happens.
func (w WeightVector) AlignedTo(criteria []Criterion) ([]float64, error) {
	if len(criteria) != len(w.criterionIDs) {
		return nil, fmt.Errorf("weight vector covers %d criteria, matrix has %d", len(w.criterionIDs), len(criteria))
	}
	out := make([]float64, len(criteria))
	for i, c := range criteria {
		wi, ok := w.index[c.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q not covered by weight vector", ErrUnknownCriterion, c.ID)
		}
		out[i] = w.weights[wi]
	}
	return out, nil
}
