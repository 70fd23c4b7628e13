package domain

import (
	"fmt"
	"math"
)

// reciprocityTolerance bounds how far entry (j,i) may drift from
// 1/entry(i,j) before the matrix is rejected.
const reciprocityTolerance = 1e-9

// PairwiseMatrix is a square matrix of relative importance judgments over
// criteria: entry (i,j) states how many times more important criterion i
// is than criterion j, conventionally on the 1/9..9 scale. The matrix is
// validated once at construction; the invariants (diagonal exactly 1,
// entry (j,i) equal to 1/entry(i,j)) are enforced, never auto-corrected.
type PairwiseMatrix struct {
	criterionIDs []string
	entries      [][]float64
}

// NewPairwiseMatrix validates and wraps a pairwise comparison matrix.
// It fails with ReciprocityViolationError on any diagonal or reciprocity
// violation, and with a plain error on shape problems or non-positive
// entries.
func NewPairwiseMatrix(criterionIDs []string, entries [][]float64) (*PairwiseMatrix, error) {
	n := len(criterionIDs)
	if n == 0 {
		return nil, fmt.Errorf("pairwise matrix requires at least one criterion")
	}
	if len(entries) != n {
		return nil, fmt.Errorf("pairwise matrix has %d rows, want %d", len(entries), n)
	}

	seen := make(map[string]struct{}, n)
	for _, id := range criterionIDs {
		if _, dup := seen[id]; dup || id == "" {
			return nil, fmt.Errorf("criterion IDs must be unique and non-empty, got %q", id)
		}
		seen[id] = struct{}{}
	}

	for i := range entries {
		if len(entries[i]) != n {
			return nil, fmt.Errorf("pairwise matrix row %d has %d entries, want %d", i, len(entries[i]), n)
		}
		for j, v := range entries[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return nil, fmt.Errorf("pairwise entry (%d,%d) must be a positive finite number, got %g", i, j, v)
			}
		}
	}

	for i := 0; i < n; i++ {
		if math.Abs(entries[i][i]-1) > reciprocityTolerance {
			return nil, &ReciprocityViolationError{Row: i, Col: i, Got: entries[i][i], Want: 1}
		}
		for j := i + 1; j < n; j++ {
			want := 1 / entries[i][j]
			if math.Abs(entries[j][i]-want) > reciprocityTolerance {
				return nil, &ReciprocityViolationError{Row: j, Col: i, Got: entries[j][i], Want: want}
			}
		}
	}

	copied := make([][]float64, n)
	for i := range entries {
		copied[i] = append([]float64(nil), entries[i]...)
	}
	return &PairwiseMatrix{
		criterionIDs: append([]string(nil), criterionIDs...),
		entries:      copied,
	}, nil
}

// ConsistentPairwiseMatrix builds a perfectly consistent matrix from a
// known priority vector: entry (i,j) is priorities[i]/priorities[j].
// A matrix built this way has consistency ratio zero by construction.
func ConsistentPairwiseMatrix(criterionIDs []string, priorities []float64) (*PairwiseMatrix, error) {
	if len(criterionIDs) != len(priorities) {
		return nil, fmt.Errorf("criterion count (%d) and priority count (%d) differ", len(criterionIDs), len(priorities))
	}
	for i, p := range priorities {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return nil, fmt.Errorf("priority for %q must be positive and finite, got %g", criterionIDs[i], p)
		}
	}
	n := len(priorities)
	entries := make([][]float64, n)
	for i := range entries {
		entries[i] = make([]float64, n)
		for j := range entries[i] {
			entries[i][j] = priorities[i] / priorities[j]
		}
	}
	return NewPairwiseMatrix(criterionIDs, entries)
}

// Order returns the matrix dimension.
func (m *PairwiseMatrix) Order() int { return len(m.criterionIDs) }

// CriterionIDs returns a copy of the covered criterion IDs in order.
func (m *PairwiseMatrix) CriterionIDs() []string {
	return append([]string(nil), m.criterionIDs...)
}

// Entry returns the judgment at (i,j).
func (m *PairwiseMatrix) Entry(i, j int) float64 { return m.entries[i][j] }

// Row returns a copy of one row of judgments.
func (m *PairwiseMatrix) Row(i int) []float64 {
	return append([]float64(nil), m.entries[i]...)
}
