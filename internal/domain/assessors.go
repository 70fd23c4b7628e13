package domain

import (
	"fmt"
	"math"
)

// MultiAssessorMatrix holds Alternative x Criterion x Assessor raw scores
// for reliability analysis. Unlike RawScoreMatrix, assessor identity is
// preserved so agreement statistics can align ratings per assessor.
// Cells may be sparse: not every assessor scores every cell, and the
// reliability checker discloses how many cells it had to exclude.
type MultiAssessorMatrix struct {
	criteria     []Criterion
	alternatives []string
	assessors    []string
	critIndex    map[string]int
	altIndex     map[string]int
	assIndex     map[string]int
	// scores[alt][crit][assessor]; NaN marks an absent rating.
	scores [][][]float64
}

// NewMultiAssessorMatrix creates an empty matrix over fixed criterion,
// alternative, and assessor sets.
func NewMultiAssessorMatrix(criteria []Criterion, alternatives, assessors []string) (*MultiAssessorMatrix, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}
	if len(alternatives) == 0 {
		return nil, fmt.Errorf("at least one alternative is required")
	}
	if len(assessors) == 0 {
		return nil, fmt.Errorf("at least one assessor is required")
	}

	altIndex := make(map[string]int, len(alternatives))
	for i, id := range alternatives {
		if _, dup := altIndex[id]; dup || id == "" {
			return nil, fmt.Errorf("alternative IDs must be unique and non-empty, got %q", id)
		}
		altIndex[id] = i
	}
	assIndex := make(map[string]int, len(assessors))
	for i, id := range assessors {
		if _, dup := assIndex[id]; dup || id == "" {
			return nil, fmt.Errorf("assessor IDs must be unique and non-empty, got %q", id)
		}
		assIndex[id] = i
	}

	scores := make([][][]float64, len(alternatives))
	for ai := range scores {
		scores[ai] = make([][]float64, len(criteria))
		for ci := range scores[ai] {
			row := make([]float64, len(assessors))
			for k := range row {
				row[k] = math.NaN()
			}
			scores[ai][ci] = row
		}
	}

	return &MultiAssessorMatrix{
		criteria:     append([]Criterion(nil), criteria...),
		alternatives: append([]string(nil), alternatives...),
		assessors:    append([]string(nil), assessors...),
		critIndex:    CriterionIndex(criteria),
		altIndex:     altIndex,
		assIndex:     assIndex,
		scores:       scores,
	}, nil
}

// SetScore records one assessor's rating for a cell, replacing any prior
// rating by the same assessor. Scores must be finite.
func (m *MultiAssessorMatrix) SetScore(altID, critID, assessorID string, score float64) error {
	ai, ok := m.altIndex[altID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAlternative, altID)
	}
	ci, ok := m.critIndex[critID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCriterion, critID)
	}
	ki, ok := m.assIndex[assessorID]
	if !ok {
		return fmt.Errorf("unknown assessor %q", assessorID)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("score for (%s, %s, %s) must be finite, got %f", altID, critID, assessorID, score)
	}
	m.scores[ai][ci][ki] = score
	return nil
}

// Criteria returns a copy of the criterion set in canonical order.
func (m *MultiAssessorMatrix) Criteria() []Criterion {
	return append([]Criterion(nil), m.criteria...)
}

// Alternatives returns a copy of the alternative IDs in canonical order.
func (m *MultiAssessorMatrix) Alternatives() []string {
	return append([]string(nil), m.alternatives...)
}

// Assessors returns a copy of the assessor IDs in canonical order.
func (m *MultiAssessorMatrix) Assessors() []string {
	return append([]string(nil), m.assessors...)
}

// CellRatings returns the ratings present in one cell, in assessor order,
// skipping assessors who did not rate it.
func (m *MultiAssessorMatrix) CellRatings(altIdx, critIdx int) []float64 {
	out := make([]float64, 0, len(m.assessors))
	for _, v := range m.scores[altIdx][critIdx] {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// CellMean returns the mean rating of one cell and whether the cell holds
// any ratings at all.
func (m *MultiAssessorMatrix) CellMean(altIdx, critIdx int) (float64, bool) {
	ratings := m.CellRatings(altIdx, critIdx)
	if len(ratings) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range ratings {
		sum += v
	}
	return sum / float64(len(ratings)), true
}
