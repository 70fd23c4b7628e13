package domain

import (
	"fmt"
	"math"
)

// RawScoreMatrix holds the raw per-alternative, per-criterion assessments
// that enter a scoring run. Each cell carries one or more scores; multiple
// scores arise from repeated or multi-assessor assessment. The matrix is
// append-only: scores can be added but never removed, and the criterion
// and alternative sets are fixed at construction.
type RawScoreMatrix struct {
	criteria     []Criterion
	alternatives []string
	critIndex    map[string]int
	altIndex     map[string]int
	// cells[alt][crit] holds the raw assessments for that pair.
	cells [][][]float64
}

// NewRawScoreMatrix creates an empty matrix over the given criterion and
// alternative sets. Criteria are validated for uniqueness and direction;
// alternatives must be non-empty and unique.
func NewRawScoreMatrix(criteria []Criterion, alternatives []string) (*RawScoreMatrix, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}
	if len(alternatives) == 0 {
		return nil, fmt.Errorf("at least one alternative is required")
	}

	altIndex := make(map[string]int, len(alternatives))
	for i, id := range alternatives {
		if id == "" {
			return nil, fmt.Errorf("alternative %d has an empty ID", i)
		}
		if _, dup := altIndex[id]; dup {
			return nil, fmt.Errorf("duplicate alternative ID %q", id)
		}
		altIndex[id] = i
	}

	cells := make([][][]float64, len(alternatives))
	for i := range cells {
		cells[i] = make([][]float64, len(criteria))
	}

	return &RawScoreMatrix{
		criteria:     append([]Criterion(nil), criteria...),
		alternatives: append([]string(nil), alternatives...),
		critIndex:    CriterionIndex(criteria),
		altIndex:     altIndex,
		cells:        cells,
	}, nil
}

// AddScore appends one raw assessment to the given cell. Scores must be
// finite; NaN and infinities would corrupt every downstream statistic and
// are rejected here at the boundary.
func (m *RawScoreMatrix) AddScore(altID, critID string, score float64) error {
	ai, ok := m.altIndex[altID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAlternative, altID)
	}
	ci, ok := m.critIndex[critID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCriterion, critID)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("score for (%s, %s) must be finite, got %f", altID, critID, score)
	}
	m.cells[ai][ci] = append(m.cells[ai][ci], score)
	return nil
}

// SetScores replaces the assessments of a cell wholesale. It is the bulk
// counterpart of AddScore with the same finiteness contract.
func (m *RawScoreMatrix) SetScores(altID, critID string, scores ...float64) error {
	ai, ok := m.altIndex[altID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAlternative, altID)
	}
	ci, ok := m.critIndex[critID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCriterion, critID)
	}
	for _, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("score for (%s, %s) must be finite, got %f", altID, critID, s)
		}
	}
	m.cells[ai][ci] = append([]float64(nil), scores...)
	return nil
}

// Scores returns a copy of the raw assessments for one cell.
func (m *RawScoreMatrix) Scores(altID, critID string) ([]float64, error) {
	ai, ok := m.altIndex[altID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlternative, altID)
	}
	ci, ok := m.critIndex[critID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, critID)
	}
	return append([]float64(nil), m.cells[ai][ci]...), nil
}

// ScoresAt returns a copy of the raw assessments at positional indices.
// Index validity is the caller's responsibility; it exists for engine
// loops that iterate the canonical order.
func (m *RawScoreMatrix) ScoresAt(altIdx, critIdx int) []float64 {
	return append([]float64(nil), m.cells[altIdx][critIdx]...)
}

// Criteria returns a copy of the criterion set in canonical order.
func (m *RawScoreMatrix) Criteria() []Criterion {
	return append([]Criterion(nil), m.criteria...)
}

// Alternatives returns a copy of the alternative IDs in canonical order.
func (m *RawScoreMatrix) Alternatives() []string {
	return append([]string(nil), m.alternatives...)
}

// Validate checks the completeness contract: every alternative must carry
// at least one raw score per criterion before scoring. The returned
// error wraps ErrMissingScore and names the first empty cell.
func (m *RawScoreMatrix) Validate() error {
	for ai, alt := range m.alternatives {
		for ci, crit := range m.criteria {
			if len(m.cells[ai][ci]) == 0 {
				return &MissingScoreError{AlternativeID: alt, CriterionID: crit.ID}
			}
		}
	}
	return nil
}

// Resample produces a new matrix with the same shape where every cell's
// assessments are replaced by fn's output for that cell. The receiver is
// not modified; sensitivity trials use this to bootstrap-resample without
// aliasing the base inputs.
func (m *RawScoreMatrix) Resample(fn func(altIdx, critIdx int, scores []float64) []float64) *RawScoreMatrix {
	out := &RawScoreMatrix{
		criteria:     m.criteria,
		alternatives: m.alternatives,
		critIndex:    m.critIndex,
		altIndex:     m.altIndex,
		cells:        make([][][]float64, len(m.alternatives)),
	}
	for ai := range m.cells {
		out.cells[ai] = make([][]float64, len(m.criteria))
		for ci := range m.cells[ai] {
			src := append([]float64(nil), m.cells[ai][ci]...)
			out.cells[ai][ci] = fn(ai, ci, src)
		}
	}
	return out
}

// NormalizedScoreMatrix is the derived Alternative x Criterion matrix on a
// comparable range, oriented so that higher values are always better.
// It is recomputed whenever raw scores or the normalization method change
// and is never persisted as ground truth.
type NormalizedScoreMatrix struct {
	// Criteria lists the criterion set in column order.
	Criteria []Criterion `json:"criteria"`

	// Alternatives lists alternative IDs in row order.
	Alternatives []string `json:"alternatives"`

	// Values holds normalized scores indexed [alternative][criterion].
	Values [][]float64 `json:"values"`
}

// Value returns the normalized score at positional indices.
func (m *NormalizedScoreMatrix) Value(altIdx, critIdx int) float64 {
	return m.Values[altIdx][critIdx]
}

// ColumnRange returns max-min of one criterion column. The outranker uses
// it to scale discordance; a zero range means the column cannot disagree.
func (m *NormalizedScoreMatrix) ColumnRange(critIdx int) float64 {
	if len(m.Values) == 0 {
		return 0
	}
	lo, hi := m.Values[0][critIdx], m.Values[0][critIdx]
	for _, row := range m.Values[1:] {
		v := row[critIdx]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}
