// Package domain defines the core data model for the multi-criteria
// scoring engine: criteria, score matrices, weight vectors, and the
// report types produced by scoring, sensitivity, and reliability runs.
// All types are plain values; the engine holds no state between calls.
package domain

import "fmt"

// Direction declares which end of a criterion's raw scale is preferable.
// The Normalizer uses it to orient every criterion so that downstream
// components can assume higher normalized values are always better.
type Direction string

const (
	// Maximize marks a criterion where larger raw scores are better
	// (e.g., coverage, durability).
	Maximize Direction = "maximize"

	// Minimize marks a criterion where smaller raw scores are better
	// (e.g., cost, implementation time).
	Minimize Direction = "minimize"
)

// Valid reports whether the direction is one of the supported values.
func (d Direction) Valid() bool { return d == Maximize || d == Minimize }

// Criterion describes one dimension along which alternatives are judged.
// The set of criteria is fixed for the duration of a scoring run; weights
// may be recomputed by the AHP deriver, but criteria are never added or
// removed mid-run.
type Criterion struct {
	// ID uniquely identifies this criterion within a study.
	ID string `json:"id" yaml:"id" validate:"required,min=1,max=100"`

	// Name is the human-readable label used by report consumers.
	Name string `json:"name" yaml:"name" validate:"max=255"`

	// Direction declares whether higher or lower raw scores are better.
	Direction Direction `json:"direction" yaml:"direction" validate:"required,oneof=maximize minimize"`
}

// ValidateCriteria checks that a criterion set is usable: non-empty,
// unique IDs, and valid directions. It returns a ValidationError listing
// every problem found rather than stopping at the first.
func ValidateCriteria(criteria []Criterion) error {
	verr := NewValidationError("criteria")
	if len(criteria) == 0 {
		verr.AddError("at least one criterion is required")
		return verr
	}

	seen := make(map[string]struct{}, len(criteria))
	for i, c := range criteria {
		if c.ID == "" {
			verr.AddError(fmt.Sprintf("criterion %d has an empty ID", i))
			continue
		}
		if _, dup := seen[c.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate criterion ID %q", c.ID))
		}
		seen[c.ID] = struct{}{}
		if !c.Direction.Valid() {
			verr.AddError(fmt.Sprintf("criterion %q has invalid direction %q", c.ID, c.Direction))
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// CriterionIndex maps criterion IDs to their position in the canonical
// criterion order. All matrices in the engine share this ordering so
// column indices stay aligned across components.
func CriterionIndex(criteria []Criterion) map[string]int {
	idx := make(map[string]int, len(criteria))
	for i, c := range criteria {
		idx[c.ID] = i
	}
	return idx
}
