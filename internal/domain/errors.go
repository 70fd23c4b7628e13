package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural contract violations. Every violation is
// raised synchronously to the caller; the engine never repairs input or
// logs-and-continues, because a silently wrong score is worse than a loud
// failure.
var (
	// ErrDegenerateScale indicates a zero-variance criterion column under
	// a normalization method that cannot handle it.
	ErrDegenerateScale = errors.New("degenerate scale")

	// ErrReciprocityViolation indicates a pairwise comparison matrix whose
	// diagonal is not 1 or whose entries are not reciprocal.
	ErrReciprocityViolation = errors.New("reciprocity violation")

	// ErrConvergence indicates the eigenvector iteration failed to
	// converge within the configured iteration cap.
	ErrConvergence = errors.New("eigenvector iteration did not converge")

	// ErrInvalidThreshold indicates an outranking threshold outside [0,1],
	// or a threshold pair that makes the relation degenerate.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInsufficientIterations indicates a sensitivity run was requested
	// with too few trials for reliable percentile estimates.
	ErrInsufficientIterations = errors.New("insufficient iterations")

	// ErrInsufficientData indicates too few assessors, criteria, or
	// alternatives for a reliability statistic.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMissingScore indicates an alternative/criterion cell with no raw
	// assessment. Missing values are a contract violation, never defaulted.
	ErrMissingScore = errors.New("missing raw score")

	// ErrUnknownCriterion indicates a lookup or weight vector referencing
	// a criterion outside the study's fixed criterion set.
	ErrUnknownCriterion = errors.New("unknown criterion")

	// ErrUnknownAlternative indicates a lookup referencing an alternative
	// not present in the matrix.
	ErrUnknownAlternative = errors.New("unknown alternative")

	// ErrWeightSum indicates a weight vector that is negative somewhere or
	// does not sum to one.
	ErrWeightSum = errors.New("weights must be non-negative and sum to 1")
)

// DegenerateScaleError reports which criterion column collapsed under
// which normalization method, so the caller can drop the criterion or
// supply a fallback constant. The engine does not guess.
type DegenerateScaleError struct {
	// CriterionID is the column that has no usable spread.
	CriterionID string

	// Method is the normalization method that could not handle it.
	Method string
}

// Error implements the error interface.
func (e *DegenerateScaleError) Error() string {
	return fmt.Sprintf("%v: criterion %q has zero spread under %s normalization", ErrDegenerateScale, e.CriterionID, e.Method)
}

// Unwrap returns ErrDegenerateScale so callers can match with errors.Is.
func (e *DegenerateScaleError) Unwrap() error { return ErrDegenerateScale }

// ReciprocityViolationError pinpoints the offending entry of a pairwise
// comparison matrix. Violations are rejected, never auto-corrected.
type ReciprocityViolationError struct {
	// Row and Col locate the entry that breaks the invariant.
	Row, Col int

	// Got is the offending value; Want is the value reciprocity demands.
	Got, Want float64
}

// Error implements the error interface.
func (e *ReciprocityViolationError) Error() string {
	return fmt.Sprintf("%v: entry (%d,%d) is %g, want %g", ErrReciprocityViolation, e.Row, e.Col, e.Got, e.Want)
}

// Unwrap returns ErrReciprocityViolation so callers can match with errors.Is.
func (e *ReciprocityViolationError) Unwrap() error { return ErrReciprocityViolation }

// ConvergenceError carries the iteration cap that was exhausted before
// the principal eigenvector stabilized.
type ConvergenceError struct {
	// Iterations is the cap that was reached.
	Iterations int

	// Residual is the last observed change in the eigenvalue estimate.
	Residual float64
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d iterations (residual %g)", ErrConvergence, e.Iterations, e.Residual)
}

// Unwrap returns ErrConvergence so callers can match with errors.Is.
func (e *ConvergenceError) Unwrap() error { return ErrConvergence }

// MissingScoreError identifies the empty cell that blocked a scoring run.
type MissingScoreError struct {
	AlternativeID string
	CriterionID   string
}

// Error implements the error interface.
func (e *MissingScoreError) Error() string {
	return fmt.Sprintf("%v: alternative %q, criterion %q", ErrMissingScore, e.AlternativeID, e.CriterionID)
}

// Unwrap returns ErrMissingScore so callers can match with errors.Is.
func (e *MissingScoreError) Unwrap() error { return ErrMissingScore }

// ValidationError collects multiple validation failures for one entity so
// callers see every problem at once instead of fixing them one at a time.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Errors: make([]string, 0)}
}
