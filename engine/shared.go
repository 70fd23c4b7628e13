// Package engine provides the compute components of the multi-criteria
// scoring engine: normalization, AHP weight derivation, weighted-sum and
// ELECTRE aggregation, Monte Carlo sensitivity analysis, and reliability
// checking. Every component is stateless after construction and safe for
// concurrent use.
package engine

import (
	"github.com/go-playground/validator/v10"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
