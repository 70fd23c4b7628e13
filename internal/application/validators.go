package application

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/policyforge/mcda/internal/domain"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// ValidateStudySemantics performs the cross-field checks that struct
// tags cannot express: criterion uniqueness, weight coverage, and
// pairwise matrix shape. All problems are collected into one
// ValidationError so callers see every issue at once.
func ValidateStudySemantics(config *StudyConfig) error {
	verr := domain.NewValidationError("study config")

	if err := domain.ValidateCriteria(config.Criteria); err != nil {
		verr.AddError(err.Error())
	}

	validateWeightsConfig(config, verr)
	validateAggregationConfig(config, verr)

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// validateWeightsConfig checks that the declared weight source carries
// exactly the data it needs, and nothing that belongs to another source.
func validateWeightsConfig(config *StudyConfig, verr *domain.ValidationError) {
	w := config.Weights
	switch w.Source {
	case SourceExplicit:
		if len(w.Explicit) == 0 {
			verr.AddError("weights.source is explicit but weights.explicit is empty")
			return
		}
		sum := 0.0
		for _, c := range config.Criteria {
			weight, ok := w.Explicit[c.ID]
			if !ok {
				verr.AddError(fmt.Sprintf("weights.explicit is missing criterion %q", c.ID))
				continue
			}
			if weight < 0 {
				verr.AddError(fmt.Sprintf("weights.explicit[%q] is negative", c.ID))
			}
			sum += weight
		}
		for id := range w.Explicit {
			known := false
			for _, c := range config.Criteria {
				if c.ID == id {
					known = true
					break
				}
			}
			if !known {
				verr.AddError(fmt.Sprintf("weights.explicit references unknown criterion %q", id))
			}
		}
		if math.Abs(sum-1.0) > 1e-9 {
			verr.AddError(fmt.Sprintf("weights.explicit sums to %.12f, want 1.0", sum))
		}

	case SourcePairwise:
		if len(w.Pairwise) != len(config.Criteria) {
			verr.AddError(fmt.Sprintf("weights.pairwise has %d rows, want %d (one per criterion)",
				len(w.Pairwise), len(config.Criteria)))
			return
		}
		for i, row := range w.Pairwise {
			if len(row) != len(config.Criteria) {
				verr.AddError(fmt.Sprintf("weights.pairwise row %d has %d entries, want %d",
					i, len(row), len(config.Criteria)))
			}
		}

	case SourceUniform:
		if len(w.Explicit) > 0 || len(w.Pairwise) > 0 {
			verr.AddError("weights.source is uniform but explicit or pairwise data is present")
		}
	}
}

// validateAggregationConfig checks aggregation settings that only apply
// to particular methods.
func validateAggregationConfig(config *StudyConfig, verr *domain.ValidationError) {
	if config.Aggregation.Method != MethodElectre && config.Aggregation.Electre != nil {
		verr.AddError("aggregation.electre is set but aggregation.method is not electre")
	}
}
