package engine

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/policyforge/mcda/internal/domain"
)

// randomIndex holds Saaty's random consistency index values for matrix
// orders 1 through 15, indexed by order.
var randomIndex = [...]float64{
	0,    // unused
	0.00, // n=1
	0.00, // n=2
	0.58,
	0.90,
	1.12,
	1.24,
	1.32,
	1.41,
	1.45,
	1.49,
	1.51,
	1.48,
	1.56,
	1.57,
	1.59, // n=15
}

// maxPairwiseOrder is the largest matrix order the random-index table
// covers. Larger matrices indicate the criterion set should be grouped
// into a hierarchy instead.
const maxPairwiseOrder = 15

// WeightDeriverConfig configures the AHP weight deriver.
type WeightDeriverConfig struct {
	// MaxIterations caps the power iteration; exceeding it fails with a
	// ConvergenceError rather than returning a half-settled vector.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations" validate:"min=1"`

	// Tolerance is the eigenvalue change below which iteration stops.
	Tolerance float64 `yaml:"tolerance" json:"tolerance" validate:"gt=0"`

	// ConsistencyLimit is the consistency ratio above which the report
	// is flagged unacceptable. 0.10 by convention.
	ConsistencyLimit float64 `yaml:"consistency_limit" json:"consistency_limit" validate:"gt=0"`
}

// DefaultWeightDeriverConfig returns the conventional AHP settings:
// a 1000-iteration cap, 1e-12 eigenvalue tolerance, and the 0.10
// consistency limit.
func DefaultWeightDeriverConfig() WeightDeriverConfig {
	return WeightDeriverConfig{
		MaxIterations:    1000,
		Tolerance:        1e-12,
		ConsistencyLimit: 0.10,
	}
}

// WeightDeriver turns a pairwise comparison matrix into a criterion
// weight vector via the principal-eigenvector method, with a consistency
// report diagnosing how coherent the judgments were. Inconsistent
// matrices still yield weights: the deriver classifies, it does not veto.
type WeightDeriver struct {
	config WeightDeriverConfig
}

// NewWeightDeriver creates a WeightDeriver with a validated configuration.
func NewWeightDeriver(config WeightDeriverConfig) (*WeightDeriver, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &WeightDeriver{config: config}, nil
}

// UnmarshalParameters decodes YAML configuration and replaces the
// deriver's settings after validation.
func (d *WeightDeriver) UnmarshalParameters(params yaml.Node) error {
	config := DefaultWeightDeriverConfig()
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	d.config = config
	return nil
}

// DeriveWeights computes the principal eigenvector of the pairwise matrix
// by power iteration, normalizes it to sum to one, and attaches a
// consistency report. Iteration that fails to settle within the cap
// fails with a ConvergenceError. Matrices of order 1 and 2 cannot be
// inconsistent and report a ratio of zero by definition.
func (d *WeightDeriver) DeriveWeights(pm *domain.PairwiseMatrix) (domain.WeightVector, domain.ConsistencyReport, error) {
	if pm == nil {
		return domain.WeightVector{}, domain.ConsistencyReport{}, fmt.Errorf("pairwise matrix is required")
	}
	n := pm.Order()
	if n > maxPairwiseOrder {
		return domain.WeightVector{}, domain.ConsistencyReport{},
			fmt.Errorf("pairwise matrix order %d exceeds the supported maximum of %d", n, maxPairwiseOrder)
	}

	eigvec, lambda, err := d.principalEigenvector(pm)
	if err != nil {
		return domain.WeightVector{}, domain.ConsistencyReport{}, err
	}

	weights, err := domain.NormalizedWeightVector(pm.CriterionIDs(), eigvec)
	if err != nil {
		return domain.WeightVector{}, domain.ConsistencyReport{}, fmt.Errorf("normalizing eigenvector: %w", err)
	}

	report := domain.ConsistencyReport{Order: n, Lambda: lambda}
	if n > 2 {
		report.ConsistencyIndex = (lambda - float64(n)) / float64(n-1)
		report.ConsistencyRatio = report.ConsistencyIndex / randomIndex[n]
	}
	report.Acceptable = report.ConsistencyRatio <= d.config.ConsistencyLimit

	return weights, report, nil
}

// principalEigenvector runs power iteration on the matrix, returning the
// dominant eigenvector (sum-normalized) and eigenvalue estimate.
func (d *WeightDeriver) principalEigenvector(pm *domain.PairwiseMatrix) ([]float64, float64, error) {
	n := pm.Order()

	vec := make([]float64, n)
	for i := range vec {
		vec[i] = 1 / float64(n)
	}

	next := make([]float64, n)
	lambda := 0.0
	residual := math.Inf(1)
	for iter := 0; iter < d.config.MaxIterations; iter++ {
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				sum += pm.Entry(i, j) * vec[j]
			}
			next[i] = sum
		}

		total := 0.0
		for _, v := range next {
			total += v
		}
		// A positive matrix keeps the iterate strictly positive, so the
		// total cannot vanish; guard anyway against pathological input.
		if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
			return nil, 0, &domain.ConvergenceError{Iterations: iter, Residual: math.Inf(1)}
		}

		// Rayleigh-style eigenvalue estimate: mean component ratio of
		// A*v to v before renormalization.
		newLambda := 0.0
		for i := range next {
			newLambda += next[i] / vec[i]
		}
		newLambda /= float64(n)

		for i := range next {
			next[i] /= total
		}
		residual = math.Abs(newLambda - lambda)
		vec, next = next, vec
		lambda = newLambda

		if residual < d.config.Tolerance {
			return append([]float64(nil), vec...), lambda, nil
		}
	}

	return nil, 0, &domain.ConvergenceError{Iterations: d.config.MaxIterations, Residual: residual}
}
