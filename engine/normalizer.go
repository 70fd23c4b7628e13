package engine

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/policyforge/mcda/internal/domain"
)

// Method selects how raw criterion columns are rescaled onto a
// comparable range.
type Method string

// Supported normalization methods.
const (
	// MethodMinMax rescales to [0,1] via (x - min) / (max - min).
	MethodMinMax Method = "minmax"

	// MethodZScore centers and scales via (x - mean) / stdev.
	MethodZScore Method = "zscore"

	// MethodRobust centers and scales via (x - median) / IQR, which
	// resists outliers better than z-scores.
	MethodRobust Method = "robust"

	// MethodVector divides by the column's Euclidean norm.
	MethodVector Method = "vector"

	// MethodSum divides by the column sum, yielding shares of one.
	MethodSum Method = "sum"
)

// Bounded reports whether the method maps onto a bounded range, which
// determines how lower-is-better criteria are inverted.
func (m Method) Bounded() bool { return m == MethodMinMax || m == MethodSum }

// NormalizerConfig configures a Normalizer. Multi-assessment cells are
// collapsed to their mean before normalization; bootstrap resampling in
// the sensitivity analyzer re-collapses per trial.
type NormalizerConfig struct {
	// Method selects the rescaling formula applied per criterion column.
	Method Method `yaml:"method" json:"method" validate:"required,oneof=minmax zscore robust vector sum"`
}

// DefaultNormalizerConfig returns min-max normalization, the method whose
// [0,1] output every downstream default is calibrated against.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{Method: MethodMinMax}
}

// Normalizer rescales raw per-criterion values onto a comparable range
// and orients every column so that higher normalized values are better.
// It is a pure function over its input; the raw matrix is never modified.
type Normalizer struct {
	config NormalizerConfig
}

// NewNormalizer creates a Normalizer with a validated configuration.
func NewNormalizer(config NormalizerConfig) (*Normalizer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Normalizer{config: config}, nil
}

// Method returns the configured normalization method.
func (n *Normalizer) Method() Method { return n.config.Method }

// UnmarshalParameters decodes YAML configuration and replaces the
// normalizer's settings after validation.
func (n *Normalizer) UnmarshalParameters(params yaml.Node) error {
	var config NormalizerConfig
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	n.config = config
	return nil
}

// Normalize collapses each cell to its mean assessment and rescales every
// criterion column with the configured method. Columns declared
// lower-is-better are inverted before the matrix leaves the normalizer,
// so downstream components treat higher values as better uniformly.
//
// A column with no usable spread (max == min, zero stdev, zero IQR, zero
// norm, or zero sum, depending on the method) fails with a
// DegenerateScaleError naming the criterion; the caller must drop the
// criterion or supply a fallback constant.
func (n *Normalizer) Normalize(raw *domain.RawScoreMatrix) (*domain.NormalizedScoreMatrix, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw score matrix is required")
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	criteria := raw.Criteria()
	alternatives := raw.Alternatives()

	values := make([][]float64, len(alternatives))
	for ai := range values {
		values[ai] = make([]float64, len(criteria))
	}

	column := make([]float64, len(alternatives))
	for ci, crit := range criteria {
		for ai := range alternatives {
			column[ai] = stat.Mean(raw.ScoresAt(ai, ci), nil)
		}

		normalized, err := n.normalizeColumn(column, crit)
		if err != nil {
			return nil, err
		}
		for ai, v := range normalized {
			values[ai][ci] = v
		}
	}

	return &domain.NormalizedScoreMatrix{
		Criteria:     criteria,
		Alternatives: alternatives,
		Values:       values,
	}, nil
}

// normalizeColumn applies the configured method to one criterion column
// and orients it for the criterion's direction.
func (n *Normalizer) normalizeColumn(column []float64, crit domain.Criterion) ([]float64, error) {
	out := make([]float64, len(column))

	switch n.config.Method {
	case MethodMinMax:
		lo, hi := column[0], column[0]
		for _, v := range column[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi == lo {
			return nil, &domain.DegenerateScaleError{CriterionID: crit.ID, Method: string(n.config.Method)}
		}
		for i, v := range column {
			out[i] = (v - lo) / (hi - lo)
		}

	case MethodZScore:
		mean, std := stat.MeanStdDev(column, nil)
		if std == 0 || math.IsNaN(std) {
			return nil, &domain.DegenerateScaleError{CriterionID: crit.ID, Method: string(n.config.Method)}
		}
		for i, v := range column {
			out[i] = (v - mean) / std
		}

	case MethodRobust:
		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)
		median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
		iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
		if iqr == 0 {
			return nil, &domain.DegenerateScaleError{CriterionID: crit.ID, Method: string(n.config.Method)}
		}
		for i, v := range column {
			out[i] = (v - median) / iqr
		}

	case MethodVector:
		norm := 0.0
		for _, v := range column {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return nil, &domain.DegenerateScaleError{CriterionID: crit.ID, Method: string(n.config.Method)}
		}
		for i, v := range column {
			out[i] = v / norm
		}

	case MethodSum:
		sum := 0.0
		for _, v := range column {
			sum += v
		}
		if sum == 0 {
			return nil, &domain.DegenerateScaleError{CriterionID: crit.ID, Method: string(n.config.Method)}
		}
		for i, v := range column {
			out[i] = v / sum
		}

	default:
		return nil, fmt.Errorf("unsupported normalization method %q", n.config.Method)
	}

	if crit.Direction == domain.Minimize {
		// Bounded methods stay on their range via 1-v; unbounded methods
		// flip sign so ordering reverses without inventing a bound.
		for i, v := range out {
			if n.config.Method.Bounded() {
				out[i] = 1 - v
			} else {
				out[i] = -v
			}
		}
	}

	return out, nil
}
