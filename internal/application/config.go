// Package application assembles the engine's components into complete
// scoring studies driven by declarative YAML configuration. It owns
// structural and semantic validation of study definitions; the engine
// components own their own runtime contracts.
package application

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/policyforge/mcda/engine"
	"github.com/policyforge/mcda/internal/domain"
)

// StudyConfig is the complete declarative specification of a scoring
// study: the criterion set, how weights are obtained, how raw scores are
// normalized and aggregated, and which optional analyses run.
type StudyConfig struct {
	// Version is the configuration schema version, semantic versioning.
	Version string `yaml:"version" validate:"required,semver"`

	// Metadata carries descriptive information about the study.
	Metadata Metadata `yaml:"metadata" validate:"required"`

	// Criteria defines the closed criterion set for the study. The set
	// is fixed once scoring begins; misspelled criterion references are
	// caught here at load time, not at scoring time.
	Criteria []domain.Criterion `yaml:"criteria" validate:"required,min=1,dive"`

	// Normalization selects the rescaling method.
	Normalization engine.NormalizerConfig `yaml:"normalization" validate:"required"`

	// Weights declares where criterion weights come from.
	Weights WeightsConfig `yaml:"weights" validate:"required"`

	// Aggregation selects the scoring model.
	Aggregation AggregationConfig `yaml:"aggregation" validate:"required"`

	// Sensitivity, when present, enables Monte Carlo robustness analysis.
	Sensitivity *engine.SensitivityConfig `yaml:"sensitivity,omitempty"`

	// Reliability, when present, enables assessor agreement checking.
	Reliability *engine.ReliabilityConfig `yaml:"reliability,omitempty"`
}

// Metadata provides descriptive information about a study for report
// consumers and operators.
type Metadata struct {
	// Name is the human-readable study identifier.
	Name string `yaml:"name" validate:"required,min=1,max=255"`

	// Description explains the study's purpose.
	Description string `yaml:"description" validate:"max=1000"`

	// Tags are categorical labels for filtering and grouping.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
}

// WeightSource enumerates the supported ways of obtaining weights.
type WeightSource string

// Supported weight sources.
const (
	// SourceExplicit takes weights directly from the configuration.
	SourceExplicit WeightSource = "explicit"

	// SourcePairwise derives weights from a pairwise comparison matrix
	// via AHP.
	SourcePairwise WeightSource = "pairwise"

	// SourceUniform assigns every criterion the same weight.
	SourceUniform WeightSource = "uniform"
)

// WeightsConfig declares how the study's weight vector is obtained.
type WeightsConfig struct {
	// Source selects explicit weights, AHP derivation, or uniform.
	Source WeightSource `yaml:"source" validate:"required,oneof=explicit pairwise uniform"`

	// Explicit maps criterion IDs to weights when Source is "explicit".
	// The weights must cover every criterion and sum to one.
	Explicit map[string]float64 `yaml:"explicit,omitempty"`

	// Pairwise is the comparison matrix in criteria order when Source is
	// "pairwise". Reciprocity is enforced at load time.
	Pairwise [][]float64 `yaml:"pairwise,omitempty"`

	// AHP overrides the weight deriver's defaults when Source is
	// "pairwise".
	AHP *engine.WeightDeriverConfig `yaml:"ahp,omitempty"`
}

// AggregationMethod enumerates the supported scoring models.
type AggregationMethod string

// Supported aggregation methods.
const (
	// MethodWeightedSum is the compensatory weighted-sum model.
	MethodWeightedSum AggregationMethod = "weighted_sum"

	// MethodElectre is the non-compensatory outranking model; ranked
	// results come from net flows while the partial order is preserved
	// alongside them.
	MethodElectre AggregationMethod = "electre"
)

// AggregationConfig selects and parameterizes the scoring model.
type AggregationConfig struct {
	// Method selects the scoring model.
	Method AggregationMethod `yaml:"method" validate:"required,oneof=weighted_sum electre"`

	// Electre overrides the outranker's default thresholds when Method
	// is "electre".
	Electre *engine.OutrankerConfig `yaml:"electre,omitempty"`

	// Banding, when present, snaps final scalars onto a discrete band
	// table before ranking. This is an explicit opt-in presentation
	// rule; the core scorers stay continuous.
	Banding []engine.ScoreBand `yaml:"banding,omitempty"`
}

// LoadStudyConfig parses and validates a YAML study definition. It
// performs structural validation via struct tags, then the semantic
// cross-checks that tags cannot express.
func LoadStudyConfig(data []byte) (*StudyConfig, error) {
	var config StudyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse study config: %w", err)
	}
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("study config validation failed: %w", err)
	}
	if err := ValidateStudySemantics(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
