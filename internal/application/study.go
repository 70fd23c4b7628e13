package application

import (
	"context"
	"fmt"
	"time"

	"github.com/policyforge/mcda/engine"
	"github.com/policyforge/mcda/internal/domain"
	"github.com/policyforge/mcda/internal/ports"
)

// StudyResult aggregates everything one end-to-end scoring run produced.
// All fields are plain data values for report consumers; the engine
// places no formatting opinions on them beyond full floating-point
// precision.
type StudyResult struct {
	// Weights is the weight vector the run used, derived or explicit.
	Weights domain.WeightVector `json:"-"`

	// Consistency is present when weights came from a pairwise matrix.
	Consistency *domain.ConsistencyReport `json:"consistency,omitempty"`

	// Results holds ranked per-alternative scores. When sensitivity
	// analysis ran, each result carries its confidence interval.
	Results []domain.ScoreResult `json:"results"`

	// Outranking is present when the study used the ELECTRE model; it
	// preserves the partial order alongside the net-flow ranking.
	Outranking *domain.OutrankingRelation `json:"outranking,omitempty"`

	// Sensitivity is present when sensitivity analysis was configured.
	Sensitivity *domain.SensitivityReport `json:"sensitivity,omitempty"`

	// Reliability is present when assessor data was supplied and
	// reliability checking was configured.
	Reliability *domain.ReliabilityReport `json:"reliability,omitempty"`

	// Confident is false when the pairwise judgments were flagged
	// inconsistent or the assessments were flagged untrustworthy. The
	// caller decides whether that is fatal; the study only classifies.
	Confident bool `json:"confident"`
}

// Study is an executable scoring pipeline assembled from a validated
// StudyConfig. A Study holds only immutable configuration and stateless
// components, so one Study may run concurrently over different inputs.
type Study struct {
	config     *StudyConfig
	normalizer *engine.Normalizer
	deriver    *engine.WeightDeriver
	scorer     ports.Scorer
	outranker  *engine.Outranker
	checker    *engine.Checker
	metrics    ports.MetricsCollector
}

// StudyOption customizes study assembly.
type StudyOption func(*Study)

// WithMetrics attaches a metrics collector that observes run latency and
// outcome counters.
func WithMetrics(mc ports.MetricsCollector) StudyOption {
	return func(s *Study) { s.metrics = mc }
}

// NewStudy assembles the engine components a config calls for. All
// component configuration errors surface here, before any data arrives.
func NewStudy(config *StudyConfig, opts ...StudyOption) (*Study, error) {
	if config == nil {
		return nil, fmt.Errorf("study config is required")
	}
	if err := ValidateStudySemantics(config); err != nil {
		return nil, err
	}

	s := &Study{config: config}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.normalizer, err = engine.NewNormalizer(config.Normalization); err != nil {
		return nil, fmt.Errorf("building normalizer: %w", err)
	}

	if config.Weights.Source == SourcePairwise {
		ahpConfig := engine.DefaultWeightDeriverConfig()
		if config.Weights.AHP != nil {
			ahpConfig = *config.Weights.AHP
		}
		if s.deriver, err = engine.NewWeightDeriver(ahpConfig); err != nil {
			return nil, fmt.Errorf("building weight deriver: %w", err)
		}
	}

	var transform ports.ScoreTransform
	if len(config.Aggregation.Banding) > 0 {
		bander, err := engine.NewThresholdBander(config.Aggregation.Banding)
		if err != nil {
			return nil, fmt.Errorf("building threshold bander: %w", err)
		}
		transform = bander.Transform
	}

	switch config.Aggregation.Method {
	case MethodWeightedSum:
		s.scorer = engine.NewWeightedSumScorer(transform)
	case MethodElectre:
		outrankerConfig := engine.DefaultOutrankerConfig()
		if config.Aggregation.Electre != nil {
			outrankerConfig = *config.Aggregation.Electre
		}
		if s.outranker, err = engine.NewOutranker(outrankerConfig); err != nil {
			return nil, fmt.Errorf("building outranker: %w", err)
		}
		if s.scorer, err = engine.NewNetFlowScorer(s.outranker); err != nil {
			return nil, fmt.Errorf("building net flow scorer: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported aggregation method %q", config.Aggregation.Method)
	}

	if config.Reliability != nil {
		if s.checker, err = engine.NewChecker(*config.Reliability); err != nil {
			return nil, fmt.Errorf("building reliability checker: %w", err)
		}
	}

	return s, nil
}

// Run executes the full control flow over one set of inputs: weights,
// normalization, aggregation, then the optional sensitivity and
// reliability analyses. The assessments matrix may be nil when no
// reliability checking is configured. Inputs are never modified and a
// fresh result is produced per call.
func (s *Study) Run(
	ctx context.Context,
	raw *domain.RawScoreMatrix,
	assessments *domain.MultiAssessorMatrix,
) (*StudyResult, error) {
	start := time.Now()
	result, err := s.run(ctx, raw, assessments)
	if s.metrics != nil {
		labels := map[string]string{"study": s.config.Metadata.Name, "scorer": s.scorer.Name()}
		s.metrics.RecordLatency("study_run", time.Since(start), labels)
		status := "success"
		if err != nil {
			status = "error"
		}
		labels["status"] = status
		s.metrics.RecordCounter("study_runs_total", 1, labels)
	}
	return result, err
}

func (s *Study) run(
	ctx context.Context,
	raw *domain.RawScoreMatrix,
	assessments *domain.MultiAssessorMatrix,
) (*StudyResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw score matrix is required")
	}

	result := &StudyResult{}

	weights, err := s.resolveWeights(result)
	if err != nil {
		return nil, err
	}
	result.Weights = weights

	matrix, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing: %w", err)
	}

	result.Results, err = s.scorer.Score(ctx, matrix, weights)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	if s.outranker != nil {
		if result.Outranking, err = s.outranker.Outrank(matrix, weights); err != nil {
			return nil, fmt.Errorf("outranking: %w", err)
		}
	}

	if s.config.Sensitivity != nil {
		analyzer, err := engine.NewAnalyzer(*s.config.Sensitivity, s.normalizer, s.scorer)
		if err != nil {
			return nil, fmt.Errorf("building sensitivity analyzer: %w", err)
		}
		if result.Sensitivity, err = analyzer.Analyze(ctx, raw, weights); err != nil {
			return nil, fmt.Errorf("sensitivity analysis: %w", err)
		}
		attachConfidence(result.Results, result.Sensitivity)
	}

	if s.checker != nil && assessments != nil {
		if result.Reliability, err = s.checker.AssessReliability(assessments); err != nil {
			return nil, fmt.Errorf("reliability check: %w", err)
		}
	}

	result.Confident = (result.Consistency == nil || result.Consistency.Acceptable) &&
		(result.Reliability == nil || result.Reliability.Trustworthy)
	return result, nil
}

// resolveWeights obtains the weight vector from the configured source,
// recording the consistency report when AHP derivation ran.
func (s *Study) resolveWeights(result *StudyResult) (domain.WeightVector, error) {
	criterionIDs := make([]string, len(s.config.Criteria))
	for i, c := range s.config.Criteria {
		criterionIDs[i] = c.ID
	}

	switch s.config.Weights.Source {
	case SourceExplicit:
		weights := make([]float64, len(criterionIDs))
		for i, id := range criterionIDs {
			weights[i] = s.config.Weights.Explicit[id]
		}
		return domain.NewWeightVector(criterionIDs, weights)

	case SourcePairwise:
		pm, err := domain.NewPairwiseMatrix(criterionIDs, s.config.Weights.Pairwise)
		if err != nil {
			return domain.WeightVector{}, fmt.Errorf("building pairwise matrix: %w", err)
		}
		weights, report, err := s.deriver.DeriveWeights(pm)
		if err != nil {
			return domain.WeightVector{}, fmt.Errorf("deriving weights: %w", err)
		}
		result.Consistency = &report
		return weights, nil

	case SourceUniform:
		return domain.UniformWeights(criterionIDs)

	default:
		return domain.WeightVector{}, fmt.Errorf("unsupported weight source %q", s.config.Weights.Source)
	}
}

// attachConfidence copies sensitivity intervals onto the ranked results.
func attachConfidence(results []domain.ScoreResult, report *domain.SensitivityReport) {
	intervals := make(map[string]domain.ConfidenceInterval, len(report.Alternatives))
	for _, alt := range report.Alternatives {
		intervals[alt.AlternativeID] = alt.Confidence
	}
	for i := range results {
		if ci, ok := intervals[results[i].AlternativeID]; ok {
			interval := ci
			results[i].Confidence = &interval
		}
	}
}
