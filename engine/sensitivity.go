package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/policyforge/mcda/internal/domain"
	"github.com/policyforge/mcda/internal/ports"
)

// MinIterations is the smallest trial count for which the empirical
// 2.5th/97.5th percentiles are statistically meaningful. Requests below
// it fail with an error wrapping ErrInsufficientIterations.
const MinIterations = 100

// SensitivityConfig configures the Monte Carlo sensitivity analyzer.
type SensitivityConfig struct {
	// Iterations is the number of perturbed trials to run. Must be at
	// least MinIterations.
	Iterations int `yaml:"iterations" json:"iterations" validate:"required,min=1"`

	// Seed is the master random seed. Each trial derives its own
	// substream from Seed plus the trial index, so identical seed,
	// inputs, and iteration count reproduce an identical report even
	// under parallel execution.
	Seed int64 `yaml:"seed" json:"seed"`

	// WeightNoise is the half-width of the uniform noise added to each
	// weight per trial. Perturbed weights are clamped at zero and
	// renormalized to sum to one. Zero disables weight perturbation.
	WeightNoise float64 `yaml:"weight_noise" json:"weight_noise" validate:"min=0"`

	// ResampleScores enables bootstrap resampling: each trial redraws
	// every cell's assessments with replacement before renormalizing.
	// Cells with a single assessment are unaffected by construction.
	ResampleScores bool `yaml:"resample_scores" json:"resample_scores"`

	// Workers caps concurrent trials. Zero means GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers" validate:"min=0"`
}

// DefaultSensitivityConfig returns 1000 trials with 10% weight noise and
// bootstrap resampling enabled.
func DefaultSensitivityConfig() SensitivityConfig {
	return SensitivityConfig{
		Iterations:     1000,
		Seed:           1,
		WeightNoise:    0.1,
		ResampleScores: true,
	}
}

// Analyzer wraps a scoring function and re-invokes it under perturbation
// to quantify how robust scores and ranks are to uncertainty in the
// weights and the raw judgments. Trials are independent and run in
// parallel; each reads the immutable base inputs and writes only its own
// result slot, so no synchronization beyond the final gather is needed.
type Analyzer struct {
	config     SensitivityConfig
	normalizer *Normalizer
	scorer     ports.Scorer
}

// NewAnalyzer creates an Analyzer over the given normalizer and scorer.
func NewAnalyzer(config SensitivityConfig, normalizer *Normalizer, scorer ports.Scorer) (*Analyzer, error) {
	if normalizer == nil {
		return nil, fmt.Errorf("normalizer is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if config.Iterations < MinIterations {
		return nil, fmt.Errorf("%w: %d trials requested, need at least %d",
			domain.ErrInsufficientIterations, config.Iterations, MinIterations)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Analyzer{config: config, normalizer: normalizer, scorer: scorer}, nil
}

// Analyze runs the configured number of perturbed trials against the raw
// matrix and weights, then summarizes per-alternative score intervals
// and rank stability relative to the unperturbed baseline.
//
// Cancellation is cooperative: trials check the context at their
// boundary, since a single trial is a short, non-interruptible unit of
// work.
func (a *Analyzer) Analyze(
	ctx context.Context,
	raw *domain.RawScoreMatrix,
	weights domain.WeightVector,
) (*domain.SensitivityReport, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw score matrix is required")
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	baseMatrix, err := a.normalizer.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing baseline: %w", err)
	}
	baseline, err := a.scorer.Score(ctx, baseMatrix, weights)
	if err != nil {
		return nil, fmt.Errorf("scoring baseline: %w", err)
	}

	trials := make([][]domain.ScoreResult, a.config.Iterations)

	workers := a.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < a.config.Iterations; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results, err := a.runTrial(gctx, i, raw, baseMatrix, weights)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			trials[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.summarize(baseline, trials), nil
}

// runTrial executes one perturbed evaluation. The trial owns its random
// substream, derived from the master seed plus the trial index, and
// draws in a fixed order (weights first, then resampling) so results do
// not depend on scheduling.
func (a *Analyzer) runTrial(
	ctx context.Context,
	trial int,
	raw *domain.RawScoreMatrix,
	baseMatrix *domain.NormalizedScoreMatrix,
	weights domain.WeightVector,
) ([]domain.ScoreResult, error) {
	rng := rand.New(rand.NewSource(a.config.Seed + int64(trial) + 1)) // #nosec G404 -- reproducibility matters, secrecy does not

	trialWeights := weights
	if a.config.WeightNoise > 0 {
		var err error
		trialWeights, err = a.perturbWeights(rng, weights)
		if err != nil {
			return nil, err
		}
	}

	matrix := baseMatrix
	if a.config.ResampleScores {
		resampled := raw.Resample(func(_, _ int, scores []float64) []float64 {
			drawn := make([]float64, len(scores))
			for k := range drawn {
				drawn[k] = scores[rng.Intn(len(scores))]
			}
			return drawn
		})
		perturbed, err := a.normalizer.Normalize(resampled)
		switch {
		case err == nil:
			matrix = perturbed
		case errors.Is(err, domain.ErrDegenerateScale):
			// A bootstrap draw can collapse a column that the baseline
			// normalizes fine. Keep the baseline matrix for that trial;
			// one degenerate draw must not abort the whole analysis.
		default:
			return nil, err
		}
	}

	return a.scorer.Score(ctx, matrix, trialWeights)
}

// perturbWeights adds bounded uniform noise to each weight, clamps at
// zero, and renormalizes to sum to one. If noise drives every weight to
// zero the original vector is kept for that trial.
func (a *Analyzer) perturbWeights(rng *rand.Rand, weights domain.WeightVector) (domain.WeightVector, error) {
	ids := weights.CriterionIDs()
	w := weights.Weights()
	sum := 0.0
	for i := range w {
		w[i] += (rng.Float64()*2 - 1) * a.config.WeightNoise
		if w[i] < 0 {
			w[i] = 0
		}
		sum += w[i]
	}
	if sum <= 0 {
		return weights, nil
	}
	return domain.NormalizedWeightVector(ids, w)
}

// summarize aggregates trial results into the per-alternative report,
// ordered by baseline rank.
func (a *Analyzer) summarize(baseline []domain.ScoreResult, trials [][]domain.ScoreResult) *domain.SensitivityReport {
	report := &domain.SensitivityReport{
		Iterations:   a.config.Iterations,
		Seed:         a.config.Seed,
		Scorer:       a.scorer.Name(),
		Alternatives: make([]domain.AlternativeSensitivity, 0, len(baseline)),
	}

	for _, base := range baseline {
		scores := make([]float64, 0, len(trials))
		retained := 0
		for _, trial := range trials {
			for _, res := range trial {
				if res.AlternativeID != base.AlternativeID {
					continue
				}
				scores = append(scores, res.Score)
				if res.Rank == base.Rank {
					retained++
				}
				break
			}
		}

		sort.Float64s(scores)
		report.Alternatives = append(report.Alternatives, domain.AlternativeSensitivity{
			AlternativeID: base.AlternativeID,
			BaselineScore: base.Score,
			BaselineRank:  base.Rank,
			MeanScore:     stat.Mean(scores, nil),
			Confidence: domain.ConfidenceInterval{
				Lower: stat.Quantile(0.025, stat.Empirical, scores, nil),
				Upper: stat.Quantile(0.975, stat.Empirical, scores, nil),
			},
			RankStability: float64(retained) / float64(len(trials)),
		})
	}

	return report
}
