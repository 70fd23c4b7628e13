// Package ports defines the interfaces that connect the scoring engine's
// components to each other and to infrastructure concerns such as
// metrics. These interfaces enable dependency inversion: the sensitivity
// analyzer wraps any Scorer, and observability middleware decorates one
// without the engine knowing.
package ports

import (
	"context"
	"time"

	"github.com/policyforge/mcda/internal/domain"
)

// Scorer turns a normalized score matrix and a weight vector into ranked
// per-alternative results. Implementations must be stateless and safe
// for concurrent use: the sensitivity analyzer invokes the same Scorer
// from many trial goroutines at once.
type Scorer interface {
	// Name returns a stable identifier for this scorer, used in reports
	// and metric labels.
	Name() string

	// Score produces one ScoreResult per alternative, ranked descending
	// by score with ties broken by alternative ID. The inputs are never
	// modified; each call returns freshly allocated results.
	Score(ctx context.Context, matrix *domain.NormalizedScoreMatrix, weights domain.WeightVector) ([]domain.ScoreResult, error)
}

// ScoreTransform is an optional caller-supplied post-processing step
// applied to raw scalars before ranking. Discretionary business rules
// such as threshold banding or near-cutoff bonuses belong here, never in
// the core scorer. A nil transform means scores pass through unchanged.
type ScoreTransform func(alternativeID string, score float64) float64

// MetricsCollector abstracts metric recording so engine components stay
// free of any concrete metrics backend.
type MetricsCollector interface {
	// RecordLatency records the duration of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a named counter by value.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets a named gauge to value.
	RecordGauge(metric string, value float64, labels map[string]string)
}
