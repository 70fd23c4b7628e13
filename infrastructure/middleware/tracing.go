package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/policyforge/mcda/internal/domain"
	"github.com/policyforge/mcda/internal/ports"
)

// Compile-time verification that TracedScorer implements Scorer.
var _ ports.Scorer = (*TracedScorer)(nil)

// TracedScorer decorates a Scorer with OpenTelemetry spans so scoring
// runs show up in distributed traces with their input shape and outcome.
type TracedScorer struct {
	next   ports.Scorer
	tracer trace.Tracer
}

// NewTracedScorer wraps a scorer with tracing.
func NewTracedScorer(next ports.Scorer) *TracedScorer {
	return &TracedScorer{
		next:   next,
		tracer: otel.Tracer("mcda-engine"),
	}
}

// Name returns the wrapped scorer's identifier.
func (t *TracedScorer) Name() string { return t.next.Name() }

// Score executes the wrapped scorer inside a span recording the matrix
// shape and the error outcome.
func (t *TracedScorer) Score(
	ctx context.Context,
	matrix *domain.NormalizedScoreMatrix,
	weights domain.WeightVector,
) ([]domain.ScoreResult, error) {
	ctx, span := t.tracer.Start(ctx, "Scorer.Score",
		trace.WithAttributes(
			attribute.String("scorer.name", t.next.Name()),
		),
	)
	defer span.End()

	if matrix != nil {
		span.SetAttributes(
			attribute.Int("scorer.alternatives", len(matrix.Alternatives)),
			attribute.Int("scorer.criteria", len(matrix.Criteria)),
		)
	}

	results, err := t.next.Score(ctx, matrix, weights)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return results, nil
}
