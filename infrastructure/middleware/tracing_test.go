package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policyforge/mcda/internal/domain"
)

// stubScorer returns canned results or a canned error.
type stubScorer struct {
	results []domain.ScoreResult
	err     error
	calls   int
}

func (s *stubScorer) Name() string { return "stub" }

func (s *stubScorer) Score(
	_ context.Context,
	_ *domain.NormalizedScoreMatrix,
	_ domain.WeightVector,
) ([]domain.ScoreResult, error) {
	s.calls++
	return s.results, s.err
}

// TestTracedScorer_PassThrough verifies results and the name flow through
// the decorator untouched.
func TestTracedScorer_PassThrough(t *testing.T) {
	want := []domain.ScoreResult{{AlternativeID: "a", Score: 0.9, Rank: 1}}
	stub := &stubScorer{results: want}
	traced := NewTracedScorer(stub)

	assert.Equal(t, "stub", traced.Name())

	matrix := &domain.NormalizedScoreMatrix{
		Criteria:     []domain.Criterion{{ID: "c1", Direction: domain.Maximize}},
		Alternatives: []string{"a"},
		Values:       [][]float64{{0.9}},
	}
	got, err := traced.Score(context.Background(), matrix, domain.WeightVector{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, stub.calls)
}

// TestTracedScorer_ErrorPropagation verifies errors surface unchanged.
func TestTracedScorer_ErrorPropagation(t *testing.T) {
	wantErr := errors.New("scoring failed")
	traced := NewTracedScorer(&stubScorer{err: wantErr})

	got, err := traced.Score(context.Background(), nil, domain.WeightVector{})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, wantErr)
}
