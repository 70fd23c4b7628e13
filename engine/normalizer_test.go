package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policyforge/mcda/internal/domain"
)

// buildRawMatrix is a test helper that fills a matrix from per-column
// single assessments in alternative order.
func buildRawMatrix(t *testing.T, criteria []domain.Criterion, alternatives []string, columns map[string][]float64) *domain.RawScoreMatrix {
	t.Helper()
	m, err := domain.NewRawScoreMatrix(criteria, alternatives)
	require.NoError(t, err)
	for critID, column := range columns {
		require.Len(t, column, len(alternatives))
		for i, altID := range alternatives {
			require.NoError(t, m.AddScore(altID, critID, column[i]))
		}
	}
	return m
}

// TestNormalizer_Methods verifies each rescaling formula on a known
// column.
func TestNormalizer_Methods(t *testing.T) {
	criteria := []domain.Criterion{{ID: "c1", Direction: domain.Maximize}}
	alternatives := []string{"a", "b", "c"}

	tests := []struct {
		name   string
		method Method
		column []float64
		want   []float64
	}{
		{
			name:   "minmax rescales onto [0,1]",
			method: MethodMinMax,
			column: []float64{5, 3, 4},
			want:   []float64{1, 0, 0.5},
		},
		{
			name:   "zscore centers and scales by sample stdev",
			method: MethodZScore,
			column: []float64{1, 2, 3},
			want:   []float64{-1, 0, 1},
		},
		{
			name:   "robust centers by median and scales by IQR",
			method: MethodRobust,
			column: []float64{1, 2, 3},
			want:   []float64{-0.5, 0, 0.5},
		},
		{
			name:   "vector divides by euclidean norm",
			method: MethodVector,
			column: []float64{0, 3, 4},
			want:   []float64{0, 0.6, 0.8},
		},
		{
			name:   "sum yields shares of one",
			method: MethodSum,
			column: []float64{1, 1, 2},
			want:   []float64{0.25, 0.25, 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNormalizer(NormalizerConfig{Method: tt.method})
			require.NoError(t, err)

			raw := buildRawMatrix(t, criteria, alternatives, map[string][]float64{"c1": tt.column})
			got, err := n.Normalize(raw)
			require.NoError(t, err)

			for i, want := range tt.want {
				assert.InDelta(t, want, got.Values[i][0], 1e-12, "alternative %d", i)
			}
		})
	}
}

// TestNormalizer_DirectionInversion verifies that lower-is-better
// criteria leave the normalizer oriented so higher values are better:
// bounded methods via 1-v, unbounded methods via sign flip.
func TestNormalizer_DirectionInversion(t *testing.T) {
	criteria := []domain.Criterion{{ID: "cost", Direction: domain.Minimize}}
	alternatives := []string{"a", "b", "c"}

	t.Run("bounded method inverts within range", func(t *testing.T) {
		n, err := NewNormalizer(NormalizerConfig{Method: MethodMinMax})
		require.NoError(t, err)
		raw := buildRawMatrix(t, criteria, alternatives, map[string][]float64{"cost": {5, 3, 4}})
		got, err := n.Normalize(raw)
		require.NoError(t, err)
		assert.InDelta(t, 0, got.Values[0][0], 1e-12)
		assert.InDelta(t, 1, got.Values[1][0], 1e-12)
		assert.InDelta(t, 0.5, got.Values[2][0], 1e-12)
	})

	t.Run("unbounded method flips sign", func(t *testing.T) {
		n, err := NewNormalizer(NormalizerConfig{Method: MethodZScore})
		require.NoError(t, err)
		raw := buildRawMatrix(t, criteria, alternatives, map[string][]float64{"cost": {1, 2, 3}})
		got, err := n.Normalize(raw)
		require.NoError(t, err)
		assert.InDelta(t, 1, got.Values[0][0], 1e-12)
		assert.InDelta(t, 0, got.Values[1][0], 1e-12)
		assert.InDelta(t, -1, got.Values[2][0], 1e-12)
	})
}

// TestNormalizer_DegenerateScale verifies that zero-spread columns fail
// loudly with the criterion named, for every method that divides by a
// spread measure.
func TestNormalizer_DegenerateScale(t *testing.T) {
	criteria := []domain.Criterion{{ID: "flat", Direction: domain.Maximize}}
	alternatives := []string{"a", "b", "c"}

	for _, method := range []Method{MethodMinMax, MethodZScore, MethodRobust} {
		t.Run(string(method), func(t *testing.T) {
			n, err := NewNormalizer(NormalizerConfig{Method: method})
			require.NoError(t, err)
			raw := buildRawMatrix(t, criteria, alternatives, map[string][]float64{"flat": {7, 7, 7}})

			_, err = n.Normalize(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDegenerateScale)

			var degenerate *domain.DegenerateScaleError
			require.ErrorAs(t, err, &degenerate)
			assert.Equal(t, "flat", degenerate.CriterionID)
		})
	}

	t.Run("vector with all-zero column", func(t *testing.T) {
		n, err := NewNormalizer(NormalizerConfig{Method: MethodVector})
		require.NoError(t, err)
		raw := buildRawMatrix(t, criteria, alternatives, map[string][]float64{"flat": {0, 0, 0}})
		_, err = n.Normalize(raw)
		assert.ErrorIs(t, err, domain.ErrDegenerateScale)
	})
}

// TestNormalizer_MinMaxIdempotence verifies that normalizing an already
// [0,1]-scaled column returns the same column within floating tolerance.
func TestNormalizer_MinMaxIdempotence(t *testing.T) {
	criteria := []domain.Criterion{{ID: "c1", Direction: domain.Maximize}}
	alternatives := []string{"a", "b", "c", "d"}
	column := []float64{0, 1, 0.25, 0.75}

	n, err := NewNormalizer(NormalizerConfig{Method: MethodMinMax})
	require.NoError(t, err)
	raw := buildRawMatrix(t, criteria, alternatives, map[string][]float64{"c1": column})

	got, err := n.Normalize(raw)
	require.NoError(t, err)
	for i, want := range column {
		assert.InDelta(t, want, got.Values[i][0], 1e-12)
	}
}

// TestNormalizer_CollapsesMultiAssessments verifies that cells holding
// several assessments are collapsed to their mean before rescaling.
func TestNormalizer_CollapsesMultiAssessments(t *testing.T) {
	criteria := []domain.Criterion{{ID: "c1", Direction: domain.Maximize}}
	m, err := domain.NewRawScoreMatrix(criteria, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, m.SetScores("a", "c1", 2, 4)) // mean 3
	require.NoError(t, m.SetScores("b", "c1", 5))

	n, err := NewNormalizer(NormalizerConfig{Method: MethodSum})
	require.NoError(t, err)
	got, err := n.Normalize(m)
	require.NoError(t, err)

	assert.InDelta(t, 3.0/8, got.Values[0][0], 1e-12)
	assert.InDelta(t, 5.0/8, got.Values[1][0], 1e-12)
}

// TestNormalizer_RejectsIncompleteMatrix verifies the missing-cell
// contract is enforced before any arithmetic.
func TestNormalizer_RejectsIncompleteMatrix(t *testing.T) {
	criteria := []domain.Criterion{{ID: "c1", Direction: domain.Maximize}}
	m, err := domain.NewRawScoreMatrix(criteria, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, m.AddScore("a", "c1", 1))

	n, err := NewNormalizer(DefaultNormalizerConfig())
	require.NoError(t, err)
	_, err = n.Normalize(m)
	assert.ErrorIs(t, err, domain.ErrMissingScore)
}

// TestNewNormalizer_InvalidMethod verifies configuration validation.
func TestNewNormalizer_InvalidMethod(t *testing.T) {
	_, err := NewNormalizer(NormalizerConfig{Method: "geometric"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
