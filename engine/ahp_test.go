package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policyforge/mcda/internal/domain"
)

// TestWeightDeriver_ConsistentMatrix verifies that a perfectly consistent
// matrix recovers its generating priorities with a near-zero consistency
// ratio.
func TestWeightDeriver_ConsistentMatrix(t *testing.T) {
	ids := []string{"cost", "impact", "risk"}
	priorities := []float64{0.5, 0.3, 0.2}

	pm, err := domain.ConsistentPairwiseMatrix(ids, priorities)
	require.NoError(t, err)

	d, err := NewWeightDeriver(DefaultWeightDeriverConfig())
	require.NoError(t, err)

	weights, report, err := d.DeriveWeights(pm)
	require.NoError(t, err)

	sum := 0.0
	for i, id := range ids {
		w, ok := weights.Weight(id)
		require.True(t, ok, "weight for %s", id)
		assert.InDelta(t, priorities[i], w, 1e-9, "weight for %s", id)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "weights must sum to one")

	assert.Equal(t, 3, report.Order)
	assert.InDelta(t, 3.0, report.Lambda, 1e-9)
	assert.Less(t, report.ConsistencyRatio, 1e-6)
	assert.True(t, report.Acceptable)
}

// TestWeightDeriver_InconsistentMatrix verifies that contradictory
// judgments still yield weights but are flagged unacceptable. The fixture
// is the classic intransitive triple: a beats b, b beats c, and c beats a.
func TestWeightDeriver_InconsistentMatrix(t *testing.T) {
	pm, err := domain.NewPairwiseMatrix([]string{"a", "b", "c"}, [][]float64{
		{1, 3, 1.0 / 3},
		{1.0 / 3, 1, 3},
		{3, 1.0 / 3, 1},
	})
	require.NoError(t, err)

	d, err := NewWeightDeriver(DefaultWeightDeriverConfig())
	require.NoError(t, err)

	weights, report, err := d.DeriveWeights(pm)
	require.NoError(t, err)

	// Fully symmetric contradiction: every criterion ends up equal.
	for _, id := range []string{"a", "b", "c"} {
		w, ok := weights.Weight(id)
		require.True(t, ok)
		assert.InDelta(t, 1.0/3, w, 1e-6)
	}
	assert.Greater(t, report.ConsistencyRatio, 0.10)
	assert.False(t, report.Acceptable)
}

// TestWeightDeriver_SmallOrdersAlwaysConsistent verifies the order 1 and
// order 2 special case: reciprocity forces consistency, so the ratio is
// zero by definition.
func TestWeightDeriver_SmallOrdersAlwaysConsistent(t *testing.T) {
	d, err := NewWeightDeriver(DefaultWeightDeriverConfig())
	require.NoError(t, err)

	tests := []struct {
		name    string
		ids     []string
		entries [][]float64
	}{
		{
			name:    "order one",
			ids:     []string{"only"},
			entries: [][]float64{{1}},
		},
		{
			name: "order two",
			ids:  []string{"a", "b"},
			entries: [][]float64{
				{1, 4},
				{0.25, 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := domain.NewPairwiseMatrix(tt.ids, tt.entries)
			require.NoError(t, err)

			_, report, err := d.DeriveWeights(pm)
			require.NoError(t, err)
			assert.Zero(t, report.ConsistencyRatio)
			assert.True(t, report.Acceptable)
		})
	}
}

// TestWeightDeriver_ConvergenceFailure verifies that exhausting the
// iteration cap surfaces a ConvergenceError carrying the last residual
// instead of returning half-settled weights.
func TestWeightDeriver_ConvergenceFailure(t *testing.T) {
	pm, err := domain.ConsistentPairwiseMatrix([]string{"a", "b"}, []float64{0.7, 0.3})
	require.NoError(t, err)

	// One iteration can never settle: the eigenvalue estimate moves from
	// zero to roughly the matrix order on the first pass.
	d, err := NewWeightDeriver(WeightDeriverConfig{
		MaxIterations:    1,
		Tolerance:        1e-12,
		ConsistencyLimit: 0.10,
	})
	require.NoError(t, err)

	_, _, err = d.DeriveWeights(pm)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConvergence)

	var conv *domain.ConvergenceError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, 1, conv.Iterations)
	assert.False(t, math.IsInf(conv.Residual, 0))
	assert.Greater(t, conv.Residual, 1e-12)
}

// TestWeightDeriver_OrderLimit verifies that matrices beyond the random
// index table are rejected rather than scored with a fabricated index.
func TestWeightDeriver_OrderLimit(t *testing.T) {
	const n = 16
	ids := make([]string, n)
	entries := make([][]float64, n)
	for i := range entries {
		ids[i] = fmt.Sprintf("c%02d", i)
		entries[i] = make([]float64, n)
		for j := range entries[i] {
			entries[i][j] = 1
		}
	}
	pm, err := domain.NewPairwiseMatrix(ids, entries)
	require.NoError(t, err)

	d, err := NewWeightDeriver(DefaultWeightDeriverConfig())
	require.NoError(t, err)

	_, _, err = d.DeriveWeights(pm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the supported maximum")
}

// TestNewWeightDeriver_InvalidConfig exercises configuration validation.
func TestNewWeightDeriver_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config WeightDeriverConfig
	}{
		{"zero iterations", WeightDeriverConfig{MaxIterations: 0, Tolerance: 1e-12, ConsistencyLimit: 0.1}},
		{"zero tolerance", WeightDeriverConfig{MaxIterations: 100, Tolerance: 0, ConsistencyLimit: 0.1}},
		{"zero consistency limit", WeightDeriverConfig{MaxIterations: 100, Tolerance: 1e-12, ConsistencyLimit: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWeightDeriver(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}
