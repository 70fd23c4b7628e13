package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestThresholdBander_Transform verifies band assignment, including the
// pass-through below every cutoff.
func TestThresholdBander_Transform(t *testing.T) {
	bander, err := NewThresholdBander([]ScoreBand{
		{Min: 0.8, Score: 3},
		{Min: 0.5, Score: 2},
		{Min: 0.2, Score: 1},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"top band", 0.95, 3},
		{"exact cutoff is inclusive", 0.8, 3},
		{"middle band", 0.51, 2},
		{"bottom band", 0.2, 1},
		{"below every band passes through", 0.1, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bander.Transform("alt", tt.score))
		})
	}
}

// TestNewThresholdBander_Rejections verifies the band table contract.
func TestNewThresholdBander_Rejections(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		_, err := NewThresholdBander(nil)
		assert.Error(t, err)
	})

	t.Run("duplicate cutoffs", func(t *testing.T) {
		_, err := NewThresholdBander([]ScoreBand{
			{Min: 0.5, Score: 1},
			{Min: 0.5, Score: 2},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate band cutoff")
	})
}

// TestThresholdBander_UnsortedInput verifies the table is sorted on
// construction so declaration order never matters.
func TestThresholdBander_UnsortedInput(t *testing.T) {
	bander, err := NewThresholdBander([]ScoreBand{
		{Min: 0.2, Score: 1},
		{Min: 0.8, Score: 3},
		{Min: 0.5, Score: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 3.0, bander.Transform("alt", 0.9))
	assert.Equal(t, 2.0, bander.Transform("alt", 0.6))
}
