package derivative

import (
	"math"
	"testing"

	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradient_QuadraticNonUniform(t *testing.T) {
	x := []float64{0, 0.5, 2, 2.2, 4, 7, 7.5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v * v
	}

	got, err := Gradient(y, x)
	require.NoError(t, err)
	require.Len(t, got, len(x))

	// Central differences are exact for quadratics on any spacing
	for i := 1; i < len(x)-1; i++ {
		assert.InDelta(t, 2*x[i], got[i], 1e-9, "index %d", i)
	}
	// One-sided differences at the ends
	assert.InDelta(t, x[0]+x[1], got[0], 1e-12)
	assert.InDelta(t, x[5]+x[6], got[6], 1e-12)
}

func TestGradient_Linear(t *testing.T) {
	x := []float64{1, 2, 4, 8, 16}
	y := []float64{3, 5, 9, 17, 33} // 2x+1

	got, err := Gradient(y, x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 2, 2, 2, 2}, got, 1e-12)
}

func TestGradient_Errors(t *testing.T) {
	_, err := Gradient([]float64{1}, []float64{1})
	assert.Equal(t, ErrTooFewPoints, errors.Cause(err))

	_, err = Gradient([]float64{1, 2}, []float64{1})
	assert.Equal(t, ErrLengthMismatch, errors.Cause(err))
}

func TestMedianFilter(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		size   int
		want   []float64
	}{
		{
			name:   "size 3 with reflected borders",
			values: []float64{1, 9, 2, 8, 3},
			size:   3,
			want:   []float64{1, 2, 8, 3, 3},
		},
		{
			name:   "spike removed",
			values: []float64{0, 0, 0, 100, 0, 0, 0},
			size:   3,
			want:   []float64{0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "disabled",
			values: []float64{3, 1, 2},
			size:   1,
			want:   []float64{3, 1, 2},
		},
		{
			name:   "window larger than data",
			values: []float64{5, 1},
			size:   7,
			want:   []float64{5, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MedianFilter(tt.values, tt.size)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeatFlow(t *testing.T) {
	// Gaussian heat flow peak, sampled every 30 s over 10 h
	n := 1200
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range n {
		x[i] = float64(i) * 30
		z := (x[i] - 18000) / 4000
		y[i] = 0.003 * math.Exp(-z*z/2)
	}

	cfg := config.Default()
	first, second, err := HeatFlow(x, y, cfg.Savgol, cfg.Derivative)
	require.NoError(t, err)
	require.Len(t, first, n)
	require.Len(t, second, n)

	// Rising before the peak, falling after it
	assert.Greater(t, first[400], 0.0)
	assert.Less(t, first[800], 0.0)
	assert.InDelta(t, 0, first[600], 1e-9)

	// Curvature is negative at the top of the peak
	assert.Less(t, second[600], 0.0)

	// Analytic first derivative at one standard deviation before the peak
	z := (x[467] - 18000) / 4000
	want := -0.003 * z / 4000 * math.Exp(-z*z/2)
	assert.InDelta(t, want, first[467], math.Abs(want)*0.01)
}

func TestHeatFlow_WithoutSmoothing(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{0, 1, 4, 9, 16, 25}

	sg := config.SavgolConfig{Apply: false}
	first, second, err := HeatFlow(x, y, sg, config.DerivativeConfig{})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 4, 6, 8, 9}, first, 1e-12)
	assert.Len(t, second, 6)

	sg = config.SavgolConfig{Apply: true, Window: 11, Polynom: 3}
	_, _, err = HeatFlow(x, y, sg, config.DerivativeConfig{})
	assert.Error(t, err)
}
