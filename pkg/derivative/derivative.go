package derivative

import (
	"math"
	"sort"

	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/savgol"
	"github.com/pkg/errors"
)

var (
	// ErrTooFewPoints is returned when a gradient is requested for less than two points.
	ErrTooFewPoints = errors.New("at least two points are required")
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("x and y must be of the same size")
)

// Gradient returns dy/dx for samples on a non-uniform grid.
// Interior points use second-order accurate central differences,
// the first and last points use one-sided first-order differences.
func Gradient(y, x []float64) ([]float64, error) {
	n := len(y)
	if len(x) != n {
		return nil, errors.Wrapf(ErrLengthMismatch, "len(x)=%d, len(y)=%d", len(x), n)
	}
	if n < 2 {
		return nil, errors.Wrapf(ErrTooFewPoints, "len=%d", n)
	}

	out := make([]float64, n)
	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])

	for i := 1; i < n-1; i++ {
		hl := x[i] - x[i-1] // left spacing
		hr := x[i+1] - x[i] // right spacing
		a := -hr / (hl * (hl + hr))
		b := (hr - hl) / (hl * hr)
		c := hl / (hr * (hl + hr))
		out[i] = a*y[i-1] + b*y[i] + c*y[i+1]
	}

	return out, nil
}

// MedianFilter replaces every value by the median of the size values around it.
// Borders are extended by reflection (d c b a | a b c d | d c b a).
// For an even size the upper of the two middle values is used.
// A size of 0 or 1 returns a copy of the input.
func MedianFilter(values []float64, size int) []float64 {
	out := make([]float64, len(values))
	if size <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}

	n := len(values)
	window := make([]float64, size)
	for i := range n {
		start := i - size/2
		for k := range size {
			window[k] = values[reflect(start+k, n)]
		}
		sort.Float64s(window)
		out[i] = window[size/2]
	}
	return out
}

// reflect maps an out-of-range index back into [0, n) by mirroring at the edges.
func reflect(idx, n int) int {
	for idx < 0 || idx >= n {
		if idx < 0 {
			idx = -idx - 1
		}
		if idx >= n {
			idx = 2*n - idx - 1
		}
	}
	return idx
}

// HeatFlow computes the first and second time derivatives of a heat flow curve.
// With Savitzky-Golay enabled the heat flow is smoothed before differentiation
// and the second derivative is smoothed again afterwards. Both derivatives are
// median filtered when the configured size is larger than one.
func HeatFlow(x, y []float64, sg config.SavgolConfig, dc config.DerivativeConfig) (first, second []float64, err error) {
	smoothed := y
	if sg.Apply {
		smoothed, err = savgol.Smooth(x, y, sg.Window, sg.Polynom)
		if err != nil {
			return nil, nil, errors.Wrap(err, "smoothing heat flow")
		}
	}

	first, err = Gradient(smoothed, x)
	if err != nil {
		return nil, nil, errors.Wrap(err, "first derivative")
	}
	zeroNaN(first)
	first = MedianFilter(first, dc.MedianFilterSize)

	second, err = Gradient(first, x)
	if err != nil {
		return nil, nil, errors.Wrap(err, "second derivative")
	}
	zeroNaN(second)
	second = MedianFilter(second, dc.MedianFilterSize)

	if sg.Apply {
		second, err = savgol.Smooth(x, second, sg.Window, sg.Polynom)
		if err != nil {
			return nil, nil, errors.Wrap(err, "smoothing second derivative")
		}
	}

	return first, second, nil
}

// zeroNaN replaces NaN values, produced by repeated time stamps, with zero.
func zeroNaN(values []float64) {
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = 0
		}
	}
}
