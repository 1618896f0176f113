// Package savgol implements a Savitzky-Golay smoothing filter for signals
// sampled at irregular intervals.
//
// Every interior point is replaced by the value at the origin of a local
// least-squares polynomial fitted to the window centered on it, with the
// local coordinates shifted so that the center point is the origin. The
// half-window points at each border are extrapolated from the full
// polynomials of the first and last centered windows, which mirrors the
// border handling of a fixed-grid Savitzky-Golay filter.
package savgol

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New(`"x" and "y" must be of the same size`)
	// ErrWindowTooLarge is returned when the series is shorter than the window.
	ErrWindowTooLarge = errors.New("the data size must be larger than the window size")
	// ErrWindowNotPositive is returned for a window of zero or fewer points.
	ErrWindowNotPositive = errors.New(`"window" must be a positive integer`)
	// ErrWindowEven is returned for an even window, which has no center point.
	ErrWindowEven = errors.New(`"window" must be an odd integer`)
	// ErrOrderNegative is returned for a negative polynomial order.
	ErrOrderNegative = errors.New(`"polynom" must not be negative`)
	// ErrOrderTooHigh is returned when the polynomial order is not below the
	// window size.
	ErrOrderTooHigh = errors.New(`"polynom" must be less than "window"`)
	// ErrSingular is returned when the normal equations of a window cannot be
	// solved, typically because the x values inside the window coincide.
	ErrSingular = errors.New("normal equations are singular")
)

// Filter is a configured non-uniform Savitzky-Golay filter.
type Filter struct {
	window    int
	polyOrder int
}

// New creates a filter after checking the window and polynomial order.
func New(window, polyOrder int) (*Filter, error) {
	if err := checkParams(window, polyOrder); err != nil {
		return nil, err
	}
	return &Filter{window: window, polyOrder: polyOrder}, nil
}

// Window returns the window length in samples.
func (f *Filter) Window() int { return f.window }

// PolyOrder returns the order of the local polynomials.
func (f *Filter) PolyOrder() int { return f.polyOrder }

// Smooth applies the filter to y sampled at x. See Filter.Apply.
func Smooth(x, y []float64, window, polyOrder int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, errors.Wrapf(ErrLengthMismatch, "len(x)=%d, len(y)=%d", len(x), len(y))
	}
	if len(x) < window {
		return nil, errors.Wrapf(ErrWindowTooLarge, "len=%d, window=%d", len(x), window)
	}
	f, err := New(window, polyOrder)
	if err != nil {
		return nil, err
	}
	return f.Apply(x, y)
}

func checkParams(window, polyOrder int) error {
	switch {
	case window <= 0:
		return errors.Wrapf(ErrWindowNotPositive, "window=%d", window)
	case window%2 == 0:
		return errors.Wrapf(ErrWindowEven, "window=%d", window)
	case polyOrder < 0:
		return errors.Wrapf(ErrOrderNegative, "polynom=%d", polyOrder)
	case polyOrder >= window:
		return errors.Wrapf(ErrOrderTooHigh, "polynom=%d, window=%d", polyOrder, window)
	}
	return nil
}

// Apply returns the smoothed y, which has the same length as the input.
// No partial result is returned on error.
func (f *Filter) Apply(x, y []float64) ([]float64, error) {
	n := len(x)
	if len(y) != n {
		return nil, errors.Wrapf(ErrLengthMismatch, "len(x)=%d, len(y)=%d", n, len(y))
	}
	if n < f.window {
		return nil, errors.Wrapf(ErrWindowTooLarge, "len=%d, window=%d", n, f.window)
	}

	half := f.window / 2
	if half == 0 {
		// a one point window fits a constant through the point itself
		return append([]float64(nil), y...), nil
	}
	terms := f.polyOrder + 1

	design := mat.NewDense(f.window, terms, nil) // Vandermonde matrix of the local coordinates
	normal := mat.NewSymDense(terms, nil)
	proj := mat.NewDense(terms, f.window, nil) // (AᵀA)⁻¹Aᵀ
	var chol mat.Cholesky

	smoothed := make([]float64, n)
	var first, last border

	for i := half; i < n-half; i++ {
		// local coordinates are scaled to [-1, 1]
		scale := 0.0
		for j := range f.window {
			scale = math.Max(scale, math.Abs(x[i+j-half]-x[i]))
		}
		if scale == 0 {
			return nil, errors.Wrapf(ErrSingular, "window centered at index %d has no x spread", i)
		}

		for j := range f.window {
			u := (x[i+j-half] - x[i]) / scale
			r := 1.0
			for k := range terms {
				design.Set(j, k, r)
				r *= u
			}
		}

		normal.SymOuterK(1, design.T())
		if ok := chol.Factorize(normal); !ok {
			return nil, errors.Wrapf(ErrSingular, "window centered at index %d", i)
		}
		if err := chol.SolveTo(proj, design.T()); err != nil {
			return nil, errors.Wrapf(ErrSingular, "window centered at index %d: %v", i, err)
		}

		// The constant term is the fitted value at x[i]
		var c0 float64
		for j := range f.window {
			c0 += proj.At(0, j) * y[i+j-half]
		}
		smoothed[i] = c0

		// Keep the full polynomial of the outermost windows for the borders
		if i == half {
			first = fitBorder(proj, y[:f.window], x[i], scale)
		}
		if i == n-half-1 {
			last = fitBorder(proj, y[n-f.window:], x[i], scale)
		}
	}

	for i := range half {
		smoothed[i] = first.eval(x[i])
	}
	for i := n - half; i < n; i++ {
		smoothed[i] = last.eval(x[i])
	}

	return smoothed, nil
}

// border is a local polynomial kept for extrapolating the edge points.
type border struct {
	coeffs []float64
	center float64
	scale  float64
}

func fitBorder(proj *mat.Dense, y []float64, center, scale float64) border {
	terms, window := proj.Dims()
	b := border{coeffs: make([]float64, terms), center: center, scale: scale}
	for k := range terms {
		for j := range window {
			b.coeffs[k] += proj.At(k, j) * y[j]
		}
	}
	return b
}

func (b border) eval(x float64) float64 {
	u := (x - b.center) / b.scale
	var v float64
	r := 1.0
	for _, c := range b.coeffs {
		v += c * r
		r *= u
	}
	return v
}
