// Package spline provides the curve-fitting primitive used to denoise a
// series before its curvature is estimated.
//
// A Fitter fits a smooth curve through (x, y) under a smoothing tolerance and
// returns an Evaluator. Consumers depend on the interfaces only, so a
// deterministic stub can stand in for the numerical fit in tests.
package spline

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"
)

// Degree is the polynomial degree of the fitted splines.
const Degree = 3

// MinPoints is the smallest number of points a cubic spline can be fitted to.
const MinPoints = Degree + 1

var (
	ErrTooFewPoints      = errors.New("too few points for a cubic spline")
	ErrLengthMismatch    = errors.New("x and y must be of the same size")
	ErrNotIncreasing     = errors.New("x must be strictly increasing")
	ErrNegativeTolerance = errors.New("smoothing tolerance must be a non-negative finite number")
)

// Evaluator evaluates a fitted curve. Every gonum interp.Predictor is an Evaluator.
type Evaluator interface {
	Predict(x float64) float64
}

// Fitter fits a smooth curve through the points (x, y).
type Fitter interface {
	Fit(x, y []float64, tolerance float64) (Evaluator, error)
}

// FitterFunc adapts an ordinary function to the Fitter interface.
type FitterFunc func(x, y []float64, tolerance float64) (Evaluator, error)

// Fit calls f(x, y, tolerance).
func (f FitterFunc) Fit(x, y []float64, tolerance float64) (Evaluator, error) {
	return f(x, y, tolerance)
}

// Evaluate returns e evaluated at every x.
func Evaluate(e Evaluator, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = e.Predict(v)
	}
	return out
}

// Check validates fitting input against the requirements of a cubic spline.
func Check(x, y []float64, tolerance float64) error {
	if len(x) != len(y) {
		return errors.Wrapf(ErrLengthMismatch, "len(x)=%d, len(y)=%d", len(x), len(y))
	}
	if len(x) < MinPoints {
		return errors.Wrapf(ErrTooFewPoints, "got %d, need at least %d", len(x), MinPoints)
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return errors.Wrapf(ErrNotIncreasing, "x[%d]=%g, x[%d]=%g", i-1, x[i-1], i, x[i])
		}
	}
	if tolerance < 0 || math.IsNaN(tolerance) || math.IsInf(tolerance, 0) {
		return errors.Wrapf(ErrNegativeTolerance, "got %g", tolerance)
	}
	return nil
}

// Exact is a Fitter that performs no smoothing: the returned curve is the
// piecewise linear interpolant of the data, so evaluating it at the input x
// reproduces y exactly. It ignores the tolerance.
type Exact struct{}

// Fit implements Fitter.
func (Exact) Fit(x, y []float64, tolerance float64) (Evaluator, error) {
	if err := Check(x, y, tolerance); err != nil {
		return nil, err
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(x, y); err != nil {
		return nil, errors.Wrap(err, "linear interpolation")
	}
	return pl, nil
}

// Polynomial is an Evaluator for sum(c[k] * x^k).
type Polynomial []float64

// Predict implements Evaluator using Horner's scheme.
func (p Polynomial) Predict(x float64) float64 {
	var v float64
	for k := len(p) - 1; k >= 0; k-- {
		v = v*x + p[k]
	}
	return v
}
