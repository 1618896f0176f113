package spline

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxIterations bounds the search for the smoothing weight.
const DefaultMaxIterations = 100

// Smoothing fits natural cubic smoothing splines.
//
// For a tolerance s it returns the smoothest natural cubic spline g whose
// residual sum(y[i]-g(x[i]))^2 does not exceed s. A tolerance of zero gives
// the interpolating natural cubic spline. The penalized problem is solved in
// the Reinsch form (R + αQᵀQ)γ = Qᵀy, g = y - αQγ, where γ are the second
// derivatives at the interior knots; the weight α is found by bisection on
// a logarithmic scale since the residual grows monotonically with α.
type Smoothing struct {
	MaxIterations int
}

// NewSmoothing returns a smoothing spline fitter with default settings.
func NewSmoothing() *Smoothing {
	return &Smoothing{MaxIterations: DefaultMaxIterations}
}

// Fit implements Fitter.
func (s *Smoothing) Fit(x, y []float64, tolerance float64) (Evaluator, error) {
	if err := Check(x, y, tolerance); err != nil {
		return nil, err
	}

	if tolerance == 0 {
		var nc interp.NaturalCubic
		if err := nc.Fit(x, y); err != nil {
			return nil, errors.Wrap(err, "interpolating spline")
		}
		return &nc, nil
	}

	sys := newReinsch(x, y)

	// Weights are searched relative to the natural scale h³ of the problem
	scale := math.Pow((x[len(x)-1]-x[0])/float64(len(x)-1), 3)
	lo := math.Log(scale * 1e-10)
	hi := math.Log(scale * 1e10)

	fit, err := sys.solve(math.Exp(hi))
	if err != nil {
		return nil, err
	}
	if fit.residual > tolerance {
		iterations := s.MaxIterations
		if iterations <= 0 {
			iterations = DefaultMaxIterations
		}
		// Invariant: residual(lo) <= tolerance < residual(hi)
		best, err := sys.solve(math.Exp(lo))
		if err != nil {
			return nil, err
		}
		if best.residual <= tolerance {
			for range iterations {
				mid := (lo + hi) / 2
				trial, err := sys.solve(math.Exp(mid))
				if err != nil {
					return nil, err
				}
				if trial.residual <= tolerance {
					lo, best = mid, trial
				} else {
					hi = mid
				}
				if hi-lo < 1e-6 || tolerance-best.residual <= 1e-6*tolerance {
					break
				}
			}
		}
		fit = best
	}

	return sys.curve(fit), nil
}

// reinsch holds the banded operators of a smoothing spline problem.
type reinsch struct {
	x, y []float64
	h    []float64 // knot spacing, len n-1

	// Q has three non-zeros per column c at rows c, c+1, c+2.
	q0, q1, q2 []float64
	qty        []float64 // Qᵀy

	// QᵀQ and R as symmetric bands (diagonal, first and second super-diagonal).
	qq0, qq1, qq2 []float64
	r0, r1        []float64
}

type reinschFit struct {
	alpha    float64
	g        []float64 // fitted values at the knots
	gamma    []float64 // second derivatives at all knots, natural ends
	residual float64
}

func newReinsch(x, y []float64) *reinsch {
	n := len(x)
	m := n - 2
	r := &reinsch{
		x: x, y: y,
		h:   make([]float64, n-1),
		q0:  make([]float64, m),
		q1:  make([]float64, m),
		q2:  make([]float64, m),
		qty: make([]float64, m),
		qq0: make([]float64, m),
		qq1: make([]float64, m),
		qq2: make([]float64, m),
		r0:  make([]float64, m),
		r1:  make([]float64, m),
	}
	for i := range n - 1 {
		r.h[i] = x[i+1] - x[i]
	}
	for c := range m {
		r.q0[c] = 1 / r.h[c]
		r.q1[c] = -1/r.h[c] - 1/r.h[c+1]
		r.q2[c] = 1 / r.h[c+1]
		r.qty[c] = r.q0[c]*y[c] + r.q1[c]*y[c+1] + r.q2[c]*y[c+2]
		r.r0[c] = (r.h[c] + r.h[c+1]) / 3
		if c+1 < m {
			r.r1[c] = r.h[c+1] / 6
		}
	}
	for c := range m {
		r.qq0[c] = r.q0[c]*r.q0[c] + r.q1[c]*r.q1[c] + r.q2[c]*r.q2[c]
		if c+1 < m {
			r.qq1[c] = r.q1[c]*r.q0[c+1] + r.q2[c]*r.q1[c+1]
		}
		if c+2 < m {
			r.qq2[c] = r.q2[c] * r.q0[c+2]
		}
	}
	return r
}

// solve fits the spline for the smoothing weight alpha.
func (r *reinsch) solve(alpha float64) (reinschFit, error) {
	n := len(r.x)
	m := n - 2
	k := min(2, m-1)

	a := mat.NewSymBandDense(m, k, nil)
	for c := range m {
		a.SetSymBand(c, c, r.r0[c]+alpha*r.qq0[c])
		if k >= 1 && c+1 < m {
			a.SetSymBand(c, c+1, r.r1[c]+alpha*r.qq1[c])
		}
		if k >= 2 && c+2 < m {
			a.SetSymBand(c, c+2, alpha*r.qq2[c])
		}
	}

	var chol mat.BandCholesky
	if ok := chol.Factorize(a); !ok {
		return reinschFit{}, errors.Errorf("smoothing spline system is not positive definite (alpha=%g)", alpha)
	}
	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, mat.NewVecDense(m, r.qty)); err != nil {
		return reinschFit{}, errors.Wrapf(err, "solving smoothing spline system (alpha=%g)", alpha)
	}

	fit := reinschFit{
		alpha: alpha,
		g:     make([]float64, n),
		gamma: make([]float64, n),
	}
	for c := range m {
		fit.gamma[c+1] = sol.AtVec(c)
	}
	for i := range n {
		// (Qγ)[i] collects the columns whose band covers row i
		var qg float64
		if c := i; c < m {
			qg += r.q0[c] * fit.gamma[c+1]
		}
		if c := i - 1; c >= 0 && c < m {
			qg += r.q1[c] * fit.gamma[c+1]
		}
		if c := i - 2; c >= 0 && c < m {
			qg += r.q2[c] * fit.gamma[c+1]
		}
		resid := alpha * qg
		fit.g[i] = r.y[i] - resid
		fit.residual += resid * resid
	}
	return fit, nil
}

// curve converts knot values and second derivatives into a piecewise cubic.
func (r *reinsch) curve(fit reinschFit) *interp.PiecewiseCubic {
	n := len(r.x)
	g, gamma, h := fit.g, fit.gamma, r.h

	slopes := make([]float64, n)
	for i := range n - 1 {
		slopes[i] = (g[i+1]-g[i])/h[i] - h[i]*(2*gamma[i]+gamma[i+1])/6
	}
	last := n - 2
	slopes[n-1] = (g[n-1]-g[last])/h[last] + h[last]*(gamma[last]+2*gamma[n-1])/6

	var pc interp.PiecewiseCubic
	pc.FitWithDerivatives(r.x, g, slopes)
	return &pc
}
