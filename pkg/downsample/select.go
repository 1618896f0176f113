package downsample

import (
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/K-sudo-sudo/CaloCem/pkg/spline"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidTarget is returned for a target point count below one.
	ErrInvalidTarget = errors.New("target point count must be at least 1")
	// ErrNegativeBaseline is returned for a negative baseline weight.
	ErrNegativeBaseline = errors.New("baseline weight must not be negative")
)

// Selector picks the indices of a series that carry the most shape
// information. It smooths the curve with a spline, estimates the curvature of
// the smoothed curve and samples indices proportionally to it.
type Selector struct {
	fitter spline.Fitter
	log    grip.Journaler
}

// Option configures a Selector or a Downsampler.
type Option func(*Selector)

// WithFitter replaces the default smoothing spline.
func WithFitter(f spline.Fitter) Option {
	return func(s *Selector) {
		s.fitter = f
	}
}

// WithLogger sets the journaler used for diagnostics.
func WithLogger(j grip.Journaler) Option {
	return func(s *Selector) {
		s.log = j
	}
}

// NewSelector creates a selector using a cubic smoothing spline and the
// global grip sender unless overridden by options.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		fitter: spline.NewSmoothing(),
		log:    logging.MakeGrip(grip.GetSender()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectIndices returns a strictly increasing subset of at most target
// indices into s. x must be strictly increasing and s must hold at least
// four points. Fit failures are returned as is, wrapped with the sample id.
func (sel *Selector) SelectIndices(s series.Series, target int, tolerance, baselineWeight float64) ([]int, error) {
	if target < 1 {
		return nil, errors.Wrapf(ErrInvalidTarget, "sample %q: got %d", s.SampleID, target)
	}
	if baselineWeight < 0 {
		return nil, errors.Wrapf(ErrNegativeBaseline, "sample %q: got %g", s.SampleID, baselineWeight)
	}
	if err := spline.Check(s.X, s.Y, tolerance); err != nil {
		return nil, errors.Wrapf(err, "sample %q", s.SampleID)
	}

	fit, err := sel.fitter.Fit(s.X, s.Y, tolerance)
	if err != nil {
		return nil, errors.Wrapf(err, "fitting spline to sample %q", s.SampleID)
	}
	smooth := spline.Evaluate(fit, s.X)

	curvature, err := Curvature(s.X, smooth)
	if err != nil {
		return nil, errors.Wrapf(err, "curvature of sample %q", s.SampleID)
	}

	indices := SampleIndices(Density(curvature, baselineWeight, target), target)

	sel.log.Info(message.Fields{
		"message": "downsampled",
		"sample":  s.SampleID,
		"points":  len(indices),
		"input":   s.Len(),
		"target":  target,
	})

	return indices, nil
}

// Select returns the points of s at the selected indices.
func (sel *Selector) Select(s series.Series, target int, tolerance, baselineWeight float64) (series.Series, error) {
	indices, err := sel.SelectIndices(s, target, tolerance, baselineWeight)
	if err != nil {
		return series.Series{}, err
	}
	return s.Take(indices), nil
}
