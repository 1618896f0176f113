// Package downsample reduces the point count of calorimetry curves while
// keeping their shape. Points are kept where the smoothed curve bends and
// thinned where it is flat; early transients can be protected by splitting
// the curve in time before reduction.
package downsample

import (
	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
)

// Strategy reduces a series to fewer points.
type Strategy interface {
	Reduce(s series.Series) (series.Series, error)
}

// Downsampler is the curvature based Strategy. With section splitting
// enabled the series is divided at the configured time and every section is
// reduced on its own with half of the point budget, so the combined result
// only approximates the configured count.
type Downsampler struct {
	cfg config.DownsampleConfig
	sel *Selector
}

var _ Strategy = (*Downsampler)(nil)

// New creates a downsampler for the given parameters.
func New(cfg config.DownsampleConfig, opts ...Option) (*Downsampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid downsample configuration")
	}
	return &Downsampler{
		cfg: cfg,
		sel: NewSelector(opts...),
	}, nil
}

// Config returns the parameters the downsampler was created with.
func (d *Downsampler) Config() config.DownsampleConfig {
	return d.cfg
}

// Reduce implements Strategy.
func (d *Downsampler) Reduce(s series.Series) (series.Series, error) {
	return d.Downsample(s)
}

// Downsample returns the shape preserving reduction of s. The input is not
// modified; the result never shares memory with it.
func (d *Downsampler) Downsample(s series.Series) (series.Series, error) {
	if err := s.Validate(); err != nil {
		return series.Series{}, err
	}

	target := d.cfg.PointsPerSection()
	if !d.cfg.SectionSplit {
		return d.reduce(s, target)
	}

	before, after := s.Split(d.cfg.SectionSplitTime)
	switch {
	case before.Len() == 0:
		return d.reduce(after, target)
	case after.Len() == 0:
		return d.reduce(before, target)
	}

	head, err := d.reduce(before, target)
	if err != nil {
		return series.Series{}, errors.Wrap(err, "section before split")
	}
	tail, err := d.reduce(after, target)
	if err != nil {
		return series.Series{}, errors.Wrap(err, "section after split")
	}
	return series.Concat(head, tail), nil
}

// reduce runs the selector on one segment. A segment too short for the
// spline is an error, not a pass-through.
func (d *Downsampler) reduce(seg series.Series, target int) (series.Series, error) {
	return d.sel.Select(seg, target, d.cfg.SmoothingFactor, d.cfg.BaselineWeight)
}

// Decimator is a Strategy keeping evenly spaced points by index. It ignores
// the curve shape and is meant for quick previews.
type Decimator struct {
	MaxPoints int
}

var _ Strategy = Decimator{}

// Reduce implements Strategy.
func (d Decimator) Reduce(s series.Series) (series.Series, error) {
	return d.ReduceInto(series.Series{}, s)
}

// ReduceInto decimates src into dst, reusing dst's buffers when they are
// large enough.
func (d Decimator) ReduceInto(dst, src series.Series) (series.Series, error) {
	if d.MaxPoints < 1 {
		return series.Series{}, errors.Wrapf(ErrInvalidTarget, "got %d", d.MaxPoints)
	}
	if err := src.Validate(); err != nil {
		return series.Series{}, err
	}
	return series.Decimate(dst, src, d.MaxPoints), nil
}

// StrategyFunc adapts an ordinary function to the Strategy interface.
type StrategyFunc func(s series.Series) (series.Series, error)

// Reduce calls f(s).
func (f StrategyFunc) Reduce(s series.Series) (series.Series, error) {
	return f(s)
}
