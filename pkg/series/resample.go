package series

import (
	"math"

	"github.com/pkg/errors"
)

// ErrOutOfRange is returned when a requested time lies outside the series.
var ErrOutOfRange = errors.New("time outside series range")

// Resample maps the series onto an equidistant grid with the given interval.
// Points are binned into [x0+k*interval, x0+(k+1)*interval), each bin is
// replaced by the mean of its y values and empty bins are filled by linear
// interpolation between their neighbours. The returned x starts at 0.
func (s Series) Resample(interval float64) (Series, error) {
	if err := s.Validate(); err != nil {
		return Series{}, err
	}
	if interval <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		return Series{}, errors.Errorf("resample interval must be positive and finite, got %g", interval)
	}

	x0 := s.X[0]
	bins := int(math.Floor((s.X[len(s.X)-1]-x0)/interval)) + 1

	sums := make([]float64, bins)
	counts := make([]int, bins)
	for i, x := range s.X {
		k := int(math.Floor((x - x0) / interval))
		if k >= bins {
			k = bins - 1
		}
		sums[k] += s.Y[i]
		counts[k]++
	}

	out := Series{
		SampleID: s.SampleID,
		X:        make([]float64, bins),
		Y:        make([]float64, bins),
	}
	for k := range bins {
		out.X[k] = float64(k) * interval
		if counts[k] > 0 {
			out.Y[k] = sums[k] / float64(counts[k])
		}
	}

	// The first and last bins always hold a point, so every gap has two filled neighbours
	for k := 1; k < bins-1; k++ {
		if counts[k] > 0 {
			continue
		}
		left := k - 1
		right := k + 1
		for counts[right] == 0 {
			right++
		}
		for j := k; j < right; j++ {
			frac := float64(j-left) / float64(right-left)
			out.Y[j] = out.Y[left] + frac*(out.Y[right]-out.Y[left])
		}
		k = right - 1
	}

	return out, nil
}

// ValueAt returns the first y value at or after time target.
func (s Series) ValueAt(target float64) (float64, error) {
	for i, x := range s.X {
		if x >= target {
			return s.Y[i], nil
		}
	}
	return 0, errors.Wrapf(ErrOutOfRange, "sample %q: no point at or after %g", s.SampleID, target)
}

// ValueUntil returns the last y value at or before time target.
func (s Series) ValueUntil(target float64) (float64, error) {
	for i := len(s.X) - 1; i >= 0; i-- {
		if s.X[i] <= target {
			return s.Y[i], nil
		}
	}
	return 0, errors.Wrapf(ErrOutOfRange, "sample %q: no point at or before %g", s.SampleID, target)
}

// CumulatedAt returns the cumulated value (e.g. normalized heat) reached at
// time target. With a positive cutoff the value at the cutoff time is
// subtracted, discarding the heat released before it.
func (s Series) CumulatedAt(target, cutoff float64) (float64, error) {
	value, err := s.ValueAt(target)
	if err != nil {
		return 0, err
	}
	if cutoff <= 0 {
		return value, nil
	}
	atCutoff, err := s.ValueUntil(cutoff)
	if err != nil {
		return 0, err
	}
	return value - atCutoff, nil
}
