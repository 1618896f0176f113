// Package period finds the intervals in which a heat flow curve rises faster
// than a threshold, such as the acceleration period of cement hydration.
package period

import (
	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/derivative"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
)

// Period is a run of samples whose heat flow slope exceeds the threshold.
type Period struct {
	StartIndex   int     // First sample index
	EndIndex     int     // Last sample index (inclusive)
	Start        float64 // Time of StartIndex
	End          float64 // Time of EndIndex
	MaxSlope     float64 // Largest slope within the period
	MaxSlopeTime float64 // Time of MaxSlope
}

// Duration returns the length of the period in seconds.
func (p Period) Duration() float64 { return p.End - p.Start }

// Find scans slopes sampled at x. A sample belongs to a period when its slope
// exceeds cfg.SlopeThreshold. Two runs separated by a single sample below the
// threshold form one period. Periods shorter than cfg.MinDurationSeconds are
// dropped. The result is ordered by time and nil when nothing qualifies.
func Find(x, slopes []float64, cfg config.PeriodConfig) ([]Period, error) {
	if len(x) != len(slopes) {
		return nil, errors.Wrapf(series.ErrLengthMismatch, "len(x)=%d, len(slopes)=%d", len(x), len(slopes))
	}

	var periods []Period
	active := false
	for i, v := range slopes {
		// NaN never starts or extends a period
		if !(v > cfg.SlopeThreshold) {
			active = false
			continue
		}

		// close enough to the last period, extend it
		if !active && len(periods) > 0 && i <= periods[len(periods)-1].EndIndex+2 {
			active = true
		}

		if active {
			p := &periods[len(periods)-1]
			p.EndIndex = i
			p.End = x[i]
			if v > p.MaxSlope {
				p.MaxSlope = v
				p.MaxSlopeTime = x[i]
			}
			continue
		}

		periods = append(periods, Period{
			StartIndex:   i,
			EndIndex:     i,
			Start:        x[i],
			End:          x[i],
			MaxSlope:     v,
			MaxSlopeTime: x[i],
		})
		active = true
	}

	var valid []Period
	for _, p := range periods {
		if p.Duration() >= cfg.MinDurationSeconds {
			valid = append(valid, p)
		}
	}
	return valid, nil
}

// Detect differentiates the heat flow s with the configured smoothing and
// returns its rising periods.
func Detect(s series.Series, cfg *config.Config) ([]Period, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	first, _, err := derivative.HeatFlow(s.X, s.Y, cfg.Savgol, cfg.Derivative)
	if err != nil {
		return nil, errors.Wrapf(err, "sample %q", s.SampleID)
	}
	return Find(s.X, first, cfg.Period)
}

// Steepest returns the period with the largest slope. ok is false for an
// empty slice.
func Steepest(periods []Period) (p Period, ok bool) {
	for i, c := range periods {
		if i == 0 || c.MaxSlope > p.MaxSlope {
			p = c
		}
	}
	return p, len(periods) > 0
}
