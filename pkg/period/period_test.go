package period

import (
	"math"
	"testing"

	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/K-sudo-sudo/CaloCem/pkg/synth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	slopes := []float64{0, 2, 2, 0, 3, 0, 0, 2, 2, 2}

	periods, err := Find(x, slopes, config.PeriodConfig{SlopeThreshold: 1})
	require.NoError(t, err)
	require.Len(t, periods, 2)

	// a single sample dip merges the first two runs
	assert.Equal(t, Period{StartIndex: 1, EndIndex: 4, Start: 1, End: 4, MaxSlope: 3, MaxSlopeTime: 4}, periods[0])
	assert.Equal(t, Period{StartIndex: 7, EndIndex: 9, Start: 7, End: 9, MaxSlope: 2, MaxSlopeTime: 7}, periods[1])
	assert.Equal(t, 3.0, periods[0].Duration())

	periods, err = Find(x, slopes, config.PeriodConfig{SlopeThreshold: 1, MinDurationSeconds: 3})
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, 1, periods[0].StartIndex)
}

func TestFind_EdgeCases(t *testing.T) {
	periods, err := Find(nil, nil, config.PeriodConfig{})
	require.NoError(t, err)
	assert.Empty(t, periods)

	periods, err = Find([]float64{0, 1, 2}, []float64{math.NaN(), -1, 0}, config.PeriodConfig{})
	require.NoError(t, err)
	assert.Empty(t, periods)

	periods, err = Find([]float64{0, 1, 2}, []float64{5, 5, 5}, config.PeriodConfig{SlopeThreshold: 1, MinDurationSeconds: 10})
	require.NoError(t, err)
	assert.Empty(t, periods)

	_, err = Find([]float64{0, 1}, []float64{1}, config.PeriodConfig{})
	assert.Equal(t, series.ErrLengthMismatch, errors.Cause(err))
}

func TestDetect(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.StepSeconds = 60

	s, err := synth.Generate(cfg.Generator)
	require.NoError(t, err)

	periods, err := Detect(s, cfg)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	// The Gaussian peak rises faster than the threshold for
	// 0.388 < (PeakTime-t)/PeakWidth < 1.792 and steepest one width before the top.
	p := periods[0]
	g := cfg.Generator
	assert.InDelta(t, g.PeakTime-1.792*g.PeakWidth, p.Start, 360)
	assert.InDelta(t, g.PeakTime-0.388*g.PeakWidth, p.End, 360)
	assert.InDelta(t, g.PeakTime-g.PeakWidth, p.MaxSlopeTime, 300)
	assert.InDelta(t, g.PeakHeight/g.PeakWidth*math.Exp(-0.5), p.MaxSlope, 0.05e-7)

	_, err = Detect(series.New("short", []float64{0, 1, 2}, []float64{0, 1, 2}), cfg)
	assert.Error(t, err)

	_, err = Detect(series.Series{SampleID: "empty"}, cfg)
	assert.Equal(t, series.ErrEmpty, errors.Cause(err))
}

func TestSteepest(t *testing.T) {
	_, ok := Steepest(nil)
	assert.False(t, ok)

	p, ok := Steepest([]Period{{StartIndex: 1, MaxSlope: 2}, {StartIndex: 5, MaxSlope: 4}, {StartIndex: 9, MaxSlope: 4}})
	require.True(t, ok)
	assert.Equal(t, 5, p.StartIndex)
}
