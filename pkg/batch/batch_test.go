package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/K-sudo-sudo/CaloCem/pkg/downsample"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSamples(n int) []series.Series {
	out := make([]series.Series, n)
	for i := range out {
		x := make([]float64, 10+i)
		y := make([]float64, 10+i)
		for k := range x {
			x[k] = float64(k)
			y[k] = float64(i)
		}
		out[i] = series.New(fmt.Sprintf("s%d", i), x, y)
	}
	return out
}

// slowFirst delays early samples so that they finish last.
func slowFirst(total int) downsample.Strategy {
	return downsample.StrategyFunc(func(s series.Series) (series.Series, error) {
		var idx int
		fmt.Sscanf(s.SampleID, "s%d", &idx)
		time.Sleep(time.Duration(total-idx) * time.Millisecond)
		return series.Decimate(series.Series{}, s, 5), nil
	})
}

func TestRun_KeepsOrder(t *testing.T) {
	samples := makeSamples(12)

	out, err := Run(context.Background(), slowFirst(len(samples)), samples, 4)
	require.NoError(t, err)
	require.Len(t, out, len(samples))
	for i, s := range out {
		assert.Equal(t, fmt.Sprintf("s%d", i), s.SampleID)
		assert.Equal(t, 5, s.Len())
		assert.Equal(t, float64(i), s.Y[0])
	}
}

func TestRun_BoundedParallelism(t *testing.T) {
	var running, peak int32
	strategy := downsample.StrategyFunc(func(s series.Series) (series.Series, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return s, nil
	})

	_, err := Run(context.Background(), strategy, makeSamples(20), 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

func TestRun_FirstErrorWins(t *testing.T) {
	errBad := errors.New("bad sample")
	var calls int32
	strategy := downsample.StrategyFunc(func(s series.Series) (series.Series, error) {
		atomic.AddInt32(&calls, 1)
		if s.SampleID == "s0" {
			return series.Series{}, errBad
		}
		time.Sleep(time.Millisecond)
		return s, nil
	})

	out, err := Run(context.Background(), strategy, makeSamples(50), 1)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, errBad, errors.Cause(err))
	assert.Contains(t, err.Error(), `"s0"`)
	assert.Less(t, atomic.LoadInt32(&calls), int32(50))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Run(ctx, downsample.Decimator{MaxPoints: 3}, makeSamples(5), 2)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, context.Canceled, errors.Cause(err))
}

func TestRun_Empty(t *testing.T) {
	out, err := Run(context.Background(), downsample.Decimator{MaxPoints: 3}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStage(t *testing.T) {
	sender, err := send.NewInternalLogger("test", send.LevelInfo{Default: level.Info, Threshold: level.Info})
	require.NoError(t, err)

	stage := NewStageWithLogger(downsample.Decimator{MaxPoints: 4}, 2, logging.MakeGrip(sender))
	in := make(chan series.Series)
	out := stage(in)

	go func() {
		defer close(in)
		for _, s := range makeSamples(3) {
			in <- s
		}
		in <- series.New("broken", []float64{1, 2}, []float64{1})
	}()

	var results []Result
	for r := range out {
		results = append(results, r)
	}

	require.Len(t, results, 4)
	for i, r := range results[:3] {
		assert.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("s%d", i), r.SampleID)
		assert.Equal(t, 4, r.Series.Len())
	}

	broken := results[3]
	assert.Equal(t, "broken", broken.SampleID)
	assert.Equal(t, series.ErrLengthMismatch, errors.Cause(broken.Err))
	assert.Zero(t, broken.Series.Len())

	require.Equal(t, 1, sender.Len())
	assert.Equal(t, level.Warning, sender.GetMessage().Priority)
}

func TestStage_ClosesOnInputClose(t *testing.T) {
	stage := NewStage(downsample.Decimator{MaxPoints: 4}, 0)
	in := make(chan series.Series)
	out := stage(in)
	close(in)

	select {
	case _, ok := <-out:
		assert.False(t, ok, "output channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("stage did not close its output")
	}
}
