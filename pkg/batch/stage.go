package batch

import (
	"github.com/K-sudo-sudo/CaloCem/pkg/downsample"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// DefaultBufferSize is the default capacity of a stage output channel.
const DefaultBufferSize = 16

// Result is the outcome of reducing one sample in a Stage.
type Result struct {
	SampleID string
	Series   series.Series
	Err      error
}

// Stage is a function type that reduces a stream of samples.
// The output channel is closed once the input is closed and drained.
type Stage func(in <-chan series.Series) <-chan Result

// NewStage creates a pipeline stage applying strategy to every received sample.
// A failing sample does not stop the stage; its error travels in the Result.
func NewStage(strategy downsample.Strategy, bufSize int) Stage {
	return NewStageWithLogger(strategy, bufSize, logging.MakeGrip(grip.GetSender()))
}

// NewStageWithLogger is NewStage with an explicit journaler for failure
// diagnostics.
func NewStageWithLogger(strategy downsample.Strategy, bufSize int, log grip.Journaler) Stage {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan series.Series) <-chan Result {
		out := make(chan Result, bufSize)

		go func() {
			defer close(out)

			for s := range in {
				r, err := strategy.Reduce(s)
				if err != nil {
					err = errors.Wrapf(err, "sample %q", s.SampleID)
					log.Warning(message.WrapError(err, message.Fields{
						"message": "reduction failed",
						"sample":  s.SampleID,
						"points":  s.Len(),
					}))
					r = series.Series{}
				}
				out <- Result{SampleID: s.SampleID, Series: r, Err: err}
			}
		}()

		return out
	}
}
