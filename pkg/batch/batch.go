// Package batch applies a reduction strategy to many samples at once.
package batch

import (
	"context"
	"runtime"

	"github.com/K-sudo-sudo/CaloCem/pkg/downsample"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Run reduces every sample with strategy using at most workers goroutines
// (GOMAXPROCS when workers <= 0). Results are returned in input order. The
// first failure cancels the remaining work and is returned; no partial
// results are returned on failure.
func Run(ctx context.Context, strategy downsample.Strategy, samples []series.Series, workers int) ([]series.Series, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]series.Series, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, s := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := strategy.Reduce(s)
			if err != nil {
				return errors.Wrapf(err, "sample %d (%q)", i, s.SampleID)
			}
			out[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "batch interrupted")
	}
	return out, nil
}
