package main

import (
	"context"

	"github.com/K-sudo-sudo/CaloCem/pkg/batch"
	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/downsample"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/K-sudo-sudo/CaloCem/pkg/seriesio"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func downsampleCommand() cli.Command {
	return cli.Command{
		Name:      "downsample",
		Usage:     "reduce curves to fewer points, keeping them dense where curvature is high",
		ArgsUsage: "FILE...",
		Flags:     downsampleFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			applyDownsampleFlags(c, &cfg.Downsample)

			strategy, err := newStrategy(c.String(strategyFlag), cfg.Downsample)
			if err != nil {
				return err
			}

			return runTransform(c, strategy)
		},
	}
}

func newStrategy(name string, cfg config.DownsampleConfig) (downsample.Strategy, error) {
	switch name {
	case "curvature", "":
		d, err := downsample.New(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "decimate":
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid downsample configuration")
		}
		return downsample.Decimator{MaxPoints: cfg.NumPoints}, nil
	default:
		return nil, errors.Errorf("unknown strategy %q", name)
	}
}

// runTransform reads the positional inputs, applies strategy to every sample
// in parallel and writes the results to the output flag.
func runTransform(c *cli.Context, strategy downsample.Strategy) error {
	out, err := requireOutput(c)
	if err != nil {
		return err
	}
	samples, err := readInputs(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := batch.Run(ctx, strategy, samples, c.Int(workersFlag))
	if err != nil {
		return errors.WithStack(err)
	}

	return writeOutput(c.Command.Name, out, samples, results)
}

func writeOutput(op, path string, in, out []series.Series) error {
	if err := seriesio.WriteFile(path, out); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}

	inPoints, outPoints := 0, 0
	for _, s := range in {
		inPoints += s.Len()
	}
	for _, s := range out {
		outPoints += s.Len()
	}
	grip.Info(message.Fields{
		"message":    "wrote output",
		"operation":  op,
		"path":       path,
		"samples":    len(out),
		"points_in":  inPoints,
		"points_out": outPoints,
	})
	return nil
}
