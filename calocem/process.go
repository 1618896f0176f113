package main

import (
	"github.com/K-sudo-sudo/CaloCem/pkg/derivative"
	"github.com/K-sudo-sudo/CaloCem/pkg/downsample"
	"github.com/K-sudo-sudo/CaloCem/pkg/savgol"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func smoothCommand() cli.Command {
	return cli.Command{
		Name:      "smooth",
		Usage:     "apply the Savitzky-Golay filter for irregularly sampled data",
		ArgsUsage: "FILE...",
		Flags:     savgolFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			applySavgolFlags(c, &cfg.Savgol)

			filter, err := savgol.New(cfg.Savgol.Window, cfg.Savgol.Polynom)
			if err != nil {
				return errors.Wrap(err, "invalid filter")
			}

			return runTransform(c, downsample.StrategyFunc(func(s series.Series) (series.Series, error) {
				y, err := filter.Apply(s.X, s.Y)
				if err != nil {
					return series.Series{}, err
				}
				return series.New(s.SampleID, append([]float64(nil), s.X...), y), nil
			}))
		},
	}
}

func derivativesCommand() cli.Command {
	return cli.Command{
		Name:      "derivatives",
		Usage:     "compute the smoothed first or second time derivative of heat flow curves",
		ArgsUsage: "FILE...",
		Flags: append(savgolFlags(),
			cli.IntFlag{
				Name:  derivativeFlag,
				Value: 1,
				Usage: "derivative order to write: 1 or 2",
			},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			applySavgolFlags(c, &cfg.Savgol)

			order := c.Int(derivativeFlag)
			if order != 1 && order != 2 {
				return errors.Errorf("--%s must be 1 or 2, got %d", derivativeFlag, order)
			}

			return runTransform(c, downsample.StrategyFunc(func(s series.Series) (series.Series, error) {
				first, second, err := derivative.HeatFlow(s.X, s.Y, cfg.Savgol, cfg.Derivative)
				if err != nil {
					return series.Series{}, err
				}
				y := first
				if order == 2 {
					y = second
				}
				return series.New(s.SampleID, append([]float64(nil), s.X...), y), nil
			}))
		},
	}
}

func resampleCommand() cli.Command {
	return cli.Command{
		Name:      "resample",
		Usage:     "map curves onto an equidistant time grid",
		ArgsUsage: "FILE...",
		Flags: addWorkersFlag(addOutputFlag(
			cli.Float64Flag{
				Name:  intervalFlag,
				Usage: "grid interval in seconds, overrides resample.interval_s",
			},
		)...),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			interval := cfg.Resample.IntervalSeconds
			if c.IsSet(intervalFlag) {
				interval = c.Float64(intervalFlag)
			}

			return runTransform(c, downsample.StrategyFunc(func(s series.Series) (series.Series, error) {
				return s.Resample(interval)
			}))
		},
	}
}
