package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/K-sudo-sudo/CaloCem/pkg/period"
	"github.com/K-sudo-sudo/CaloCem/pkg/synth"
	timestats "github.com/cwbudde/algo-dsp/stats/time"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func heatAtCommand() cli.Command {
	return cli.Command{
		Name:      "heat-at",
		Usage:     "print the cumulated heat reached after a given time",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			cli.Float64Flag{
				Name:  atFlag,
				Value: 24,
				Usage: "time in hours",
			},
			cli.Float64Flag{
				Name:  cutoffFlag,
				Usage: "discard heat released before this time in minutes (0 = keep all)",
			},
			cli.BoolFlag{
				Name:  integrateFlag,
				Usage: "inputs hold heat flow and are integrated first",
			},
		},
		Action: func(c *cli.Context) error {
			samples, err := readInputs(c)
			if err != nil {
				return err
			}

			at := c.Float64(atFlag) * 3600
			cutoff := c.Float64(cutoffFlag) * 60

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "sample\theat")
			for _, s := range samples {
				if c.Bool(integrateFlag) {
					s = synth.Cumulative(s)
				}
				heat, err := s.CumulatedAt(at, cutoff)
				if err != nil {
					return errors.WithStack(err)
				}
				fmt.Fprintf(w, "%s\t%g\n", s.SampleID, heat)
			}
			return errors.WithStack(w.Flush())
		},
	}
}

func limitsCommand() cli.Command {
	return cli.Command{
		Name:      "limits",
		Usage:     "print the time and value range, mean and RMS of every sample",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			samples, err := readInputs(c)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "sample\tpoints\tleft\tright\tbottom\ttop\tmean\trms")
			for _, s := range samples {
				l := s.Limits()
				fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\t%g\t%g\n", s.SampleID, s.Len(),
					l.Left, l.Right, l.Bottom, l.Top, timestats.DC(s.Y), timestats.RMS(s.Y))
			}
			return errors.WithStack(w.Flush())
		},
	}
}

func periodsCommand() cli.Command {
	return cli.Command{
		Name:      "periods",
		Usage:     "list the periods in which heat flow rises faster than a threshold",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			cli.Float64Flag{
				Name:  thresholdFlag,
				Usage: "slope threshold in W/g/s, overrides period.slope_threshold",
			},
			cli.Float64Flag{
				Name:  minDurationFlag,
				Usage: "minimum period length in seconds, overrides period.min_duration_s",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet(thresholdFlag) {
				cfg.Period.SlopeThreshold = c.Float64(thresholdFlag)
			}
			if c.IsSet(minDurationFlag) {
				cfg.Period.MinDurationSeconds = c.Float64(minDurationFlag)
			}
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}

			samples, err := readInputs(c)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "sample\tstart\tend\tmax_slope\tmax_slope_time\tsteepest")
			for _, s := range samples {
				periods, err := period.Detect(s, cfg)
				if err != nil {
					return errors.WithStack(err)
				}
				steepest, _ := period.Steepest(periods)
				for _, p := range periods {
					fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%t\n", s.SampleID, p.Start, p.End, p.MaxSlope, p.MaxSlopeTime, p == steepest)
				}
			}
			return errors.WithStack(w.Flush())
		},
	}
}
