package main

import (
	"strings"

	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/K-sudo-sudo/CaloCem/pkg/seriesio"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

////////////////////////////////////////////////////////////////////////
//
// Flag Name Constants

const (
	levelFlag  = "level"
	configFlag = "config"

	outputFlag  = "output"
	workersFlag = "workers"

	pointsFlag   = "points"
	noSplitFlag  = "no-split"
	splitAtFlag  = "split-at"
	strategyFlag = "strategy"

	windowFlag = "window"
	orderFlag  = "order"

	derivativeFlag = "derivative"
	intervalFlag   = "interval"

	atFlag         = "at"
	cutoffFlag     = "cutoff"
	cumulativeFlag = "cumulative"
	integrateFlag  = "integrate"
	seedFlag       = "seed"

	thresholdFlag   = "threshold"
	minDurationFlag = "min-duration"
)

////////////////////////////////////////////////////////////////////////
//
// Utility Functions

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

// loadConfig reads the configuration named by the global config flag.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString(configFlag))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return cfg, nil
}

// readInputs loads every series from the positional arguments.
func readInputs(c *cli.Context) ([]series.Series, error) {
	if c.NArg() == 0 {
		return nil, errors.New("no input files given")
	}

	var out []series.Series
	for _, path := range c.Args() {
		samples, err := seriesio.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %q", path)
		}
		out = append(out, samples...)
	}
	return out, nil
}

func requireOutput(c *cli.Context) (string, error) {
	out := c.String(outputFlag)
	if out == "" {
		return "", errors.Errorf("flag --%s is required", outputFlag)
	}
	return out, nil
}

////////////////////////////////////////////////////////////////////////
//
// Flag Groups

func addOutputFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  joinFlagNames(outputFlag, "o"),
		Usage: "path to the output file (.csv for one series, .parquet for any number)",
	})
}

func addWorkersFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.IntFlag{
		Name:  workersFlag,
		Usage: "number of samples processed in parallel (0 = one per CPU)",
	})
}

func downsampleFlags() []cli.Flag {
	return addWorkersFlag(addOutputFlag(
		cli.IntFlag{
			Name:  pointsFlag,
			Usage: "target point count, overrides downsample.num_points",
		},
		cli.BoolFlag{
			Name:  noSplitFlag,
			Usage: "reduce the whole curve at once instead of splitting it in time",
		},
		cli.Float64Flag{
			Name:  splitAtFlag,
			Usage: "section boundary in seconds, overrides downsample.section_split_time_s",
		},
		cli.StringFlag{
			Name:  strategyFlag,
			Value: "curvature",
			Usage: "reduction strategy: 'curvature' or 'decimate'",
		},
	)...)
}

func savgolFlags() []cli.Flag {
	return addWorkersFlag(addOutputFlag(
		cli.IntFlag{
			Name:  windowFlag,
			Usage: "odd window length in samples, overrides savgol.window",
		},
		cli.IntFlag{
			Name:  orderFlag,
			Usage: "polynomial order, overrides savgol.polynom",
		},
	)...)
}

// applyDownsampleFlags overrides configuration values with explicitly set flags.
func applyDownsampleFlags(c *cli.Context, cfg *config.DownsampleConfig) {
	if c.IsSet(pointsFlag) {
		cfg.NumPoints = c.Int(pointsFlag)
	}
	if c.Bool(noSplitFlag) {
		cfg.SectionSplit = false
	}
	if c.IsSet(splitAtFlag) {
		cfg.SectionSplitTime = c.Float64(splitAtFlag)
	}
}

func applySavgolFlags(c *cli.Context, cfg *config.SavgolConfig) {
	if c.IsSet(windowFlag) {
		cfg.Window = c.Int(windowFlag)
	}
	if c.IsSet(orderFlag) {
		cfg.Polynom = c.Int(orderFlag)
	}
}
