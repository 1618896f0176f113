package main

import (
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/K-sudo-sudo/CaloCem/pkg/synth"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func generateCommand() cli.Command {
	return cli.Command{
		Name:  "generate",
		Usage: "write a synthetic heat flow curve described by the generator configuration",
		Flags: addOutputFlag(
			cli.BoolFlag{
				Name:  cumulativeFlag,
				Usage: "write the cumulative heat instead of the heat flow",
			},
			cli.Int64Flag{
				Name:  seedFlag,
				Usage: "random seed, overrides generator.seed",
			},
		),
		Action: func(c *cli.Context) error {
			out, err := requireOutput(c)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet(seedFlag) {
				cfg.Generator.Seed = c.Int64(seedFlag)
			}

			s, err := synth.Generate(cfg.Generator)
			if err != nil {
				return errors.WithStack(err)
			}
			if c.Bool(cumulativeFlag) {
				s = synth.Cumulative(s)
			}

			return writeOutput(c.Command.Name, out, nil, []series.Series{s})
		},
	}
}

func configCommand() cli.Command {
	return cli.Command{
		Name:  "config",
		Usage: "print the effective configuration as YAML, or save it with --output",
		Flags: addOutputFlag(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}

			if out := c.String(outputFlag); out != "" {
				if err := cfg.Save(out); err != nil {
					return err
				}
				grip.Info(message.Fields{
					"message": "saved configuration",
					"path":    out,
				})
				return nil
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(data)
			return errors.WithStack(err)
		},
	}
}
