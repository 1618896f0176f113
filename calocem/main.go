package main

import (
	"os"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func main() {
	app := buildApp()
	err := app.Run(os.Args)
	grip.EmergencyFatal(err)
}

func buildApp() *cli.App {
	app := cli.NewApp()

	app.Name = "calocem"
	app.Usage = "shape preserving reduction and smoothing of isothermal calorimetry curves"
	app.Version = "0.1.0"

	app.Commands = []cli.Command{
		downsampleCommand(),
		smoothCommand(),
		derivativesCommand(),
		resampleCommand(),
		heatAtCommand(),
		limitsCommand(),
		periodsCommand(),
		generateCommand(),
		configCommand(),
	}

	// global options, read by every sub command
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  levelFlag,
			Value: "info",
			Usage: "Specify lowest visible loglevel as string: 'emergency|alert|critical|error|warning|notice|info|debug'",
		},
		cli.StringFlag{
			Name:  configFlag,
			Value: "calocem.yaml",
			Usage: "path to the YAML configuration; defaults are used when the file does not exist",
		},
	}

	app.Before = func(c *cli.Context) error {
		return errors.WithStack(loggingSetup(app.Name, c.String(levelFlag)))
	}

	return app
}

// logging setup is separate to make it unit testable
func loggingSetup(name, logLevel string) error {
	sender := grip.GetSender()
	sender.SetName(name)

	lvl := sender.Level()
	lvl.Threshold = level.FromString(logLevel)
	return errors.WithStack(sender.SetLevel(lvl))
}
