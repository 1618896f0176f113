package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/K-sudo-sudo/CaloCem/pkg/seriesio"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestLoggingSetup(t *testing.T) {
	require.NoError(t, loggingSetup("calocem-test", "debug"))

	sender := grip.GetSender()
	assert.Equal(t, "calocem-test", sender.Name())
	assert.Equal(t, level.Debug, sender.Level().Threshold)

	require.NoError(t, loggingSetup("calocem-test", "info"))
}

func TestFlagGroups(t *testing.T) {
	for name, flags := range map[string][]cli.Flag{
		"downsample": downsampleFlags(),
		"savgol":     savgolFlags(),
	} {
		t.Run(name, func(t *testing.T) {
			flagMap := map[string]cli.Flag{}
			for _, f := range flags {
				flagMap[f.GetName()] = f
			}

			expected := []string{"output, o", "workers"}
			if name == "downsample" {
				expected = append(expected, "points", "no-split", "split-at", "strategy")
			} else {
				expected = append(expected, "window", "order")
			}
			assert.Len(t, flagMap, len(expected))
			for _, n := range expected {
				_, ok := flagMap[n]
				assert.True(t, ok, n)
			}
		})
	}
}

func TestBuildApp(t *testing.T) {
	app := buildApp()
	for _, name := range []string{"downsample", "smooth", "derivatives", "resample", "heat-at", "limits", "periods", "generate", "config"} {
		assert.NotNil(t, app.Command(name), name)
	}
}

// testEnv writes a configuration describing a short synthetic curve and
// generates it once.
type testEnv struct {
	dir    string
	config string
	curve  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Downsample.NumPoints = 100
	cfg.Savgol.Window = 5
	cfg.Savgol.Polynom = 2
	cfg.Generator.DurationSeconds = 6 * 3600
	cfg.Generator.StepSeconds = 10
	cfg.Generator.PeakTime = 3 * 3600
	cfg.Generator.PeakWidth = 3600

	env := testEnv{
		dir:    dir,
		config: filepath.Join(dir, "calocem.yaml"),
		curve:  filepath.Join(dir, "gen.csv"),
	}
	require.NoError(t, cfg.Save(env.config))

	_, err := env.run("generate", "--output", env.curve)
	require.NoError(t, err)
	return env
}

func (e testEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	app := buildApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"calocem", "--level", "warning", "--config", e.config}, args...))
	return out.String(), err
}

func (e testEnv) read(t *testing.T, name string) series.Series {
	t.Helper()
	samples, err := seriesio.ReadFile(filepath.Join(e.dir, name))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	return samples[0]
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t)
	s := env.read(t, "gen.csv")
	assert.Equal(t, 2161, s.Len())
	assert.Equal(t, "gen", s.SampleID)

	_, err := env.run("generate", "--cumulative", "--output", filepath.Join(env.dir, "heat.csv"))
	require.NoError(t, err)
	heat := env.read(t, "heat.csv")
	assert.Zero(t, heat.Y[0])
	for i := 1; i < heat.Len(); i++ {
		assert.GreaterOrEqual(t, heat.Y[i], heat.Y[i-1])
	}

	_, err = env.run("generate")
	assert.Error(t, err)
}

func TestDownsampleCommand(t *testing.T) {
	env := newTestEnv(t)
	orig := env.read(t, "gen.csv")

	_, err := env.run("downsample", "--output", filepath.Join(env.dir, "down.csv"), env.curve)
	require.NoError(t, err)
	down := env.read(t, "down.csv")
	assert.LessOrEqual(t, down.Len(), 100)
	assert.Greater(t, down.Len(), 40)
	assert.Equal(t, orig.X[0], down.X[0])

	_, err = env.run("downsample", "--strategy", "decimate", "--points", "40",
		"--output", filepath.Join(env.dir, "dec.csv"), env.curve)
	require.NoError(t, err)
	assert.Equal(t, 40, env.read(t, "dec.csv").Len())

	second := filepath.Join(env.dir, "gen2.csv")
	_, err = env.run("generate", "--seed", "2", "--output", second)
	require.NoError(t, err)

	_, err = env.run("downsample", "--no-split", "--points", "30", "--workers", "2",
		"--output", filepath.Join(env.dir, "all.parquet"), env.curve, second)
	require.NoError(t, err)
	samples, err := seriesio.ReadFile(filepath.Join(env.dir, "all.parquet"))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "gen", samples[0].SampleID)
	assert.Equal(t, "gen2", samples[1].SampleID)
	assert.Equal(t, samples[0].X, samples[1].X)
	assert.LessOrEqual(t, samples[0].Len(), 30)

	t.Run("Errors", func(t *testing.T) {
		for name, args := range map[string][]string{
			"missing output":   {"downsample", env.curve},
			"no inputs":        {"downsample", "--output", filepath.Join(env.dir, "x.csv")},
			"unknown strategy": {"downsample", "--strategy", "lttb", "--output", filepath.Join(env.dir, "x.csv"), env.curve},
			"invalid points":   {"downsample", "--points", "0", "--output", filepath.Join(env.dir, "x.csv"), env.curve},
			"csv for many":     {"downsample", "--output", filepath.Join(env.dir, "x.csv"), env.curve, env.curve},
			"missing input":    {"downsample", "--output", filepath.Join(env.dir, "x.csv"), filepath.Join(env.dir, "nope.csv")},
		} {
			_, err := env.run(args...)
			assert.Error(t, err, name)
		}
	})
}

func TestProcessingCommands(t *testing.T) {
	env := newTestEnv(t)
	orig := env.read(t, "gen.csv")

	_, err := env.run("smooth", "--output", filepath.Join(env.dir, "smooth.csv"), env.curve)
	require.NoError(t, err)
	smooth := env.read(t, "smooth.csv")
	assert.Equal(t, orig.X, smooth.X)
	assert.InDelta(t, orig.Y[1000], smooth.Y[1000], 1e-6)

	_, err = env.run("derivatives", "--derivative", "2", "--output", filepath.Join(env.dir, "d2.csv"), env.curve)
	require.NoError(t, err)
	assert.Equal(t, orig.Len(), env.read(t, "d2.csv").Len())

	_, err = env.run("derivatives", "--derivative", "3", "--output", filepath.Join(env.dir, "d3.csv"), env.curve)
	assert.Error(t, err)

	_, err = env.run("smooth", "--window", "4", "--output", filepath.Join(env.dir, "bad.csv"), env.curve)
	assert.Error(t, err)

	_, err = env.run("resample", "--interval", "60", "--output", filepath.Join(env.dir, "grid.csv"), env.curve)
	require.NoError(t, err)
	grid := env.read(t, "grid.csv")
	assert.Equal(t, 361, grid.Len())
	assert.InDelta(t, 60, grid.X[1]-grid.X[0], 1e-9)
}

func TestReportCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("heat-at", "--integrate", "--at", "1", env.curve)
	require.NoError(t, err)
	assert.Contains(t, out, "sample")
	assert.Contains(t, out, "gen")

	_, err = env.run("heat-at", "--at", "100", env.curve)
	assert.Error(t, err)

	out, err = env.run("limits", env.curve)
	require.NoError(t, err)
	assert.Contains(t, out, "bottom")
	assert.Contains(t, out, "rms")
	assert.Contains(t, out, "21600")

	out, err = env.run("periods", "--min-duration", "600", env.curve)
	require.NoError(t, err)
	assert.Contains(t, out, "max_slope")
	assert.Contains(t, out, "true")

	_, err = env.run("periods", "--min-duration", "-1", env.curve)
	assert.Error(t, err)

	out, err = env.run("config")
	require.NoError(t, err)
	assert.Contains(t, out, "num_points: 100")

	saved := filepath.Join(env.dir, "saved.yaml")
	_, err = env.run("config", "--output", saved)
	require.NoError(t, err)
	cfg, err := config.Load(saved)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Savgol.Window)
}
