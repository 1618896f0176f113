// Package synth generates synthetic isothermal calorimetry curves for
// development and testing.
package synth

import (
	"math"

	"github.com/K-sudo-sudo/CaloCem/pkg/config"
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SampleID is the id given to generated series.
const SampleID = "synthetic"

// Validate checks that the generator parameters describe a sampled curve.
func Validate(cfg config.GeneratorConfig) error {
	if cfg.DurationSeconds <= 0 {
		return errors.Errorf("duration_s must be positive, got %g", cfg.DurationSeconds)
	}
	if cfg.StepSeconds <= 0 {
		return errors.Errorf("step_s must be positive, got %g", cfg.StepSeconds)
	}
	if cfg.Jitter < 0 || cfg.Jitter >= 1 {
		return errors.Errorf("jitter must be in [0, 1), got %g", cfg.Jitter)
	}
	if cfg.SpikeDecay <= 0 || cfg.PeakWidth <= 0 {
		return errors.New("spike_decay_s and peak_width_s must be positive")
	}
	if cfg.TimeConstant < 0 || cfg.NoiseLevel < 0 {
		return errors.New("time_constant_s and noise_level must not be negative")
	}
	return nil
}

// HeatFlow evaluates the noise free model at t seconds: an exponentially
// decaying dissolution spike followed by a Gaussian main hydration peak.
func HeatFlow(cfg config.GeneratorConfig, t float64) float64 {
	spike := cfg.SpikeHeight * math.Exp(-t/cfg.SpikeDecay)
	z := (t - cfg.PeakTime) / cfg.PeakWidth
	peak := cfg.PeakHeight * math.Exp(-z*z/2)
	return spike + peak
}

// Generate samples the model from 0 to cfg.DurationSeconds. The sampling
// step varies by up to ±Jitter of StepSeconds, the instrument lag is applied
// as a first order response and Gaussian noise is added. The same seed always
// gives the same series.
func Generate(cfg config.GeneratorConfig) (series.Series, error) {
	if err := Validate(cfg); err != nil {
		return series.Series{}, errors.Wrap(err, "invalid generator configuration")
	}

	src := rand.NewSource(uint64(cfg.Seed))
	jitter := distuv.Uniform{Min: -cfg.Jitter, Max: cfg.Jitter, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: cfg.NoiseLevel, Src: src}

	capacity := int(cfg.DurationSeconds/cfg.StepSeconds) + 1
	out := series.Series{
		SampleID: SampleID,
		X:        make([]float64, 0, capacity),
		Y:        make([]float64, 0, capacity),
	}

	var (
		t      float64
		signal = HeatFlow(cfg, 0)
	)
	for t <= cfg.DurationSeconds {
		target := HeatFlow(cfg, t)
		if cfg.TimeConstant > 0 && len(out.X) > 0 {
			dt := t - out.X[len(out.X)-1]
			alpha := dt / (cfg.TimeConstant + dt)
			signal += alpha * (target - signal)
		} else {
			signal = target
		}

		y := signal
		if cfg.NoiseLevel > 0 {
			y += noise.Rand()
		}
		out.X = append(out.X, t)
		out.Y = append(out.Y, y)

		step := cfg.StepSeconds
		if cfg.Jitter > 0 {
			step *= 1 + jitter.Rand()
		}
		t += step
	}

	return out, nil
}

// Cumulative integrates a heat flow series over time with the trapezoidal
// rule, giving the cumulative heat with the same x.
func Cumulative(s series.Series) series.Series {
	out := series.Series{
		SampleID: s.SampleID,
		X:        make([]float64, len(s.X)),
		Y:        make([]float64, len(s.Y)),
	}
	copy(out.X, s.X)
	for i := 1; i < len(s.X); i++ {
		out.Y[i] = out.Y[i-1] + (s.X[i]-s.X[i-1])*(s.Y[i]+s.Y[i-1])/2
	}
	return out
}
