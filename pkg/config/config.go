package config

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Downsample DownsampleConfig `yaml:"downsample"`
	Savgol     SavgolConfig     `yaml:"savgol"`
	Derivative DerivativeConfig `yaml:"derivative"`
	Resample   ResampleConfig   `yaml:"resample"`
	Period     PeriodConfig     `yaml:"period"`
	Generator  GeneratorConfig  `yaml:"generator"`
}

// DownsampleConfig contains the adaptive downsampling parameters.
type DownsampleConfig struct {
	NumPoints        int     `yaml:"num_points"`           // Target point count (halved per section when splitting)
	SmoothingFactor  float64 `yaml:"smoothing_factor"`     // Spline tolerance on the sum of squared residuals
	BaselineWeight   float64 `yaml:"baseline_weight"`      // Uniform density floor blended into the curvature density
	SectionSplit     bool    `yaml:"section_split"`        // Downsample before/after SectionSplitTime independently
	SectionSplitTime float64 `yaml:"section_split_time_s"` // Section boundary in seconds
}

// SavgolConfig contains the non-uniform Savitzky-Golay filter parameters.
type SavgolConfig struct {
	Apply   bool `yaml:"apply"`
	Window  int  `yaml:"window"`  // Odd window length in samples
	Polynom int  `yaml:"polynom"` // Polynomial order, less than Window
}

// DerivativeConfig contains parameters for the smoothed heat flow derivatives.
type DerivativeConfig struct {
	MedianFilterSize int `yaml:"median_filter_size"` // 0 or 1 disables the median filter
}

// ResampleConfig contains equidistant resampling parameters.
type ResampleConfig struct {
	IntervalSeconds float64 `yaml:"interval_s"`
}

// PeriodConfig contains parameters for detecting rising heat flow periods.
type PeriodConfig struct {
	SlopeThreshold     float64 `yaml:"slope_threshold"` // Heat flow slope a period must exceed (W/g/s)
	MinDurationSeconds float64 `yaml:"min_duration_s"`  // Shorter periods are discarded as noise
}

// GeneratorConfig describes a synthetic calorimetry curve.
type GeneratorConfig struct {
	DurationSeconds float64 `yaml:"duration_s"`      // Total curve length
	StepSeconds     float64 `yaml:"step_s"`          // Sampling interval
	Jitter          float64 `yaml:"jitter"`          // Relative sampling interval jitter (0 = uniform grid)
	SpikeHeight     float64 `yaml:"spike_height"`    // Initial dissolution spike (W/g)
	SpikeDecay      float64 `yaml:"spike_decay_s"`   // Spike decay time constant
	PeakHeight      float64 `yaml:"peak_height"`     // Main hydration peak (W/g)
	PeakTime        float64 `yaml:"peak_time_s"`     // Main hydration peak position
	PeakWidth       float64 `yaml:"peak_width_s"`    // Main hydration peak width
	TimeConstant    float64 `yaml:"time_constant_s"` // Instrument thermal lag (0 = none)
	NoiseLevel      float64 `yaml:"noise_level"`     // Additive noise amplitude (W/g)
	Seed            int64   `yaml:"seed"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Downsample: DownsampleConfig{
			NumPoints:        1000,
			SmoothingFactor:  1e-10,
			BaselineWeight:   0.1,
			SectionSplit:     true,
			SectionSplitTime: 1000,
		},
		Savgol: SavgolConfig{
			Apply:   true,
			Window:  11,
			Polynom: 3,
		},
		Derivative: DerivativeConfig{
			MedianFilterSize: 7,
		},
		Resample: ResampleConfig{
			IntervalSeconds: 10,
		},
		Period: PeriodConfig{
			SlopeThreshold:     1e-7,
			MinDurationSeconds: 1800,
		},
		Generator: GeneratorConfig{
			DurationSeconds: 48 * 3600,
			StepSeconds:     10,
			Jitter:          0,
			SpikeHeight:     0.02,
			SpikeDecay:      300,
			PeakHeight:      0.003,
			PeakTime:        10 * 3600,
			PeakWidth:       3 * 3600,
			NoiseLevel:      0,
			Seed:            1,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.Downsample.Validate(); err != nil {
		return errors.Wrap(err, "downsample")
	}
	if c.Savgol.Window <= 0 || c.Savgol.Window%2 == 0 {
		return errors.Errorf("savgol: window must be a positive odd integer, got %d", c.Savgol.Window)
	}
	if c.Savgol.Polynom < 0 || c.Savgol.Polynom >= c.Savgol.Window {
		return errors.Errorf("savgol: polynom must be in [0, %d), got %d", c.Savgol.Window, c.Savgol.Polynom)
	}
	if c.Derivative.MedianFilterSize < 0 {
		return errors.Errorf("derivative: median_filter_size must not be negative, got %d", c.Derivative.MedianFilterSize)
	}
	if c.Resample.IntervalSeconds <= 0 {
		return errors.Errorf("resample: interval_s must be positive, got %g", c.Resample.IntervalSeconds)
	}
	if math.IsNaN(c.Period.SlopeThreshold) || math.IsInf(c.Period.SlopeThreshold, 0) {
		return errors.Errorf("period: slope_threshold must be finite, got %g", c.Period.SlopeThreshold)
	}
	if c.Period.MinDurationSeconds < 0 {
		return errors.Errorf("period: min_duration_s must not be negative, got %g", c.Period.MinDurationSeconds)
	}
	return nil
}

// Validate rejects a non-positive target count and negative tolerances.
func (d DownsampleConfig) Validate() error {
	if d.NumPoints <= 0 {
		return errors.Errorf("num_points must be positive, got %d", d.NumPoints)
	}
	if d.SectionSplit && d.NumPoints < 2 {
		return errors.Errorf("num_points must be at least 2 with section_split, got %d", d.NumPoints)
	}
	if d.SmoothingFactor < 0 {
		return errors.Errorf("smoothing_factor must not be negative, got %g", d.SmoothingFactor)
	}
	if d.BaselineWeight < 0 {
		return errors.Errorf("baseline_weight must not be negative, got %g", d.BaselineWeight)
	}
	return nil
}

// PointsPerSection returns the target count used for each downsampled segment.
// With section splitting enabled every section gets half of NumPoints.
func (d DownsampleConfig) PointsPerSection() int {
	if d.SectionSplit {
		return d.NumPoints / 2
	}
	return d.NumPoints
}

// ensureDefaults ensures that all required fields have default values if missing.
// Booleans and zero-valued tolerances are legitimate settings and are kept as loaded.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Downsample.NumPoints == 0 {
		c.Downsample.NumPoints = def.Downsample.NumPoints
	}

	if c.Savgol.Window == 0 {
		c.Savgol.Window = def.Savgol.Window
	}

	if c.Resample.IntervalSeconds == 0 {
		c.Resample.IntervalSeconds = def.Resample.IntervalSeconds
	}

	if c.Generator.DurationSeconds == 0 {
		c.Generator.DurationSeconds = def.Generator.DurationSeconds
	}
	if c.Generator.StepSeconds == 0 {
		c.Generator.StepSeconds = def.Generator.StepSeconds
	}
	if c.Generator.SpikeDecay == 0 {
		c.Generator.SpikeDecay = def.Generator.SpikeDecay
	}
	if c.Generator.PeakTime == 0 {
		c.Generator.PeakTime = def.Generator.PeakTime
	}
	if c.Generator.PeakWidth == 0 {
		c.Generator.PeakWidth = def.Generator.PeakWidth
	}
}
