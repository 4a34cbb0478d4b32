// File: internal/config/config.go
package config

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/viper"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/pointer"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/trial"
)

// Config holds the application configuration, loaded from a YAML file and
// GAZESIM_* environment variables via viper.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
	Pointer    PointerConfig    `mapstructure:"pointer" yaml:"pointer"`
	Trial      TrialConfig      `mapstructure:"trial" yaml:"trial"`

	// Run is populated from CLI flags, never from the config file.
	Run RunConfig `mapstructure:"-" yaml:"-"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SimulationConfig mirrors gazesim.Config in file-friendly form.
type SimulationConfig struct {
	SmoothingFactor           float64 `mapstructure:"smoothing_factor" yaml:"smoothing_factor"`
	FixationNoiseStdDev       float64 `mapstructure:"fixation_noise_std_dev" yaml:"fixation_noise_std_dev"`
	FixationVelocityThreshold float64 `mapstructure:"fixation_velocity_threshold" yaml:"fixation_velocity_threshold"`
	SaccadeVelocityThreshold  float64 `mapstructure:"saccade_velocity_threshold" yaml:"saccade_velocity_threshold"`
	PixelsPerDegree           float64 `mapstructure:"pixels_per_degree" yaml:"pixels_per_degree"`
	EnableSaccadicSuppression bool    `mapstructure:"enable_saccadic_suppression" yaml:"enable_saccadic_suppression"`
	NoisePolicy               string  `mapstructure:"noise_policy" yaml:"noise_policy"`
	DriftAmplitude            float64 `mapstructure:"drift_amplitude" yaml:"drift_amplitude"`
	RefreshHz                 float64 `mapstructure:"refresh_hz" yaml:"refresh_hz"`
}

// ToSimulator converts the section to a gazesim.Config using rng for all
// stochastic terms.
func (c SimulationConfig) ToSimulator(rng *rand.Rand) gazesim.Config {
	return gazesim.Config{
		SmoothingFactor:           c.SmoothingFactor,
		FixationNoiseStdDev:       c.FixationNoiseStdDev,
		FixationVelocityThreshold: c.FixationVelocityThreshold,
		SaccadeVelocityThreshold:  c.SaccadeVelocityThreshold,
		PixelsPerDegree:           c.PixelsPerDegree,
		EnableSaccadicSuppression: c.EnableSaccadicSuppression,
		NoisePolicy:               gazesim.NoisePolicy(c.NoisePolicy),
		DriftAmplitude:            c.DriftAmplitude,
		Rng:                       rng,
	}
}

// PointerConfig tunes the synthetic hand-pointer kinematics.
type PointerConfig struct {
	FittsA           float64 `mapstructure:"fitts_a" yaml:"fitts_a"`
	FittsB           float64 `mapstructure:"fitts_b" yaml:"fitts_b"`
	GaussianStrength float64 `mapstructure:"gaussian_strength" yaml:"gaussian_strength"`
	PerlinAmplitude  float64 `mapstructure:"perlin_amplitude" yaml:"perlin_amplitude"`
	SampleIntervalMs int     `mapstructure:"sample_interval_ms" yaml:"sample_interval_ms"`
}

// ToGenerator converts the section to a pointer.Config.
func (c PointerConfig) ToGenerator(rng *rand.Rand) pointer.Config {
	cfg := pointer.DefaultConfig()
	cfg.FittsA = c.FittsA
	cfg.FittsB = c.FittsB
	cfg.GaussianStrength = c.GaussianStrength
	cfg.PerlinAmplitude = c.PerlinAmplitude
	cfg.SampleInterval = time.Duration(c.SampleIntervalMs) * time.Millisecond
	cfg.Rng = rng
	return cfg
}

// TrialConfig defines the trial block structure and selection policy.
type TrialConfig struct {
	Modality      string  `mapstructure:"modality" yaml:"modality"`
	Blocks        int     `mapstructure:"blocks" yaml:"blocks"`
	DwellMs       int     `mapstructure:"dwell_ms" yaml:"dwell_ms"`
	TimeoutMs     int     `mapstructure:"timeout_ms" yaml:"timeout_ms"`
	RingCenterX   float64 `mapstructure:"ring_center_x" yaml:"ring_center_x"`
	RingCenterY   float64 `mapstructure:"ring_center_y" yaml:"ring_center_y"`
	RingAmplitude float64 `mapstructure:"ring_amplitude" yaml:"ring_amplitude"`
	RingWidth     float64 `mapstructure:"ring_width" yaml:"ring_width"`
	RingCount     int     `mapstructure:"ring_count" yaml:"ring_count"`

	// ExcludeSaccadesFromDwell keeps suppression-frozen samples out of the
	// dwell-timer accumulation.
	ExcludeSaccadesFromDwell bool `mapstructure:"exclude_saccades_from_dwell" yaml:"exclude_saccades_from_dwell"`
}

// ToSession converts the section to a trial.SessionConfig.
func (c TrialConfig) ToSession() trial.SessionConfig {
	return trial.SessionConfig{
		Modality: trial.Modality(c.Modality),
		Blocks:   c.Blocks,
		Ring: trial.RingLayout{
			Center:    gazesim.Vector2D{X: c.RingCenterX, Y: c.RingCenterY},
			Amplitude: c.RingAmplitude,
			Width:     c.RingWidth,
			Count:     c.RingCount,
		},
		DwellTime:                time.Duration(c.DwellMs) * time.Millisecond,
		TrialTimeout:             time.Duration(c.TimeoutMs) * time.Millisecond,
		ExcludeSaccadesFromDwell: c.ExcludeSaccadesFromDwell,
	}
}

// RunConfig holds per-invocation settings sourced from CLI flags.
type RunConfig struct {
	OutputDir string
	Seed      int64
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "gazesim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Simulation --
	v.SetDefault("simulation.smoothing_factor", 0.3)
	v.SetDefault("simulation.fixation_noise_std_dev", 2.0)
	v.SetDefault("simulation.fixation_velocity_threshold", 20.0)
	v.SetDefault("simulation.saccade_velocity_threshold", 240.0)
	v.SetDefault("simulation.pixels_per_degree", 35.0)
	v.SetDefault("simulation.enable_saccadic_suppression", true)
	v.SetDefault("simulation.noise_policy", "fixed")
	v.SetDefault("simulation.drift_amplitude", 0.8)
	v.SetDefault("simulation.refresh_hz", 60.0)

	// -- Pointer --
	v.SetDefault("pointer.fitts_a", 100.0)
	v.SetDefault("pointer.fitts_b", 150.0)
	v.SetDefault("pointer.gaussian_strength", 0.5)
	v.SetDefault("pointer.perlin_amplitude", 2.0)
	v.SetDefault("pointer.sample_interval_ms", 16)

	// -- Trial --
	v.SetDefault("trial.modality", "gaze")
	v.SetDefault("trial.blocks", 3)
	v.SetDefault("trial.dwell_ms", 500)
	v.SetDefault("trial.timeout_ms", 8000)
	v.SetDefault("trial.ring_center_x", 640.0)
	v.SetDefault("trial.ring_center_y", 400.0)
	v.SetDefault("trial.ring_amplitude", 400.0)
	v.SetDefault("trial.ring_width", 48.0)
	v.SetDefault("trial.ring_count", 9)
	v.SetDefault("trial.exclude_saccades_from_dwell", true)
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration once at load time, so the per-tick
// simulation path can assume well-formed parameters.
func (c *Config) Validate() error {
	sim := c.Simulation.ToSimulator(nil)
	if err := sim.Validate(); err != nil {
		return err
	}
	if c.Simulation.RefreshHz <= 0 {
		return fmt.Errorf("simulation.refresh_hz must be positive, got %v", c.Simulation.RefreshHz)
	}
	if c.Pointer.SampleIntervalMs <= 0 {
		return fmt.Errorf("pointer.sample_interval_ms must be positive, got %d", c.Pointer.SampleIntervalMs)
	}
	sess := c.Trial.ToSession()
	if err := sess.Validate(); err != nil {
		return err
	}
	return nil
}
