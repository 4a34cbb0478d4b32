// internal/gazesim/config.go
package gazesim

import (
	"fmt"
	"math/rand"
)

// NoisePolicy selects how the fixation noise standard deviation is applied.
type NoisePolicy string

const (
	// NoiseFixed always applies the configured standard deviation. This keeps
	// the noise process constant across target sizes, which is required for
	// unbiased Fitts's-Law throughput estimates.
	NoiseFixed NoisePolicy = "fixed"
	// NoiseAdaptive shrinks the standard deviation for small targets and near
	// the target center, trading physiological fidelity for dwell accuracy.
	NoiseAdaptive NoisePolicy = "adaptive"
)

// Config holds the parameters of the gaze-dynamics simulation. The bundle is
// treated as immutable once handed to a Simulator.
type Config struct {
	// SmoothingFactor is the per-tick lerp fraction toward the raw position,
	// in (0, 1]. It is a fixed fraction per tick, not time-normalized, so the
	// effective tracker lag scales with the tick rate.
	SmoothingFactor float64

	// FixationNoiseStdDev is the standard deviation of the per-axis Gaussian
	// tremor applied while fixating, in pixels.
	FixationNoiseStdDev float64

	// FixationVelocityThreshold is the velocity below which the gaze counts as
	// genuinely still and tremor applies. Same unit as the measured velocity
	// (px/s, or deg/s when PixelsPerDegree is set).
	FixationVelocityThreshold float64

	// SaccadeVelocityThreshold is the velocity above which a saccade begins.
	SaccadeVelocityThreshold float64

	// PixelsPerDegree converts pixel velocity to angular velocity. When > 0,
	// both thresholds are interpreted in deg/s; saccade physiology is
	// resolution-independent, so angular thresholds are preferred. Zero leaves
	// velocity in px/s, which makes realism depend on screen geometry.
	PixelsPerDegree float64

	// EnableSaccadicSuppression gates the Saccading state entirely. When
	// false the output never freezes, regardless of velocity.
	EnableSaccadicSuppression bool

	// NoisePolicy selects fixed or adaptive tremor. Empty means NoiseFixed.
	NoisePolicy NoisePolicy

	// DriftAmplitude is the amplitude in pixels of the slow Perlin ocular
	// drift layered under the tremor. Zero disables drift.
	DriftAmplitude float64

	// TargetSize and TargetPosition inform the adaptive noise policy. Both
	// are optional; TargetSize <= 0 means unknown.
	TargetSize     float64
	TargetPosition *Vector2D

	// Rng supplies all random draws. Nil selects a time-seeded source.
	Rng *rand.Rand
}

// DefaultConfig returns a configuration tuned for a 60 Hz host loop on a
// typical desktop display at normal viewing distance.
func DefaultConfig() Config {
	return Config{
		SmoothingFactor:           0.3,
		FixationNoiseStdDev:       2.0,
		FixationVelocityThreshold: 20.0,
		SaccadeVelocityThreshold:  240.0,
		PixelsPerDegree:           35.0,
		EnableSaccadicSuppression: true,
		NoisePolicy:               NoiseFixed,
		DriftAmplitude:            0.8,
	}
}

// Validate checks the configuration preconditions once, so the per-tick path
// never has to guard against NaN-producing values.
func (c *Config) Validate() error {
	if c.SmoothingFactor <= 0 || c.SmoothingFactor > 1 {
		return fmt.Errorf("gazesim: smoothing factor must be in (0, 1], got %v", c.SmoothingFactor)
	}
	if c.FixationNoiseStdDev < 0 {
		return fmt.Errorf("gazesim: fixation noise std dev must be >= 0, got %v", c.FixationNoiseStdDev)
	}
	if c.PixelsPerDegree < 0 {
		return fmt.Errorf("gazesim: pixels per degree must be > 0 when set, got %v", c.PixelsPerDegree)
	}
	if c.FixationVelocityThreshold < 0 || c.SaccadeVelocityThreshold < 0 {
		return fmt.Errorf("gazesim: velocity thresholds must be >= 0")
	}
	if c.FixationVelocityThreshold > c.SaccadeVelocityThreshold {
		return fmt.Errorf("gazesim: fixation threshold %v exceeds saccade threshold %v",
			c.FixationVelocityThreshold, c.SaccadeVelocityThreshold)
	}
	if c.DriftAmplitude < 0 {
		return fmt.Errorf("gazesim: drift amplitude must be >= 0, got %v", c.DriftAmplitude)
	}
	switch c.NoisePolicy {
	case "", NoiseFixed, NoiseAdaptive:
	default:
		return fmt.Errorf("gazesim: unknown noise policy %q", c.NoisePolicy)
	}
	return nil
}
