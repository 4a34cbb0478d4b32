// internal/gazesim/noise.go
package gazesim

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// driftFrequency sets how fast the Perlin drift wanders, in noise-space units
// per second. Low values give the slow ocular drift seen during fixation.
const driftFrequency = 0.4

// tremorGenerator draws the per-axis Gaussian fixation jitter and the slow
// Perlin drift. A Simulator owns exactly one; it is not safe for concurrent
// use, matching the simulator's single-owner state model.
type tremorGenerator struct {
	rng    *rand.Rand
	driftX *perlin.Perlin
	driftY *perlin.Perlin

	// Polar-method Gaussian draws come in pairs; the spare is cached.
	spare    float64
	hasSpare bool
}

func newTremorGenerator(rng *rand.Rand, seed int64) *tremorGenerator {
	// Standard Perlin parameters, offset seed so the axes are independent.
	alpha, beta, n := 2.0, 2.0, int32(3)
	return &tremorGenerator{
		rng:    rng,
		driftX: perlin.NewPerlin(alpha, beta, n, seed),
		driftY: perlin.NewPerlin(alpha, beta, n, seed+1),
	}
}

// gaussian returns a standard normal draw using the polar (Marsaglia) form of
// the Box-Muller transform over two independent uniform draws.
func (g *tremorGenerator) gaussian() float64 {
	if g.hasSpare {
		g.hasSpare = false
		return g.spare
	}
	for {
		u := g.rng.Float64()*2.0 - 1.0
		v := g.rng.Float64()*2.0 - 1.0
		s := u*u + v*v
		if s <= 0 || s >= 1 {
			continue
		}
		f := math.Sqrt(-2.0 * math.Log(s) / s)
		g.spare = v * f
		g.hasSpare = true
		return u * f
	}
}

// jitter returns a Gaussian offset with per-axis standard deviation stdDev.
func (g *tremorGenerator) jitter(stdDev float64) Vector2D {
	if stdDev <= 0 {
		return Vector2D{}
	}
	return Vector2D{
		X: g.gaussian() * stdDev,
		Y: g.gaussian() * stdDev,
	}
}

// drift returns the slow Perlin displacement at elapsed seconds t.
func (g *tremorGenerator) drift(t, amplitude float64) Vector2D {
	if amplitude <= 0 {
		return Vector2D{}
	}
	return Vector2D{
		X: g.driftX.Noise1D(t*driftFrequency) * amplitude,
		Y: g.driftY.Noise1D(t*driftFrequency) * amplitude,
	}
}

// adaptiveNoiseScale computes the standard-deviation multiplier for the
// adaptive policy, given the smoothed position before noise is applied.
//
// Small targets shrink the baseline to targetSize/30 with a floor of 0.2, and
// proximity to the target center within 1.5x the target radius shrinks it
// further toward 0.3. The 0.2 floor binds the combined scale for small
// targets, so proximity can never push a small-target scale below it.
func adaptiveNoiseScale(cfg *Config, smoothed Vector2D) float64 {
	if cfg.NoisePolicy != NoiseAdaptive {
		return 1.0
	}

	smallTarget := cfg.TargetSize > 0 && cfg.TargetSize < 30
	scale := 1.0
	if smallTarget {
		scale = math.Max(0.2, cfg.TargetSize/30.0)
	}

	if cfg.TargetPosition != nil {
		radius := 20.0
		if cfg.TargetSize > 0 {
			radius = cfg.TargetSize / 2.0
		}
		dist := smoothed.Dist(*cfg.TargetPosition)
		if dist < 1.5*radius {
			scale *= 0.3 + (dist/(1.5*radius))*0.7
		}
	}

	if smallTarget {
		scale = math.Max(0.2, scale)
	}
	return scale
}
