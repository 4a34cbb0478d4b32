// internal/pointer/generator.go
//
// Package pointer synthesizes raw hand-pointer streams with realistic
// kinematics: Fitts's-Law movement durations, an ease-in-out velocity
// profile, Bezier paths deformed by a potential field, and Perlin drift plus
// Gaussian tremor. Offline trial runs feed these streams into the gaze
// simulator so the saccade detector sees plausible ballistic movements.
package pointer

import (
	"math"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
)

// perlinFrequency paces the wander of the low-frequency hand drift.
const perlinFrequency = 0.8

// Config holds the kinematic parameters of the synthetic hand.
type Config struct {
	// FittsA and FittsB are the intercept and slope of the Fitts's-Law
	// movement-time model, in milliseconds.
	FittsA float64
	FittsB float64
	// ReferenceWidth is the assumed target width W for the index of
	// difficulty when the caller does not supply one.
	ReferenceWidth float64
	// GaussianStrength is the high-frequency tremor in pixels.
	GaussianStrength float64
	// PerlinAmplitude is the low-frequency drift in pixels.
	PerlinAmplitude float64
	// SampleInterval is the cadence of the emitted raw samples.
	SampleInterval time.Duration
	// Rng supplies all random draws. Nil selects a time-seeded source.
	Rng *rand.Rand
}

// DefaultConfig models an average user on a 60 Hz pointer device.
func DefaultConfig() Config {
	return Config{
		FittsA:           100.0,
		FittsB:           150.0,
		ReferenceWidth:   30.0,
		GaussianStrength: 0.5,
		PerlinAmplitude:  2.0,
		SampleInterval:   16 * time.Millisecond,
	}
}

// TimedPoint is one raw pointer sample with its offset from movement start.
type TimedPoint struct {
	Pos gazesim.Vector2D
	At  time.Duration
}

// Generator produces hand-pointer paths. Not safe for concurrent use; create
// one per session.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	noiseX *perlin.Perlin
	noiseY *perlin.Perlin
}

// New creates a Generator from cfg.
func New(cfg Config) *Generator {
	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 16 * time.Millisecond
	}
	if cfg.ReferenceWidth <= 0 {
		cfg.ReferenceWidth = 30.0
	}
	// Perlin seeds derive from rng so a seeded generator replays exactly.
	seed := rng.Int63()
	alpha, beta, n := 2.0, 2.0, int32(3)
	return &Generator{
		cfg:    cfg,
		rng:    rng,
		noiseX: perlin.NewPerlin(alpha, beta, n, seed),
		noiseY: perlin.NewPerlin(alpha, beta, n, seed+1),
	}
}

// SampleInterval returns the cadence of generated raw-sample streams.
func (g *Generator) SampleInterval() time.Duration { return g.cfg.SampleInterval }

// easeInOutCubic shapes the time axis into an acceleration/deceleration
// profile, peaking in velocity mid-movement.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// MovementTime returns a Fitts's-Law duration MT = A + B*log2(1 + D/W) with
// +/- 15% randomization.
func (g *Generator) MovementTime(distance, width float64) time.Duration {
	if width <= 0 {
		width = g.cfg.ReferenceWidth
	}
	id := math.Log2(1.0 + distance/width)
	mt := g.cfg.FittsA + g.cfg.FittsB*id
	mt += mt * (g.rng.Float64()*0.3 - 0.15)
	if mt < 0 {
		mt = 0
	}
	return time.Duration(mt) * time.Millisecond
}

// bezierPath builds a cubic Bezier from start to end whose control points are
// displaced by the field forces sampled a third and two thirds of the way in.
func (g *Generator) bezierPath(start, end gazesim.Vector2D, field *Field, steps int) []gazesim.Vector2D {
	p0, p3 := start, end
	mainVec := end.Sub(start)
	dist := mainVec.Mag()
	if dist < 1.0 || steps <= 1 {
		return []gazesim.Vector2D{end}
	}

	mainDir := mainVec.Normalize()
	sample1 := start.Add(mainDir.Mul(dist / 3.0))
	sample2 := start.Add(mainDir.Mul(dist * 2.0 / 3.0))
	p1 := sample1.Add(field.NetForce(sample1).Mul(dist * 0.1))
	p2 := sample2.Add(field.NetForce(sample2).Mul(dist * 2.0 / 3.0))

	path := make([]gazesim.Vector2D, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		omt := 1.0 - t
		omt2 := omt * omt
		omt3 := omt2 * omt
		t2 := t * t
		t3 := t2 * t
		path[i] = p0.Mul(omt3).
			Add(p1.Mul(3 * omt2 * t)).
			Add(p2.Mul(3 * omt * t2)).
			Add(p3.Mul(t3))
	}
	return path
}

// Move generates the raw sample stream for one movement from start to end
// toward a target of the given width. Samples are spaced at the configured
// interval; positions follow the eased fraction of the Bezier path so the
// velocity profile accelerates and decelerates like a real reach.
func (g *Generator) Move(start, end gazesim.Vector2D, width float64, field *Field) []TimedPoint {
	if field == nil {
		field = NewField()
	}

	duration := g.MovementTime(start.Dist(end), width)
	steps := int(duration / g.cfg.SampleInterval)
	if steps < 2 {
		steps = 2
	}

	path := g.bezierPath(start, end, field, steps)
	out := make([]TimedPoint, 0, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		eased := easeInOutCubic(t)

		idx := int(eased * float64(len(path)-1))
		if idx >= len(path) {
			idx = len(path) - 1
		}
		pos := path[idx]

		at := time.Duration(t * float64(duration))
		elapsed := at.Seconds()
		pos = pos.Add(gazesim.Vector2D{
			X: g.noiseX.Noise1D(elapsed*perlinFrequency) * g.cfg.PerlinAmplitude,
			Y: g.noiseY.Noise1D(elapsed*perlinFrequency) * g.cfg.PerlinAmplitude,
		})
		pos = pos.Add(gazesim.Vector2D{
			X: g.rng.NormFloat64() * g.cfg.GaussianStrength,
			Y: g.rng.NormFloat64() * g.cfg.GaussianStrength,
		})

		out = append(out, TimedPoint{Pos: pos, At: at})
	}
	return out
}

// Hold emits a stationary stream at pos for the given duration, tremor only.
// Trial runs use it to model the dwell phase after target entry.
func (g *Generator) Hold(pos gazesim.Vector2D, duration time.Duration) []TimedPoint {
	steps := int(duration / g.cfg.SampleInterval)
	if steps < 1 {
		steps = 1
	}
	out := make([]TimedPoint, 0, steps)
	for i := 0; i < steps; i++ {
		p := pos.Add(gazesim.Vector2D{
			X: g.rng.NormFloat64() * g.cfg.GaussianStrength * 0.5,
			Y: g.rng.NormFloat64() * g.cfg.GaussianStrength * 0.5,
		})
		out = append(out, TimedPoint{Pos: p, At: time.Duration(i) * g.cfg.SampleInterval})
	}
	return out
}
