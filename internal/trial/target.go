// internal/trial/target.go
package trial

import (
	"math"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
)

// Target is a circular acquisition target.
type Target struct {
	Center gazesim.Vector2D
	// Width is the target diameter in pixels (the W of Fitts's Law).
	Width float64
}

// Radius returns half the target width.
func (t Target) Radius() float64 { return t.Width / 2.0 }

// Contains reports whether p lies within the target.
func (t Target) Contains(p gazesim.Vector2D) bool {
	return t.Center.Dist(p) <= t.Radius()
}

// IndexOfDifficulty returns the Shannon formulation ID = log2(1 + A/W),
// bits, for a movement of amplitude A to a target of width W.
func IndexOfDifficulty(amplitude, width float64) float64 {
	if width <= 0 {
		return 0
	}
	return math.Log2(1.0 + amplitude/width)
}

// RingLayout places targets evenly on a circle, the ISO 9241-9 multidirectional
// pointing arrangement. Amplitude is the circle diameter, so consecutive
// trials in the alternating order cross approximately that distance.
type RingLayout struct {
	Center    gazesim.Vector2D
	Amplitude float64
	Width     float64
	Count     int
}

// Targets returns the ring targets in the alternating presentation order:
// each trial jumps roughly across the circle, stepping around by
// ceil(Count/2) positions. Count should be odd so every target is visited
// exactly once per lap.
func (r RingLayout) Targets() []Target {
	n := r.Count
	if n <= 0 {
		n = 9
	}
	radius := r.Amplitude / 2.0
	step := (n + 1) / 2

	out := make([]Target, 0, n)
	for j := 0; j < n; j++ {
		idx := (j * step) % n
		angle := 2 * math.Pi * float64(idx) / float64(n)
		out = append(out, Target{
			Center: gazesim.Vector2D{
				X: r.Center.X + radius*math.Cos(angle),
				Y: r.Center.Y + radius*math.Sin(angle),
			},
			Width: r.Width,
		})
	}
	return out
}
