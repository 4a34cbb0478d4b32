// internal/pointer/field.go
package pointer

import (
	"math"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
)

// Source is a single point of influence in a Field: an attractor for positive
// strength, a repulsor for negative strength.
type Source struct {
	Position gazesim.Vector2D
	Strength float64
	// Falloff is the distance constant of the exponential decay; larger
	// values widen the area of influence.
	Falloff float64
}

// Field deforms generated pointer paths, modeling a cursor pulled toward
// interactive elements or pushed away from obstacles. An empty field leaves
// paths as plain Bezier curves.
type Field struct {
	sources []Source
}

// NewField returns an empty Field.
func NewField() *Field {
	return &Field{sources: make([]Source, 0)}
}

// AddSource appends an attractor or repulsor to the field.
func (f *Field) AddSource(pos gazesim.Vector2D, strength, falloff float64) {
	f.sources = append(f.sources, Source{Position: pos, Strength: strength, Falloff: falloff})
}

// NetForce sums the force vectors all sources exert on point p, each decaying
// exponentially with distance: F = S * exp(-d/L).
func (f *Field) NetForce(p gazesim.Vector2D) gazesim.Vector2D {
	var net gazesim.Vector2D
	for _, src := range f.sources {
		toSource := src.Position.Sub(p)
		dist := toSource.Mag()
		if dist < 1e-9 {
			continue
		}
		magnitude := src.Strength * math.Exp(-dist/src.Falloff)
		net = net.Add(toSource.Mul(magnitude / dist))
	}
	return net
}
