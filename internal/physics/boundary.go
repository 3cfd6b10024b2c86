package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Boundary is a circular container.
type Boundary struct {
	Center r2.Vec   `json:"center"`
	Radius float64 `json:"radius"`
}

// Constrain clamps p back inside the circle and reports whether it moved.
// The correction is purely positional. Static particles are never moved.
func (b Boundary) Constrain(p *Particle) bool {
	if p.Static {
		return false
	}
	clamped := b.Clamp(p.Current, p.Radius)
	if clamped == p.Current {
		return false
	}
	p.Current = clamped
	return true
}

// Clamp returns the closest point to pos where a circle of the given radius
// lies inside the boundary.
func (b Boundary) Clamp(pos r2.Vec, radius float64) r2.Vec {
	to := r2.Sub(pos, b.Center)
	dist := r2.Norm(to)
	limit := math.Max(0, b.Radius-radius)
	if dist <= limit || dist == 0 {
		return pos
	}
	return r2.Add(b.Center, r2.Scale(limit/dist, to))
}

// Violation is how far p reaches past the circle, zero when contained.
func (b Boundary) Violation(p Particle) float64 {
	d := r2.Norm(r2.Sub(p.Current, b.Center)) - (b.Radius - p.Radius)
	return math.Max(0, d)
}

// Box is the square enclosing the circle.
func (b Boundary) Box() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: b.Center.X - b.Radius, Y: b.Center.Y - b.Radius},
		Max: r2.Vec{X: b.Center.X + b.Radius, Y: b.Center.Y + b.Radius},
	}
}
