package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a circle whose velocity is implied by Current - Previous.
type Particle struct {
	Current     r2.Vec
	Previous    r2.Vec
	Radius      float64
	Static      bool
	Temperature float64

	acc r2.Vec
}

// NewParticle returns a particle at rest at pos.
func NewParticle(pos r2.Vec, radius float64, static bool) Particle {
	return Particle{
		Current:  pos,
		Previous: pos,
		Radius:   radius,
		Static:   static,
	}
}

// Accelerate adds a to the acceleration accumulated for the next step.
func (p *Particle) Accelerate(a r2.Vec) {
	p.acc = r2.Add(p.acc, a)
}

// Acceleration returns the accumulated acceleration.
func (p *Particle) Acceleration() r2.Vec {
	return p.acc
}

// Integrate performs one Störmer-Verlet step. drag scales the implied
// velocity by (1 - drag); zero keeps the scheme exact and time reversible.
// Static particles keep their position. The accumulator is always cleared.
func (p *Particle) Integrate(dt, drag float64) {
	if !p.Static {
		vel := r2.Sub(p.Current, p.Previous)
		if drag != 0 {
			vel = r2.Scale(1-drag, vel)
		}
		next := r2.Add(r2.Add(p.Current, vel), r2.Scale(dt*dt, p.acc))
		p.Previous = p.Current
		p.Current = next
	}
	p.acc = r2.Vec{}
}

// SetStatic pins or releases the particle. Pinning discards the implied
// velocity so a static particle can never drift.
func (p *Particle) SetStatic(static bool) {
	p.Static = static
	if static {
		p.Previous = p.Current
	}
}

// MoveTo teleports the particle to pos with zero velocity.
func (p *Particle) MoveTo(pos r2.Vec) {
	p.Current = pos
	p.Previous = pos
}

// Displacement is the position change over the last step.
func (p *Particle) Displacement() r2.Vec {
	return r2.Sub(p.Current, p.Previous)
}

// Velocity is the displacement divided by the step that produced it.
func (p *Particle) Velocity(dt float64) r2.Vec {
	if dt <= 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/dt, p.Displacement())
}

// Bounds is the axis-aligned square of side 2*Radius centred on Current.
func (p *Particle) Bounds() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: p.Current.X - p.Radius, Y: p.Current.Y - p.Radius},
		Max: r2.Vec{X: p.Current.X + p.Radius, Y: p.Current.Y + p.Radius},
	}
}

// IsValid reports whether both positions are finite.
func (p *Particle) IsValid() bool {
	for _, v := range [...]float64{p.Current.X, p.Current.Y, p.Previous.X, p.Previous.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
