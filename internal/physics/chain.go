package physics

import "gonum.org/v1/gonum/spatial/r2"

const minChainParticles = 3

// Chain is a blueprint of particles joined end to end by links of equal
// rest length. It owns nothing once added to a solver.
type Chain struct {
	Particles  []Particle
	RestLength float64
}

// NewChain lays n particles on the segment start-end and pins both ends.
func NewChain(n int, start, end r2.Vec, radius, restLength float64) Chain {
	if n < minChainParticles {
		n = minChainParticles
	}
	c := Chain{Particles: make([]Particle, n), RestLength: restLength}
	step := r2.Scale(1/float64(n-1), r2.Sub(end, start))
	for i := range c.Particles {
		pos := r2.Add(start, r2.Scale(float64(i), step))
		c.Particles[i] = NewParticle(pos, radius, i == 0 || i == n-1)
	}
	return c
}

// NewHangingChain pins only the first particle and lays the rest straight
// down (+Y) at rest length spacing.
func NewHangingChain(n int, start r2.Vec, radius, restLength float64) Chain {
	if n < minChainParticles {
		n = minChainParticles
	}
	c := Chain{Particles: make([]Particle, n), RestLength: restLength}
	for i := range c.Particles {
		pos := r2.Vec{X: start.X, Y: start.Y + restLength*float64(i)}
		c.Particles[i] = NewParticle(pos, radius, i == 0)
	}
	return c
}

// Links returns the constraints between consecutive particles, with indices
// shifted by offset (the pool index of the first particle).
func (c Chain) Links(offset int) []Link {
	if len(c.Particles) < 2 {
		return nil
	}
	links := make([]Link, 0, len(c.Particles)-1)
	for i := 0; i < len(c.Particles)-1; i++ {
		links = append(links, Link{A: offset + i, B: offset + i + 1, RestLength: c.RestLength})
	}
	return links
}
