package solver

import (
	"iter"

	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Body is the renderable view of one particle.
type Body struct {
	Handle       Handle  `json:"handle"`
	Position     r2.Vec  `json:"position"`
	Displacement r2.Vec  `json:"displacement"` // position change over the last substep
	Radius       float64 `json:"radius"`
	Static       bool    `json:"static"`
	Temperature  float64 `json:"temperature"`
	Bucket       int     `json:"bucket"` // display colour bucket, 0 when temperature is disabled
}

// Resolved is where the body stood after the last collision and link pass,
// before it was integrated.
func (b Body) Resolved() r2.Vec {
	return r2.Sub(b.Position, b.Displacement)
}

// Snapshot is a read-only copy of the solver state after a tick.
type Snapshot struct {
	Tick     int              `json:"tick"`
	Time     float64          `json:"time"`
	SubDt    float64          `json:"sub_dt"`
	Boundary physics.Boundary `json:"boundary"`
	Bodies   []Body           `json:"bodies"`
	Links    []physics.Link   `json:"links"`
}

// Velocity is the implied velocity over a substep of length subDt.
func (b Body) Velocity(subDt float64) r2.Vec {
	if subDt <= 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/subDt, b.Displacement)
}

// All yields the bodies in pool order. The sequence can be ranged over any
// number of times.
func (s Snapshot) All() iter.Seq[Body] {
	return func(yield func(Body) bool) {
		for _, b := range s.Bodies {
			if !yield(b) {
				return
			}
		}
	}
}

// Snapshot copies the current state. Later ticks do not affect the result.
func (s *Solver) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     s.tick,
		Time:     s.time,
		SubDt:    s.subDt,
		Boundary: s.cfg.Boundary,
		Bodies:   make([]Body, len(s.particles)),
		Links:    s.Links(),
	}
	for i := range s.particles {
		p := &s.particles[i]
		b := Body{
			Handle:       Handle(i),
			Position:     p.Current,
			Displacement: p.Displacement(),
			Radius:       p.Radius,
			Static:       p.Static,
			Temperature:  p.Temperature,
		}
		if s.cfg.Temperature {
			b.Bucket = s.cfg.Thermal.Bucket(p.Temperature)
		}
		snap.Bodies[i] = b
	}
	return snap
}

// IndexRegions rebuilds the quadtree from the current positions and returns
// the region of every node, root first. It is empty when the index is
// disabled.
func (s *Solver) IndexRegions() []r2.Box {
	if !s.cfg.UseIndex {
		return nil
	}
	s.rebuildIndex()
	return s.tree.Regions(nil)
}
