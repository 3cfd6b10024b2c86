package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// NearestParticle returns the particle whose centre is closest to point
// among those within PickRadius of their own edge. When the index is enabled
// only quadtree candidates around point are examined.
func (s *Solver) NearestParticle(point r2.Vec) (Handle, bool) {
	return s.NearestParticleWithin(point, s.cfg.PickRadius)
}

// NearestParticleWithin is NearestParticle with an explicit reach, for
// callers whose pointer is coarser than PickRadius.
func (s *Solver) NearestParticleWithin(point r2.Vec, reach float64) (Handle, bool) {
	reach = math.Max(reach, 0)
	best, bestDist := Handle(-1), math.Inf(1)

	try := func(i int) {
		p := &s.particles[i]
		d := r2.Norm(r2.Sub(point, p.Current))
		if d <= p.Radius+reach && d < bestDist {
			best, bestDist = Handle(i), d
		}
	}

	if s.cfg.UseIndex {
		s.rebuildIndex()
		query := r2.Box{
			Min: r2.Vec{X: point.X - reach, Y: point.Y - reach},
			Max: r2.Vec{X: point.X + reach, Y: point.Y + reach},
		}
		s.candidates = s.tree.Retrieve(query, s.candidates[:0])
		for _, i := range s.candidates {
			try(i)
		}
	} else {
		for i := range s.particles {
			try(i)
		}
	}
	return best, best >= 0
}

// BeginDrag pins h in place and remembers whether it was static before.
// Beginning a drag twice keeps the first remembered flag.
func (s *Solver) BeginDrag(h Handle) error {
	if !s.valid(h) {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	if _, ok := s.dragged[h]; ok {
		return nil
	}
	p := &s.particles[h]
	s.dragged[h] = p.Static
	p.SetStatic(true)
	return nil
}

// DragTo moves a dragged particle to point, bypassing integration. The point
// is clamped so the particle stays inside the boundary.
func (s *Solver) DragTo(h Handle, point r2.Vec) error {
	if !s.valid(h) {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	if _, ok := s.dragged[h]; !ok {
		return fmt.Errorf("%w: %d", ErrNotDragging, h)
	}
	p := &s.particles[h]
	p.MoveTo(s.cfg.Boundary.Clamp(point, p.Radius))
	return nil
}

// EndDrag restores the static flag h had before BeginDrag. The particle
// resumes from rest.
func (s *Solver) EndDrag(h Handle) error {
	if !s.valid(h) {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	static, ok := s.dragged[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotDragging, h)
	}
	delete(s.dragged, h)
	s.particles[h].SetStatic(static)
	return nil
}

// Dragging reports whether h is being dragged.
func (s *Solver) Dragging(h Handle) bool {
	_, ok := s.dragged[h]
	return ok
}
