package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/quadtree"
	"github.com/san-kum/verlet/internal/solver"
)

// MaxOverlap is the deepest penetration between two bodies over every
// observed tick. Positions are taken after collision resolution, before
// integration. Pairs are found with a quadtree so large pools stay cheap.
type MaxOverlap struct {
	name  string
	worst float64
	tree  *quadtree.Tree
	buf   []int
}

func NewMaxOverlap() *MaxOverlap {
	return &MaxOverlap{name: "max_overlap"}
}

func (m *MaxOverlap) Name() string { return m.name }

func (m *MaxOverlap) Observe(snap solver.Snapshot) {
	region := snap.Boundary.Box()
	if m.tree == nil {
		m.tree = quadtree.New(region, quadtree.DefaultMaxObjects, quadtree.DefaultMaxDepth)
	} else {
		m.tree.Reset(region)
	}
	for i, b := range snap.Bodies {
		m.tree.Insert(i, bounds(b.Resolved(), b.Radius))
	}
	for i, a := range snap.Bodies {
		pa := a.Resolved()
		m.buf = m.tree.Retrieve(bounds(pa, a.Radius), m.buf[:0])
		for _, j := range m.buf {
			if j <= i {
				continue
			}
			b := snap.Bodies[j]
			d := r2.Norm(r2.Sub(pa, b.Resolved()))
			m.worst = math.Max(m.worst, a.Radius+b.Radius-d)
		}
	}
}

func (m *MaxOverlap) Value() float64 { return m.worst }
func (m *MaxOverlap) Reset()         { m.worst = 0 }

func bounds(p r2.Vec, r float64) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: p.X - r, Y: p.Y - r},
		Max: r2.Vec{X: p.X + r, Y: p.Y + r},
	}
}

// BoundaryViolation is the furthest any body reached past the boundary over
// every observed tick, measured at resolved positions. Static bodies are
// skipped since the boundary never moves them.
type BoundaryViolation struct {
	name  string
	worst float64
}

func NewBoundaryViolation() *BoundaryViolation {
	return &BoundaryViolation{name: "boundary_violation"}
}

func (v *BoundaryViolation) Name() string { return v.name }

func (v *BoundaryViolation) Observe(snap solver.Snapshot) {
	c, r := snap.Boundary.Center, snap.Boundary.Radius
	for _, b := range snap.Bodies {
		if b.Static {
			continue
		}
		d := r2.Norm(r2.Sub(b.Resolved(), c)) - (r - b.Radius)
		v.worst = math.Max(v.worst, d)
	}
}

func (v *BoundaryViolation) Value() float64 { return v.worst }
func (v *BoundaryViolation) Reset()         { v.worst = 0 }
