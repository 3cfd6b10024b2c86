package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/solver"
)

const DefaultStabilityMargin = 5.0

// Stability is the fraction of observed ticks in which every body was finite
// and no further than margin outside the boundary.
type Stability struct {
	name       string
	margin     float64
	violations int
	samples    int
}

func NewStability(margin float64) *Stability {
	return &Stability{
		name:   "stability",
		margin: margin,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap solver.Snapshot) {
	s.samples++
	c, r := snap.Boundary.Center, snap.Boundary.Radius
	for _, b := range snap.Bodies {
		p := b.Position
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			s.violations++
			break
		}
		if !b.Static && r2.Norm(r2.Sub(p, c))-(r-b.Radius) > s.margin {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// SettleDelta is the largest distance any body moved between the last two
// observations. Bodies spawned in between are ignored.
type SettleDelta struct {
	name  string
	prev  []r2.Vec
	value float64
}

func NewSettleDelta() *SettleDelta {
	return &SettleDelta{name: "settle_delta"}
}

func (s *SettleDelta) Name() string { return s.name }

func (s *SettleDelta) Observe(snap solver.Snapshot) {
	s.value = 0
	n := min(len(s.prev), len(snap.Bodies))
	for i := 0; i < n; i++ {
		s.value = math.Max(s.value, r2.Norm(r2.Sub(snap.Bodies[i].Position, s.prev[i])))
	}
	s.prev = s.prev[:0]
	for _, b := range snap.Bodies {
		s.prev = append(s.prev, b.Position)
	}
}

func (s *SettleDelta) Value() float64 { return s.value }

func (s *SettleDelta) Reset() {
	s.prev = s.prev[:0]
	s.value = 0
}
