package solver_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/solver"
)

const frame = 1.0 / 60

func maxOverlap(snap solver.Snapshot) float64 {
	worst := 0.0
	for i, a := range snap.Bodies {
		for _, b := range snap.Bodies[i+1:] {
			d := r2.Norm(r2.Sub(a.Resolved(), b.Resolved()))
			worst = math.Max(worst, a.Radius+b.Radius-d)
		}
	}
	return worst
}

func maxViolation(snap solver.Snapshot) float64 {
	worst := 0.0
	for b := range snap.All() {
		p := physics.Particle{Current: b.Resolved(), Radius: b.Radius}
		worst = math.Max(worst, snap.Boundary.Violation(p))
	}
	return worst
}

func meanY(snap solver.Snapshot) float64 {
	sum := 0.0
	for _, b := range snap.Bodies {
		sum += b.Position.Y
	}
	return sum / float64(len(snap.Bodies))
}

// tickDelta is the largest distance any body moved between two snapshots.
func tickDelta(prev, next solver.Snapshot) float64 {
	delta := 0.0
	for i, b := range next.Bodies {
		delta = math.Max(delta, r2.Norm(r2.Sub(b.Position, prev.Bodies[i].Position)))
	}
	return delta
}

// maxStretch is the largest deviation of any link from its rest length.
func maxStretch(snap solver.Snapshot) float64 {
	worst := 0.0
	for _, l := range snap.Links {
		d := r2.Norm(r2.Sub(snap.Bodies[l.A].Position, snap.Bodies[l.B].Position))
		worst = math.Max(worst, math.Abs(d-l.RestLength))
	}
	return worst
}

func newChain(drag float64) *solver.Solver {
	cfg := solver.DefaultConfig()
	cfg.Drag = drag
	s, err := solver.New(cfg)
	Expect(err).NotTo(HaveOccurred())

	chain := physics.NewChain(10, r2.Vec{X: 810, Y: 400}, r2.Vec{X: 1110, Y: 400}, 5, 50)
	_, err = s.AddChain(chain)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func runPile(useIndex bool) solver.Snapshot {
	cfg := solver.DefaultConfig()
	cfg.UseIndex = useIndex
	s, err := solver.New(cfg)
	Expect(err).NotTo(HaveOccurred())

	c := cfg.Boundary.Center
	for i := 0; i < 5; i++ {
		pos := r2.Vec{X: c.X - 80 + float64(i)*40, Y: c.Y - 300}
		_, err := s.Spawn(pos, 15, false, 0)
		Expect(err).NotTo(HaveOccurred())
	}
	for i := 0; i < 500; i++ {
		Expect(s.Update(frame)).To(Succeed())
	}
	return s.Snapshot()
}

var _ = Describe("Solver", func() {
	Context("five particles dropped into the boundary", func() {
		for _, useIndex := range []bool{true, false} {
			name := "exhaustive"
			if useIndex {
				name = "indexed"
			}

			It("keeps them contained and apart ("+name+")", func() {
				snap := runPile(useIndex)

				Expect(snap.Tick).To(Equal(500))
				Expect(snap.Bodies).To(HaveLen(5))
				Expect(maxViolation(snap)).To(BeNumerically("<", 0.05))
				Expect(maxOverlap(snap)).To(BeNumerically("<", 0.05))
			})
		}

		It("settles to the same pile whichever collision mode runs", func() {
			indexed := runPile(true)
			exhaustive := runPile(false)

			// trajectories are allowed to differ, the resting height is not
			Expect(meanY(indexed)).To(BeNumerically("~", meanY(exhaustive), 20))
			floor := indexed.Boundary.Center.Y + indexed.Boundary.Radius
			Expect(meanY(indexed)).To(BeNumerically(">", floor-100))
		})
	})

	Context("a damped chain pinned at both ends", func() {
		var s *solver.Solver

		BeforeEach(func() {
			s = newChain(0.02)
		})

		It("sags and comes to rest", func() {
			var prev solver.Snapshot
			for i := 0; i < 300; i++ {
				prev = s.Snapshot()
				Expect(s.Update(frame)).To(Succeed())
			}
			last := s.Snapshot()

			Expect(tickDelta(prev, last)).To(BeNumerically("<", 1e-2))

			Expect(last.Bodies[0].Position).To(Equal(r2.Vec{X: 810, Y: 400}))
			Expect(last.Bodies[9].Position.X).To(BeNumerically("~", 1110, 1e-9))
			Expect(last.Bodies[5].Position.Y).To(BeNumerically(">", 450))
		})

		It("keeps every link near its rest length once settled", func() {
			for i := 0; i < 300; i++ {
				Expect(s.Update(frame)).To(Succeed())
			}
			Expect(maxStretch(s.Snapshot())).To(BeNumerically("<", 5))
		})
	})

	Context("an undamped chain pinned at both ends", func() {
		It("swings less over time and keeps its links", func() {
			s := newChain(0)

			// largest per-tick movement in the first and last 300 of 3000 ticks
			early, late := 0.0, 0.0
			for i := 0; i < 3000; i++ {
				prev := s.Snapshot()
				Expect(s.Update(frame)).To(Succeed())
				d := tickDelta(prev, s.Snapshot())
				switch {
				case i < 300:
					early = math.Max(early, d)
				case i >= 2700:
					late = math.Max(late, d)
				}
			}
			Expect(late).To(BeNumerically("<", early))

			snap := s.Snapshot()
			Expect(maxStretch(snap)).To(BeNumerically("<", 10))
			Expect(snap.Bodies[0].Position).To(Equal(r2.Vec{X: 810, Y: 400}))
			Expect(maxViolation(snap)).To(BeNumerically("<", 0.05))
		})
	})

	Context("dragging", func() {
		It("pins a picked particle and releases it with its old flag", func() {
			s, err := solver.New(solver.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			h, err := s.Spawn(r2.Vec{X: 960, Y: 540}, 10, false, 0)
			Expect(err).NotTo(HaveOccurred())

			picked, ok := s.NearestParticle(r2.Vec{X: 963, Y: 541})
			Expect(ok).To(BeTrue())
			Expect(picked).To(Equal(h))

			Expect(s.BeginDrag(picked)).To(Succeed())
			Expect(s.DragTo(picked, r2.Vec{X: 1000, Y: 500})).To(Succeed())
			for i := 0; i < 10; i++ {
				Expect(s.Update(frame)).To(Succeed())
			}
			p, _ := s.Particle(picked)
			Expect(p.Current).To(Equal(r2.Vec{X: 1000, Y: 500}))

			Expect(s.EndDrag(picked)).To(Succeed())
			Expect(s.Update(frame)).To(Succeed())
			p, _ = s.Particle(picked)
			Expect(p.Current.Y).To(BeNumerically(">", 500))
			Expect(s.DragTo(picked, r2.Vec{})).To(MatchError(solver.ErrNotDragging))
		})
	})
})
