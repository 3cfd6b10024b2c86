package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

var centre = r2.Vec{X: 960, Y: 540}

func newSolver(t *testing.T, mutate func(*Config)) *Solver {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func mustSpawn(t *testing.T, s *Solver, pos r2.Vec, radius float64, static bool) Handle {
	t.Helper()
	h, err := s.Spawn(pos, radius, static, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return h
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero substeps", func(c *Config) { c.SubSteps = 0 }, false},
		{"zero boundary", func(c *Config) { c.Boundary.Radius = 0 }, false},
		{"NaN gravity", func(c *Config) { c.Gravity.Y = math.NaN() }, false},
		{"drag one", func(c *Config) { c.Drag = 1 }, false},
		{"negative pick radius", func(c *Config) { c.PickRadius = -1 }, false},
		{"zero index capacity", func(c *Config) { c.IndexMaxObjects = 0 }, false},
		{"temperature without max", func(c *Config) { c.Temperature = true; c.Thermal.Max = 0 }, false},
		{"heat zone without radius", func(c *Config) { c.HeatZones = []HeatZone{{Rate: 1}} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSpawnRejectsBadRadius(t *testing.T) {
	s := newSolver(t, nil)
	for _, r := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if _, err := s.Spawn(centre, r, false, 0); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("radius %g: expected ErrInvalidRadius, got %v", r, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("rejected spawns grew the pool to %d", s.Len())
	}
}

func TestSpawnHandlesAreSequential(t *testing.T) {
	s := newSolver(t, nil)
	for i := 0; i < 3; i++ {
		if h := mustSpawn(t, s, centre, 5, false); h != Handle(i) {
			t.Errorf("spawn %d returned handle %d", i, h)
		}
	}
	if _, err := s.Particle(3); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestAddChainOffsetsLinks(t *testing.T) {
	s := newSolver(t, nil)
	mustSpawn(t, s, centre, 5, false)
	mustSpawn(t, s, centre, 5, false)

	first, err := s.AddChain(physics.NewChain(4, r2.Vec{X: 800, Y: 400}, r2.Vec{X: 950, Y: 400}, 5, 50))
	if err != nil {
		t.Fatalf("AddChain: %v", err)
	}
	if first != 2 || s.Len() != 6 {
		t.Fatalf("first handle %d, pool %d", first, s.Len())
	}
	links := s.Links()
	if len(links) != 3 || links[0].A != 2 || links[2].B != 5 {
		t.Errorf("links = %+v", links)
	}
}

func TestAddLinkValidates(t *testing.T) {
	s := newSolver(t, nil)
	a := mustSpawn(t, s, centre, 5, false)
	b := mustSpawn(t, s, r2.Add(centre, r2.Vec{X: 20}), 5, false)

	if err := s.AddLink(a, 7, 10); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
	if err := s.AddLink(a, a, 10); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("self link: expected ErrInvalidHandle, got %v", err)
	}
	if err := s.AddLink(a, b, 10); err != nil {
		t.Errorf("AddLink: %v", err)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := newSolver(t, nil)
	h := mustSpawn(t, s, centre, 5, false)
	s.AddChain(physics.NewChain(3, r2.Vec{X: 900, Y: 500}, r2.Vec{X: 1000, Y: 500}, 5, 50))
	s.BeginDrag(h)
	s.Update(1.0 / 60)

	s.Reset()

	if s.Len() != 0 || len(s.Links()) != 0 || s.Tick() != 0 || s.Time() != 0 {
		t.Errorf("after Reset: len %d, links %d, tick %d, time %g", s.Len(), len(s.Links()), s.Tick(), s.Time())
	}
	if s.Dragging(h) {
		t.Error("drag survived Reset")
	}
}

func TestUpdateRejectsBadDt(t *testing.T) {
	s := newSolver(t, nil)
	for _, dt := range []float64{0, -1, math.NaN()} {
		if err := s.Update(dt); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("dt %g: expected ErrInvalidConfig, got %v", dt, err)
		}
	}
}

func TestUpdateFreeFall(t *testing.T) {
	s := newSolver(t, nil)
	h := mustSpawn(t, s, centre, 5, false)

	if err := s.Update(1.0 / 60); err != nil {
		t.Fatal(err)
	}

	// five substeps from rest: y = g h^2 (1+2+3+4+5)
	sub := 1.0 / 300
	want := centre.Y + 1000*sub*sub*15
	p, _ := s.Particle(h)
	if math.Abs(p.Current.Y-want) > 1e-9 || p.Current.X != centre.X {
		t.Errorf("position = %v, want y %f", p.Current, want)
	}
	if math.Abs(s.Snapshot().SubDt-sub) > 1e-15 {
		t.Errorf("SubDt = %g, want %g", s.Snapshot().SubDt, sub)
	}
}

func TestStaticParticleStaysPut(t *testing.T) {
	s := newSolver(t, nil)
	pos := r2.Add(centre, r2.Vec{Y: 100})
	h := mustSpawn(t, s, pos, 10, true)
	mustSpawn(t, s, r2.Add(pos, r2.Vec{X: 5, Y: -5}), 10, false)

	for i := 0; i < 120; i++ {
		if err := s.Update(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}

	p, _ := s.Particle(h)
	if p.Current != pos || p.Previous != pos {
		t.Errorf("static particle moved to %v", p.Current)
	}
}

func TestBoundaryContainsAfterTicks(t *testing.T) {
	for _, useIndex := range []bool{true, false} {
		s := newSolver(t, func(c *Config) { c.UseIndex = useIndex })
		h := mustSpawn(t, s, r2.Add(centre, r2.Vec{X: 480, Y: 0}), 15, false)

		for i := 0; i < 300; i++ {
			s.Update(1.0 / 60)
		}

		p, _ := s.Particle(h)
		if v := s.Config().Boundary.Violation(physics.Particle{Current: p.Previous, Radius: p.Radius}); v > 0.5 {
			t.Errorf("index=%v: resolved position %f outside boundary", useIndex, v)
		}
	}
}

func TestLinksHoldChainTogether(t *testing.T) {
	s := newSolver(t, func(c *Config) { c.Gravity = r2.Vec{} })
	s.AddChain(physics.NewChain(3, r2.Vec{X: 900, Y: 500}, r2.Vec{X: 1020, Y: 500}, 5, 50))

	for i := 0; i < 200; i++ {
		s.Update(1.0 / 60)
	}

	// ends are 120 apart and two links of 50 cannot span that, so the
	// middle particle is held on the segment between them, at most 10 off
	// centre depending on which link is relaxed last.
	mid, _ := s.Particle(1)
	if math.Abs(mid.Current.Y-500) > 1e-9 || mid.Current.X < 950-1e-9 || mid.Current.X > 970+1e-9 {
		t.Errorf("middle particle at %v, want on the segment near {960 500}", mid.Current)
	}
}

func TestNearestParticle(t *testing.T) {
	for _, useIndex := range []bool{true, false} {
		s := newSolver(t, func(c *Config) { c.UseIndex = useIndex; c.PickRadius = 2 })
		mustSpawn(t, s, r2.Vec{X: 900, Y: 500}, 10, false)
		b := mustSpawn(t, s, r2.Vec{X: 915, Y: 500}, 10, false)
		mustSpawn(t, s, r2.Vec{X: 1200, Y: 700}, 10, false)

		h, ok := s.NearestParticle(r2.Vec{X: 910, Y: 502})
		if !ok || h != b {
			t.Errorf("index=%v: nearest = %d, %v, want %d", useIndex, h, ok, b)
		}
		if _, ok := s.NearestParticle(r2.Vec{X: 600, Y: 300}); ok {
			t.Errorf("index=%v: empty space picked a particle", useIndex)
		}
	}
}

func TestNearestParticleWithin(t *testing.T) {
	for _, useIndex := range []bool{true, false} {
		s := newSolver(t, func(c *Config) { c.UseIndex = useIndex })
		h := mustSpawn(t, s, centre, 6, false)

		click := r2.Add(centre, r2.Vec{X: 15, Y: 20})
		if _, ok := s.NearestParticle(click); ok {
			t.Errorf("index=%v: default pick radius reached 25 units", useIndex)
		}
		got, ok := s.NearestParticleWithin(click, 20)
		if !ok || got != h {
			t.Errorf("index=%v: NearestParticleWithin = %d, %v, want %d", useIndex, got, ok, h)
		}
		if _, ok := s.NearestParticleWithin(click, -5); ok {
			t.Errorf("index=%v: negative reach picked a particle", useIndex)
		}
	}
}

func TestDragToClampsToBoundary(t *testing.T) {
	s := newSolver(t, nil)
	h := mustSpawn(t, s, centre, 10, false)
	if err := s.BeginDrag(h); err != nil {
		t.Fatal(err)
	}

	b := s.Config().Boundary
	if err := s.DragTo(h, r2.Add(b.Center, r2.Vec{X: 2000})); err != nil {
		t.Fatal(err)
	}
	p, _ := s.Particle(h)
	want := r2.Add(b.Center, r2.Vec{X: b.Radius - 10})
	if r2.Norm(r2.Sub(p.Current, want)) > 1e-9 {
		t.Errorf("dragged outside to %v, want clamped to %v", p.Current, want)
	}
	if v := b.Violation(p); v != 0 {
		t.Errorf("violation after drag = %f", v)
	}
}

func TestDragLifecycle(t *testing.T) {
	s := newSolver(t, nil)
	h := mustSpawn(t, s, centre, 10, false)

	if err := s.DragTo(h, centre); !errors.Is(err, ErrNotDragging) {
		t.Errorf("DragTo before BeginDrag: expected ErrNotDragging, got %v", err)
	}
	if err := s.BeginDrag(h); err != nil {
		t.Fatal(err)
	}
	target := r2.Add(centre, r2.Vec{X: 100, Y: -50})
	if err := s.DragTo(h, target); err != nil {
		t.Fatal(err)
	}
	s.Update(1.0 / 60)

	p, _ := s.Particle(h)
	if p.Current != target || !p.Static {
		t.Errorf("dragged particle at %v static=%v, want %v pinned", p.Current, p.Static, target)
	}

	if err := s.EndDrag(h); err != nil {
		t.Fatal(err)
	}
	p, _ = s.Particle(h)
	if p.Static {
		t.Error("EndDrag did not restore the free flag")
	}
	if p.Displacement() != (r2.Vec{}) {
		t.Errorf("released particle has velocity %v", p.Displacement())
	}
	if err := s.EndDrag(h); !errors.Is(err, ErrNotDragging) {
		t.Errorf("second EndDrag: expected ErrNotDragging, got %v", err)
	}
}

func TestDragRestoresStaticFlag(t *testing.T) {
	s := newSolver(t, nil)
	h := mustSpawn(t, s, centre, 10, true)

	s.BeginDrag(h)
	s.BeginDrag(h)
	s.EndDrag(h)

	p, _ := s.Particle(h)
	if !p.Static {
		t.Error("static particle came back free after drag")
	}
	if err := s.BeginDrag(99); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestTemperatureDecaysPerTick(t *testing.T) {
	s := newSolver(t, func(c *Config) {
		c.Temperature = true
		c.Gravity = r2.Vec{}
		c.Thermal.Decay = 2
	})
	h, _ := s.Spawn(centre, 5, false, 10)

	for i := 0; i < 3; i++ {
		s.Update(1.0 / 60)
	}

	p, _ := s.Particle(h)
	if math.Abs(p.Temperature-4) > 1e-9 {
		t.Errorf("temperature = %f, want 4", p.Temperature)
	}
}

func TestBuoyancyLiftsHotParticles(t *testing.T) {
	s := newSolver(t, func(c *Config) {
		c.Temperature = true
		c.Thermal.Decay = 0
		c.Thermal.Buoyancy = 20
	})
	hot, _ := s.Spawn(r2.Vec{X: 900, Y: 540}, 5, false, 100)
	cold, _ := s.Spawn(r2.Vec{X: 1020, Y: 540}, 5, false, 0)

	s.Update(1.0 / 60)

	ph, _ := s.Particle(hot)
	pc, _ := s.Particle(cold)
	if ph.Current.Y >= 540 {
		t.Errorf("hot particle sank to y=%f", ph.Current.Y)
	}
	if pc.Current.Y <= 540 {
		t.Errorf("cold particle rose to y=%f", pc.Current.Y)
	}
}

func TestHeatZoneWarmsParticlesInside(t *testing.T) {
	for _, useIndex := range []bool{true, false} {
		s := newSolver(t, func(c *Config) {
			c.UseIndex = useIndex
			c.Gravity = r2.Vec{}
			c.Temperature = true
			c.Thermal.Decay = 0
			c.HeatZones = []HeatZone{{Center: centre, Radius: 50, Rate: 60}}
		})
		inside := mustSpawn(t, s, centre, 5, false)
		outside := mustSpawn(t, s, r2.Add(centre, r2.Vec{X: 200}), 5, false)

		s.Update(1.0 / 60)

		pi, _ := s.Particle(inside)
		po, _ := s.Particle(outside)
		if math.Abs(pi.Temperature-1) > 1e-9 {
			t.Errorf("index=%v: inside temperature = %f, want 1", useIndex, pi.Temperature)
		}
		if po.Temperature != 0 {
			t.Errorf("index=%v: outside temperature = %f, want 0", useIndex, po.Temperature)
		}
	}
}

func TestCollisionExchangesHeat(t *testing.T) {
	s := newSolver(t, func(c *Config) {
		c.Gravity = r2.Vec{}
		c.Temperature = true
		c.Thermal.Decay = 0
		c.Thermal.Exchange = 1
		c.UseIndex = false
	})
	hot, _ := s.Spawn(centre, 10, false, 50)
	cold, _ := s.Spawn(r2.Add(centre, r2.Vec{X: 15}), 10, false, 0)

	s.Update(1.0 / 60)

	ph, _ := s.Particle(hot)
	pc, _ := s.Particle(cold)
	if ph.Temperature != 49 || pc.Temperature != 1 {
		t.Errorf("temperatures = %f, %f, want 49, 1", ph.Temperature, pc.Temperature)
	}
}

func TestValidateStateReportsNaN(t *testing.T) {
	s := newSolver(t, func(c *Config) { c.UseIndex = false })
	mustSpawn(t, s, centre, 5, false)
	mustSpawn(t, s, r2.Vec{X: math.NaN(), Y: 0}, 5, false)

	err := s.Update(1.0 / 60)
	if !errors.Is(err, ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Particle != 1 || stepErr.Tick != 1 {
		t.Errorf("step error = %+v", stepErr)
	}
}

func TestSnapshot(t *testing.T) {
	s := newSolver(t, func(c *Config) { c.Temperature = true })
	s.Spawn(centre, 5, false, 100)
	s.Spawn(r2.Add(centre, r2.Vec{X: 50}), 7, true, 0)
	s.Update(1.0 / 60)

	snap := s.Snapshot()
	if snap.Tick != 1 || len(snap.Bodies) != 2 {
		t.Fatalf("tick %d, %d bodies", snap.Tick, len(snap.Bodies))
	}
	if snap.Bodies[0].Bucket != s.Config().Thermal.Buckets-1 {
		t.Errorf("hot body bucket = %d", snap.Bodies[0].Bucket)
	}
	if !snap.Bodies[1].Static || snap.Bodies[1].Radius != 7 {
		t.Errorf("body 1 = %+v", snap.Bodies[1])
	}

	n := 0
	for range snap.All() {
		n++
	}
	for range snap.All() {
		n++
		break
	}
	if n != 3 {
		t.Errorf("iterated %d bodies, want 3", n)
	}

	s.Update(1.0 / 60)
	if snap.Tick != 1 || snap.Bodies[0].Position == s.Snapshot().Bodies[0].Position {
		t.Error("snapshot changed with the solver")
	}
}

func TestIndexRegions(t *testing.T) {
	s := newSolver(t, func(c *Config) { c.IndexMaxObjects = 1 })
	mustSpawn(t, s, r2.Vec{X: 700, Y: 300}, 5, false)
	mustSpawn(t, s, r2.Vec{X: 1200, Y: 800}, 5, false)

	regions := s.IndexRegions()
	if len(regions) != 5 || regions[0] != s.Config().Boundary.Box() {
		t.Errorf("regions = %v", regions)
	}

	s.SetUseIndex(false)
	if s.IndexRegions() != nil {
		t.Error("regions reported with the index disabled")
	}
}

func TestRuntimeSetters(t *testing.T) {
	s := newSolver(t, nil)

	if err := s.SetSubSteps(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if err := s.SetSubSteps(8); err != nil || s.Config().SubSteps != 8 {
		t.Errorf("SetSubSteps(8): %v", err)
	}
	if err := s.SetBoundary(physics.Boundary{Radius: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	b := physics.Boundary{Center: r2.Vec{X: 10, Y: 10}, Radius: 100}
	if err := s.SetBoundary(b); err != nil || s.Config().Boundary != b {
		t.Errorf("SetBoundary: %v", err)
	}
	s.SetGravity(r2.Vec{X: 1})
	if s.Config().Gravity != (r2.Vec{X: 1}) {
		t.Error("SetGravity ignored")
	}
	if err := s.ApplyTemperature(3, 1); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func BenchmarkUpdateIndexed(b *testing.B)    { benchmarkUpdate(b, true) }
func BenchmarkUpdateExhaustive(b *testing.B) { benchmarkUpdate(b, false) }

func benchmarkUpdate(b *testing.B, useIndex bool) {
	cfg := DefaultConfig()
	cfg.UseIndex = useIndex
	s, _ := New(cfg)
	for i := 0; i < 400; i++ {
		x := centre.X - 300 + float64(i%30)*20
		y := centre.Y - 300 + float64(i/30)*20
		s.Spawn(r2.Vec{X: x, Y: y}, 8, false, 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Update(1.0 / 60)
	}
}
