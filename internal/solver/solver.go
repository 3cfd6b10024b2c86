package solver

import (
	"fmt"

	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/quadtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// Handle addresses a particle in the pool.
type Handle int

type Solver struct {
	cfg       Config
	particles []physics.Particle
	links     []physics.Link
	tree      *quadtree.Tree
	dragged   map[Handle]bool // prior static flag of each dragged particle

	candidates []int
	tick       int
	time       float64
	subDt      float64
}

func New(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.HeatZones = append([]HeatZone(nil), cfg.HeatZones...)
	return &Solver{
		cfg:     cfg,
		tree:    quadtree.New(cfg.Boundary.Box(), cfg.IndexMaxObjects, cfg.IndexMaxDepth),
		dragged: make(map[Handle]bool),
	}, nil
}

// Config returns a copy of the current configuration.
func (s *Solver) Config() Config {
	cfg := s.cfg
	cfg.HeatZones = append([]HeatZone(nil), s.cfg.HeatZones...)
	return cfg
}

func (s *Solver) Len() int      { return len(s.particles) }
func (s *Solver) Tick() int     { return s.tick }
func (s *Solver) Time() float64 { return s.time }

// Spawn appends a particle at rest and returns its handle. The temperature
// is clamped into the thermal range.
func (s *Solver) Spawn(pos r2.Vec, radius float64, static bool, temperature float64) (Handle, error) {
	if radius <= 0 || !finite(radius) {
		return -1, fmt.Errorf("%w: %g", ErrInvalidRadius, radius)
	}
	p := physics.NewParticle(pos, radius, static)
	p.ApplyTemperature(temperature, s.cfg.Thermal)
	s.particles = append(s.particles, p)
	return Handle(len(s.particles) - 1), nil
}

// AddChain appends every particle of c and a link between each consecutive
// pair. It returns the handle of the first particle; the others follow in
// order.
func (s *Solver) AddChain(c physics.Chain) (Handle, error) {
	if len(c.Particles) == 0 {
		return -1, fmt.Errorf("%w: empty chain", ErrInvalidConfig)
	}
	if c.RestLength < 0 || !finite(c.RestLength) {
		return -1, fmt.Errorf("%w: chain rest length %g", ErrInvalidConfig, c.RestLength)
	}
	for _, p := range c.Particles {
		if p.Radius <= 0 || !finite(p.Radius) {
			return -1, fmt.Errorf("%w: chain particle radius %g", ErrInvalidRadius, p.Radius)
		}
	}
	first := len(s.particles)
	s.particles = append(s.particles, c.Particles...)
	s.links = append(s.links, c.Links(first)...)
	return Handle(first), nil
}

// AddLink joins two existing particles with a distance constraint.
func (s *Solver) AddLink(a, b Handle, restLength float64) error {
	if !s.valid(a) || !s.valid(b) || a == b {
		return fmt.Errorf("%w: link %d-%d", ErrInvalidHandle, a, b)
	}
	if restLength < 0 || !finite(restLength) {
		return fmt.Errorf("%w: link rest length %g", ErrInvalidConfig, restLength)
	}
	s.links = append(s.links, physics.Link{A: int(a), B: int(b), RestLength: restLength})
	return nil
}

// Reset empties the pool, drops every link and drag and rewinds the clock.
// Every handle issued so far becomes invalid.
func (s *Solver) Reset() {
	s.particles = s.particles[:0]
	s.links = s.links[:0]
	clear(s.dragged)
	s.tree.Clear()
	s.tick = 0
	s.time = 0
	s.subDt = 0
}

func (s *Solver) valid(h Handle) bool {
	return h >= 0 && int(h) < len(s.particles)
}

// Particle returns a copy of the particle behind h.
func (s *Solver) Particle(h Handle) (physics.Particle, error) {
	if !s.valid(h) {
		return physics.Particle{}, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return s.particles[h], nil
}

// Links returns a copy of the link list.
func (s *Solver) Links() []physics.Link {
	return append([]physics.Link(nil), s.links...)
}

func (s *Solver) SetGravity(g r2.Vec) { s.cfg.Gravity = g }

func (s *Solver) SetSubSteps(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, n)
	}
	s.cfg.SubSteps = n
	return nil
}

func (s *Solver) SetBoundary(b physics.Boundary) error {
	if err := validateBoundary(b); err != nil {
		return err
	}
	s.cfg.Boundary = b
	s.tree.Reset(b.Box())
	return nil
}

func (s *Solver) SetUseIndex(on bool)           { s.cfg.UseIndex = on }
func (s *Solver) SetTemperatureEnabled(on bool) { s.cfg.Temperature = on }

func (s *Solver) SetHeatZones(zones []HeatZone) {
	s.cfg.HeatZones = append(s.cfg.HeatZones[:0], zones...)
}

// ApplyTemperature adds delta to the particle's temperature, clamped into
// the thermal range.
func (s *Solver) ApplyTemperature(h Handle, delta float64) error {
	if !s.valid(h) {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	s.particles[h].ApplyTemperature(delta, s.cfg.Thermal)
	return nil
}

// Update advances the simulation by dt, split into SubSteps substeps.
func (s *Solver) Update(dt float64) error {
	if dt <= 0 || !finite(dt) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, dt)
	}
	n := s.cfg.SubSteps
	s.subDt = dt / float64(n)
	for i := 0; i < n; i++ {
		s.substep(s.subDt)
	}
	if s.cfg.Temperature {
		for i := range s.particles {
			s.particles[i].Cool(s.cfg.Thermal)
		}
	}
	s.tick++
	s.time += dt

	if s.cfg.ValidateState {
		return s.validateState()
	}
	return nil
}

func (s *Solver) validateState() error {
	for i := range s.particles {
		if !s.particles[i].IsValid() {
			return &StepError{Tick: s.tick, Time: s.time, Particle: Handle(i), Wrapped: ErrUnstable}
		}
	}
	return nil
}

func (s *Solver) substep(dt float64) {
	s.applyForces()
	s.applyBoundary()
	if s.cfg.UseIndex {
		s.rebuildIndex()
	}
	s.applyHeatZones(dt)
	if s.cfg.UseIndex {
		s.collideIndexed()
	} else {
		s.collideExhaustive()
	}
	s.solveLinks()
	s.integrate(dt)
}

// up is the direction opposite gravity, or -Y when gravity is zero.
func (s *Solver) up() r2.Vec {
	g := s.cfg.Gravity
	n := r2.Norm(g)
	if n == 0 {
		return r2.Vec{Y: -1}
	}
	return r2.Scale(-1/n, g)
}

func (s *Solver) applyForces() {
	buoyant := s.cfg.Temperature && s.cfg.Thermal.Buoyancy != 0
	up := s.up()
	for i := range s.particles {
		p := &s.particles[i]
		if p.Static {
			continue
		}
		p.Accelerate(s.cfg.Gravity)
		if buoyant && p.Temperature > 0 {
			p.Accelerate(s.cfg.Thermal.Lift(p.Temperature, up))
		}
	}
}

func (s *Solver) applyBoundary() {
	for i := range s.particles {
		s.cfg.Boundary.Constrain(&s.particles[i])
	}
}

func (s *Solver) rebuildIndex() {
	s.tree.Clear()
	for i := range s.particles {
		s.tree.Insert(i, s.particles[i].Bounds())
	}
}

func (s *Solver) applyHeatZones(dt float64) {
	if !s.cfg.Temperature || len(s.cfg.HeatZones) == 0 {
		return
	}
	for _, z := range s.cfg.HeatZones {
		heat := z.Rate * dt
		if s.cfg.UseIndex {
			s.candidates = s.tree.Retrieve(z.box(), s.candidates[:0])
			for _, i := range s.candidates {
				s.heat(i, z, heat)
			}
			continue
		}
		for i := range s.particles {
			s.heat(i, z, heat)
		}
	}
}

func (s *Solver) heat(i int, z HeatZone, amount float64) {
	p := &s.particles[i]
	if z.Contains(p.Current) {
		p.ApplyTemperature(amount, s.cfg.Thermal)
	}
}

func (s *Solver) collide(a, b *physics.Particle) {
	if physics.ResolveOverlap(a, b) && s.cfg.Temperature && s.cfg.Thermal.Exchange > 0 {
		physics.ExchangeHeat(a, b, s.cfg.Thermal)
	}
}

// collideIndexed checks every free particle against the quadtree candidates
// of its bounds. A pair may be visited from both sides; the second visit
// finds no overlap left to correct.
func (s *Solver) collideIndexed() {
	for i := range s.particles {
		if s.particles[i].Static {
			continue
		}
		s.candidates = s.tree.Retrieve(s.particles[i].Bounds(), s.candidates[:0])
		for _, j := range s.candidates {
			if j == i {
				continue
			}
			s.collide(&s.particles[i], &s.particles[j])
		}
	}
}

// collideExhaustive visits every unordered pair once, in pool order.
func (s *Solver) collideExhaustive() {
	for i := range s.particles {
		for j := i + 1; j < len(s.particles); j++ {
			s.collide(&s.particles[i], &s.particles[j])
		}
	}
}

func (s *Solver) solveLinks() {
	for _, l := range s.links {
		physics.SolveLink(&s.particles[l.A], &s.particles[l.B], l.RestLength)
	}
}

func (s *Solver) integrate(dt float64) {
	for i := range s.particles {
		s.particles[i].Integrate(dt, s.cfg.Drag)
	}
}
