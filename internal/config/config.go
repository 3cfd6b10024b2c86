package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/quadtree"
	"github.com/san-kum/verlet/internal/solver"
)

const (
	DefaultDt    = 1.0 / 60
	DefaultTicks = 600
	DefaultSeed  = 42
)

// Point is a yaml-friendly r2.Vec.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

type Config struct {
	Scenario    string            `yaml:"scenario"`
	Dt          float64           `yaml:"dt"`
	Ticks       int               `yaml:"ticks"`
	Seed        int64             `yaml:"seed"`
	Solver      SolverConfig      `yaml:"solver"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Particles   []ParticleConfig  `yaml:"particles,omitempty"`
	Chains      []ChainConfig     `yaml:"chains,omitempty"`
}

type SolverConfig struct {
	Gravity    Point          `yaml:"gravity"`
	SubSteps   int            `yaml:"substeps"`
	Boundary   BoundaryConfig `yaml:"boundary"`
	UseIndex   bool           `yaml:"use_index"`
	Index      IndexConfig    `yaml:"index"`
	Drag       float64        `yaml:"drag"`
	PickRadius float64        `yaml:"pick_radius"`
}

type BoundaryConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

type IndexConfig struct {
	MaxObjects int `yaml:"max_objects"`
	MaxDepth   int `yaml:"max_depth"`
}

type TemperatureConfig struct {
	Enabled  bool         `yaml:"enabled"`
	Max      float64      `yaml:"max"`
	Decay    float64      `yaml:"decay"`
	Buoyancy float64      `yaml:"buoyancy"`
	Exchange float64      `yaml:"exchange"`
	Buckets  int          `yaml:"buckets"`
	Zones    []ZoneConfig `yaml:"zones,omitempty"`
}

type ZoneConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	Rate   float64 `yaml:"rate"`
}

// SpawnConfig drives the emitters. Every Interval seconds each emitter adds
// one particle until the pool holds MaxParticles.
type SpawnConfig struct {
	Interval     float64 `yaml:"interval"`
	MaxParticles int     `yaml:"max_particles"`
	RadiusMin    float64 `yaml:"radius_min"`
	RadiusMax    float64 `yaml:"radius_max"`
	Jitter       float64 `yaml:"jitter"`
	Temperature  float64 `yaml:"temperature"`
	Emitters     []Point `yaml:"emitters,omitempty"`
}

type ParticleConfig struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Radius      float64 `yaml:"radius"`
	Static      bool    `yaml:"static"`
	Temperature float64 `yaml:"temperature"`
}

type ChainConfig struct {
	Particles  int     `yaml:"particles"`
	Start      Point   `yaml:"start"`
	End        Point   `yaml:"end"`
	Radius     float64 `yaml:"radius"`
	RestLength float64 `yaml:"rest_length"`
	// Hanging pins only the first particle and ignores End.
	Hanging bool `yaml:"hanging"`
}

func (c ChainConfig) Build() physics.Chain {
	if c.Hanging {
		return physics.NewHangingChain(c.Particles, c.Start.Vec(), c.Radius, c.RestLength)
	}
	return physics.NewChain(c.Particles, c.Start.Vec(), c.End.Vec(), c.Radius, c.RestLength)
}

func DefaultConfig() *Config {
	sc := solver.DefaultConfig()
	th := physics.DefaultThermal()
	return &Config{
		Scenario: "empty",
		Dt:       DefaultDt,
		Ticks:    DefaultTicks,
		Seed:     DefaultSeed,
		Solver: SolverConfig{
			Gravity:  Point{X: sc.Gravity.X, Y: sc.Gravity.Y},
			SubSteps: sc.SubSteps,
			Boundary: BoundaryConfig{X: sc.Boundary.Center.X, Y: sc.Boundary.Center.Y, Radius: sc.Boundary.Radius},
			UseIndex: true,
			Index: IndexConfig{
				MaxObjects: quadtree.DefaultMaxObjects,
				MaxDepth:   quadtree.DefaultMaxDepth,
			},
			PickRadius: sc.PickRadius,
		},
		Temperature: TemperatureConfig{
			Max:      th.Max,
			Decay:    th.Decay,
			Buoyancy: th.Buoyancy,
			Exchange: th.Exchange,
			Buckets:  th.Buckets,
		},
		Spawn: SpawnConfig{
			Interval:     0.25,
			MaxParticles: 2000,
			RadiusMin:    4,
			RadiusMax:    10,
			Jitter:       0.5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Temperature.Zones = append([]ZoneConfig(nil), c.Temperature.Zones...)
	out.Spawn.Emitters = append([]Point(nil), c.Spawn.Emitters...)
	out.Particles = append([]ParticleConfig(nil), c.Particles...)
	out.Chains = append([]ChainConfig(nil), c.Chains...)
	return &out
}

// ToSolverConfig maps the file layout onto the solver's configuration.
func (c *Config) ToSolverConfig() solver.Config {
	sc := solver.Config{
		Gravity:  c.Solver.Gravity.Vec(),
		SubSteps: c.Solver.SubSteps,
		Boundary: physics.Boundary{
			Center: r2.Vec{X: c.Solver.Boundary.X, Y: c.Solver.Boundary.Y},
			Radius: c.Solver.Boundary.Radius,
		},
		UseIndex:        c.Solver.UseIndex,
		IndexMaxObjects: c.Solver.Index.MaxObjects,
		IndexMaxDepth:   c.Solver.Index.MaxDepth,
		Drag:            c.Solver.Drag,
		PickRadius:      c.Solver.PickRadius,
		Temperature:     c.Temperature.Enabled,
		Thermal: physics.Thermal{
			Max:      c.Temperature.Max,
			Decay:    c.Temperature.Decay,
			Buoyancy: c.Temperature.Buoyancy,
			Exchange: c.Temperature.Exchange,
			Buckets:  c.Temperature.Buckets,
		},
		ValidateState: true,
	}
	for _, z := range c.Temperature.Zones {
		sc.HeatZones = append(sc.HeatZones, solver.HeatZone{
			Center: r2.Vec{X: z.X, Y: z.Y},
			Radius: z.Radius,
			Rate:   z.Rate,
		})
	}
	return sc
}

// Validate checks the run settings and then the solver settings. Every error
// wraps solver.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", solver.ErrInvalidConfig, c.Dt)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative, got %d", solver.ErrInvalidConfig, c.Ticks)
	}
	if len(c.Spawn.Emitters) > 0 {
		s := c.Spawn
		if s.Interval <= 0 {
			return fmt.Errorf("%w: spawn interval must be positive, got %g", solver.ErrInvalidConfig, s.Interval)
		}
		if s.RadiusMin <= 0 || s.RadiusMax < s.RadiusMin {
			return fmt.Errorf("%w: spawn radius range [%g, %g] is invalid", solver.ErrInvalidConfig, s.RadiusMin, s.RadiusMax)
		}
		if s.MaxParticles < 0 {
			return fmt.Errorf("%w: max particles must not be negative, got %d", solver.ErrInvalidConfig, s.MaxParticles)
		}
	}
	for i, p := range c.Particles {
		if p.Radius <= 0 {
			return fmt.Errorf("%w: particle %d radius must be positive, got %g", solver.ErrInvalidConfig, i, p.Radius)
		}
	}
	for i, ch := range c.Chains {
		if ch.Particles < 2 {
			return fmt.Errorf("%w: chain %d needs at least 2 particles, got %d", solver.ErrInvalidConfig, i, ch.Particles)
		}
		if ch.Radius <= 0 || ch.RestLength < 0 {
			return fmt.Errorf("%w: chain %d radius %g rest length %g", solver.ErrInvalidConfig, i, ch.Radius, ch.RestLength)
		}
	}
	return c.ToSolverConfig().Validate()
}
