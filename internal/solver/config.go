package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/quadtree"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultSubSteps   = 5
	DefaultPickRadius = 1.0
)

// HeatZone warms every particle whose centre lies inside the circle by Rate
// degrees per second.
type HeatZone struct {
	Center r2.Vec
	Radius float64
	Rate   float64
}

// Contains reports whether pos lies inside the zone.
func (z HeatZone) Contains(pos r2.Vec) bool {
	return r2.Norm(r2.Sub(pos, z.Center)) <= z.Radius
}

func (z HeatZone) box() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: z.Center.X - z.Radius, Y: z.Center.Y - z.Radius},
		Max: r2.Vec{X: z.Center.X + z.Radius, Y: z.Center.Y + z.Radius},
	}
}

type Config struct {
	Gravity  r2.Vec
	SubSteps int
	Boundary physics.Boundary

	// UseIndex selects quadtree candidates for collisions. When false every
	// unordered pair is tested.
	UseIndex        bool
	IndexMaxObjects int
	IndexMaxDepth   int

	// Drag scales the implied velocity by (1 - Drag) every substep. Zero
	// keeps pure Verlet.
	Drag float64

	// PickRadius is the slack around a particle's radius within which
	// NearestParticle still hits it.
	PickRadius float64

	Temperature bool
	Thermal     physics.Thermal
	HeatZones   []HeatZone

	// ValidateState checks every position for NaN or Inf after each tick.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Gravity:         r2.Vec{X: 0, Y: 1000},
		SubSteps:        DefaultSubSteps,
		Boundary:        physics.Boundary{Center: r2.Vec{X: 960, Y: 540}, Radius: 500},
		UseIndex:        true,
		IndexMaxObjects: quadtree.DefaultMaxObjects,
		IndexMaxDepth:   quadtree.DefaultMaxDepth,
		PickRadius:      DefaultPickRadius,
		Thermal:         physics.DefaultThermal(),
		ValidateState:   true,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.SubSteps < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.SubSteps)
	}
	if !finite(c.Gravity.X) || !finite(c.Gravity.Y) {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidConfig)
	}
	if err := validateBoundary(c.Boundary); err != nil {
		return err
	}
	if c.IndexMaxObjects < 1 {
		return fmt.Errorf("%w: index max objects must be at least 1, got %d", ErrInvalidConfig, c.IndexMaxObjects)
	}
	if c.IndexMaxDepth < 0 {
		return fmt.Errorf("%w: index max depth must not be negative, got %d", ErrInvalidConfig, c.IndexMaxDepth)
	}
	if c.Drag < 0 || c.Drag >= 1 {
		return fmt.Errorf("%w: drag must be in [0, 1), got %g", ErrInvalidConfig, c.Drag)
	}
	if c.PickRadius < 0 {
		return fmt.Errorf("%w: pick radius must not be negative, got %g", ErrInvalidConfig, c.PickRadius)
	}
	if c.Temperature {
		if c.Thermal.Max <= 0 {
			return fmt.Errorf("%w: max temperature must be positive, got %g", ErrInvalidConfig, c.Thermal.Max)
		}
		if c.Thermal.Decay < 0 || c.Thermal.Exchange < 0 {
			return fmt.Errorf("%w: temperature decay and exchange must not be negative", ErrInvalidConfig)
		}
		if c.Thermal.Buckets < 1 {
			return fmt.Errorf("%w: temperature buckets must be at least 1, got %d", ErrInvalidConfig, c.Thermal.Buckets)
		}
	}
	for i, z := range c.HeatZones {
		if z.Radius <= 0 {
			return fmt.Errorf("%w: heat zone %d radius must be positive, got %g", ErrInvalidConfig, i, z.Radius)
		}
	}
	return nil
}

func validateBoundary(b physics.Boundary) error {
	if b.Radius <= 0 || !finite(b.Radius) {
		return fmt.Errorf("%w: boundary radius must be positive, got %g", ErrInvalidConfig, b.Radius)
	}
	if !finite(b.Center.X) || !finite(b.Center.Y) {
		return fmt.Errorf("%w: boundary centre must be finite", ErrInvalidConfig)
	}
	return nil
}
