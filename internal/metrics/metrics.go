// Package metrics observes solver snapshots once per tick and reduces them
// to a single number each.
package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/verlet/internal/solver"
)

type Metric interface {
	Name() string
	Observe(snap solver.Snapshot)
	Value() float64
	Reset()
}

var registry = map[string]func() Metric{
	"kinetic_energy":     func() Metric { return NewKineticEnergy() },
	"max_overlap":        func() Metric { return NewMaxOverlap() },
	"boundary_violation": func() Metric { return NewBoundaryViolation() },
	"settle_delta":       func() Metric { return NewSettleDelta() },
	"mean_temperature":   func() Metric { return NewMeanTemperature() },
	"stability":          func() Metric { return NewStability(DefaultStabilityMargin) },
}

// New returns a fresh metric by name.
func New(name string) (Metric, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s (available: %v)", name, Names())
	}
	return f(), nil
}

// Names lists the registered metrics in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns one fresh instance of every registered metric.
func All() []Metric {
	out := make([]Metric, 0, len(registry))
	for _, n := range Names() {
		out = append(out, registry[n]())
	}
	return out
}
