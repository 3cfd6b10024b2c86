package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/metrics"
)

// Registry resolves scenario and metric names for the command line.
type Registry struct {
	scenarios map[string]func() *config.Config
	metrics   map[string][]string
}

func NewRegistry() *Registry {
	r := &Registry{
		scenarios: make(map[string]func() *config.Config),
		metrics:   make(map[string][]string),
	}

	for _, name := range config.ListPresets() {
		r.scenarios[name] = func() *config.Config { return config.GetPreset(name) }
	}
	r.scenarios["empty"] = config.DefaultConfig

	contact := []string{"kinetic_energy", "max_overlap", "boundary_violation", "stability"}
	r.metrics["rain"] = contact
	r.metrics["pile"] = contact
	r.metrics["chain"] = []string{"kinetic_energy", "settle_delta", "stability"}
	r.metrics["rope"] = contact
	r.metrics["furnace"] = append([]string{"mean_temperature"}, contact...)

	return r
}

// GetScenario returns a fresh config for name.
func (r *Registry) GetScenario(name string) (*config.Config, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metrics suited to the scenario.
func (r *Registry) DefaultMetrics(scenario string) []metrics.Metric {
	names, ok := r.metrics[scenario]
	if !ok {
		names = []string{"kinetic_energy", "stability"}
	}
	out := make([]metrics.Metric, 0, len(names))
	for _, n := range names {
		m, err := metrics.New(n)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}
