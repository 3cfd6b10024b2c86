package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/metrics"
)

type SweepPoint struct {
	SubSteps int
	Value    float64
}

// SubstepSweep reruns cfg once per substep count and records the final
// value of the named metric. More substeps should drive max_overlap and
// boundary_violation towards zero.
func SubstepSweep(ctx context.Context, cfg *config.Config, substeps []int, metric string) ([]SweepPoint, error) {
	if _, err := metrics.New(metric); err != nil {
		return nil, err
	}

	points := make([]SweepPoint, 0, len(substeps))
	for _, n := range substeps {
		run := cfg.Clone()
		run.Solver.SubSteps = n

		exp, err := experiment.New(run)
		if err != nil {
			return points, fmt.Errorf("substeps %d: %w", n, err)
		}
		m, _ := metrics.New(metric)
		exp.AddMetric(m)

		if _, err := exp.Run(ctx); err != nil {
			return points, fmt.Errorf("substeps %d: %w", n, err)
		}
		points = append(points, SweepPoint{SubSteps: n, Value: m.Value()})
	}
	return points, nil
}
