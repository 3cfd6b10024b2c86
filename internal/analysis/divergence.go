package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
)

var ErrNoParticles = errors.New("analysis: config places no particles to perturb")

// DivergenceResult holds the per-tick RMS distance between matching
// particles of a reference run and a perturbed run.
type DivergenceResult struct {
	Dt           float64
	Perturbation float64
	Separation   []float64
}

// Divergence runs cfg twice, the second time with the first configured
// particle moved right by perturbation, and records how far apart the two
// pools drift. Both runs share the seed, so spawned particles match.
func Divergence(cfg *config.Config, perturbation float64) (*DivergenceResult, error) {
	if len(cfg.Particles) == 0 {
		return nil, ErrNoParticles
	}
	if perturbation <= 0 {
		return nil, fmt.Errorf("perturbation must be positive, got %g", perturbation)
	}

	shifted := cfg.Clone()
	shifted.Particles[0].X += perturbation

	ref, err := experiment.New(cfg)
	if err != nil {
		return nil, err
	}
	pert, err := experiment.New(shifted)
	if err != nil {
		return nil, err
	}

	result := &DivergenceResult{
		Dt:           cfg.Dt,
		Perturbation: perturbation,
		Separation:   make([]float64, 0, cfg.Ticks),
	}
	for i := 0; i < cfg.Ticks; i++ {
		a, _, err := ref.Tick()
		if err != nil {
			return result, fmt.Errorf("reference tick %d: %w", i+1, err)
		}
		b, _, err := pert.Tick()
		if err != nil {
			return result, fmt.Errorf("perturbed tick %d: %w", i+1, err)
		}

		n := min(len(a.Bodies), len(b.Bodies))
		sum := 0.0
		for j := 0; j < n; j++ {
			d := r2.Norm(r2.Sub(a.Bodies[j].Position, b.Bodies[j].Position))
			sum += d * d
		}
		sep := 0.0
		if n > 0 {
			sep = math.Sqrt(sum / float64(n))
		}
		result.Separation = append(result.Separation, sep)
	}
	return result, nil
}

// Rate estimates the exponential growth rate of the separation in 1/s, the
// mean of ln(d(t)/d0)/t over every tick with a positive separation.
func (r *DivergenceResult) Rate() float64 {
	if r.Perturbation <= 0 || r.Dt <= 0 {
		return 0
	}
	sum, count := 0.0, 0
	for i, d := range r.Separation {
		if d <= 0 {
			continue
		}
		t := float64(i+1) * r.Dt
		sum += math.Log(d/r.Perturbation) / t
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Final is the separation after the last tick.
func (r *DivergenceResult) Final() float64 {
	if len(r.Separation) == 0 {
		return 0
	}
	return r.Separation[len(r.Separation)-1]
}
