package experiment

import (
	"context"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/metrics"
)

// Ensemble runs the same config under consecutive seeds, one goroutine per
// run. Each run owns its solver, so nothing is shared between goroutines.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart int64
	metrics   []string
}

func NewEnsemble(base *config.Config, numRuns int, seedStart int64, metricNames ...string) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart, metrics: metricNames}
}

// Summary is the spread of one metric across the ensemble.
type Summary struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.base.Clone()
			cfg.Seed = e.seedStart + int64(idx)

			exp, err := New(cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			for _, name := range e.metrics {
				m, err := metrics.New(name)
				if err != nil {
					errs[idx] = err
					return
				}
				exp.AddMetric(m)
			}
			results[idx], errs[idx] = exp.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Summarize reduces every metric present in results to its spread.
func Summarize(results []*Result) []Summary {
	values := make(map[string][]float64)
	for _, r := range results {
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Summary, 0, len(names))
	for _, name := range names {
		v := values[name]
		mean, std := stat.MeanStdDev(v, nil)
		if len(v) < 2 {
			std = 0
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, x := range v {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
		out = append(out, Summary{Name: name, Mean: mean, StdDev: std, Min: lo, Max: hi})
	}
	return out
}
