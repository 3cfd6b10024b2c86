package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/metrics"
	"github.com/san-kum/verlet/internal/solver"
)

// Observer is called after every tick with the new snapshot.
type Observer interface {
	OnTick(snap solver.Snapshot)
}

// Sample is the per-tick summary kept in a Result.
type Sample struct {
	Tick            int     `json:"tick"`
	Time            float64 `json:"time"`
	Particles       int     `json:"particles"`
	KineticEnergy   float64 `json:"kinetic_energy"`
	MeanTemperature float64 `json:"mean_temperature"`
	SettleDelta     float64 `json:"settle_delta"`
}

type Result struct {
	Samples []Sample
	Final   solver.Snapshot
	Metrics map[string]float64
	Spawned int
}

// Series extracts one column of the samples by name.
func (r *Result) Series(name string) ([]float64, error) {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		switch name {
		case "kinetic_energy":
			out[i] = s.KineticEnergy
		case "mean_temperature":
			out[i] = s.MeanTemperature
		case "settle_delta":
			out[i] = s.SettleDelta
		case "particles":
			out[i] = float64(s.Particles)
		default:
			return nil, fmt.Errorf("unknown series: %s", name)
		}
	}
	return out, nil
}

type Experiment struct {
	cfg       *config.Config
	solver    *solver.Solver
	spawner   *Spawner
	metrics   []metrics.Metric
	observers []Observer

	// Progress, when set, is called after every tick.
	Progress func(tick, total int)
}

// New builds a solver from cfg and adds the configured particles and chains.
func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := solver.New(cfg.ToSolverConfig())
	if err != nil {
		return nil, err
	}
	for i, p := range cfg.Particles {
		pos := config.Point{X: p.X, Y: p.Y}.Vec()
		if _, err := s.Spawn(pos, p.Radius, p.Static, p.Temperature); err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}
	}
	for i, c := range cfg.Chains {
		if _, err := s.AddChain(c.Build()); err != nil {
			return nil, fmt.Errorf("chain %d: %w", i, err)
		}
	}
	return &Experiment{
		cfg:     cfg,
		solver:  s,
		spawner: NewSpawner(cfg.Spawn, cfg.Seed),
	}, nil
}

func (e *Experiment) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o Observer)     { e.observers = append(e.observers, o) }
func (e *Experiment) Solver() *solver.Solver     { return e.solver }
func (e *Experiment) Spawner() *Spawner          { return e.spawner }
func (e *Experiment) Config() *config.Config     { return e.cfg }

// Tick spawns, advances the solver by one frame and returns the snapshot.
func (e *Experiment) Tick() (solver.Snapshot, int, error) {
	n, err := e.spawner.Advance(e.solver, e.cfg.Dt)
	if err != nil {
		return solver.Snapshot{}, n, err
	}
	if err := e.solver.Update(e.cfg.Dt); err != nil {
		return solver.Snapshot{}, n, err
	}
	return e.solver.Snapshot(), n, nil
}

// Run advances cfg.Ticks frames. On cancellation or a solver error the
// samples recorded so far are returned with the error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	total := e.cfg.Ticks
	result := &Result{
		Samples: make([]Sample, 0, total),
		Metrics: make(map[string]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}
	ke := metrics.NewKineticEnergy()
	temp := metrics.NewMeanTemperature()
	settle := metrics.NewSettleDelta()

	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			result.Final = e.solver.Snapshot()
			return result, ctx.Err()
		default:
		}

		snap, n, err := e.Tick()
		result.Spawned += n
		if err != nil {
			result.Final = e.solver.Snapshot()
			return result, fmt.Errorf("tick %d: %w", i+1, err)
		}

		ke.Observe(snap)
		temp.Observe(snap)
		settle.Observe(snap)
		for _, m := range e.metrics {
			m.Observe(snap)
		}
		for _, o := range e.observers {
			o.OnTick(snap)
		}

		result.Samples = append(result.Samples, Sample{
			Tick:            snap.Tick,
			Time:            snap.Time,
			Particles:       len(snap.Bodies),
			KineticEnergy:   ke.Value(),
			MeanTemperature: temp.Value(),
			SettleDelta:     settle.Value(),
		})

		if e.Progress != nil {
			e.Progress(i+1, total)
		}
	}

	result.Final = e.solver.Snapshot()
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
