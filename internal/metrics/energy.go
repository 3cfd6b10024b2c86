package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/solver"
)

// KineticEnergy is the mean per-particle kinetic energy of the last observed
// tick, taking every particle as unit mass. Velocity is the last substep
// displacement over the substep length.
type KineticEnergy struct {
	name  string
	value float64
	peak  float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(snap solver.Snapshot) {
	e.value = KineticEnergyOf(snap)
	e.peak = max(e.peak, e.value)
}

func (e *KineticEnergy) Value() float64 { return e.value }

// Peak is the largest value seen since the last Reset.
func (e *KineticEnergy) Peak() float64 { return e.peak }

func (e *KineticEnergy) Reset() {
	e.value = 0
	e.peak = 0
}

// KineticEnergyOf computes the mean kinetic energy of snap.
func KineticEnergyOf(snap solver.Snapshot) float64 {
	if len(snap.Bodies) == 0 || snap.SubDt <= 0 {
		return 0
	}
	total := 0.0
	for _, b := range snap.Bodies {
		v := r2.Norm(b.Displacement) / snap.SubDt
		total += 0.5 * v * v
	}
	return total / float64(len(snap.Bodies))
}

// MeanTemperature is the average particle temperature of the last observed
// tick.
type MeanTemperature struct {
	name  string
	value float64
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(snap solver.Snapshot) {
	m.value = 0
	if len(snap.Bodies) == 0 {
		return
	}
	for _, b := range snap.Bodies {
		m.value += b.Temperature
	}
	m.value /= float64(len(snap.Bodies))
}

func (m *MeanTemperature) Value() float64 { return m.value }
func (m *MeanTemperature) Reset()         { m.value = 0 }
