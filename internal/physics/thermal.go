package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultMaxTemperature = 100.0
	DefaultDecay          = 0.5
	DefaultBuoyancy       = 20.0
	DefaultExchange       = 0.25
	DefaultBuckets        = 8
)

// Thermal holds the temperature model parameters. Temperatures live in
// [0, Max].
type Thermal struct {
	Max      float64 // upper clamp
	Decay    float64 // subtracted once per tick
	Buoyancy float64 // upward acceleration per unit temperature
	Exchange float64 // largest amount moved between two touching particles per contact
	Buckets  int     // number of display colour buckets
}

func DefaultThermal() Thermal {
	return Thermal{
		Max:      DefaultMaxTemperature,
		Decay:    DefaultDecay,
		Buoyancy: DefaultBuoyancy,
		Exchange: DefaultExchange,
		Buckets:  DefaultBuckets,
	}
}

// Clamp limits v to [0, Max].
func (t Thermal) Clamp(v float64) float64 {
	return math.Max(0, math.Min(t.Max, v))
}

// Lift is the buoyant acceleration for temp, pointing along up.
func (t Thermal) Lift(temp float64, up r2.Vec) r2.Vec {
	return r2.Scale(temp*t.Buoyancy, up)
}

// Bucket maps temp to a display bucket in [0, Buckets).
func (t Thermal) Bucket(temp float64) int {
	if t.Buckets <= 1 || t.Max <= 0 {
		return 0
	}
	b := int(t.Clamp(temp) / t.Max * float64(t.Buckets))
	if b >= t.Buckets {
		b = t.Buckets - 1
	}
	return b
}

// ApplyTemperature adds delta and clamps into the thermal range.
func (p *Particle) ApplyTemperature(delta float64, t Thermal) {
	p.Temperature = t.Clamp(p.Temperature + delta)
}

// Cool applies one tick of decay.
func (p *Particle) Cool(t Thermal) {
	p.ApplyTemperature(-t.Decay, t)
}

// ExchangeHeat moves heat from the hotter particle to the colder one. The
// amount is capped at t.Exchange and at half the difference, so the pair
// never swaps order.
func ExchangeHeat(a, b *Particle, t Thermal) {
	if a.Temperature < b.Temperature {
		a, b = b, a
	}
	amount := math.Min(t.Exchange, (a.Temperature-b.Temperature)/2)
	if amount <= 0 {
		return
	}
	a.ApplyTemperature(-amount, t)
	b.ApplyTemperature(amount, t)
}
