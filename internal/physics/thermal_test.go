package physics

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestApplyTemperatureClamps(t *testing.T) {
	th := DefaultThermal()
	p := NewParticle(r2.Vec{}, 1, false)

	p.ApplyTemperature(500, th)
	if p.Temperature != th.Max {
		t.Errorf("temperature = %f, want %f", p.Temperature, th.Max)
	}
	p.ApplyTemperature(-1000, th)
	if p.Temperature != 0 {
		t.Errorf("temperature = %f, want 0", p.Temperature)
	}
}

func TestCoolDecays(t *testing.T) {
	th := Thermal{Max: 10, Decay: 1}
	p := NewParticle(r2.Vec{}, 1, false)
	p.Temperature = 2.5

	p.Cool(th)
	p.Cool(th)
	p.Cool(th)

	if p.Temperature != 0 {
		t.Errorf("temperature = %f, want 0", p.Temperature)
	}
}

func TestLiftPointsUp(t *testing.T) {
	th := Thermal{Max: 100, Buoyancy: 2}
	lift := th.Lift(10, r2.Vec{Y: -1})

	if lift != (r2.Vec{Y: -20}) {
		t.Errorf("lift = %v, want {0 -20}", lift)
	}
}

func TestBucket(t *testing.T) {
	th := Thermal{Max: 100, Buckets: 4}

	tests := []struct {
		temp float64
		want int
	}{
		{0, 0},
		{24.9, 0},
		{25, 1},
		{99, 3},
		{100, 3},
		{1000, 3},
		{-5, 0},
	}
	for _, tt := range tests {
		if got := th.Bucket(tt.temp); got != tt.want {
			t.Errorf("Bucket(%f) = %d, want %d", tt.temp, got, tt.want)
		}
	}
}

func TestExchangeHeat(t *testing.T) {
	th := Thermal{Max: 100, Exchange: 5}
	a := NewParticle(r2.Vec{}, 1, false)
	b := NewParticle(r2.Vec{}, 1, false)
	a.Temperature, b.Temperature = 10, 50

	ExchangeHeat(&a, &b, th)

	if a.Temperature != 15 || b.Temperature != 45 {
		t.Errorf("temperatures = %f, %f, want 15, 45", a.Temperature, b.Temperature)
	}

	a.Temperature, b.Temperature = 20, 21
	ExchangeHeat(&a, &b, th)
	if a.Temperature != 20.5 || b.Temperature != 20.5 {
		t.Errorf("small gap should equalise, got %f, %f", a.Temperature, b.Temperature)
	}
}
