package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/verlet/internal/config"
)

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	data := make([]float64, 200)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}

	if f := DominantFrequency(data, dt); math.Abs(f-5) > 1e-9 {
		t.Errorf("expected 5 Hz, got %f", f)
	}
}

func TestPowerSpectrumFlat(t *testing.T) {
	ps := PowerSpectrum([]float64{2, 2, 2, 2})
	for i, v := range ps {
		if v > 1e-12 {
			t.Errorf("bin %d = %g for a constant series", i, v)
		}
	}
	if f := DominantFrequency([]float64{2, 2, 2, 2}, 0.1); f != 0 {
		t.Errorf("flat series frequency = %f", f)
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("single sample should have no spectrum")
	}
}

func TestTrack(t *testing.T) {
	cfg := config.GetPreset("pile")
	cfg.Ticks = 30

	portrait, err := Track(cfg, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(portrait.Points) != 30 {
		t.Fatalf("expected 30 points, got %d", len(portrait.Points))
	}
	// falling towards +y
	if portrait.Points[0].Y <= 0 || portrait.Points[29].X <= portrait.Points[0].X {
		t.Errorf("particle is not falling: %+v ... %+v", portrait.Points[0], portrait.Points[29])
	}

	art := PhasePortraitToASCII(portrait, 40, 10)
	if strings.Count(art, "\n") != 10 || !strings.Contains(art, "•") {
		t.Errorf("unexpected plot:\n%s", art)
	}
}

func TestTrackMissingParticle(t *testing.T) {
	cfg := config.GetPreset("pile")
	cfg.Ticks = 5
	if _, err := Track(cfg, 99); err == nil {
		t.Error("expected error for a handle that never spawns")
	}
}

func TestDivergence(t *testing.T) {
	cfg := config.GetPreset("pile")
	cfg.Ticks = 60

	d, err := Divergence(cfg, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Separation) != 60 {
		t.Fatalf("expected 60 samples, got %d", len(d.Separation))
	}

	// only the shifted particle differs while the pile is still in free fall
	want := 1e-3 / math.Sqrt(5)
	if math.Abs(d.Separation[0]-want) > 1e-8 {
		t.Errorf("initial separation = %g, want %g", d.Separation[0], want)
	}
	if d.Final() < 0 {
		t.Error("negative separation")
	}
}

func TestDivergenceNeedsParticles(t *testing.T) {
	if _, err := Divergence(config.GetPreset("rain"), 1e-3); !errors.Is(err, ErrNoParticles) {
		t.Errorf("expected ErrNoParticles, got %v", err)
	}
	if _, err := Divergence(config.GetPreset("pile"), 0); err == nil {
		t.Error("expected error for zero perturbation")
	}
}

func TestDivergenceRate(t *testing.T) {
	r := &DivergenceResult{
		Dt:           1,
		Perturbation: 1,
		Separation:   []float64{math.E, math.E * math.E, 0},
	}
	if rate := r.Rate(); math.Abs(rate-1) > 1e-9 {
		t.Errorf("expected rate 1, got %f", rate)
	}
	if (&DivergenceResult{}).Rate() != 0 {
		t.Error("empty result should have zero rate")
	}
}

func TestSubstepSweep(t *testing.T) {
	cfg := config.GetPreset("pile")
	cfg.Ticks = 100

	points, err := SubstepSweep(context.Background(), cfg, []int{1, 8}, "max_overlap")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 || points[0].SubSteps != 1 || points[1].SubSteps != 8 {
		t.Fatalf("points = %+v", points)
	}
	for _, p := range points {
		if p.Value < 0 || math.IsNaN(p.Value) {
			t.Errorf("substeps %d gave %f", p.SubSteps, p.Value)
		}
	}

	if _, err := SubstepSweep(context.Background(), cfg, []int{1}, "nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
