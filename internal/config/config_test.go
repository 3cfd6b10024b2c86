package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/solver"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Solver.SubSteps != 5 {
		t.Errorf("expected 5 substeps, got %d", cfg.Solver.SubSteps)
	}
	if cfg.Solver.Gravity.Vec() != (r2.Vec{X: 0, Y: 1000}) {
		t.Errorf("unexpected gravity %v", cfg.Solver.Gravity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("rain")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Spawn.Emitters) != 5 {
		t.Errorf("expected 5 emitters, got %d", len(cfg.Spawn.Emitters))
	}
	if cfg.Scenario != "rain" {
		t.Errorf("scenario = %q", cfg.Scenario)
	}
}

func TestGetPresetIsFresh(t *testing.T) {
	a := GetPreset("rain")
	a.Spawn.Emitters[0].X = -1
	b := GetPreset("rain")
	if b.Spawn.Emitters[0].X == -1 {
		t.Error("preset shared state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			if err := GetPreset(name).Validate(); err != nil {
				t.Errorf("preset %s invalid: %v", name, err)
			}
		})
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative ticks", func(c *Config) { c.Ticks = -1 }},
		{"zero substeps", func(c *Config) { c.Solver.SubSteps = 0 }},
		{"no boundary", func(c *Config) { c.Solver.Boundary.Radius = 0 }},
		{"emitter without interval", func(c *Config) {
			c.Spawn.Emitters = []Point{{X: 960, Y: 540}}
			c.Spawn.Interval = 0
		}},
		{"inverted radius range", func(c *Config) {
			c.Spawn.Emitters = []Point{{X: 960, Y: 540}}
			c.Spawn.RadiusMin, c.Spawn.RadiusMax = 10, 2
		}},
		{"zero particle radius", func(c *Config) { c.Particles = []ParticleConfig{{X: 1, Y: 1}} }},
		{"one particle chain", func(c *Config) { c.Chains = []ChainConfig{{Particles: 1, Radius: 1}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, solver.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "furnace.yaml")
	cfg := GetPreset("furnace")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !loaded.Temperature.Enabled || len(loaded.Temperature.Zones) != 1 {
		t.Errorf("temperature section lost: %+v", loaded.Temperature)
	}
	if loaded.Spawn.MaxParticles != cfg.Spawn.MaxParticles {
		t.Errorf("max particles = %d, want %d", loaded.Spawn.MaxParticles, cfg.Spawn.MaxParticles)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "ticks: 10\nsolver:\n  substeps: 8\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Ticks != 10 || loaded.Solver.SubSteps != 8 {
		t.Errorf("loaded ticks %d substeps %d", loaded.Ticks, loaded.Solver.SubSteps)
	}
	if loaded.Dt != DefaultDt || loaded.Solver.Boundary.Radius != 500 {
		t.Errorf("defaults not kept: dt %g radius %g", loaded.Dt, loaded.Solver.Boundary.Radius)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestToSolverConfig(t *testing.T) {
	cfg := GetPreset("furnace")
	sc := cfg.ToSolverConfig()

	if !sc.Temperature || len(sc.HeatZones) != 1 {
		t.Fatalf("temperature not mapped: %+v", sc)
	}
	if sc.HeatZones[0].Center != (r2.Vec{X: 960, Y: 1000}) {
		t.Errorf("zone centre = %v", sc.HeatZones[0].Center)
	}
	if sc.Boundary.Radius != 500 || sc.Drag != cfg.Solver.Drag {
		t.Errorf("solver config = %+v", sc)
	}
	if _, err := solver.New(sc); err != nil {
		t.Errorf("solver rejected mapped config: %v", err)
	}
}

func TestChainBuild(t *testing.T) {
	straight := ChainConfig{Particles: 10, Start: Point{X: 0, Y: 0}, End: Point{X: 90, Y: 0}, Radius: 2, RestLength: 10}
	c := straight.Build()
	if !c.Particles[9].Static {
		t.Error("straight chain should pin its last particle")
	}

	straight.Hanging = true
	c = straight.Build()
	if c.Particles[9].Static || c.Particles[9].Current.Y != 90 {
		t.Errorf("hanging chain end = %+v", c.Particles[9])
	}
}
