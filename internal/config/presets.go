package config

import "sort"

var fountain = []Point{
	{X: 540, Y: 300},
	{X: 750, Y: 300},
	{X: 960, Y: 300},
	{X: 1170, Y: 300},
	{X: 1380, Y: 300},
}

// Presets adjust DefaultConfig into a named scenario.
var Presets = map[string]func(*Config){
	// five emitters raining particles into the boundary
	"rain": func(c *Config) {
		c.Ticks = 1200
		c.Solver.Gravity = Point{X: 0, Y: 2000}
		c.Spawn.Emitters = append([]Point(nil), fountain...)
	},
	// five particles dropped from rest
	"pile": func(c *Config) {
		c.Ticks = 500
		for i := 0; i < 5; i++ {
			c.Particles = append(c.Particles, ParticleConfig{X: 880 + float64(i)*40, Y: 240, Radius: 15})
		}
	},
	// ten particles pinned 300 apart with 50 per link
	"chain": func(c *Config) {
		c.Ticks = 300
		c.Solver.Drag = 0.02
		c.Chains = []ChainConfig{{
			Particles:  10,
			Start:      Point{X: 810, Y: 400},
			End:        Point{X: 1110, Y: 400},
			Radius:     5,
			RestLength: 50,
		}}
	},
	// a rope hanging into a slow rain
	"rope": func(c *Config) {
		c.Ticks = 900
		c.Solver.Drag = 0.005
		c.Spawn.Emitters = []Point{{X: 860, Y: 200}, {X: 1060, Y: 200}}
		c.Spawn.MaxParticles = 150
		c.Spawn.Interval = 0.5
		c.Chains = []ChainConfig{{
			Particles:  16,
			Start:      Point{X: 960, Y: 150},
			Radius:     6,
			RestLength: 20,
			Hanging:    true,
		}}
	},
	// a heat zone at the floor keeps particles rising and falling
	"furnace": func(c *Config) {
		c.Ticks = 1800
		c.Solver.Drag = 0.002
		c.Temperature.Enabled = true
		c.Temperature.Zones = []ZoneConfig{{X: 960, Y: 1000, Radius: 150, Rate: 150}}
		c.Spawn.Emitters = []Point{{X: 860, Y: 300}, {X: 960, Y: 300}, {X: 1060, Y: 300}}
		c.Spawn.MaxParticles = 400
		c.Spawn.RadiusMin = 8
		c.Spawn.RadiusMax = 12
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Scenario = name
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
