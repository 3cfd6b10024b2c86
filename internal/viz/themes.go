package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the live view
type Theme struct {
	Name     string
	Particle lipgloss.Color
	Static   lipgloss.Color
	Dragged  lipgloss.Color
	Link     lipgloss.Color
	Boundary lipgloss.Color
	Overlay  lipgloss.Color
	Cold     lipgloss.Color // temperature 0
	Hot      lipgloss.Color // temperature max
	Muted    lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Particle: lipgloss.Color("#00ffff"),
		Static:   lipgloss.Color("#ffff00"),
		Dragged:  lipgloss.Color("#ff00ff"),
		Link:     lipgloss.Color("#888888"),
		Boundary: lipgloss.Color("#444466"),
		Overlay:  lipgloss.Color("#333344"),
		Cold:     lipgloss.Color("#2020ff"),
		Hot:      lipgloss.Color("#ff2020"),
		Muted:    lipgloss.Color("#666666"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Particle: lipgloss.Color("#00ff00"), // green phosphor
		Static:   lipgloss.Color("#88ff88"),
		Dragged:  lipgloss.Color("#ffffff"),
		Link:     lipgloss.Color("#00aa00"),
		Boundary: lipgloss.Color("#005500"),
		Overlay:  lipgloss.Color("#003300"),
		Cold:     lipgloss.Color("#004400"),
		Hot:      lipgloss.Color("#ccff00"),
		Muted:    lipgloss.Color("#005500"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Particle: lipgloss.Color("#00a8cc"),
		Static:   lipgloss.Color("#ffd700"),
		Dragged:  lipgloss.Color("#ff9ff3"),
		Link:     lipgloss.Color("#4488aa"),
		Boundary: lipgloss.Color("#0077be"),
		Overlay:  lipgloss.Color("#003355"),
		Cold:     lipgloss.Color("#0044aa"),
		Hot:      lipgloss.Color("#ff6b6b"),
		Muted:    lipgloss.Color("#4488aa"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme advances CurrentTheme to the next entry of Themes.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	CurrentTheme = Themes[0]
}
