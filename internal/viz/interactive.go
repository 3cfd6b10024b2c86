package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
)

var scenarioInfo = map[string]string{
	"empty":   "blank boundary",
	"rain":    "five emitters",
	"pile":    "five drops at rest",
	"chain":   "pinned chain",
	"rope":    "rope in the rain",
	"furnace": "heat and buoyancy",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// tunable is one editable field of the config screen.
type tunable struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var tunables = []tunable{
	{"substeps", 1,
		func(c *config.Config) float64 { return float64(c.Solver.SubSteps) },
		func(c *config.Config, v float64) { c.Solver.SubSteps = max(int(v), 1) }},
	{"gravity", 100,
		func(c *config.Config) float64 { return c.Solver.Gravity.Y },
		func(c *config.Config, v float64) { c.Solver.Gravity.Y = v }},
	{"drag", 0.005,
		func(c *config.Config) float64 { return c.Solver.Drag },
		func(c *config.Config, v float64) { c.Solver.Drag = min(max(v, 0), 0.99) }},
	{"radius", 10,
		func(c *config.Config) float64 { return c.Solver.Boundary.Radius },
		func(c *config.Config, v float64) { c.Solver.Boundary.Radius = max(v, 10) }},
	{"max_particles", 50,
		func(c *config.Config) float64 { return float64(c.Spawn.MaxParticles) },
		func(c *config.Config, v float64) { c.Spawn.MaxParticles = max(int(v), 0) }},
}

type model struct {
	state, cursor int
	registry      *experiment.Registry
	scenarios     []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	liveModel     Model
}

func NewInteractiveApp(reg *experiment.Registry) *model {
	return &model{
		state:     stateMenu,
		registry:  reg,
		scenarios: reg.ListScenarios(),
		width:     width,
		height:    height,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
		return m, nil
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m model) forward(msg tea.Msg) (model, tea.Cmd) {
	newLive, cmd := m.liveModel.Update(msg)
	m.liveModel = newLive.(Model)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.scenarios) == 0 {
			return m, nil
		}
		cfg, err := m.registry.GetScenario(m.scenarios[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.selected, m.cfg, m.err = m.scenarios[m.cursor], cfg, nil
		m.state, m.paramCursor = stateConfig, 0
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	t := tunables[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				t.set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(tunables)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", t.get(m.cfg))
	case "s":
		return m.start()
	case "left", "h":
		t.set(m.cfg, t.get(m.cfg)-t.step)
	case "right", "l":
		t.set(m.cfg, t.get(m.cfg)+t.step)
	}
	return m, nil
}

func (m model) start() (model, tea.Cmd) {
	live, err := NewModel(m.cfg)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel, m.state, m.err = live, stateSim, nil
	if m.width > width {
		var cmd tea.Cmd
		m, cmd = m.forward(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m, tea.Batch(cmd, m.liveModel.Init())
	}
	return m, m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuHotkey   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuHotkey.Render(pairs[i]) + menuInactive.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("VERLET") + "\n    " + menuSub.Render("particle physics sandbox") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.scenarios {
		desc := scenarioInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-16s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-16s", name)), menuDim.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(scenarioInfo[m.selected]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, t := range tunables {
		valStr := fmt.Sprintf("%10.3f", t.get(m.cfg))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-14s", t.name)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-14s", t.name)), menuDim.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the scenario picker.
func RunInteractive(reg *experiment.Registry) error {
	_, err := tea.NewProgram(NewInteractiveApp(reg), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
