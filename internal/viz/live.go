package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/metrics"
	"github.com/san-kum/verlet/internal/solver"
)

const (
	width           = 80
	height          = 30
	statsWidth      = 46
	historyCapacity = 600
	maxSubSteps     = 32
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives one experiment at 60 frames per second and renders it on a
// braille canvas. The left mouse button drags particles.
type Model struct {
	cfg           *config.Config
	exp           *experiment.Experiment
	snap          solver.Snapshot
	canvas        *Canvas
	width, height int
	running       bool
	showOverlay   bool
	showHelp      bool
	energy        []float64
	population    []float64
	drag          solver.Handle
	err           error
}

// NewModel builds the experiment described by cfg. cfg is cloned, so reset
// always returns to the same starting state.
func NewModel(cfg *config.Config) (Model, error) {
	m := Model{
		cfg:        cfg.Clone(),
		canvas:     NewCanvas(width, height),
		width:      width,
		height:     height,
		running:    true,
		energy:     make([]float64, 0, historyCapacity),
		population: make([]float64, 0, historyCapacity),
		drag:       -1,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-statsWidth-2, 10)
		m.height = max(msg.Height-1, 5)
		m.canvas.Resize(m.width, m.height)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.exp.Solver()
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.step()
		}
	case "r":
		if err := m.reset(); err != nil {
			m.err = err
		}
	case "i":
		s.SetUseIndex(!s.Config().UseIndex)
	case "h":
		s.SetTemperatureEnabled(!s.Config().Temperature)
	case "+", "=":
		if n := s.Config().SubSteps; n < maxSubSteps {
			_ = s.SetSubSteps(n + 1)
		}
	case "-", "_":
		// SetSubSteps refuses anything below one
		_ = s.SetSubSteps(s.Config().SubSteps - 1)
	case "q":
		m.showOverlay = !m.showOverlay
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	m.snap = s.Snapshot()
	return m, nil
}

// canvasOrigin is the terminal cell where the canvas starts.
func (m *Model) canvasOrigin() (int, int) { return 1, 0 }

func (m *Model) mouseWorld(msg tea.MouseMsg) r2.Vec {
	ox, oy := m.canvasOrigin()
	return m.viewport().CellToWorld(msg.X-ox, msg.Y-oy)
}

// viewport fits the boundary onto the canvas.
func (m *Model) viewport() Viewport {
	pw, ph := m.canvas.PixelSize()
	return NewViewport(m.snap.Boundary.Box(), pw, ph)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	s := m.exp.Solver()
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		// a click lands on a cell centre, so reach at least one cell
		reach := math.Max(s.Config().PickRadius, m.viewport().CellReach())
		h, ok := s.NearestParticleWithin(m.mouseWorld(msg), reach)
		if !ok {
			return
		}
		if err := s.BeginDrag(h); err == nil {
			m.drag = h
		}
	case msg.Action == tea.MouseActionMotion && m.drag >= 0:
		_ = s.DragTo(m.drag, m.mouseWorld(msg))
	case msg.Action == tea.MouseActionRelease && m.drag >= 0:
		_ = s.EndDrag(m.drag)
		m.drag = -1
	default:
		return
	}
	m.snap = s.Snapshot()
}

// step advances the experiment one frame. A solver error pauses the view
// and is shown until reset.
func (m *Model) step() {
	snap, _, err := m.exp.Tick()
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.snap = snap

	m.energy = appendCapped(m.energy, metrics.KineticEnergyOf(snap))
	m.population = appendCapped(m.population, float64(len(snap.Bodies)))
}

func appendCapped(history []float64, v float64) []float64 {
	history = append(history, v)
	if len(history) > historyCapacity {
		history = history[1:]
	}
	return history
}

// reset rebuilds the experiment from the stored config.
func (m *Model) reset() error {
	exp, err := experiment.New(m.cfg.Clone())
	if err != nil {
		return err
	}
	m.exp = exp
	m.snap = exp.Solver().Snapshot()
	m.energy = m.energy[:0]
	m.population = m.population[:0]
	m.drag = -1
	m.err = nil
	return nil
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render())

	sc := m.exp.Solver().Config()
	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText(strings.ToUpper(m.cfg.Scenario), CurrentTheme.Cold, CurrentTheme.Hot)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render(statusLine(m.err)) + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	ke := 0.0
	if len(m.energy) > 0 {
		ke = m.energy[len(m.energy)-1]
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d (%.2fs)", m.snap.Tick, m.snap.Time))
	row("Particles", fmt.Sprintf("%d", len(m.snap.Bodies)))
	row("Links", fmt.Sprintf("%d", len(m.snap.Links)))
	row("Substeps", fmt.Sprintf("%d", sc.SubSteps))
	row("Index", onOff(sc.UseIndex))
	row("Heat", onOff(sc.Temperature))
	row("Energy", fmt.Sprintf("%.1f", ke))
	if m.drag >= 0 {
		row("Dragging", fmt.Sprintf("#%d", m.drag))
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Pool") + SparklineChart(m.population, 30) + "\n")

	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Pause R:Reset Esc:Quit\nI:Index Q:Quadtree H:Heat\n+/-:Substeps T:Theme ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Step one frame (paused)  ║
║  R        - Reset scenario           ║
║  I        - Toggle quadtree index    ║
║  Q        - Toggle quadtree overlay  ║
║  H        - Toggle temperature       ║
║  +/-      - More/fewer substeps      ║
║  T        - Cycle themes             ║
║  Mouse    - Drag a particle          ║
║  Esc      - Quit                     ║
╚══════════════════════════════════════╝`

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func statusLine(err error) string {
	var se *solver.StepError
	if errors.As(err, &se) {
		return fmt.Sprintf("UNSTABLE at tick %d (particle %d)", se.Tick, se.Particle)
	}
	return "ERROR: " + err.Error()
}

// draw renders the latest snapshot onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	view := m.viewport()
	theme := CurrentTheme
	s := m.exp.Solver()

	if m.showOverlay {
		for _, r := range s.IndexRegions() {
			x0, y0 := view.ToPixel(r.Min)
			x1, y1 := view.ToPixel(r.Max)
			m.canvas.DrawRect(x0, y0, x1, y1, theme.Overlay)
		}
	}

	b := m.snap.Boundary
	cx, cy := view.ToPixel(b.Center)
	m.canvas.DrawCircle(cx, cy, view.Length(b.Radius), theme.Boundary)

	sc := s.Config()
	if sc.Temperature {
		for _, z := range sc.HeatZones {
			zx, zy := view.ToPixel(z.Center)
			m.canvas.DrawCircle(zx, zy, view.Length(z.Radius), theme.Hot)
		}
	}

	for _, l := range m.snap.Links {
		if l.A >= len(m.snap.Bodies) || l.B >= len(m.snap.Bodies) {
			continue
		}
		x0, y0 := view.ToPixel(m.snap.Bodies[l.A].Position)
		x1, y1 := view.ToPixel(m.snap.Bodies[l.B].Position)
		m.canvas.DrawLineColor(x0, y0, x1, y1, theme.Link)
	}

	var palette []lipgloss.Color
	if sc.Temperature {
		palette = Palette(theme.Cold, theme.Hot, max(sc.Thermal.Buckets, 1))
	}
	for body := range m.snap.All() {
		x, y := view.ToPixel(body.Position)
		m.canvas.DrawCircle(x, y, view.Length(body.Radius), bodyColor(body, m.drag, palette, theme))
	}
}

func bodyColor(b solver.Body, drag solver.Handle, palette []lipgloss.Color, theme Theme) lipgloss.Color {
	switch {
	case b.Handle == drag:
		return theme.Dragged
	case b.Static:
		return theme.Static
	case b.Bucket < len(palette):
		return palette[b.Bucket]
	}
	return theme.Particle
}

// Run opens the live view for cfg in the alternate screen.
func Run(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
