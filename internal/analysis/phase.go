package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/solver"
)

type Point struct {
	X, Y float64
}

// PhasePortrait2D is the trajectory of one particle's height against its
// vertical velocity.
type PhasePortrait2D struct {
	Handle solver.Handle
	Points []Point
}

// Track runs cfg for cfg.Ticks frames and records (y, vy) of particle h
// after every tick. Ticks before h has spawned are skipped.
func Track(cfg *config.Config, h solver.Handle) (*PhasePortrait2D, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, err
	}

	portrait := &PhasePortrait2D{
		Handle: h,
		Points: make([]Point, 0, cfg.Ticks),
	}
	for i := 0; i < cfg.Ticks; i++ {
		snap, _, err := exp.Tick()
		if err != nil {
			return portrait, fmt.Errorf("tick %d: %w", i+1, err)
		}
		if int(h) >= len(snap.Bodies) {
			continue
		}
		b := snap.Bodies[h]
		portrait.Points = append(portrait.Points, Point{
			X: b.Position.Y,
			Y: b.Velocity(snap.SubDt).Y,
		})
	}

	if len(portrait.Points) == 0 {
		return nil, fmt.Errorf("particle %d never spawned", h)
	}
	return portrait, nil
}

// PhasePortraitToASCII plots the portrait on a width x height character grid.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// zero velocity line
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
