package export

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/verlet/internal/analysis"
	"github.com/san-kum/verlet/internal/solver"
	"github.com/san-kum/verlet/internal/viz"
)

const background = "#0a0a0a"

// FrameOptions controls FrameToSVG. Zero values pick defaults.
type FrameOptions struct {
	Width   int     // output width in px, height follows the boundary's aspect
	Margin  float64 // world units around the boundary
	Theme   viz.Theme
	Buckets int // temperature buckets, 0 draws every particle in Theme.Particle
}

// FrameToSVG draws a snapshot at true geometry: the boundary, every link
// and every particle as a filled circle.
func FrameToSVG(snap solver.Snapshot, opts FrameOptions) string {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Margin <= 0 {
		opts.Margin = 10
	}
	if opts.Theme.Name == "" {
		opts.Theme = viz.CurrentTheme
	}
	var palette []lipgloss.Color
	if opts.Buckets > 0 {
		palette = viz.Palette(opts.Theme.Cold, opts.Theme.Hot, opts.Buckets)
	}

	b := snap.Boundary
	minX := b.Center.X - b.Radius - opts.Margin
	minY := b.Center.Y - b.Radius - opts.Margin
	span := 2 * (b.Radius + opts.Margin)
	if span <= 0 {
		span = 1
	}
	scale := float64(opts.Width) / span
	size := span * scale

	px := func(x float64) float64 { return (x - minX) * scale }
	py := func(y float64) float64 { return (y - minY) * scale }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, size, size, size, size, background))

	sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="2"/>
`, px(b.Center.X), py(b.Center.Y), b.Radius*scale, opts.Theme.Boundary))

	if len(snap.Links) > 0 {
		sb.WriteString(fmt.Sprintf("<g stroke=\"%s\" stroke-width=\"1.5\">\n", opts.Theme.Link))
		for _, l := range snap.Links {
			if l.A >= len(snap.Bodies) || l.B >= len(snap.Bodies) {
				continue
			}
			a, c := snap.Bodies[l.A].Position, snap.Bodies[l.B].Position
			sb.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>
`, px(a.X), py(a.Y), px(c.X), py(c.Y)))
		}
		sb.WriteString("</g>\n")
	}

	for body := range snap.All() {
		color := opts.Theme.Particle
		switch {
		case body.Static:
			color = opts.Theme.Static
		case body.Bucket < len(palette):
			color = palette[body.Bucket]
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, px(body.Position.X), py(body.Position.Y), body.Radius*scale, color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format, one dot per lit
// sub-pixel in its cell's colour.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fill := string(canvas.Colors[y/4][x/2])
			if fill == "" {
				fill = "#00ff00"
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// PortraitToSVG draws a phase portrait as a single path.
func PortraitToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
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

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
