package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport maps world coordinates onto canvas sub-pixels with one uniform
// scale, centring world in the canvas. Both spaces grow y downwards.
type Viewport struct {
	world          r2.Box
	pixelW, pixelH int
	scale          float64
	offX, offY     float64
}

func NewViewport(world r2.Box, pixelW, pixelH int) Viewport {
	v := Viewport{world: world, pixelW: pixelW, pixelH: pixelH}
	size := r2.Sub(world.Max, world.Min)
	if size.X <= 0 || size.Y <= 0 || pixelW <= 0 || pixelH <= 0 {
		v.scale = 1
		return v
	}
	v.scale = math.Min(float64(pixelW-1)/size.X, float64(pixelH-1)/size.Y)
	v.offX = (float64(pixelW-1) - size.X*v.scale) / 2
	v.offY = (float64(pixelH-1) - size.Y*v.scale) / 2
	return v
}

func (v Viewport) Scale() float64 { return v.scale }

// ToPixel maps p to the nearest sub-pixel.
func (v Viewport) ToPixel(p r2.Vec) (int, int) {
	x := (p.X-v.world.Min.X)*v.scale + v.offX
	y := (p.Y-v.world.Min.Y)*v.scale + v.offY
	return int(math.Round(x)), int(math.Round(y))
}

// ToWorld maps the centre of sub-pixel (x, y) back to world space.
func (v Viewport) ToWorld(x, y float64) r2.Vec {
	return r2.Vec{
		X: (x-v.offX)/v.scale + v.world.Min.X,
		Y: (y-v.offY)/v.scale + v.world.Min.Y,
	}
}

// CellToWorld maps the centre of terminal cell (col, row) to world space.
func (v Viewport) CellToWorld(col, row int) r2.Vec {
	return v.ToWorld(float64(col)*2+0.5, float64(row)*4+1.5)
}

// CellReach is the world distance across one terminal cell's diagonal.
func (v Viewport) CellReach() float64 {
	return math.Hypot(2, 4) / v.scale
}

// Length scales a world distance to sub-pixels.
func (v Viewport) Length(d float64) int {
	return int(math.Round(d * v.scale))
}
