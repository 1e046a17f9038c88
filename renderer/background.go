// Package renderer draws the simulation with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/camera"
)

// BackgroundRenderer clears the frame and outlines the world with a faint grid.
type BackgroundRenderer struct {
	baseColor rl.Color
	gridColor rl.Color
	edgeColor rl.Color
	cellSize  float64

	worldW, worldH float64
}

// NewBackgroundRenderer creates a background for a world of the given size.
func NewBackgroundRenderer(worldW, worldH float64) *BackgroundRenderer {
	return &BackgroundRenderer{
		baseColor: rl.Black,
		gridColor: rl.Color{R: 20, G: 24, B: 28, A: 255},
		edgeColor: rl.Color{R: 45, G: 50, B: 60, A: 255},
		cellSize:  50,
		worldW:    worldW,
		worldH:    worldH,
	}
}

// Draw clears the screen and outlines the world, optionally with grid lines
// at fixed world intervals.
func (b *BackgroundRenderer) Draw(cam *camera.Camera, grid bool) {
	rl.ClearBackground(b.baseColor)

	for x := 0.0; grid && x <= b.worldW; x += b.cellSize {
		b.line(cam, r2.Vec{X: x, Y: 0}, r2.Vec{X: x, Y: b.worldH}, b.gridColor)
	}
	for y := 0.0; grid && y <= b.worldH; y += b.cellSize {
		b.line(cam, r2.Vec{X: 0, Y: y}, r2.Vec{X: b.worldW, Y: y}, b.gridColor)
	}

	// World bounds; creatures wrap a margin beyond them.
	corners := []r2.Vec{
		{X: 0, Y: 0}, {X: b.worldW, Y: 0},
		{X: b.worldW, Y: b.worldH}, {X: 0, Y: b.worldH},
	}
	for i := range corners {
		b.line(cam, corners[i], corners[(i+1)%len(corners)], b.edgeColor)
	}
}

// line draws an axis-aligned world segment. Segments are projected by their
// start point so a wrapped camera never stretches them across the screen.
func (b *BackgroundRenderer) line(cam *camera.Camera, from, to r2.Vec, color rl.Color) {
	start := cam.WorldToScreen(from)
	delta := r2.Scale(cam.Zoom, r2.Sub(to, from))
	end := r2.Add(start, delta)
	rl.DrawLineV(vec2(start), vec2(end), color)
}

func vec2(v r2.Vec) rl.Vector2 {
	return rl.Vector2{X: float32(v.X), Y: float32(v.Y)}
}
