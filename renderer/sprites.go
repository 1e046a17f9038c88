package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/camera"
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/store"
)

// SpriteRenderer draws foods and creatures.
type SpriteRenderer struct {
	headingColor   rl.Color
	selectionColor rl.Color
	showRays       bool
	rayColor       rl.Color
	fov            float64
	rays           int
	viewDistance   float64
}

// NewSpriteRenderer creates a sprite renderer. Sensor parameters are used
// for the optional field-of-view overlay.
func NewSpriteRenderer(fov float64, rays int, viewDistance float64) *SpriteRenderer {
	return &SpriteRenderer{
		headingColor:   rl.Color{R: 255, G: 255, B: 255, A: 160},
		selectionColor: rl.Yellow,
		rayColor:       rl.Color{R: 255, G: 255, B: 255, A: 30},
		fov:            fov,
		rays:           rays,
		viewDistance:   viewDistance,
	}
}

// ToggleRays switches the field-of-view overlay.
func (r *SpriteRenderer) ToggleRays() bool {
	r.showRays = !r.showRays
	return r.showRays
}

// RaysShown reports whether the field-of-view overlay is on.
func (r *SpriteRenderer) RaysShown() bool { return r.showRays }

// ToColor converts a component color to a raylib color.
func ToColor(c components.Color) rl.Color {
	return rl.Color{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: channel(c.A),
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}

// Draw renders all visible sprites, with ghosts where they straddle the
// wrap edge. The selected entity, if any, gets a highlight ring.
func (r *SpriteRenderer) Draw(cam *camera.Camera, sprites []game.Sprite, selected store.Entity, hasSelected bool) {
	for i := range sprites {
		sp := &sprites[i]
		pos := r2.Vec{X: sp.X, Y: sp.Y}
		if !cam.IsVisible(pos, sp.Radius+r.viewDistance) {
			continue
		}

		screen := cam.WorldToScreen(pos)
		r.drawOne(cam, sp, screen)
		for _, g := range cam.Ghosts(pos, sp.Radius) {
			r.drawOne(cam, sp, g)
		}

		if hasSelected && sp.Entity == selected {
			rl.DrawCircleLinesV(vec2(screen), float32(sp.Radius*cam.Zoom+3), r.selectionColor)
		}
	}
}

func (r *SpriteRenderer) drawOne(cam *camera.Camera, sp *game.Sprite, screen r2.Vec) {
	radius := sp.Radius * cam.Zoom
	rl.DrawCircleV(vec2(screen), float32(radius), ToColor(sp.Color))

	if !sp.HasDirection {
		return
	}
	heading := r2.Vec{X: math.Cos(sp.Direction), Y: math.Sin(sp.Direction)}
	tip := r2.Add(screen, r2.Scale(radius, heading))
	rl.DrawLineV(vec2(screen), vec2(tip), r.headingColor)

	if r.showRays && r.rays > 0 {
		length := r.viewDistance * cam.Zoom
		for i := 0; i < r.rays; i++ {
			a := sp.Direction - r.fov/2
			if r.rays > 1 {
				a += r.fov * float64(i) / float64(r.rays-1)
			}
			end := r2.Add(screen, r2.Scale(length, r2.Vec{X: math.Cos(a), Y: math.Sin(a)}))
			rl.DrawLineV(vec2(screen), vec2(end), r.rayColor)
		}
	}
}
