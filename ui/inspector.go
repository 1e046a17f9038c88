package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/inspector"
	"github.com/pthm-cable/critters/store"
)

// Inspector renders the component panel for the selected entity.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the panel for the given components and returns its bottom edge.
func (ins *Inspector) Draw(e store.Entity, components []any) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	sections := inspector.BuildAll(components)

	height := padding*2 + r.Theme.LineHeight + 4
	for _, s := range sections {
		height += r.SectionHeight(s)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + padding
	y := ins.y + padding
	contentWidth := ins.width - padding*2

	rl.DrawText(fmt.Sprintf("Entity #%d", e), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, s := range sections {
		y = r.DrawSection(x, y, s, contentWidth)
	}
	return ins.y + height
}
