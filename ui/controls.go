package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel lists the overlays as clickable toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and applies any clicked toggles.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) {
	r := c.renderer
	padding := r.Theme.Padding
	rowHeight := int32(22)

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(totalItems)*rowHeight + padding*2 + r.Theme.LineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, category := range categories {
		rl.DrawText(category, c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += rowHeight

		for _, desc := range overlays.ByCategory(category) {
			mark := " "
			if overlays.IsEnabled(desc.ID) {
				mark = "x"
			}
			bounds := rl.Rectangle{
				X:      float32(c.x + padding),
				Y:      float32(y),
				Width:  float32(c.width - padding*2),
				Height: float32(rowHeight - 4),
			}
			if gui.Button(bounds, fmt.Sprintf("[%s] %s (%s)", mark, desc.Name, desc.KeyLabel)) {
				overlays.Toggle(desc.ID)
			}
			y += rowHeight
		}
	}
}
