package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/inspector"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a labelled progress bar for a fill in [0, 1] followed by text.
func (r *Renderer) DrawBar(x, y int32, label string, fill float64, text string, width int32) int32 {
	fill = min(max(fill, 0), 1)

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	barColor := r.Theme.BarFillHigh
	if fill < 0.3 {
		barColor = r.Theme.BarFillLow
	} else if fill < 0.6 {
		barColor = r.Theme.BarFillMedium
	}
	rl.DrawRectangle(barX, y+2, int32(float64(barWidth)*fill), r.Theme.BarHeight, barColor)

	rl.DrawText(text, barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight + 2
}

// DrawColumns draws one thin vertical bar per fill value, for slice fields.
func (r *Renderer) DrawColumns(x, y int32, label string, fills []float64, width int32) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	if len(fills) == 0 {
		return y + r.Theme.LineHeight
	}

	areaX := x + r.Theme.LabelWidth
	areaW := width - r.Theme.LabelWidth
	h := r.Theme.BarHeight + 4
	colW := max(areaW/int32(len(fills)), 1)

	rl.DrawRectangle(areaX, y, areaW, h, r.Theme.BarBg)
	for i, f := range fills {
		fh := int32(float64(h) * min(max(f, 0), 1))
		rl.DrawRectangle(areaX+int32(i)*colW, y+h-fh, max(colW-1, 1), fh, r.Theme.BarFill)
	}
	return y + h + 4
}

// DrawSection renders an inspected component.
func (r *Renderer) DrawSection(x, y int32, s inspector.Section, width int32) int32 {
	y = r.DrawSectionHeader(x, y, s.Title)
	for _, row := range s.Rows {
		switch {
		case len(row.Fill) == 1:
			y = r.DrawBar(x, y, row.Label, row.Fill[0], row.Text, width)
		case len(row.Fill) > 1:
			y = r.DrawColumns(x, y, row.Label, row.Fill, width)
		default:
			y = r.DrawLabelValue(x, y, row.Label, row.Text)
		}
	}
	return y + 4
}

// SectionHeight returns the height DrawSection will use for s.
func (r *Renderer) SectionHeight(s inspector.Section) int32 {
	h := r.Theme.LineHeight
	for _, row := range s.Rows {
		switch {
		case len(row.Fill) == 1:
			h += r.Theme.LineHeight + 2
		case len(row.Fill) > 1:
			h += r.Theme.BarHeight + 8
		default:
			h += r.Theme.LineHeight
		}
	}
	return h + 4
}
