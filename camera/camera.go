// Package camera maps the wrapping world onto the screen with pan and zoom.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Camera controls the viewport into the simulation world.
//
// The world wraps with a period of its size plus twice the margin, and the
// wrapped region starts at -margin on both axes.
type Camera struct {
	// Center is the camera center in world coordinates
	Center r2.Vec

	// Zoom is screen pixels per world unit
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Period of the wrapping world and its origin offset
	PeriodW, PeriodH float64
	Margin           float64

	// Zoom constraints. MinZoom fits the whole period on screen.
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the world, zoomed to fit it.
func New(viewportW, viewportH, worldW, worldH, margin float64) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		PeriodW:   worldW + 2*margin,
		PeriodH:   worldH + 2*margin,
		Margin:    margin,
	}
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.Reset()
	return c
}

// fitZoom is the largest zoom at which the whole period is visible.
func (c *Camera) fitZoom() float64 {
	return math.Min(c.ViewportW/c.PeriodW, c.ViewportH/c.PeriodH)
}

// WorldToScreen converts world coordinates to screen coordinates, taking the
// shortest way around the wrap.
func (c *Camera) WorldToScreen(w r2.Vec) r2.Vec {
	dx := wrapDelta(w.X, c.Center.X, c.PeriodW)
	dy := wrapDelta(w.Y, c.Center.Y, c.PeriodH)
	return r2.Vec{
		X: c.ViewportW/2 + dx*c.Zoom,
		Y: c.ViewportH/2 + dy*c.Zoom,
	}
}

// ScreenToWorld converts screen coordinates to world coordinates inside
// the wrapped region.
func (c *Camera) ScreenToWorld(s r2.Vec) r2.Vec {
	dx := (s.X - c.ViewportW/2) / c.Zoom
	dy := (s.Y - c.ViewportH/2) / c.Zoom
	return r2.Vec{
		X: c.wrap(c.Center.X+dx, c.PeriodW),
		Y: c.wrap(c.Center.Y+dy, c.PeriodH),
	}
}

// IsVisible reports whether a circle at w could be on screen.
func (c *Camera) IsVisible(w r2.Vec, radius float64) bool {
	dx := wrapDelta(w.X, c.Center.X, c.PeriodW)
	dy := wrapDelta(w.Y, c.Center.Y, c.PeriodH)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return math.Abs(dx) <= halfW && math.Abs(dy) <= halfH
}

// Ghosts returns extra screen positions for a circle straddling the edge of
// the wrapped region, so it is drawn on both sides. At most three are returned.
func (c *Camera) Ghosts(w r2.Vec, radius float64) []r2.Vec {
	primary := c.WorldToScreen(w)
	spanW, spanH := c.PeriodW*c.Zoom, c.PeriodH*c.Zoom
	r := radius * c.Zoom

	var offX, offY float64
	switch {
	case primary.X-r < 0 && primary.X+spanW-r < c.ViewportW:
		offX = spanW
	case primary.X+r > c.ViewportW && primary.X-spanW+r > 0:
		offX = -spanW
	}
	switch {
	case primary.Y-r < 0 && primary.Y+spanH-r < c.ViewportH:
		offY = spanH
	case primary.Y+r > c.ViewportH && primary.Y-spanH+r > 0:
		offY = -spanH
	}

	var ghosts []r2.Vec
	if offX != 0 {
		ghosts = append(ghosts, r2.Vec{X: primary.X + offX, Y: primary.Y})
	}
	if offY != 0 {
		ghosts = append(ghosts, r2.Vec{X: primary.X, Y: primary.Y + offY})
	}
	if offX != 0 && offY != 0 {
		ghosts = append(ghosts, r2.Vec{X: primary.X + offX, Y: primary.Y + offY})
	}
	return ghosts
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	ratio := c.Zoom / c.MinZoom
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.SetZoom(c.MinZoom * ratio)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Center.X = c.wrap(c.Center.X+dx/c.Zoom, c.PeriodW)
	c.Center.Y = c.wrap(c.Center.Y+dy/c.Zoom, c.PeriodH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = min(max(zoom, c.MinZoom), c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera on the world and fits it to the screen.
func (c *Camera) Reset() {
	c.Center = r2.Vec{
		X: c.PeriodW/2 - c.Margin,
		Y: c.PeriodH/2 - c.Margin,
	}
	c.Zoom = c.MinZoom
}

// wrap maps x into [-margin, period-margin).
func (c *Camera) wrap(x, period float64) float64 {
	r := math.Mod(x+c.Margin, period)
	if r < 0 {
		r += period
	}
	return r - c.Margin
}

// wrapDelta computes the shortest signed distance from 'from' to 'to'
// in a wrapping space of the given period.
func wrapDelta(to, from, period float64) float64 {
	d := to - from
	if d > period/2 {
		d -= period
	} else if d < -period/2 {
		d += period
	}
	return d
}
