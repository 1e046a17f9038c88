package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// newTestCamera wraps a 580x330 world with margin 10, a 600x350 period,
// shown on a 1200x700 screen. The fit zoom is exactly 2.
func newTestCamera() *Camera {
	return New(1200, 700, 580, 330, 10)
}

func near(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestNew(t *testing.T) {
	cam := newTestCamera()

	if !near(cam.Center, r2.Vec{X: 290, Y: 165}) {
		t.Errorf("expected camera at (290, 165), got %v", cam.Center)
	}
	if cam.Zoom != 2 || cam.MinZoom != 2 {
		t.Errorf("expected zoom and min zoom 2, got %f and %f", cam.Zoom, cam.MinZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := newTestCamera()
	if s := cam.WorldToScreen(cam.Center); !near(s, r2.Vec{X: 600, Y: 350}) {
		t.Errorf("expected screen center (600, 350), got %v", s)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := newTestCamera()
	cam.SetZoom(3)

	for _, s := range []r2.Vec{{X: 600, Y: 350}, {X: 100, Y: 100}, {X: 1100, Y: 650}} {
		w := cam.ScreenToWorld(s)
		if w.X < -cam.Margin || w.X >= cam.PeriodW-cam.Margin {
			t.Errorf("world x %f outside wrapped region", w.X)
		}
		if back := cam.WorldToScreen(w); !near(back, s) {
			t.Errorf("roundtrip failed: %v -> %v -> %v", s, w, back)
		}
	}
}

func TestWrapTakesShortestWay(t *testing.T) {
	cam := newTestCamera()
	cam.Center.X = -5

	// A point at the far right of the period is just left of the center.
	s := cam.WorldToScreen(r2.Vec{X: 585, Y: cam.Center.Y})
	if math.Abs(s.X-580) > 1e-9 {
		t.Errorf("expected x=580, got %f", s.X)
	}
}

func TestPanWraps(t *testing.T) {
	cam := newTestCamera()
	cam.Center.X = 0

	cam.Pan(-40, 0)
	if math.Abs(cam.Center.X-580) > 1e-9 {
		t.Errorf("expected X to wrap to 580, got %f", cam.Center.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := newTestCamera()

	cam.SetZoom(0.1)
	if cam.Zoom != 2 {
		t.Errorf("expected zoom clamped to 2, got %f", cam.Zoom)
	}
	cam.SetZoom(100)
	if cam.Zoom != 16 {
		t.Errorf("expected zoom clamped to 16, got %f", cam.Zoom)
	}
	cam.ZoomBy(0.5)
	if cam.Zoom != 8 {
		t.Errorf("expected zoom 8 after halving, got %f", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := newTestCamera()
	cam.SetZoom(4) // half-width of 150 world units

	tests := []struct {
		name   string
		dx     float64
		radius float64
		want   bool
	}{
		{"center", 0, 1, true},
		{"inside edge", 145, 1, true},
		{"outside", 200, 10, false},
		{"outside but large", 200, 60, true},
	}
	for _, tt := range tests {
		p := r2.Vec{X: cam.Center.X + tt.dx, Y: cam.Center.Y}
		if got := cam.IsVisible(p, tt.radius); got != tt.want {
			t.Errorf("%s: IsVisible = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGhosts(t *testing.T) {
	cam := newTestCamera()

	if g := cam.Ghosts(cam.Center, 5); len(g) != 0 {
		t.Errorf("centered circle has %d ghosts", len(g))
	}

	// Straddles the left edge of the wrapped region.
	g := cam.Ghosts(r2.Vec{X: -8, Y: cam.Center.Y}, 5)
	if len(g) != 1 {
		t.Fatalf("expected 1 ghost, got %d", len(g))
	}
	if !near(g[0], r2.Vec{X: 1204, Y: 350}) {
		t.Errorf("ghost at %v, want (1204, 350)", g[0])
	}

	// Corner produces three.
	if g := cam.Ghosts(r2.Vec{X: -8, Y: -8}, 5); len(g) != 3 {
		t.Errorf("corner circle has %d ghosts, want 3", len(g))
	}
}

func TestResizeKeepsRelativeZoom(t *testing.T) {
	cam := newTestCamera()
	cam.SetZoom(4)
	cam.Resize(600, 350)
	if cam.MinZoom != 1 || cam.Zoom != 2 {
		t.Errorf("after resize min zoom %f zoom %f, want 1 and 2", cam.MinZoom, cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := newTestCamera()
	cam.Center = r2.Vec{X: 50, Y: 50}
	cam.Zoom = 5

	cam.Reset()
	if !near(cam.Center, r2.Vec{X: 290, Y: 165}) || cam.Zoom != 2 {
		t.Errorf("after reset center %v zoom %f", cam.Center, cam.Zoom)
	}
}
