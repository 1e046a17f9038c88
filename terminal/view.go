// Package terminal renders the simulation as text with tcell.
package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/inspector"
	"github.com/pthm-cable/critters/store"
)

const (
	maxSpeed     = 16
	sidebarWidth = 34
)

var (
	styleFood      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleVegan     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCarnivore = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleBorder    = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSelected  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

// View draws a character grid of the world, a status line and an optional
// inspector sidebar.
type View struct {
	screen tcell.Screen
	sim    *game.Simulation

	paused      bool
	speed       int
	inspect     bool
	selected    store.Entity
	hasSelected bool
}

// NewView creates a view over an initialized screen.
func NewView(screen tcell.Screen, sim *game.Simulation) *View {
	return &View{screen: screen, sim: sim, speed: 1}
}

// Paused reports whether stepping is suspended.
func (v *View) Paused() bool { return v.paused }

// Speed returns the number of steps per frame.
func (v *View) Speed() int { return v.speed }

// SetSimulation swaps the simulation being shown and clears the selection.
func (v *View) SetSimulation(sim *game.Simulation) {
	v.sim = sim
	v.hasSelected = false
}

// HandleEvent applies a key or resize event. It returns false when the user
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			v.selectNext()
			return true
		case tcell.KeyRune:
		default:
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.paused = !v.paused
		case '+', '=':
			v.speed = min(v.speed*2, maxSpeed)
		case '-':
			v.speed = max(v.speed/2, 1)
		case 'n':
			v.sim.NextGeneration()
			v.hasSelected = false
		case 'i':
			v.inspect = !v.inspect
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// selectNext moves the selection to the creature after the current one.
func (v *View) selectNext() {
	creatures := v.sim.Creatures()
	if len(creatures) == 0 {
		v.hasSelected = false
		return
	}
	next := 0
	if v.hasSelected {
		for i, e := range creatures {
			if e == v.selected {
				next = (i + 1) % len(creatures)
				break
			}
		}
	}
	v.selected = creatures[next]
	v.hasSelected = true
	v.inspect = true
}

// Cell maps a world position to a grid cell of a cols x rows area.
func Cell(x, y, worldW, worldH float64, cols, rows int) (int, int) {
	cx := int(x / worldW * float64(cols))
	cy := int(y / worldH * float64(rows))
	return min(max(cx, 0), cols-1), min(max(cy, 0), rows-1)
}

// Draw renders the current frame.
func (v *View) Draw() {
	v.screen.Clear()
	width, height := v.screen.Size()

	mapW := width
	if v.inspect {
		mapW = max(width-sidebarWidth, 10)
	}
	mapH := max(height-2, 1)

	cfg := v.sim.Config()
	for _, sp := range v.sim.Sprites() {
		cx, cy := Cell(sp.X, sp.Y, cfg.World.Width, cfg.World.Height, mapW, mapH)
		ch, style := glyph(sp)
		if v.hasSelected && sp.Entity == v.selected {
			style = styleSelected
		}
		v.screen.SetContent(cx, cy, ch, nil, style)
	}

	for x := 0; x < width; x++ {
		v.screen.SetContent(x, mapH, '─', nil, styleBorder)
	}

	status := v.sim.Describe()
	if v.paused {
		status += "  [PAUSED]"
	}
	status += fmt.Sprintf("  %dx", v.speed)
	v.text(0, mapH+1, status, styleStatus)

	if v.inspect {
		v.drawSidebar(mapW, mapH)
	}
	v.screen.Show()
}

func (v *View) drawSidebar(x, rows int) {
	for y := 0; y < rows; y++ {
		v.screen.SetContent(x, y, '│', nil, styleBorder)
	}
	lines := []string{"tab: select  i: hide"}
	if v.hasSelected {
		comps := v.sim.Components(v.selected)
		if comps == nil {
			lines = append(lines, fmt.Sprintf("#%d gone", v.selected))
		} else {
			lines = append(lines, fmt.Sprintf("Entity #%d", v.selected))
			lines = append(lines, inspector.Lines(inspector.BuildAll(comps), 8, 10)...)
		}
	}
	for i, line := range lines {
		if i >= rows {
			break
		}
		v.text(x+2, i, line, tcell.StyleDefault)
	}
}

func (v *View) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func glyph(sp game.Sprite) (rune, tcell.Style) {
	switch sp.Class {
	case game.SpriteVegan:
		return 'o', styleVegan
	case game.SpriteCarnivore:
		return '@', styleCarnivore
	default:
		return '·', styleFood
	}
}

// Run drives the simulation and view at the given frame interval until the
// context is cancelled or the user quits. Each frame advances the simulation
// by speed steps of dt unless paused. onStep, if set, is called after
// every step.
func (v *View) Run(ctx context.Context, frame time.Duration, dt float64, onStep func()) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !v.HandleEvent(ev) {
				return
			}
		case <-ticker.C:
			if !v.paused {
				for i := 0; i < v.speed; i++ {
					v.sim.Step(dt)
					if onStep != nil {
						onStep()
					}
				}
			}
			v.Draw()
		}
	}
}
