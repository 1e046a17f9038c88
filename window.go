package main

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/audio"
	"github.com/pthm-cable/critters/camera"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/renderer"
	"github.com/pthm-cable/critters/store"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/ui"
)

const controlsText = "Space: pause | N: next gen | Arrows: pan | Wheel: zoom | R: reset view | Click: select | G V I F O: overlays"

// window holds the raylib front end state.
type window struct {
	sim    *game.Simulation
	cam    *camera.Camera
	player *audio.Player

	background *renderer.BackgroundRenderer
	sprites    *renderer.SpriteRenderer
	hud        *ui.HUD
	perf       *ui.PerfPanel
	inspector  *ui.Inspector
	controls   *ui.ControlsPanel
	overlays   *ui.OverlayRegistry

	paused      bool
	speed       int
	selected    store.Entity
	hasSelected bool
}

func runWindow(ctx context.Context, cfg *config.Config, sim *game.Simulation, dt float64, maxTicks int, afterStep func(), player *audio.Player) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	w := &window{
		sim:        sim,
		player:     player,
		cam:        camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height), cfg.World.Width, cfg.World.Height, cfg.Derived.Margin),
		background: renderer.NewBackgroundRenderer(cfg.World.Width, cfg.World.Height),
		sprites:    renderer.NewSpriteRenderer(cfg.Derived.FOV, cfg.Sensors.RayCount, cfg.Sensors.ViewDistance),
		hud:        ui.NewHUD(),
		perf:       ui.NewPerfPanel(systems.NewSystemRegistry(), 10, 130, 260),
		inspector:  ui.NewInspector(0, 10, 280),
		controls:   ui.NewControlsPanel(0, 0, 220),
		overlays:   ui.NewOverlayRegistry(),
		speed:      1,
	}

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		w.handleInput()

		if !w.paused {
			for i := 0; i < w.speed; i++ {
				sim.Step(dt)
				afterStep()
			}
		}

		w.draw(cfg)

		if maxTicks > 0 && sim.Tick() >= int64(maxTicks) {
			break
		}
	}
}

func (w *window) handleInput() {
	w.cam.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	w.overlays.HandleKeys()

	if rl.IsKeyPressed(rl.KeySpace) {
		w.togglePause()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		w.nextGeneration()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		w.cam.Reset()
	}

	const panSpeed = 8.0
	if rl.IsKeyDown(rl.KeyLeft) {
		w.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		w.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		w.cam.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		w.cam.Pan(0, panSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		w.cam.ZoomBy(1 + 0.1*float64(wheel))
	}

	// Clicks on the HUD strip belong to raygui.
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		mouse := rl.GetMousePosition()
		if mouse.Y > 125 {
			world := w.cam.ScreenToWorld(r2.Vec{X: float64(mouse.X), Y: float64(mouse.Y)})
			w.selected, w.hasSelected = w.sim.CreatureAt(world)
		}
	}
}

func (w *window) togglePause() {
	w.paused = !w.paused
	w.player.SetPaused(w.paused)
}

func (w *window) nextGeneration() {
	w.sim.NextGeneration()
	w.hasSelected = false
}

func (w *window) draw(cfg *config.Config) {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	w.background.Draw(w.cam, w.overlays.IsEnabled(ui.OverlayGrid))
	if w.overlays.IsEnabled(ui.OverlayRays) != w.sprites.RaysShown() {
		w.sprites.ToggleRays()
	}
	w.sprites.Draw(w.cam, w.sim.Sprites(), w.selected, w.hasSelected)

	vegans, carnivores := w.sim.Counts()
	actions := w.hud.Draw(ui.HUDData{
		Title:          cfg.Screen.Title,
		Generation:     w.sim.Generation(),
		GenerationTime: w.sim.GenerationTime(),
		Vegans:         vegans,
		Carnivores:     carnivores,
		Foods:          len(w.sim.Foods()),
		Tick:           w.sim.Tick(),
		Speed:          w.speed,
		FPS:            rl.GetFPS(),
		Paused:         w.paused,
	})
	if actions.TogglePause {
		w.togglePause()
	}
	if actions.NextGen {
		w.nextGeneration()
	}
	w.speed = actions.Speed

	if w.overlays.IsEnabled(ui.OverlayPerf) {
		w.perf.Draw(w.sim.Perf())
	}

	panelY := int32(10)
	if w.overlays.IsEnabled(ui.OverlayInspector) && w.hasSelected {
		if comps := w.sim.Components(w.selected); comps != nil {
			w.inspector.SetPosition(screenW-290, panelY)
			panelY = w.inspector.Draw(w.selected, comps) + 10
		} else {
			w.hasSelected = false
		}
	}
	if w.overlays.IsEnabled(ui.OverlayControls) {
		w.controls.SetPosition(screenW-230, panelY)
		w.controls.Draw(w.overlays)
	}

	w.hud.DrawControls(screenH, controlsText)
}
