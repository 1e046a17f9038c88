// Package audio plays the ambient tone loop with beep.
package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/critters/config"
)

// SampleRate is the playback rate of the speaker.
const SampleRate = beep.SampleRate(44100)

// Tune builds an endless streamer that cycles through the configured
// frequencies, each held for NoteSec seconds, scaled by Volume.
func Tune(sr beep.SampleRate, cfg config.AudioConfig) (beep.Streamer, error) {
	if len(cfg.Frequency) == 0 {
		return nil, fmt.Errorf("audio: no frequencies configured")
	}
	if cfg.NoteSec <= 0 {
		return nil, fmt.Errorf("audio: note_sec must be positive, got %g", cfg.NoteSec)
	}

	for _, f := range cfg.Frequency {
		if _, err := generators.SineTone(sr, f); err != nil {
			return nil, fmt.Errorf("audio: tone %g Hz: %w", f, err)
		}
	}

	samples := sr.N(time.Duration(cfg.NoteSec * float64(time.Second)))
	i := 0
	loop := beep.Iterate(func() beep.Streamer {
		tone, _ := generators.SineTone(sr, cfg.Frequency[i%len(cfg.Frequency)])
		i++
		return beep.Take(samples, tone)
	})

	return &effects.Gain{Streamer: loop, Gain: cfg.Volume - 1}, nil
}

// Player owns the speaker while audio is enabled.
type Player struct {
	ctrl *beep.Ctrl
}

// Start initializes the speaker and begins playing the tune. It returns a
// nil player when audio is disabled.
func Start(cfg config.AudioConfig) (*Player, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	tune, err := Tune(SampleRate, cfg)
	if err != nil {
		return nil, err
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("audio: speaker init: %w", err)
	}
	p := &Player{ctrl: &beep.Ctrl{Streamer: tune}}
	speaker.Play(p.ctrl)
	return p, nil
}

// SetPaused pauses or resumes playback.
func (p *Player) SetPaused(paused bool) {
	if p == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	if p == nil {
		return
	}
	speaker.Clear()
	speaker.Close()
}
