package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/critters/audio"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/observe"
	"github.com/pthm-cable/critters/persist"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/terminal"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	loadPath    string
	saveDir     string
	seed        int64
	headless    bool
	tui         bool
	maxTicks    int
	observeAddr string
	outputDir   string
	logStats    bool
	mute        bool
}

func main() {
	// CLI flags
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.StringVar(&opts.loadPath, "load", "", "Survivor file to seed the first generation from")
	flag.StringVar(&opts.saveDir, "save-dir", "", "Directory for the top creatures on shutdown (empty = don't save)")
	flag.Int64Var(&opts.seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.BoolVar(&opts.headless, "headless", false, "Run without graphics")
	flag.BoolVar(&opts.tui, "tui", false, "Run in the terminal")
	flag.IntVar(&opts.maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.StringVar(&opts.observeAddr, "observe", "", "Serve a websocket spectator stream on this address (overrides config)")
	flag.StringVar(&opts.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.BoolVar(&opts.logStats, "log-stats", false, "Output stats via slog")
	flag.BoolVar(&opts.mute, "mute", false, "Disable audio")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging). The terminal view
	// owns stdout, so logs go to stderr there.
	logOut := os.Stdout
	if opts.tui {
		logOut = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := run(opts); err != nil {
		slog.Error("critters failed", "error", err)
		os.Exit(1)
	}
}

// run executes one session. Deferred cleanup always runs, including on errors.
func run(opts options) error {
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()
	if opts.observeAddr != "" {
		cfg.Observer.Addr = opts.observeAddr
	}
	if opts.mute || opts.headless || opts.tui {
		cfg.Audio.Enabled = false
	}

	rngSeed := opts.seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	var survivors []game.Survivor
	if opts.loadPath != "" {
		var err error
		survivors, err = persist.LoadFile(opts.loadPath)
		if err != nil {
			return fmt.Errorf("loading survivors: %w", err)
		}
		slog.Info("loaded survivors", "path", opts.loadPath, "count", len(survivors))
	}

	sim, err := game.New(cfg, rand.New(rand.NewSource(rngSeed)), survivors)
	if err != nil {
		return fmt.Errorf("creating simulation: %w", err)
	}
	sim.SetLogStats(opts.logStats)

	om, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if om != nil {
		defer func() {
			if err := om.Close(); err != nil {
				slog.Error("failed to close output", "error", err)
			}
		}()
		if err := om.WriteConfig(cfg); err != nil {
			return fmt.Errorf("writing config snapshot: %w", err)
		}
		sim.SetOutput(om)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	afterStep := func() {}
	if cfg.Observer.Addr != "" {
		hub := observe.NewHub()
		defer hub.Close()
		pub := observe.NewPublisher(hub, cfg.Observer.Interval)
		afterStep = func() { pub.After(sim) }
		go func() {
			if err := observe.Serve(ctx, cfg.Observer.Addr, hub); err != nil {
				slog.Error("observer stopped", "error", err)
			}
		}()
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"headless", opts.headless,
		"tui", opts.tui,
		"max_ticks", opts.maxTicks,
		"creatures", len(sim.Creatures()),
		"foods", len(sim.Foods()),
	)

	dt := 1.0 / float64(cfg.Screen.TargetFPS)
	switch {
	case opts.headless:
		runHeadless(ctx, sim, dt, opts.maxTicks, afterStep)
	case opts.tui:
		if err := runTerminal(ctx, sim, dt, afterStep); err != nil {
			return fmt.Errorf("running terminal: %w", err)
		}
	default:
		player, err := audio.Start(cfg.Audio)
		if err != nil {
			slog.Warn("audio disabled", "error", err)
		}
		defer player.Close()
		runWindow(ctx, cfg, sim, dt, opts.maxTicks, afterStep, player)
	}

	if opts.saveDir != "" {
		if err := saveTop(sim, opts.saveDir); err != nil {
			return fmt.Errorf("saving survivors: %w", err)
		}
	}
	return nil
}

func runHeadless(ctx context.Context, sim *game.Simulation, dt float64, maxTicks int, afterStep func()) {
	for ctx.Err() == nil {
		sim.Step(dt)
		afterStep()
		if maxTicks > 0 && sim.Tick() >= int64(maxTicks) {
			slog.Info("max ticks reached", "tick", sim.Tick())
			return
		}
	}
}

func runTerminal(ctx context.Context, sim *game.Simulation, dt float64, afterStep func()) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	terminal.NewView(screen, sim).Run(ctx, 50*time.Millisecond, dt, afterStep)
	return nil
}

// saveTop writes the longest-lived creatures to gen<N>.bin in dir.
func saveTop(sim *game.Simulation, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}
	top := sim.TopByLife(sim.Config().Population.TopCount)
	path := filepath.Join(dir, fmt.Sprintf("gen%d.bin", sim.Generation()))
	if err := persist.SaveFile(path, top); err != nil {
		return err
	}
	slog.Info("saved survivors", "path", path, "count", len(top))
	return nil
}
