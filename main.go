package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/loop"
	"github.com/pthm-cable/forage/renderer"
	"github.com/pthm-cable/forage/session"
	"github.com/pthm-cable/forage/viewport"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, hall of fame and config snapshot")
	seedFrom := flag.String("seed-from", "", "hall_of_fame.json whose brains seed the first generation")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = unlimited)")
	generationLength := flag.Int("generation-length", 0, "Steps per generation (0 = use config)")
	animals := flag.Int("animals", 0, "Number of animals (0 = use config)")
	foods := flag.Int("foods", 0, "Number of foods (0 = use config)")
	autostart := flag.Bool("autostart", false, "Skip the setup form in graphical mode")
	uncapped := flag.Bool("uncapped", false, "Headless only: step as fast as possible instead of 60 ticks/s")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI values override the config file; missing ones keep its values
	params := cfg.Simulation
	if *generationLength > 0 {
		params.GenerationLength = *generationLength
	}
	if *animals > 0 {
		params.Animals = *animals
	}
	if *foods > 0 {
		params.Foods = *foods
	}
	params = params.Resolve()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := session.Options{
		Seed:           rngSeed,
		OutputDir:      *outputDir,
		SeedFrom:       *seedFrom,
		MaxTicks:       *maxTicks,
		MaxGenerations: *maxGenerations,
	}

	if *headless {
		if err := runHeadless(cfg, params, opts, *uncapped); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runWindow(cfg, params, opts, *autostart); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless drives the loop against a no-op canvas until a limit is hit
// or the process is interrupted.
func runHeadless(cfg *config.Config, params config.SimulationConfig, opts session.Options, uncapped bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vp := viewport.New(cfg.Screen.Width, cfg.Screen.Height, 1)
	vp.ClearMargin = cfg.Derived.ClearMargin

	var loopOpts []loop.Option
	if uncapped {
		loopOpts = append(loopOpts, loop.WithInterval(0))
	}
	sess, err := session.New(cfg, params, vp, opts, loopOpts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", opts.MaxTicks,
		"max_generations", opts.MaxGenerations,
		"uncapped", uncapped,
	)

	err = sess.Loop.Run(ctx, renderer.Nop{})
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "tick", sess.Sim.Tick())
		return nil
	}
	return err
}

// runWindow opens the window and runs one frame per simulation step.
func runWindow(cfg *config.Config, params config.SimulationConfig, opts session.Options, autostart bool) error {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Forage")
	defer rl.CloseWindow()
	// Escape deselects in the inspector; closing is left to the window button.
	rl.SetExitKey(0)

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, params, opts, autostart)
	if err != nil {
		return err
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			return err
		}
		g.Draw()

		if g.Done() {
			break
		}
	}
	return nil
}
