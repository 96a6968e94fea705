package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/simulator"
	"github.com/lox/airhockey/internal/statistics"
)

// SimulateCmd plays headless matches and reports the tallies
type SimulateCmd struct {
	Config  string `short:"c" default:"airhockey.hcl" help:"Path to HCL configuration file"`
	Matches int    `short:"n" default:"100" help:"Number of matches to simulate"`
	Frames  int    `default:"3600" help:"Frames per match"`
	Seed    *int64 `help:"Deterministic RNG seed (optional)"`
	Workers int    `short:"j" help:"Parallel matches (defaults to GOMAXPROCS)"`
	Debug   bool   `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := loadConfig(c.Config, 0)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Server.LogLevel, c.Debug)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	sim := simulator.New(simulator.Config{
		Matches:  c.Matches,
		Frames:   c.Frames,
		Seed:     seed,
		Game:     cfg.Game(),
		Interval: cfg.FrameInterval(),
		Workers:  c.Workers,
		Logger:   logger,
	})

	start := time.Now()
	stats, err := sim.Run(ctx)
	if stats != nil {
		printSummary(stats, cfg.FrameInterval(), time.Since(start))
	}
	return err
}

// printSummary prints the merged results of a simulation run
func printSummary(stats *statistics.Statistics, interval time.Duration, took time.Duration) {
	p1 := stats.Players[game.Player1]
	p2 := stats.Players[game.Player2]
	low, high := stats.ConfidenceInterval95()

	fmt.Println()
	fmt.Println(titleStyle.Render("Simulation results"))
	fmt.Printf("Matches played: %d (%d frames, %.1fs simulated in %s)\n",
		stats.Matches, stats.Frames, (time.Duration(stats.Frames) * interval).Seconds(), took.Round(time.Millisecond))

	fmt.Printf("\n=== SCORING ===\n")
	fmt.Printf("Player1: %d goals, %d wins (%d shutouts)\n", p1.Goals, p1.MatchesWon, p1.ShutoutWins)
	fmt.Printf("Player2: %d goals, %d wins (%d shutouts)\n", p2.Goals, p2.MatchesWon, p2.ShutoutWins)
	fmt.Printf("Draws: %d\n", stats.Draws)
	fmt.Printf("Goals per minute: %.2f\n", stats.GoalsPerMinute(interval))
	fmt.Printf("Goal differential: mean %.3f, median %.1f, 95%% CI [%.3f, %.3f]\n",
		stats.Mean(), stats.Median(), low, high)
	fmt.Printf("Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Printf("\n=== PHYSICS ===\n")
	fmt.Printf("Paddle hits: %d\n", stats.PaddleHits)
	fmt.Printf("Wall bounces: %d\n", stats.WallBounces)
	fmt.Printf("Round resets: %d\n", stats.Resets)
	fmt.Printf("Fastest puck: %.1f units/frame\n", stats.MaxPuckSpeed)

	fmt.Printf("\n=== COURT RULES ===\n")
	fmt.Printf("Paddle confinement violations: %d\n", stats.PaddleViolations)
	fmt.Printf("Frames with puck outside the court: %d\n", stats.PuckEscapes)
}
