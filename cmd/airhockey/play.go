package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/quartz"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/runner"
	"github.com/lox/airhockey/internal/tui"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// PlayCmd runs a match in the terminal with both players on one keyboard
type PlayCmd struct {
	Config  string `short:"c" default:"airhockey.hcl" help:"Path to HCL configuration file"`
	FPS     int    `help:"Frames per second (overrides config)"`
	LogFile string `help:"Debug log file (overrides config)"`
	Debug   bool   `help:"Enable debug logging"`
}

func (c *PlayCmd) Run() error {
	cfg, err := loadConfig(c.Config, c.FPS)
	if err != nil {
		return err
	}
	if c.LogFile != "" {
		cfg.Server.LogFile = c.LogFile
	}

	// The terminal belongs to the court, so logs go to a file
	logFile, err := openLogFile(cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger := newLogger(logFile, cfg.Server.LogLevel, c.Debug)
	logger.Info("Starting local match", "fps", cfg.Loop.FPS, "court", fmt.Sprintf("%gx%g", cfg.Court.Width, cfg.Court.Height))

	match, err := game.NewMatch(cfg.Game(), game.WithLogger(logger))
	if err != nil {
		return err
	}

	clock := quartz.NewReal()
	interval := cfg.FrameInterval()
	r := runner.New(match, clock, interval, logger)
	model := tui.NewModel(r, cfg.Game(), clock, interval, logger)

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := model.Err(); err != nil {
		return err
	}

	snap := model.Snapshot()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Final score  P1 %d : %d P2", snap.Score1, snap.Score2)))
	logger.Info("Match finished", "score1", snap.Score1, "score2", snap.Score2, "frames", snap.Frame)
	return nil
}
