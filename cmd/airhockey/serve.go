package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/runner"
	"github.com/lox/airhockey/internal/server"
)

// ServeCmd runs the frame loop and bridges it to a remote host
type ServeCmd struct {
	Config   string `short:"c" default:"airhockey.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	FPS      int    `help:"Frames per second (overrides config)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *ServeCmd) Run() error {
	cfg, err := loadConfig(c.Config, c.FPS)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	logger := newLogger(os.Stderr, cfg.Server.LogLevel, c.Debug)

	match, err := game.NewMatch(cfg.Game(), game.WithLogger(logger))
	if err != nil {
		return err
	}
	r := runner.New(match, quartz.NewReal(), cfg.FrameInterval(), logger)
	s := server.NewServer(r, logger)

	l, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Address, err)
	}

	logger.Info("Starting air hockey server",
		"addr", l.Addr().String(),
		"fps", cfg.Loop.FPS,
		"court", fmt.Sprintf("%gx%g", cfg.Court.Width, cfg.Court.Height))

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	if err := r.Start(ctx); err != nil {
		return err
	}
	defer r.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Serve(gctx, l)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
