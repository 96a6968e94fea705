package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/lox/airhockey/internal/game"
)

// Config represents the complete configuration file
type Config struct {
	Court  *CourtConfig  `hcl:"court,block"`
	Paddle *PaddleConfig `hcl:"paddle,block"`
	Puck   *PuckConfig   `hcl:"puck,block"`
	Loop   *LoopConfig   `hcl:"loop,block"`
	Server *ServerConfig `hcl:"server,block"`
}

// CourtConfig sizes the playing surface in court units
type CourtConfig struct {
	Width     float64 `hcl:"width,optional"`
	Height    float64 `hcl:"height,optional"`
	GoalWidth float64 `hcl:"goal_width,optional"`
}

type PaddleConfig struct {
	Radius float64 `hcl:"radius,optional"`
}

type PuckConfig struct {
	Radius      float64 `hcl:"radius,optional"`
	Damping     float64 `hcl:"damping,optional"`
	Restitution float64 `hcl:"restitution,optional"`
}

// LoopConfig controls the frame clock
type LoopConfig struct {
	FPS int `hcl:"fps,optional"`
}

// ServerConfig contains settings for the websocket bridge
type ServerConfig struct {
	Address  string `hcl:"address,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

const (
	DefaultFPS      = 60
	DefaultAddress  = ":8080"
	DefaultLogLevel = "info"
	DefaultLogFile  = "airhockey.log"
)

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads an HCL configuration file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return &cfg, nil
}

// Parse decodes configuration from memory, mainly for tests and embedding
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Court == nil {
		c.Court = &CourtConfig{}
	}
	if c.Paddle == nil {
		c.Paddle = &PaddleConfig{}
	}
	if c.Puck == nil {
		c.Puck = &PuckConfig{}
	}
	if c.Loop == nil {
		c.Loop = &LoopConfig{}
	}
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}

	if c.Court.Width == 0 {
		c.Court.Width = game.DefaultCourtWidth
	}
	if c.Court.Height == 0 {
		c.Court.Height = game.DefaultCourtHeight
	}
	if c.Court.GoalWidth == 0 {
		c.Court.GoalWidth = game.DefaultGoalWidth
	}
	if c.Paddle.Radius == 0 {
		c.Paddle.Radius = game.DefaultPaddleRadius
	}
	if c.Puck.Radius == 0 {
		c.Puck.Radius = game.DefaultPuckRadius
	}
	if c.Puck.Damping == 0 {
		c.Puck.Damping = game.DefaultDamping
	}
	if c.Puck.Restitution == 0 {
		c.Puck.Restitution = game.DefaultRestitution
	}
	if c.Loop.FPS == 0 {
		c.Loop.FPS = DefaultFPS
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.Server.LogFile == "" {
		c.Server.LogFile = DefaultLogFile
	}
}

// Validate checks the values a match and the frame loop depend on
func (c *Config) Validate() error {
	if c.Loop.FPS < 1 || c.Loop.FPS > 1000 {
		return fmt.Errorf("loop fps must be between 1 and 1000, got %d", c.Loop.FPS)
	}
	return c.Game().Validate()
}

// Game converts the file settings to a match configuration
func (c *Config) Game() game.Config {
	return game.Config{
		Width:        c.Court.Width,
		Height:       c.Court.Height,
		PaddleRadius: c.Paddle.Radius,
		PuckRadius:   c.Puck.Radius,
		GoalWidth:    c.Court.GoalWidth,
		Restitution:  c.Puck.Restitution,
		Damping:      c.Puck.Damping,
	}
}

// FrameInterval is the wall clock time between two ticks
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Loop.FPS)
}

// Encode renders the configuration back to HCL with every default filled in
func (c *Config) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	return f.Bytes()
}

// Save writes the encoded configuration to filename. The file is written to a
// temporary sibling and renamed into place.
func (c *Config) Save(filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(c.Encode()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	return os.Rename(tmp.Name(), filename)
}
