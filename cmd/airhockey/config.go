package main

import (
	"fmt"
	"os"

	"github.com/lox/airhockey/internal/config"
)

// ConfigCmd prints the configuration a match would run with
type ConfigCmd struct {
	Path  string `arg:"" optional:"" default:"airhockey.hcl" help:"Path to HCL configuration file"`
	Check bool   `help:"Only validate the file"`
	Write bool   `help:"Write the effective configuration back to the file with defaults filled in"`
}

func (c *ConfigCmd) Run() error {
	cfg, err := config.Load(c.Path)
	if err != nil {
		return err
	}
	switch {
	case c.Check:
		fmt.Printf("%s is valid\n", c.Path)
		return nil
	case c.Write:
		if err := cfg.Save(c.Path); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.Path, err)
		}
		fmt.Printf("wrote %s\n", c.Path)
		return nil
	}
	_, err = os.Stdout.Write(cfg.Encode())
	return err
}
