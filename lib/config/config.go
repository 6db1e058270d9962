// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for termpass.
//
// Configuration is loaded from a single file, located by (in order):
// the TERMPASS_CONFIG environment variable, the --config flag, or
// ${XDG_CONFIG_HOME:-~/.config}/termpass/config.yaml. A missing file
// at the default location is not an error — every field has a working
// default, and most installations never write a config file at all.
// An explicitly named file that does not exist is an error.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No environment
// variable overrides any other config value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds all termpass settings.
type Config struct {
	// Op configures the 1Password CLI invocation.
	Op OpConfig `yaml:"op"`

	// Fzf configures the external fuzzy finder.
	Fzf FzfConfig `yaml:"fzf"`

	// Terminal configures how the secret reaches the terminal.
	Terminal TerminalConfig `yaml:"terminal"`
}

// OpConfig configures the 1Password CLI invocation.
type OpConfig struct {
	// Binary is the op executable. Default: "op" (found in PATH).
	Binary string `yaml:"binary"`

	// Field is the item field fetched and injected.
	// Default: "password".
	Field string `yaml:"field"`
}

// FzfConfig configures the external fuzzy finder.
type FzfConfig struct {
	// Binary is the fuzzy finder executable. Default: "fzf". When the
	// binary is not installed, termpass falls back to a numbered menu.
	Binary string `yaml:"binary"`

	// Prompt is the fzf prompt string. Default: "item> ".
	Prompt string `yaml:"prompt"`

	// Height is passed as fzf --height. Default: "40%".
	Height string `yaml:"height"`

	// ExtraArgs are appended to the fzf command line after the
	// arguments termpass sets itself (prompt, height, layout, query).
	ExtraArgs []string `yaml:"extra_args"`
}

// TerminalConfig configures how the secret reaches the terminal.
type TerminalConfig struct {
	// Backend selects the injection mechanism: "auto" (detect from
	// KITTY_LISTEN_ON / TMUX), "kitty", or "tmux". Default: "auto".
	Backend string `yaml:"backend"`

	// DisableContext turns off screen-context detection (reading
	// recent terminal text to suggest an initial query).
	DisableContext bool `yaml:"disable_context"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Op: OpConfig{
			Binary: "op",
			Field:  "password",
		},
		Fzf: FzfConfig{
			Binary: "fzf",
			Prompt: "item> ",
			Height: "40%",
		},
		Terminal: TerminalConfig{
			Backend: "auto",
		},
	}
}

// DefaultPath returns the default config file location:
// ${XDG_CONFIG_HOME:-~/.config}/termpass/config.yaml.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "termpass", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "termpass", "config.yaml")
}

// Load resolves the config location and loads it. flagPath is the
// value of the --config flag ("" when unset). TERMPASS_CONFIG wins
// over the flag; the default path is used last and is allowed to be
// absent.
func Load(flagPath string) (*Config, error) {
	if envPath := os.Getenv("TERMPASS_CONFIG"); envPath != "" {
		return LoadFile(envPath)
	}
	if flagPath != "" {
		return LoadFile(flagPath)
	}

	defaultPath := DefaultPath()
	if defaultPath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(defaultPath); err != nil {
		// No config file is the normal case.
		return Default(), nil
	}
	return LoadFile(defaultPath)
}

// LoadFile loads configuration from a specific file path. The file is
// the single source of truth; the only expansion performed is ${HOME}
// and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// fields that hold paths.
func (c *Config) expandVariables() {
	c.Op.Binary = expandVars(c.Op.Binary)
	c.Fzf.Binary = expandVars(c.Fzf.Binary)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Op.Binary == "" {
		return fmt.Errorf("op.binary must not be empty")
	}
	if c.Op.Field == "" {
		return fmt.Errorf("op.field must not be empty")
	}
	switch c.Terminal.Backend {
	case "auto", "kitty", "tmux":
	default:
		return fmt.Errorf("terminal.backend must be one of: auto, kitty, tmux (got %q)", c.Terminal.Backend)
	}
	return nil
}
