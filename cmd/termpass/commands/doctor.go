// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/termpass-dev/termpass/cmd/termpass/cli"
	"github.com/termpass-dev/termpass/cmd/termpass/cli/doctor"
	"github.com/termpass-dev/termpass/lib/config"
	"github.com/termpass-dev/termpass/lib/inject"
	"github.com/termpass-dev/termpass/lib/run"
)

type doctorParams struct {
	configPath string
	outputJSON bool
}

func doctorCommand() *cli.Command {
	var params doctorParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check that op, fzf, and a terminal backend are available",
		Description: `Check everything termpass needs: the config file parses, the
1Password CLI is installed and signed in, the fuzzy finder is
available, and a terminal backend (kitty or tmux) surrounds this
process. For each failure, prints what to do about it.`,
		Usage: "termpass doctor [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file path")
			flagSet.BoolVar(&params.outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Check the environment",
				Command:     "termpass doctor",
			},
			{
				Description: "Machine-readable output",
				Command:     "termpass doctor --json",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			return runDoctor(ctx, &params, logger)
		},
	}
}

func runDoctor(ctx context.Context, params *doctorParams, logger *slog.Logger) error {
	var results []doctor.Result

	cfg, configResult := checkConfig(params.configPath)
	results = append(results, configResult)

	results = append(results, checkOpBinary(ctx, cfg)...)
	results = append(results, checkFzfBinary(cfg))
	results = append(results, checkTerminalBackend(cfg))

	if params.outputJSON {
		if err := cli.WriteJSON(doctor.BuildJSON(results)); err != nil {
			return err
		}
		for _, result := range results {
			if result.Status == doctor.StatusFail {
				return &cli.ExitError{Code: 1}
			}
		}
		return nil
	}

	return doctor.PrintChecklist(os.Stdout, results)
}

// checkConfig loads the config and always returns a usable config:
// defaults when loading failed, so later checks can still run.
func checkConfig(flagPath string) (*config.Config, doctor.Result) {
	cfg, err := config.Load(flagPath)
	if err != nil {
		return config.Default(), doctor.Fail("config", err.Error())
	}
	source := "defaults"
	switch {
	case os.Getenv("TERMPASS_CONFIG") != "":
		source = os.Getenv("TERMPASS_CONFIG")
	case flagPath != "":
		source = flagPath
	default:
		if path := config.DefaultPath(); path != "" {
			if _, statErr := os.Stat(path); statErr == nil {
				source = path
			}
		}
	}
	return cfg, doctor.Pass("config", source)
}

func checkOpBinary(ctx context.Context, cfg *config.Config) []doctor.Result {
	path, err := exec.LookPath(cfg.Op.Binary)
	if err != nil {
		return []doctor.Result{
			doctor.Fail("op binary",
				fmt.Sprintf("%q not found in PATH — install the 1Password CLI", cfg.Op.Binary)),
			doctor.Skip("op signin", "skipped: op binary missing"),
		}
	}

	results := []doctor.Result{doctor.Pass("op binary", path)}

	// whoami succeeds only with a live signin (or app integration).
	output, err := run.Exec().Output(ctx, cfg.Op.Binary, "whoami")
	if err != nil {
		results = append(results, doctor.Fail("op signin",
			fmt.Sprintf("not signed in — run %q", cfg.Op.Binary+" signin")))
		return results
	}
	account := firstLine(string(output))
	if account == "" {
		account = "signed in"
	}
	results = append(results, doctor.Pass("op signin", account))
	return results
}

func checkFzfBinary(cfg *config.Config) doctor.Result {
	path, err := exec.LookPath(cfg.Fzf.Binary)
	if err != nil {
		return doctor.Warn("fzf binary",
			fmt.Sprintf("%q not found in PATH — the numbered menu will be used instead", cfg.Fzf.Binary))
	}
	return doctor.Pass("fzf binary", path)
}

func checkTerminalBackend(cfg *config.Config) doctor.Result {
	injector, err := inject.Detect(cfg.Terminal.Backend)
	if err != nil {
		return doctor.Warn("terminal backend",
			"no kitty or tmux session detected — only --print output will work")
	}
	return doctor.Pass("terminal backend", injector.Name())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
