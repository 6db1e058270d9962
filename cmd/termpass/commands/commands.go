// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete termpass CLI command tree. The
// root command doubles as the default action: "termpass [query]" runs
// the full pick-and-inject flow, while subcommands expose the
// individual stages (list, get) and diagnostics (doctor).
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/termpass-dev/termpass/cmd/termpass/cli"
)

// version is stamped at build time via
// -ldflags "-X .../commands.version=v1.2.3".
var version = "dev"

// Root builds and returns the complete termpass CLI command tree.
func Root() *cli.Command {
	var params pickParams

	return &cli.Command{
		Name: "termpass",
		Description: `termpass: pick a credential and type it into your terminal.

Lists your 1Password items, lets you choose one with fzf (or a
numbered menu when fzf is not installed), fetches the secret, and
injects it into the current kitty window or tmux pane as if typed.
The secret never crosses a command line or the clipboard.`,
		Usage: "termpass [query] [flags]",
		Flags: params.flags,
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runPick(ctx, &params, queryFromArgs(args), logger)
		},
		Subcommands: []*cli.Command{
			pickCommand(),
			listCommand(),
			getCommand(),
			doctorCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("termpass %s\n", version)
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Pick an item and type its password into the terminal",
				Command:     "termpass",
			},
			{
				Description: "Pre-filter the picker",
				Command:     "termpass github",
			},
			{
				Description: "Print the secret to stdout instead of injecting",
				Command:     "termpass --print github",
			},
			{
				Description: "Check that op, fzf, and a terminal backend are available",
				Command:     "termpass doctor",
			},
		},
	}
}
