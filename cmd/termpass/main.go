// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/termpass-dev/termpass/cmd/termpass/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like doctor) and the
		// cancelled-selection path return an exitError carrying the
		// desired exit code. Don't print a redundant "error:" line for
		// those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
