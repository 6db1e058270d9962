// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package kitty drives the kitty terminal's remote-control protocol
// ("kitty @"), termpass's preferred terminal backend. Two operations
// are used: send-text writes the fetched secret into the active
// window's input, and get-text reads recent screen content for
// context detection.
//
// Remote control must be enabled in the user's kitty configuration
// (allow_remote_control yes). When kitty exports a control socket via
// KITTY_LISTEN_ON, commands are sent there with --to; otherwise kitty
// falls back to the tty handshake, which works from inside any kitty
// window.
package kitty

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/termpass-dev/termpass/lib/run"
)

// Window sends remote-control commands to the kitty instance hosting
// the current process.
type Window struct {
	listenSocket string
	runner       run.Runner
}

// Current returns a Window wired to the surrounding kitty instance,
// using KITTY_LISTEN_ON when exported.
func Current() *Window {
	return NewWindow(os.Getenv("KITTY_LISTEN_ON"))
}

// NewWindow returns a Window that sends commands to the given control
// socket ("unix:/path"). An empty socket uses the tty handshake.
func NewWindow(listenSocket string) *Window {
	return &Window{listenSocket: listenSocket, runner: run.Exec()}
}

// args builds a "kitty @" argument vector, inserting --to when a
// control socket is configured.
func (w *Window) args(rest ...string) []string {
	cmdArgs := []string{"@"}
	if w.listenSocket != "" {
		cmdArgs = append(cmdArgs, "--to", w.listenSocket)
	}
	return append(cmdArgs, rest...)
}

// SendText writes text into the active window's input buffer as if
// typed. The text travels via stdin (send-text --stdin) so the secret
// never appears on the argument vector.
func (w *Window) SendText(ctx context.Context, text io.Reader) error {
	if err := w.runner.Input(ctx, text, "kitty", w.args("send-text", "--stdin")...); err != nil {
		return fmt.Errorf("kitty send-text: %w", err)
	}
	return nil
}

// GetText returns the active window's screen content. extent follows
// kitty's get-text values ("screen", "selection", "all"); termpass
// uses "screen" for context detection.
func (w *Window) GetText(ctx context.Context, extent string) (string, error) {
	output, err := w.runner.Output(ctx, "kitty", w.args("get-text", "--extent="+extent)...)
	if err != nil {
		return "", fmt.Errorf("kitty get-text: %w", err)
	}
	return string(output), nil
}
