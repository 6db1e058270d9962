// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package inject writes a fetched secret into the active terminal's
// input stream. It selects between the two supported terminal
// backends — kitty remote control and the tmux paste buffer — based
// on the environment the process was started in.
package inject

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/termpass-dev/termpass/lib/kitty"
	"github.com/termpass-dev/termpass/lib/tmux"
)

// ErrNoBackend is returned when neither a kitty nor a tmux session
// surrounds the process. Injection is impossible; the user can still
// run with --print.
var ErrNoBackend = errors.New("no terminal backend detected (not inside kitty or tmux); use --print to write the secret to stdout")

// Injector writes text into the terminal and reads recent screen
// content back for context detection.
type Injector interface {
	// Name identifies the backend ("kitty" or "tmux") for logging.
	Name() string

	// Inject types the secret into the active window or pane. The
	// secret arrives via an io.Reader so it stays off the argument
	// vector of the backend's control binary.
	Inject(ctx context.Context, secret io.Reader) error

	// Capture returns the terminal's recent visible text.
	Capture(ctx context.Context) (string, error)
}

// Detect returns the Injector for the configured backend. backend is
// the terminal.backend config value: "kitty" and "tmux" force a
// backend, "auto" inspects the environment — kitty wins over tmux
// when both are present, since a tmux session inside a kitty window
// still receives kitty's send-text.
func Detect(backend string) (Injector, error) {
	switch backend {
	case "kitty":
		return kittyInjector{window: kitty.Current()}, nil
	case "tmux":
		return tmuxInjector{server: tmux.Current(), pane: os.Getenv("TMUX_PANE")}, nil
	case "", "auto":
		if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("KITTY_LISTEN_ON") != "" {
			return kittyInjector{window: kitty.Current()}, nil
		}
		if os.Getenv("TMUX") != "" {
			return tmuxInjector{server: tmux.Current(), pane: os.Getenv("TMUX_PANE")}, nil
		}
		return nil, ErrNoBackend
	default:
		return nil, fmt.Errorf("unknown terminal backend %q", backend)
	}
}

type kittyInjector struct {
	window *kitty.Window
}

func (k kittyInjector) Name() string { return "kitty" }

func (k kittyInjector) Inject(ctx context.Context, secret io.Reader) error {
	return k.window.SendText(ctx, secret)
}

func (k kittyInjector) Capture(ctx context.Context) (string, error) {
	return k.window.GetText(ctx, "screen")
}

type tmuxInjector struct {
	server *tmux.Server
	pane   string
}

func (t tmuxInjector) Name() string { return "tmux" }

func (t tmuxInjector) Inject(ctx context.Context, secret io.Reader) error {
	return t.server.PasteText(ctx, t.pane, secret)
}

func (t tmuxInjector) Capture(ctx context.Context) (string, error) {
	return t.server.CapturePane(ctx, t.pane, 0)
}
