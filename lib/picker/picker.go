// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package picker presents a list of credential items and returns the
// one the user chose. The primary path delegates to an external fzf
// binary; when fzf is not installed the package falls back to a
// numbered menu on the terminal. Both paths accept an optional initial
// query and report user abandonment as ErrCancelled.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/termpass-dev/termpass/lib/opcli"
	"github.com/termpass-dev/termpass/lib/run"
)

// ErrCancelled reports that the user left the selector without
// choosing an item: pressing escape or Ctrl-C in fzf, or entering
// nothing (or garbage) at the menu prompt.
var ErrCancelled = errors.New("selection cancelled")

// Picker selects one item from a list. The zero value uses fzf from
// PATH with stock arguments, falling back to a menu on os.Stdin/Stderr.
type Picker struct {
	// FzfBinary is the fuzzy finder executable. Empty means "fzf".
	FzfBinary string

	// FzfPrompt, FzfHeight, and FzfExtraArgs shape the fzf
	// invocation. Empty values are omitted from the argument list.
	FzfPrompt    string
	FzfHeight    string
	FzfExtraArgs []string

	// Input and Output carry the fallback menu dialogue. They default
	// to os.Stdin and os.Stderr; stderr keeps the menu out of shell
	// pipelines the same way fzf keeps its UI off stdout.
	Input  io.Reader
	Output io.Writer

	// Runner executes fzf. Defaults to run.Exec().
	Runner run.Runner

	// LookPath resolves the fzf binary. Defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Pick shows the selector and returns the chosen item. A non-empty
// query pre-populates the fzf prompt, or pre-filters the fallback
// menu. Returns ErrCancelled when the user backs out.
func (p *Picker) Pick(ctx context.Context, items []opcli.Item, query string) (opcli.Item, error) {
	if len(items) == 0 {
		return opcli.Item{}, fmt.Errorf("no items to select from")
	}

	binary := p.FzfBinary
	if binary == "" {
		binary = "fzf"
	}
	path, err := p.lookPath(binary)
	if err != nil {
		return p.pickMenu(items, query)
	}
	return p.pickFzf(ctx, path, items, query)
}

func (p *Picker) lookPath(binary string) (string, error) {
	if p.LookPath != nil {
		return p.LookPath(binary)
	}
	return exec.LookPath(binary)
}

func (p *Picker) runner() run.Runner {
	if p.Runner != nil {
		return p.Runner
	}
	return run.Exec()
}

func (p *Picker) input() io.Reader {
	if p.Input != nil {
		return p.Input
	}
	return os.Stdin
}

func (p *Picker) output() io.Writer {
	if p.Output != nil {
		return p.Output
	}
	return os.Stderr
}
