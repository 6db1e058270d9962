// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package picker

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/termpass-dev/termpass/lib/opcli"
	"github.com/termpass-dev/termpass/lib/run"
)

// pickFzf pipes one line per item into fzf and maps the selected line
// back to its item. Lines carry a positional index in a hidden first
// column so the mapping survives duplicate titles.
func (p *Picker) pickFzf(ctx context.Context, path string, items []opcli.Item, query string) (opcli.Item, error) {
	var input bytes.Buffer
	for index, item := range items {
		fmt.Fprintf(&input, "%d:%s\n", index, item.DisplayLine())
	}

	args := []string{
		"--delimiter", ":",
		"--with-nth", "2..",
		"--layout=reverse",
	}
	if p.FzfPrompt != "" {
		args = append(args, "--prompt", p.FzfPrompt)
	}
	if p.FzfHeight != "" {
		args = append(args, "--height", p.FzfHeight)
	}
	if query != "" {
		args = append(args, "--query", query)
	}
	args = append(args, p.FzfExtraArgs...)

	stdout, err := p.runner().Filter(ctx, &input, path, args...)
	if err != nil {
		// fzf exits 1 when no line matched and 130 when the user
		// aborted with escape or Ctrl-C. Both mean "nothing chosen".
		switch run.ExitCode(err) {
		case 1, 130:
			return opcli.Item{}, ErrCancelled
		}
		return opcli.Item{}, fmt.Errorf("running fuzzy finder: %w", err)
	}

	selection := strings.TrimRight(string(stdout), "\n")
	if selection == "" {
		return opcli.Item{}, ErrCancelled
	}
	indexText, _, found := strings.Cut(selection, ":")
	if !found {
		return opcli.Item{}, fmt.Errorf("fuzzy finder returned unindexed line %q", selection)
	}
	index, err := strconv.Atoi(indexText)
	if err != nil || index < 0 || index >= len(items) {
		return opcli.Item{}, fmt.Errorf("fuzzy finder returned invalid index %q", indexText)
	}
	return items[index], nil
}
