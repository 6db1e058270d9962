// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package picker

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/termpass-dev/termpass/lib/opcli"
)

// pickMenu prints a numbered list and reads a selection from Input.
// A non-empty query pre-filters the list with the same fuzzy matching
// fzf would apply; when nothing matches, the full list is shown so the
// user is never left staring at an empty menu.
func (p *Picker) pickMenu(items []opcli.Item, query string) (opcli.Item, error) {
	visible := items
	if query != "" {
		if ranked := rankItems(items, query); len(ranked) > 0 {
			visible = ranked
		}
	}

	out := p.output()

	// lipgloss detects the color capability of the writer; styles
	// degrade to plain text when Output is not a terminal.
	renderer := lipgloss.NewRenderer(out)
	headerStyle := renderer.NewStyle().Bold(true)
	numberStyle := renderer.NewStyle().Faint(true)

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Select an item (1-%d, empty cancels):", len(visible))))
	for index, item := range visible {
		fmt.Fprintf(out, "%s %s\n", numberStyle.Render(fmt.Sprintf("%3d.", index+1)), item.DisplayLine())
	}
	fmt.Fprint(out, "> ")

	// A partial line at EOF still counts as input; only an empty
	// answer (bare newline, Ctrl-D) cancels.
	line, _ := bufio.NewReader(p.input()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return opcli.Item{}, ErrCancelled
	}

	choice, err := strconv.Atoi(line)
	if err != nil || choice < 1 || choice > len(visible) {
		return opcli.Item{}, ErrCancelled
	}
	return visible[choice-1], nil
}

// rankItems scores every item's display line against the query and
// returns the matches ordered best-first. The sort is stable so items
// with equal scores keep their listing order.
func rankItems(items []opcli.Item, query string) []opcli.Item {
	pattern := []rune(query)
	slab := newSlab()

	type scored struct {
		item  opcli.Item
		score int
	}
	var matches []scored
	for _, item := range items {
		result := fuzzyMatch(item.DisplayLine(), pattern, slab)
		if result.Score > 0 {
			matches = append(matches, scored{item: item, score: result.Score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	ranked := make([]opcli.Item, len(matches))
	for index, match := range matches {
		ranked[index] = match.item
	}
	return ranked
}
