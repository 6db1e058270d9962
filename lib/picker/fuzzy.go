// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package picker

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

func init() {
	// Configure the scoring bonuses fzf itself uses by default.
	algo.Init("default")
}

// fuzzyResult holds the outcome of matching a pattern against a line.
// Score is zero when the pattern did not match; Positions are rune
// indices of the matched characters.
type fuzzyResult struct {
	Score     int
	Positions []int
}

// fuzzyMatch runs fzf's V2 matching algorithm over a single line.
// Matching is case-insensitive: both sides are lowercased before
// scoring, mirroring fzf's smart-case behavior for lowercase queries.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) fuzzyResult {
	if len(pattern) == 0 {
		return fuzzyResult{}
	}
	chars := util.ToChars([]byte(strings.ToLower(text)))
	lowered := []rune(strings.ToLower(string(pattern)))

	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return fuzzyResult{}
	}
	match := fuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = *positions
	}
	return match
}

// newSlab allocates the scratch memory FuzzyMatchV2 reuses across
// calls. Sized the way fzf sizes its per-worker slabs.
func newSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}
