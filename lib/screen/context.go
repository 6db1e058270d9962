// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package screen analyzes recent terminal content to guess what the
// user is about to authenticate against. When termpass is invoked
// without a search term, the guess becomes the picker's initial
// query: running it at an "ssh db01" password prompt pre-filters the
// item list to "db01".
//
// Detection is plain pattern matching over the last few visible
// lines. A wrong guess costs nothing — the query only pre-fills the
// fuzzy finder, and the user types over it.
package screen

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// recentLines is how many trailing lines of the capture are examined.
// Prompts relevant to the current command are at the bottom of the
// screen; older content is as likely to mislead as to help.
const recentLines = 10

var (
	sshCommandPattern  = regexp.MustCompile(`(?:^|[;&|]\s*|\$\s+)ssh\s+(?:-\S+\s+)*(?:([^@\s]+)@)?([a-z0-9][a-z0-9._-]+)`)
	passwordForPattern = regexp.MustCompile(`password for (?:[^@\s]+@)?([a-z0-9][a-z0-9._-]+):?\s*$`)
	databasePattern    = regexp.MustCompile(`(?:mysql|psql)\b.*\s-h\s*([a-z0-9][a-z0-9._-]+)`)
	gitPattern         = regexp.MustCompile(`\bgit\s+(push|pull|clone|fetch)\b`)
)

// DetectQuery examines captured terminal text and returns a suggested
// picker query, or "" when nothing recognizable is on screen. Escape
// sequences are stripped first; matching is case-insensitive.
func DetectQuery(captured string) string {
	text := strings.ToLower(ansi.Strip(captured))

	lines := strings.Split(text, "\n")
	if len(lines) > recentLines {
		lines = lines[len(lines)-recentLines:]
	}

	// Scan bottom-up: the line closest to the cursor describes what
	// the user is doing right now.
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		// "[sudo] password for <user>:" names the local user, not a
		// host; the weak sudo signal below handles it.
		if match := passwordForPattern.FindStringSubmatch(line); match != nil && !strings.Contains(line, "sudo") {
			if host := match[1]; plausibleHost(host) {
				return host
			}
		}
		if match := sshCommandPattern.FindStringSubmatch(line); match != nil {
			if host := match[2]; plausibleHost(host) {
				return host
			}
		}
		if match := databasePattern.FindStringSubmatch(line); match != nil {
			if host := match[1]; plausibleHost(host) {
				return host
			}
		}
	}

	// Weaker signals: no host to extract, but the activity names a
	// credential family.
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if strings.Contains(line, "sudo") {
			return "sudo"
		}
		if gitPattern.MatchString(line) {
			return "git"
		}
	}

	return ""
}

// plausibleHost filters out matches too short to be a useful query
// ("ssh -v" style residue, single-letter aliases).
func plausibleHost(host string) bool {
	return len(host) > 2
}
