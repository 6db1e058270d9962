// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/termpass-dev/termpass/cmd/termpass/cli"
)

// PrintChecklist prints check results as a human-readable checklist.
// Returns an ExitError with code 1 when any check failed, so the
// command exits non-zero without printing a redundant error line.
func PrintChecklist(w io.Writer, results []Result) error {
	// termenv degrades to plain text when w is not a terminal.
	output := termenv.NewOutput(w)
	anyFailed := false

	for _, result := range results {
		prefix := fmt.Sprintf("%-4s", strings.ToUpper(string(result.Status)))
		fmt.Fprintf(w, "[%s]  %-20s  %s\n", statusStyle(output, result.Status, prefix), result.Name, result.Message)
		if result.Status == StatusFail {
			anyFailed = true
		}
	}

	fmt.Fprintln(w)

	if anyFailed {
		fmt.Fprintln(w, "Some checks failed.")
		return &cli.ExitError{Code: 1}
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}

func statusStyle(output *termenv.Output, status Status, text string) termenv.Style {
	styled := output.String(text)
	switch status {
	case StatusPass:
		return styled.Foreground(output.Color("2"))
	case StatusFail:
		return styled.Foreground(output.Color("1"))
	case StatusWarn:
		return styled.Foreground(output.Color("3"))
	default:
		return styled.Faint()
	}
}
