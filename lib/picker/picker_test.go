// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package picker_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/termpass-dev/termpass/lib/opcli"
	"github.com/termpass-dev/termpass/lib/picker"
	"github.com/termpass-dev/termpass/lib/run"
)

func testItems() []opcli.Item {
	return []opcli.Item{
		{ID: "aaa1", Title: "GitHub", Category: "Login"},
		{ID: "bbb2", Title: "Postgres Production", Category: "Database"},
		{ID: "ccc3", Title: "AWS Root", Category: "Login"},
	}
}

// fzfRunner fakes the fzf process: it records the input lines and
// argument list and returns a canned selection or error.
type fzfRunner struct {
	args   []string
	input  string
	stdout []byte
	err    error
}

func (f *fzfRunner) Output(context.Context, string, ...string) ([]byte, error) {
	return nil, errors.New("unexpected Output call")
}

func (f *fzfRunner) InteractiveOutput(context.Context, string, ...string) ([]byte, error) {
	return nil, errors.New("unexpected InteractiveOutput call")
}

func (f *fzfRunner) Input(context.Context, io.Reader, string, ...string) error {
	return errors.New("unexpected Input call")
}

func (f *fzfRunner) Filter(_ context.Context, stdin io.Reader, _ string, args ...string) ([]byte, error) {
	f.args = args
	data, _ := io.ReadAll(stdin)
	f.input = string(data)
	return f.stdout, f.err
}

var _ run.Runner = (*fzfRunner)(nil)

func fzfFound(string) (string, error) { return "/usr/bin/fzf", nil }

func fzfMissing(string) (string, error) { return "", exec.ErrNotFound }

// exitWith produces a genuine non-zero exit error so run.ExitCode can
// decode it the way it would for a real fzf process.
func exitWith(t *testing.T, code int) error {
	t.Helper()
	_, err := run.Exec().Output(context.Background(), "sh", "-c", fmt.Sprintf("exit %d", code))
	if err == nil {
		t.Fatalf("expected exit %d to fail", code)
	}
	if got := run.ExitCode(err); got != code {
		t.Fatalf("expected exit code %d, got %d", code, got)
	}
	return err
}

func TestPickFzfSelection(t *testing.T) {
	runner := &fzfRunner{stdout: []byte("1:Postgres Production (Database)\n")}
	p := &picker.Picker{
		FzfPrompt: "item> ",
		FzfHeight: "40%",
		Runner:    runner,
		LookPath:  fzfFound,
	}

	item, err := p.Pick(context.Background(), testItems(), "")
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if item.ID != "bbb2" {
		t.Errorf("expected bbb2, got %s", item.ID)
	}

	// Every item goes to fzf, one per line, index-prefixed.
	lines := strings.Split(strings.TrimRight(runner.input, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 input lines, got %d: %q", len(lines), runner.input)
	}
	if lines[0] != "0:GitHub (Login)" {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestPickFzfArguments(t *testing.T) {
	runner := &fzfRunner{stdout: []byte("0:GitHub (Login)\n")}
	p := &picker.Picker{
		FzfPrompt:    "item> ",
		FzfHeight:    "40%",
		FzfExtraArgs: []string{"--no-mouse"},
		Runner:       runner,
		LookPath:     fzfFound,
	}

	if _, err := p.Pick(context.Background(), testItems(), "git"); err != nil {
		t.Fatalf("Pick: %v", err)
	}

	argv := strings.Join(runner.args, " ")
	for _, want := range []string{
		"--with-nth 2..",
		"--layout=reverse",
		"--prompt item> ",
		"--height 40%",
		"--query git",
		"--no-mouse",
	} {
		if !strings.Contains(argv, want) {
			t.Errorf("fzf argv %q missing %q", argv, want)
		}
	}
}

func TestPickFzfAbort(t *testing.T) {
	for _, code := range []int{1, 130} {
		runner := &fzfRunner{err: exitWith(t, code)}
		p := &picker.Picker{Runner: runner, LookPath: fzfFound}

		_, err := p.Pick(context.Background(), testItems(), "")
		if !errors.Is(err, picker.ErrCancelled) {
			t.Errorf("exit %d: expected ErrCancelled, got %v", code, err)
		}
	}
}

func TestPickFzfFailure(t *testing.T) {
	runner := &fzfRunner{err: exitWith(t, 2)}
	p := &picker.Picker{Runner: runner, LookPath: fzfFound}

	_, err := p.Pick(context.Background(), testItems(), "")
	if err == nil {
		t.Fatal("expected error for fzf exit 2")
	}
	if errors.Is(err, picker.ErrCancelled) {
		t.Error("exit 2 is a real failure, not a cancellation")
	}
}

func TestPickFzfInvalidSelection(t *testing.T) {
	runner := &fzfRunner{stdout: []byte("99:no such line\n")}
	p := &picker.Picker{Runner: runner, LookPath: fzfFound}

	if _, err := p.Pick(context.Background(), testItems(), ""); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestPickEmptyItems(t *testing.T) {
	p := &picker.Picker{LookPath: fzfFound}
	if _, err := p.Pick(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for empty item list")
	}
}

func TestPickMenuSelection(t *testing.T) {
	var output bytes.Buffer
	p := &picker.Picker{
		Input:    strings.NewReader("2\n"),
		Output:   &output,
		LookPath: fzfMissing,
	}

	item, err := p.Pick(context.Background(), testItems(), "")
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if item.ID != "bbb2" {
		t.Errorf("expected bbb2, got %s", item.ID)
	}

	// All three items are listed.
	for _, title := range []string{"GitHub", "Postgres Production", "AWS Root"} {
		if !strings.Contains(output.String(), title) {
			t.Errorf("menu output missing %q", title)
		}
	}
}

func TestPickMenuCancel(t *testing.T) {
	for _, input := range []string{"\n", "", "0\n", "4\n", "abc\n"} {
		p := &picker.Picker{
			Input:    strings.NewReader(input),
			Output:   io.Discard,
			LookPath: fzfMissing,
		}
		_, err := p.Pick(context.Background(), testItems(), "")
		if !errors.Is(err, picker.ErrCancelled) {
			t.Errorf("input %q: expected ErrCancelled, got %v", input, err)
		}
	}
}

func TestPickMenuQueryFilter(t *testing.T) {
	var output bytes.Buffer
	p := &picker.Picker{
		Input:    strings.NewReader("1\n"),
		Output:   &output,
		LookPath: fzfMissing,
	}

	item, err := p.Pick(context.Background(), testItems(), "postgres")
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if item.ID != "bbb2" {
		t.Errorf("expected filtered menu to select bbb2, got %s", item.ID)
	}
	if strings.Contains(output.String(), "AWS Root") {
		t.Error("non-matching item should not appear in filtered menu")
	}
}

func TestPickMenuQueryNoMatchesShowsAll(t *testing.T) {
	var output bytes.Buffer
	p := &picker.Picker{
		Input:    strings.NewReader("3\n"),
		Output:   &output,
		LookPath: fzfMissing,
	}

	// A query matching nothing falls back to the full list rather
	// than presenting an empty menu.
	item, err := p.Pick(context.Background(), testItems(), "zzzzzz")
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if item.ID != "ccc3" {
		t.Errorf("expected ccc3 from full list, got %s", item.ID)
	}
	for _, title := range []string{"GitHub", "Postgres Production", "AWS Root"} {
		if !strings.Contains(output.String(), title) {
			t.Errorf("fallback menu missing %q", title)
		}
	}
}

func TestPickMenuPartialLineAtEOF(t *testing.T) {
	// "2" with no trailing newline still selects.
	p := &picker.Picker{
		Input:    strings.NewReader("2"),
		Output:   io.Discard,
		LookPath: fzfMissing,
	}
	item, err := p.Pick(context.Background(), testItems(), "")
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if item.ID != "bbb2" {
		t.Errorf("expected bbb2, got %s", item.ID)
	}
}
