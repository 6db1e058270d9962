// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package run executes the external binaries termpass orchestrates: the
// 1Password CLI, the fuzzy finder, and the terminal's remote-control
// command. Every subprocess goes through the [Runner] interface so that
// packages wrapping a binary can be tested with an in-memory fake
// instead of the real executable.
//
// Error messages deliberately omit the argument vector: op invocations
// can carry a session token via --session, and the secret must not
// travel into logs or wrapped error strings. Stderr is captured and
// folded into the error instead, which is what actually explains a
// failure for every binary termpass runs.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner runs an external command to completion. Implementations block
// until the child exits; cancellation happens only through the context.
type Runner interface {
	// Output runs the command with no stdin and returns its stdout.
	// Stderr is captured and folded into the returned error.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// InteractiveOutput runs the command with stdin and stderr attached
	// to the calling terminal, capturing only stdout. This is how
	// "op signin" prompts for a master password while still handing the
	// raw session token back on its stdout.
	InteractiveOutput(ctx context.Context, name string, args ...string) ([]byte, error)

	// Input runs the command feeding stdin from the given reader,
	// discarding stdout. Used to hand secret material to a child
	// process without placing it on the argument vector.
	Input(ctx context.Context, stdin io.Reader, name string, args ...string) error

	// Filter runs the command feeding stdin from the given reader and
	// capturing stdout, with stderr attached to the calling terminal.
	// This is the shape of an fzf invocation: the candidate list goes
	// in, the interactive UI draws on the terminal, and the selection
	// comes back on stdout.
	Filter(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)
}

// Exec returns the Runner backed by os/exec. This is the only Runner
// used outside of tests.
func Exec() Runner {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	command := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return nil, &CommandError{Name: name, Err: err, Stderr: trimmed(stderr.Bytes())}
	}
	return stdout.Bytes(), nil
}

func (execRunner) InteractiveOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	command := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	command.Stdin = os.Stdin
	command.Stdout = &stdout
	command.Stderr = os.Stderr
	if err := command.Run(); err != nil {
		// Stderr went to the terminal, so the user has already seen
		// whatever the child had to say.
		return nil, &CommandError{Name: name, Err: err}
	}
	return stdout.Bytes(), nil
}

func (execRunner) Input(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	command := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	command.Stdin = stdin
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return &CommandError{Name: name, Err: err, Stderr: trimmed(stderr.Bytes())}
	}
	return nil
}

func (execRunner) Filter(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	command := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	command.Stdin = stdin
	command.Stdout = &stdout
	command.Stderr = os.Stderr
	if err := command.Run(); err != nil {
		return stdout.Bytes(), &CommandError{Name: name, Err: err}
	}
	return stdout.Bytes(), nil
}

// CommandError reports a failed subprocess. The argument vector is not
// recorded (it can contain session tokens); the binary name, the exec
// error, and the child's trimmed stderr are.
type CommandError struct {
	Name   string
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Name, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Stderr returns the captured stderr of the CommandError in err's
// chain, or "" if there is none. Callers use this to classify failures
// (for example, distinguishing an op authentication refusal from a
// missing item) without re-running the command.
func Stderr(err error) string {
	var commandError *CommandError
	if errors.As(err, &commandError) {
		return commandError.Stderr
	}
	return ""
}

// IsNotFound reports whether err means the binary was not found in
// PATH, as opposed to the binary running and failing.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// ExitCode returns the child's exit code from err's chain, or -1 when
// the error carries none (missing binary, I/O failure, cancellation).
// fzf encodes its outcome in the exit code — 1 for no match, 130 for
// the user aborting — so callers need the number, not just failure.
func ExitCode(err error) int {
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode()
	}
	return -1
}

func trimmed(output []byte) string {
	return strings.TrimSpace(string(output))
}
