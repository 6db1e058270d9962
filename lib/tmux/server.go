// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package tmux provides a typed interface to a tmux server, used as
// one of termpass's two terminal backends. Unlike the kitty backend,
// which talks to a remote-control socket, tmux injection works through
// the server's paste buffer: the secret is loaded via load-buffer from
// stdin (never on the argument vector) and pasted into the target
// pane, then the buffer is deleted.
//
// The central type is Server. A zero socket path targets the user's
// default server — the one the interactive session lives on, which is
// exactly where termpass must paste. Tests run against a dedicated
// scratch server created by [NewTestServer] so they can never touch
// the developer's own session.
package tmux

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/termpass-dev/termpass/lib/run"
)

// Server represents a tmux server. With an empty socket path all
// commands go to the default server resolved by tmux itself (honoring
// $TMUX), which is the user's interactive server.
type Server struct {
	socketPath string
	configFile string // passed as "-f <path>" on new-session; empty = tmux default
	runner     run.Runner
}

// Current returns the user's default tmux server.
func Current() *Server {
	return &Server{runner: run.Exec()}
}

// NewServer returns a Server that targets the given socket path.
// configFile controls which configuration file tmux loads when the
// server starts on the first new-session call; tests pass "/dev/null"
// so the developer's ~/.tmux.conf never loads.
func NewServer(socketPath, configFile string) *Server {
	return &Server{socketPath: socketPath, configFile: configFile, runner: run.Exec()}
}

// args prepends the -S flag when this Server targets a specific
// socket.
func (s *Server) args(rest ...string) []string {
	if s.socketPath == "" {
		return rest
	}
	return append([]string{"-S", s.socketPath}, rest...)
}

// Run executes a tmux subcommand on this server and returns its
// output. Callers provide only the subcommand and its arguments; the
// socket flag is added automatically.
func (s *Server) Run(ctx context.Context, args ...string) (string, error) {
	output, err := s.runner.Output(ctx, "tmux", s.args(args...)...)
	if err != nil {
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return string(output), nil
}

// PasteText writes text into the target pane's input as if the user
// had pasted it. The text travels via stdin into a named tmux paste
// buffer, is pasted with bracketed-paste disabled (the receiving
// program sees plain keystrokes), and the buffer is deleted in the
// same paste-buffer call so the secret does not linger in tmux's
// buffer stack.
//
// target is a tmux target-pane ("%5", "mysession:1.0", or "" for the
// active pane of the attached client).
func (s *Server) PasteText(ctx context.Context, target string, text io.Reader) error {
	const bufferName = "termpass"

	if err := s.runner.Input(ctx, text, "tmux", s.args("load-buffer", "-b", bufferName, "-")...); err != nil {
		return fmt.Errorf("tmux load-buffer: %w", err)
	}

	pasteArgs := []string{"paste-buffer", "-d", "-b", bufferName}
	if target != "" {
		pasteArgs = append(pasteArgs, "-t", target)
	}
	if _, err := s.runner.Output(ctx, "tmux", s.args(pasteArgs...)...); err != nil {
		// Best effort: do not leave the secret sitting in the buffer
		// stack after a failed paste.
		_, _ = s.runner.Output(ctx, "tmux", s.args("delete-buffer", "-b", bufferName)...)
		return fmt.Errorf("tmux paste-buffer: %w", err)
	}
	return nil
}

// CapturePane returns the visible content of the target pane, limited
// to the last maxLines lines (0 means no limit). Used for
// screen-context detection before the picker opens.
func (s *Server) CapturePane(ctx context.Context, target string, maxLines int) (string, error) {
	captureArgs := []string{"capture-pane", "-p"}
	if target != "" {
		captureArgs = append(captureArgs, "-t", target)
	}
	output, err := s.Run(ctx, captureArgs...)
	if err != nil {
		return "", err
	}
	if maxLines <= 0 {
		return output, nil
	}
	return tailString(output, maxLines), nil
}

// NewSession creates a detached session on this server. If command is
// non-empty, the session runs it instead of the default shell. The -f
// flag is passed here because new-session may start the server, and
// the config file is only read at that point.
func (s *Server) NewSession(ctx context.Context, sessionName string, command ...string) error {
	var newArgs []string
	if s.configFile != "" {
		newArgs = append(newArgs, "-f", s.configFile)
	}
	newArgs = append(newArgs, s.args("new-session", "-d", "-s", sessionName)...)
	newArgs = append(newArgs, command...)
	if _, err := s.runner.Output(ctx, "tmux", newArgs...); err != nil {
		return fmt.Errorf("tmux new-session %q: %w", sessionName, err)
	}
	return nil
}

// HasSession reports whether a session with the given name exists.
// Returns false if the server is not running.
func (s *Server) HasSession(ctx context.Context, sessionName string) bool {
	_, err := s.runner.Output(ctx, "tmux", s.args("has-session", "-t", sessionName)...)
	return err == nil
}

// KillServer terminates the entire tmux server. Returns nil if the
// server was already stopped — normal during test cleanup.
func (s *Server) KillServer(ctx context.Context) error {
	_, err := s.runner.Output(ctx, "tmux", s.args("kill-server")...)
	if err != nil {
		stderr := run.Stderr(err)
		if strings.Contains(stderr, "no server running") ||
			strings.Contains(stderr, "server exited unexpectedly") {
			return nil
		}
		return fmt.Errorf("tmux kill-server: %w", err)
	}
	return nil
}

// tailString returns the last n lines of s, matching tail -n
// semantics: a trailing newline terminates the last line rather than
// starting a new one.
func tailString(s string, n int) string {
	if len(s) == 0 {
		return s
	}

	searchFrom := len(s) - 1
	if s[searchFrom] == '\n' {
		searchFrom--
	}

	count := 0
	for i := searchFrom; i >= 0; i-- {
		if s[i] == '\n' {
			count++
			if count == n {
				return s[i+1:]
			}
		}
	}
	return s
}
