// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package tmux

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// NewTestServer creates an isolated tmux server for testing. The
// server:
//   - Uses a short /tmp path to stay within the 108-byte Unix socket limit
//   - Passes -f /dev/null to prevent loading the user's ~/.tmux.conf
//   - Creates a _guard session running "sleep infinity" to keep the
//     server alive (tmux exits when its last session ends)
//   - Registers t.Cleanup to kill the server when the test completes
//
// Tests must use the returned Server for every tmux command: a bare
// tmux invocation targets the default server, which may be the very
// session the developer is running the tests in.
//
// Skips the test when tmux is not installed — the tmux backend is
// optional for termpass users, so its absence on a test machine is
// not a failure.
func NewTestServer(t *testing.T) *Server {
	t.Helper()

	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not installed")
	}

	dir, err := os.MkdirTemp("/tmp", "termpass-tmux-")
	if err != nil {
		t.Fatalf("creating socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	server := NewServer(filepath.Join(dir, "tmux.sock"), "/dev/null")

	// The guard session keeps the server alive until cleanup: the
	// server starts with the first session and dies with the last.
	if err := server.NewSession(context.Background(), "_guard", "sleep", "infinity"); err != nil {
		t.Fatalf("start tmux test server: %v", err)
	}

	t.Cleanup(func() {
		server.KillServer(context.Background())
	})

	return server
}
