// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package tmux_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/termpass-dev/termpass/lib/tmux"
)

// waitForPane polls the pane until its content satisfies the
// predicate, failing after a local deadline rather than the global
// test timeout. Returns the matching content.
func waitForPane(t *testing.T, server *tmux.Server, pane string, ok func(string) bool) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var content string
	for {
		var err error
		content, err = server.CapturePane(ctx, pane, 0)
		if err != nil {
			t.Fatalf("CapturePane: %v", err)
		}
		if ok(content) {
			return content
		}
		if ctx.Err() != nil {
			t.Fatalf("expected content never appeared; pane content:\n%s", content)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestNewSessionAndHasSession(t *testing.T) {
	server := tmux.NewTestServer(t)

	if err := server.NewSession(context.Background(), "work", "sleep", "infinity"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if !server.HasSession(context.Background(), "work") {
		t.Fatal("HasSession returned false for a session that was just created")
	}
	if server.HasSession(context.Background(), "nonexistent") {
		t.Fatal("HasSession returned true for a session that does not exist")
	}
}

func TestPasteText(t *testing.T) {
	server := tmux.NewTestServer(t)

	// cat echoes its terminal input back, so the pasted text becomes
	// visible pane content.
	if err := server.NewSession(context.Background(), "echo", "cat"); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if err := server.PasteText(context.Background(), "echo", strings.NewReader("pasted-marker")); err != nil {
		t.Fatalf("PasteText: %v", err)
	}

	// The paste lands asynchronously; poll until it shows up.
	waitForPane(t, server, "echo", func(content string) bool {
		return strings.Contains(content, "pasted-marker")
	})
}

func TestCapturePane(t *testing.T) {
	server := tmux.NewTestServer(t)

	if err := server.NewSession(context.Background(), "lines", "sh", "-c",
		`printf 'first\nsecond\nthird\n'; sleep infinity`); err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	content := waitForPane(t, server, "lines", func(content string) bool {
		return strings.Contains(content, "third")
	})
	if !strings.Contains(content, "first") || !strings.Contains(content, "second") {
		t.Fatalf("pane content missing earlier lines:\n%s", content)
	}
}

func TestKillServerIdempotent(t *testing.T) {
	server := tmux.NewTestServer(t)

	if err := server.KillServer(context.Background()); err != nil {
		t.Fatalf("KillServer: %v", err)
	}
	// A second kill hits a stopped server and must still report nil.
	if err := server.KillServer(context.Background()); err != nil {
		t.Fatalf("KillServer on stopped server: %v", err)
	}
}
