// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package inject

import (
	"errors"
	"testing"
)

func clearTerminalEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"KITTY_WINDOW_ID", "KITTY_LISTEN_ON", "TMUX", "TMUX_PANE"} {
		t.Setenv(name, "")
	}
}

func TestDetect_Auto(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"kitty via window id", map[string]string{"KITTY_WINDOW_ID": "3"}, "kitty"},
		{"kitty via listen socket", map[string]string{"KITTY_LISTEN_ON": "unix:/tmp/k"}, "kitty"},
		{"tmux", map[string]string{"TMUX": "/tmp/tmux-1000/default,42,0", "TMUX_PANE": "%5"}, "tmux"},
		{"kitty wins over tmux", map[string]string{"KITTY_WINDOW_ID": "3", "TMUX": "/tmp/t,1,0"}, "kitty"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clearTerminalEnv(t)
			for name, value := range test.env {
				t.Setenv(name, value)
			}

			injector, err := Detect("auto")
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if injector.Name() != test.want {
				t.Errorf("backend = %q, want %q", injector.Name(), test.want)
			}
		})
	}
}

func TestDetect_AutoWithoutTerminal(t *testing.T) {
	clearTerminalEnv(t)

	_, err := Detect("auto")
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("err = %v, want ErrNoBackend", err)
	}
}

func TestDetect_ForcedBackendIgnoresEnvironment(t *testing.T) {
	clearTerminalEnv(t)

	injector, err := Detect("tmux")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if injector.Name() != "tmux" {
		t.Errorf("backend = %q, want tmux", injector.Name())
	}
}

func TestDetect_UnknownBackend(t *testing.T) {
	if _, err := Detect("screen"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
