// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package opcli wraps the 1Password CLI ("op"). It owns all three op
// invocations termpass makes: signin, item list, and the secret fetch.
//
// Authentication is delegated entirely to op. With the desktop app
// integration enabled, "op signin --raw" triggers a biometric prompt
// and returns an empty stdout; without it, op prompts for the master
// password on the terminal and prints a session token, which every
// later call must carry via --session. Both shapes are represented by
// [Session].
//
// Every call blocks until op exits. There are no retries: a locked
// vault, a dismissed biometric prompt, or malformed output ends the
// invocation with a typed error from this package.
package opcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"time"

	"github.com/termpass-dev/termpass/lib/run"
	"github.com/termpass-dev/termpass/lib/secret"
)

// signinTimeout bounds the interactive signin stage. Biometric and
// master-password prompts both resolve well within this; a signin
// that hangs past it means op is stuck, not the user.
const signinTimeout = 60 * time.Second

// Client invokes the op binary. The zero value uses "op" from PATH
// and real subprocess execution.
type Client struct {
	// Binary is the op executable; empty means "op".
	Binary string

	// Runner executes subprocesses; nil means [run.Exec]. Tests
	// substitute a fake.
	Runner run.Runner
}

// Session is the result of a successful signin. In app-integration
// mode there is no token on the wire — the desktop app vouches for
// the process — and token is nil. Otherwise token holds the raw
// session token in locked memory.
type Session struct {
	token *secret.Buffer
}

// AppIntegration reports whether authentication ran through the
// desktop app rather than a session token.
func (s *Session) AppIntegration() bool {
	return s.token == nil
}

// Close releases the session token's locked memory. Safe on
// app-integration sessions.
func (s *Session) Close() error {
	if s.token == nil {
		return nil
	}
	return s.token.Close()
}

// args returns the --session arguments for op calls made under this
// session, or nil in app-integration mode.
func (s *Session) args() []string {
	if s.token == nil {
		return nil
	}
	return []string{"--session", s.token.String()}
}

// Signin authenticates with 1Password via "op signin --raw". The call
// is interactive: op may trigger a biometric prompt or ask for the
// master password on the terminal. An empty stdout with a zero exit
// means app-integration mode.
func (c *Client) Signin(ctx context.Context) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, signinTimeout)
	defer cancel()
	stdout, err := c.runner().InteractiveOutput(ctx, c.binary(), "signin", "--raw")
	if err != nil {
		if run.IsNotFound(err) {
			return nil, &DependencyError{Binary: c.binary()}
		}
		// signin failing for any other reason is an authentication
		// failure: the user dismissed the prompt, typed a wrong
		// password, or op could not reach an account.
		return nil, &AuthError{Err: err}
	}

	token := bytes.TrimSpace(stdout)
	if len(token) == 0 {
		secret.Zero(stdout)
		return &Session{}, nil
	}

	buffer, err := secret.NewFromBytes(token)
	// NewFromBytes zeroed the trimmed window; clear the surrounding
	// whitespace bytes as well.
	secret.Zero(stdout)
	if err != nil {
		return nil, err
	}
	return &Session{token: buffer}, nil
}

// ListItems enumerates all items via "op item list --format=json",
// preserving op's ordering. Malformed JSON is an [OutputError]; the
// caller must not reach the selector with a partial list.
func (c *Client) ListItems(ctx context.Context, session *Session) ([]Item, error) {
	args := append([]string{"item", "list", "--format=json"}, session.args()...)
	stdout, err := c.runner().Output(ctx, c.binary(), args...)
	if err != nil {
		return nil, classify(c.binary(), err)
	}

	var items []Item
	if err := json.Unmarshal(stdout, &items); err != nil {
		return nil, &OutputError{Err: fmt.Errorf("parsing item list: %w", err)}
	}
	return items, nil
}

// Secret fetches one field of one item via "op item get". identifier
// may be an item ID or a title — op resolves both. The value comes
// back in locked memory with the trailing newline trimmed.
func (c *Client) Secret(ctx context.Context, session *Session, identifier, field string) (*secret.Buffer, error) {
	args := append([]string{"item", "get", identifier, "--fields", field, "--reveal"}, session.args()...)
	stdout, err := c.runner().Output(ctx, c.binary(), args...)
	if err != nil {
		return nil, classify(c.binary(), err)
	}

	value := bytes.TrimSpace(stdout)
	if len(value) == 0 {
		secret.Zero(stdout)
		return nil, fmt.Errorf("item %q has no %s field", identifier, field)
	}

	buffer, err := secret.NewFromBytes(value)
	secret.Zero(stdout)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

func (c *Client) runner() run.Runner {
	if c.Runner != nil {
		return c.Runner
	}
	return run.Exec()
}

func (c *Client) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "op"
}
