// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package opcli

import (
	"fmt"
	"strings"

	"github.com/termpass-dev/termpass/lib/run"
)

// DependencyError reports that the op binary is not installed or not
// in PATH. There is no fallback for the credential manager itself.
type DependencyError struct {
	Binary string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found in PATH; install the 1Password CLI or set op.binary in the termpass config", e.Binary)
}

// AuthError reports that op refused the operation because the user is
// not signed in or the session expired. Terminal — termpass never
// retries authentication on its own.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("1Password authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// OutputError reports that op exited successfully but produced output
// termpass could not parse. This halts the flow before any selection
// happens.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("unexpected output from op: %v", e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// classify turns a raw subprocess error into the matching taxonomy
// error. Missing binary and authentication refusals are recognized by
// inspecting the exec error chain and op's stderr; anything else
// passes through wrapped.
func classify(binary string, err error) error {
	if err == nil {
		return nil
	}
	if run.IsNotFound(err) {
		return &DependencyError{Binary: binary}
	}
	if isAuthFailure(run.Stderr(err)) {
		return &AuthError{Err: err}
	}
	return err
}

// isAuthFailure recognizes op's authentication-refusal messages. op
// has no machine-readable error channel, so stderr text is all there
// is. The patterns cover current op 2.x wording for locked vaults,
// expired sessions, and rejected biometric prompts.
func isAuthFailure(stderr string) bool {
	lowered := strings.ToLower(stderr)
	for _, marker := range []string{
		"not currently signed in",
		"authorization prompt dismissed",
		"authentication required",
		"session expired",
		"(401)",
	} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
