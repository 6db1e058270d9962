// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the shared check-result types and checklist
// rendering used by the "termpass doctor" command. Checks report one
// of four statuses: pass, fail, warn, or skip. Failures make the
// command exit non-zero; warnings and skips do not.
package doctor
