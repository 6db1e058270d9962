// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/termpass-dev/termpass/cmd/termpass/cli"
	"github.com/termpass-dev/termpass/lib/opcli"
	"github.com/termpass-dev/termpass/lib/picker"
	"github.com/termpass-dev/termpass/lib/secret"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource fakes the op client for flow tests.
type fakeSource struct {
	items   []opcli.Item
	listErr error

	secretValue string
	secretErr   error

	signinCalled bool
	fetchedID    string
	fetchedField string
}

func (f *fakeSource) Signin(context.Context) (*opcli.Session, error) {
	f.signinCalled = true
	return &opcli.Session{}, nil
}

func (f *fakeSource) ListItems(context.Context, *opcli.Session) ([]opcli.Item, error) {
	return f.items, f.listErr
}

func (f *fakeSource) Secret(_ context.Context, _ *opcli.Session, identifier, field string) (*secret.Buffer, error) {
	f.fetchedID = identifier
	f.fetchedField = field
	if f.secretErr != nil {
		return nil, f.secretErr
	}
	return secret.NewFromBytes([]byte(f.secretValue))
}

// fakePicker returns a fixed choice and records the query it saw.
type fakePicker struct {
	choice opcli.Item
	err    error
	query  string
	called bool
}

func (f *fakePicker) Pick(_ context.Context, _ []opcli.Item, query string) (opcli.Item, error) {
	f.called = true
	f.query = query
	return f.choice, f.err
}

func flowItems() []opcli.Item {
	return []opcli.Item{
		{ID: "aaa1", Title: "GitHub", Category: "Login"},
		{ID: "bbb2", Title: "Postgres", Category: "Database"},
	}
}

func TestPickFlowDeliversChosenSecret(t *testing.T) {
	source := &fakeSource{items: flowItems(), secretValue: "hunter2"}
	chooser := &fakePicker{choice: flowItems()[1]}

	var delivered string
	var deliveredItem opcli.Item
	flow := &pickFlow{
		source: source,
		picker: chooser,
		field:  "password",
		logger: discardLogger(),
		deliver: func(_ context.Context, item opcli.Item, payload *secret.Buffer) error {
			deliveredItem = item
			delivered = payload.String()
			return nil
		},
	}

	if err := flow.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !source.signinCalled {
		t.Error("flow skipped signin")
	}
	if delivered != "hunter2" {
		t.Errorf("delivered %q, want hunter2", delivered)
	}
	if deliveredItem.ID != "bbb2" {
		t.Errorf("delivered item %s, want bbb2", deliveredItem.ID)
	}
	if source.fetchedID != "bbb2" || source.fetchedField != "password" {
		t.Errorf("fetched %s/%s, want bbb2/password", source.fetchedID, source.fetchedField)
	}
}

func TestPickFlowCancelledExits130(t *testing.T) {
	source := &fakeSource{items: flowItems()}
	chooser := &fakePicker{err: picker.ErrCancelled}

	flow := &pickFlow{
		source: source,
		picker: chooser,
		logger: discardLogger(),
		deliver: func(context.Context, opcli.Item, *secret.Buffer) error {
			t.Fatal("deliver called after cancellation")
			return nil
		},
	}

	err := flow.run(context.Background())
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 130 {
		t.Fatalf("expected ExitError{130}, got %v", err)
	}
	if source.fetchedID != "" {
		t.Error("secret fetched after cancellation")
	}
}

func TestPickFlowListFailureHaltsBeforeSelector(t *testing.T) {
	listErr := &opcli.OutputError{Err: errors.New("bad json")}
	source := &fakeSource{listErr: listErr}
	chooser := &fakePicker{}

	flow := &pickFlow{
		source: source,
		picker: chooser,
		logger: discardLogger(),
		deliver: func(context.Context, opcli.Item, *secret.Buffer) error {
			t.Fatal("deliver called after list failure")
			return nil
		},
	}

	err := flow.run(context.Background())
	var outputError *opcli.OutputError
	if !errors.As(err, &outputError) {
		t.Fatalf("expected OutputError, got %v", err)
	}
	if chooser.called {
		t.Error("selector shown despite malformed listing")
	}
}

func TestPickFlowEmptyVault(t *testing.T) {
	source := &fakeSource{}
	chooser := &fakePicker{}

	flow := &pickFlow{
		source:  source,
		picker:  chooser,
		logger:  discardLogger(),
		deliver: func(context.Context, opcli.Item, *secret.Buffer) error { return nil },
	}

	if err := flow.run(context.Background()); err == nil {
		t.Fatal("expected error for empty vault")
	}
	if chooser.called {
		t.Error("selector shown for empty vault")
	}
}

func TestPickFlowScreenContextQuery(t *testing.T) {
	source := &fakeSource{items: flowItems(), secretValue: "x"}
	chooser := &fakePicker{choice: flowItems()[0]}

	flow := &pickFlow{
		source:      source,
		picker:      chooser,
		logger:      discardLogger(),
		detectQuery: func(context.Context) string { return "github" },
		deliver:     func(context.Context, opcli.Item, *secret.Buffer) error { return nil },
	}

	if err := flow.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if chooser.query != "github" {
		t.Errorf("picker query = %q, want github", chooser.query)
	}
}

func TestPickFlowExplicitQueryWinsOverContext(t *testing.T) {
	source := &fakeSource{items: flowItems(), secretValue: "x"}
	chooser := &fakePicker{choice: flowItems()[0]}

	flow := &pickFlow{
		source: source,
		picker: chooser,
		query:  "postgres",
		logger: discardLogger(),
		detectQuery: func(context.Context) string {
			t.Fatal("context detection ran despite explicit query")
			return ""
		},
		deliver: func(context.Context, opcli.Item, *secret.Buffer) error { return nil },
	}

	if err := flow.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if chooser.query != "postgres" {
		t.Errorf("picker query = %q, want postgres", chooser.query)
	}
}

func TestQueryFromArgs(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"github"}, "github"},
		{[]string{"aws", "root"}, "aws root"},
	}
	for _, c := range cases {
		if got := queryFromArgs(c.args); got != c.want {
			t.Errorf("queryFromArgs(%v) = %q, want %q", c.args, got, c.want)
		}
	}
}

// Compile-time checks that the real implementations satisfy the flow
// interfaces.
var (
	_ itemSource = (*opcli.Client)(nil)
	_ itemPicker = (*picker.Picker)(nil)
)
