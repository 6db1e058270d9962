// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/termpass-dev/termpass/cmd/termpass/cli"
	"github.com/termpass-dev/termpass/lib/config"
	"github.com/termpass-dev/termpass/lib/inject"
	"github.com/termpass-dev/termpass/lib/opcli"
	"github.com/termpass-dev/termpass/lib/picker"
	"github.com/termpass-dev/termpass/lib/screen"
	"github.com/termpass-dev/termpass/lib/secret"
)

// pickParams holds the flags shared by the root command and the
// explicit "pick" subcommand.
type pickParams struct {
	configPath string
	field      string
	backend    string
	print      bool
	noContext  bool
}

func (p *pickParams) flags() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("pick", pflag.ContinueOnError)
	flagSet.StringVar(&p.configPath, "config", "", "config file path")
	flagSet.StringVar(&p.field, "field", "", "item field to fetch (default from config, normally \"password\")")
	flagSet.StringVar(&p.backend, "backend", "", "terminal backend: auto, kitty, or tmux (default from config)")
	flagSet.BoolVar(&p.print, "print", false, "write the secret to stdout instead of injecting it")
	flagSet.BoolVar(&p.noContext, "no-context", false, "skip screen-context query detection")
	return flagSet
}

// pickCommand returns the explicit "termpass pick" subcommand. It is
// identical to running the bare root command; having it named makes
// shell aliases and keybindings read better.
func pickCommand() *cli.Command {
	var params pickParams

	return &cli.Command{
		Name:    "pick",
		Summary: "Select an item and inject its secret (the default action)",
		Usage:   "termpass pick [query] [flags]",
		Flags:   params.flags,
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runPick(ctx, &params, queryFromArgs(args), logger)
		},
	}
}

func queryFromArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// itemSource is the slice of the op client the pick flow uses.
// *opcli.Client satisfies it.
type itemSource interface {
	Signin(ctx context.Context) (*opcli.Session, error)
	ListItems(ctx context.Context, session *opcli.Session) ([]opcli.Item, error)
	Secret(ctx context.Context, session *opcli.Session, identifier, field string) (*secret.Buffer, error)
}

// itemPicker is the selection stage. *picker.Picker satisfies it.
type itemPicker interface {
	Pick(ctx context.Context, items []opcli.Item, query string) (opcli.Item, error)
}

// pickFlow wires the stages of the selection flow together: sign in,
// list, pick, fetch, deliver. Tests substitute fakes for the pieces
// that shell out.
type pickFlow struct {
	source itemSource
	picker itemPicker
	field  string
	query  string

	// detectQuery suggests an initial query from recent screen
	// content. Nil when context detection is disabled or an explicit
	// query was given.
	detectQuery func(ctx context.Context) string

	// deliver hands the fetched secret to its destination (terminal
	// injection or stdout).
	deliver func(ctx context.Context, item opcli.Item, payload *secret.Buffer) error

	logger *slog.Logger
}

func (f *pickFlow) run(ctx context.Context) error {
	session, err := f.source.Signin(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	items, err := f.source.ListItems(ctx, session)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("the vault has no items")
	}

	query := f.query
	if query == "" && f.detectQuery != nil {
		query = f.detectQuery(ctx)
		if query != "" {
			f.logger.Info("screen context suggests query", "query", query)
		}
	}

	item, err := f.picker.Pick(ctx, items, query)
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			// Same exit code an interrupted shell command would have.
			return &cli.ExitError{Code: 130}
		}
		return err
	}

	payload, err := f.source.Secret(ctx, session, item.ID, f.field)
	if err != nil {
		return err
	}
	defer payload.Close()

	return f.deliver(ctx, item, payload)
}

func runPick(ctx context.Context, params *pickParams, query string, logger *slog.Logger) error {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}

	backend := cfg.Terminal.Backend
	if params.backend != "" {
		backend = params.backend
	}
	field := cfg.Op.Field
	if params.field != "" {
		field = params.field
	}

	flow := &pickFlow{
		source: &opcli.Client{Binary: cfg.Op.Binary},
		picker: &picker.Picker{
			FzfBinary:    cfg.Fzf.Binary,
			FzfPrompt:    cfg.Fzf.Prompt,
			FzfHeight:    cfg.Fzf.Height,
			FzfExtraArgs: cfg.Fzf.ExtraArgs,
		},
		field:  field,
		query:  query,
		logger: logger,
	}

	if query == "" && !params.noContext && !cfg.Terminal.DisableContext {
		flow.detectQuery = func(ctx context.Context) string {
			return detectScreenQuery(ctx, backend, logger)
		}
	}

	if params.print {
		flow.deliver = deliverPrint
	} else {
		injector, err := inject.Detect(backend)
		if err != nil {
			return err
		}
		flow.deliver = func(ctx context.Context, item opcli.Item, payload *secret.Buffer) error {
			logger.Info("injecting secret",
				"backend", injector.Name(),
				"item", item.ID,
				"field", field)
			return injector.Inject(ctx, bytes.NewReader(payload.Bytes()))
		}
	}

	return flow.run(ctx)
}

// deliverPrint writes the secret to stdout. A trailing newline is
// added only when stdout is a terminal, so pipes receive the exact
// secret bytes.
func deliverPrint(_ context.Context, _ opcli.Item, payload *secret.Buffer) error {
	if _, err := os.Stdout.Write(payload.Bytes()); err != nil {
		return err
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println()
	}
	return nil
}

// detectScreenQuery captures recent terminal text and scans it for a
// hint of what the user is authenticating to. Any failure yields an
// empty query: context detection is an optimization, never a blocker.
func detectScreenQuery(ctx context.Context, backend string, logger *slog.Logger) string {
	injector, err := inject.Detect(backend)
	if err != nil {
		return ""
	}
	text, err := injector.Capture(ctx)
	if err != nil {
		logger.Debug("screen capture failed", "backend", injector.Name(), "error", err)
		return ""
	}
	return screen.DetectQuery(text)
}
