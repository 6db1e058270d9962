// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/termpass-dev/termpass/cmd/termpass/cli"
	"github.com/termpass-dev/termpass/lib/config"
	"github.com/termpass-dev/termpass/lib/opcli"
)

type getParams struct {
	configPath string
	field      string
}

func getCommand() *cli.Command {
	var params getParams

	return &cli.Command{
		Name:    "get",
		Summary: "Fetch one item's secret and print it to stdout",
		Description: `Fetch a single field from a named item without any interactive
selection. The item may be given by ID or by title; the secret goes
to stdout for use in pipelines.`,
		Usage: "termpass get <item> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file path")
			flagSet.StringVar(&params.field, "field", "", "item field to fetch (default from config, normally \"password\")")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Password by item title",
				Command:     "termpass get github",
			},
			{
				Description: "A different field",
				Command:     "termpass get github --field username",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one item argument")
			}
			return runGet(ctx, &params, args[0], logger)
		},
	}
}

func runGet(ctx context.Context, params *getParams, identifier string, logger *slog.Logger) error {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}
	field := cfg.Op.Field
	if params.field != "" {
		field = params.field
	}

	client := &opcli.Client{Binary: cfg.Op.Binary}
	session, err := client.Signin(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	payload, err := client.Secret(ctx, session, identifier, field)
	if err != nil {
		return err
	}
	defer payload.Close()

	logger.Info("fetched secret", "item", identifier, "field", field)
	return deliverPrint(ctx, opcli.Item{}, payload)
}
