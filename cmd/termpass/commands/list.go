// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/termpass-dev/termpass/cmd/termpass/cli"
	"github.com/termpass-dev/termpass/lib/config"
	"github.com/termpass-dev/termpass/lib/opcli"
)

type listParams struct {
	configPath string
	outputJSON bool
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List vault items without picking one",
		Description: `List every item the 1Password CLI can see. The text form is a
table; --json emits the items as JSON for scripting.`,
		Usage: "termpass list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "config file path")
			flagSet.BoolVar(&params.outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Table of all items",
				Command:     "termpass list",
			},
			{
				Description: "Item IDs for scripting",
				Command:     "termpass list --json | jq -r '.[].id'",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runList(ctx, &params, logger)
		},
	}
}

func runList(ctx context.Context, params *listParams, logger *slog.Logger) error {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return err
	}

	client := &opcli.Client{Binary: cfg.Op.Binary}
	session, err := client.Signin(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	items, err := client.ListItems(ctx, session)
	if err != nil {
		return err
	}
	logger.Info("listed vault items", "count", len(items))

	if params.outputJSON {
		return cli.WriteJSON(items)
	}
	printItemTable(os.Stdout, items)
	return nil
}

func printItemTable(w io.Writer, items []opcli.Item) {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tURL")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Title, item.Category, item.PrimaryURL())
	}
	tw.Flush()
}
