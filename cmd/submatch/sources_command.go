package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Belphemur/SubMatch/internal/sources"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered subtitle sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config

			enabled := make([]string, 0, len(cfg.Search.Sources))
			for _, name := range cfg.Search.Sources {
				enabled = append(enabled, strings.ToLower(strings.TrimSpace(name)))
			}

			names := sources.Names()
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				state := "yes"
				if len(enabled) > 0 && !slices.Contains(enabled, name) {
					state = "no"
				}
				rows = append(rows, []string{name, state, cfg.Sources[name].BaseURL})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Source", "Enabled", "Base URL override"}, rows, nil))
			return ctx.finish(nil)
		},
	}
}
