package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <language> <media-file>",
		Short: "List subtitle candidates for a media file without downloading",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.resolver()
			if err != nil {
				return ctx.finish(err)
			}

			req, outcome, err := resolver.Search(cmd.Context(), args[0], args[1])
			if err != nil {
				return ctx.finish(err)
			}

			out := cmd.OutOrStdout()
			if len(outcome.Results) == 0 {
				fmt.Fprintf(out, "No subtitle found for %q\n", req.Query)
			} else {
				results := outcome.Results
				if limit > 0 && len(results) > limit {
					results = results[:limit]
				}
				rows := make([][]string, 0, len(results))
				for i, r := range results {
					trusted := ""
					if r.Trusted {
						trusted = "yes"
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						strconv.Itoa(r.Score),
						r.Source,
						r.RemoteID,
						trusted,
						strconv.Itoa(len(r.Files)),
						r.DownloadURL,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Score", "Source", "ID", "Trusted", "Files", "Download"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
			}

			for _, f := range outcome.Failures {
				fmt.Fprintf(out, "%s failed: %v\n", f.Source, f.Err)
			}
			return ctx.finish(nil)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of candidates to list (0 lists all)")
	return cmd
}
