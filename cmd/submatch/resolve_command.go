package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <language> <media-file>",
		Short: "Download the best matching subtitle next to a media file",
		Long: `Search every enabled source for subtitles matching the media file, rank
them and write the best one as <media-file-stem>.srt next to it.

The language is an ISO 639-2 code such as fre, eng or hun.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.resolver()
			if err != nil {
				return ctx.finish(err)
			}

			written, err := resolver.ResolveSubtitle(cmd.Context(), args[0], args[1])
			if err != nil {
				return ctx.finish(err)
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "Subtitle written for %s\n", args[1])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No subtitle found for %s\n", args[1])
			}
			return ctx.finish(nil)
		},
	}
}
