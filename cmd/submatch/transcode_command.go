package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Belphemur/SubMatch/internal/parser"
)

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcode <subtitle-file> [encoding]",
		Short: "Re-encode an existing subtitle file in place",
		Long: `Detect the encoding of a subtitle file and rewrite it in the given
encoding, or in retrieval.target_encoding when none is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ctx.config.Retrieval.TargetEncoding
			if len(args) == 2 {
				target = args[1]
			}

			from, changed, err := parser.TranscodeFile(args[0], target)
			if err != nil {
				return ctx.finish(err)
			}

			if changed {
				ctx.logger.Info().Str("file", args[0]).Str("from", from).Str("to", target).Msg("Subtitle transcoded")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", args[0], from, target)
			} else {
				ctx.logger.Warn().Str("file", args[0]).Str("encoding", from).Msg("Subtitle already in the target encoding")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: already %s\n", args[0], from)
			}
			return ctx.finish(nil)
		},
	}
}
