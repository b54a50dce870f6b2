package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amaumene/gosubfetch/internal/pipeline"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <release-path>",
		Short: "Fetch the subtitle for one release file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			outcome, err := a.services.Pipeline.Produce(cmd.Context(), args[0])
			if err != nil {
				if outcome != nil && outcome.TranscriptPath != "" {
					return fmt.Errorf("%w (see %s)", err, outcome.TranscriptPath)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if outcome.State == pipeline.StateSkipped {
				fmt.Fprintf(out, "subtitle already exists: %s\n", outcome.SubtitlePath)
				return nil
			}
			fmt.Fprintln(out, outcome.SubtitlePath)
			return nil
		},
	}
}
