package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the configured pipeline over the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.app.RunPipeline(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "run %s finished\n", result.RunID)
			_, _ = fmt.Fprintf(out, "  moderation  %s\n", result.Moderation)
			_, _ = fmt.Fprintf(out, "  audit trail %s\n", result.TrailID)
			_, _ = fmt.Fprintf(out, "  artifacts   %d\n", result.Artifacts)
			return nil
		},
	}
}
