package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [run-id]",
		Short: "Audit the artifact store for corruption and broken provenance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			verbose, _ := cmd.Flags().GetBool("verbose")

			report, err := c.app.Verify(cmd.Context(), runID, verbose)
			if report != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			}
			return err
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Log every passing check, not only violations")
	return cmd
}
