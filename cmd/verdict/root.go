package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "verdict",
		Short:         "Verdict computes a build verdict from cucumber JSON results",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.StringArray("results", nil, "cucumber JSON results file or directory (repeatable)")
	persistent.StringArray("tag", nil, "include only scenarios with a matching tag")
	persistent.StringArray("only-scenario", nil, "include only matching scenarios")
	persistent.StringArray("skip-scenario", nil, "exclude matching scenarios")
	persistent.BoolP("verbose", "v", false, "log debug output and stream command output")
	persistent.String("format", "pretty", "output format (pretty|json)")
	persistent.String("evidence-dir", "", "directory holding screenshots of failed scenarios")
	persistent.Bool("skipped-fails-build", false, "treat skipped steps as failures")
	persistent.Bool("pending-fails-build", false, "treat pending steps as failures")
	persistent.Bool("undefined-fails-build", false, "treat undefined steps as failures")
	persistent.Bool("missing-fails-build", false, "treat missing steps as failures")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}
