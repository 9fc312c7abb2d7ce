package main

import (
	"github.com/spf13/cobra"
)

func newCheckCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Report files that still need annotations without writing them",
		Long: `Check runs the full pipeline without writing any file. It exits with status 2
when at least one file would change, and 1 when a file could not be processed.

Examples:
  pbnrt check obj/Protos
  pbnrt check --format json src/Generated`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, g, f, args, true)
		},
	}
	addRunFlags(cmd, f)
	return cmd
}
