package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pbnrt/internal/annotator"
	perrors "pbnrt/internal/errors"
)

func newExplainCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "explain <file.cs>",
		Short: "Show the decision taken for every declaration of a file",
		Long: `Explain analyzes one file and prints each property, field and parameter with
the rule that decided whether it becomes nullable. Nothing is written.

Examples:
  pbnrt explain Person.cs
  pbnrt explain --format json --references shared.yaml Order.cs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, g, f, args[0])
		},
	}
	addRunFlags(cmd, f)
	return cmd
}

func runExplain(cmd *cobra.Command, g *globalFlags, f *runFlags, path string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx, cmd, g, f)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return perrors.New(perrors.IOFailed, "cannot read file", err).WithPath(path)
	}

	out, err := annotator.Process(ctx, data, s.opts)
	if err != nil {
		if errors.Is(err, annotator.ErrNotProcessable) {
			return fmt.Errorf("%s: %w", path, err)
		}
		return err
	}
	return writeDecisions(cmd.OutOrStdout(), path, out, OutputFormat(f.format))
}
