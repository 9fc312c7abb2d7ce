package main

import (
	"time"

	"github.com/spf13/cobra"

	"pbnrt/internal/annotator"
)

func newAnnotateCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "annotate <path>...",
		Short: "Add nullable annotations to generated C# files in place",
		Long: `Annotate rewrites protobuf-generated C# files in place. Directories are
searched recursively for *.cs files, skipping hidden directories and bin/.
obj/ is searched, since Grpc.Tools generates its C# there. Files that do not
reference Google.Protobuf are skipped and left untouched.

Examples:
  pbnrt annotate .
  pbnrt annotate obj/Protos
  pbnrt annotate --exclude 'Legacy/**' --references shared.protoset src/Generated
  pbnrt annotate --guard text Person.cs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, g, f, args, false)
		},
	}
	addRunFlags(cmd, f)
	return cmd
}

func runBatch(cmd *cobra.Command, g *globalFlags, f *runFlags, paths []string, dryRun bool) error {
	start := time.Now()
	ctx := cmd.Context()

	s, err := newSession(ctx, cmd, g, f)
	if err != nil {
		return err
	}

	report, err := annotator.Batch(ctx, paths, annotator.BatchOptions{
		Options: s.opts,
		Exclude: s.cfg.Exclude,
		Jobs:    s.cfg.Jobs,
		DryRun:  dryRun,
		Logger:  s.logger,
	})
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), report, s.refs.Invalid(), OutputFormat(f.format), dryRun); err != nil {
		return err
	}

	s.logger.Debug("Batch completed",
		"run", report.RunID,
		"files", len(report.Files),
		"duration", time.Since(start).Milliseconds(),
	)

	if report.Count(annotator.StatusFailed) > 0 {
		return &exitError{code: 1}
	}
	if dryRun && report.Count(annotator.StatusAnnotated) > 0 {
		return &exitError{code: 2}
	}
	return nil
}
