package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pbnrt/internal/annotator"
	"pbnrt/internal/config"
	perrors "pbnrt/internal/errors"
	"pbnrt/internal/nullability"
	"pbnrt/internal/resolve"
	"pbnrt/internal/slogutil"
	"pbnrt/internal/version"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbosity  int
	quiet      bool
	noColor    bool
	logFormat  string
}

// runFlags are the pipeline flags of annotate, check and explain.
type runFlags struct {
	references      []string
	guard           string
	requireProtobuf bool
	exclude         []string
	jobs            int
	format          string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "pbnrt",
		Short: "pbnrt - nullable annotations for protobuf-generated C#",
		Long: `pbnrt post-processes C# sources generated by protoc --csharp_out and adds
'?' annotations to the declarations that may legitimately hold null, so the
compiler's nullable reference types analysis can check code that uses them.`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("pbnrt version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (default: .pbnrt.{yaml,toml,json} in the working directory)")
	pf.CountVarP(&g.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "Suppress all log output")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: human or json (default from config)")

	root.AddCommand(
		newAnnotateCmd(g),
		newCheckCmd(g),
		newExplainCmd(g),
		newVersionCmd(),
	)
	return root
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	fl := cmd.Flags()
	fl.StringSliceVarP(&f.references, "references", "r", nil, "Extra type references (.cs, .yaml, .toml, .json, .pb/.protoset[.gz])")
	fl.StringVar(&f.guard, "guard", "", "Setter guard detection: symbol or text")
	fl.BoolVar(&f.requireProtobuf, "require-protobuf", true, "Skip files that never reference Google.Protobuf")
	fl.StringSliceVar(&f.exclude, "exclude", nil, "Gitignore-style patterns of files to skip")
	fl.IntVarP(&f.jobs, "jobs", "j", 0, "Files processed in parallel (0 = one per CPU)")
	fl.StringVar(&f.format, "format", "human", "Output format (human, json)")
}

// session is the resolved configuration of one command invocation.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	refs   *resolve.ReferenceSet
	opts   annotator.Options
}

// newSession loads the config file, applies explicitly set flags on top and
// loads the reference set.
func newSession(ctx context.Context, cmd *cobra.Command, g *globalFlags, f *runFlags) (*session, error) {
	if g.noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, perrors.New(perrors.IOFailed, "cannot determine working directory", err)
	}
	cfg, err := config.LoadConfig(g.configPath, wd)
	if err != nil {
		return nil, perrors.New(perrors.ConfigInvalid, "cannot load configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("references") {
		cfg.References = append(cfg.References, f.references...)
	}
	if flags.Changed("guard") {
		cfg.Guard = f.guard
	}
	if flags.Changed("require-protobuf") {
		cfg.RequireProtobuf = f.requireProtobuf
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, f.exclude...)
	}
	if flags.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, perrors.New(perrors.ConfigInvalid, "invalid flags", err)
	}

	switch OutputFormat(f.format) {
	case FormatHuman, FormatJSON:
	default:
		return nil, perrors.New(perrors.ConfigInvalid, "unsupported output format: "+f.format, nil)
	}

	guard, err := nullability.ParseGuardMode(cfg.Guard)
	if err != nil {
		return nil, perrors.New(perrors.ConfigInvalid, "invalid guard mode", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), g, cfg)
	refs, err := resolve.LoadReferences(ctx, cfg.References, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("References loaded", "types", refs.Len(), "sources", len(refs.Sources()))

	return &session{
		cfg:    cfg,
		logger: logger,
		refs:   refs,
		opts: annotator.Options{
			References:      refs,
			Guard:           guard,
			RequireProtobuf: cfg.RequireProtobuf,
		},
	}, nil
}

func newLogger(w io.Writer, g *globalFlags, cfg *config.Config) *slog.Logger {
	configured := slogutil.LevelFromString(cfg.Logging.Level)
	level := slogutil.LevelFromVerbosity(g.verbosity, g.quiet, configured)
	return slogutil.NewFormatLogger(w, cfg.Logging.Format, slogutil.Options{
		Level: level,
		Color: !color.NoColor,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Full())
		},
	}
}
