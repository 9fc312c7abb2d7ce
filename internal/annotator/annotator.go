// Package annotator runs the nullability pipeline over C# sources: load,
// analyze, rewrite, inject the directive, emit.
package annotator

import (
	"context"
	"strings"

	perrors "pbnrt/internal/errors"
	"pbnrt/internal/nullability"
	"pbnrt/internal/resolve"
	"pbnrt/internal/rewrite"
	"pbnrt/internal/source"
	"pbnrt/internal/syntax"
)

// ErrNotProcessable is returned when the input is not something the
// pipeline annotates. Callers leave such files untouched.
var ErrNotProcessable = perrors.New(perrors.NotProcessable, "not a processable protobuf file", nil)

// Options configure a single run of the pipeline.
type Options struct {
	// References are the types visible to every unit. Nil means the embedded
	// runtime and protobuf tables only.
	References *resolve.ReferenceSet
	Guard      nullability.GuardMode
	// RequireProtobuf rejects units that never mention Google.Protobuf.
	RequireProtobuf bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Guard: nullability.GuardSymbol, RequireProtobuf: true}
}

// Outcome is the full result of processing one unit.
type Outcome struct {
	Table  *nullability.Table
	Result *rewrite.Result
	Text   string
}

// Annotations returns the number of markers inserted.
func (o *Outcome) Annotations() int {
	return len(o.Result.Edits)
}

// Changed reports whether the output differs from the input.
func (o *Outcome) Changed() bool {
	return o.Result.Header || len(o.Result.Edits) > 0
}

// ProcessContent annotates code and returns the new text, or
// ErrNotProcessable when code is not a processable unit.
func ProcessContent(ctx context.Context, code string, opts Options) (string, error) {
	out, err := Process(ctx, []byte(code), opts)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// Process runs every phase over src. The verdict table is complete before
// the rewrite starts; the rewrite never consults the environment.
func Process(ctx context.Context, src []byte, opts Options) (*Outcome, error) {
	if len(strings.TrimSpace(string(src))) == 0 {
		return nil, ErrNotProcessable
	}

	u, err := source.Load(ctx, src)
	if err != nil {
		return nil, perrors.New(perrors.ParseFailed, "cannot parse C# source", err)
	}
	if u.Root() == nil || u.Root().Type() != syntax.KindCompilationUnit {
		return nil, ErrNotProcessable
	}
	if opts.RequireProtobuf && !ReferencesFramework(u) {
		return nil, ErrNotProcessable
	}

	env := resolve.NewEnvironment(u, opts.References)
	table := nullability.Analyze(u, env, nullability.Options{Guard: opts.Guard})

	rewritten, err := rewrite.Rewrite(ctx, u, table)
	if err != nil {
		return nil, perrors.New(perrors.ParseFailed, "cannot reparse annotated source", err)
	}
	final, err := rewrite.InjectHeader(ctx, rewritten)
	if err != nil {
		return nil, perrors.New(perrors.ParseFailed, "cannot reparse source with directive", err)
	}

	return &Outcome{Table: table, Result: final, Text: rewrite.Emit(final)}, nil
}
