package rewrite

import (
	"bytes"
	"context"

	"pbnrt/internal/source"
	"pbnrt/internal/syntax"
)

// Directive enables nullable annotations without enabling warnings for the
// generated code itself.
const Directive = "#nullable enable annotations"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// InjectHeader prepends the directive and a line break ahead of the unit's
// leading trivia, so license headers and banners stay below it. It is a
// no-op when the root is not a compilation unit or when the file already
// starts with the directive line.
func InjectHeader(ctx context.Context, r *Result) (*Result, error) {
	u := r.Unit
	if u.Root() == nil || u.Root().Type() != syntax.KindCompilationUnit {
		return r, nil
	}

	src := u.Source()
	offset := 0
	if bytes.HasPrefix(src, utf8BOM) {
		offset = len(utf8BOM)
	}
	if hasDirective(src[offset:]) {
		return r, nil
	}

	edit := source.Edit{Offset: uint32(offset), Text: Directive + LineEnding(src)}
	out, err := u.Derive(ctx, []source.Edit{edit})
	if err != nil {
		return nil, err
	}
	return &Result{Original: r.Original, Unit: out, Edits: r.Edits, Header: true}, nil
}

// hasDirective reports whether text begins with the directive line.
func hasDirective(text []byte) bool {
	if !bytes.HasPrefix(text, []byte(Directive)) {
		return false
	}
	rest := text[len(Directive):]
	return len(rest) == 0 || rest[0] == '\n' || rest[0] == '\r'
}

// LineEnding returns "\r\n" when the first line break of src is CRLF and
// "\n" otherwise.
func LineEnding(src []byte) string {
	i := bytes.IndexByte(src, '\n')
	if i > 0 && src[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
