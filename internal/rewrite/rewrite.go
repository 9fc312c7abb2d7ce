// Package rewrite applies nullability verdicts to a unit, injects the
// nullable directive and emits the final text.
package rewrite

import (
	"context"
	"fmt"

	"pbnrt/internal/nullability"
	"pbnrt/internal/source"
	"pbnrt/internal/syntax"
)

// Marker is the optional-type suffix.
const Marker = "?"

// Result is a rewritten unit and the edits that produced it.
type Result struct {
	Original *source.Unit
	Unit     *source.Unit
	// Edits are the marker insertions, in offsets of Original.
	Edits []source.Edit
	// Header is set once InjectHeader added the directive.
	Header bool
}

// Rewrite inserts the optional marker at every site of the original unit
// whose verdict is true and whose type is not already optional. Site ids are
// re-derived from the original tree; nothing is re-resolved.
//
// The marker goes right after the type node. tree-sitter keeps whitespace and
// comments out of the node, so trailing trivia ends up after the marker:
// "string? Name", never "string ?Name".
func Rewrite(ctx context.Context, u *source.Unit, table *nullability.Table) (*Result, error) {
	src := u.Source()
	var edits []source.Edit

	for _, s := range syntax.Sites(u.Root(), src) {
		optional, ok := table.Optional(s.ID)
		if !ok || !optional || s.Type == nil {
			continue
		}
		if syntax.IsNullableType(s.Type, src) {
			continue
		}
		edits = append(edits, source.Edit{Offset: s.Type.EndByte(), Text: Marker})
	}

	out, err := u.Derive(ctx, edits)
	if err != nil {
		return nil, fmt.Errorf("apply %d annotations: %w", len(edits), err)
	}
	return &Result{Original: u, Unit: out, Edits: edits}, nil
}
