// Package source loads C# source text into immutable tree-sitter units.
package source

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// Unit is a parsed C# file. A Unit is never mutated after Load or Derive
// returns; transformations produce a new Unit.
type Unit struct {
	source []byte
	tree   *sitter.Tree
}

// Edit inserts Text at byte Offset of the unit it is applied to.
type Edit struct {
	Offset uint32
	Text   string
}

// Parser wraps a tree-sitter parser configured for C#.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new C# parser. A Parser is not safe for concurrent use.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &Parser{parser: p}
}

// Language returns the tree-sitter grammar used for every unit.
func Language() *sitter.Language {
	return csharp.GetLanguage()
}

// Load parses source and returns a new unit. The bytes are copied.
func Load(ctx context.Context, src []byte) (*Unit, error) {
	return NewParser().Parse(ctx, src)
}

// Parse parses source code and returns the unit.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Unit, error) {
	buf := make([]byte, len(src))
	copy(buf, src)

	tree, err := p.parser.ParseCtx(ctx, nil, parseInput(buf))
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return &Unit{source: buf, tree: tree}, nil
}

// Source returns the unit's text. Callers must not modify the slice.
func (u *Unit) Source() []byte {
	return u.source
}

// Root returns the root node of the unit's tree.
func (u *Unit) Root() *sitter.Node {
	return u.tree.RootNode()
}

// Text returns the source text covered by n.
func (u *Unit) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(u.source[n.StartByte():n.EndByte()])
}

// String returns the full text of the unit.
func (u *Unit) String() string {
	return string(u.source)
}

// Derive applies edits to a copy of the unit and returns the reparsed result.
// Offsets refer to the receiver's text. The receiver and its tree are left
// untouched.
func (u *Unit) Derive(ctx context.Context, edits []Edit) (*Unit, error) {
	if len(edits) == 0 {
		return u, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset > sorted[j].Offset
	})

	tree := u.tree.Copy()
	out := make([]byte, len(u.source))
	copy(out, u.source)

	// Highest offset first so the original coordinates of the remaining
	// edits stay valid.
	for _, e := range sorted {
		if int(e.Offset) > len(out) {
			return nil, fmt.Errorf("edit offset %d beyond end of source (%d bytes)", e.Offset, len(out))
		}
		start := pointAt(u.source, e.Offset)
		tree.Edit(sitter.EditInput{
			StartIndex:  e.Offset,
			OldEndIndex: e.Offset,
			NewEndIndex: e.Offset + uint32(len(e.Text)),
			StartPoint:  start,
			OldEndPoint: start,
			NewEndPoint: advance(start, e.Text),
		})

		next := make([]byte, 0, len(out)+len(e.Text))
		next = append(next, out[:e.Offset]...)
		next = append(next, e.Text...)
		next = append(next, out[e.Offset:]...)
		out = next
	}

	p := NewParser()
	newTree, err := p.parser.ParseCtx(ctx, tree, parseInput(out))
	if err != nil {
		return nil, fmt.Errorf("reparse error: %w", err)
	}
	return &Unit{source: out, tree: newTree}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseInput masks a leading UTF-8 byte order mark with spaces before the
// text reaches the parser. The grammar has no token for it, and masking in
// place keeps every node offset valid for the stored bytes.
func parseInput(src []byte) []byte {
	if !bytes.HasPrefix(src, utf8BOM) {
		return src
	}
	masked := make([]byte, len(src))
	copy(masked, src)
	copy(masked, "   ")
	return masked
}

// pointAt returns the row/column of a byte offset. Columns are byte counts,
// as tree-sitter expects.
func pointAt(src []byte, offset uint32) sitter.Point {
	var p sitter.Point
	for _, b := range src[:offset] {
		if b == '\n' {
			p.Row++
			p.Column = 0
			continue
		}
		p.Column++
	}
	return p
}

// advance returns the point reached after inserting text at p.
func advance(p sitter.Point, text string) sitter.Point {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.Row++
			p.Column = 0
			continue
		}
		p.Column++
	}
	return p
}
