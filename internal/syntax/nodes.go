// Package syntax holds the C# tree-sitter helpers shared by the analysis and
// rewrite passes.
package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds of the tree-sitter C# grammar used by the annotator.
const (
	KindCompilationUnit     = "compilation_unit"
	KindNamespace           = "namespace_declaration"
	KindFileScopedNamespace = "file_scoped_namespace_declaration"
	KindUsingDirective      = "using_directive"
	KindClass               = "class_declaration"
	KindStruct              = "struct_declaration"
	KindInterface           = "interface_declaration"
	KindRecord              = "record_declaration"
	KindRecordStruct        = "record_struct_declaration"
	KindEnum                = "enum_declaration"
	KindProperty            = "property_declaration"
	KindField               = "field_declaration"
	KindVariableDeclaration = "variable_declaration"
	KindVariableDeclarator  = "variable_declarator"
	KindParameter           = "parameter"
	KindParameterList       = "parameter_list"
	KindMethod              = "method_declaration"
	KindModifier            = "modifier"
	KindAccessorList        = "accessor_list"
	KindAccessor            = "accessor_declaration"
	KindBaseList            = "base_list"
	KindTypeParameterList   = "type_parameter_list"
	KindTypeParameter       = "type_parameter"
	KindInvocation          = "invocation_expression"
	KindNullableType        = "nullable_type"
	KindIdentifier          = "identifier"
	KindBlock               = "block"
	KindArrowExpression     = "arrow_expression_clause"
	KindComment             = "comment"
)

var typeDeclKinds = map[string]bool{
	KindClass:        true,
	KindStruct:       true,
	KindInterface:    true,
	KindRecord:       true,
	KindRecordStruct: true,
	KindEnum:         true,
}

// typeKinds lists node kinds that can appear in a type position.
var typeKinds = map[string]bool{
	"predefined_type":       true,
	"identifier":            true,
	"qualified_name":        true,
	"generic_name":          true,
	"alias_qualified_name":  true,
	"nullable_type":         true,
	"array_type":            true,
	"pointer_type":          true,
	"tuple_type":            true,
	"ref_type":              true,
	"scoped_type":           true,
	"function_pointer_type": true,
	"implicit_type":         true,
}

// IsTypeDeclaration reports whether n declares a class, struct, interface,
// record or enum.
func IsTypeDeclaration(n *sitter.Node) bool {
	return n != nil && typeDeclKinds[n.Type()]
}

// Text returns the source text covered by n.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// Children returns the direct children of n, named and anonymous.
func Children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first direct child of n with the given kind.
func ChildOfKind(n *sitter.Node, kind string) *sitter.Node {
	for _, c := range Children(n) {
		if c.Type() == kind {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), fn)
	}
}

// FindNodes returns all descendants of root (including root) of the given kinds.
func FindNodes(root *sitter.Node, kinds ...string) []*sitter.Node {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []*sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if want[n.Type()] {
			out = append(out, n)
		}
		return true
	})
	return out
}

// TypeNode returns the type child of a property, variable declaration or
// parameter node. It prefers the grammar's "type" field and falls back to the
// first type-shaped named child that precedes the declared name.
func TypeNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if t := n.ChildByFieldName("type"); t != nil {
		return t
	}
	name := n.ChildByFieldName("name")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		if name != nil && c.StartByte() >= name.StartByte() {
			break
		}
		if typeKinds[c.Type()] {
			return c
		}
	}
	return nil
}

// NameNode returns the identifier naming a declaration.
func NameNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if name := n.ChildByFieldName("name"); name != nil {
		return name
	}
	var last *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() == KindIdentifier {
			last = c
		}
	}
	return last
}

// Modifiers returns the modifier keywords of a declaration, e.g. "public",
// "static".
func Modifiers(n *sitter.Node, src []byte) []string {
	var mods []string
	for _, c := range Children(n) {
		if c.Type() == KindModifier {
			mods = append(mods, strings.TrimSpace(Text(c, src)))
		}
	}
	return mods
}

// HasModifier reports whether the declaration carries the modifier keyword.
func HasModifier(n *sitter.Node, src []byte, mod string) bool {
	for _, m := range Modifiers(n, src) {
		if m == mod {
			return true
		}
	}
	return false
}

// IsNullableType reports whether a type node is already annotated with '?'.
func IsNullableType(t *sitter.Node, src []byte) bool {
	if t == nil {
		return false
	}
	if t.Type() == KindNullableType {
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(Text(t, src)), "?")
}
