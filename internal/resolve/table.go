package resolve

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"pbnrt/internal/syntax"
)

// table is a flat symbol table keyed by full name plus arity.
type table struct {
	symbols    map[string]*Symbol
	namespaces map[string]bool
}

func newTable() *table {
	return &table{
		symbols:    map[string]*Symbol{},
		namespaces: map[string]bool{},
	}
}

// add registers s; an existing symbol with the same key is kept.
func (t *table) add(s *Symbol) bool {
	key := symbolKey(s.FullName(), s.Arity)
	if _, ok := t.symbols[key]; ok {
		return false
	}
	t.symbols[key] = s
	for ns := s.Namespace; ns != ""; ns = parentNamespace(ns) {
		t.namespaces[ns] = true
	}
	return true
}

// merge copies the symbols of other that t does not already have.
func (t *table) merge(other *table) {
	for _, s := range other.symbols {
		t.add(s)
	}
}

func (t *table) len() int {
	return len(t.symbols)
}

// harvest adds every type declared under root.
func harvest(t *table, root *sitter.Node, src []byte, origin string) int {
	n := 0
	syntax.Walk(root, func(node *sitter.Node) bool {
		if !syntax.IsTypeDeclaration(node) {
			return true
		}
		if s := declaredSymbol(node, src, origin); s != nil && t.add(s) {
			n++
		}
		return true
	})
	return n
}

func declaredSymbol(decl *sitter.Node, src []byte, origin string) *Symbol {
	name := syntax.Text(syntax.NameNode(decl), src)
	if name == "" {
		return nil
	}
	scope := ScopeAt(decl, src)

	s := &Symbol{
		Name:      name,
		Namespace: scope.Namespace,
		Arity:     typeArity(decl),
		Kind:      declKind(decl.Type()),
		Origin:    origin,
	}
	if len(scope.Types) > 0 {
		s.Container = scope.Types[0]
	}
	if s.FullName() == "System.String" {
		s.Special = SpecialString
	}

	for _, b := range baseTypes(decl) {
		s.bases = append(s.bases, baseRef{
			name:  syntax.ParseTypeName(syntax.Text(b, src)),
			scope: scope,
		})
	}
	return s
}

func declKind(kind string) Kind {
	switch kind {
	case syntax.KindStruct, syntax.KindRecordStruct:
		return KindStruct
	case syntax.KindInterface:
		return KindInterface
	case syntax.KindEnum:
		return KindEnum
	default:
		return KindClass
	}
}

func typeArity(decl *sitter.Node) int {
	params := decl.ChildByFieldName("type_parameters")
	if params == nil {
		params = syntax.ChildOfKind(decl, syntax.KindTypeParameterList)
	}
	n := 0
	for _, c := range syntax.Children(params) {
		if c.Type() == syntax.KindTypeParameter {
			n++
		}
	}
	return n
}

// baseTypes returns the type nodes of a declaration's base list. Enum base
// lists name the underlying integral type and are ignored.
func baseTypes(decl *sitter.Node) []*sitter.Node {
	if decl.Type() == syntax.KindEnum {
		return nil
	}
	list := syntax.ChildOfKind(decl, syntax.KindBaseList)
	if list == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		if c == nil {
			continue
		}
		if t := syntax.TypeNode(c); t != nil && !isTypeShaped(c) {
			out = append(out, t)
			continue
		}
		if isTypeShaped(c) {
			out = append(out, c)
		}
	}
	return out
}

func isTypeShaped(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "qualified_name", "generic_name", "alias_qualified_name":
		return true
	}
	return strings.HasSuffix(n.Type(), "_name")
}
