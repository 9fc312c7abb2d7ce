package resolve

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"pbnrt/internal/syntax"
)

// Scope is the lexical context a type name is resolved in.
type Scope struct {
	Namespace string
	// Types lists the full names of the enclosing type declarations,
	// innermost first.
	Types        []string
	Usings       []string
	StaticUsings []string
	Aliases      map[string]syntax.TypeName
}

// ScopeAt computes the scope visible at node n: the enclosing namespace and
// types plus every using directive of the enclosing namespaces and the
// compilation unit.
func ScopeAt(n *sitter.Node, src []byte) *Scope {
	s := &Scope{Aliases: map[string]syntax.TypeName{}}

	var nsParts []string
	var typeNames []string
	foundNamespace := false

	for p := n.Parent(); p != nil; p = p.Parent() {
		switch {
		case syntax.IsTypeDeclaration(p):
			typeNames = append(typeNames, syntax.Text(syntax.NameNode(p), src))
		case p.Type() == syntax.KindNamespace:
			nsParts = append(nsParts, namespaceName(p, src))
			foundNamespace = true
			body := p.ChildByFieldName("body")
			if body == nil {
				body = syntax.ChildOfKind(p, "declaration_list")
			}
			s.addUsings(body, src)
		case p.Type() == syntax.KindFileScopedNamespace:
			nsParts = append(nsParts, namespaceName(p, src))
			foundNamespace = true
			s.addUsings(p, src)
		case p.Type() == syntax.KindCompilationUnit:
			s.addUsings(p, src)
			if !foundNamespace {
				// Older grammars attach the members of a file-scoped
				// namespace to the compilation unit as siblings.
				for _, c := range syntax.Children(p) {
					if c.Type() == syntax.KindFileScopedNamespace && c.StartByte() < n.StartByte() {
						nsParts = append(nsParts, namespaceName(c, src))
						s.addUsings(c, src)
					}
				}
			}
		}
	}

	for i, j := 0, len(nsParts)-1; i < j; i, j = i+1, j-1 {
		nsParts[i], nsParts[j] = nsParts[j], nsParts[i]
	}
	s.Namespace = strings.Join(nsParts, ".")

	// typeNames is innermost first; build full names outermost first.
	full := s.Namespace
	chain := make([]string, len(typeNames))
	for i := len(typeNames) - 1; i >= 0; i-- {
		full = join(full, typeNames[i])
		chain[i] = full
	}
	s.Types = chain
	return s
}

func namespaceName(ns *sitter.Node, src []byte) string {
	if name := ns.ChildByFieldName("name"); name != nil {
		return syntax.ParseTypeName(syntax.Text(name, src)).Dotted()
	}
	for _, c := range syntax.Children(ns) {
		switch c.Type() {
		case "identifier", "qualified_name":
			return syntax.ParseTypeName(syntax.Text(c, src)).Dotted()
		}
	}
	return ""
}

func (s *Scope) addUsings(container *sitter.Node, src []byte) {
	for _, c := range syntax.Children(container) {
		if c.Type() != syntax.KindUsingDirective {
			continue
		}
		s.addUsing(syntax.Text(c, src))
	}
}

// addUsing interprets the text of a using directive. Parsing the text keeps
// this independent of how the grammar version shapes the directive.
func (s *Scope) addUsing(text string) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	text = strings.TrimSpace(strings.TrimPrefix(text, "global "))
	text = strings.TrimSpace(strings.TrimPrefix(text, "using"))

	static := false
	if rest, ok := strings.CutPrefix(text, "static "); ok {
		static = true
		text = strings.TrimSpace(rest)
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "unsafe "))

	if alias, target, ok := strings.Cut(text, "="); ok {
		s.Aliases[strings.TrimSpace(alias)] = syntax.ParseTypeName(target)
		return
	}

	name := syntax.ParseTypeName(text).Dotted()
	if name == "" {
		return
	}
	if static {
		s.StaticUsings = append(s.StaticUsings, name)
		return
	}
	s.Usings = append(s.Usings, name)
}
