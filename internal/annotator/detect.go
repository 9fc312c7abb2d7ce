package annotator

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"pbnrt/internal/resolve"
	"pbnrt/internal/source"
	"pbnrt/internal/syntax"
)

// ReferencesFramework reports whether u mentions the protobuf runtime
// namespace: a using directive, a qualified type name, or a namespace
// declaration inside it. protoc output always qualifies its references with
// global::Google.Protobuf.
func ReferencesFramework(u *source.Unit) bool {
	src := u.Source()
	found := false
	syntax.Walk(u.Root(), func(n *sitter.Node) bool {
		if found {
			return false
		}
		switch n.Type() {
		case syntax.KindUsingDirective, "qualified_name":
			found = mentionsFramework(syntax.Text(n, src))
		case syntax.KindNamespace, syntax.KindFileScopedNamespace:
			if name := n.ChildByFieldName("name"); name != nil {
				found = mentionsFramework(syntax.Text(name, src))
			}
		}
		return !found
	})
	return found
}

func mentionsFramework(text string) bool {
	words := strings.Fields(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	for len(words) > 0 {
		switch words[0] {
		case "global", "using", "static", "unsafe":
			words = words[1:]
			continue
		}
		break
	}
	name := strings.Join(words, "")
	if i := strings.Index(name, "="); i >= 0 {
		name = name[i+1:]
	}
	return resolve.InFrameworkNamespace(strings.TrimPrefix(name, "global::"))
}
