// Package nullability decides which declarations of protobuf-generated C#
// may legitimately hold null.
package nullability

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"pbnrt/internal/resolve"
	"pbnrt/internal/source"
	"pbnrt/internal/syntax"
)

// GuardMode selects how a setter's not-null guard is detected.
type GuardMode string

const (
	// GuardSymbol resolves CheckNotNull invocations in the setter body.
	GuardSymbol GuardMode = "symbol"
	// GuardText searches the setter's text for "CheckNotNull".
	GuardText GuardMode = "text"
)

// ParseGuardMode validates a guard mode name. The empty string selects
// GuardSymbol.
func ParseGuardMode(s string) (GuardMode, error) {
	switch GuardMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", GuardSymbol:
		return GuardSymbol, nil
	case GuardText:
		return GuardText, nil
	default:
		return "", fmt.Errorf("unknown guard mode %q (want %q or %q)", s, GuardSymbol, GuardText)
	}
}

// Options tune the analysis.
type Options struct {
	Guard GuardMode
}

// Analyze classifies every property, field and parameter of u. It only reads
// the unit and the environment; a nil env resolves against the embedded
// runtime tables only.
func Analyze(u *source.Unit, env *resolve.Environment, opts Options) *Table {
	if opts.Guard == "" {
		opts.Guard = GuardSymbol
	}
	if env == nil {
		env = resolve.NewEnvironment(u, nil)
	}
	src := u.Source()
	t := newTable()

	for _, s := range syntax.Sites(u.Root(), src) {
		st := &site{Site: s, src: src, env: env, guard: opts.Guard}
		optional, rule := evaluate(rulesFor(s.Kind), st)
		t.record(Decision{
			ID:              s.ID,
			Kind:            s.Kind,
			Names:           s.Names,
			TypeText:        syntax.Text(s.Type, src),
			Rule:            rule,
			Optional:        optional,
			AlreadyOptional: syntax.IsNullableType(s.Type, src),
			Line:            int(s.Decl.StartPoint().Row) + 1,
		})
	}
	return t
}

// site carries one declaration through the rule list, memoizing its scope
// and resolved type.
type site struct {
	syntax.Site
	src   []byte
	env   *resolve.Environment
	guard GuardMode

	scope    *resolve.Scope
	resolved bool
	sym      *resolve.Symbol
}

func (s *site) scopeOf() *resolve.Scope {
	if s.scope == nil {
		s.scope = resolve.ScopeAt(s.Decl, s.src)
	}
	return s.scope
}

// symbol returns the resolved declared type, or nil when it is unresolvable.
func (s *site) symbol() *resolve.Symbol {
	if !s.resolved {
		s.resolved = true
		if s.Type != nil {
			s.sym = s.env.ResolveText(syntax.Text(s.Type, s.src), s.scopeOf())
		}
	}
	return s.sym
}

func (s *site) methodName() string {
	if s.Kind != syntax.ParameterSite {
		return ""
	}
	return syntax.Text(syntax.NameNode(syntax.EnclosingMethod(s.Decl)), s.src)
}

// guarded reports whether the property's setter rejects null.
func (s *site) guarded() bool {
	setter := syntax.Setter(s.Decl, s.src)
	body := syntax.AccessorBody(setter)
	if body == nil {
		return false
	}
	if s.guard == GuardText {
		return strings.Contains(syntax.Text(setter, s.src), notNullGuardMethod)
	}
	return hasGuardCall(body, s)
}

// hasGuardCall looks for an invocation of CheckNotNull that is either
// unqualified (or qualified by this/base) or made through the protobuf
// ProtoPreconditions class.
func hasGuardCall(body *sitter.Node, s *site) bool {
	for _, call := range syntax.FindNodes(body, syntax.KindInvocation) {
		callee := call.ChildByFieldName("function")
		if callee == nil {
			callee = call.NamedChild(0)
		}
		if callee == nil {
			continue
		}

		name := syntax.ParseTypeName(syntax.Text(callee, s.src))
		if name.Last().Name != notNullGuardMethod {
			continue
		}
		qualifier := name.Qualifier()
		if len(qualifier.Parts) == 0 && qualifier.Alias == "" {
			return true
		}
		if qualifier.Alias == "" && len(qualifier.Parts) == 1 {
			switch qualifier.Parts[0].Name {
			case "this", "base":
				return true
			}
		}

		if sym := s.env.Resolve(qualifier, s.scopeOf()); sym != nil {
			if sym.Name == preconditionsType && sym.InFramework() {
				return true
			}
			continue
		}
		if qualifier.Last().Name == preconditionsType {
			return true
		}
	}
	return false
}
