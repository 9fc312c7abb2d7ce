package resolve

import (
	"pbnrt/internal/source"
	"pbnrt/internal/syntax"
)

// predefined maps C# keyword types to their System type names.
var predefined = map[string]string{
	"string":  "System.String",
	"object":  "System.Object",
	"bool":    "System.Boolean",
	"byte":    "System.Byte",
	"sbyte":   "System.SByte",
	"char":    "System.Char",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"float":   "System.Single",
	"double":  "System.Double",
	"decimal": "System.Decimal",
	"nint":    "System.IntPtr",
	"nuint":   "System.UIntPtr",
	"void":    "System.Void",
}

// Environment resolves type syntax of one unit. It is read-only after
// NewEnvironment returns and only valid for the unit it was built from.
type Environment struct {
	unit *table
	refs *ReferenceSet
}

// NewEnvironment builds the environment for u from the types it declares and
// the reference set. A nil refs uses the embedded defaults only.
func NewEnvironment(u *source.Unit, refs *ReferenceSet) *Environment {
	if refs == nil {
		refs = DefaultReferences()
	}
	t := newTable()
	harvest(t, u.Root(), u.Source(), "unit")
	return &Environment{unit: t, refs: refs}
}

// Lookup finds a type by full dotted name and arity. Types declared in the
// unit shadow referenced ones.
func (e *Environment) Lookup(fullName string, arity int) *Symbol {
	key := symbolKey(fullName, arity)
	if s := e.unit.symbols[key]; s != nil {
		return s
	}
	return e.refs.table.symbols[key]
}

// ResolveText parses and resolves type text in scope.
func (e *Environment) ResolveText(text string, scope *Scope) *Symbol {
	return e.Resolve(syntax.ParseTypeName(text), scope)
}

// Resolve finds the symbol a type name denotes in scope, or nil when the name
// cannot be resolved. Nullable wrappers resolve to their underlying type;
// arrays, pointers and tuples never resolve.
func (e *Environment) Resolve(t syntax.TypeName, scope *Scope) *Symbol {
	if t.Tuple || t.Array || t.Pointer || len(t.Parts) == 0 {
		return nil
	}
	if scope == nil {
		scope = &Scope{}
	}

	last := t.Last()
	if t.Alias == "" && len(t.Parts) == 1 && last.Arity == 0 {
		if full, ok := predefined[last.Name]; ok {
			return e.Lookup(full, 0)
		}
	}

	dotted := t.Dotted()
	arity := last.Arity

	switch t.Alias {
	case "":
	case "global":
		return e.Lookup(dotted, arity)
	default:
		target, ok := scope.Aliases[t.Alias]
		if !ok {
			return nil
		}
		return e.Lookup(join(target.Dotted(), dotted), arity)
	}

	for _, typ := range scope.Types {
		if s := e.Lookup(join(typ, dotted), arity); s != nil {
			return s
		}
	}
	for ns := scope.Namespace; ; ns = parentNamespace(ns) {
		if s := e.Lookup(join(ns, dotted), arity); s != nil {
			return s
		}
		if ns == "" {
			break
		}
	}

	first := t.Parts[0]
	if target, ok := scope.Aliases[first.Name]; ok && first.Arity == 0 {
		if len(t.Parts) == 1 {
			return e.Lookup(target.Dotted(), target.Last().Arity)
		}
		rest := syntax.TypeName{Parts: t.Parts[1:]}
		if s := e.Lookup(join(target.Dotted(), rest.Dotted()), arity); s != nil {
			return s
		}
	}

	for _, u := range scope.Usings {
		if s := e.Lookup(join(u, dotted), arity); s != nil {
			return s
		}
	}
	return nil
}

// Interfaces returns every interface s implements, directly or through base
// types and base interfaces. The result does not include s itself.
func (e *Environment) Interfaces(s *Symbol) []*Symbol {
	if s == nil {
		return nil
	}
	seen := map[*Symbol]bool{s: true}
	var out []*Symbol

	var visit func(*Symbol)
	visit = func(sym *Symbol) {
		for _, b := range sym.bases {
			base := e.resolveBase(b)
			if base == nil || seen[base] {
				continue
			}
			seen[base] = true
			if base.Kind == KindInterface {
				out = append(out, base)
			}
			visit(base)
		}
	}
	visit(s)
	return out
}

func (e *Environment) resolveBase(b baseRef) *Symbol {
	if b.scope == nil {
		return e.Lookup(b.name.Dotted(), b.name.Last().Arity)
	}
	return e.Resolve(b.name, b.scope)
}

// IsMessage reports whether s implements Google.Protobuf.IMessage.
func (e *Environment) IsMessage(s *Symbol) bool {
	for _, i := range e.Interfaces(s) {
		if i.Name == "IMessage" && i.Namespace == FrameworkNamespace {
			return true
		}
	}
	return false
}

// IsString reports whether s is System.String.
func IsString(s *Symbol) bool {
	return s != nil && s.Special == SpecialString
}

// IsByteString reports whether s is the protobuf immutable byte sequence.
// The namespace check keeps unrelated ByteString types out.
func IsByteString(s *Symbol) bool {
	return s != nil && s.Name == "ByteString" && s.Namespace == FrameworkNamespace
}

// IsFrameworkCollection reports whether s is RepeatedField<T> or
// MapField<TKey, TValue> from the protobuf runtime.
func IsFrameworkCollection(s *Symbol) bool {
	if s == nil || !s.InFramework() {
		return false
	}
	return s.Name == "RepeatedField" || s.Name == "MapField"
}
