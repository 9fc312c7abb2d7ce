// Package resolve provides the type-resolution environment the nullability
// rules consult: which declared types are strings, byte strings, protobuf
// collections or protobuf messages.
package resolve

import (
	"strconv"
	"strings"

	"pbnrt/internal/syntax"
)

// FrameworkNamespace is the root namespace of the protobuf C# runtime.
const FrameworkNamespace = "Google.Protobuf"

// Kind is the declaration kind of a type symbol.
type Kind int

const (
	KindClass Kind = iota
	KindStruct
	KindInterface
	KindEnum
	KindDelegate
)

// ParseKind converts a manifest kind name. Unknown names map to KindClass.
func ParseKind(s string) Kind {
	switch strings.ToLower(s) {
	case "struct":
		return KindStruct
	case "interface":
		return KindInterface
	case "enum":
		return KindEnum
	case "delegate":
		return KindDelegate
	default:
		return KindClass
	}
}

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindDelegate:
		return "delegate"
	default:
		return "class"
	}
}

// Special marks the handful of runtime types the rules treat specially.
type Special int

const (
	SpecialNone Special = iota
	SpecialString
	SpecialObject
)

// ParseSpecial converts a manifest special-type name.
func ParseSpecial(s string) Special {
	switch strings.ToLower(s) {
	case "string":
		return SpecialString
	case "object":
		return SpecialObject
	default:
		return SpecialNone
	}
}

// Symbol is a resolved named type.
type Symbol struct {
	Name      string
	Namespace string
	// Container is the full name of the enclosing type for nested types.
	Container string
	Arity     int
	Kind      Kind
	Special   Special
	// Origin names where the symbol came from, e.g. "runtime" or a file path.
	Origin string

	bases []baseRef
}

// baseRef is an unresolved base-type reference together with the scope it
// must be resolved in. A nil scope means the name is fully qualified.
type baseRef struct {
	name  syntax.TypeName
	scope *Scope
}

// FullName returns the dotted name without generic arity.
func (s *Symbol) FullName() string {
	if s.Container != "" {
		return s.Container + "." + s.Name
	}
	return join(s.Namespace, s.Name)
}

// String returns the full name with an arity suffix for generic types.
func (s *Symbol) String() string {
	return symbolKey(s.FullName(), s.Arity)
}

// InFramework reports whether the symbol lives in a Google.Protobuf namespace.
func (s *Symbol) InFramework() bool {
	return InFrameworkNamespace(s.Namespace)
}

// InFrameworkNamespace reports whether ns is Google.Protobuf or one of its
// sub-namespaces.
func InFrameworkNamespace(ns string) bool {
	return ns == FrameworkNamespace || strings.HasPrefix(ns, FrameworkNamespace+".")
}

func symbolKey(fullName string, arity int) string {
	if arity > 0 {
		return fullName + "`" + strconv.Itoa(arity)
	}
	return fullName
}

func join(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}

// parentNamespace returns ns without its last segment.
func parentNamespace(ns string) string {
	if i := strings.LastIndexByte(ns, '.'); i >= 0 {
		return ns[:i]
	}
	return ""
}
