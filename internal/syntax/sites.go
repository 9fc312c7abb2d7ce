package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// SiteKind is the closed set of declaration kinds that can be annotated.
type SiteKind int

const (
	PropertySite SiteKind = iota
	FieldSite
	ParameterSite
)

func (k SiteKind) String() string {
	switch k {
	case PropertySite:
		return "property"
	case FieldSite:
		return "field"
	case ParameterSite:
		return "parameter"
	default:
		return "unknown"
	}
}

// SiteID identifies a declaration by its start byte offset in the original,
// unmodified source. It is the only key shared between analysis and rewrite.
type SiteID uint32

// Site is one property, field or parameter declaration of a unit.
type Site struct {
	ID   SiteID
	Kind SiteKind
	// Decl is the property_declaration, field_declaration or parameter node.
	Decl *sitter.Node
	// Type is the declared type node; nil when the grammar produced none
	// (e.g. an implicitly typed lambda parameter).
	Type *sitter.Node
	// Names holds the declared identifiers. Fields may declare several.
	Names []string
}

// Sites returns every annotatable declaration under root in document order.
// Both passes call it on the original tree so they derive identical ids.
func Sites(root *sitter.Node, src []byte) []Site {
	var sites []Site
	Walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case KindProperty:
			sites = append(sites, Site{
				ID:    SiteID(n.StartByte()),
				Kind:  PropertySite,
				Decl:  n,
				Type:  TypeNode(n),
				Names: []string{Text(NameNode(n), src)},
			})
		case KindField:
			decl := ChildOfKind(n, KindVariableDeclaration)
			site := Site{
				ID:   SiteID(n.StartByte()),
				Kind: FieldSite,
				Decl: n,
				Type: TypeNode(decl),
			}
			for _, v := range Children(decl) {
				if v.Type() == KindVariableDeclarator {
					site.Names = append(site.Names, Text(NameNode(v), src))
				}
			}
			sites = append(sites, site)
		case KindParameter:
			sites = append(sites, Site{
				ID:    SiteID(n.StartByte()),
				Kind:  ParameterSite,
				Decl:  n,
				Type:  TypeNode(n),
				Names: []string{Text(NameNode(n), src)},
			})
		}
		return true
	})
	return sites
}

// EnclosingMethod returns the method_declaration whose parameter list holds
// the parameter p, or nil for constructors, lambdas, delegates, local
// functions and operators.
func EnclosingMethod(p *sitter.Node) *sitter.Node {
	list := p.Parent()
	if list == nil || list.Type() != KindParameterList {
		return nil
	}
	m := list.Parent()
	if m == nil || m.Type() != KindMethod {
		return nil
	}
	return m
}

// Setter returns the set accessor of a property, or nil.
func Setter(prop *sitter.Node, src []byte) *sitter.Node {
	accessors := prop.ChildByFieldName("accessors")
	if accessors == nil {
		accessors = ChildOfKind(prop, KindAccessorList)
	}
	for _, a := range Children(accessors) {
		if a.Type() != KindAccessor {
			continue
		}
		if accessorKeyword(a, src) == "set" {
			return a
		}
	}
	return nil
}

// AccessorBody returns the block or expression body of an accessor, or nil
// for auto-implemented accessors such as "set;".
func AccessorBody(a *sitter.Node) *sitter.Node {
	if a == nil {
		return nil
	}
	if b := a.ChildByFieldName("body"); b != nil && (b.Type() == KindBlock || b.Type() == KindArrowExpression) {
		return b
	}
	for _, c := range Children(a) {
		if c.Type() == KindBlock || c.Type() == KindArrowExpression {
			return c
		}
	}
	return nil
}

func accessorKeyword(a *sitter.Node, src []byte) string {
	if name := a.ChildByFieldName("name"); name != nil {
		return Text(name, src)
	}
	for _, c := range Children(a) {
		if c.IsNamed() {
			continue
		}
		switch t := Text(c, src); t {
		case "get", "set", "init", "add", "remove":
			return t
		}
	}
	return ""
}
