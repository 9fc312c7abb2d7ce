package nullability

import (
	"strings"

	"pbnrt/internal/resolve"
	"pbnrt/internal/syntax"
)

// Framework identifiers the rules key on.
const (
	unknownFieldsName  = "_unknownFields"
	equalsMethod       = "Equals"
	mergeFromMethod    = "MergeFrom"
	inputStreamType    = "CodedInputStream"
	notNullGuardMethod = "CheckNotNull"
	preconditionsType  = "ProtoPreconditions"
)

// Rule is one row of a per-kind rule list. Rules are evaluated top to bottom
// and the first whose When matches decides the verdict.
type Rule struct {
	Name string
	When func(*site) bool
	Then func(*site) bool
}

func always(v bool) func(*site) bool {
	return func(*site) bool { return v }
}

func anything(*site) bool { return true }

// PropertyRules decide property declarations.
var PropertyRules = []Rule{
	{Name: "static", When: isStatic, Then: always(false)},
	{Name: "string", When: isString, Then: unlessGuarded},
	{Name: "byte-string", When: isByteString, Then: unlessGuarded},
	{Name: "collection", When: isCollection, Then: always(false)},
	{Name: "message", When: isMessage, Then: always(true)},
	{Name: "default", When: anything, Then: always(false)},
}

// FieldRules decide field declarations.
var FieldRules = []Rule{
	{Name: "static", When: isStatic, Then: always(false)},
	{Name: "unknown-fields", When: isUnknownFields, Then: always(true)},
	{Name: "message", When: isMessage, Then: always(true)},
	{Name: "string-storage", When: isStringOrByteString, Then: always(true)},
	{Name: "default", When: anything, Then: always(false)},
}

// ParameterRules decide parameters by enclosing method name.
var ParameterRules = []Rule{
	{Name: "equals", When: inMethod(equalsMethod), Then: always(true)},
	{Name: "merge-from-stream", When: isMergeFromStream, Then: always(false)},
	{Name: "merge-from", When: inMethod(mergeFromMethod), Then: always(true)},
	{Name: "default", When: anything, Then: always(false)},
}

// rulesFor returns the rule list of a site kind.
func rulesFor(kind syntax.SiteKind) []Rule {
	switch kind {
	case syntax.PropertySite:
		return PropertyRules
	case syntax.FieldSite:
		return FieldRules
	default:
		return ParameterRules
	}
}

// evaluate runs the rule list and returns the verdict and the rule name.
func evaluate(rules []Rule, s *site) (bool, string) {
	for _, r := range rules {
		if r.When(s) {
			return r.Then(s), r.Name
		}
	}
	return false, "none"
}

// Const members are implicitly static.
func isStatic(s *site) bool {
	return syntax.HasModifier(s.Decl, s.src, "static") || syntax.HasModifier(s.Decl, s.src, "const")
}

func isString(s *site) bool {
	return resolve.IsString(s.symbol())
}

func isByteString(s *site) bool {
	return resolve.IsByteString(s.symbol())
}

func isStringOrByteString(s *site) bool {
	return isString(s) || isByteString(s)
}

func isCollection(s *site) bool {
	return resolve.IsFrameworkCollection(s.symbol())
}

func isMessage(s *site) bool {
	sym := s.symbol()
	return sym != nil && s.env.IsMessage(sym)
}

func isUnknownFields(s *site) bool {
	for _, n := range s.Names {
		if n == unknownFieldsName {
			return true
		}
	}
	return false
}

func inMethod(name string) func(*site) bool {
	return func(s *site) bool {
		return s.methodName() == name
	}
}

// isMergeFromStream matches the binary-input overload of MergeFrom by the
// parameter's type text.
func isMergeFromStream(s *site) bool {
	if s.methodName() != mergeFromMethod || s.Type == nil {
		return false
	}
	return strings.Contains(syntax.Text(s.Type, s.src), inputStreamType)
}

func unlessGuarded(s *site) bool {
	return !s.guarded()
}
