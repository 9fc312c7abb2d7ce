package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		text string
		want TypeName
	}{
		{"string", TypeName{Parts: []NamePart{{Name: "string"}}}},
		{"string?", TypeName{Parts: []NamePart{{Name: "string"}}, Nullable: true}},
		{"global::Google.Protobuf.ByteString", TypeName{
			Alias: "global",
			Parts: []NamePart{{Name: "Google"}, {Name: "Protobuf"}, {Name: "ByteString"}},
		}},
		{"pbc::RepeatedField<global::Foo.Bar>", TypeName{
			Alias: "pbc",
			Parts: []NamePart{{Name: "RepeatedField", Arity: 1}},
		}},
		{"scg::IDictionary<string, scg::List<int>>", TypeName{
			Alias: "scg",
			Parts: []NamePart{{Name: "IDictionary", Arity: 2}},
		}},
		{"Outer<T>.Inner", TypeName{Parts: []NamePart{{Name: "Outer", Arity: 1}, {Name: "Inner"}}}},
		{"byte[]", TypeName{Parts: []NamePart{{Name: "byte"}}, Array: true}},
		{"int*", TypeName{Parts: []NamePart{{Name: "int"}}, Pointer: true}},
		{"(int a, string b)", TypeName{Tuple: true}},
		{"pb :: /* alias */ ByteString", TypeName{Alias: "pb", Parts: []NamePart{{Name: "ByteString"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseTypeName(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseTypeName(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestTypeName_Helpers(t *testing.T) {
	n := ParseTypeName("global::Google.Protobuf.WellKnownTypes.Timestamp")

	if got := n.Dotted(); got != "Google.Protobuf.WellKnownTypes.Timestamp" {
		t.Errorf("Dotted() = %q", got)
	}
	if got := n.Last().Name; got != "Timestamp" {
		t.Errorf("Last() = %q", got)
	}
	q := n.Qualifier()
	if q.Alias != "global" || q.Dotted() != "Google.Protobuf.WellKnownTypes" {
		t.Errorf("Qualifier() = %+v", q)
	}

	var empty TypeName
	if empty.Last() != (NamePart{}) {
		t.Error("Last() of an empty name should be the zero part")
	}
	if len(ParseTypeName("Single").Qualifier().Parts) != 0 {
		t.Error("Qualifier() of a single segment should be empty")
	}
}

func TestCompact(t *testing.T) {
	tests := map[string]string{
		"a . b":              "a.b",
		"a /* x */.b":        "a.b",
		"a // tail\n.b":      "a.b",
		"List< int >":        "List<int>",
		"broken /* comment":  "broken",
		"\tglobal::X.Y\r\n":  "global::X.Y",
	}
	for in, want := range tests {
		if got := compact(in); got != want {
			t.Errorf("compact(%q) = %q, want %q", in, got, want)
		}
	}
}
