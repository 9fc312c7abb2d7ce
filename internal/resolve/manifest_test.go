package resolve

import (
	"testing"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name   string
		format ManifestFormat
		data   string
	}{
		{
			name:   "yaml",
			format: FormatYAML,
			data: `namespaces:
  - name: Acme.Common
    types:
      - {name: Money, bases: ["Google.Protobuf.IMessage<Acme.Common.Money>"]}
      - {name: Money.Types.Currency, kind: enum}
      - {name: Box, arity: 1}
`,
		},
		{
			name:   "toml",
			format: FormatTOML,
			data: `[[namespaces]]
name = "Acme.Common"

[[namespaces.types]]
name = "Money"
bases = ["Google.Protobuf.IMessage<Acme.Common.Money>"]

[[namespaces.types]]
name = "Money.Types.Currency"
kind = "enum"

[[namespaces.types]]
name = "Box"
arity = 1
`,
		},
		{
			name:   "json",
			format: FormatJSON,
			data: `{"namespaces": [{"name": "Acme.Common", "types": [
  {"name": "Money", "bases": ["Google.Protobuf.IMessage<Acme.Common.Money>"]},
  {"name": "Money.Types.Currency", "kind": "enum"},
  {"name": "Box", "arity": 1}
]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("ParseManifest() error = %v", err)
			}

			syms := m.symbols("test")
			if len(syms) != 3 {
				t.Fatalf("got %d symbols, want 3", len(syms))
			}
			if got := syms[0].FullName(); got != "Acme.Common.Money" {
				t.Errorf("symbol 0 = %q", got)
			}
			if got := syms[1].FullName(); got != "Acme.Common.Money.Types.Currency" || syms[1].Kind != KindEnum {
				t.Errorf("symbol 1 = %q (%s)", got, syms[1].Kind)
			}
			if syms[1].Container != "Acme.Common.Money.Types" {
				t.Errorf("symbol 1 container = %q", syms[1].Container)
			}
			if syms[2].String() != "Acme.Common.Box`1" {
				t.Errorf("symbol 2 = %q", syms[2].String())
			}

			tbl := newTable()
			tbl.merge(DefaultReferences().table)
			tbl.addManifest(m, "test")
			env := &Environment{unit: newTable(), refs: &ReferenceSet{table: tbl}}
			if !env.IsMessage(env.Lookup("Acme.Common.Money", 0)) {
				t.Error("Money should be a message through its manifest base")
			}
		})
	}
}

func TestParseManifest_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		format ManifestFormat
		data   string
	}{
		{"yaml unknown key", FormatYAML, "namespaces:\n  - name: A\n    typez: []\n"},
		{"yaml missing name", FormatYAML, "namespaces:\n  - name: A\n    types:\n      - {kind: enum}\n"},
		{"toml unknown key", FormatTOML, "[[namespaces]]\nname = \"A\"\nextra = 1\n"},
		{"json unknown key", FormatJSON, `{"namespaces": [], "version": 2}`},
		{"json negative arity", FormatJSON, `{"namespaces": [{"name": "A", "types": [{"name": "B", "arity": -1}]}]}`},
		{"json syntax", FormatJSON, `{"namespaces": [`},
		{"unknown format", ManifestFormat("xml"), "<namespaces/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseManifest([]byte(tt.data), tt.format); err == nil {
				t.Error("ParseManifest() should fail")
			}
		})
	}
}

func TestEmbeddedManifests(t *testing.T) {
	refs := DefaultReferences()
	if refs.Len() < 50 {
		t.Errorf("embedded tables hold %d types, expected the runtime and protobuf sets", refs.Len())
	}
	for _, name := range []string{
		"System.String",
		"System.Object",
		"Google.Protobuf.IMessage",
		"Google.Protobuf.ByteString",
		"Google.Protobuf.ProtoPreconditions",
		"Google.Protobuf.CodedInputStream",
		"Google.Protobuf.WellKnownTypes.Timestamp",
		"Google.Protobuf.WellKnownTypes.Option",
		"Google.Protobuf.WellKnownTypes.Mixin",
		"Google.Protobuf.WellKnownTypes.NullValue",
		"Google.Protobuf.Reflection.FileDescriptorProto",
		"Google.Protobuf.Reflection.FeatureSet",
		"Google.Protobuf.Reflection.FileDescriptor",
	} {
		if refs.Lookup(name, 0) == nil {
			t.Errorf("Lookup(%q) = nil", name)
		}
	}
	if !IsString(refs.Lookup("System.String", 0)) {
		t.Error("System.String must be marked as the string type")
	}
	if refs.Lookup("Google.Protobuf.Collections.RepeatedField", 1) == nil {
		t.Error("RepeatedField`1 missing")
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"":          KindClass,
		"class":     KindClass,
		"struct":    KindStruct,
		"Interface": KindInterface,
		"enum":      KindEnum,
		"delegate":  KindDelegate,
	}
	for in, want := range tests {
		if got := ParseKind(in); got != want {
			t.Errorf("ParseKind(%q) = %s, want %s", in, got, want)
		}
	}
}
