package resolve

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"pbnrt/internal/syntax"
)

//go:embed manifests/runtime.yaml
var runtimeManifest []byte

//go:embed manifests/protobuf.yaml
var protobufManifest []byte

// Manifest is a declarative list of types, used for the embedded runtime
// tables and for extra references given as YAML, TOML or JSON files.
type Manifest struct {
	Namespaces []ManifestNamespace `yaml:"namespaces" toml:"namespaces" json:"namespaces"`
}

// ManifestNamespace groups the types of one namespace.
type ManifestNamespace struct {
	Name  string         `yaml:"name" toml:"name" json:"name"`
	Types []ManifestType `yaml:"types" toml:"types" json:"types"`
}

// ManifestType describes one type. Name may be dotted ("Outer.Types.Inner")
// for nested types. Bases are fully qualified and may carry generic
// arguments, e.g. "Google.Protobuf.IMessage<T>".
type ManifestType struct {
	Name    string   `yaml:"name" toml:"name" json:"name"`
	Arity   int      `yaml:"arity,omitempty" toml:"arity,omitempty" json:"arity,omitempty"`
	Kind    string   `yaml:"kind,omitempty" toml:"kind,omitempty" json:"kind,omitempty"`
	Special string   `yaml:"special,omitempty" toml:"special,omitempty" json:"special,omitempty"`
	Bases   []string `yaml:"bases,omitempty" toml:"bases,omitempty" json:"bases,omitempty"`
}

// ManifestFormat selects the manifest decoder.
type ManifestFormat string

const (
	FormatYAML ManifestFormat = "yaml"
	FormatTOML ManifestFormat = "toml"
	FormatJSON ManifestFormat = "json"
)

// ParseManifest decodes a manifest in the given format.
func ParseManifest(data []byte, format ManifestFormat) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode yaml manifest: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("decode toml manifest: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode toml manifest: unknown key %s", undecoded[0])
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode json manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", format)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every type has a name.
func (m *Manifest) Validate() error {
	for _, ns := range m.Namespaces {
		for i, t := range ns.Types {
			if strings.TrimSpace(t.Name) == "" {
				return fmt.Errorf("namespace %q: type %d has no name", ns.Name, i)
			}
			if t.Arity < 0 {
				return fmt.Errorf("namespace %q: type %s has negative arity", ns.Name, t.Name)
			}
		}
	}
	return nil
}

// symbols converts the manifest into symbols tagged with origin.
func (m *Manifest) symbols(origin string) []*Symbol {
	var out []*Symbol
	for _, ns := range m.Namespaces {
		for _, t := range ns.Types {
			name := t.Name
			container := ""
			if i := strings.LastIndexByte(name, '.'); i >= 0 {
				container = join(ns.Name, name[:i])
				name = name[i+1:]
			}
			s := &Symbol{
				Name:      name,
				Namespace: ns.Name,
				Container: container,
				Arity:     t.Arity,
				Kind:      ParseKind(t.Kind),
				Special:   ParseSpecial(t.Special),
				Origin:    origin,
			}
			for _, b := range t.Bases {
				s.bases = append(s.bases, baseRef{name: syntax.ParseTypeName(b)})
			}
			out = append(out, s)
		}
	}
	return out
}

func (t *table) addManifest(m *Manifest, origin string) int {
	n := 0
	for _, s := range m.symbols(origin) {
		if t.add(s) {
			n++
		}
	}
	return n
}
