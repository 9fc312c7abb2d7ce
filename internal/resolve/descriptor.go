package resolve

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/klauspost/compress/gzip"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"pbnrt/internal/syntax"
)

// messageBases are the interfaces protoc's C# output implements on every
// generated message class.
var messageBases = []string{
	"Google.Protobuf.IMessage<T>",
	"Google.Protobuf.IBufferMessage",
}

// ParseDescriptorSet decodes a serialized FileDescriptorSet, gunzipping it
// first when compressed is set.
func ParseDescriptorSet(data []byte, compressed bool) (*descriptorpb.FileDescriptorSet, error) {
	if compressed {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip descriptor set: %w", err)
		}
		defer func() { _ = zr.Close() }()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("read gzip descriptor set: %w", err)
		}
	}

	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode descriptor set: %w", err)
	}
	return &set, nil
}

// descriptorSymbols maps every message and enum of the set to the C# type
// protoc would generate for it.
func descriptorSymbols(set *descriptorpb.FileDescriptorSet, origin string) []*Symbol {
	var out []*Symbol
	for _, file := range set.GetFile() {
		ns := CSharpNamespace(file)
		for _, m := range file.GetMessageType() {
			out = appendMessage(out, m, ns, "", origin)
		}
		for _, e := range file.GetEnumType() {
			out = append(out, &Symbol{Name: e.GetName(), Namespace: ns, Kind: KindEnum, Origin: origin})
		}
	}
	return out
}

func appendMessage(out []*Symbol, m *descriptorpb.DescriptorProto, ns, container, origin string) []*Symbol {
	if m.GetOptions().GetMapEntry() {
		return out
	}
	s := &Symbol{
		Name:      m.GetName(),
		Namespace: ns,
		Container: container,
		Kind:      KindClass,
		Origin:    origin,
	}
	for _, b := range messageBases {
		s.bases = append(s.bases, baseRef{name: syntax.ParseTypeName(b)})
	}
	out = append(out, s)

	// Nested declarations live in the generated static "Types" class.
	nested := s.FullName() + ".Types"
	for _, child := range m.GetNestedType() {
		out = appendMessage(out, child, ns, nested, origin)
	}
	for _, e := range m.GetEnumType() {
		out = append(out, &Symbol{Name: e.GetName(), Namespace: ns, Container: nested, Kind: KindEnum, Origin: origin})
	}
	return out
}

// CSharpNamespace returns the namespace protoc uses for a file: the
// csharp_namespace option when set, otherwise the package in PascalCase.
func CSharpNamespace(file *descriptorpb.FileDescriptorProto) string {
	if ns := file.GetOptions().GetCsharpNamespace(); ns != "" {
		return ns
	}
	return pascalPackage(file.GetPackage())
}

// pascalPackage converts "foo.bar_baz.v1" to "Foo.BarBaz.V1".
func pascalPackage(pkg string) string {
	var b strings.Builder
	upper := true
	for _, r := range pkg {
		switch {
		case r == '_':
			upper = true
		case r == '.':
			b.WriteRune(r)
			upper = true
		case unicode.IsDigit(r):
			b.WriteRune(r)
			upper = true
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
