package syntax

import (
	"strings"
	"unicode"
)

// NamePart is one dotted segment of a type name.
type NamePart struct {
	Name  string
	Arity int
}

// TypeName is the parsed textual form of a C# type reference such as
// "global::Google.Protobuf.ByteString" or "pbc::RepeatedField<string>".
type TypeName struct {
	// Alias is the qualifier before "::", e.g. "global" or "pb".
	Alias    string
	Parts    []NamePart
	Nullable bool
	Array    bool
	Pointer  bool
	// Tuple is set for tuple types, which never resolve to a named symbol.
	Tuple bool
}

// Last returns the final segment, or the zero part for an empty name.
func (t TypeName) Last() NamePart {
	if len(t.Parts) == 0 {
		return NamePart{}
	}
	return t.Parts[len(t.Parts)-1]
}

// Qualifier returns t without its final segment.
func (t TypeName) Qualifier() TypeName {
	q := TypeName{Alias: t.Alias}
	if len(t.Parts) > 1 {
		q.Parts = t.Parts[:len(t.Parts)-1]
	}
	return q
}

// Dotted joins the segment names with '.', ignoring generic arguments.
func (t TypeName) Dotted() string {
	names := make([]string, len(t.Parts))
	for i, p := range t.Parts {
		names[i] = p.Name
	}
	return strings.Join(names, ".")
}

// ParseTypeName parses type or member-access text. Whitespace and comments
// inside the text are ignored. Generic arguments are reduced to an arity.
func ParseTypeName(text string) TypeName {
	s := compact(text)
	var t TypeName

	for {
		switch {
		case strings.HasSuffix(s, "?"):
			t.Nullable = true
			s = strings.TrimSuffix(s, "?")
			continue
		case strings.HasSuffix(s, "*"):
			t.Pointer = true
			s = strings.TrimSuffix(s, "*")
			continue
		case strings.HasSuffix(s, "]"):
			if i := matchingOpen(s, '[', ']'); i >= 0 {
				t.Array = true
				s = s[:i]
				continue
			}
		}
		break
	}

	if strings.HasPrefix(s, "(") {
		t.Tuple = true
		return t
	}

	if i := strings.Index(s, "::"); i >= 0 && !strings.Contains(s[:i], "<") {
		t.Alias = s[:i]
		s = s[i+2:]
	}

	for _, seg := range splitTopLevel(s, '.') {
		if seg == "" {
			continue
		}
		part := NamePart{Name: seg}
		if i := strings.IndexByte(seg, '<'); i >= 0 {
			part.Name = seg[:i]
			args := strings.TrimSuffix(seg[i+1:], ">")
			part.Arity = len(splitTopLevel(args, ','))
		}
		t.Parts = append(t.Parts, part)
	}
	return t
}

// compact strips whitespace and comments.
func compact(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		switch {
		case strings.HasPrefix(text[i:], "//"):
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
		case unicode.IsSpace(rune(text[i])):
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}

// splitTopLevel splits s on sep, ignoring separators nested in <>, (), [].
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// matchingOpen returns the index of the bracket opening the trailing close
// bracket of s, or -1.
func matchingOpen(s string, open, close byte) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case close:
			depth++
		case open:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
