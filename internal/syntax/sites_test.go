package syntax

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pbnrt/internal/source"
)

func load(t *testing.T, code string) *source.Unit {
	t.Helper()
	u, err := source.Load(context.Background(), []byte(code))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return u
}

const sample = `namespace Demo {
  public sealed class Msg {
    private static readonly int counter_ = 0;
    private string a_, b_;
    public string Name { get { return a_; } set { a_ = value; } }
    public Msg(Msg other) { }
    public bool Equals(Msg other) { return true; }
    public void Run() {
      System.Func<int, int> f = (int x) => x;
      string local = "";
    }
  }
}`

func TestSites(t *testing.T) {
	u := load(t, sample)
	sites := Sites(u.Root(), u.Source())

	type row struct {
		Kind  string
		Type  string
		Names []string
	}
	var got []row
	for _, s := range sites {
		got = append(got, row{Kind: s.Kind.String(), Type: u.Text(s.Type), Names: s.Names})
	}

	want := []row{
		{Kind: "field", Type: "int", Names: []string{"counter_"}},
		{Kind: "field", Type: "string", Names: []string{"a_", "b_"}},
		{Kind: "property", Type: "string", Names: []string{"Name"}},
		{Kind: "parameter", Type: "Msg", Names: []string{"other"}},
		{Kind: "parameter", Type: "Msg", Names: []string{"other"}},
		{Kind: "parameter", Type: "int", Names: []string{"x"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sites() mismatch (-want +got):\n%s", diff)
	}

	seen := map[SiteID]bool{}
	for _, s := range sites {
		if seen[s.ID] {
			t.Errorf("duplicate site id %d", s.ID)
		}
		seen[s.ID] = true
		if SiteID(s.Decl.StartByte()) != s.ID {
			t.Errorf("site id %d does not match declaration start %d", s.ID, s.Decl.StartByte())
		}
	}
}

func TestSites_Stable(t *testing.T) {
	u := load(t, sample)
	first := Sites(u.Root(), u.Source())
	second := Sites(u.Root(), u.Source())
	if len(first) != len(second) {
		t.Fatalf("site count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Kind != second[i].Kind {
			t.Errorf("site %d differs between walks", i)
		}
	}
}

func TestEnclosingMethod(t *testing.T) {
	u := load(t, sample)
	var methods []string
	for _, s := range Sites(u.Root(), u.Source()) {
		if s.Kind != ParameterSite {
			continue
		}
		m := EnclosingMethod(s.Decl)
		methods = append(methods, u.Text(NameNode(m)))
	}
	// Constructor and lambda parameters have no enclosing method.
	want := []string{"", "Equals", ""}
	if diff := cmp.Diff(want, methods); diff != "" {
		t.Errorf("EnclosingMethod() mismatch (-want +got):\n%s", diff)
	}
}

func TestModifiers(t *testing.T) {
	u := load(t, sample)
	sites := Sites(u.Root(), u.Source())

	if !HasModifier(sites[0].Decl, u.Source(), "static") {
		t.Errorf("counter_ should be static, modifiers = %v", Modifiers(sites[0].Decl, u.Source()))
	}
	if HasModifier(sites[1].Decl, u.Source(), "static") {
		t.Error("a_ should not be static")
	}
	if diff := cmp.Diff([]string{"private", "static", "readonly"}, Modifiers(sites[0].Decl, u.Source())); diff != "" {
		t.Errorf("Modifiers() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetter(t *testing.T) {
	u := load(t, `class A {
  string Guarded { get { return x; } set { x = Check(value); } }
  string Auto { get; set; }
  string ReadOnly { get { return x; } }
  string Arrow { get => x; set => x = value; }
}`)
	src := u.Source()

	var bodies []string
	for _, s := range Sites(u.Root(), src) {
		if s.Kind != PropertySite {
			continue
		}
		body := AccessorBody(Setter(s.Decl, src))
		bodies = append(bodies, u.Text(body))
	}

	want := []string{"{ x = Check(value); }", "", "", "=> x = value"}
	if diff := cmp.Diff(want, bodies); diff != "" {
		t.Errorf("setter bodies mismatch (-want +got):\n%s", diff)
	}
}

func TestIsNullableType(t *testing.T) {
	u := load(t, `class A { string? a; string b; int? c; }`)
	var got []bool
	for _, s := range Sites(u.Root(), u.Source()) {
		got = append(got, IsNullableType(s.Type, u.Source()))
	}
	if diff := cmp.Diff([]bool{true, false, true}, got); diff != "" {
		t.Errorf("IsNullableType() mismatch (-want +got):\n%s", diff)
	}
	if IsNullableType(nil, nil) {
		t.Error("nil type is not nullable")
	}
}

func TestChildrenNil(t *testing.T) {
	if Children(nil) != nil {
		t.Error("Children(nil) should be nil")
	}
	if ChildOfKind(nil, KindBlock) != nil {
		t.Error("ChildOfKind(nil) should be nil")
	}
	if Text(nil, nil) != "" {
		t.Error("Text(nil) should be empty")
	}
}

func TestFindNodes(t *testing.T) {
	u := load(t, sample)
	got := FindNodes(u.Root(), KindClass, KindMethod)
	if len(got) != 3 {
		t.Errorf("FindNodes() found %d nodes, want 3 (class + 2 methods)", len(got))
	}
}
