package annotator

import (
	"context"
	"errors"
	"testing"

	perrors "pbnrt/internal/errors"
	"pbnrt/internal/resolve"
	"pbnrt/internal/source"
	"pbnrt/internal/syntax"
	"pbnrt/internal/testutil"
)

func TestGoldenFixtures(t *testing.T) {
	testutil.ForEachFixture(t, func(t *testing.T, fixture *testutil.FixtureContext) {
		ctx := context.Background()
		refs, err := resolve.LoadReferences(ctx, fixture.ReferencePaths(t), nil)
		if err != nil {
			t.Fatal(err)
		}
		opts := DefaultOptions()
		opts.References = refs

		out, err := Process(ctx, fixture.Input(t), opts)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		testutil.CompareGolden(t, fixture, "output.cs", []byte(out.Text))

		// A second run over the output must not change it.
		again, err := ProcessContent(ctx, out.Text, opts)
		if err != nil {
			t.Fatalf("second run error = %v", err)
		}
		if again != out.Text {
			t.Errorf("not idempotent (-first +second):\n%s", testutil.LineDiff(out.Text, again))
		}
	})
}

func TestCrossFileReferences(t *testing.T) {
	fixture := testutil.LoadFixture(t, "crossfile")
	ctx := context.Background()

	// Without the reference the external message type cannot be resolved, so
	// only the string members and the Equals parameter are annotated.
	out, err := Process(ctx, fixture.Input(t), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if out.Annotations() != 3 {
		t.Errorf("Annotations() = %d without references, want 3", out.Annotations())
	}

	refs, err := resolve.LoadReferences(ctx, fixture.ReferencePaths(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.References = refs
	out, err = Process(ctx, fixture.Input(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if out.Annotations() != 5 {
		t.Errorf("Annotations() = %d with references, want 5", out.Annotations())
	}
}

// grpc_csharp_plugin output only mentions the runtime through
// global::Google.Protobuf type names in helper signatures. It is processed,
// but none of its parameters is a message accessor, so only the header
// changes.
func TestGrpcServiceFixture(t *testing.T) {
	fixture := testutil.LoadFixture(t, "grpc_service")
	ctx := context.Background()

	u, err := source.Load(ctx, fixture.Input(t))
	if err != nil {
		t.Fatal(err)
	}
	if !ReferencesFramework(u) {
		t.Fatal("ReferencesFramework() = false for a gRPC service file")
	}

	out, err := Process(ctx, fixture.Input(t), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if out.Annotations() != 0 || !out.Result.Header {
		t.Errorf("outcome = %d annotations, header %v; want only the header", out.Annotations(), out.Result.Header)
	}

	params := 0
	for _, d := range out.Table.Decisions() {
		if d.Kind == syntax.ParameterSite {
			params++
		}
		if d.Optional {
			t.Errorf("line %d %s %v marked optional by rule %q", d.Line, d.Kind, d.Names, d.Rule)
		}
	}
	if params < 10 {
		t.Errorf("found %d parameter sites, want the service and client method parameters", params)
	}
}

func TestProcessContent_NotProcessable(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"whitespace", " \n\t\r\n"},
		{"no protobuf", "namespace Plain { class A { public string Name { get; set; } } }"},
		{"protobuf in a comment", "// Google.Protobuf\nclass A { string a; }"},
		{"protobuf in a string", `class A { string a = "Google.Protobuf.IMessage"; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessContent(context.Background(), tt.code, DefaultOptions())
			if !errors.Is(err, ErrNotProcessable) {
				t.Fatalf("ProcessContent() = %q, %v; want ErrNotProcessable", got, err)
			}
			if perrors.CodeOf(err) != perrors.NotProcessable {
				t.Errorf("CodeOf() = %s", perrors.CodeOf(err))
			}
		})
	}
}

func TestProcessContent_RequireProtobufOff(t *testing.T) {
	opts := DefaultOptions()
	opts.RequireProtobuf = false

	got, err := ProcessContent(context.Background(), "class A { public string Name { get; set; } }\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	want := "#nullable enable annotations\nclass A { public string? Name { get; set; } }\n"
	if got != want {
		t.Errorf("ProcessContent() = %q, want %q", got, want)
	}

	if _, err := ProcessContent(context.Background(), "", opts); !errors.Is(err, ErrNotProcessable) {
		t.Errorf("empty input must stay unprocessable, got %v", err)
	}
}

func TestProcessContent_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ProcessContent(ctx, "using Google.Protobuf;\nclass A {}\n", DefaultOptions())
	if err == nil {
		// tree-sitter may finish a tiny parse before noticing cancellation.
		t.Skip("parse completed before cancellation was observed")
	}
	if perrors.CodeOf(err) != perrors.ParseFailed {
		t.Errorf("CodeOf() = %s, want %s", perrors.CodeOf(err), perrors.ParseFailed)
	}
}

func TestProcess_Outcome(t *testing.T) {
	out, err := Process(context.Background(), []byte(`using pb = global::Google.Protobuf;
class A {
  private pb::UnknownFieldSet _unknownFields;
  public int Id { get; set; }
}`), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if out.Annotations() != 1 || !out.Changed() || !out.Result.Header {
		t.Errorf("outcome = %d annotations, changed %v, header %v", out.Annotations(), out.Changed(), out.Result.Header)
	}
	if out.Table.Len() != 2 {
		t.Errorf("Table.Len() = %d, want 2", out.Table.Len())
	}
}
