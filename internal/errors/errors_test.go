package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := New(ReferenceInvalid, "cannot decode reference", cause)

	if err.Code != ReferenceInvalid {
		t.Errorf("Code = %v, want %v", err.Code, ReferenceInvalid)
	}
	if err.Message != "cannot decode reference" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		wantParts []string
	}{
		{
			name:      "with cause and path",
			err:       New(IOFailed, "cannot write file", errors.New("permission denied")).WithPath("Foo.cs"),
			wantParts: []string{"IO_FAILED", "cannot write file", "(Foo.cs)", "permission denied"},
		},
		{
			name:      "without cause",
			err:       New(NotProcessable, "not a protobuf file", nil),
			wantParts: []string{"NOT_PROCESSABLE", "not a protobuf file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := New(ParseFailed, "parse", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if New(ParseFailed, "parse", nil).Unwrap() != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("processing: %w", New(ConfigInvalid, "bad guard", nil))
	if got := CodeOf(wrapped); got != ConfigInvalid {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, ConfigInvalid)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(NotProcessable); len(fixes) == 0 {
		t.Error("expected fixes for NOT_PROCESSABLE")
	}
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("expected no fixes for INTERNAL_ERROR, got %v", fixes)
	}
}
