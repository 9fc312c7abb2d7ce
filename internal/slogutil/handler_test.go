package slogutil

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Options{OmitTime: true}))

	logger.Info("Processing file", "path", "Foo.cs", "annotations", 12)

	want := "[info] Processing file: Foo.cs | annotations=12\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHandler_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Info("hello")

	fields := strings.SplitN(buf.String(), " ", 2)
	if _, err := time.Parse(time.RFC3339, fields[0]); err != nil {
		t.Errorf("line does not start with an RFC 3339 timestamp: %q", buf.String())
	}
}

func TestHandler_Values(t *testing.T) {
	tests := []struct {
		name  string
		attrs []any
		want  string
	}{
		{"plain", []any{"types", 3}, "[info] msg | types=3\n"},
		{"quoted", []any{"error", "unexpected end of JSON input"}, "[info] msg | error=\"unexpected end of JSON input\"\n"},
		{"empty string", []any{"kind", ""}, "[info] msg | kind=\"\"\n"},
		{"error value", []any{"error", errors.New("boom")}, "[info] msg | error=boom\n"},
		{"duration", []any{"took", 1500 * time.Millisecond}, "[info] msg | took=1.5s\n"},
		{"group", []any{slog.Group("refs", "types", 4, "sources", 2)}, "[info] msg | refs.types=4 refs.sources=2\n"},
		{"no attrs", nil, "[info] msg\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			slog.New(NewHandler(&buf, Options{OmitTime: true})).Info("msg", tt.attrs...)
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, Options{OmitTime: true, Color: true})).Warn("careful")

	if !strings.Contains(buf.String(), "\x1b[") || !strings.Contains(buf.String(), "[warn]") {
		t.Errorf("expected a coloured level tag, got %q", buf.String())
	}
}

func TestHandler_Levels(t *testing.T) {
	tests := []struct {
		logFunc  func(*slog.Logger)
		expected string
	}{
		{func(l *slog.Logger) { l.Debug("debug") }, "[debug]"},
		{func(l *slog.Logger) { l.Info("info") }, "[info]"},
		{func(l *slog.Logger) { l.Warn("warn") }, "[warn]"},
		{func(l *slog.Logger) { l.Error("error") }, "[error]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, slog.LevelDebug)
			tt.logFunc(logger)

			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("expected debug/info to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "shown") {
		t.Errorf("expected warn message, got: %s", output)
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Options{OmitTime: true})).
		With("run", "abc", "path", "Foo.cs").
		WithGroup("ref")

	logger.Info("Loaded", "types", 3, "path", "types.yaml")

	want := "[info] Loaded: Foo.cs | run=abc ref.types=3 ref.path=types.yaml\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled for any level")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity  int
		quiet      bool
		configured slog.Level
		want       slog.Level
	}{
		{0, false, slog.LevelWarn, slog.LevelWarn},
		{1, false, slog.LevelWarn, slog.LevelInfo},
		{1, false, slog.LevelDebug, slog.LevelDebug},
		{2, false, slog.LevelError, slog.LevelDebug},
		{3, true, slog.LevelDebug, LevelSilent},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet, tt.configured); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d, %v, %v) = %v, want %v", tt.verbosity, tt.quiet, tt.configured, got, tt.want)
		}
	}
}

func TestNewFormatLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFormatLogger(&buf, "json", Options{Level: slog.LevelInfo})
	logger.Info("hello", "k", "v")

	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}
