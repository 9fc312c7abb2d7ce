// Package slogutil holds pbnrt's slog handler and logger constructors.
//
// Records are written one per line:
//
//	TIMESTAMP [level] Message: path | key=value key=value
//
// The "path" attribute names the file a record is about and is printed right
// after the message; every other attribute goes to the key=value tail.
package slogutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// PathKey is the attribute rendered next to the message.
const PathKey = "path"

// Options configure a Handler.
type Options struct {
	Level slog.Leveler
	// Color highlights the level tag.
	Color bool
	// OmitTime drops the timestamp column.
	OmitTime bool
}

var levelColors = map[string]*color.Color{
	"debug": color.New(color.Faint),
	"info":  color.New(color.FgCyan),
	"warn":  color.New(color.FgYellow),
	"error": color.New(color.Bold, color.FgRed),
}

// Handler is a slog.Handler producing the line format.
type Handler struct {
	w    io.Writer
	opts Options
	// tail holds the pre-rendered attributes of WithAttrs calls.
	tail   string
	path   string
	prefix string
	mu     *sync.Mutex
}

// NewHandler creates a line handler writing to w. A nil Level means info.
func NewHandler(w io.Writer, opts Options) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &Handler{w: w, opts: opts, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats and writes the log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !h.opts.OmitTime && !r.Time.IsZero() {
		buf.WriteString(r.Time.UTC().Format(time.RFC3339))
		buf.WriteByte(' ')
	}
	buf.WriteString(h.levelTag(r.Level))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	path := h.path
	var tail strings.Builder
	tail.WriteString(h.tail)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == PathKey {
			path = a.Value.Resolve().String()
			return true
		}
		appendAttr(&tail, h.prefix, a)
		return true
	})

	if path != "" {
		buf.WriteString(": ")
		buf.WriteString(path)
	}
	if tail.Len() > 0 {
		buf.WriteString(" |")
		buf.WriteString(tail.String())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler that writes attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	var tail strings.Builder
	tail.WriteString(h.tail)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == PathKey {
			next.path = a.Value.Resolve().String()
			continue
		}
		appendAttr(&tail, h.prefix, a)
	}
	next.tail = tail.String()
	return &next
}

// WithGroup returns a handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *Handler) levelTag(level slog.Level) string {
	name := levelString(level)
	tag := "[" + name + "]"
	if !h.opts.Color {
		return tag
	}
	c := *levelColors[name]
	c.EnableColor()
	return c.Sprint(tag)
}

// appendAttr writes " key=value", flattening groups into dotted keys.
func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			appendAttr(b, prefix, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(v))
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

// formatValue renders v, quoting strings that would break the tail apart.
func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	}
	if s == "" || strings.ContainsAny(s, " =\"|\t\n") {
		return strconv.Quote(s)
	}
	return s
}
