package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	perrors "pbnrt/internal/errors"
	"pbnrt/internal/slogutil"
	"pbnrt/internal/source"
)

// ReferenceSet is the set of externally declared types available to every
// unit: the base runtime, the protobuf runtime and any extra references. It
// is immutable once built and may be shared across goroutines.
type ReferenceSet struct {
	table   *table
	sources []string
	invalid []*perrors.Error
}

var (
	defaultOnce sync.Once
	defaultRefs *ReferenceSet
)

// DefaultReferences returns the embedded runtime and protobuf tables plus
// the message and enum types of the runtime's own .proto files.
func DefaultReferences() *ReferenceSet {
	defaultOnce.Do(func() {
		t := newTable()
		for _, m := range []struct {
			origin string
			data   []byte
		}{
			{"runtime", runtimeManifest},
			{"protobuf", protobufManifest},
		} {
			parsed, err := ParseManifest(m.data, FormatYAML)
			if err != nil {
				panic(fmt.Sprintf("embedded %s manifest: %v", m.origin, err))
			}
			t.addManifest(parsed, m.origin)
		}
		for _, s := range descriptorSymbols(frameworkDescriptorSet(), "protobuf") {
			t.add(s)
		}
		defaultRefs = &ReferenceSet{table: t, sources: []string{"runtime", "protobuf"}}
	})
	return defaultRefs
}

// Len returns the number of known types.
func (r *ReferenceSet) Len() int {
	return r.table.len()
}

// Sources lists the origins that contributed types, in load order.
func (r *ReferenceSet) Sources() []string {
	out := make([]string, len(r.sources))
	copy(out, r.sources)
	return out
}

// Invalid returns the references that were rejected, as REFERENCE_INVALID
// errors carrying the path, in load order.
func (r *ReferenceSet) Invalid() []*perrors.Error {
	out := make([]*perrors.Error, len(r.invalid))
	copy(out, r.invalid)
	return out
}

// Lookup finds a referenced type by full name and arity.
func (r *ReferenceSet) Lookup(fullName string, arity int) *Symbol {
	return r.table.symbols[symbolKey(fullName, arity)]
}

// LoadReferences extends the default references with the given files. A
// path that does not exist is skipped silently. A directory or a file that
// cannot be read or decoded is skipped with a warning and recorded in
// Invalid. Neither is fatal: resolution proceeds with fewer known types.
func LoadReferences(ctx context.Context, paths []string, logger *slog.Logger) (*ReferenceSet, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	base := DefaultReferences()
	if len(paths) == 0 {
		return base, nil
	}

	t := newTable()
	t.merge(base.table)
	sources := base.Sources()
	var invalid []*perrors.Error
	reject := func(path, message string, err error) {
		invalid = append(invalid, perrors.New(perrors.ReferenceInvalid, message, err).WithPath(path))
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("Reference not found, skipping", "path", path)
			} else {
				logger.Warn("Cannot stat reference, skipping", "path", path, "error", err.Error())
				reject(path, "cannot stat reference", err)
			}
			continue
		}
		if info.IsDir() {
			logger.Warn("Reference is a directory, skipping", "path", path)
			reject(path, "reference is a directory", nil)
			continue
		}

		n, err := loadReference(ctx, t, path)
		if err != nil {
			logger.Warn("Invalid reference, skipping", "path", path, "error", err.Error())
			reject(path, "invalid reference", err)
			continue
		}
		logger.Debug("Loaded reference", "path", path, "types", n)
		sources = append(sources, path)
	}

	return &ReferenceSet{table: t, sources: sources, invalid: invalid}, nil
}

// ReferenceKind classifies a reference file by extension.
type ReferenceKind string

const (
	RefCSharp        ReferenceKind = "csharp"
	RefManifest      ReferenceKind = "manifest"
	RefDescriptorSet ReferenceKind = "descriptor-set"
	RefUnknown       ReferenceKind = "unknown"
)

// ClassifyReference returns the kind of a reference path, the manifest
// format for manifests, and whether the file is gzip-compressed.
func ClassifyReference(path string) (ReferenceKind, ManifestFormat, bool) {
	lower := strings.ToLower(path)
	compressed := strings.HasSuffix(lower, ".gz")
	lower = strings.TrimSuffix(lower, ".gz")

	switch filepath.Ext(lower) {
	case ".cs":
		return RefCSharp, "", compressed
	case ".yaml", ".yml":
		return RefManifest, FormatYAML, compressed
	case ".toml":
		return RefManifest, FormatTOML, compressed
	case ".json":
		return RefManifest, FormatJSON, compressed
	case ".pb", ".binpb", ".desc", ".protoset":
		return RefDescriptorSet, "", compressed
	default:
		return RefUnknown, "", compressed
	}
}

func loadReference(ctx context.Context, t *table, path string) (int, error) {
	kind, format, compressed := ClassifyReference(path)
	if kind == RefUnknown {
		return 0, fmt.Errorf("unsupported reference type: %s", filepath.Ext(path))
	}
	if compressed && kind != RefDescriptorSet {
		return 0, fmt.Errorf("compressed references must be descriptor sets")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	switch kind {
	case RefCSharp:
		u, err := source.Load(ctx, data)
		if err != nil {
			return 0, err
		}
		return harvest(t, u.Root(), u.Source(), path), nil
	case RefManifest:
		m, err := ParseManifest(data, format)
		if err != nil {
			return 0, err
		}
		return t.addManifest(m, path), nil
	default:
		set, err := ParseDescriptorSet(data, compressed)
		if err != nil {
			return 0, err
		}
		n := 0
		for _, s := range descriptorSymbols(set, path) {
			if t.add(s) {
				n++
			}
		}
		return n, nil
	}
}
