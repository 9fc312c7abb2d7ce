package annotator

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	perrors "pbnrt/internal/errors"
	"pbnrt/internal/slogutil"
)

// Status is the outcome of one file in a batch.
type Status string

const (
	StatusAnnotated Status = "annotated"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// BatchOptions configure Batch.
type BatchOptions struct {
	Options
	// Exclude holds gitignore-style patterns matched against paths relative
	// to each root given to Batch.
	Exclude []string
	// Jobs bounds concurrency; 0 means one worker per CPU.
	Jobs int
	// DryRun computes the report without writing any file.
	DryRun bool
	Logger *slog.Logger
}

// FileReport describes what happened to one file.
type FileReport struct {
	Path        string `json:"path"`
	Status      Status `json:"status"`
	Annotations int    `json:"annotations"`
	Error       error  `json:"-"`
}

// Report is the result of a batch run. Files are sorted by path.
type Report struct {
	RunID string       `json:"runId"`
	Files []FileReport `json:"files"`
}

// Count returns how many files ended with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == s {
			n++
		}
	}
	return n
}

// Annotations returns the total number of markers inserted.
func (r *Report) Annotations() int {
	n := 0
	for _, f := range r.Files {
		n += f.Annotations
	}
	return n
}

// Batch annotates every C# file under paths. Per-file failures are recorded
// in the report; only cancellation or an unusable root aborts the run.
func Batch(ctx context.Context, paths []string, opts BatchOptions) (*Report, error) {
	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	logger = logger.With("run", runID)

	files, err := Discover(ctx, paths, opts.Exclude)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered files", "count", len(files))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		reports = make([]FileReport, 0, len(files))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep := processFile(gctx, path, opts, logger)
			if rep.Status == StatusFailed && gctx.Err() != nil {
				return gctx.Err()
			}
			mu.Lock()
			reports = append(reports, rep)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })
	return &Report{RunID: runID, Files: reports}, nil
}

func processFile(ctx context.Context, path string, opts BatchOptions, logger *slog.Logger) FileReport {
	rep := FileReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rep.Status = StatusSkipped
			return rep
		}
		rep.Status = StatusFailed
		rep.Error = perrors.New(perrors.IOFailed, "cannot read file", err).WithPath(path)
		logger.Warn("Cannot read file", "path", path, "error", err.Error())
		return rep
	}

	out, err := Process(ctx, data, opts.Options)
	if errors.Is(err, ErrNotProcessable) {
		logger.Info("Skipping file (not a processable protobuf file)", "path", path)
		rep.Status = StatusSkipped
		return rep
	}
	if err != nil {
		rep.Status = StatusFailed
		rep.Error = err
		logger.Warn("Cannot process file", "path", path, "error", err.Error())
		return rep
	}

	logger.Info("Processing file", "path", path, "annotations", out.Annotations())
	rep.Annotations = out.Annotations()
	if bytes.Equal([]byte(out.Text), data) {
		rep.Status = StatusUnchanged
		return rep
	}
	rep.Status = StatusAnnotated
	if opts.DryRun {
		return rep
	}

	if err := writeFile(path, out.Text); err != nil {
		rep.Status = StatusFailed
		rep.Error = perrors.New(perrors.IOFailed, "cannot write file", err).WithPath(path)
		logger.Warn("Cannot write file", "path", path, "error", err.Error())
	}
	return rep
}

// writeFile replaces path keeping its permissions.
func writeFile(path, text string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(text), mode)
}

// Discover expands paths into the C# files to process. Directories are
// walked recursively; explicit file arguments are kept whatever their
// extension. Exclude patterns apply to paths relative to the argument they
// were found under. The result is sorted and free of duplicates.
func Discover(ctx context.Context, paths []string, exclude []string) ([]string, error) {
	var ignore *gitignore.GitIgnore
	if len(exclude) > 0 {
		ignore = gitignore.CompileIgnoreLines(exclude...)
	}

	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, perrors.New(perrors.IOFailed, "cannot access path", err).WithPath(root)
		}
		if !info.IsDir() {
			if ignore == nil || !ignore.MatchesPath(filepath.ToSlash(filepath.Base(root))) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel == "." {
					return nil
				}
				if isHidden(d.Name()) || (ignore != nil && ignore.MatchesPath(rel+"/")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".cs") {
				return nil
			}
			if ignore != nil && ignore.MatchesPath(rel) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, perrors.New(perrors.IOFailed, "cannot walk directory", err).WithPath(root)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
