package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"pbnrt/internal/annotator"
	perrors "pbnrt/internal/errors"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

type styles struct {
	heading   *color.Color
	annotated *color.Color
	unchanged *color.Color
	skipped   *color.Color
	failed    *color.Color
	optional  *color.Color
	dim       *color.Color
}

func newStyles() styles {
	return styles{
		heading:   color.New(color.Bold),
		annotated: color.New(color.FgHiGreen),
		unchanged: color.New(color.FgHiBlue),
		skipped:   color.New(color.FgYellow),
		failed:    color.New(color.Bold, color.FgRed),
		optional:  color.New(color.FgHiGreen),
		dim:       color.New(color.Faint),
	}
}

func (s styles) status(st annotator.Status) *color.Color {
	switch st {
	case annotator.StatusAnnotated:
		return s.annotated
	case annotator.StatusUnchanged:
		return s.unchanged
	case annotator.StatusSkipped:
		return s.skipped
	default:
		return s.failed
	}
}

// reportJSON is the machine-readable form of a batch report.
type reportJSON struct {
	RunID             string           `json:"runId"`
	DryRun            bool             `json:"dryRun"`
	InvalidReferences []invalidRefJSON `json:"invalidReferences,omitempty"`
	Files             []fileReportJSON `json:"files"`
	Summary           map[string]int   `json:"summary"`
}

type invalidRefJSON struct {
	Path  string              `json:"path"`
	Error string              `json:"error"`
	Code  perrors.ErrorCode   `json:"code"`
	Fixes []perrors.FixAction `json:"suggestedFixes,omitempty"`
}

type fileReportJSON struct {
	Path        string              `json:"path"`
	Status      annotator.Status    `json:"status"`
	Annotations int                 `json:"annotations"`
	Error       string              `json:"error,omitempty"`
	Code        perrors.ErrorCode   `json:"code,omitempty"`
	Fixes       []perrors.FixAction `json:"suggestedFixes,omitempty"`
}

// writeReport prints the batch report. invalid lists the reference files
// that were rejected while loading.
func writeReport(w io.Writer, report *annotator.Report, invalid []*perrors.Error, format OutputFormat, dryRun bool) error {
	switch format {
	case FormatJSON:
		out := reportJSON{RunID: report.RunID, DryRun: dryRun, Summary: map[string]int{}}
		for _, e := range invalid {
			out.InvalidReferences = append(out.InvalidReferences, invalidRefJSON{
				Path:  e.Path,
				Error: e.Error(),
				Code:  e.Code,
				Fixes: e.SuggestedFixes,
			})
		}
		for _, st := range []annotator.Status{annotator.StatusAnnotated, annotator.StatusUnchanged, annotator.StatusSkipped, annotator.StatusFailed} {
			out.Summary[string(st)] = report.Count(st)
		}
		for _, f := range report.Files {
			fr := fileReportJSON{Path: f.Path, Status: f.Status, Annotations: f.Annotations}
			if f.Error != nil {
				fr.Error = f.Error.Error()
				fr.Code = perrors.CodeOf(f.Error)
				fr.Fixes = perrors.GetSuggestedFixes(fr.Code)
			}
			out.Files = append(out.Files, fr)
		}
		return encodeJSON(w, out)
	case FormatHuman:
		return writeReportHuman(w, report, invalid, dryRun)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeReportHuman(w io.Writer, report *annotator.Report, invalid []*perrors.Error, dryRun bool) error {
	s := newStyles()
	verb := "annotated"
	if dryRun {
		verb = "needs annotation"
	}

	for _, e := range invalid {
		if _, err := fmt.Fprintln(w, s.skipped.Sprintf("%-16s %s", "invalid ref", e.Error())); err != nil {
			return err
		}
	}

	for _, f := range report.Files {
		label := string(f.Status)
		if f.Status == annotator.StatusAnnotated {
			label = verb
		}
		line := fmt.Sprintf("%-16s %s", label, f.Path)
		if f.Annotations > 0 {
			line += s.dim.Sprintf(" (%d)", f.Annotations)
		}
		if f.Error != nil {
			line += ": " + f.Error.Error()
		}
		if _, err := fmt.Fprintln(w, s.status(f.Status).Sprint(line)); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d files: %d %s, %d unchanged, %d skipped, %d failed; %d annotations",
		len(report.Files),
		report.Count(annotator.StatusAnnotated), verb,
		report.Count(annotator.StatusUnchanged),
		report.Count(annotator.StatusSkipped),
		report.Count(annotator.StatusFailed),
		report.Annotations(),
	)
	_, err := fmt.Fprintln(w, s.heading.Sprint(summary))
	return err
}

type decisionJSON struct {
	Line      int      `json:"line"`
	Kind      string   `json:"kind"`
	Names     []string `json:"names"`
	Type      string   `json:"type"`
	Rule      string   `json:"rule"`
	Optional  bool     `json:"optional"`
	Annotated bool     `json:"alreadyAnnotated"`
}

func writeDecisions(w io.Writer, path string, out *annotator.Outcome, format OutputFormat) error {
	decisions := out.Table.Decisions()
	switch format {
	case FormatJSON:
		rows := make([]decisionJSON, 0, len(decisions))
		for _, d := range decisions {
			rows = append(rows, decisionJSON{
				Line:      d.Line,
				Kind:      d.Kind.String(),
				Names:     d.Names,
				Type:      d.TypeText,
				Rule:      d.Rule,
				Optional:  d.Optional,
				Annotated: d.AlreadyOptional,
			})
		}
		return encodeJSON(w, map[string]any{"path": path, "decisions": rows})
	case FormatHuman:
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	s := newStyles()
	if _, err := fmt.Fprintln(w, s.heading.Sprint(path)); err != nil {
		return err
	}
	for _, d := range decisions {
		verdict := "keep"
		c := s.dim
		switch {
		case d.Optional && d.AlreadyOptional:
			verdict = "already ?"
		case d.Optional:
			verdict = "make ?"
			c = s.optional
		}
		line := fmt.Sprintf("%5d  %-9s %-10s %-28s %s  [%s]",
			d.Line, d.Kind, verdict, strings.Join(d.Names, ", "), d.TypeText, d.Rule)
		if _, err := fmt.Fprintln(w, c.Sprint(line)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, s.heading.Sprintf("%d declarations, %d to annotate", len(decisions), out.Table.Pending()))
	return err
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
