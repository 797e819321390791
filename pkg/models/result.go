package models

import (
	"fmt"
	"sort"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a non-fatal finding reported while converting a file.
type Diagnostic struct {
	Severity Severity `json:"severity" toon:"severity"`
	Line     int      `json:"line" toon:"line"`
	Class    string   `json:"class,omitempty" toon:"class,omitempty"`
	Message  string   `json:"message" toon:"message"`
}

func (d Diagnostic) String() string {
	if d.Class != "" {
		return fmt.Sprintf("%d: %s: %s", d.Line, d.Class, d.Message)
	}
	return fmt.Sprintf("%d: %s", d.Line, d.Message)
}

// Warn creates a warning diagnostic.
func Warn(line int, class, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Line: line, Class: class, Message: fmt.Sprintf(format, args...)}
}

// Info creates an informational diagnostic.
func Info(line int, class, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityInfo, Line: line, Class: class, Message: fmt.Sprintf(format, args...)}
}

// ClassSummary describes one converted declaration.
type ClassSummary struct {
	Name           string `json:"name" toon:"name"`
	Superclass     string `json:"superclass,omitempty" toon:"superclass,omitempty"`
	Line           int    `json:"line" toon:"line"`
	Methods        int    `json:"methods" toon:"methods"`
	StaticMethods  int    `json:"static_methods" toon:"static_methods"`
	StaticProps    int    `json:"static_properties" toon:"static_properties"`
	Properties     int    `json:"properties" toon:"properties"`
	HasConstructor bool   `json:"has_constructor" toon:"has_constructor"`
	HasPreInit     bool   `json:"has_preinit" toon:"has_preinit"`
}

// SkipReason explains why a file was not parsed.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipNoToken  SkipReason = "no_factory_call"
	SkipCached   SkipReason = "cached"
	SkipNoMatch  SkipReason = "no_match"
	SkipExcluded SkipReason = "excluded"
)

// FileResult is the outcome of converting one file.
type FileResult struct {
	Path        string         `json:"path" toon:"path"`
	Changed     bool           `json:"changed" toon:"changed"`
	Written     bool           `json:"written" toon:"written"`
	Skipped     SkipReason     `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Classes     []ClassSummary `json:"classes,omitempty" toon:"classes,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty" toon:"diagnostics,omitempty"`
	Diff        string         `json:"diff,omitempty" toon:"diff,omitempty"`
}

// FileFailure is a file that could not be converted.
type FileFailure struct {
	Path  string `json:"path" toon:"path"`
	Error string `json:"error" toon:"error"`
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	TotalFiles   int `json:"total_files" toon:"total_files"`
	ChangedFiles int `json:"changed_files" toon:"changed_files"`
	SkippedFiles int `json:"skipped_files" toon:"skipped_files"`
	FailedFiles  int `json:"failed_files" toon:"failed_files"`
	Classes      int `json:"classes" toon:"classes"`
	Warnings     int `json:"warnings" toon:"warnings"`
}

// BatchResult is the outcome of a batch run.
type BatchResult struct {
	DryRun   bool          `json:"dry_run" toon:"dry_run"`
	Files    []FileResult  `json:"files" toon:"files"`
	Failures []FileFailure `json:"failures,omitempty" toon:"failures,omitempty"`
	Summary  BatchSummary  `json:"summary" toon:"summary"`
}

// NewBatchResult sorts results by path and computes the summary.
func NewBatchResult(files []FileResult, failures []FileFailure, dryRun bool) *BatchResult {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })

	b := &BatchResult{DryRun: dryRun, Files: files, Failures: failures}
	b.Summary.TotalFiles = len(files) + len(failures)
	b.Summary.FailedFiles = len(failures)
	for _, f := range files {
		if f.Changed {
			b.Summary.ChangedFiles++
		}
		if f.Skipped != SkipNone {
			b.Summary.SkippedFiles++
		}
		b.Summary.Classes += len(f.Classes)
		for _, d := range f.Diagnostics {
			if d.Severity == SeverityWarning {
				b.Summary.Warnings++
			}
		}
	}
	return b
}

// Changed returns the results that changed (or would change in a dry run).
func (b *BatchResult) Changed() []FileResult {
	var out []FileResult
	for _, f := range b.Files {
		if f.Changed {
			out = append(out, f)
		}
	}
	return out
}
