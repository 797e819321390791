package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/es6class/pkg/models"
)

// BatchReport renders the outcome of a batch run. Text and markdown show a
// summary, the changed files, diagnostics and failures; JSON and TOON
// serialize the BatchResult itself.
type BatchReport struct {
	Result *models.BatchResult
	// Verbose lists files that needed no change as well.
	Verbose bool
	// ShowDiffs prints the unified diff of every changed file.
	ShowDiffs bool
}

// NewBatchReport wraps a batch result for rendering.
func NewBatchReport(result *models.BatchResult, verbose, showDiffs bool) *BatchReport {
	return &BatchReport{Result: result, Verbose: verbose, ShowDiffs: showDiffs}
}

func (b *BatchReport) RenderData() any {
	return b.Result
}

func (b *BatchReport) RenderText(w io.Writer, colored bool) error {
	if b.ShowDiffs {
		for _, f := range b.Result.Changed() {
			if f.Diff == "" {
				continue
			}
			if colored {
				fmt.Fprint(w, ColorizeDiff(f.Diff))
			} else {
				fmt.Fprint(w, f.Diff)
			}
			fmt.Fprintln(w)
		}
	}
	return b.report(colored).RenderText(w, colored)
}

func (b *BatchReport) RenderMarkdown(w io.Writer) error {
	if err := b.report(false).RenderMarkdown(w); err != nil {
		return err
	}
	if !b.ShowDiffs {
		return nil
	}
	for _, f := range b.Result.Changed() {
		if f.Diff == "" {
			continue
		}
		fmt.Fprintf(w, "### %s\n\n```diff\n%s```\n\n", f.Path, f.Diff)
	}
	return nil
}

func (b *BatchReport) report(colored bool) *Report {
	r := &Report{Title: "Class Conversion"}
	r.Sections = append(r.Sections, &Section{Content: b.summaryLine()})

	var rows [][]string
	for _, f := range b.Result.Files {
		if !f.Changed && !b.Verbose {
			continue
		}
		rows = append(rows, fileRow(f, b.Result.DryRun))
	}
	if len(rows) > 0 {
		r.Sections = append(r.Sections, NewTable("Files",
			[]string{"File", "Status", "Classes", "Names"}, rows, nil, nil))
	}

	var diags [][]string
	for _, f := range b.Result.Files {
		for _, d := range f.Diagnostics {
			if d.Severity == models.SeverityInfo && !b.Verbose {
				continue
			}
			sev := string(d.Severity)
			if colored {
				sev = SeverityColor(sev, sev)
			}
			diags = append(diags, []string{f.Path + ":" + strconv.Itoa(d.Line), sev, d.Class, d.Message})
		}
	}
	if len(diags) > 0 {
		r.Sections = append(r.Sections, NewTable("Diagnostics",
			[]string{"Location", "Severity", "Class", "Message"}, diags, nil, nil))
	}

	if len(b.Result.Failures) > 0 {
		rows := make([][]string, 0, len(b.Result.Failures))
		for _, f := range b.Result.Failures {
			msg := f.Error
			if colored {
				msg = color.RedString(msg)
			}
			rows = append(rows, []string{f.Path, msg})
		}
		r.Sections = append(r.Sections, NewTable("Failures", []string{"File", "Error"}, rows, nil, nil))
	}

	return r
}

func (b *BatchReport) summaryLine() string {
	s := b.Result.Summary
	verb := "converted"
	if b.Result.DryRun {
		verb = "would change"
	}
	return fmt.Sprintf("%d files scanned, %d %s, %d classes, %d skipped, %d warnings, %d failed",
		s.TotalFiles, s.ChangedFiles, verb, s.Classes, s.SkippedFiles, s.Warnings, s.FailedFiles)
}

func fileRow(f models.FileResult, dryRun bool) []string {
	status := "unchanged"
	switch {
	case f.Written:
		status = "converted"
	case f.Changed && dryRun:
		status = "would change"
	case f.Changed:
		status = "changed"
	case f.Skipped != models.SkipNone:
		status = "skipped: " + string(f.Skipped)
	}

	names := make([]string, 0, len(f.Classes))
	for _, c := range f.Classes {
		if c.Superclass != "" {
			names = append(names, c.Name+" < "+c.Superclass)
		} else {
			names = append(names, c.Name)
		}
	}
	return []string{f.Path, status, strconv.Itoa(len(f.Classes)), strings.Join(names, ", ")}
}
