package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticString(t *testing.T) {
	assert.Equal(t, "4: Widget: computed key passed through", Warn(4, "Widget", "computed key passed through").String())
	assert.Equal(t, "9: spread in member map", Info(9, "", "spread in member map").String())
	assert.Equal(t, SeverityWarning, Warn(1, "", "x").Severity)
	assert.Equal(t, SeverityInfo, Info(1, "", "x").Severity)
}

func TestNewBatchResult(t *testing.T) {
	files := []FileResult{
		{Path: "b.js", Changed: true, Classes: []ClassSummary{{Name: "B"}, {Name: "C"}},
			Diagnostics: []Diagnostic{Warn(3, "B", "w"), Info(4, "B", "i")}},
		{Path: "a.js", Skipped: SkipNoToken},
		{Path: "c.js", Skipped: SkipCached},
	}
	failures := []FileFailure{{Path: "z.js", Error: "parse failed"}, {Path: "d.js", Error: "write"}}

	b := NewBatchResult(files, failures, true)

	assert.True(t, b.DryRun)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, []string{b.Files[0].Path, b.Files[1].Path, b.Files[2].Path})
	assert.Equal(t, "d.js", b.Failures[0].Path)
	assert.Equal(t, BatchSummary{
		TotalFiles:   5,
		ChangedFiles: 1,
		SkippedFiles: 2,
		FailedFiles:  2,
		Classes:      2,
		Warnings:     1,
	}, b.Summary)

	changed := b.Changed()
	if assert.Len(t, changed, 1) {
		assert.Equal(t, "b.js", changed[0].Path)
	}
}

func TestClassDefinition(t *testing.T) {
	tests := []struct {
		name      string
		def       ClassDefinition
		wantLocal string
		wantChild bool
	}{
		{"binding", ClassDefinition{Name: "Widget", Shape: ShapeBinding}, "Widget", false},
		{"assignment", ClassDefinition{Name: "Widget", Shape: ShapeAssignment, Target: "ui.Widget", SuperclassName: "Base"}, "ui.Widget", true},
		{"assignment without target", ClassDefinition{Name: "Widget", Shape: ShapeAssignment}, "Widget", false},
		{"export", ClassDefinition{Name: "Widget", Shape: ShapeExport, SuperclassName: "ns.Base"}, "Widget", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLocal, tt.def.LocalName())
			assert.Equal(t, tt.wantChild, tt.def.IsChild())
		})
	}
}

func TestMemberIsFunction(t *testing.T) {
	assert.True(t, Member{Kind: MemberMethod}.IsFunction())
	assert.True(t, Member{Kind: MemberConstructor}.IsFunction())
	assert.False(t, Member{Kind: MemberProperty}.IsFunction())
	assert.False(t, Member{Kind: MemberStaticGroup}.IsFunction())
}
