package parser

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"app.js", LangJavaScript},
		{"lib/module.mjs", LangJavaScript},
		{"lib/module.cjs", LangJavaScript},
		{"view.jsx", LangJavaScript},
		{"APP.JS", LangJavaScript},
		{"store.ts", LangTypeScript},
		{"store.mts", LangTypeScript},
		{"widget.tsx", LangTSX},
		{"types.d.ts", LangTypeScript},
		{"main.go", LangUnknown},
		{"README", LangUnknown},
		{"", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectLanguage(tt.path); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGetTreeSitterLanguage(t *testing.T) {
	for _, lang := range []Language{LangJavaScript, LangTypeScript, LangTSX} {
		tsLang, err := GetTreeSitterLanguage(lang)
		if err != nil {
			t.Errorf("GetTreeSitterLanguage(%v) error: %v", lang, err)
		}
		if tsLang == nil {
			t.Errorf("GetTreeSitterLanguage(%v) returned nil", lang)
		}
	}

	if _, err := GetTreeSitterLanguage(LangUnknown); err == nil {
		t.Error("expected error for unknown language")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		lang   Language
		source string
	}{
		{"javascript", LangJavaScript, "var Base = defineClass('Base', { a: 1 });\n"},
		{"typescript", LangTypeScript, "let n: number = 1;\n"},
		{"tsx", LangTSX, "const el = <div className=\"x\" />;\n"},
	}

	p := New()
	defer p.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.source), tt.lang, "")
			require.NoError(t, err)
			defer result.Close()

			assert.Equal(t, tt.lang, result.Language)
			assert.Equal(t, "program", result.Root().Type())
			assert.False(t, result.Root().HasError())
		})
	}
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("var a = 1 +;\n"), LangJavaScript, "bad.js")
	require.NoError(t, err, "tree-sitter always produces a tree")
	defer result.Close()
	assert.True(t, result.Root().HasError())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.ts")
	require.NoError(t, os.WriteFile(path, []byte("export const x = 1;\n"), 0644))

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	defer result.Close()
	assert.Equal(t, LangTypeScript, result.Language)
	assert.Equal(t, path, result.Path)
}

func TestParseFileErrors(t *testing.T) {
	dir := t.TempDir()
	p := New()
	defer p.Close()

	_, err := p.ParseFile(filepath.Join(dir, "missing.js"))
	assert.Error(t, err)

	unsupported := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(unsupported, []byte("package main\n"), 0644))
	_, err = p.ParseFile(unsupported)
	assert.Error(t, err)
}

func parseJS(t *testing.T, src string) (*ParseResult, []byte) {
	t.Helper()
	p := New()
	t.Cleanup(p.Close)
	result, err := p.Parse([]byte(src), LangJavaScript, "")
	require.NoError(t, err)
	t.Cleanup(result.Close)
	return result, result.Source
}

func TestWalk(t *testing.T) {
	result, source := parseJS(t, "function f() { return 1; }\nvar g = function () { return 2; };\n")

	var returns int
	Walk(result.Root(), source, func(node *sitter.Node, source []byte) bool {
		if node.Type() == "return_statement" {
			returns++
		}
		return true
	})
	assert.Equal(t, 2, returns)

	// Returning false prunes the subtree.
	returns = 0
	Walk(result.Root(), source, func(node *sitter.Node, source []byte) bool {
		if node.Type() == "function_declaration" {
			return false
		}
		if node.Type() == "return_statement" {
			returns++
		}
		return true
	})
	assert.Equal(t, 1, returns)

	Walk(nil, source, func(*sitter.Node, []byte) bool {
		t.Error("visitor called for nil node")
		return true
	})
}

func TestNodeHelpers(t *testing.T) {
	result, source := parseJS(t, "var a = 1;\n  var b = 2;\n")
	stmts := NamedChildren(result.Root())
	require.Len(t, stmts, 2)

	assert.Equal(t, "var a = 1;", GetNodeText(stmts[0], source))
	assert.Equal(t, 1, Line(stmts[0]))
	assert.Equal(t, 2, Line(stmts[1]))
	assert.Equal(t, "  ", LineIndent(source, stmts[1].StartByte()))
	assert.Equal(t, "", LineIndent(source, stmts[0].StartByte()))

	assert.Equal(t, "", GetNodeText(nil, source))
	assert.Equal(t, "", GetNodeText(stmts[1], source[:5]), "out of range offsets")
	assert.Nil(t, NamedChildren(nil))
	assert.Equal(t, 0, Line(nil))
}

func TestLineIndent(t *testing.T) {
	src := []byte("a\n\t  b\n")
	assert.Equal(t, "\t  ", LineIndent(src, 5))
	assert.Equal(t, "", LineIndent(src, 100), "offsets past the end clamp")
}

func TestNodeTypePredicates(t *testing.T) {
	for _, typ := range []string{"function", "function_expression", "generator_function"} {
		assert.True(t, IsFunctionExpression(typ), typ)
	}
	for _, typ := range []string{"arrow_function", "function_declaration", "identifier"} {
		assert.False(t, IsFunctionExpression(typ), typ)
	}

	assert.True(t, IsScopeBoundary("method_definition"))
	assert.True(t, IsScopeBoundary("function_declaration"))
	assert.False(t, IsScopeBoundary("arrow_function"), "arrows keep the enclosing this")
	assert.False(t, IsScopeBoundary("statement_block"))
}
