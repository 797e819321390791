// Package rewrite converts the factory-call declarations of one source file
// into native classes. Only the matched top-level statements are replaced;
// every other byte of the file is kept as is.
package rewrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/matcher"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/parser"
	"github.com/panbanda/es6class/pkg/transform"
)

var (
	// ErrParse is returned when the parser cannot produce a tree.
	ErrParse = errors.New("parse failed")
	// ErrSyntax is returned when a matched declaration contains syntax errors.
	ErrSyntax = errors.New("syntax error in class declaration")
)

// Options configures a Rewriter.
type Options struct {
	Matcher   matcher.Options
	Transform transform.Options
	// Indent is one level of output indentation; empty detects it from the
	// member map of each declaration.
	Indent string
	// AnchorRoots gives every root class the initialization method and its
	// dispatching constructor, so subclasses converted in other files can
	// chain into it.
	AnchorRoots bool
}

// DefaultOptions returns the default matcher and transform options.
func DefaultOptions() Options {
	return Options{
		Matcher:   matcher.DefaultOptions(),
		Transform: transform.DefaultOptions(),
	}
}

// Result is the outcome of rewriting one source text.
type Result struct {
	Source      []byte
	Changed     bool
	Skipped     models.SkipReason
	Classes     []models.ClassSummary
	Diagnostics []models.Diagnostic
}

// Rewriter rewrites source files. It is safe for concurrent use; each call
// uses its own parser.
type Rewriter struct {
	opts    Options
	matcher *matcher.Matcher
	engine  *transform.Engine
	tokens  [][]byte
}

// New creates a Rewriter.
func New(opts Options) *Rewriter {
	m := matcher.New(opts.Matcher)
	opts.Matcher = m.Options()
	tokens := make([][]byte, 0, len(opts.Matcher.FactoryNames))
	for _, name := range opts.Matcher.FactoryNames {
		tokens = append(tokens, []byte(name))
	}
	return &Rewriter{
		opts:    opts,
		matcher: m,
		engine:  transform.New(opts.Transform),
		tokens:  tokens,
	}
}

// HasCandidate reports whether source mentions any factory name. Files
// without one are never parsed.
func (r *Rewriter) HasCandidate(source []byte) bool {
	for _, tok := range r.tokens {
		if bytes.Contains(source, tok) {
			return true
		}
	}
	return false
}

// Rewrite converts every matched declaration in source. path selects the
// grammar and may be empty for JavaScript.
func (r *Rewriter) Rewrite(ctx context.Context, source []byte, path string) (*Result, error) {
	if !r.HasCandidate(source) {
		return &Result{Source: source, Skipped: models.SkipNoToken}, nil
	}

	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		lang = parser.LangJavaScript
	}

	p := parser.New()
	defer p.Close()

	tree, err := p.ParseCtx(ctx, source, lang, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer tree.Close()

	matches, diags := r.matcher.Scan(tree.Root(), source)
	if len(matches) == 0 {
		if tree.Root().HasError() {
			return nil, fmt.Errorf("%w: syntax errors in %s", ErrParse, displayPath(path))
		}
		return &Result{Source: source, Skipped: models.SkipNoMatch, Diagnostics: diags}, nil
	}

	for _, m := range matches {
		if m.Statement.HasError() {
			return nil, fmt.Errorf("%w: %s at line %d", ErrSyntax, m.Class.Name, m.Class.Line)
		}
	}

	markBoundNames(tree.Root(), source, matches)
	results := r.transformAll(source, matches, &diags)

	edits := make([]parser.Edit, 0, len(results))
	classes := make([]models.ClassSummary, 0, len(results))
	for i, res := range results {
		stmt := matches[i].Statement
		base := parser.LineIndent(source, stmt.StartByte())
		text := ast.Print(res.Output, ast.PrintOptions{
			Indent: r.indentFor(matches[i], source, base),
			Base:   base,
		})
		edits = append(edits, parser.Edit{Start: stmt.StartByte(), End: stmt.EndByte(), Text: text})
		classes = append(classes, res.Summary)
		diags = append(diags, res.Diagnostics...)
	}

	out := parser.ApplyEdits(source, edits)
	return &Result{
		Source:      out,
		Changed:     !bytes.Equal(out, source),
		Classes:     classes,
		Diagnostics: diags,
	}, nil
}

// transformAll runs the engine over every match, then re-runs it for
// in-file roots whose descendants chain into the initialization method.
func (r *Rewriter) transformAll(source []byte, matches []*matcher.Match, diags *[]models.Diagnostic) []*transform.Result {
	results := make([]*transform.Result, len(matches))
	for i, m := range matches {
		results[i] = r.engine.Transform(source, m, false)
	}
	if !r.engine.Options().DeferredInit {
		return results
	}

	h := newHierarchy(matches)
	roots, ok := h.anchors(func(i int) bool { return results[i].HasPreInit() })
	if !ok {
		*diags = append(*diags, models.Warn(matches[0].Class.Line, "",
			"circular inheritance between classes in this file, initialization chain not anchored"))
		return results
	}
	anchored := make(map[int]bool, len(roots))
	for _, i := range roots {
		if matches[i].Class.IsChild() {
			continue
		}
		results[i] = r.engine.Transform(source, matches[i], true)
		anchored[i] = true
	}

	name := r.engine.Options().PreInitName
	for i, m := range matches {
		if m.Class.IsChild() || anchored[i] || results[i].HasPreInit() {
			continue
		}
		if r.opts.AnchorRoots {
			results[i] = r.engine.Transform(source, m, true)
			continue
		}
		*diags = append(*diags, models.Info(m.Class.Line, m.Class.Name,
			"root class defines no %s, subclasses in other files that call super.%s are not initialized (set transform.anchor_roots)", name, name))
	}
	return results
}

// indentFor returns the configured indent, or the step between the
// declaration and its first member.
func (r *Rewriter) indentFor(m *matcher.Match, source []byte, base string) string {
	if r.opts.Indent != "" {
		return r.opts.Indent
	}
	for _, mem := range m.Members {
		if mem.Node == nil {
			continue
		}
		line := parser.LineIndent(source, mem.Node.StartByte())
		if step, ok := strings.CutPrefix(line, base); ok && step != "" {
			return step
		}
		break
	}
	return ast.DefaultIndent
}

func displayPath(path string) string {
	if path == "" {
		return "<source>"
	}
	return path
}
