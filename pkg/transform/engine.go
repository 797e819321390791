// Package transform rewrites a matched factory-call declaration into a
// native class declaration.
//
// Rules run in a fixed order over the typed member list:
//
//  1. superclass resolution
//  2. constructor extraction (superclass-call normalization)
//  3. static relocation (static methods, hoisted static properties)
//  4. method attachment (superclass-call rewriting in bodies)
//  5. property initialization placement
//  6. superclass-call hoisting
//  7. empty-constructor elision
//  8. deferred-initialization split
//
// A fresh output tree is built for every declaration; nothing from the
// source tree is mutated or shared between classes.
package transform

import (
	"regexp"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/matcher"
	"github.com/panbanda/es6class/pkg/models"
)

// Placement controls where the implicit parent-initialization call goes
// inside the synthesized initialization method.
type Placement string

const (
	PlaceFirst Placement = "first"
	PlaceLast  Placement = "last"
)

// Options configures the engine.
type Options struct {
	// SuperMarker is the member name that denotes the parent implementation.
	SuperMarker string
	// DeferredInit moves constructor logic into a synthesized method.
	DeferredInit bool
	// PreInitName is the name of the synthesized initialization method.
	PreInitName string
	// ImplicitParentInit places the parent call when the constructor had
	// no explicit superclass call.
	ImplicitParentInit Placement
}

// DefaultOptions returns the deferred-initialization configuration.
func DefaultOptions() Options {
	return Options{
		SuperMarker:        "__super",
		DeferredInit:       true,
		PreInitName:        "preInit",
		ImplicitParentInit: PlaceFirst,
	}
}

// Engine applies the rewrite rules.
type Engine struct {
	opts Options
}

// New creates an engine. Empty option fields fall back to the defaults.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.SuperMarker == "" {
		opts.SuperMarker = def.SuperMarker
	}
	if opts.PreInitName == "" {
		opts.PreInitName = def.PreInitName
	}
	if opts.ImplicitParentInit != PlaceLast {
		opts.ImplicitParentInit = PlaceFirst
	}
	return &Engine{opts: opts}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Result is the rewritten form of one declaration.
type Result struct {
	Definition models.ClassDefinition
	Class      *ast.ClassDecl
	// Statics are the hoisted static property assignments, in map order.
	Statics []ast.Stmt
	// Output replaces the original top-level statement.
	Output      []ast.Stmt
	Constructor *ConstructorSpec
	PreInit     *PreInitMethod
	Summary     models.ClassSummary
	Diagnostics []models.Diagnostic
}

// HasPreInit reports whether the class defines the initialization method.
func (r *Result) HasPreInit() bool {
	return r.PreInit != nil
}

// Transform rewrites one match. anchor forces a root class to define an
// (possibly empty) initialization method and the dispatching constructor,
// so descendants declared in the same module can chain into it.
func (e *Engine) Transform(source []byte, match *matcher.Match, anchor bool) *Result {
	t := newClassTransform(e.opts, source, match)
	return t.run(anchor)
}

// classTransform holds the state of one declaration's rewrite.
type classTransform struct {
	opts   Options
	source []byte
	match  *matcher.Match
	def    models.ClassDefinition

	ctor     *ConstructorSpec
	props    []models.Member
	placed   map[int][]ast.ClassMember
	statics  []ast.Stmt
	conflict bool

	summary models.ClassSummary
	diags   []models.Diagnostic
}

func newClassTransform(opts Options, source []byte, match *matcher.Match) *classTransform {
	return &classTransform{
		opts:   opts,
		source: source,
		match:  match,
		def:    match.Class,
		placed: make(map[int][]ast.ClassMember),
		summary: models.ClassSummary{
			Name:       match.Class.Name,
			Superclass: match.Class.SuperclassName,
			Line:       match.Class.Line,
		},
	}
}

func (t *classTransform) run(anchor bool) *Result {
	cls := &ast.ClassDecl{
		Name:   t.def.Name,
		Export: t.def.Shape == models.ShapeExport,
	}
	if t.anonymous() {
		cls.Name = ""
		if t.def.NameBound {
			t.info(t.def.Line, "%s is already declared in this module, assigning an anonymous class to %s", t.def.Name, t.def.Target)
		}
	}

	// 1. superclass resolution
	if t.def.IsChild() {
		cls.Extends = ast.NewRaw(t.def.SuperclassName)
	}

	if t.opts.DeferredInit && t.hasPreInitMember() {
		t.conflict = true
		t.warn(t.def.Line, "class already defines %s, using a plain constructor", t.opts.PreInitName)
	}

	// 2. constructor extraction
	for _, m := range t.match.Members {
		if m.Kind != models.MemberConstructor {
			continue
		}
		if t.ctor != nil {
			t.warn(m.Line, "duplicate constructor member, last one wins")
		}
		t.ctor = t.extractConstructor(m)
	}

	// 3. static relocation
	for _, m := range t.match.Members {
		if m.Kind == models.MemberStaticGroup {
			t.relocateStatics(m)
		}
	}

	// 4. method attachment; plain properties are staged for rule 5
	for _, m := range t.match.Members {
		switch m.Kind {
		case models.MemberMethod:
			t.attachMethod(m)
		case models.MemberProperty:
			t.props = append(t.props, m)
			t.summary.Properties++
		}
	}

	// 5-8. constructor body, initialization method
	var ctorMethod, preInit *ast.Method
	var ctorDoc []ast.Comment
	var pre *PreInitMethod
	if t.deferredMode() {
		pre, ctorMethod, ctorDoc = t.deferred(anchor)
		if pre != nil {
			preInit = pre.Method()
		}
	} else {
		ctorMethod, ctorDoc = t.plain()
	}

	switch {
	case ctorMethod != nil:
		cls.Members = append(cls.Members, ctorMethod)
	case len(ctorDoc) > 0:
		cls.Members = append(cls.Members, &ast.CommentMember{Comments: ctorDoc})
	}
	if preInit != nil {
		cls.Members = append(cls.Members, preInit)
	}
	for i := range t.match.Members {
		cls.Members = append(cls.Members, t.placed[i]...)
	}
	if len(t.match.Dangling) > 0 {
		cls.Members = append(cls.Members, &ast.CommentMember{Comments: t.match.Dangling})
	}

	t.summary.HasConstructor = ctorMethod != nil
	t.summary.HasPreInit = pre != nil

	return &Result{
		Definition:  t.def,
		Class:       cls,
		Statics:     t.statics,
		Output:      t.output(cls),
		Constructor: t.ctor,
		PreInit:     pre,
		Summary:     t.summary,
		Diagnostics: t.diags,
	}
}

// output wraps the class in the statement form matching the original
// declaration shape.
func (t *classTransform) output(cls *ast.ClassDecl) []ast.Stmt {
	var out []ast.Stmt
	switch {
	case t.def.Shape == models.ShapeAssignment && (t.def.TargetIsIdent || t.anonymous()):
		out = append(out, &ast.ExprStmt{X: &ast.Assign{Left: t.target(), Right: cls}})
		out = append(out, t.statics...)
	case t.def.Shape == models.ShapeAssignment:
		out = append(out, cls)
		out = append(out, t.statics...)
		out = append(out, &ast.ExprStmt{X: &ast.Assign{Left: t.target(), Right: ast.NewIdent(t.def.Name)}})
	default:
		out = append(out, cls)
		out = append(out, t.statics...)
	}
	return out
}

// anonymous reports whether an assignment-shaped class must be emitted as
// an unnamed class expression: its name is taken in the module, or the
// superclass expression refers to it and would hit the class binding.
func (t *classTransform) anonymous() bool {
	if t.def.Shape != models.ShapeAssignment {
		return false
	}
	return t.def.NameBound || refersTo(t.def.SuperclassName, t.def.Name)
}

func (t *classTransform) target() ast.Expr {
	if t.def.TargetIsIdent {
		return ast.NewIdent(t.def.Target)
	}
	return ast.NewRaw(t.def.Target)
}

// staticObject is the binding static properties are assigned on.
func (t *classTransform) staticObject() ast.Expr {
	if t.def.Shape == models.ShapeAssignment && (t.def.TargetIsIdent || t.anonymous()) {
		return t.target()
	}
	return ast.NewIdent(t.def.Name)
}

var identRef = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// refersTo reports whether expr uses name as a variable reference, as
// opposed to a property name after a dot.
func refersTo(expr, name string) bool {
	for _, loc := range identRef.FindAllStringIndex(expr, -1) {
		if expr[loc[0]:loc[1]] != name {
			continue
		}
		if loc[0] > 0 && expr[loc[0]-1] == '.' {
			continue
		}
		return true
	}
	return false
}

func (t *classTransform) warn(line int, format string, args ...any) {
	t.diags = append(t.diags, models.Warn(line, t.def.Name, format, args...))
}

func (t *classTransform) info(line int, format string, args ...any) {
	t.diags = append(t.diags, models.Info(line, t.def.Name, format, args...))
}
