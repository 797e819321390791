package transform

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/parser"
)

// ConstructorSpec is the normalized constructor of one class.
type ConstructorSpec struct {
	Params *ast.Raw
	// Statements are the non-superclass-call statements in original order.
	Statements []ast.Stmt
	// HasSuperCall is true when the constructor called the superclass marker.
	HasSuperCall bool
	// NestedSuper is true when a marker call sits inside another statement,
	// e.g. a conditional superclass call.
	NestedSuper bool
	// SuperArgs are the normalized superclass-call arguments.
	SuperArgs     []ast.Expr
	SuperDoc      []ast.Comment
	SuperTrailing []ast.Comment
	Doc           []ast.Comment
	Trailing      []ast.Comment
	Line          int

	// assigns[i] names the property Statements[i] assigns on `this`, if any.
	assigns []string
}

// ParentArgs returns the arguments to pass to the parent, forwarding every
// argument when the constructor made no explicit call.
func (c *ConstructorSpec) ParentArgs() []ast.Expr {
	if c == nil || !c.HasSuperCall {
		return []ast.Expr{ast.ForwardArguments()}
	}
	return c.SuperArgs
}

// callsParentConditionally reports whether the only superclass calls are
// nested inside other statements.
func (c *ConstructorSpec) callsParentConditionally() bool {
	return c != nil && c.NestedSuper && !c.HasSuperCall
}

func (c *ConstructorSpec) params() *ast.Raw {
	if c == nil {
		return nil
	}
	return c.Params
}

func (c *ConstructorSpec) statements() []ast.Stmt {
	if c == nil {
		return nil
	}
	return c.Statements
}

// assignment returns the top-level `this.<key> = ...` statement, if any.
func (c *ConstructorSpec) assignment(key ast.Key) *ast.RawStmt {
	if c == nil || !key.IsStatic() {
		return nil
	}
	for i, name := range c.assigns {
		if name == key.Name {
			if rs, ok := c.Statements[i].(*ast.RawStmt); ok {
				return rs
			}
		}
	}
	return nil
}

// PreInitMethod is the synthesized initialization method that receives the
// constructor logic in deferred mode.
type PreInitMethod struct {
	Name   string
	Params *ast.Raw
	// ParentCall chains to the parent's initialization method; nil for roots.
	ParentCall  *ast.ExprStmt
	ParentFirst bool
	Body        []ast.Stmt
	Doc         []ast.Comment
	Trailing    []ast.Comment
}

// Statements returns the method body with the parent call in place.
func (p *PreInitMethod) Statements() []ast.Stmt {
	var out []ast.Stmt
	if p.ParentCall != nil && p.ParentFirst {
		out = append(out, p.ParentCall)
	}
	out = append(out, p.Body...)
	if p.ParentCall != nil && !p.ParentFirst {
		out = append(out, p.ParentCall)
	}
	return out
}

// Method renders the initialization method as a class member.
func (p *PreInitMethod) Method() *ast.Method {
	return &ast.Method{
		Key:      ast.IdentKey(p.Name),
		Params:   p.Params,
		Body:     p.Statements(),
		Doc:      p.Doc,
		Trailing: p.Trailing,
	}
}

// extractConstructor normalizes the constructor member: the superclass
// call is pulled out with its arguments, everything else is kept in order.
func (t *classTransform) extractConstructor(m models.Member) *ConstructorSpec {
	fn := m.Value
	if m.Shorthand {
		fn = m.Node
	}
	spec := &ConstructorSpec{
		Params:   rawFromNode(fn.ChildByFieldName("parameters"), t.source, nil),
		Doc:      m.Doc,
		Trailing: m.Trailing,
		Line:     m.Line,
	}

	var pending []ast.Comment
	var trailing *[]ast.Comment
	var prevRow uint32

	for _, stmt := range parser.NamedChildren(fn.ChildByFieldName("body")) {
		if stmt.Type() == "comment" {
			c := ast.Comment{
				Text:   parser.GetNodeText(stmt, t.source),
				Indent: parser.LineIndent(t.source, stmt.StartByte()),
			}
			if trailing != nil && len(pending) == 0 && stmt.StartPoint().Row == prevRow {
				*trailing = append(*trailing, c)
				continue
			}
			pending = append(pending, c)
			continue
		}

		prevRow = stmt.EndPoint().Row
		if mc, ok := t.superStatement(stmt); ok {
			switch {
			case !t.def.IsChild():
				t.warn(parser.Line(stmt), "%s call in a class without a superclass dropped", t.opts.SuperMarker)
				trailing = nil
			case spec.HasSuperCall:
				t.warn(parser.Line(stmt), "repeated %s call in constructor dropped", t.opts.SuperMarker)
				trailing = nil
			default:
				spec.HasSuperCall = true
				spec.SuperArgs = t.superArgs(mc)
				spec.SuperDoc = pending
				pending = nil
				trailing = &spec.SuperTrailing
			}
			continue
		}

		edits := t.constructorStatementEdits(stmt)
		if len(edits) > 0 {
			spec.NestedSuper = true
		}
		rs := &ast.RawStmt{Raw: rawFromNode(stmt, t.source, edits), Doc: pending}
		pending = nil
		spec.Statements = append(spec.Statements, rs)
		spec.assigns = append(spec.assigns, thisAssignment(stmt, t.source))
		trailing = &rs.Trailing
	}

	if len(pending) > 0 {
		spec.Statements = append(spec.Statements, &ast.CommentStmt{Comments: pending})
		spec.assigns = append(spec.assigns, "")
	}
	if spec.callsParentConditionally() && t.def.IsChild() {
		t.warn(spec.Line, "%s is only called inside nested statements, no parent call is added", t.opts.SuperMarker)
	}
	return spec
}

func (t *classTransform) constructorStatementEdits(stmt *sitter.Node) []parser.Edit {
	if t.deferredMode() {
		return t.superEdits(stmt, "super."+t.opts.PreInitName)
	}
	return t.constructorEdits(stmt)
}

func (t *classTransform) deferredMode() bool {
	return t.opts.DeferredInit && !t.conflict
}

// thisAssignment returns the property name of a `this.name = value;`
// statement, or "".
func thisAssignment(stmt *sitter.Node, source []byte) string {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return ""
	}
	expr := unwrapParens(stmt.NamedChild(0))
	if expr == nil || expr.Type() != "assignment_expression" {
		return ""
	}
	left := expr.ChildByFieldName("left")
	if left == nil {
		return ""
	}
	object := left.ChildByFieldName("object")
	if object == nil || object.Type() != "this" {
		return ""
	}
	switch left.Type() {
	case "member_expression":
		return parser.GetNodeText(left.ChildByFieldName("property"), source)
	case "subscript_expression":
		index := left.ChildByFieldName("index")
		if index != nil && index.Type() == "string" {
			text := parser.GetNodeText(index, source)
			if len(text) >= 2 {
				return text[1 : len(text)-1]
			}
		}
	}
	return ""
}

// superCallStmt is the hoisted `super(...)` statement of a child class.
func (t *classTransform) superCallStmt() *ast.ExprStmt {
	stmt := ast.SuperCall(t.ctor.ParentArgs()...)
	if t.ctor != nil && t.ctor.HasSuperCall {
		stmt.Doc = t.ctor.SuperDoc
		stmt.Trailing = t.ctor.SuperTrailing
	}
	return stmt
}

// plain builds a conventional constructor: superclass call first, then the
// property initializers, then the remaining statements. A constructor left
// with nothing to do is elided and its comments are returned.
func (t *classTransform) plain() (*ast.Method, []ast.Comment) {
	inits := t.propertyInits()
	if t.ctor == nil && len(inits) == 0 {
		return nil, nil
	}

	var body []ast.Stmt
	if t.def.IsChild() && !t.ctor.callsParentConditionally() {
		body = append(body, t.superCallStmt())
	}
	body = append(body, inits...)
	body = append(body, t.ctor.statements()...)

	var doc, trailing []ast.Comment
	if t.ctor != nil {
		doc, trailing = t.ctor.Doc, t.ctor.Trailing
	}
	params := t.ctor.params()

	if len(body) == 0 || (len(body) == 1 && ast.IsForwardingSuperCall(body[0], params)) {
		if len(body) == 1 {
			es := body[0].(*ast.ExprStmt)
			doc = append(append(append([]ast.Comment(nil), doc...), es.Doc...), es.Trailing...)
		}
		t.info(t.def.Line, "empty constructor elided")
		return nil, append(doc, trailing...)
	}

	return &ast.Method{
		Kind:     ast.KindConstructor,
		Params:   params,
		Body:     body,
		Doc:      doc,
		Trailing: trailing,
	}, nil
}

// deferred moves the constructor logic into the initialization method.
// Roots get a constructor that dispatches to it; children inherit the
// parent's constructor. anchor forces a root to define the method even
// when it has nothing to initialize.
func (t *classTransform) deferred(anchor bool) (*PreInitMethod, *ast.Method, []ast.Comment) {
	child := t.def.IsChild()
	body := t.propertyInits()
	body = append(body, t.ctor.statements()...)

	var doc, trailing []ast.Comment
	if t.ctor != nil {
		doc, trailing = t.ctor.Doc, t.ctor.Trailing
	}

	pre := &PreInitMethod{
		Name:     t.opts.PreInitName,
		Params:   t.ctor.params(),
		Body:     body,
		Doc:      doc,
		Trailing: trailing,
	}
	if child && !t.ctor.callsParentConditionally() {
		explicit := t.ctor != nil && t.ctor.HasSuperCall
		pre.ParentCall = ast.SuperMethodCall(t.opts.PreInitName, t.ctor.ParentArgs()...)
		if explicit {
			pre.ParentCall.Doc = t.ctor.SuperDoc
			pre.ParentCall.Trailing = t.ctor.SuperTrailing
		}
		pre.ParentFirst = explicit || t.opts.ImplicitParentInit != PlaceLast
	}

	needed := len(body) > 0
	switch {
	case !child && anchor:
		needed = true
	case child && !needed && pre.ParentCall != nil:
		// Only a parent call left: keep it unless it just forwards.
		fwd := ast.SuperCall(t.ctor.ParentArgs()...)
		needed = !ast.IsForwardingSuperCall(fwd, pre.Params)
	}
	if !needed {
		if t.ctor != nil {
			t.info(t.ctor.Line, "empty constructor elided")
		}
		return nil, nil, append(append([]ast.Comment(nil), doc...), trailing...)
	}

	if child {
		return pre, nil, nil
	}
	ctor := &ast.Method{
		Kind: ast.KindConstructor,
		Body: []ast.Stmt{ast.ThisMethodCall(t.opts.PreInitName, ast.ForwardArguments())},
	}
	return pre, ctor, nil
}
