package transform

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/parser"
)

// markerCall is a call through the superclass marker: `this.__super(a)`,
// `this.__super.apply(this, args)` or `this.__super.call(this, a)`.
type markerCall struct {
	call   *sitter.Node
	marker *sitter.Node
	via    string
}

func (t *classTransform) isMarker(node *sitter.Node) bool {
	if node == nil || node.Type() != "member_expression" {
		return false
	}
	return parser.GetNodeText(node.ChildByFieldName("property"), t.source) == t.opts.SuperMarker
}

func (t *classTransform) asMarkerCall(node *sitter.Node) (markerCall, bool) {
	if node == nil || node.Type() != "call_expression" {
		return markerCall{}, false
	}
	fn := unwrapParens(node.ChildByFieldName("function"))
	if t.isMarker(fn) {
		return markerCall{call: node, marker: fn}, true
	}
	if fn != nil && fn.Type() == "member_expression" {
		object := unwrapParens(fn.ChildByFieldName("object"))
		if t.isMarker(object) {
			via := parser.GetNodeText(fn.ChildByFieldName("property"), t.source)
			return markerCall{call: node, marker: object, via: via}, true
		}
	}
	return markerCall{}, false
}

// superStatement matches a statement that is exactly one marker call.
func (t *classTransform) superStatement(stmt *sitter.Node) (markerCall, bool) {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return markerCall{}, false
	}
	return t.asMarkerCall(unwrapParens(stmt.NamedChild(0)))
}

// superArgs normalizes the arguments of a superclass call:
// apply(this, xs) spreads xs, call(this, a, b) drops the receiver.
func (t *classTransform) superArgs(mc markerCall) []ast.Expr {
	args := namedArgs(mc.call)
	exprs := []ast.Expr{}
	switch mc.via {
	case "":
	case "apply":
		if len(args) >= 2 {
			exprs = append(exprs, &ast.Spread{X: rawFromNode(args[1], t.source, nil)})
		}
		return exprs
	case "call":
		if len(args) > 0 {
			args = args[1:]
		}
	default:
		t.warn(parser.Line(mc.call), "unrecognized superclass call form .%s, arguments passed through", mc.via)
	}
	for _, arg := range args {
		if arg.Type() == "spread_element" && arg.NamedChildCount() > 0 {
			exprs = append(exprs, &ast.Spread{X: rawFromNode(arg.NamedChild(0), t.source, nil)})
			continue
		}
		exprs = append(exprs, rawFromNode(arg, t.source, nil))
	}
	return exprs
}

// superEdits replaces every marker reference below node with replace, e.g.
// "super.render". Markers inside nested functions and classes keep their
// own receiver and are reported instead.
func (t *classTransform) superEdits(node *sitter.Node, replace string) []parser.Edit {
	var edits []parser.Edit
	parser.Walk(node, t.source, func(n *sitter.Node, _ []byte) bool {
		if parser.IsScopeBoundary(n.Type()) {
			t.reportNested(n)
			return false
		}
		if t.isMarker(n) {
			edits = append(edits, parser.Edit{Start: n.StartByte(), End: n.EndByte(), Text: replace})
			return false
		}
		return true
	})
	return edits
}

// constructorEdits rewrites marker calls nested in constructor statements
// into superclass constructor calls.
func (t *classTransform) constructorEdits(node *sitter.Node) []parser.Edit {
	var edits []parser.Edit
	parser.Walk(node, t.source, func(n *sitter.Node, _ []byte) bool {
		if parser.IsScopeBoundary(n.Type()) {
			t.reportNested(n)
			return false
		}
		if mc, ok := t.asMarkerCall(n); ok {
			call := &ast.Call{Callee: &ast.Super{}, Args: t.superArgs(mc)}
			edits = append(edits, parser.Edit{Start: n.StartByte(), End: n.EndByte(), Text: ast.PrintExpr(call)})
			return false
		}
		if t.isMarker(n) {
			edits = append(edits, parser.Edit{Start: n.StartByte(), End: n.EndByte(), Text: "super"})
			return false
		}
		return true
	})
	return edits
}

func (t *classTransform) reportNested(scope *sitter.Node) {
	found := false
	parser.Walk(scope, t.source, func(n *sitter.Node, _ []byte) bool {
		if found {
			return false
		}
		if t.isMarker(n) {
			found = true
			return false
		}
		return true
	})
	if found {
		t.warn(parser.Line(scope), "%s inside a nested function is not rewritten", t.opts.SuperMarker)
	}
}
