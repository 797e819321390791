package transform

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/parser"
)

// rawFromNode copies a node's source text with edits applied. Lines that
// continue inside a template literal or a multi-line string are frozen so
// the printer does not reindent their contents.
func rawFromNode(node *sitter.Node, source []byte, edits []parser.Edit) *ast.Raw {
	if node == nil {
		return nil
	}
	sp := parser.Splice(source, node.StartByte(), node.EndByte(), edits)
	raw := &ast.Raw{
		Text:   sp.Text,
		Indent: parser.LineIndent(source, node.StartByte()),
	}

	parser.Walk(node, source, func(n *sitter.Node, src []byte) bool {
		switch n.Type() {
		case "template_string", "string":
		default:
			return true
		}
		if n.StartPoint().Row == n.EndPoint().Row {
			return false
		}
		for off := n.StartByte(); off < n.EndByte(); off++ {
			if src[off] != '\n' {
				continue
			}
			pos := sp.Offset(off)
			if pos < 0 || pos >= len(sp.Text) {
				continue
			}
			if raw.Frozen == nil {
				raw.Frozen = make(map[int]bool)
			}
			raw.Frozen[strings.Count(sp.Text[:pos], "\n")+1] = true
		}
		return false
	})

	return raw
}

// namedArgs returns the non-comment arguments of a call.
func namedArgs(call *sitter.Node) []*sitter.Node {
	var args []*sitter.Node
	for _, arg := range parser.NamedChildren(call.ChildByFieldName("arguments")) {
		if arg.Type() != "comment" {
			args = append(args, arg)
		}
	}
	return args
}

func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" && node.NamedChildCount() > 0 {
		node = node.NamedChild(0)
	}
	return node
}

func hasChildType(node *sitter.Node, types ...string) bool {
	if node == nil {
		return false
	}
	for i := range int(node.ChildCount()) {
		t := node.Child(i).Type()
		for _, want := range types {
			if t == want {
				return true
			}
		}
	}
	return false
}
