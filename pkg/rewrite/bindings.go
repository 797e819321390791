package rewrite

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/es6class/pkg/matcher"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/parser"
)

// markBoundNames flags assignment-shaped matches whose class name is
// already declared at module top level, either by an unrelated statement
// or by another converted class.
func markBoundNames(root *sitter.Node, source []byte, matches []*matcher.Match) {
	bound := topLevelBindings(root, source, matches)
	for _, m := range matches {
		if m.Class.Shape != models.ShapeAssignment {
			bound[m.Class.Name] = true
		}
	}
	for _, m := range matches {
		if m.Class.Shape != models.ShapeAssignment || m.Class.TargetIsIdent {
			continue
		}
		if bound[m.Class.Name] {
			m.Class.NameBound = true
			continue
		}
		bound[m.Class.Name] = true
	}
}

// topLevelBindings returns the names declared at module top level by every
// statement except the matched declarations.
func topLevelBindings(root *sitter.Node, source []byte, matches []*matcher.Match) map[string]bool {
	matched := make(map[uint32]bool, len(matches))
	for _, m := range matches {
		matched[m.Statement.StartByte()] = true
	}

	names := make(map[string]bool)
	for _, stmt := range parser.NamedChildren(root) {
		if !matched[stmt.StartByte()] {
			declaredNames(stmt, source, names)
		}
	}
	return names
}

func declaredNames(stmt *sitter.Node, source []byte, names map[string]bool) {
	switch stmt.Type() {
	case "export_statement":
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			declaredNames(decl, source, names)
		}
	case "lexical_declaration", "variable_declaration":
		for _, d := range parser.NamedChildren(stmt) {
			if d.Type() == "variable_declarator" {
				patternNames(d.ChildByFieldName("name"), source, names)
			}
		}
	case "function_declaration", "generator_function_declaration", "class_declaration", "abstract_class_declaration":
		if name := stmt.ChildByFieldName("name"); name != nil {
			names[parser.GetNodeText(name, source)] = true
		}
	case "import_statement":
		for _, child := range parser.NamedChildren(stmt) {
			if child.Type() == "import_clause" {
				patternNames(child, source, names)
			}
		}
	}
}

// patternNames collects the identifiers of a binding pattern or import
// clause. Default values are collected too, which only makes the check
// stricter.
func patternNames(node *sitter.Node, source []byte, names map[string]bool) {
	parser.Walk(node, source, func(n *sitter.Node, source []byte) bool {
		switch n.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			names[parser.GetNodeText(n, source)] = true
		}
		return true
	})
}
