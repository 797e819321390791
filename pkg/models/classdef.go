package models

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/es6class/pkg/ast"
)

// DeclShape identifies which top-level form held the factory call.
type DeclShape string

const (
	// ShapeAssignment is `target = factory('ns.Name', {...});`.
	ShapeAssignment DeclShape = "assignment"
	// ShapeBinding is `var Name = factory(..., {...});`.
	ShapeBinding DeclShape = "binding"
	// ShapeExport is `export const Name = factory(..., {...});`.
	ShapeExport DeclShape = "export"
)

// ClassDefinition is the class metadata recovered from one factory call.
type ClassDefinition struct {
	Name           string    `json:"name"`
	QualifiedName  string    `json:"qualified_name,omitempty"`
	SuperclassName string    `json:"superclass,omitempty"`
	Shape          DeclShape `json:"shape"`
	// Target is the assignment target source text for ShapeAssignment.
	Target string `json:"target,omitempty"`
	// TargetIsIdent is true when Target is a plain identifier.
	TargetIsIdent bool `json:"-"`
	// NameBound is true when Name is already declared at module top level,
	// so an assignment-shaped class cannot introduce it as a binding.
	NameBound bool `json:"-"`
	Line          int  `json:"line"`
}

// IsChild reports whether the class has a superclass.
func (c ClassDefinition) IsChild() bool {
	return c.SuperclassName != ""
}

// LocalName is the binding other declarations in the module use to refer
// to the class: the assignment target when there is one, else Name.
func (c ClassDefinition) LocalName() string {
	if c.Shape == ShapeAssignment && c.Target != "" {
		return c.Target
	}
	return c.Name
}

// MemberKind tags one entry of a member map.
type MemberKind string

const (
	MemberConstructor MemberKind = "constructor"
	MemberStaticGroup MemberKind = "static_group"
	MemberMethod      MemberKind = "method"
	MemberProperty    MemberKind = "property"
	MemberExtends     MemberKind = "extends"
)

// Member is a typed descriptor for one entry of the original member map.
type Member struct {
	Kind MemberKind
	Key  ast.Key
	// Node is the pair, method_definition or shorthand property node.
	Node *sitter.Node
	// Value is the value expression; nil for shorthand methods, where the
	// whole definition lives in Node.
	Value *sitter.Node
	// Shorthand is true for `name() {}` definitions.
	Shorthand bool
	Doc       []ast.Comment
	Trailing  []ast.Comment
	// Index is the position in the member map.
	Index int
	Line  int
	// Children holds the entries of a static group, in order.
	Children []Member
}

// IsFunction reports whether the member is function-valued.
func (m Member) IsFunction() bool {
	return m.Kind == MemberMethod || m.Kind == MemberConstructor
}
