// Package matcher recognizes the legacy factory-call class definition in
// top-level statements and extracts typed class metadata from it.
//
// Recognized shapes:
//
//	app.Foo = Jii.defineClass('app.Foo', {...});          // assignment
//	var Foo = Jii.defineClass('app.Foo', {...});          // binding
//	export const Foo = Jii.defineClass('app.Foo', {...}); // exported binding
//
// Matching is pure inspection; the tree is never modified.
package matcher

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/parser"
)

// Options configures the marker names the matcher looks for.
type Options struct {
	FactoryNames []string
	ExtendsKey   string
	StaticKey    string
}

// DefaultOptions returns the marker names used by the Jii framework.
func DefaultOptions() Options {
	return Options{
		FactoryNames: []string{"defineClass"},
		ExtendsKey:   "__extends",
		StaticKey:    "__static",
	}
}

// Match is one recognized factory-call declaration.
type Match struct {
	Class   models.ClassDefinition
	Members []models.Member
	// Dangling holds comments after the last member of the map.
	Dangling []ast.Comment
	// Statement is the top-level statement to replace.
	Statement *sitter.Node
}

// Matcher finds factory-call declarations.
type Matcher struct {
	opts  Options
	names map[string]bool
}

// New creates a matcher. Empty option fields fall back to the defaults.
func New(opts Options) *Matcher {
	def := DefaultOptions()
	if len(opts.FactoryNames) == 0 {
		opts.FactoryNames = def.FactoryNames
	}
	if opts.ExtendsKey == "" {
		opts.ExtendsKey = def.ExtendsKey
	}
	if opts.StaticKey == "" {
		opts.StaticKey = def.StaticKey
	}
	names := make(map[string]bool, len(opts.FactoryNames))
	for _, n := range opts.FactoryNames {
		names[n] = true
	}
	return &Matcher{opts: opts, names: names}
}

// Options returns the effective options.
func (m *Matcher) Options() Options {
	return m.opts
}

// Scan matches every top-level statement of a program.
func (m *Matcher) Scan(root *sitter.Node, source []byte) ([]*Match, []models.Diagnostic) {
	var matches []*Match
	var diags []models.Diagnostic
	for _, stmt := range parser.NamedChildren(root) {
		match, d := m.MatchStatement(stmt, source)
		diags = append(diags, d...)
		if match != nil {
			matches = append(matches, match)
		}
	}
	return matches, diags
}

// MatchStatement inspects one top-level statement. It returns nil when the
// statement is not a factory-call declaration or its member map has an
// unsupported shape.
func (m *Matcher) MatchStatement(stmt *sitter.Node, source []byte) (*Match, []models.Diagnostic) {
	switch stmt.Type() {
	case "expression_statement":
		return m.matchAssignment(stmt, source)
	case "lexical_declaration", "variable_declaration":
		return m.matchBinding(stmt, stmt, source, models.ShapeBinding)
	case "export_statement":
		decl := stmt.ChildByFieldName("declaration")
		if decl == nil {
			return nil, nil
		}
		switch decl.Type() {
		case "lexical_declaration", "variable_declaration":
			return m.matchBinding(stmt, decl, source, models.ShapeExport)
		}
	}
	return nil, nil
}

func (m *Matcher) matchAssignment(stmt *sitter.Node, source []byte) (*Match, []models.Diagnostic) {
	if stmt.NamedChildCount() == 0 {
		return nil, nil
	}
	expr := unwrapParens(stmt.NamedChild(0))
	if expr == nil || expr.Type() != "assignment_expression" {
		return nil, nil
	}
	left := expr.ChildByFieldName("left")
	args := m.factoryArgs(unwrapParens(expr.ChildByFieldName("right")), source)
	if left == nil || args == nil {
		return nil, nil
	}

	def := models.ClassDefinition{
		Shape:         models.ShapeAssignment,
		Target:        parser.GetNodeText(left, source),
		TargetIsIdent: left.Type() == "identifier",
		Line:          parser.Line(stmt),
	}
	if qn, ok := stringValue(args[0], source); ok {
		def.QualifiedName = qn
		def.Name = lastSegment(qn)
	}
	if def.Name == "" {
		switch left.Type() {
		case "identifier":
			def.Name = def.Target
		case "member_expression":
			def.Name = parser.GetNodeText(left.ChildByFieldName("property"), source)
		}
	}
	if !ast.IsIdentifierName(def.Name) {
		return nil, []models.Diagnostic{models.Warn(def.Line, def.Target,
			"declaration skipped: cannot derive a class name from %q", def.QualifiedName)}
	}

	return m.build(stmt, def, args[1], source)
}

func (m *Matcher) matchBinding(stmt, decl *sitter.Node, source []byte, shape models.DeclShape) (*Match, []models.Diagnostic) {
	var declarators []*sitter.Node
	for _, child := range parser.NamedChildren(decl) {
		if child.Type() == "variable_declarator" {
			declarators = append(declarators, child)
		}
	}
	if len(declarators) != 1 {
		return nil, nil
	}
	name := declarators[0].ChildByFieldName("name")
	args := m.factoryArgs(unwrapParens(declarators[0].ChildByFieldName("value")), source)
	if name == nil || name.Type() != "identifier" || args == nil {
		return nil, nil
	}

	def := models.ClassDefinition{
		Name:  parser.GetNodeText(name, source),
		Shape: shape,
		Line:  parser.Line(stmt),
	}
	if qn, ok := stringValue(args[0], source); ok {
		def.QualifiedName = qn
	}

	return m.build(stmt, def, args[1], source)
}

func (m *Matcher) build(stmt *sitter.Node, def models.ClassDefinition, memberMap *sitter.Node, source []byte) (*Match, []models.Diagnostic) {
	members, dangling, diags, ok := m.members(memberMap, source, def.Name, true)
	if !ok {
		return nil, diags
	}

	kept := members[:0]
	for _, mem := range members {
		if mem.Kind == models.MemberExtends {
			if def.SuperclassName != "" {
				diags = append(diags, models.Warn(mem.Line, def.Name, "duplicate %s member, last one wins", m.opts.ExtendsKey))
			}
			def.SuperclassName = superclassName(mem.Value, source)
			continue
		}
		kept = append(kept, mem)
	}
	for i := range kept {
		kept[i].Index = i
	}

	return &Match{
		Class:     def,
		Members:   kept,
		Dangling:  dangling,
		Statement: stmt,
	}, diags
}

// factoryArgs returns the call arguments when node is a factory call with
// an object-literal member map as its second argument.
func (m *Matcher) factoryArgs(node *sitter.Node, source []byte) []*sitter.Node {
	if node == nil || node.Type() != "call_expression" {
		return nil
	}
	if !m.names[calleeName(node.ChildByFieldName("function"), source)] {
		return nil
	}
	var args []*sitter.Node
	for _, arg := range parser.NamedChildren(node.ChildByFieldName("arguments")) {
		if arg.Type() != "comment" {
			args = append(args, arg)
		}
	}
	if len(args) < 2 || args[1].Type() != "object" {
		return nil
	}
	return args
}

// IsFactoryCall reports whether node is a call to one of the factory names,
// regardless of its arguments.
func (m *Matcher) IsFactoryCall(node *sitter.Node, source []byte) bool {
	return node != nil && node.Type() == "call_expression" &&
		m.names[calleeName(node.ChildByFieldName("function"), source)]
}

func calleeName(fn *sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return parser.GetNodeText(fn, source)
	case "member_expression":
		return parser.GetNodeText(fn.ChildByFieldName("property"), source)
	}
	return ""
}

// superclassName resolves the __extends value: `Base` stays as is, a
// two-part `NS.Base` joins both names, anything else is used verbatim.
func superclassName(value *sitter.Node, source []byte) string {
	value = unwrapParens(value)
	if value == nil {
		return ""
	}
	if value.Type() == "member_expression" {
		object := value.ChildByFieldName("object")
		property := value.ChildByFieldName("property")
		if object != nil && property != nil && object.Type() == "identifier" {
			return parser.GetNodeText(object, source) + "." + parser.GetNodeText(property, source)
		}
	}
	return strings.TrimSpace(parser.GetNodeText(value, source))
}

func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" && node.NamedChildCount() > 0 {
		node = node.NamedChild(0)
	}
	return node
}

// stringValue returns the contents of a string literal or a template
// literal without substitutions.
func stringValue(node *sitter.Node, source []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	text := parser.GetNodeText(node, source)
	switch node.Type() {
	case "string":
	case "template_string":
		for _, child := range parser.NamedChildren(node) {
			if child.Type() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}
	if len(text) < 2 {
		return "", false
	}
	return text[1 : len(text)-1], true
}

func lastSegment(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
