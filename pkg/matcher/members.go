package matcher

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/parser"
)

// members converts the entries of an object literal into typed member
// descriptors. top enables the constructor, __extends and __static keys,
// which have no special meaning inside a static group. ok is false when
// the map cannot be expressed as a class body.
func (m *Matcher) members(object *sitter.Node, source []byte, class string, top bool) (members []models.Member, dangling []ast.Comment, diags []models.Diagnostic, ok bool) {
	var pending []ast.Comment
	var prevEndRow uint32
	havePrev := false

	for _, child := range parser.NamedChildren(object) {
		if child.Type() == "comment" {
			c := ast.Comment{
				Text:   parser.GetNodeText(child, source),
				Indent: parser.LineIndent(source, child.StartByte()),
			}
			if havePrev && len(pending) == 0 && child.StartPoint().Row == prevEndRow {
				members[len(members)-1].Trailing = append(members[len(members)-1].Trailing, c)
				continue
			}
			pending = append(pending, c)
			continue
		}

		mem, diag, good := m.member(child, source, class, top)
		if !good {
			return nil, nil, append(diags, diag), false
		}
		mem.Doc = pending
		mem.Line = parser.Line(child)
		mem.Index = len(members)
		pending = nil
		members = append(members, mem)
		prevEndRow = child.EndPoint().Row
		havePrev = true
	}

	return members, pending, diags, true
}

func (m *Matcher) member(node *sitter.Node, source []byte, class string, top bool) (models.Member, models.Diagnostic, bool) {
	mem := models.Member{Node: node}

	switch node.Type() {
	case "pair":
		mem.Key = keyOf(node.ChildByFieldName("key"), source)
		mem.Value = unwrapParens(node.ChildByFieldName("value"))
		mem.Kind = m.classifyPair(mem.Key, mem.Value, top)
	case "method_definition":
		mem.Key = keyOf(node.ChildByFieldName("name"), source)
		mem.Shorthand = true
		mem.Kind = models.MemberMethod
		if top && mem.Key.IsStatic() && mem.Key.Name == "constructor" && !isAccessor(node) {
			mem.Kind = models.MemberConstructor
		}
	case "shorthand_property_identifier":
		mem.Key = ast.IdentKey(parser.GetNodeText(node, source))
		mem.Value = node
		mem.Kind = models.MemberProperty
		if top && mem.Key.Name == m.opts.ExtendsKey {
			mem.Kind = models.MemberExtends
		}
	case "spread_element":
		return mem, models.Warn(parser.Line(node), class,
			"declaration skipped: member map contains a spread element"), false
	default:
		return mem, models.Warn(parser.Line(node), class,
			"declaration skipped: unsupported member map entry %q", node.Type()), false
	}

	if mem.Kind == models.MemberStaticGroup {
		children, dangling, diags, ok := m.members(mem.Value, source, class, false)
		if !ok {
			return mem, diags[len(diags)-1], false
		}
		if len(dangling) > 0 && len(children) > 0 {
			last := &children[len(children)-1]
			last.Trailing = append(last.Trailing, dangling...)
		}
		mem.Children = children
	}

	return mem, models.Diagnostic{}, true
}

func (m *Matcher) classifyPair(key ast.Key, value *sitter.Node, top bool) models.MemberKind {
	if value == nil {
		return models.MemberProperty
	}
	isFunc := parser.IsFunctionExpression(value.Type())
	if top && key.IsStatic() {
		switch key.Name {
		case m.opts.ExtendsKey:
			return models.MemberExtends
		case m.opts.StaticKey:
			if value.Type() == "object" {
				return models.MemberStaticGroup
			}
		case "constructor":
			if isFunc {
				return models.MemberConstructor
			}
		}
	}
	if isFunc {
		return models.MemberMethod
	}
	return models.MemberProperty
}

func isAccessor(node *sitter.Node) bool {
	for i := range int(node.ChildCount()) {
		switch node.Child(i).Type() {
		case "get", "set":
			return true
		}
	}
	return false
}

// keyOf reads a member key. Keys that cannot be resolved to a simple name
// are kept as computed keys and passed through as written.
func keyOf(node *sitter.Node, source []byte) ast.Key {
	if node == nil {
		return ast.Key{Kind: ast.KeyComputed}
	}
	text := parser.GetNodeText(node, source)
	switch node.Type() {
	case "property_identifier", "identifier", "shorthand_property_identifier":
		return ast.IdentKey(text)
	case "string":
		if value, ok := stringValue(node, source); ok {
			return ast.StringKey(value, text)
		}
	case "number":
		return ast.Key{Name: text, Kind: ast.KeyNumber, Text: text}
	case "computed_property_name":
		inner := text
		if node.NamedChildCount() > 0 {
			inner = parser.GetNodeText(node.NamedChild(0), source)
		}
		return ast.Key{Name: inner, Kind: ast.KeyComputed, Text: text}
	}
	return ast.Key{Name: text, Kind: ast.KeyComputed, Text: "[" + text + "]"}
}
