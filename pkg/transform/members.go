package transform

import (
	"github.com/panbanda/es6class/pkg/ast"
	"github.com/panbanda/es6class/pkg/models"
)

// attachMethod places an instance method at its map position.
func (t *classTransform) attachMethod(m models.Member) {
	t.placed[m.Index] = append(t.placed[m.Index], t.method(m, false))
	t.summary.Methods++
}

// method builds a class method from a function-valued member. Marker
// references in the body resolve to the parent's method of the same name.
func (t *classTransform) method(m models.Member, static bool) ast.ClassMember {
	target := "super" + m.Key.Access()

	if m.Shorthand {
		body := m.Node.ChildByFieldName("body")
		return &ast.RawMember{
			Raw:      rawFromNode(m.Node, t.source, t.superEdits(body, target)),
			Static:   static,
			Doc:      m.Doc,
			Trailing: m.Trailing,
		}
	}

	fn := m.Value
	body := fn.ChildByFieldName("body")
	return &ast.Method{
		Key:       m.Key,
		Static:    static,
		Async:     hasChildType(fn, "async"),
		Generator: fn.Type() == "generator_function" || hasChildType(fn, "*"),
		Params:    rawFromNode(fn.ChildByFieldName("parameters"), t.source, nil),
		RawBody:   rawFromNode(body, t.source, t.superEdits(body, target)),
		Doc:       m.Doc,
		Trailing:  m.Trailing,
	}
}

// relocateStatics turns the static group into static methods at the
// group's position and property assignments after the class.
func (t *classTransform) relocateStatics(group models.Member) {
	lead := group.Doc
	for _, c := range group.Children {
		if len(lead) > 0 {
			c.Doc = append(append([]ast.Comment(nil), lead...), c.Doc...)
			lead = nil
		}
		if c.IsFunction() {
			t.placed[group.Index] = append(t.placed[group.Index], t.method(c, true))
			t.summary.StaticMethods++
			continue
		}
		stmt := ast.Assignment(t.staticObject(), c.Key, t.value(c), c.Doc)
		stmt.Trailing = c.Trailing
		t.statics = append(t.statics, stmt)
		t.summary.StaticProps++
	}

	if rest := append(append([]ast.Comment(nil), lead...), group.Trailing...); len(rest) > 0 {
		t.placed[group.Index] = append(t.placed[group.Index], &ast.CommentMember{Comments: rest})
	}
}

// value is the initializer expression of a property member.
func (t *classTransform) value(m models.Member) ast.Expr {
	if m.Value == nil {
		return ast.NewIdent("undefined")
	}
	return rawFromNode(m.Value, t.source, t.superEdits(m.Value, "super"+m.Key.Access()))
}

// propertyInits creates the `this.key = value;` statements for plain
// properties. A property the constructor already assigns at top level
// keeps that assignment, which takes over the property's comments.
func (t *classTransform) propertyInits() []ast.Stmt {
	var out []ast.Stmt
	for _, p := range t.props {
		if existing := t.ctor.assignment(p.Key); existing != nil {
			existing.Doc = append(append(append([]ast.Comment(nil), p.Doc...), p.Trailing...), existing.Doc...)
			t.info(p.Line, "property %s is assigned by the constructor, default value dropped", p.Key.Name)
			continue
		}
		stmt := ast.Assignment(&ast.This{}, p.Key, t.value(p), p.Doc)
		stmt.Trailing = p.Trailing
		out = append(out, stmt)
	}
	return out
}

// hasPreInitMember reports whether the map already defines a member with
// the initialization method's name.
func (t *classTransform) hasPreInitMember() bool {
	for _, m := range t.match.Members {
		if m.Kind != models.MemberMethod && m.Kind != models.MemberProperty {
			continue
		}
		if m.Key.IsStatic() && m.Key.Name == t.opts.PreInitName {
			return true
		}
	}
	return false
}
