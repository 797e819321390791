package ast

import (
	"strings"
)

// DefaultIndent is one level of indentation when none is configured.
const DefaultIndent = "    "

// PrintOptions controls the printer.
type PrintOptions struct {
	// Indent is one level of indentation.
	Indent string
	// Base is the indentation of the column the output is spliced at. The
	// first line is not prefixed with it; every following line is.
	Base string
}

// Print renders top-level statements. The result has no trailing newline.
func Print(stmts []Stmt, opts PrintOptions) string {
	if opts.Indent == "" {
		opts.Indent = DefaultIndent
	}
	p := &printer{opts: opts, lineStart: true}
	for _, s := range stmts {
		p.stmt(s)
	}
	return strings.TrimRight(p.buf.String(), "\n")
}

// PrintExpr renders a single expression on its own.
func PrintExpr(x Expr) string {
	p := &printer{opts: PrintOptions{Indent: DefaultIndent}, lineStart: true}
	p.expr(x)
	return p.buf.String()
}

type printer struct {
	opts       PrintOptions
	buf        strings.Builder
	level      int
	lineStart  bool
	lineIndent string
}

func (p *printer) indent() string {
	return p.opts.Base + strings.Repeat(p.opts.Indent, p.level)
}

// write appends single-line text, emitting indentation at the start of a line.
func (p *printer) write(s string) {
	if p.lineStart {
		p.lineIndent = p.indent()
		if p.buf.Len() == 0 {
			p.buf.WriteString(strings.TrimPrefix(p.lineIndent, p.opts.Base))
		} else {
			p.buf.WriteString(p.lineIndent)
		}
		p.lineStart = false
	}
	p.buf.WriteString(s)
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.lineStart = true
}

// raw writes a possibly multi-line fragment. Continuation lines keep their
// indentation relative to the fragment's first line.
func (p *printer) raw(r *Raw) {
	if r == nil {
		return
	}
	lines := strings.Split(r.Text, "\n")
	p.write(lines[0])
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		p.buf.WriteByte('\n')
		switch {
		case r.Frozen[i]:
			p.buf.WriteString(line)
		case strings.TrimSpace(line) == "":
		default:
			p.buf.WriteString(p.lineIndent)
			p.buf.WriteString(stripIndent(line, r.Indent))
		}
	}
}

func stripIndent(line, indent string) string {
	if strings.HasPrefix(line, indent) {
		return line[len(indent):]
	}
	return strings.TrimLeft(line, " \t")
}

func (p *printer) comments(cs []Comment) {
	for _, c := range cs {
		p.raw(&Raw{Text: c.Text, Indent: c.Indent})
		p.newline()
	}
}

func (p *printer) trailing(cs []Comment) {
	for _, c := range cs {
		p.write(" ")
		p.raw(&Raw{Text: c.Text, Indent: c.Indent})
	}
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		p.comments(s.Doc)
		p.expr(s.X)
		p.write(";")
		p.trailing(s.Trailing)
		p.newline()
	case *Return:
		p.comments(s.Doc)
		p.write("return")
		if s.X != nil {
			p.write(" ")
			p.expr(s.X)
		}
		p.write(";")
		p.newline()
	case *RawStmt:
		p.comments(s.Doc)
		p.raw(s.Raw)
		p.trailing(s.Trailing)
		p.newline()
	case *CommentStmt:
		p.comments(s.Comments)
	case *ClassDecl:
		p.class(s)
		p.newline()
	}
}

func (p *printer) class(c *ClassDecl) {
	if c.Export {
		p.write("export ")
	}
	p.write("class")
	if c.Name != "" {
		p.write(" " + c.Name)
	}
	if c.Extends != nil {
		p.write(" extends ")
		p.expr(c.Extends)
	}
	if len(c.Members) == 0 {
		p.write(" {}")
		return
	}
	p.write(" {")
	p.newline()
	p.level++
	for i, m := range c.Members {
		if i > 0 {
			p.newline()
		}
		p.member(m)
	}
	p.level--
	p.write("}")
}

func (p *printer) member(m ClassMember) {
	switch m := m.(type) {
	case *Method:
		p.method(m)
	case *RawMember:
		p.comments(m.Doc)
		if m.Static {
			p.write("static ")
		}
		p.raw(m.Raw)
		p.trailing(m.Trailing)
		p.newline()
	case *CommentMember:
		p.comments(m.Comments)
	}
}

func (p *printer) method(m *Method) {
	p.comments(m.Doc)
	if m.Static {
		p.write("static ")
	}
	if m.Async {
		p.write("async ")
	}
	switch m.Kind {
	case KindGet:
		p.write("get ")
	case KindSet:
		p.write("set ")
	}
	if m.Generator {
		p.write("*")
	}
	if m.Kind == KindConstructor {
		p.write("constructor")
	} else {
		p.write(m.Key.MemberName())
	}
	if m.Params != nil {
		p.raw(m.Params)
	} else {
		p.write("()")
	}
	p.write(" ")
	switch {
	case m.RawBody != nil:
		p.raw(m.RawBody)
	case len(m.Body) == 0:
		p.write("{}")
	default:
		p.write("{")
		p.newline()
		p.level++
		for _, s := range m.Body {
			p.stmt(s)
		}
		p.level--
		p.write("}")
	}
	p.trailing(m.Trailing)
	p.newline()
}

func (p *printer) expr(x Expr) {
	switch x := x.(type) {
	case *Raw:
		p.raw(x)
	case *Ident:
		p.write(x.Name)
	case *This:
		p.write("this")
	case *Super:
		p.write("super")
	case *Member:
		p.expr(x.Object)
		p.write(x.Key.Access())
	case *Call:
		p.expr(x.Callee)
		p.write("(")
		for i, arg := range x.Args {
			if i > 0 {
				p.write(", ")
			}
			p.expr(arg)
		}
		p.write(")")
	case *Spread:
		p.write("...")
		p.expr(x.X)
	case *Assign:
		p.expr(x.Left)
		p.write(" = ")
		p.expr(x.Right)
	case *ClassDecl:
		p.class(x)
	}
}
