package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintClass(t *testing.T) {
	decl := &ClassDecl{
		Name:    "Child",
		Extends: NewIdent("Base"),
		Members: []ClassMember{
			&Method{Kind: KindConstructor, Body: []Stmt{
				SuperCall(ForwardArguments()),
				Assignment(&This{}, IdentKey("x"), NewRaw("1"), nil),
			}},
			&Method{Key: IdentKey("run"), Params: NewRaw("(a)"), Body: []Stmt{&Return{X: NewIdent("a")}}},
		},
	}

	want := "class Child extends Base {\n" +
		"    constructor() {\n" +
		"        super(...arguments);\n" +
		"        this.x = 1;\n" +
		"    }\n" +
		"\n" +
		"    run(a) {\n" +
		"        return a;\n" +
		"    }\n" +
		"}"
	assert.Equal(t, want, Print([]Stmt{decl}, PrintOptions{}))
}

func TestPrintClassVariants(t *testing.T) {
	tests := []struct {
		name string
		decl *ClassDecl
		want string
	}{
		{"empty", &ClassDecl{Name: "A"}, "class A {}"},
		{"anonymous", &ClassDecl{}, "class {}"},
		{
			"exported static",
			&ClassDecl{Name: "A", Export: true, Members: []ClassMember{&Method{Key: IdentKey("create"), Static: true}}},
			"export class A {\n    static create() {}\n}",
		},
		{
			"accessors and modifiers",
			&ClassDecl{Name: "A", Members: []ClassMember{
				&Method{Key: IdentKey("size"), Kind: KindGet},
				&Method{Key: IdentKey("load"), Async: true},
				&Method{Key: IdentKey("items"), Generator: true},
			}},
			"class A {\n    get size() {}\n\n    async load() {}\n\n    *items() {}\n}",
		},
		{
			"dangling comment",
			&ClassDecl{Name: "A", Members: []ClassMember{
				&Method{Key: IdentKey("run")},
				&CommentMember{Comments: []Comment{{Text: "// end"}}},
			}},
			"class A {\n    run() {}\n\n    // end\n}",
		},
		{
			"raw static member",
			&ClassDecl{Name: "A", Members: []ClassMember{
				&RawMember{Raw: NewRaw("make() { return new A(); }"), Static: true, Doc: []Comment{{Text: "// factory"}}},
			}},
			"class A {\n    // factory\n    static make() { return new A(); }\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Print([]Stmt{tt.decl}, PrintOptions{}))
		})
	}
}

func TestPrintBaseIndent(t *testing.T) {
	stmts := []Stmt{
		&ClassDecl{Name: "A"},
		Assignment(NewIdent("A"), IdentKey("b"), NewRaw("2"), []Comment{{Text: "// doc"}}),
	}
	got := Print(stmts, PrintOptions{Base: "  "})
	assert.Equal(t, "class A {}\n  // doc\n  A.b = 2;", got, "the first line is spliced at the original column")
}

func TestPrintCustomIndent(t *testing.T) {
	decl := &ClassDecl{Name: "A", Members: []ClassMember{
		&Method{Key: IdentKey("run"), Body: []Stmt{&Return{}}},
	}}
	assert.Equal(t, "class A {\n\trun() {\n\t\treturn;\n\t}\n}", Print([]Stmt{decl}, PrintOptions{Indent: "\t"}))
}

func TestPrintRawReindents(t *testing.T) {
	body := &Raw{Text: "{\n    return 1;\n  }", Indent: "  "}
	decl := &ClassDecl{Name: "A", Members: []ClassMember{
		&Method{Key: IdentKey("run"), RawBody: body},
	}}

	want := "class A {\n" +
		"    run() {\n" +
		"      return 1;\n" +
		"    }\n" +
		"}"
	assert.Equal(t, want, Print([]Stmt{decl}, PrintOptions{}), "relative indentation is kept")
}

func TestPrintRawFrozenLines(t *testing.T) {
	frozen := &ExprStmt{X: &Raw{Text: "`a\n  b`", Frozen: map[int]bool{1: true}}}
	assert.Equal(t, "`a\n  b`;", Print([]Stmt{frozen}, PrintOptions{Base: "    "}))

	thawed := &ExprStmt{X: &Raw{Text: "f(\n  b)"}}
	assert.Equal(t, "f(\n      b);", Print([]Stmt{thawed}, PrintOptions{Base: "    "}))
}

func TestPrintBlockComment(t *testing.T) {
	decl := &ClassDecl{Name: "A", Members: []ClassMember{
		&Method{Key: IdentKey("run"), Doc: []Comment{{Text: "/**\n   * Runs.\n   */", Indent: "  "}}},
	}}
	want := "class A {\n" +
		"    /**\n" +
		"     * Runs.\n" +
		"     */\n" +
		"    run() {}\n" +
		"}"
	assert.Equal(t, want, Print([]Stmt{decl}, PrintOptions{}))
}

func TestPrintTrailingComment(t *testing.T) {
	stmt := &ExprStmt{X: NewIdent("a"), Trailing: []Comment{{Text: "// t"}}}
	assert.Equal(t, "a; // t", Print([]Stmt{stmt}, PrintOptions{}))

	blank := []Stmt{&CommentStmt{Comments: []Comment{{Text: "// one"}, {Text: "// two"}}}}
	assert.Equal(t, "// one\n// two", Print(blank, PrintOptions{}))
}

func TestPrintExpr(t *testing.T) {
	call := &Call{
		Callee: &Member{Object: &Super{}, Key: IdentKey("run")},
		Args:   []Expr{NewIdent("a"), &Spread{X: NewIdent("rest")}},
	}
	assert.Equal(t, "super.run(a, ...rest)", PrintExpr(call))

	assign := &Assign{Left: &Member{Object: &This{}, Key: StringKey("a-b", "'a-b'")}, Right: NewRaw("[]")}
	assert.Equal(t, "this['a-b'] = []", PrintExpr(assign))

	assert.Equal(t, "X = class X {}", PrintExpr(&Assign{Left: NewIdent("X"), Right: &ClassDecl{Name: "X"}}))
}
