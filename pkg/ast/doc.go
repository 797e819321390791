// Package ast provides the output tree for converted class declarations
// and the printer that turns it back into JavaScript text.
//
// The tree is a small closed set of variant types. Fragments copied from
// the original source are carried as *Raw values so untouched code keeps
// its exact text; only indentation is shifted to the new nesting depth.
//
// Usage:
//
//	cls := &ast.ClassDecl{Name: "Foo", Extends: ast.NewIdent("Base")}
//	cls.Members = append(cls.Members, &ast.Method{
//	    Key:  ast.IdentKey("run"),
//	    Body: []ast.Stmt{ast.SuperCall(ast.ForwardArguments())},
//	})
//	text := ast.Print([]ast.Stmt{cls}, ast.PrintOptions{Indent: "    "})
package ast
