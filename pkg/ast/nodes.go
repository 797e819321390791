package ast

import (
	"regexp"
	"strings"
)

// Expr is an expression node.
type Expr interface {
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	stmtNode()
}

// ClassMember is a node that can appear in a class body.
type ClassMember interface {
	memberNode()
}

// Comment is a source comment re-attached to a node.
type Comment struct {
	Text string
	// Indent is the indentation of the line the comment started on,
	// used to shift continuation lines of block comments.
	Indent string
}

// Raw is a verbatim fragment of the original source.
type Raw struct {
	Text string
	// Indent is the indentation of the source line the fragment started on.
	Indent string
	// Frozen marks 0-based line numbers within Text that lie inside template
	// literals and must be printed unchanged.
	Frozen map[int]bool
}

// NewRaw creates a single-line raw fragment.
func NewRaw(text string) *Raw {
	return &Raw{Text: text}
}

// Ident is an identifier reference.
type Ident struct {
	Name string
}

// NewIdent creates an identifier.
func NewIdent(name string) *Ident {
	return &Ident{Name: name}
}

// This is the `this` keyword.
type This struct{}

// Super is the `super` keyword.
type Super struct{}

// Member is a property access on Object.
type Member struct {
	Object Expr
	Key    Key
}

// Call is a call expression.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Spread is a spread argument.
type Spread struct {
	X Expr
}

// Assign is an assignment expression.
type Assign struct {
	Left  Expr
	Right Expr
}

func (*Raw) exprNode()       {}
func (*Ident) exprNode()     {}
func (*This) exprNode()      {}
func (*Super) exprNode()     {}
func (*Member) exprNode()    {}
func (*Call) exprNode()      {}
func (*Spread) exprNode()    {}
func (*Assign) exprNode()    {}
func (*ClassDecl) exprNode() {}

// ExprStmt is an expression followed by a semicolon.
type ExprStmt struct {
	X        Expr
	Doc      []Comment
	Trailing []Comment
}

// Return is a return statement.
type Return struct {
	X   Expr
	Doc []Comment
}

// RawStmt is a statement copied verbatim from the source.
type RawStmt struct {
	*Raw
	Doc      []Comment
	Trailing []Comment
}

// CommentStmt holds comments with no following statement in a block.
type CommentStmt struct {
	Comments []Comment
}

func (*ExprStmt) stmtNode()    {}
func (*Return) stmtNode()      {}
func (*RawStmt) stmtNode()     {}
func (*CommentStmt) stmtNode() {}
func (*ClassDecl) stmtNode()   {}

// KeyKind classifies how a member key was written.
type KeyKind int

const (
	KeyIdentifier KeyKind = iota
	KeyString
	KeyNumber
	KeyComputed
)

// Key is a property or method name.
type Key struct {
	// Name is the identifier, the unquoted string value, or the number text.
	// For computed keys it is the inner expression text.
	Name string
	Kind KeyKind
	// Text is the key as written in the source ("'a-b'", "[sym]", "0x1").
	Text string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// IsIdentifierName reports whether s can be written as a bare property name.
func IsIdentifierName(s string) bool {
	return identPattern.MatchString(s)
}

// IdentKey creates an identifier key.
func IdentKey(name string) Key {
	return Key{Name: name, Kind: KeyIdentifier, Text: name}
}

// StringKey creates a string key, normalized to an identifier when possible.
func StringKey(value, text string) Key {
	if IsIdentifierName(value) {
		return IdentKey(value)
	}
	return Key{Name: value, Kind: KeyString, Text: text}
}

// IsStatic reports whether the key can be resolved to a simple name.
func (k Key) IsStatic() bool {
	return k.Kind != KeyComputed
}

// MemberName renders the key as a class member name.
func (k Key) MemberName() string {
	switch k.Kind {
	case KeyIdentifier:
		return k.Name
	default:
		return k.Text
	}
}

// Access renders the key as a property access suffix (".a", "['a-b']", "[sym]").
func (k Key) Access() string {
	switch k.Kind {
	case KeyIdentifier:
		return "." + k.Name
	case KeyComputed:
		if strings.HasPrefix(k.Text, "[") {
			return k.Text
		}
		return "[" + k.Text + "]"
	default:
		return "[" + k.Text + "]"
	}
}

// MethodKind distinguishes constructors and accessors from plain methods.
type MethodKind int

const (
	KindMethod MethodKind = iota
	KindConstructor
	KindGet
	KindSet
)

// Method is a class method built from parts.
type Method struct {
	Key       Key
	Kind      MethodKind
	Static    bool
	Async     bool
	Generator bool
	// Params is the parameter list including parentheses; nil prints "()".
	Params *Raw
	// RawBody, when set, is printed verbatim (including braces) instead of Body.
	RawBody  *Raw
	Body     []Stmt
	Doc      []Comment
	Trailing []Comment
}

// RawMember is a class member copied verbatim, e.g. a shorthand method.
type RawMember struct {
	*Raw
	Static   bool
	Doc      []Comment
	Trailing []Comment
}

// CommentMember is a comment with no following member in the body.
type CommentMember struct {
	Comments []Comment
}

func (*Method) memberNode()        {}
func (*RawMember) memberNode()     {}
func (*CommentMember) memberNode() {}

// ClassDecl is a class declaration, or a class expression when used as Expr.
type ClassDecl struct {
	Name    string
	Extends Expr
	Export  bool
	Members []ClassMember
}

// Constructor returns the constructor method, if any.
func (c *ClassDecl) Constructor() *Method {
	for _, m := range c.Members {
		if method, ok := m.(*Method); ok && method.Kind == KindConstructor {
			return method
		}
	}
	return nil
}

// FindMethod returns the first non-static method with the given name.
func (c *ClassDecl) FindMethod(name string) *Method {
	for _, m := range c.Members {
		if method, ok := m.(*Method); ok && !method.Static && method.Key.Name == name && method.Kind != KindConstructor {
			return method
		}
	}
	return nil
}

// ForwardArguments returns a fresh `...arguments` argument.
func ForwardArguments() Expr {
	return &Spread{X: NewIdent("arguments")}
}

// SuperCall returns a fresh `super(args);` statement.
func SuperCall(args ...Expr) *ExprStmt {
	return &ExprStmt{X: &Call{Callee: &Super{}, Args: args}}
}

// SuperMethodCall returns a fresh `super.name(args);` statement.
func SuperMethodCall(name string, args ...Expr) *ExprStmt {
	return &ExprStmt{X: &Call{
		Callee: &Member{Object: &Super{}, Key: IdentKey(name)},
		Args:   args,
	}}
}

// ThisMethodCall returns a fresh `this.name(args);` statement.
func ThisMethodCall(name string, args ...Expr) *ExprStmt {
	return &ExprStmt{X: &Call{
		Callee: &Member{Object: &This{}, Key: IdentKey(name)},
		Args:   args,
	}}
}

// Assignment returns a fresh `object<key> = value;` statement.
func Assignment(object Expr, key Key, value Expr, doc []Comment) *ExprStmt {
	return &ExprStmt{
		X:   &Assign{Left: &Member{Object: object, Key: key}, Right: value},
		Doc: doc,
	}
}

// IsSuperCall reports whether stmt is a `super(...)` statement.
func IsSuperCall(stmt Stmt) bool {
	es, ok := stmt.(*ExprStmt)
	if !ok {
		return false
	}
	call, ok := es.X.(*Call)
	if !ok {
		return false
	}
	_, ok = call.Callee.(*Super)
	return ok
}

// IsForwardingSuperCall reports whether stmt is `super(...arguments)`,
// or `super(...rest)` when params is exactly `(...rest)`.
func IsForwardingSuperCall(stmt Stmt, params *Raw) bool {
	if !IsSuperCall(stmt) {
		return false
	}
	call := stmt.(*ExprStmt).X.(*Call)
	if len(call.Args) != 1 {
		return false
	}
	spread, ok := call.Args[0].(*Spread)
	if !ok {
		return false
	}
	var name string
	switch x := spread.X.(type) {
	case *Ident:
		name = x.Name
	case *Raw:
		name = strings.TrimSpace(x.Text)
	default:
		return false
	}
	if name == "arguments" {
		return true
	}
	if params == nil {
		return false
	}
	p := strings.TrimSpace(params.Text)
	p = strings.TrimSuffix(strings.TrimPrefix(p, "("), ")")
	return strings.TrimSpace(p) == "..."+name
}
