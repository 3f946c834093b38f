package parser

import "modernc.org/token"

// Node is implemented by every parse tree node.
type Node interface {
	Pos() token.Pos
}

// Stmt is a statement in the parse tree.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression in the parse tree.
type Expr interface {
	Node
	exprNode()
}

// TypeExpr is a written type.
type TypeExpr interface {
	Node
	typeNode()
}

// File is the root of a parse tree.
type File struct {
	Stmts []Stmt
}

// Ident is a name occurrence. It is also an expression.
type Ident struct {
	At   token.Pos
	Name string
}

func (n *Ident) Pos() token.Pos { return n.At }
func (n *Ident) exprNode()      {}

// Statements.

type (
	// VarDecl is set x = e (Mutable) or stay x = e.
	VarDecl struct {
		At      token.Pos
		Mutable bool
		Name    *Ident
		Init    Expr
	}

	// Assign is reset x = e.
	Assign struct {
		At    token.Pos
		Name  *Ident
		Value Expr
	}

	// Print is meow(e).
	Print struct {
		At  token.Pos
		Arg Expr
	}

	// Pounce is pounce x++ or pounce x--.
	Pounce struct {
		At   token.Pos
		Name *Ident
		Op   string
	}

	// If has either no else (HasElse false, ElseIf nil), an else block, or
	// a chained ElseIf.
	If struct {
		At      token.Pos
		Test    Expr
		Then    []Stmt
		HasElse bool
		Else    []Stmt
		ElseIf  *If
	}

	// While is whisker test: body nap.
	While struct {
		At   token.Pos
		Test Expr
		Body []Stmt
	}

	// For is fur x in e: body nap.
	For struct {
		At         token.Pos
		Var        *Ident
		Collection Expr
		Body       []Stmt
	}

	// Param is a name with a type annotation; struct fields use it too.
	Param struct {
		Name *Ident
		Type TypeExpr
	}

	// FuncDecl is kitty f(params) -> result: body nap. Result is nil for
	// a function that returns nothing.
	FuncDecl struct {
		At     token.Pos
		Name   *Ident
		Params []*Param
		Result TypeExpr
		Body   []Stmt
	}

	// StructDecl is breed Name: fields nap.
	StructDecl struct {
		At     token.Pos
		Name   *Ident
		Fields []*Param
	}

	// Return is purr with an optional value.
	Return struct {
		At    token.Pos
		Value Expr
	}

	Break struct {
		At token.Pos
	}

	Import struct {
		At   token.Pos
		Name *Ident
	}

	// CallStmt is a call standing alone as a statement.
	CallStmt struct {
		Call *Call
	}
)

func (n *VarDecl) Pos() token.Pos    { return n.At }
func (n *Assign) Pos() token.Pos     { return n.At }
func (n *Print) Pos() token.Pos      { return n.At }
func (n *Pounce) Pos() token.Pos     { return n.At }
func (n *If) Pos() token.Pos         { return n.At }
func (n *While) Pos() token.Pos      { return n.At }
func (n *For) Pos() token.Pos        { return n.At }
func (n *FuncDecl) Pos() token.Pos   { return n.At }
func (n *StructDecl) Pos() token.Pos { return n.At }
func (n *Return) Pos() token.Pos     { return n.At }
func (n *Break) Pos() token.Pos      { return n.At }
func (n *Import) Pos() token.Pos     { return n.At }
func (n *CallStmt) Pos() token.Pos   { return n.Call.Pos() }

func (*VarDecl) stmtNode()    {}
func (*Assign) stmtNode()     {}
func (*Print) stmtNode()      {}
func (*Pounce) stmtNode()     {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*FuncDecl) stmtNode()   {}
func (*StructDecl) stmtNode() {}
func (*Return) stmtNode()     {}
func (*Break) stmtNode()      {}
func (*Import) stmtNode()     {}
func (*CallStmt) stmtNode()   {}

// Expressions.

type (
	IntLit struct {
		At   token.Pos
		Text string
	}

	FloatLit struct {
		At   token.Pos
		Text string
	}

	StringLit struct {
		At    token.Pos
		Value string
	}

	BoolLit struct {
		At    token.Pos
		Value bool
	}

	// Binary is Left Op Right; At is the operator position.
	Binary struct {
		At    token.Pos
		Op    string
		Left  Expr
		Right Expr
	}

	// Unary is Op Operand where Op is "-", "!" or "some".
	Unary struct {
		At      token.Pos
		Op      string
		Operand Expr
	}

	// Cond is Test ? Then : Else; At is the "?" position.
	Cond struct {
		At   token.Pos
		Test Expr
		Then Expr
		Else Expr
	}

	ArrayLit struct {
		At    token.Pos
		Elems []Expr
	}

	// EmptyArray is [] of T.
	EmptyArray struct {
		At   token.Pos
		Elem TypeExpr
	}

	// NoValue is no T.
	NoValue struct {
		At   token.Pos
		Type TypeExpr
	}

	// Call is Callee(Args); At is the "(" position.
	Call struct {
		At     token.Pos
		Callee Expr
		Args   []Expr
	}

	// Member is Object.Name.
	Member struct {
		Object Expr
		Name   *Ident
	}

	// Index is Array[Index]; At is the "[" position.
	Index struct {
		At    token.Pos
		Array Expr
		Index Expr
	}
)

func (n *IntLit) Pos() token.Pos     { return n.At }
func (n *FloatLit) Pos() token.Pos   { return n.At }
func (n *StringLit) Pos() token.Pos  { return n.At }
func (n *BoolLit) Pos() token.Pos    { return n.At }
func (n *Binary) Pos() token.Pos     { return n.At }
func (n *Unary) Pos() token.Pos      { return n.At }
func (n *Cond) Pos() token.Pos       { return n.At }
func (n *ArrayLit) Pos() token.Pos   { return n.At }
func (n *EmptyArray) Pos() token.Pos { return n.At }
func (n *NoValue) Pos() token.Pos    { return n.At }
func (n *Call) Pos() token.Pos       { return n.At }
func (n *Member) Pos() token.Pos     { return n.Name.At }
func (n *Index) Pos() token.Pos      { return n.At }

func (*IntLit) exprNode()     {}
func (*FloatLit) exprNode()   {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*Binary) exprNode()     {}
func (*Unary) exprNode()      {}
func (*Cond) exprNode()       {}
func (*ArrayLit) exprNode()   {}
func (*EmptyArray) exprNode() {}
func (*NoValue) exprNode()    {}
func (*Call) exprNode()       {}
func (*Member) exprNode()     {}
func (*Index) exprNode()      {}

// Types.

type (
	// TypeName is a primitive or struct type referenced by name.
	TypeName struct {
		Name *Ident
	}

	// ArrayTypeExpr is [Elem].
	ArrayTypeExpr struct {
		At   token.Pos
		Elem TypeExpr
	}

	// OptionalTypeExpr is Base?.
	OptionalTypeExpr struct {
		Base TypeExpr
	}

	// FuncTypeExpr is (Params) -> Result.
	FuncTypeExpr struct {
		At     token.Pos
		Params []TypeExpr
		Result TypeExpr
	}
)

func (n *TypeName) Pos() token.Pos         { return n.Name.At }
func (n *ArrayTypeExpr) Pos() token.Pos    { return n.At }
func (n *OptionalTypeExpr) Pos() token.Pos { return n.Base.Pos() }
func (n *FuncTypeExpr) Pos() token.Pos     { return n.At }

func (*TypeName) typeNode()         {}
func (*ArrayTypeExpr) typeNode()    {}
func (*OptionalTypeExpr) typeNode() {}
func (*FuncTypeExpr) typeNode()     {}
