package ast

// Node is the interface for all program tree nodes.
type Node interface {
	node()
}

// Statement is the interface for statement nodes.
type Statement interface {
	Node
	stmt()
}

// Expression is the interface for expression nodes. Entity references
// (*Variable, *Function) and the literal scalar types are expressions too.
type Expression interface {
	Node
	expr()
}

// Script is the root node.
type Script struct {
	Statements []Statement
	// Entities owns every user entity referenced from Statements.
	Entities *Arena
}

func (s *Script) node() {}

// VariableDeclaration represents set/stay name = initializer.
type VariableDeclaration struct {
	Variable    *Variable
	Initializer Expression
}

func (d *VariableDeclaration) node() {}
func (d *VariableDeclaration) stmt() {}

// Assignment represents reset target = source.
type Assignment struct {
	Target *Variable
	Source Expression
}

func (a *Assignment) node() {}
func (a *Assignment) stmt() {}

// TypeDeclaration represents a breed declaration.
type TypeDeclaration struct {
	Type *StructType
}

func (d *TypeDeclaration) node() {}
func (d *TypeDeclaration) stmt() {}

// FunctionDeclaration represents kitty name(params) body nap.
type FunctionDeclaration struct {
	Fun    *Function
	Params []*Variable
	Body   []Statement
}

func (d *FunctionDeclaration) node() {}
func (d *FunctionDeclaration) stmt() {}

// PrintStatement represents meow(expression).
type PrintStatement struct {
	Expression Expression
}

func (p *PrintStatement) node() {}
func (p *PrintStatement) stmt() {}

// ShortIfStatement is an if without an else.
type ShortIfStatement struct {
	Test       Expression
	Consequent []Statement
}

func (s *ShortIfStatement) node() {}
func (s *ShortIfStatement) stmt() {}

// Alternate is the else part of an IfStatement: an ElseBlock or a chained
// *IfStatement.
type Alternate interface {
	Node
	alternate()
}

// ElseBlock is a plain else branch.
type ElseBlock []Statement

func (b ElseBlock) node()      {}
func (b ElseBlock) alternate() {}

// IfStatement is an if with an else or else-if branch.
type IfStatement struct {
	Test       Expression
	Consequent []Statement
	Alternate  Alternate
}

func (s *IfStatement) node()      {}
func (s *IfStatement) stmt()      {}
func (s *IfStatement) alternate() {}

// WhileStatement represents whisker test body nap.
type WhileStatement struct {
	Test Expression
	Body []Statement
}

func (w *WhileStatement) node() {}
func (w *WhileStatement) stmt() {}

// ForStatement represents fur iterator in collection body nap.
type ForStatement struct {
	Iterator   *Variable
	Collection Expression
	Body       []Statement
}

func (f *ForStatement) node() {}
func (f *ForStatement) stmt() {}

// BreakStatement represents break.
type BreakStatement struct{}

func (b *BreakStatement) node() {}
func (b *BreakStatement) stmt() {}

// ReturnStatement represents purr expression.
type ReturnStatement struct {
	Expression Expression
}

func (r *ReturnStatement) node() {}
func (r *ReturnStatement) stmt() {}

// ShortReturnStatement represents a bare purr.
type ShortReturnStatement struct{}

func (r *ShortReturnStatement) node() {}
func (r *ShortReturnStatement) stmt() {}

// Increment represents pounce x++.
type Increment struct {
	Variable *Variable
}

func (i *Increment) node() {}
func (i *Increment) stmt() {}

// Decrement represents pounce x--.
type Decrement struct {
	Variable *Variable
}

func (d *Decrement) node() {}
func (d *Decrement) stmt() {}

// BinaryExpression represents left op right.
type BinaryExpression struct {
	Op    string
	Left  Expression
	Right Expression
	Type  Type
}

func (b *BinaryExpression) node() {}
func (b *BinaryExpression) expr() {}

// UnaryExpression represents op operand, where op is "-", "!" or "some".
type UnaryExpression struct {
	Op      string
	Operand Expression
	Type    Type
}

func (u *UnaryExpression) node() {}
func (u *UnaryExpression) expr() {}

// Conditional represents test ? consequent : alternate.
type Conditional struct {
	Test       Expression
	Consequent Expression
	Alternate  Expression
	Type       Type
}

func (c *Conditional) node() {}
func (c *Conditional) expr() {}

// ArrayExpression is an array literal. An empty one still carries its type.
type ArrayExpression struct {
	Elements []Expression
	Type     *ArrayType
}

func (a *ArrayExpression) node() {}
func (a *ArrayExpression) expr() {}

// EmptyOptional represents no T.
type EmptyOptional struct {
	Type *OptionalType
}

func (e *EmptyOptional) node() {}
func (e *EmptyOptional) expr() {}

// FunctionCall represents callee(args). A call may also stand as a statement.
type FunctionCall struct {
	Callee Expression
	Args   []Expression
	Type   Type
}

func (c *FunctionCall) node() {}
func (c *FunctionCall) expr() {}
func (c *FunctionCall) stmt() {}

// ConstructorCall builds a struct value from one argument per field.
type ConstructorCall struct {
	Struct *StructType
	Args   []Expression
}

func (c *ConstructorCall) node() {}
func (c *ConstructorCall) expr() {}

// MemberExpression represents object.field.
type MemberExpression struct {
	Object Expression
	Field  *Field
}

func (m *MemberExpression) node() {}
func (m *MemberExpression) expr() {}

// SubscriptExpression represents array[index].
type SubscriptExpression struct {
	Array Expression
	Index Expression
	Type  Type
}

func (s *SubscriptExpression) node() {}
func (s *SubscriptExpression) expr() {}

// Literal values are represented by native scalars.
type (
	IntLit    int64
	FloatLit  float64
	StringLit string
	BoolLit   bool
)

func (IntLit) node()    {}
func (IntLit) expr()    {}
func (FloatLit) node()  {}
func (FloatLit) expr()  {}
func (StringLit) node() {}
func (StringLit) expr() {}
func (BoolLit) node()   {}
func (BoolLit) expr()   {}

// TypeOf returns the static type of an expression.
func TypeOf(e Expression) Type {
	switch ex := e.(type) {
	case IntLit:
		return IntType
	case FloatLit:
		return FloatType
	case StringLit:
		return StringType
	case BoolLit:
		return BooleanType
	case *Variable:
		return ex.Type
	case *Function:
		return ex.Type
	case *BinaryExpression:
		return ex.Type
	case *UnaryExpression:
		return ex.Type
	case *Conditional:
		return ex.Type
	case *ArrayExpression:
		return ex.Type
	case *EmptyOptional:
		return ex.Type
	case *FunctionCall:
		return ex.Type
	case *ConstructorCall:
		return ex.Struct
	case *MemberExpression:
		return ex.Field.Type
	case *SubscriptExpression:
		return ex.Type
	}
	return AnyType
}
