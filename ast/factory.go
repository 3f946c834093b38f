package ast

// Factory centralizes program tree construction for the analyzer, the
// optimizer and tests. It owns the arena that entities are allocated from.
type Factory struct {
	*Arena
}

// NewFactory returns a Factory allocating entities from arena. A nil arena
// gets a fresh one.
func NewFactory(arena *Arena) *Factory {
	if arena == nil {
		arena = NewArena()
	}
	return &Factory{Arena: arena}
}

// Script wraps statements into a root node bound to the factory's arena.
func (f *Factory) Script(stmts []Statement) *Script {
	return &Script{Statements: stmts, Entities: f.Arena}
}

// --- Statements ---

// Declare creates a VariableDeclaration.
func (f *Factory) Declare(v *Variable, init Expression) *VariableDeclaration {
	return &VariableDeclaration{Variable: v, Initializer: init}
}

// Assign creates an Assignment.
func (f *Factory) Assign(target *Variable, source Expression) *Assignment {
	return &Assignment{Target: target, Source: source}
}

// Print creates a PrintStatement.
func (f *Factory) Print(e Expression) *PrintStatement {
	return &PrintStatement{Expression: e}
}

// ShortIf creates an if without else.
func (f *Factory) ShortIf(test Expression, consequent []Statement) *ShortIfStatement {
	return &ShortIfStatement{Test: test, Consequent: consequent}
}

// If creates an if with an else block or a chained if.
func (f *Factory) If(test Expression, consequent []Statement, alternate Alternate) *IfStatement {
	return &IfStatement{Test: test, Consequent: consequent, Alternate: alternate}
}

// While creates a WhileStatement.
func (f *Factory) While(test Expression, body []Statement) *WhileStatement {
	return &WhileStatement{Test: test, Body: body}
}

// For creates a ForStatement.
func (f *Factory) For(iterator *Variable, collection Expression, body []Statement) *ForStatement {
	return &ForStatement{Iterator: iterator, Collection: collection, Body: body}
}

// Return creates a ReturnStatement, or a ShortReturnStatement when e is nil.
func (f *Factory) Return(e Expression) Statement {
	if e == nil {
		return &ShortReturnStatement{}
	}
	return &ReturnStatement{Expression: e}
}

// --- Expressions ---

// Binary creates a BinaryExpression of type t.
func (f *Factory) Binary(op string, left, right Expression, t Type) *BinaryExpression {
	return &BinaryExpression{Op: op, Left: left, Right: right, Type: t}
}

// Unary creates a UnaryExpression of type t.
func (f *Factory) Unary(op string, operand Expression, t Type) *UnaryExpression {
	return &UnaryExpression{Op: op, Operand: operand, Type: t}
}

// Array creates a non-empty array literal of element type elem.
func (f *Factory) Array(elem Type, elements ...Expression) *ArrayExpression {
	return &ArrayExpression{Elements: elements, Type: &ArrayType{Element: elem}}
}

// EmptyArray creates an empty array literal of element type elem.
func (f *Factory) EmptyArray(elem Type) *ArrayExpression {
	return &ArrayExpression{Type: &ArrayType{Element: elem}}
}

// Call creates a FunctionCall; its type is the callee's return type.
func (f *Factory) Call(callee Expression, args ...Expression) *FunctionCall {
	var ret Type = VoidType
	if ft, ok := TypeOf(callee).(*FunctionType); ok {
		ret = ft.Return
	}
	return &FunctionCall{Callee: callee, Args: args, Type: ret}
}

// --- Copy helpers ---
// The optimizer never mutates its input; these return shallow copies with
// the given children replaced.

// ScriptWith creates a Script sharing src's arena with new statements.
func (f *Factory) ScriptWith(src *Script, stmts []Statement) *Script {
	return &Script{Statements: stmts, Entities: src.Entities}
}

// FunctionDeclarationWithBody creates a shallow copy of d with a new body.
func (f *Factory) FunctionDeclarationWithBody(d *FunctionDeclaration, body []Statement) *FunctionDeclaration {
	cp := *d
	cp.Body = body
	return &cp
}

// IfWithBranches creates a shallow copy of s with new test and branches.
func (f *Factory) IfWithBranches(s *IfStatement, test Expression, consequent []Statement, alternate Alternate) *IfStatement {
	cp := *s
	cp.Test = test
	cp.Consequent = consequent
	cp.Alternate = alternate
	return &cp
}
