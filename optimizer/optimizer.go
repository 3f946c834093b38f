// Package optimizer simplifies a checked program tree: constant folding,
// algebraic identities, and removal of dead branches and no-op statements.
//
// Every rewrite builds new nodes. The input tree is never mutated, subtrees
// that do not change are shared with the output, and entities are never
// copied. The optimizer assumes its input passed analysis and never fails.
package optimizer

import "github.com/kis-lang/kis/ast"

// Optimize rewrites a whole program. The result shares the input's arena.
func Optimize(s *ast.Script) *ast.Script {
	stmts, changed := ast.FlatMapStatements(s.Statements, Statement)
	if !changed {
		return s
	}
	return factory.ScriptWith(s, stmts)
}

// Pass returns Optimize as a named tree transform.
func Pass() ast.Transform {
	return ast.TransformFunc{N: "optimize", F: Optimize}
}

// factory has no arena: the optimizer only builds nodes, never entities.
var factory ast.Factory

// Statements optimizes a statement list.
func Statements(stmts []ast.Statement) []ast.Statement {
	out, _ := ast.FlatMapStatements(stmts, Statement)
	return out
}

// Statement optimizes one statement. Removing a statement yields an empty
// list; a folded if yields the statements of the branch taken.
func Statement(s ast.Statement) []ast.Statement {
	switch st := s.(type) {
	case *ast.VariableDeclaration:
		init := Expression(st.Initializer)
		if init == st.Initializer {
			return keep(s)
		}
		return keep(factory.Declare(st.Variable, init))

	case *ast.Assignment:
		source := Expression(st.Source)
		if v, ok := source.(*ast.Variable); ok && v == st.Target {
			return nil
		}
		if source == st.Source {
			return keep(s)
		}
		return keep(factory.Assign(st.Target, source))

	case *ast.FunctionDeclaration:
		body, changed := ast.FlatMapStatements(st.Body, Statement)
		if !changed {
			return keep(s)
		}
		return keep(factory.FunctionDeclarationWithBody(st, body))

	case *ast.PrintStatement:
		e := Expression(st.Expression)
		if e == st.Expression {
			return keep(s)
		}
		return keep(factory.Print(e))

	case *ast.ShortIfStatement:
		test := Expression(st.Test)
		if b, ok := test.(ast.BoolLit); ok {
			if b {
				return Statements(st.Consequent)
			}
			return nil
		}
		cons, changed := ast.FlatMapStatements(st.Consequent, Statement)
		if test == st.Test && !changed {
			return keep(s)
		}
		return keep(factory.ShortIf(test, cons))

	case *ast.IfStatement:
		return ifStatement(st)

	case *ast.WhileStatement:
		test := Expression(st.Test)
		if b, ok := test.(ast.BoolLit); ok && !bool(b) {
			return nil
		}
		body, changed := ast.FlatMapStatements(st.Body, Statement)
		if test == st.Test && !changed {
			return keep(s)
		}
		return keep(factory.While(test, body))

	case *ast.ForStatement:
		coll := Expression(st.Collection)
		if arr, ok := coll.(*ast.ArrayExpression); ok && len(arr.Elements) == 0 {
			return nil
		}
		body, changed := ast.FlatMapStatements(st.Body, Statement)
		if coll == st.Collection && !changed {
			return keep(s)
		}
		return keep(factory.For(st.Iterator, coll, body))

	case *ast.ReturnStatement:
		e := Expression(st.Expression)
		if e == st.Expression {
			return keep(s)
		}
		return keep(factory.Return(e))

	case *ast.FunctionCall:
		// Calls are never folded away, so the result is still a call.
		return keep(Expression(st).(*ast.FunctionCall))
	}
	// TypeDeclaration, BreakStatement, ShortReturnStatement, Increment and
	// Decrement have nothing to simplify.
	return keep(s)
}

func keep(s ast.Statement) []ast.Statement {
	return []ast.Statement{s}
}

func ifStatement(st *ast.IfStatement) []ast.Statement {
	test := Expression(st.Test)
	if b, ok := test.(ast.BoolLit); ok {
		if b {
			return Statements(st.Consequent)
		}
		return alternate(st.Alternate)
	}
	cons, consChanged := ast.FlatMapStatements(st.Consequent, Statement)

	var alt ast.Alternate
	altChanged := false
	switch a := st.Alternate.(type) {
	case ast.ElseBlock:
		block, changed := ast.FlatMapStatements(a, Statement)
		alt, altChanged = ast.ElseBlock(block), changed
	case *ast.IfStatement:
		alt = a
		if out := ifStatement(a); len(out) != 1 || out[0] != ast.Statement(a) {
			altChanged = true
			if chained, ok := singleIf(out); ok {
				alt = chained
			} else {
				alt = ast.ElseBlock(out)
			}
		}
	}
	if block, ok := alt.(ast.ElseBlock); ok && len(block) == 0 {
		return keep(factory.ShortIf(test, cons))
	}
	if test == st.Test && !consChanged && !altChanged {
		return keep(st)
	}
	return keep(factory.IfWithBranches(st, test, cons, alt))
}

// alternate returns the statements of a taken else branch.
func alternate(a ast.Alternate) []ast.Statement {
	switch a := a.(type) {
	case ast.ElseBlock:
		return Statements(a)
	case *ast.IfStatement:
		return ifStatement(a)
	}
	return nil
}

func singleIf(stmts []ast.Statement) (*ast.IfStatement, bool) {
	if len(stmts) != 1 {
		return nil, false
	}
	s, ok := stmts[0].(*ast.IfStatement)
	return s, ok
}

// Expression optimizes an expression bottom-up.
func Expression(e ast.Expression) ast.Expression {
	switch ex := e.(type) {
	case *ast.BinaryExpression:
		l, r := Expression(ex.Left), Expression(ex.Right)
		if folded := binary(ex.Op, l, r, ex.Type); folded != nil {
			return folded
		}
		if l == ex.Left && r == ex.Right {
			return e
		}
		return factory.Binary(ex.Op, l, r, ex.Type)

	case *ast.UnaryExpression:
		x := Expression(ex.Operand)
		if folded := unary(ex.Op, x); folded != nil {
			return folded
		}
		if x == ex.Operand {
			return e
		}
		return factory.Unary(ex.Op, x, ex.Type)

	case *ast.Conditional:
		test := Expression(ex.Test)
		if b, ok := test.(ast.BoolLit); ok {
			if b {
				return Expression(ex.Consequent)
			}
			return Expression(ex.Alternate)
		}
		cons, alt := Expression(ex.Consequent), Expression(ex.Alternate)
		if test == ex.Test && cons == ex.Consequent && alt == ex.Alternate {
			return e
		}
		return &ast.Conditional{Test: test, Consequent: cons, Alternate: alt, Type: ex.Type}

	case *ast.ArrayExpression:
		elems, changed := ast.MapSlice(ex.Elements, Expression)
		if !changed {
			return e
		}
		return &ast.ArrayExpression{Elements: elems, Type: ex.Type}

	case *ast.FunctionCall:
		callee := Expression(ex.Callee)
		args, changed := ast.MapSlice(ex.Args, Expression)
		if callee == ex.Callee && !changed {
			return e
		}
		return &ast.FunctionCall{Callee: callee, Args: args, Type: ex.Type}

	case *ast.ConstructorCall:
		args, changed := ast.MapSlice(ex.Args, Expression)
		if !changed {
			return e
		}
		return &ast.ConstructorCall{Struct: ex.Struct, Args: args}

	case *ast.MemberExpression:
		obj := Expression(ex.Object)
		if obj == ex.Object {
			return e
		}
		return &ast.MemberExpression{Object: obj, Field: ex.Field}

	case *ast.SubscriptExpression:
		arr, idx := Expression(ex.Array), Expression(ex.Index)
		if arr == ex.Array && idx == ex.Index {
			return e
		}
		return &ast.SubscriptExpression{Array: arr, Index: idx, Type: ex.Type}
	}
	// Literals, entity references and EmptyOptional are already minimal.
	return e
}
