// Package analyzer checks a Kis parse tree against the scope and type rules
// and builds the typed program tree.
package analyzer

import (
	"fmt"
	"strconv"

	"github.com/kis-lang/kis/ast"
	"github.com/kis-lang/kis/parser"
)

// Analyze builds the program tree for a parsed program. It stops at the
// first violation and returns it as an *Error.
func Analyze(match *parser.Match) (script *ast.Script, err error) {
	a := newAnalyzer(match)
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bail)
			if !ok {
				panic(r)
			}
			script, err = nil, b.err
		}
	}()
	stmts := a.block(match.File.Stmts)
	return a.f.Script(stmts), nil
}

type bail struct{ err *Error }

func newAnalyzer(match *parser.Match) *analyzer {
	return &analyzer{
		match:   match,
		f:       ast.NewFactory(nil),
		ctx:     newRootContext(),
		funcs:   map[*parser.FuncDecl]*ast.Function{},
		structs: map[*parser.StructDecl]*ast.StructType{},
		reads:   map[*ast.Function][]ast.Entity{},
		seen:    map[bodyUse]bool{},
	}
}

type analyzer struct {
	match *parser.Match
	f     *ast.Factory
	ctx   *Context

	// Declarations hoisted by the first pass over a block.
	funcs   map[*parser.FuncDecl]*ast.Function
	structs map[*parser.StructDecl]*ast.StructType

	// Declaration order checks.
	frames []*frame
	bodies []*ast.Function
	reads  map[*ast.Function][]ast.Entity
	seen   map[bodyUse]bool
}

func (a *analyzer) fail(kind ErrorKind, at parser.Node, format string, args ...interface{}) {
	panic(bail{&Error{kind: kind, pos: a.match.Position(at.Pos()), msg: fmt.Sprintf(format, args...)}})
}

// push enters a child context; callers defer pop.
func (a *analyzer) push(opts ...contextOption) {
	a.ctx = a.ctx.child(opts...)
}

func (a *analyzer) pop() {
	a.ctx = a.ctx.parent
}

func (a *analyzer) declare(id *parser.Ident, e ast.Entity) {
	if err := a.ctx.add(id.Name, e); err != nil {
		derr := err.(*Error)
		derr.pos = a.match.Position(id.Pos())
		panic(bail{derr})
	}
}

// scoped analyzes stmts in a fresh child context.
func (a *analyzer) scoped(stmts []parser.Stmt, opts ...contextOption) []ast.Statement {
	a.push(opts...)
	defer a.pop()
	return a.block(stmts)
}

// block analyzes the statements of one scope in two passes. The first binds
// every struct type and function signature of the block so that they can
// be used before their declaration, including mutual recursion. The second
// analyzes the statements in order, and finally rejects calls that reach
// a block variable before its declaration.
func (a *analyzer) block(stmts []parser.Stmt) []ast.Statement {
	var structDecls []*parser.StructDecl
	var funcDecls []*parser.FuncDecl
	for _, s := range stmts {
		switch s := s.(type) {
		case *parser.StructDecl:
			st := a.f.Struct(s.Name.Name)
			a.declare(s.Name, st)
			a.structs[s] = st
			structDecls = append(structDecls, s)
		case *parser.FuncDecl:
			funcDecls = append(funcDecls, s)
		}
	}
	for _, s := range structDecls {
		a.structFields(s)
	}
	for _, s := range funcDecls {
		a.signature(s)
	}

	fr := a.enterFrame(funcDecls)
	out := make([]ast.Statement, 0, len(stmts))
	for i, s := range stmts {
		fr.index = i
		if st := a.stmt(s); st != nil {
			out = append(out, st)
		}
	}
	a.leaveFrame(fr)
	return out
}

func (a *analyzer) structFields(s *parser.StructDecl) {
	st := a.structs[s]
	for _, p := range s.Fields {
		if st.FieldNamed(p.Name.Name) != nil {
			a.fail(DeclarationError, p.Name, "Field %s already declared", p.Name.Name)
		}
		st.Fields = append(st.Fields, a.f.Field(p.Name.Name, a.typ(p.Type)))
	}
}

func (a *analyzer) signature(d *parser.FuncDecl) {
	fn := a.f.Function(d.Name.Name)
	a.declare(d.Name, fn)
	ft := &ast.FunctionType{Return: ast.VoidType}
	for _, p := range d.Params {
		ft.Params = append(ft.Params, a.typ(p.Type))
	}
	if d.Result != nil {
		ft.Return = a.typ(d.Result)
	}
	fn.Type = ft
	a.funcs[d] = fn
}

func (a *analyzer) stmt(s parser.Stmt) ast.Statement {
	switch s := s.(type) {
	case *parser.VarDecl:
		init := a.value(s.Init)
		v := a.f.Variable(s.Name.Name, s.Mutable, ast.TypeOf(init))
		a.declare(s.Name, v)
		a.declared(v)
		return a.f.Declare(v, init)

	case *parser.Assign:
		target := a.mutableVariable(s.Name)
		source := a.value(s.Value)
		a.assignable(source, target.Type, s.Value)
		return a.f.Assign(target, source)

	case *parser.Print:
		return a.f.Print(a.value(s.Arg))

	case *parser.Pounce:
		v := a.mutableVariable(s.Name)
		if v.Type != ast.IntType {
			a.fail(TypeError, s.Name, "Expected an integer")
		}
		if s.Op == "++" {
			return &ast.Increment{Variable: v}
		}
		return &ast.Decrement{Variable: v}

	case *parser.If:
		return a.ifStmt(s)

	case *parser.While:
		test := a.boolean(s.Test)
		return a.f.While(test, a.scoped(s.Body, inLoop(true)))

	case *parser.For:
		coll := a.value(s.Collection)
		at, ok := ast.TypeOf(coll).(*ast.ArrayType)
		if !ok {
			a.fail(TypeError, s.Collection, "Expected an array")
		}
		a.push(inLoop(true))
		defer a.pop()
		it := a.f.Variable(s.Var.Name, false, at.Element)
		a.declare(s.Var, it)
		return a.f.For(it, coll, a.block(s.Body))

	case *parser.FuncDecl:
		return a.funcBody(s)

	case *parser.StructDecl:
		return &ast.TypeDeclaration{Type: a.structs[s]}

	case *parser.Return:
		return a.returnStmt(s)

	case *parser.Break:
		if !a.ctx.inLoop {
			a.fail(ControlFlowError, s, "Break can only appear in a loop")
		}
		return &ast.BreakStatement{}

	case *parser.Import:
		mod, ok := a.ctx.lookup(s.Name.Name).(*ast.Module)
		if !ok {
			a.fail(ResolutionError, s.Name, "Module %s not found", s.Name.Name)
		}
		for _, m := range mod.Members {
			if err := a.ctx.add(m.EntityName(), m); err != nil {
				a.fail(DeclarationError, s.Name, "Identifier %s already declared", m.EntityName())
			}
		}
		return nil

	case *parser.CallStmt:
		call, ok := a.call(s.Call).(*ast.FunctionCall)
		if !ok {
			a.fail(TypeError, s.Call, "Expected a function call")
		}
		return call
	}
	panic(fmt.Sprintf("analyzer: unexpected statement %T", s))
}

func (a *analyzer) ifStmt(s *parser.If) ast.Statement {
	test := a.boolean(s.Test)
	then := a.scoped(s.Then)
	switch {
	case !s.HasElse:
		return a.f.ShortIf(test, then)
	case s.ElseIf != nil:
		switch alt := a.ifStmt(s.ElseIf).(type) {
		case *ast.IfStatement:
			return a.f.If(test, then, alt)
		default:
			return a.f.If(test, then, ast.ElseBlock{alt})
		}
	}
	return a.f.If(test, then, ast.ElseBlock(a.scoped(s.Else)))
}

func (a *analyzer) funcBody(d *parser.FuncDecl) ast.Statement {
	fn := a.funcs[d]
	a.push(inLoop(false), inFunction(fn))
	defer a.pop()
	a.bodies = append(a.bodies, fn)
	defer func() { a.bodies = a.bodies[:len(a.bodies)-1] }()
	params := make([]*ast.Variable, len(d.Params))
	for i, p := range d.Params {
		params[i] = a.f.Variable(p.Name.Name, true, fn.Type.Params[i])
		a.declare(p.Name, params[i])
	}
	return &ast.FunctionDeclaration{Fun: fn, Params: params, Body: a.block(d.Body)}
}

func (a *analyzer) returnStmt(s *parser.Return) ast.Statement {
	fn := a.ctx.function
	if fn == nil {
		a.fail(ControlFlowError, s, "Return can only appear in a function")
	}
	ret := fn.Type.Return
	if s.Value == nil {
		if ret != ast.VoidType {
			a.fail(ControlFlowError, s, "Something should be returned")
		}
		return a.f.Return(nil)
	}
	if ret == ast.VoidType {
		a.fail(ControlFlowError, s, "Cannot return a value from this function")
	}
	e := a.value(s.Value)
	a.assignable(e, ret, s.Value)
	return a.f.Return(e)
}

// mutableVariable resolves id to a variable that may be written.
func (a *analyzer) mutableVariable(id *parser.Ident) *ast.Variable {
	v, ok := a.lookup(id).(*ast.Variable)
	if !ok {
		a.fail(TypeError, id, "%s is not a variable", id.Name)
	}
	if !v.Mutable {
		a.fail(TypeError, id, "Cannot assign to immutable variable %s", id.Name)
	}
	return v
}

func (a *analyzer) lookup(id *parser.Ident) ast.Entity {
	e := a.ctx.lookup(id.Name)
	if e == nil {
		a.fail(ResolutionError, id, "Identifier %s not declared", id.Name)
	}
	a.used(e, id)
	return e
}

func (a *analyzer) assignable(e ast.Expression, to ast.Type, at parser.Node) {
	from := ast.TypeOf(e)
	if !ast.Assignable(from, to) {
		a.fail(TypeError, at, "Cannot assign %s to %s", from, to)
	}
}

// Types.

func (a *analyzer) typ(t parser.TypeExpr) ast.Type {
	switch t := t.(type) {
	case *parser.TypeName:
		switch t.Name.Name {
		case "int":
			return ast.IntType
		case "float":
			return ast.FloatType
		case "string":
			return ast.StringType
		case "boolean":
			return ast.BooleanType
		}
		st, ok := a.lookup(t.Name).(*ast.StructType)
		if !ok {
			a.fail(TypeError, t, "Type expected but found %s", t.Name.Name)
		}
		return st
	case *parser.ArrayTypeExpr:
		return &ast.ArrayType{Element: a.typ(t.Elem)}
	case *parser.OptionalTypeExpr:
		return &ast.OptionalType{Base: a.typ(t.Base)}
	case *parser.FuncTypeExpr:
		ft := &ast.FunctionType{Return: a.typ(t.Result)}
		for _, p := range t.Params {
			ft.Params = append(ft.Params, a.typ(p))
		}
		return ft
	}
	panic(fmt.Sprintf("analyzer: unexpected type %T", t))
}

// Expressions.

// value analyzes an expression that must produce a value.
func (a *analyzer) value(e parser.Expr) ast.Expression {
	x := a.expr(e)
	if ast.TypeOf(x) == ast.VoidType {
		a.fail(TypeError, e, "Expected a value but the function returns nothing")
	}
	return x
}

func (a *analyzer) boolean(e parser.Expr) ast.Expression {
	x := a.value(e)
	if ast.TypeOf(x) != ast.BooleanType {
		a.fail(TypeError, e, "Expected a boolean")
	}
	return x
}

func (a *analyzer) numeric(e parser.Expr) ast.Expression {
	x := a.value(e)
	if !ast.IsNumeric(ast.TypeOf(x)) {
		a.fail(TypeError, e, "Expected a number")
	}
	return x
}

func (a *analyzer) integer(e parser.Expr) ast.Expression {
	x := a.value(e)
	if ast.TypeOf(x) != ast.IntType {
		a.fail(TypeError, e, "Expected an integer")
	}
	return x
}

// numericResult is int when both operands are int, float otherwise.
func numericResult(l, r ast.Expression) ast.Type {
	if ast.TypeOf(l) == ast.IntType && ast.TypeOf(r) == ast.IntType {
		return ast.IntType
	}
	return ast.FloatType
}

func (a *analyzer) expr(e parser.Expr) ast.Expression {
	switch e := e.(type) {
	case *parser.IntLit:
		n, err := strconv.ParseInt(e.Text, 10, 64)
		if err != nil {
			a.fail(TypeError, e, "Integer %s out of range", e.Text)
		}
		return ast.IntLit(n)
	case *parser.FloatLit:
		x, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			a.fail(TypeError, e, "Float %s out of range", e.Text)
		}
		return ast.FloatLit(x)
	case *parser.StringLit:
		return ast.StringLit(e.Value)
	case *parser.BoolLit:
		return ast.BoolLit(e.Value)
	case *parser.Ident:
		switch ent := a.lookup(e).(type) {
		case *ast.Variable:
			return ent
		case *ast.Function:
			return ent
		}
		a.fail(TypeError, e, "Expected a value but found %s", e.Name)
	case *parser.Binary:
		return a.binary(e)
	case *parser.Unary:
		return a.unary(e)
	case *parser.Cond:
		test := a.boolean(e.Test)
		then := a.value(e.Then)
		els := a.value(e.Else)
		t, et := ast.TypeOf(then), ast.TypeOf(els)
		switch {
		case ast.Assignable(t, et):
			t = et
		case ast.Assignable(et, t):
		default:
			a.fail(TypeError, e, "Mismatched types in ternary branches")
		}
		return &ast.Conditional{Test: test, Consequent: then, Alternate: els, Type: t}
	case *parser.ArrayLit:
		return a.array(e)
	case *parser.EmptyArray:
		return a.f.EmptyArray(a.typ(e.Elem))
	case *parser.NoValue:
		return &ast.EmptyOptional{Type: &ast.OptionalType{Base: a.typ(e.Type)}}
	case *parser.Call:
		return a.call(e)
	case *parser.Member:
		obj := a.value(e.Object)
		st, ok := ast.TypeOf(obj).(*ast.StructType)
		if !ok {
			a.fail(TypeError, e.Object, "Expected a struct")
		}
		field := st.FieldNamed(e.Name.Name)
		if field == nil {
			a.fail(ResolutionError, e.Name, "No such field %s", e.Name.Name)
		}
		return &ast.MemberExpression{Object: obj, Field: field}
	case *parser.Index:
		arr := a.value(e.Array)
		at, ok := ast.TypeOf(arr).(*ast.ArrayType)
		if !ok {
			a.fail(TypeError, e.Array, "Expected an array")
		}
		idx := a.integer(e.Index)
		return &ast.SubscriptExpression{Array: arr, Index: idx, Type: at.Element}
	}
	panic(fmt.Sprintf("analyzer: unexpected expression %T", e))
}

func (a *analyzer) binary(e *parser.Binary) ast.Expression {
	switch e.Op {
	case "&&", "||":
		l, r := a.boolean(e.Left), a.boolean(e.Right)
		return a.f.Binary(e.Op, l, r, ast.BooleanType)

	case "+":
		l, r := a.value(e.Left), a.value(e.Right)
		lt, rt := ast.TypeOf(l), ast.TypeOf(r)
		if lt == ast.StringType && rt == ast.StringType {
			return a.f.Binary(e.Op, l, r, ast.StringType)
		}
		if !ast.IsNumeric(lt) || !ast.IsNumeric(rt) {
			a.fail(TypeError, e, "Expected two numbers or two strings")
		}
		return a.f.Binary(e.Op, l, r, numericResult(l, r))

	case "-", "*", "%", "**":
		l, r := a.numeric(e.Left), a.numeric(e.Right)
		return a.f.Binary(e.Op, l, r, numericResult(l, r))

	case "/":
		l, r := a.numeric(e.Left), a.numeric(e.Right)
		return a.f.Binary(e.Op, l, r, ast.FloatType)

	case "<", "<=", ">", ">=":
		l, r := a.value(e.Left), a.value(e.Right)
		lt, rt := ast.TypeOf(l), ast.TypeOf(r)
		bothNumeric := ast.IsNumeric(lt) && ast.IsNumeric(rt)
		bothStrings := lt == ast.StringType && rt == ast.StringType
		if !bothNumeric && !bothStrings {
			a.fail(TypeError, e, "Expected two numbers or two strings")
		}
		return a.f.Binary(e.Op, l, r, ast.BooleanType)

	case "==", "!=":
		l, r := a.value(e.Left), a.value(e.Right)
		lt, rt := ast.TypeOf(l), ast.TypeOf(r)
		if !ast.Equivalent(lt, rt) && !(ast.IsNumeric(lt) && ast.IsNumeric(rt)) {
			a.fail(TypeError, e, "Cannot compare %s to %s", lt, rt)
		}
		return a.f.Binary(e.Op, l, r, ast.BooleanType)

	case "??":
		l := a.value(e.Left)
		opt, ok := ast.TypeOf(l).(*ast.OptionalType)
		if !ok {
			a.fail(TypeError, e.Left, "Expected an optional")
		}
		r := a.value(e.Right)
		a.assignable(r, opt.Base, e.Right)
		return a.f.Binary(e.Op, l, r, opt.Base)
	}
	panic(fmt.Sprintf("analyzer: unexpected operator %q", e.Op))
}

func (a *analyzer) unary(e *parser.Unary) ast.Expression {
	switch e.Op {
	case "-":
		x := a.numeric(e.Operand)
		return a.f.Unary(e.Op, x, ast.TypeOf(x))
	case "!":
		x := a.boolean(e.Operand)
		return a.f.Unary(e.Op, x, ast.BooleanType)
	case "some":
		x := a.value(e.Operand)
		return a.f.Unary(e.Op, x, &ast.OptionalType{Base: ast.TypeOf(x)})
	}
	panic(fmt.Sprintf("analyzer: unexpected operator %q", e.Op))
}

// array computes the common element type: all elements equivalent, or a
// mix of int and float which widens to float.
func (a *analyzer) array(e *parser.ArrayLit) ast.Expression {
	elems := make([]ast.Expression, len(e.Elems))
	for i, el := range e.Elems {
		elems[i] = a.value(el)
	}
	elem := ast.TypeOf(elems[0])
	for i, x := range elems[1:] {
		t := ast.TypeOf(x)
		switch {
		case ast.Equivalent(elem, t):
		case ast.IsNumeric(elem) && ast.IsNumeric(t):
			elem = ast.FloatType
		default:
			a.fail(TypeError, e.Elems[i+1], "Not all elements have the same type")
		}
	}
	return a.f.Array(elem, elems...)
}

func (a *analyzer) call(e *parser.Call) ast.Expression {
	if id, ok := e.Callee.(*parser.Ident); ok {
		if st, ok := a.lookup(id).(*ast.StructType); ok {
			return a.construct(e, st)
		}
	}
	callee := a.value(e.Callee)
	ft, ok := ast.TypeOf(callee).(*ast.FunctionType)
	if !ok {
		a.fail(TypeError, e.Callee, "Expected a function")
	}
	if fn, ok := callee.(*ast.Function); ok && ast.IsArrayBuiltin(fn) {
		return a.arrayBuiltin(e, fn)
	}
	a.arity(e, len(ft.Params))
	args := make([]ast.Expression, len(e.Args))
	for i, arg := range e.Args {
		args[i] = a.value(arg)
		a.assignable(args[i], ft.Params[i], arg)
	}
	return &ast.FunctionCall{Callee: callee, Args: args, Type: ft.Return}
}

// arrayBuiltin checks length and random, which accept an array of any
// element type.
func (a *analyzer) arrayBuiltin(e *parser.Call, fn *ast.Function) ast.Expression {
	a.arity(e, 1)
	arg := a.value(e.Args[0])
	at, ok := ast.TypeOf(arg).(*ast.ArrayType)
	if !ok {
		a.fail(TypeError, e.Args[0], "Expected an array")
	}
	ret := fn.Type.Return
	if fn == ast.Random {
		ret = at.Element
	}
	return &ast.FunctionCall{Callee: fn, Args: []ast.Expression{arg}, Type: ret}
}

func (a *analyzer) construct(e *parser.Call, st *ast.StructType) ast.Expression {
	a.arity(e, len(st.Fields))
	args := make([]ast.Expression, len(e.Args))
	for i, arg := range e.Args {
		args[i] = a.value(arg)
		a.assignable(args[i], st.Fields[i].Type, arg)
	}
	return &ast.ConstructorCall{Struct: st, Args: args}
}

func (a *analyzer) arity(e *parser.Call, want int) {
	if len(e.Args) != want {
		a.fail(TypeError, e, "Expected %d argument(s) but %d passed", want, len(e.Args))
	}
}
