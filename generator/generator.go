// Package generator emits JavaScript for an optimized program tree.
//
// Every user entity is renamed to name_N, where N counts up from 1 in the
// order entities are first emitted. Names are kept in a side table indexed
// by arena ID, so two entities never share a name and every reference to
// one entity prints the same name. Standard-library entities map to
// JavaScript built-ins and are never renamed.
package generator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kis-lang/kis/ast"
)

// Generate returns the JavaScript text for s. An error means the tree
// broke an invariant the analyzer guarantees.
func Generate(s *ast.Script) (string, error) {
	g := &generator{w: &jsWriter{}}
	if s.Entities != nil {
		g.names = make([]string, s.Entities.Len())
	}
	if err := g.writeBlock(s.Statements); err != nil {
		return "", err
	}
	return g.w.String(), nil
}

type generator struct {
	w     *jsWriter
	names []string
	next  int
}

func internalError(format string, args ...interface{}) error {
	return fmt.Errorf("internal error: "+format, args...)
}

// name returns the emitted identifier of a user entity, assigning the next
// number on first use.
func (g *generator) name(e ast.Entity) (string, error) {
	id := e.EntityID()
	if id < 0 || id >= len(g.names) {
		return "", internalError("entity %s has no arena slot %d", e.EntityName(), id)
	}
	if g.names[id] == "" {
		g.next++
		g.names[id] = e.EntityName() + "_" + strconv.Itoa(g.next)
	}
	return g.names[id], nil
}

// Standard-library entities used as values.
var builtins = map[ast.Entity]string{
	ast.Length: "((a) => a.length)",
	ast.Random: "((a) => a[Math.floor(Math.random() * a.length)])",
	ast.Pi:     "Math.PI",
	ast.Sin:    "Math.sin",
	ast.Cos:    "Math.cos",
	ast.Sqrt:   "Math.sqrt",
	ast.Exp:    "Math.exp",
	ast.Ln:     "Math.log",
	ast.Hypot:  "Math.hypot",
}

func (g *generator) entity(e ast.Entity) (string, error) {
	if js, ok := builtins[e]; ok {
		return js, nil
	}
	return g.name(e)
}

// writeBlock emits a statement list. Struct declarations come first since
// JavaScript classes, unlike Kis types, cannot be used before declaration.
func (g *generator) writeBlock(stmts []ast.Statement) error {
	for _, s := range stmts {
		if td, ok := s.(*ast.TypeDeclaration); ok {
			if err := g.writeClass(td.Type); err != nil {
				return err
			}
		}
	}
	for _, s := range stmts {
		if _, ok := s.(*ast.TypeDeclaration); ok {
			continue
		}
		if err := g.writeStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// writeBody emits stmts one level deeper.
func (g *generator) writeBody(stmts []ast.Statement) error {
	g.w.Indent()
	defer g.w.Dedent()
	return g.writeBlock(stmts)
}

func (g *generator) writeStmt(s ast.Statement) error {
	switch st := s.(type) {
	case *ast.VariableDeclaration:
		init, err := g.exprString(st.Initializer)
		if err != nil {
			return err
		}
		name, err := g.name(st.Variable)
		if err != nil {
			return err
		}
		keyword := "const"
		if st.Variable.Mutable {
			keyword = "let"
		}
		g.w.Linef("%s %s = %s;", keyword, name, init)

	case *ast.Assignment:
		target, err := g.name(st.Target)
		if err != nil {
			return err
		}
		source, err := g.exprString(st.Source)
		if err != nil {
			return err
		}
		g.w.Linef("%s = %s;", target, source)

	case *ast.FunctionDeclaration:
		return g.writeFunction(st)

	case *ast.PrintStatement:
		arg, err := g.exprString(st.Expression)
		if err != nil {
			return err
		}
		g.w.Linef("console.log(%s);", arg)

	case *ast.ShortIfStatement:
		test, err := g.exprString(st.Test)
		if err != nil {
			return err
		}
		g.w.Linef("if (%s) {", test)
		if err := g.writeBody(st.Consequent); err != nil {
			return err
		}
		g.w.Linef("}")

	case *ast.IfStatement:
		return g.writeIf(st)

	case *ast.WhileStatement:
		test, err := g.exprString(st.Test)
		if err != nil {
			return err
		}
		g.w.Linef("while (%s) {", test)
		if err := g.writeBody(st.Body); err != nil {
			return err
		}
		g.w.Linef("}")

	case *ast.ForStatement:
		coll, err := g.exprString(st.Collection)
		if err != nil {
			return err
		}
		it, err := g.name(st.Iterator)
		if err != nil {
			return err
		}
		g.w.Linef("for (const %s of %s) {", it, coll)
		if err := g.writeBody(st.Body); err != nil {
			return err
		}
		g.w.Linef("}")

	case *ast.BreakStatement:
		g.w.Linef("break;")

	case *ast.ReturnStatement:
		e, err := g.exprString(st.Expression)
		if err != nil {
			return err
		}
		g.w.Linef("return %s;", e)

	case *ast.ShortReturnStatement:
		g.w.Linef("return;")

	case *ast.Increment:
		name, err := g.name(st.Variable)
		if err != nil {
			return err
		}
		g.w.Linef("%s++;", name)

	case *ast.Decrement:
		name, err := g.name(st.Variable)
		if err != nil {
			return err
		}
		g.w.Linef("%s--;", name)

	case *ast.FunctionCall:
		call, err := g.exprString(st)
		if err != nil {
			return err
		}
		g.w.Linef("%s;", call)

	case *ast.TypeDeclaration:
		return g.writeClass(st.Type)

	default:
		return internalError("unexpected statement %T", s)
	}
	return nil
}

func (g *generator) writeIf(st *ast.IfStatement) error {
	test, err := g.exprString(st.Test)
	if err != nil {
		return err
	}
	g.w.Linef("if (%s) {", test)
	if err := g.writeBody(st.Consequent); err != nil {
		return err
	}
	switch alt := st.Alternate.(type) {
	case ast.ElseBlock:
		g.w.Linef("} else {")
		if err := g.writeBody(alt); err != nil {
			return err
		}
		g.w.Linef("}")
	case *ast.IfStatement:
		g.w.Linef("} else")
		g.w.Indent()
		defer g.w.Dedent()
		return g.writeIf(alt)
	default:
		return internalError("unexpected if alternate %T", st.Alternate)
	}
	return nil
}

func (g *generator) writeFunction(d *ast.FunctionDeclaration) error {
	name, err := g.name(d.Fun)
	if err != nil {
		return err
	}
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		if params[i], err = g.name(p); err != nil {
			return err
		}
	}
	g.w.Linef("function %s(%s) {", name, strings.Join(params, ", "))
	if err := g.writeBody(d.Body); err != nil {
		return err
	}
	g.w.Linef("}")
	return nil
}

func (g *generator) writeClass(st *ast.StructType) error {
	name, err := g.name(st)
	if err != nil {
		return err
	}
	fields := make([]string, len(st.Fields))
	for i, f := range st.Fields {
		if fields[i], err = g.name(f); err != nil {
			return err
		}
	}
	g.w.Linef("class %s {", name)
	g.w.Indent()
	g.w.Linef("constructor(%s) {", strings.Join(fields, ", "))
	g.w.Indent()
	for _, f := range fields {
		g.w.Linef("this.%s = %s;", f, f)
	}
	g.w.Dedent()
	g.w.Linef("}")
	g.w.Dedent()
	g.w.Linef("}")
	return nil
}

var jsOps = map[string]string{"==": "===", "!=": "!=="}

func (g *generator) exprString(e ast.Expression) (string, error) {
	switch ex := e.(type) {
	case ast.IntLit:
		return strconv.FormatInt(int64(ex), 10), nil
	case ast.FloatLit:
		return strconv.FormatFloat(float64(ex), 'g', -1, 64), nil
	case ast.StringLit:
		return quote(string(ex))
	case ast.BoolLit:
		return strconv.FormatBool(bool(ex)), nil
	case *ast.Variable:
		return g.entity(ex)
	case *ast.Function:
		return g.entity(ex)
	case *ast.BinaryExpression:
		return g.binaryExpr(ex)
	case *ast.UnaryExpression:
		operand, err := g.exprString(ex.Operand)
		if err != nil {
			return "", err
		}
		if ex.Op == "some" {
			return operand, nil
		}
		return fmt.Sprintf("%s(%s)", ex.Op, operand), nil
	case *ast.Conditional:
		parts, err := g.exprList([]ast.Expression{ex.Test, ex.Consequent, ex.Alternate})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s ? %s : %s)", parts[0], parts[1], parts[2]), nil
	case *ast.ArrayExpression:
		elems, err := g.exprList(ex.Elements)
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(elems, ", ") + "]", nil
	case *ast.EmptyOptional:
		return "undefined", nil
	case *ast.FunctionCall:
		return g.callExpr(ex)
	case *ast.ConstructorCall:
		name, err := g.name(ex.Struct)
		if err != nil {
			return "", err
		}
		args, err := g.exprList(ex.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("new %s(%s)", name, strings.Join(args, ", ")), nil
	case *ast.MemberExpression:
		obj, err := g.exprString(ex.Object)
		if err != nil {
			return "", err
		}
		field, err := g.name(ex.Field)
		if err != nil {
			return "", err
		}
		return obj + "." + field, nil
	case *ast.SubscriptExpression:
		parts, err := g.exprList([]ast.Expression{ex.Array, ex.Index})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", parts[0], parts[1]), nil
	}
	return "", internalError("unexpected expression %T", e)
}

func (g *generator) exprList(exprs []ast.Expression) ([]string, error) {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := g.exprString(e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (g *generator) binaryExpr(e *ast.BinaryExpression) (string, error) {
	left, err := g.exprString(e.Left)
	if err != nil {
		return "", err
	}
	right, err := g.exprString(e.Right)
	if err != nil {
		return "", err
	}
	// JavaScript rejects a unary expression as the base of **.
	if e.Op == "**" && unaryBase(e.Left) {
		left = "(" + left + ")"
	}
	op := e.Op
	if js, ok := jsOps[op]; ok {
		op = js
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

func unaryBase(e ast.Expression) bool {
	switch ex := e.(type) {
	case *ast.UnaryExpression:
		return ex.Op != "some" || unaryBase(ex.Operand)
	case ast.IntLit:
		return ex < 0
	case ast.FloatLit:
		return ex < 0
	}
	return false
}

func (g *generator) callExpr(e *ast.FunctionCall) (string, error) {
	args, err := g.exprList(e.Args)
	if err != nil {
		return "", err
	}
	if e.Callee == ast.Expression(ast.Length) && len(args) == 1 {
		return args[0] + ".length", nil
	}
	callee, err := g.exprString(e.Callee)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil
}

// quote renders s as a JavaScript string literal.
func quote(s string) (string, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", internalError("quoting string: %v", err)
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}
