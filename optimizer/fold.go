package optimizer

import (
	"math"

	"github.com/kis-lang/kis/ast"
)

// maxExact is the largest magnitude below which every integer and its
// successor are exactly representable as JavaScript numbers.
const maxExact = 1<<53 - 1

// binary applies identity and absorbing-element rules, then full evaluation
// when both operands are literals. It returns nil when nothing applies.
func binary(op string, l, r ast.Expression, t ast.Type) ast.Expression {
	if e := identity(op, l, r, t); e != nil {
		return e
	}
	return evaluate(op, l, r)
}

func identity(op string, l, r ast.Expression, t ast.Type) ast.Expression {
	switch op {
	case "+":
		if isNumber(r, 0) && ast.IsNumeric(ast.TypeOf(l)) {
			return l
		}
		if isNumber(l, 0) && ast.IsNumeric(ast.TypeOf(r)) {
			return r
		}
	case "-":
		if isNumber(r, 0) {
			return l
		}
		if isNumber(l, 0) && !isLiteral(r) {
			return factory.Unary("-", r, t)
		}
	case "*":
		if isNumber(r, 1) {
			return l
		}
		if isNumber(l, 1) {
			return r
		}
		if isNumber(r, 0) && absorbable(l) {
			return r
		}
		if isNumber(l, 0) && absorbable(r) {
			return l
		}
	case "/":
		if isNumber(r, 1) {
			return l
		}
		if isNumber(l, 0) && absorbable(r) {
			return l
		}
	case "||":
		if l == ast.BoolLit(false) {
			return r
		}
		if r == ast.BoolLit(false) {
			return l
		}
	case "&&":
		if l == ast.BoolLit(true) {
			return r
		}
		if r == ast.BoolLit(true) {
			return l
		}
	}
	return nil
}

// absorbable reports whether x*0 may be replaced by 0: x must be an int
// and evaluating it must have no effect.
func absorbable(e ast.Expression) bool {
	return ast.TypeOf(e) == ast.IntType && pure(e)
}

// pure reports whether evaluating e cannot have side effects.
func pure(e ast.Expression) bool {
	switch ex := e.(type) {
	case ast.IntLit, ast.FloatLit, ast.StringLit, ast.BoolLit,
		*ast.Variable, *ast.Function, *ast.EmptyOptional:
		return true
	case *ast.BinaryExpression:
		return pure(ex.Left) && pure(ex.Right)
	case *ast.UnaryExpression:
		return pure(ex.Operand)
	case *ast.Conditional:
		return pure(ex.Test) && pure(ex.Consequent) && pure(ex.Alternate)
	case *ast.MemberExpression:
		return pure(ex.Object)
	case *ast.ArrayExpression:
		for _, el := range ex.Elements {
			if !pure(el) {
				return false
			}
		}
		return true
	}
	return false
}

func isLiteral(e ast.Expression) bool {
	switch e.(type) {
	case ast.IntLit, ast.FloatLit, ast.StringLit, ast.BoolLit:
		return true
	}
	return false
}

func isNumber(e ast.Expression, v float64) bool {
	switch n := e.(type) {
	case ast.IntLit:
		return float64(n) == v
	case ast.FloatLit:
		return float64(n) == v
	}
	return false
}

func number(e ast.Expression) (float64, bool) {
	switch n := e.(type) {
	case ast.IntLit:
		return float64(n), exact(int64(n))
	case ast.FloatLit:
		return float64(n), true
	}
	return 0, false
}

// evaluate folds op over two literal operands.
func evaluate(op string, l, r ast.Expression) ast.Expression {
	if li, ok := l.(ast.IntLit); ok {
		if ri, ok := r.(ast.IntLit); ok {
			return evalInt(op, int64(li), int64(ri))
		}
	}
	if lf, ok := number(l); ok {
		if rf, ok := number(r); ok {
			return evalFloat(op, lf, rf)
		}
	}
	if ls, ok := l.(ast.StringLit); ok {
		if rs, ok := r.(ast.StringLit); ok {
			switch op {
			case "+":
				return ls + rs
			case "==":
				return ast.BoolLit(ls == rs)
			case "!=":
				return ast.BoolLit(ls != rs)
			}
		}
		return nil
	}
	if lb, ok := l.(ast.BoolLit); ok {
		if rb, ok := r.(ast.BoolLit); ok {
			switch op {
			case "&&":
				return lb && rb
			case "||":
				return lb || rb
			case "==":
				return ast.BoolLit(lb == rb)
			case "!=":
				return ast.BoolLit(lb != rb)
			}
		}
	}
	return nil
}

func evalInt(op string, a, b int64) ast.Expression {
	if !exact(a) || !exact(b) {
		return nil
	}
	switch op {
	case "+":
		return exactInt(a + b)
	case "-":
		return exactInt(a - b)
	case "*":
		if a != 0 && abs(b) > maxExact/abs(a) {
			return nil
		}
		return exactInt(a * b)
	case "%":
		if b == 0 {
			return nil
		}
		return ast.IntLit(a % b)
	case "**":
		if b < 0 {
			return nil
		}
		return intPow(a, b)
	}
	return evalFloat(op, float64(a), float64(b))
}

func exact(v int64) bool { return -maxExact <= v && v <= maxExact }

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// exactInt returns v unless it would lose precision as a JavaScript number.
func exactInt(v int64) ast.Expression {
	if !exact(v) {
		return nil
	}
	return ast.IntLit(v)
}

// intPow multiplies out a**b, giving up once the product leaves the
// exact range.
func intPow(a, b int64) ast.Expression {
	switch {
	case b == 0:
		return ast.IntLit(1)
	case a == 0 || a == 1:
		return ast.IntLit(a)
	case a == -1:
		return ast.IntLit(1 - 2*(b%2))
	}
	p := int64(1)
	for ; b > 0; b-- {
		if abs(p) > maxExact/abs(a) {
			return nil
		}
		p *= a
	}
	return exactInt(p)
}

func evalFloat(op string, a, b float64) ast.Expression {
	var v float64
	switch op {
	case "+":
		v = a + b
	case "-":
		v = a - b
	case "*":
		v = a * b
	case "/":
		if b == 0 {
			return nil
		}
		v = a / b
	case "%":
		if b == 0 {
			return nil
		}
		v = math.Mod(a, b)
	case "**":
		v = math.Pow(a, b)
	case "<":
		return ast.BoolLit(a < b)
	case "<=":
		return ast.BoolLit(a <= b)
	case ">":
		return ast.BoolLit(a > b)
	case ">=":
		return ast.BoolLit(a >= b)
	case "==":
		return ast.BoolLit(a == b)
	case "!=":
		return ast.BoolLit(a != b)
	default:
		return nil
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return ast.FloatLit(v)
}

// unary folds negation and logical not of a literal.
func unary(op string, x ast.Expression) ast.Expression {
	switch op {
	case "-":
		switch n := x.(type) {
		case ast.IntLit:
			return -n
		case ast.FloatLit:
			return -n
		}
	case "!":
		if b, ok := x.(ast.BoolLit); ok {
			return !b
		}
	}
	return nil
}
