package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes an indented dump of the tree rooted at n to w. Entities are
// printed with their arena index so shared references are visible.
func Fprint(w io.Writer, n Node) error {
	p := &printer{}
	p.node(n)
	_, err := io.WriteString(w, p.sb.String())
	return err
}

// Sprint returns the dump Fprint would write.
func Sprint(n Node) string {
	var sb strings.Builder
	Fprint(&sb, n)
	return sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) linef(format string, args ...interface{}) {
	p.sb.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) nested(label string, fn func()) {
	p.linef("%s", label)
	p.indent++
	fn()
	p.indent--
}

func (p *printer) stmts(label string, stmts []Statement) {
	p.nested(label, func() {
		for _, s := range stmts {
			p.node(s)
		}
	})
}

func entityRef(e Entity) string {
	if e.EntityID() < 0 {
		return e.EntityName()
	}
	return e.EntityName() + "#" + strconv.Itoa(e.EntityID())
}

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case *Script:
		p.stmts("Script", n.Statements)
	case *VariableDeclaration:
		kind := "stay"
		if n.Variable.Mutable {
			kind = "set"
		}
		p.nested(fmt.Sprintf("VariableDeclaration %s %s: %s", kind, entityRef(n.Variable), n.Variable.Type), func() {
			p.node(n.Initializer)
		})
	case *Assignment:
		p.nested("Assignment "+entityRef(n.Target), func() { p.node(n.Source) })
	case *TypeDeclaration:
		p.nested("TypeDeclaration "+entityRef(n.Type), func() {
			for _, f := range n.Type.Fields {
				p.linef("Field %s: %s", entityRef(f), f.Type)
			}
		})
	case *FunctionDeclaration:
		params := make([]string, len(n.Params))
		for i, v := range n.Params {
			params[i] = entityRef(v)
		}
		p.stmts(fmt.Sprintf("FunctionDeclaration %s(%s): %s", entityRef(n.Fun), strings.Join(params, ", "), n.Fun.Type), n.Body)
	case *PrintStatement:
		p.nested("PrintStatement", func() { p.node(n.Expression) })
	case *ShortIfStatement:
		p.nested("ShortIfStatement", func() {
			p.node(n.Test)
			p.stmts("Then", n.Consequent)
		})
	case *IfStatement:
		p.nested("IfStatement", func() {
			p.node(n.Test)
			p.stmts("Then", n.Consequent)
			p.node(n.Alternate)
		})
	case ElseBlock:
		p.stmts("Else", n)
	case *WhileStatement:
		p.nested("WhileStatement", func() {
			p.node(n.Test)
			p.stmts("Body", n.Body)
		})
	case *ForStatement:
		p.nested("ForStatement "+entityRef(n.Iterator), func() {
			p.node(n.Collection)
			p.stmts("Body", n.Body)
		})
	case *BreakStatement:
		p.linef("BreakStatement")
	case *ReturnStatement:
		p.nested("ReturnStatement", func() { p.node(n.Expression) })
	case *ShortReturnStatement:
		p.linef("ShortReturnStatement")
	case *Increment:
		p.linef("Increment %s", entityRef(n.Variable))
	case *Decrement:
		p.linef("Decrement %s", entityRef(n.Variable))
	case *BinaryExpression:
		p.nested(fmt.Sprintf("BinaryExpression %s: %s", n.Op, n.Type), func() {
			p.node(n.Left)
			p.node(n.Right)
		})
	case *UnaryExpression:
		p.nested(fmt.Sprintf("UnaryExpression %s: %s", n.Op, n.Type), func() { p.node(n.Operand) })
	case *Conditional:
		p.nested("Conditional: "+n.Type.String(), func() {
			p.node(n.Test)
			p.node(n.Consequent)
			p.node(n.Alternate)
		})
	case *ArrayExpression:
		p.nested("ArrayExpression: "+n.Type.String(), func() {
			for _, e := range n.Elements {
				p.node(e)
			}
		})
	case *EmptyOptional:
		p.linef("EmptyOptional: %s", n.Type)
	case *FunctionCall:
		p.nested("FunctionCall: "+n.Type.String(), func() {
			p.node(n.Callee)
			for _, a := range n.Args {
				p.node(a)
			}
		})
	case *ConstructorCall:
		p.nested("ConstructorCall "+entityRef(n.Struct), func() {
			for _, a := range n.Args {
				p.node(a)
			}
		})
	case *MemberExpression:
		p.nested("MemberExpression ."+entityRef(n.Field), func() { p.node(n.Object) })
	case *SubscriptExpression:
		p.nested("SubscriptExpression: "+n.Type.String(), func() {
			p.node(n.Array)
			p.node(n.Index)
		})
	case *Variable:
		p.linef("Variable %s: %s", entityRef(n), n.Type)
	case *Function:
		p.linef("Function %s", entityRef(n))
	case IntLit:
		p.linef("IntLit %d", int64(n))
	case FloatLit:
		p.linef("FloatLit %s", strconv.FormatFloat(float64(n), 'g', -1, 64))
	case StringLit:
		p.linef("StringLit %q", string(n))
	case BoolLit:
		p.linef("BoolLit %t", bool(n))
	default:
		p.linef("%T", n)
	}
}
