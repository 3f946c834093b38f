// Package parser builds a Kis parse tree from source text.
package parser

import (
	"errors"
	"fmt"

	"github.com/kis-lang/kis/scanner"
	"modernc.org/token"
)

// Match is a successful parse: the tree plus the line table needed to turn
// node positions into line and column numbers.
type Match struct {
	File *File
	file *token.File
}

// Name returns the source name given to Parse.
func (m *Match) Name() string { return m.file.Name() }

// Position resolves a node position.
func (m *Match) Position(p token.Pos) token.Position {
	return m.file.Position(p)
}

// SyntaxError reports the first malformed construct in a source file.
type SyntaxError struct {
	Pos token.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Parse parses a whole Kis program.
func Parse(name string, src []byte) (*Match, error) {
	file := scanner.NewFile(name, src)
	toks, err := scanner.Tokenize(file, src)
	if err != nil {
		var serr *scanner.Error
		if errors.As(err, &serr) {
			return nil, &SyntaxError{Pos: file.Position(serr.Pos), Msg: serr.Msg}
		}
		return nil, err
	}
	p := &parser{toks: toks, file: file}
	f, err := p.parseFile()
	if err != nil {
		return nil, err
	}
	return &Match{File: f, file: file}, nil
}

type parser struct {
	toks []scanner.Token
	pos  int
	file *token.File
}

// bail aborts parsing; parseFile recovers it into an error.
type bail struct{ err *SyntaxError }

func (p *parser) tok() scanner.Token { return p.toks[p.pos] }

func (p *parser) advance() scanner.Token {
	t := p.toks[p.pos]
	if t.Kind != scanner.EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorAt(pos token.Pos, format string, args ...interface{}) {
	panic(bail{&SyntaxError{Pos: p.file.Position(pos), Msg: fmt.Sprintf(format, args...)}})
}

func (p *parser) unexpected(want string) {
	t := p.tok()
	p.errorAt(t.Pos, "Expected %s but found %s", want, t)
}

func (p *parser) is(text string) bool { return p.tok().Is(text) }

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) scanner.Token {
	if !p.is(text) {
		p.unexpected(fmt.Sprintf("%q", text))
	}
	return p.advance()
}

func (p *parser) ident() *Ident {
	t := p.tok()
	if t.Kind != scanner.Ident {
		p.unexpected("an identifier")
	}
	p.advance()
	return &Ident{At: t.Pos, Name: t.Text}
}

func (p *parser) parseFile() (f *File, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bail)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()
	stmts := p.block()
	if p.tok().Kind != scanner.EOF {
		p.unexpected("a statement")
	}
	return &File{Stmts: stmts}, nil
}

// block parses statements up to a closing keyword or the end of input.
func (p *parser) block() []Stmt {
	var stmts []Stmt
	for p.tok().Kind != scanner.EOF && !p.is("nap") && !p.is("else") {
		stmts = append(stmts, p.stmt())
	}
	return stmts
}

// body parses ":" block "nap".
func (p *parser) body() []Stmt {
	p.expect(":")
	stmts := p.block()
	p.expect("nap")
	return stmts
}

func (p *parser) stmt() Stmt {
	t := p.tok()
	if t.Kind == scanner.Ident {
		return p.callStmt()
	}
	if t.Kind != scanner.Keyword {
		p.unexpected("a statement")
	}
	switch t.Text {
	case "set", "stay":
		p.advance()
		name := p.ident()
		p.expect("=")
		return &VarDecl{At: t.Pos, Mutable: t.Text == "set", Name: name, Init: p.expr()}
	case "reset":
		p.advance()
		name := p.ident()
		p.expect("=")
		return &Assign{At: t.Pos, Name: name, Value: p.expr()}
	case "meow":
		p.advance()
		p.expect("(")
		arg := p.expr()
		p.expect(")")
		return &Print{At: t.Pos, Arg: arg}
	case "pounce":
		p.advance()
		name := p.ident()
		op := p.tok()
		if !op.Is("++") && !op.Is("--") {
			p.unexpected(`"++" or "--"`)
		}
		p.advance()
		return &Pounce{At: t.Pos, Name: name, Op: op.Text}
	case "if":
		return p.ifStmt()
	case "whisker":
		p.advance()
		test := p.expr()
		return &While{At: t.Pos, Test: test, Body: p.body()}
	case "fur":
		p.advance()
		v := p.ident()
		p.expect("in")
		coll := p.expr()
		return &For{At: t.Pos, Var: v, Collection: coll, Body: p.body()}
	case "kitty":
		return p.funcDecl()
	case "breed":
		p.advance()
		name := p.ident()
		p.expect(":")
		fields := []*Param{p.param()}
		for p.accept(",") {
			fields = append(fields, p.param())
		}
		p.expect("nap")
		return &StructDecl{At: t.Pos, Name: name, Fields: fields}
	case "purr":
		p.advance()
		r := &Return{At: t.Pos}
		if next := p.tok(); !next.NewlineBefore && startsExpr(next) {
			r.Value = p.expr()
		}
		return r
	case "break":
		p.advance()
		return &Break{At: t.Pos}
	case "import":
		p.advance()
		return &Import{At: t.Pos, Name: p.ident()}
	}
	p.unexpected("a statement")
	return nil
}

func (p *parser) callStmt() Stmt {
	e := p.postfix()
	call, ok := e.(*Call)
	if !ok {
		p.errorAt(e.Pos(), "Expected a statement but found an expression")
	}
	return &CallStmt{Call: call}
}

func (p *parser) ifStmt() *If {
	at := p.expect("if").Pos
	n := &If{At: at, Test: p.expr()}
	p.expect(":")
	n.Then = p.block()
	switch {
	case p.accept("nap"):
	case p.accept("else"):
		n.HasElse = true
		if p.is("if") {
			n.ElseIf = p.ifStmt()
		} else {
			n.Else = p.body()
		}
	default:
		p.unexpected(`"else" or "nap"`)
	}
	return n
}

func (p *parser) funcDecl() *FuncDecl {
	at := p.expect("kitty").Pos
	n := &FuncDecl{At: at, Name: p.ident()}
	p.expect("(")
	if !p.is(")") {
		n.Params = append(n.Params, p.param())
		for p.accept(",") {
			n.Params = append(n.Params, p.param())
		}
	}
	p.expect(")")
	if p.accept("->") {
		n.Result = p.typeExpr()
	}
	n.Body = p.body()
	return n
}

func (p *parser) param() *Param {
	name := p.ident()
	p.expect(":")
	return &Param{Name: name, Type: p.typeExpr()}
}

func (p *parser) typeExpr() TypeExpr {
	var t TypeExpr
	switch tok := p.tok(); {
	case tok.Kind == scanner.Ident:
		t = &TypeName{Name: p.ident()}
	case tok.Is("["):
		p.advance()
		elem := p.typeExpr()
		p.expect("]")
		t = &ArrayTypeExpr{At: tok.Pos, Elem: elem}
	case tok.Is("("):
		p.advance()
		ft := &FuncTypeExpr{At: tok.Pos}
		if !p.is(")") {
			ft.Params = append(ft.Params, p.typeExpr())
			for p.accept(",") {
				ft.Params = append(ft.Params, p.typeExpr())
			}
		}
		p.expect(")")
		p.expect("->")
		ft.Result = p.typeExpr()
		t = ft
	default:
		p.unexpected("a type")
	}
	for p.accept("?") {
		t = &OptionalTypeExpr{Base: t}
	}
	return t
}

// startsExpr reports whether t can begin an expression.
func startsExpr(t scanner.Token) bool {
	switch t.Kind {
	case scanner.Ident, scanner.Int, scanner.Float, scanner.String:
		return true
	case scanner.Keyword:
		return t.Text == "true" || t.Text == "false" || t.Text == "some" || t.Text == "no"
	case scanner.Op:
		return t.Text == "(" || t.Text == "[" || t.Text == "-" || t.Text == "!"
	}
	return false
}

func (p *parser) expr() Expr {
	test := p.coalesce()
	if q := p.tok(); q.Is("?") {
		p.advance()
		then := p.expr()
		p.expect(":")
		return &Cond{At: q.Pos, Test: test, Then: then, Else: p.expr()}
	}
	return test
}

// coalesce is right associative.
func (p *parser) coalesce() Expr {
	left := p.or()
	if op := p.tok(); op.Is("??") {
		p.advance()
		return &Binary{At: op.Pos, Op: op.Text, Left: left, Right: p.coalesce()}
	}
	return left
}

func (p *parser) or() Expr {
	return p.leftAssoc(p.and, "||")
}

func (p *parser) and() Expr {
	return p.leftAssoc(p.compare, "&&")
}

func (p *parser) compare() Expr {
	left := p.additive()
	op := p.tok()
	switch {
	case op.Is("<"), op.Is("<="), op.Is("=="), op.Is("!="), op.Is(">="), op.Is(">"):
		p.advance()
		return &Binary{At: op.Pos, Op: op.Text, Left: left, Right: p.additive()}
	}
	return left
}

func (p *parser) additive() Expr {
	return p.leftAssoc(p.multiplicative, "+", "-")
}

func (p *parser) multiplicative() Expr {
	return p.leftAssoc(p.unary, "*", "/", "%")
}

func (p *parser) leftAssoc(operand func() Expr, ops ...string) Expr {
	left := operand()
	for {
		op := p.tok()
		matched := false
		for _, o := range ops {
			if op.Is(o) {
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
		p.advance()
		left = &Binary{At: op.Pos, Op: op.Text, Left: left, Right: operand()}
	}
}

func (p *parser) unary() Expr {
	if op := p.tok(); op.Is("-") || op.Is("!") || op.Is("some") {
		p.advance()
		return &Unary{At: op.Pos, Op: op.Text, Operand: p.unary()}
	}
	return p.power()
}

// power is right associative and binds tighter than unary operators on its
// left, so -2**2 is -(2**2).
func (p *parser) power() Expr {
	base := p.postfix()
	if op := p.tok(); op.Is("**") {
		p.advance()
		return &Binary{At: op.Pos, Op: op.Text, Left: base, Right: p.unary()}
	}
	return base
}

func (p *parser) postfix() Expr {
	e := p.primary()
	for {
		t := p.tok()
		switch {
		case t.Is("("):
			p.advance()
			call := &Call{At: t.Pos, Callee: e}
			if !p.is(")") {
				call.Args = p.exprList()
			}
			p.expect(")")
			e = call
		case t.Is("."):
			p.advance()
			e = &Member{Object: e, Name: p.ident()}
		case t.Is("["):
			p.advance()
			idx := p.expr()
			p.expect("]")
			e = &Index{At: t.Pos, Array: e, Index: idx}
		default:
			return e
		}
	}
}

func (p *parser) exprList() []Expr {
	list := []Expr{p.expr()}
	for p.accept(",") {
		list = append(list, p.expr())
	}
	return list
}

func (p *parser) primary() Expr {
	t := p.tok()
	switch t.Kind {
	case scanner.Int:
		p.advance()
		return &IntLit{At: t.Pos, Text: t.Text}
	case scanner.Float:
		p.advance()
		return &FloatLit{At: t.Pos, Text: t.Text}
	case scanner.String:
		p.advance()
		return &StringLit{At: t.Pos, Value: t.Text}
	case scanner.Ident:
		return p.ident()
	}
	switch {
	case t.Is("true"), t.Is("false"):
		p.advance()
		return &BoolLit{At: t.Pos, Value: t.Text == "true"}
	case t.Is("no"):
		p.advance()
		return &NoValue{At: t.Pos, Type: p.typeExpr()}
	case t.Is("("):
		p.advance()
		e := p.expr()
		p.expect(")")
		return e
	case t.Is("["):
		p.advance()
		if p.accept("]") {
			p.expect("of")
			return &EmptyArray{At: t.Pos, Elem: p.typeExpr()}
		}
		elems := p.exprList()
		p.expect("]")
		return &ArrayLit{At: t.Pos, Elems: elems}
	}
	p.unexpected("an expression")
	return nil
}
