package analyzer

import (
	"github.com/kis-lang/kis/ast"
	"github.com/kis-lang/kis/parser"
)

// frame follows the second pass over one block. Functions of the block are
// bound before any statement runs, so a call may reach a function whose
// body reads a block variable that is not initialized yet.
type frame struct {
	depth int // function bodies open when the block began
	index int // statement being analyzed
	funcs map[*ast.Function]bool
	vars  map[*ast.Variable]int
	calls []earlyUse
}

// earlyUse is a function referenced while statement index of its block
// runs, outside any function body.
type earlyUse struct {
	fn    *ast.Function
	index int
	at    parser.Node
}

type bodyUse struct {
	fn *ast.Function
	e  ast.Entity
}

func (a *analyzer) enterFrame(decls []*parser.FuncDecl) *frame {
	fr := &frame{
		depth: len(a.bodies),
		funcs: make(map[*ast.Function]bool, len(decls)),
		vars:  map[*ast.Variable]int{},
	}
	for _, d := range decls {
		fr.funcs[a.funcs[d]] = true
	}
	a.frames = append(a.frames, fr)
	return fr
}

// leaveFrame rejects uses of a function that would read a variable of the
// block before its declaration ran.
func (a *analyzer) leaveFrame(fr *frame) {
	a.frames = a.frames[:len(a.frames)-1]
	for _, c := range fr.calls {
		if v := a.lateRead(c.fn, c.index, fr, map[*ast.Function]bool{}); v != nil {
			a.fail(ResolutionError, c.at, "Function %s uses %s before its declaration", c.fn.Name, v.Name)
		}
	}
}

// lateRead returns a variable of fr declared at or after statement index
// that fn reads, directly or through the functions it uses.
func (a *analyzer) lateRead(fn *ast.Function, index int, fr *frame, seen map[*ast.Function]bool) *ast.Variable {
	if seen[fn] {
		return nil
	}
	seen[fn] = true
	for _, e := range a.reads[fn] {
		switch e := e.(type) {
		case *ast.Variable:
			if at, ok := fr.vars[e]; ok && at >= index {
				return e
			}
		case *ast.Function:
			if v := a.lateRead(e, index, fr, seen); v != nil {
				return v
			}
		}
	}
	return nil
}

// declared records a variable bound directly in the innermost block.
func (a *analyzer) declared(v *ast.Variable) {
	fr := a.frames[len(a.frames)-1]
	fr.vars[v] = fr.index
}

// used records a resolved reference for the order check.
func (a *analyzer) used(e ast.Entity, at parser.Node) {
	for _, fn := range a.bodies {
		u := bodyUse{fn, e}
		if !a.seen[u] {
			a.seen[u] = true
			a.reads[fn] = append(a.reads[fn], e)
		}
	}
	fn, ok := e.(*ast.Function)
	if !ok {
		return
	}
	for i := len(a.frames) - 1; i >= 0; i-- {
		fr := a.frames[i]
		if !fr.funcs[fn] {
			continue
		}
		if fr.depth == len(a.bodies) {
			fr.calls = append(fr.calls, earlyUse{fn: fn, index: fr.index, at: at})
		}
		return
	}
}
