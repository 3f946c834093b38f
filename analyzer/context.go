package analyzer

import (
	"fmt"

	"github.com/kis-lang/kis/ast"
)

// Context is one lexical scope. Contexts form a chain through parent; the
// loop and function flags are inherited by children unless overridden.
type Context struct {
	parent   *Context
	locals   map[string]ast.Entity
	inLoop   bool
	function *ast.Function
}

type contextOption func(*Context)

// inLoop marks whether break is legal in the new context.
func inLoop(v bool) contextOption {
	return func(c *Context) { c.inLoop = v }
}

// inFunction attaches the function whose body the new context belongs to.
func inFunction(f *ast.Function) contextOption {
	return func(c *Context) { c.function = f }
}

// newRootContext returns the outermost context with the standard library
// bound.
func newRootContext() *Context {
	c := &Context{locals: map[string]ast.Entity{}}
	for _, e := range ast.Prelude() {
		c.locals[e.EntityName()] = e
	}
	return c
}

func (c *Context) child(opts ...contextOption) *Context {
	ch := &Context{
		parent:   c,
		locals:   map[string]ast.Entity{},
		inLoop:   c.inLoop,
		function: c.function,
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

// add binds name in this context only. Shadowing a binding from an
// ancestor is allowed.
func (c *Context) add(name string, e ast.Entity) error {
	if _, ok := c.locals[name]; ok {
		return &Error{kind: DeclarationError, msg: fmt.Sprintf("Identifier %s already declared", name)}
	}
	c.locals[name] = e
	return nil
}

// lookup finds the innermost binding of name, or nil.
func (c *Context) lookup(name string) ast.Entity {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if e, ok := ctx.locals[name]; ok {
			return e
		}
	}
	return nil
}
